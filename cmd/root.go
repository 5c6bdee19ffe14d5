package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pollquiz",
	Short: "Generate a trivia quiz with an LLM and post it to X as a poll",
	Long: `pollquiz samples one record from a CSV dataset, asks an LLM for a
four-option quiz about it, and posts the quiz to X as a poll followed by a
quote post with the answer.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default ./pollquiz.yaml if present)")
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite LLM event log (overrides store.path)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(lambdaCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
