package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate one quiz and post it",
	Long: `Run the pipeline once: sample a record, generate a quiz, post the poll
and then the answer. Suitable for cron. Exits non-zero on any failure.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.runner.Run(ctx)
	},
}
