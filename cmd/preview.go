package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/pollquiz/internal/quizgen"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate quizzes without posting them",
	Long: `Sample records and generate quizzes exactly as "run" does, but print
them instead of posting. X credentials are not needed.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntP("count", "n", 1, "Number of quizzes to generate")
	previewCmd.Flags().Bool("json", false, "Print quizzes as JSON")
}

func runPreview(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx := cmd.Context()
	a, err := buildApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	var failed int
	for i := 1; i <= count; i++ {
		q, err := a.runner.Preview(ctx)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Quiz %d: %v\n\n", i, err)
			continue
		}

		if asJSON {
			out, _ := json.MarshalIndent(q, "", "  ")
			fmt.Println(string(out))
			continue
		}
		printQuiz(i, count, q)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d quizzes failed", failed, count)
	}
	return nil
}

func printQuiz(i, count int, q *quizgen.Quiz) {
	fmt.Printf("── Quiz %d/%d ──\n", i, count)
	fmt.Println(q.Question)
	answer := q.AnswerIndex()
	for j, o := range q.Options {
		mark := " "
		if j == answer {
			mark = "*"
		}
		fmt.Printf(" %s %d) %s\n", mark, j+1, o)
	}
	fmt.Printf("\nAnswer post:\n%s\n\n", q.AnswerText())
}
