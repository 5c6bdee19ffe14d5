package cmd

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve AWS Lambda invocations",
	Long: `Start the AWS Lambda runtime. Every invocation, usually a scheduled
EventBridge event, runs the pipeline once. The event payload is ignored and
a failed run is returned to the runtime as the invocation error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		lambda.Start(func(ctx context.Context, _ json.RawMessage) error {
			return a.runner.Run(ctx)
		})
		return nil
	},
}
