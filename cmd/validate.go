package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobradar/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Probe recorded sources for liveness and hiring activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		config, err := getConfig()
		if err != nil {
			return err
		}

		ctx, cancel := stageContext(cmd.Context())
		defer cancel()

		return runValidation(ctx, config, log)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidation(ctx context.Context, config *Config, log *zap.Logger) error {
	sources, err := openSourceRepo(config)
	if err != nil {
		return err
	}

	fetcher := newFetcher(config.Validator, log)
	stage := validate.New(fetcher, sources, retryPolicyFor(config.Validator.Retries), config.Validator.Concurrency, log)

	_, err = stage.Run(ctx)
	return err
}
