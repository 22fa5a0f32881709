package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobradar/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Pull job listings from validated sources",
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

		return runExtraction(ctx, config, log)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtraction(ctx context.Context, config *Config, log *zap.Logger) error {
	sources, err := openSourceRepo(config)
	if err != nil {
		return err
	}

	listings, err := openListingRepo(config)
	if err != nil {
		return err
	}

	fetcher := newFetcher(&config.Extractor.StageConfig, log)
	stage := extract.New(fetcher, sources, listings, retryPolicyFor(config.Extractor.Retries), config.Extractor.Concurrency, log)
	if config.Extractor.MaxPerSource > 0 {
		stage.MaxPerSource = config.Extractor.MaxPerSource
	}

	_, err = stage.Run(ctx)
	return err
}
