package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: discover, validate, extract, score",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		config, err := getConfig()
		if err != nil {
			return err
		}

		stages := []struct {
			name string
			run  func(context.Context, *Config, *zap.Logger) error
		}{
			{"discovery", runDiscovery},
			{"validation", runValidation},
			{"extraction", runExtraction},
			{"scoring", runScoring},
		}

		for _, stage := range stages {
			log.Info("starting stage", zap.String("stage", stage.name))

			ctx, cancel := stageContext(cmd.Context())
			err := stage.run(ctx, config, log)
			cancel()
			if err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&fallbackOnly, "fallback-only", false, "score with the deterministic heuristic, no model calls")
	runCmd.Flags().BoolVarP(&autoApprove, "auto-approve", "y", false, "skip the confirmation before paid model calls")
	rootCmd.AddCommand(runCmd)
}
