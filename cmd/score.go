package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobradar/internal/ai"
	"jobradar/internal/score"
	"jobradar/internal/tracker"
)

var (
	fallbackOnly bool
	autoApprove  bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score extracted listings against the candidate profile",
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

		return runScoring(ctx, config, log)
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&fallbackOnly, "fallback-only", false, "score with the deterministic heuristic, no model calls")
	scoreCmd.Flags().BoolVarP(&autoApprove, "auto-approve", "y", false, "skip the confirmation before paid model calls")
	rootCmd.AddCommand(scoreCmd)
}

func runScoring(ctx context.Context, config *Config, log *zap.Logger) error {
	sources, err := openSourceRepo(config)
	if err != nil {
		return err
	}

	listings, err := openListingRepo(config)
	if err != nil {
		return err
	}

	matches, err := openMatchRepo(config)
	if err != nil {
		return err
	}

	profile, err := tracker.LoadProfile(config.Profile)
	if err != nil {
		return err
	}

	var assessor ai.Scorer
	if !fallbackOnly {
		assessor, err = newAssessor(ctx, config, log)
		if err != nil {
			return err
		}
	}

	if assessor != nil && !autoApprove {
		approved, err := confirmAISpend(aiModelName(config), len(listings.Scorable()))
		if err != nil {
			return err
		}
		if !approved {
			log.Info("model spend declined, scoring with the heuristic fallback")
			assessor = nil
		}
	}

	workers := 0
	if config.Extractor != nil {
		workers = config.Extractor.Concurrency
	}

	stage := score.New(assessor, sources, listings, matches, profile, workers, log)
	_, err = stage.Run(ctx)
	return err
}

func aiModelName(config *Config) string {
	if config.AI != nil && config.AI.Gemini != nil && strings.TrimSpace(config.AI.Gemini.Model) != "" {
		return config.AI.Gemini.Model
	}
	return "gemini-2.5-flash"
}
