package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"jobradar/internal/ai"
	"jobradar/internal/ai/gemini"
	"jobradar/internal/fetch"
	"jobradar/internal/logger"
	"jobradar/internal/retry"
	"jobradar/internal/search"
	"jobradar/internal/secrets"
	"jobradar/internal/store"
	"jobradar/internal/tracker"
)

func newLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

// stageContext bounds one pipeline stage with the stage-timeout flag.
func stageContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := viper.GetDuration("stage-timeout")
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func retryPolicyFor(retries int) retry.Policy {
	policy := retry.Default()
	if retries > 0 {
		policy.MaxAttempts = retries
	}
	return policy
}

func openSourceRepo(config *Config) (*store.SourceRepo, error) {
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %q: %w", config.DataDir, err)
	}
	return store.OpenSources(filepath.Join(config.DataDir, "sources.csv"))
}

func openListingRepo(config *Config) (*store.ListingRepo, error) {
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %q: %w", config.DataDir, err)
	}
	return store.OpenListings(filepath.Join(config.DataDir, "listings.csv"))
}

func openMatchRepo(config *Config) (*store.MatchRepo, error) {
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %q: %w", config.DataDir, err)
	}
	return store.OpenMatches(filepath.Join(config.DataDir, "matches.csv"))
}

func newSearchClient(config *Config, log *zap.Logger) (*search.Client, error) {
	if config.Search == nil {
		return nil, errors.New("search section is not configured")
	}
	if strings.TrimSpace(config.Search.EngineID) == "" {
		return nil, errors.New("search engine id is not configured")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "search api key",
		Value: config.Search.APIKey,
		File:  config.Search.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	return search.New(apiKey, config.Search.EngineID, retry.Default(), log), nil
}

// searchSectors maps the configured sector names onto focus tags, defaulting
// to the full tagged set when none are configured.
func searchSectors(config *Config) []tracker.FocusTag {
	if config.Search == nil || len(config.Search.Sectors) == 0 {
		return []tracker.FocusTag{tracker.FocusBlockchain, tracker.FocusClimate, tracker.FocusAI}
	}
	return tracker.ParseFocusTags(strings.Join(config.Search.Sectors, ","))
}

// newAssessor builds the AI scoring path, or returns nil when scoring should
// run on the heuristic fallback only.
func newAssessor(ctx context.Context, config *Config, log *zap.Logger) (ai.Scorer, error) {
	if config.AI == nil || !config.AI.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(config.AI.Provider)
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider %q", provider)
	}

	geminiConfig := config.AI.Gemini
	if geminiConfig == nil {
		geminiConfig = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: geminiConfig.APIKey,
		File:  geminiConfig.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiConfig.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewAssessor(generator, retryPolicyFor(geminiConfig.MaxRetries), geminiConfig.MaxLogLength, log), nil
}

// confirmAISpend asks before a batch of paid model calls goes out.
func confirmAISpend(model string, candidates int) (bool, error) {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Score up to %d listings with %s", candidates, model),
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func newFetcher(stage *StageConfig, log *zap.Logger) *fetch.Client {
	timeout := 10 * time.Second
	if stage != nil && stage.Timeout > 0 {
		timeout = stage.Timeout
	}
	return fetch.New(timeout, log)
}
