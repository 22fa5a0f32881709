package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobradar/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search for new job sources and record them for validation",
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

		return runDiscovery(ctx, config, log)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscovery(ctx context.Context, config *Config, log *zap.Logger) error {
	sources, err := openSourceRepo(config)
	if err != nil {
		return err
	}

	searcher, err := newSearchClient(config, log)
	if err != nil {
		return err
	}

	var regions []string
	maxQueries := 0
	if config.Search != nil {
		regions = config.Search.Regions
		maxQueries = config.Search.MaxQueries
	}
	queries := discovery.Queries(searchSectors(config), regions, maxQueries)

	prober := newFetcher(nil, log)
	stage := discovery.New(searcher, prober, sources, log)

	_, err = stage.Run(ctx, queries)
	return err
}
