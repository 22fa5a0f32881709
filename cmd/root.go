package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const app = "jobradar"

// Config is the full configuration tree, loaded from jobradar.yaml.
type Config struct {
	DataDir   string           `mapstructure:"data-dir"`
	Profile   string           `mapstructure:"profile"`
	Search    *SearchConfig    `mapstructure:"search"`
	Validator *StageConfig     `mapstructure:"validator"`
	Extractor *ExtractorConfig `mapstructure:"extractor"`
	AI        *AIConfig        `mapstructure:"ai"`
}

// SearchConfig configures the discovery query set and its backend.
type SearchConfig struct {
	APIKeyFile string   `mapstructure:"api-key-file"`
	APIKey     string   `mapstructure:"api-key"`
	EngineID   string   `mapstructure:"engine-id"`
	Sectors    []string `mapstructure:"sectors"`
	Regions    []string `mapstructure:"regions"`
	MaxQueries int      `mapstructure:"max-queries"`
}

// StageConfig holds the knobs shared by the network-bound stages.
type StageConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Retries     int           `mapstructure:"retries"`
	Concurrency int           `mapstructure:"concurrency"`
}

// ExtractorConfig adds the extraction-specific cap on top of StageConfig.
type ExtractorConfig struct {
	StageConfig  `mapstructure:",squash"`
	MaxPerSource int `mapstructure:"max-per-source"`
}

// AIConfig configures the scoring service.
type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig configures the gemini provider.
type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	APIKey       string `mapstructure:"api-key"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobradar discovers job sources, validates them, extracts listings and scores their relevance",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("search.api-key-file", "SEARCH_API_KEY_FILE"); err != nil {
		log.Fatalf("binding SEARCH_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobradar.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().Duration("stage-timeout", 10*time.Minute, "wall-clock budget for each pipeline stage")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("stage-timeout", rootCmd.PersistentFlags().Lookup("stage-timeout"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config != nil {
		config.applyDefaults()
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Profile == "" {
		c.Profile = "profile.json"
	}
	if c.Validator == nil {
		c.Validator = &StageConfig{}
	}
	if c.Extractor == nil {
		c.Extractor = &ExtractorConfig{}
	}
}
