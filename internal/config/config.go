package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Registry  RegistryConfig  `yaml:"registry" mapstructure:"registry"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Monitor   MonitorConfig   `yaml:"monitor" mapstructure:"monitor"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RegistryConfig holds public register settings.
type RegistryConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key               string   `yaml:"key" mapstructure:"key"`
	BaseURL           string   `yaml:"base_url" mapstructure:"base_url"`
	Region            string   `yaml:"region" mapstructure:"region"`
	IncludedTypes     []string `yaml:"included_types" mapstructure:"included_types"`
	ResultsPerQuery   int      `yaml:"results_per_query" mapstructure:"results_per_query"`
	MinBeforeFallback int      `yaml:"min_before_fallback" mapstructure:"min_before_fallback"`
	MaxPerLocation    int      `yaml:"max_per_location" mapstructure:"max_per_location"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// MonitorConfig configures the monitoring pipeline.
type MonitorConfig struct {
	Keywords                   []string `yaml:"keywords" mapstructure:"keywords"`
	APIDelayMS                 int      `yaml:"api_delay_ms" mapstructure:"api_delay_ms"`
	NameThreshold              int      `yaml:"name_threshold" mapstructure:"name_threshold"`
	LocationThreshold          int      `yaml:"location_threshold" mapstructure:"location_threshold"`
	MaxProfessionalsPerKeyword int      `yaml:"max_professionals_per_keyword" mapstructure:"max_professionals_per_keyword"`
	IncrementalProfessionalCap int      `yaml:"incremental_professional_cap" mapstructure:"incremental_professional_cap"`
	AnalysisBacklogCap         int      `yaml:"analysis_backlog_cap" mapstructure:"analysis_backlog_cap"`
	MinReviewLength            int      `yaml:"min_review_length" mapstructure:"min_review_length"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RMTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "rmtwatch.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("registry.base_url", "https://cmto.ca.thentiacloud.net")
	v.SetDefault("places.base_url", "https://places.googleapis.com")
	v.SetDefault("places.region", "Ontario")
	v.SetDefault("places.included_types", []string{"massage", "physiotherapist", "spa", "wellness_center"})
	v.SetDefault("places.results_per_query", 10)
	v.SetDefault("places.min_before_fallback", 3)
	v.SetDefault("places.max_per_location", 50)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("monitor.keywords", []string{"Massage Therapist"})
	v.SetDefault("monitor.api_delay_ms", 500)
	v.SetDefault("monitor.name_threshold", 75)
	v.SetDefault("monitor.location_threshold", 60)
	// 0 leaves full and rebuild discovery unbounded.
	v.SetDefault("monitor.max_professionals_per_keyword", 0)
	v.SetDefault("monitor.incremental_professional_cap", 20)
	v.SetDefault("monitor.analysis_backlog_cap", 50)
	v.SetDefault("monitor.min_review_length", 10)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
