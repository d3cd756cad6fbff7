package config

import (
	"time"

	"golang-sales-insights/pkg/config"
)

// Worker holds worker-specific configuration.
type Worker struct {
	TranscriptParseTimeout    time.Duration `mapstructure:"transcript_parse_timeout"`
	RiskAnalysisTimeout       time.Duration `mapstructure:"risk_analysis_timeout"`
	ConsolidationTimeout      time.Duration `mapstructure:"consolidation_timeout"`
	DocumentGenerationTimeout time.Duration `mapstructure:"document_generation_timeout"`
	AccountResearchTimeout    time.Duration `mapstructure:"account_research_timeout"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	FallbackModel       string `mapstructure:"fallback_model"`
	ClassifierModel     string `mapstructure:"classifier_model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
	MaxRetries          int    `mapstructure:"max_retries"`
}

// Research holds configuration for account news research.
type Research struct {
	MaxItems       int           `mapstructure:"max_items"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

// Config holds the full configuration for the worker service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	Worker   Worker          `mapstructure:"worker"`
	Gemini   Gemini          `mapstructure:"gemini"`
	Research Research        `mapstructure:"research"`
	Telegram config.Telegram `mapstructure:"telegram"`
}

// Load loads the worker configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
