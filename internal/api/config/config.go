package config

import (
	"golang-sales-insights/pkg/config"
)

// Scheduler holds configuration for the periodic jobs the API service runs.
type Scheduler struct {
	AccountResearchCron string `mapstructure:"account_research_cron"`
}

// Config holds the full configuration for the API service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
}

// Load loads the API service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
