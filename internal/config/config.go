package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Filter   FilterConfig   `yaml:"filter"`
	Provider ProviderConfig `yaml:"provider"`
	Report   ReportConfig   `yaml:"report"`
}

// AnalysisConfig holds ranking settings
type AnalysisConfig struct {
	Periods    []int `yaml:"periods"`     // trading-day windows, e.g. [5, 10, 20]
	TopN       int   `yaml:"top_n"`       // gainers/losers per period
	SampleSize int   `yaml:"sample_size"` // quick-mode subset size
	SampleSeed int64 `yaml:"sample_seed"` // fixed seed keeps the subset reproducible
}

// FilterConfig holds universe filter thresholds
type FilterConfig struct {
	ExcludeSpecial bool    `yaml:"exclude_special"`  // drop ST / delisting-marked names
	MinPrice       float64 `yaml:"min_price"`        // yuan
	MaxDailyChange float64 `yaml:"max_daily_change"` // percent, exclusive bound on |today change|
}

// ProviderConfig holds data source settings
type ProviderConfig struct {
	RateLimit int           `yaml:"rate_limit"` // requests per minute
	Timeout   time.Duration `yaml:"timeout"`    // per-request HTTP timeout
}

// ReportConfig holds persistence settings
type ReportConfig struct {
	FrontendDir string `yaml:"frontend_dir"` // latest.json + data_<date>.json, front-end visible
	ArchiveDir  string `yaml:"archive_dir"`  // analysis_<date>.json, internal archive
	KeepDays    int    `yaml:"keep_days"`    // retention window for dated archives
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Periods:    []int{5, 10, 20},
			TopN:       50,
			SampleSize: 300,
			SampleSeed: 42,
		},
		Filter: FilterConfig{
			ExcludeSpecial: true,
			MinPrice:       1.0,
			MaxDailyChange: 11.0,
		},
		Provider: ProviderConfig{
			RateLimit: 120,
			Timeout:   10 * time.Second,
		},
		Report: ReportConfig{
			FrontendDir: "docs/data",
			ArchiveDir:  "data/analysis",
			KeepDays:    30,
		},
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Override with environment variables if set
	if dir := os.Getenv("TRENDRANK_FRONTEND_DIR"); dir != "" {
		cfg.Report.FrontendDir = dir
	}
	if dir := os.Getenv("TRENDRANK_ARCHIVE_DIR"); dir != "" {
		cfg.Report.ArchiveDir = dir
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Analysis.Periods) == 0 {
		return fmt.Errorf("at least one analysis period is required")
	}
	for _, p := range c.Analysis.Periods {
		if p < 1 {
			return fmt.Errorf("analysis period must be at least 1 day, got %d", p)
		}
	}
	if c.Analysis.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1")
	}
	if c.Analysis.SampleSize < 1 {
		return fmt.Errorf("sample_size must be at least 1")
	}
	if c.Filter.MaxDailyChange <= 0 {
		return fmt.Errorf("max_daily_change must be positive")
	}
	if c.Provider.RateLimit < 1 {
		return fmt.Errorf("provider rate_limit must be at least 1")
	}
	if c.Report.KeepDays < 1 {
		return fmt.Errorf("keep_days must be at least 1")
	}
	return nil
}
