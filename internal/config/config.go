package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
)

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML keys to Go struct fields.
type Config struct {
	// Server configuration section containing HTTP server settings
	Server struct {
		Port           int     `mapstructure:"port"`             // HTTP server port (default: 8080)
		BaseURL        string  `mapstructure:"base_url"`         // Public base URL of the service
		RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`   // Steady-state API requests per second, 0 disables
		RateLimitBurst int     `mapstructure:"rate_limit_burst"` // Token bucket burst size
	} `mapstructure:"server"`

	// Database configuration section
	Database struct {
		Driver     string `mapstructure:"driver"`      // "sqlite" (GORM) or "badger"
		Name       string `mapstructure:"name"`        // SQLite database file name
		BadgerPath string `mapstructure:"badger_path"` // BadgerDB directory
	} `mapstructure:"database"`

	// Discovery holds the exploration/exploitation policy knobs
	Discovery struct {
		Epsilon        float64 `mapstructure:"epsilon"`         // Exploration rate
		ExploreWindow  int     `mapstructure:"explore_window"`  // Top-N considered when exploring
		CandidateLimit int     `mapstructure:"candidate_limit"` // Cap on candidates scored per call
	} `mapstructure:"discovery"`

	// Metadata configuration for fetching page titles/descriptions on submission
	Metadata struct {
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		UserAgent      string `mapstructure:"user_agent"`
	} `mapstructure:"metadata"`

	// Monitor configuration for link health checking
	Monitor struct {
		Enabled         bool `mapstructure:"enabled"`
		IntervalMinutes int  `mapstructure:"interval_minutes"` // Interval in minutes between health checks
	} `mapstructure:"monitor"`

	// Import configuration for bulk feed imports
	Import struct {
		WorkerCount int `mapstructure:"worker_count"`
	} `mapstructure:"import"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "text" or "json"
	} `mapstructure:"log"`
}

// Load loads the application configuration using Viper.
// An empty path searches ./configs for config.yaml; a missing file is not an error.
// Environment variables override file values, e.g. SERVER_PORT or DISCOVERY_EPSILON.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Replace dots with underscores in environment variable names
	// e.g., "server.port" becomes "SERVER_PORT"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./configs")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Debug("Config file not found, using default values")
		} else {
			return nil, customerrors.ErrConfigLoad{Path: path, Reason: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, customerrors.ErrConfigLoad{Path: v.ConfigFileUsed(), Reason: err.Error()}
	}

	logrus.WithFields(logrus.Fields{
		"port":     cfg.Server.Port,
		"driver":   cfg.Database.Driver,
		"epsilon":  cfg.Discovery.Epsilon,
		"monitor":  cfg.Monitor.Enabled,
		"log_mode": cfg.Log.Format,
	}).Debug("Configuration loaded")

	return &cfg, nil
}

// LinkStatsURL returns the public stats endpoint of a link under Server.BaseURL.
func (c *Config) LinkStatsURL(linkID string) string {
	return strings.TrimRight(c.Server.BaseURL, "/") + "/api/v1/links/" + linkID + "/stats"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.name", "stumble.db")
	v.SetDefault("database.badger_path", "./badger_data")
	v.SetDefault("discovery.epsilon", 0.15)
	v.SetDefault("discovery.explore_window", 20)
	v.SetDefault("discovery.candidate_limit", 50)
	v.SetDefault("metadata.timeout_seconds", 10)
	v.SetDefault("metadata.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.interval_minutes", 30)
	v.SetDefault("import.worker_count", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate rejects configurations the discovery engine cannot run with.
func (c *Config) Validate() error {
	if c.Discovery.Epsilon < 0 || c.Discovery.Epsilon > 1 {
		return fmt.Errorf("discovery.epsilon must be within [0,1], got %v", c.Discovery.Epsilon)
	}
	if c.Discovery.ExploreWindow <= 0 {
		return fmt.Errorf("discovery.explore_window must be positive, got %d", c.Discovery.ExploreWindow)
	}
	if c.Discovery.CandidateLimit <= 0 {
		return fmt.Errorf("discovery.candidate_limit must be positive, got %d", c.Discovery.CandidateLimit)
	}
	if c.Metadata.TimeoutSeconds <= 0 {
		return fmt.Errorf("metadata.timeout_seconds must be positive, got %d", c.Metadata.TimeoutSeconds)
	}
	if c.Monitor.Enabled && c.Monitor.IntervalMinutes <= 0 {
		return fmt.Errorf("monitor.interval_minutes must be positive when the monitor is enabled, got %d", c.Monitor.IntervalMinutes)
	}
	switch c.Database.Driver {
	case "sqlite", "badger":
	default:
		return fmt.Errorf("database.driver must be sqlite or badger, got %q", c.Database.Driver)
	}
	if c.Import.WorkerCount <= 0 {
		c.Import.WorkerCount = 1
	}
	return nil
}
