package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "stumble.db", cfg.Database.Name)
	assert.InDelta(t, 0.15, cfg.Discovery.Epsilon, 1e-9)
	assert.Equal(t, 20, cfg.Discovery.ExploreWindow)
	assert.Equal(t, 50, cfg.Discovery.CandidateLimit)
	assert.Equal(t, 10, cfg.Metadata.TimeoutSeconds)
	assert.True(t, cfg.Monitor.Enabled)
	assert.Equal(t, 30, cfg.Monitor.IntervalMinutes)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
database:
  driver: badger
  badger_path: /tmp/stumble
discovery:
  epsilon: 0.3
`), 0o600))
	t.Setenv("DISCOVERY_EXPLORE_WINDOW", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Database.Driver)
	assert.Equal(t, "/tmp/stumble", cfg.Database.BadgerPath)
	assert.InDelta(t, 0.3, cfg.Discovery.Epsilon, 1e-9)
	assert.Equal(t, 5, cfg.Discovery.ExploreWindow)
	assert.Equal(t, 50, cfg.Discovery.CandidateLimit)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("discovery:\n  epsilon: 1.5\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discovery.epsilon")
}

func TestLoadRejectsZeroMonitorInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("monitor:\n  enabled: true\n  interval_minutes: 0\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitor.interval_minutes")

	// a disabled monitor never ticks, so its interval is irrelevant
	require.NoError(t, os.WriteFile(path, []byte("monitor:\n  enabled: false\n  interval_minutes: 0\n"), 0o600))
	_, err = Load(path)
	assert.NoError(t, err)
}

func TestLinkStatsURL(t *testing.T) {
	c := &Config{}
	c.Server.BaseURL = "https://stumble.example.com/"
	assert.Equal(t, "https://stumble.example.com/api/v1/links/abc/stats", c.LinkStatsURL("abc"))

	c.Server.BaseURL = "http://localhost:8080"
	assert.Equal(t, "http://localhost:8080/api/v1/links/abc/stats", c.LinkStatsURL("abc"))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Database.Driver = "sqlite"
		c.Discovery.Epsilon = 0.15
		c.Discovery.ExploreWindow = 20
		c.Discovery.CandidateLimit = 50
		c.Metadata.TimeoutSeconds = 10
		return c
	}

	c := valid()
	require.NoError(t, c.Validate())
	assert.Equal(t, 1, c.Import.WorkerCount)

	tests := map[string]func(c *Config){
		"negative epsilon":  func(c *Config) { c.Discovery.Epsilon = -0.1 },
		"zero window":       func(c *Config) { c.Discovery.ExploreWindow = 0 },
		"zero limit":        func(c *Config) { c.Discovery.CandidateLimit = 0 },
		"zero timeout":      func(c *Config) { c.Metadata.TimeoutSeconds = 0 },
		"unknown driver":    func(c *Config) { c.Database.Driver = "postgres" },
		"zero interval":     func(c *Config) { c.Monitor.Enabled, c.Monitor.IntervalMinutes = true, 0 },
		"negative interval": func(c *Config) { c.Monitor.Enabled, c.Monitor.IntervalMinutes = true, -5 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
