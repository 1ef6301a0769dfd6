package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/newsharvest/internal/config"
)

func TestWithDefaults(t *testing.T) {
	cfg := config.Config{}.WithDefaults()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Encoding)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, 10, cfg.Fetch.MaxRedirects)
	assert.NotEmpty(t, cfg.Fetch.UserAgent)
	assert.InDelta(t, 1.0, cfg.Fetch.RatePerHost, 0.001)
	assert.Equal(t, 4, cfg.Ingest.Workers)
	assert.Equal(t, "sources.yaml", cfg.Ingest.SourcesFile)
	assert.Equal(t, "*/15 * * * *", cfg.Schedule.Spec)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := config.Config{}
	cfg.Fetch.Timeout = 10 * time.Second
	cfg.Ingest.Workers = 16
	cfg.Schedule.Spec = "@hourly"

	cfg = cfg.WithDefaults()

	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 16, cfg.Ingest.Workers)
	assert.Equal(t, "@hourly", cfg.Schedule.Spec)
}

func TestValidate(t *testing.T) {
	valid := config.Config{}
	valid.Database.Host = "localhost"
	valid.Database.User = "newsharvest"
	valid.Database.Name = "newsharvest"
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "missing host", mutate: func(c *config.Config) { c.Database.Host = "" }},
		{name: "missing user", mutate: func(c *config.Config) { c.Database.User = "" }},
		{name: "missing name", mutate: func(c *config.Config) { c.Database.Name = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
