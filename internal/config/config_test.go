package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "data/retailpulse.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 0.99, cfg.Pipeline.ExtremePercentile)
	assert.Equal(t, 3.0, cfg.Pipeline.ExtremeMultiplier)
	assert.Equal(t, 0.7, cfg.Pipeline.QualityPenalty)
	assert.Equal(t, 3, cfg.Pipeline.SuspiciousClusterSize)

	require.NoError(t, cfg.validate())
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	assert.Error(t, cfg.validate())

	cfg.Server.Port = 70000
	assert.Error(t, cfg.validate())
}

func TestValidate_PipelineBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"percentile zero", func(c *Config) { c.Pipeline.ExtremePercentile = 0 }},
		{"percentile one", func(c *Config) { c.Pipeline.ExtremePercentile = 1 }},
		{"multiplier negative", func(c *Config) { c.Pipeline.ExtremeMultiplier = -1 }},
		{"penalty above one", func(c *Config) { c.Pipeline.QualityPenalty = 1.5 }},
		{"cluster size zero", func(c *Config) { c.Pipeline.SuspiciousClusterSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeConfigs_EnvTakesPrecedence(t *testing.T) {
	file := *Default()
	file.Server.Port = 9090
	file.Storage.DatabasePath = "file.db"

	var env Config
	env.Server.Port = 3000

	merged := mergeConfigs(file, env)
	assert.Equal(t, 3000, merged.Server.Port)
	// Unset env fields fall back to the file values.
	assert.Equal(t, "file.db", merged.Storage.DatabasePath)
	assert.Equal(t, file.Server.ReadTimeout, merged.Server.ReadTimeout)
}
