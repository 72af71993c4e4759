package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justice-collab/disruption-cli/internal/config"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ValidateConfig(cfg))
	assert.InDelta(t, 1.0, WeightSum(cfg), 1e-12)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.DetectorConfig)
		wantErr string
	}{
		{"weights off by far", func(c *config.DetectorConfig) {
			c.VelocityWeight = 0.9
		}, "sum to 1.0"},
		{"negative weight", func(c *config.DetectorConfig) {
			c.NoveltyWeight = -0.25
			c.VelocityWeight = 0.80
		}, "must be >= 0"},
		{"zero min docs", func(c *config.DetectorConfig) {
			c.MinDocs = 0
		}, "min_docs"},
		{"zero lookback", func(c *config.DetectorConfig) {
			c.Lookback = 0
		}, "lookback"},
		{"zero concurrency", func(c *config.DetectorConfig) {
			c.Concurrency = 0
		}, "concurrency"},
		{"unknown norm method", func(c *config.DetectorConfig) {
			c.NormMethod = "rank"
		}, "norm_method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfigWeightTolerance(t *testing.T) {
	// Drift inside the tolerance must pass.
	cfg := DefaultConfig()
	cfg.TransitionWeight += 1e-12
	assert.NoError(t, ValidateConfig(cfg))

	cfg.TransitionWeight += 1e-6
	assert.Error(t, ValidateConfig(cfg))
}
