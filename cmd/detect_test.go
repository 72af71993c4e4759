package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justice-collab/disruption-cli/internal/config"
)

func TestDetectCmd_Flags(t *testing.T) {
	flags := []struct {
		name     string
		defValue string
	}{
		{"policies", ""},
		{"elections", ""},
		{"min-docs", "0"},
		{"lookback", "0"},
		{"norm", ""},
		{"concurrency", "0"},
		{"weights", ""},
		{"output-dir", ""},
		{"format", "table"},
		{"save", "false"},
	}

	for _, f := range flags {
		flag := detectCmd.Flags().Lookup(f.name)
		require.NotNil(t, flag, "detect should have --%s flag", f.name)
		assert.Equal(t, f.defValue, flag.DefValue, "flag --%s default value mismatch", f.name)
	}
}

func TestDetectCmd_Metadata(t *testing.T) {
	assert.Equal(t, "detect", detectCmd.Use)
	assert.NotEmpty(t, detectCmd.Short)
	assert.NotEmpty(t, detectCmd.Long)
}

func TestParseWeights(t *testing.T) {
	weights, err := parseWeights("0.4,0.2,0.2,0.1,0.1")
	require.NoError(t, err)
	assert.Equal(t, [5]float64{0.4, 0.2, 0.2, 0.1, 0.1}, weights)

	weights, err = parseWeights(" 0.3 , 0.25, 0.2, 0.15, 0.1 ")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, weights[0], 1e-9)
}

func TestParseWeightsErrors(t *testing.T) {
	_, err := parseWeights("0.5,0.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs 5 values")

	_, err = parseWeights("a,b,c,d,e")
	assert.Error(t, err)
}

func TestApplyDetectorOverrides(t *testing.T) {
	base := config.DetectorConfig{
		MinDocs:     3,
		Lookback:    2,
		NormMethod:  "minmax",
		Concurrency: 8,
	}

	cmd := detectCmd
	require.NoError(t, cmd.Flags().Set("min-docs", "5"))
	require.NoError(t, cmd.Flags().Set("norm", "zscore"))
	require.NoError(t, cmd.Flags().Set("weights", "0.4,0.2,0.2,0.1,0.1"))
	defer func() {
		_ = cmd.Flags().Set("min-docs", "0")
		_ = cmd.Flags().Set("norm", "")
		_ = cmd.Flags().Set("weights", "")
	}()

	got, err := applyDetectorOverrides(cmd, base)
	require.NoError(t, err)
	assert.Equal(t, 5, got.MinDocs)
	assert.Equal(t, 2, got.Lookback, "unset flags keep config values")
	assert.Equal(t, "zscore", got.NormMethod)
	assert.InDelta(t, 0.4, got.VelocityWeight, 1e-9)
	assert.InDelta(t, 0.1, got.TransitionWeight, 1e-9)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b "))
	assert.Equal(t, []string{"a"}, splitAndTrim("a,,"))
	assert.Nil(t, splitAndTrim(""))
}

func TestRunsCmd_Metadata(t *testing.T) {
	assert.Equal(t, "runs", runsCmd.Use)
	assert.NotEmpty(t, runsCmd.Short)
	assert.Equal(t, "list", runsListCmd.Use)
	assert.Equal(t, "show <run-id>", runsShowCmd.Use)
}

func TestReformsCmd_Metadata(t *testing.T) {
	assert.Equal(t, "reforms", reformsCmd.Use)
	assert.NotEmpty(t, reformsCmd.Short)
}

func TestValidateCmd_Metadata(t *testing.T) {
	assert.Equal(t, "validate <county> <year>", validateCmd.Use)
	assert.NotEmpty(t, validateCmd.Short)
}
