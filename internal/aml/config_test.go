package aml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidateRejectsDefects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "empty sanctioned entities",
			mutate: func(c *Config) { c.SanctionedEntities = nil },
		},
		{
			name:   "missing stage weight",
			mutate: func(c *Config) { delete(c.StageWeights, StageCryptoRisk) },
		},
		{
			name:   "negative stage weight",
			mutate: func(c *Config) { c.StageWeights[StagePEPScreening] = -0.1 },
		},
		{
			name:   "weights not summing to one",
			mutate: func(c *Config) { c.StageWeights[StageGeographicRisk] = 0.5 },
		},
		{
			name:   "inverted thresholds",
			mutate: func(c *Config) { c.Thresholds = DecisionThresholds{ClearedBelow: 70, EDDBelow: 30} },
		},
		{
			name:   "threshold above scale",
			mutate: func(c *Config) { c.Thresholds.EDDBelow = 120 },
		},
		{
			name:   "fuzzy threshold out of range",
			mutate: func(c *Config) { c.Matching.FuzzyMatchThreshold = 1.5 },
		},
		{
			name:   "partial threshold above fuzzy",
			mutate: func(c *Config) { c.Matching.PartialMatchThreshold = 0.95 },
		},
		{
			name:   "zero reporting threshold",
			mutate: func(c *Config) { c.Behavior.ReportingThreshold = 0 },
		},
		{
			name:   "structuring margin out of range",
			mutate: func(c *Config) { c.Behavior.StructuringMargin = 1.0 },
		},
		{
			name:   "deviation multiplier too small",
			mutate: func(c *Config) { c.Behavior.DeviationMultiplier = 1.0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig), "expected ErrConfig, got %v", err)
		})
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	yaml := `
high_risk_countries: [IR, KP]
tax_havens: [KY]
sanctioned_entities: [bad_actor_inc]
darknet_markets: [Hydra]
pep_names: [Viktor Ostrovsky]
stage_weights:
  document_analysis: 0.15
  geographic_risk: 0.20
  behavioral_analysis: 0.20
  crypto_risk: 0.15
  sanctions_screening: 0.20
  pep_screening: 0.10
decision_thresholds:
  cleared_below: 30
  edd_below: 70
matching:
  fuzzy_match_threshold: 0.85
  partial_match_threshold: 0.75
behavior:
  reporting_threshold: 10000
  structuring_margin: 0.10
  structuring_min_count: 3
  structuring_window_hours: 24
  uniform_min_count: 6
  uniform_stddev_below: 500
  deviation_multiplier: 3.0
  new_account_age_days: 7
  new_wallet_age_days: 7
llm:
  base_url: https://api.groq.com/openai/v1
  model: llama3-70b-8192
  timeout_seconds: 15
  api_key_env: GROQ_API_KEY
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"IR", "KP"}, cfg.HighRiskCountries)
	assert.Equal(t, 0.20, cfg.StageWeights[StageSanctionsScreening])
	assert.Equal(t, 70.0, cfg.Thresholds.EDDBelow)
	assert.Equal(t, "llama3-70b-8192", cfg.LLM.Model)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sanctioned_entities: []\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
}
