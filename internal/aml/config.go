package aml

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide screening configuration. Constructed once at
// startup, read-only for the duration of any run.
type Config struct {
	HighRiskCountries  []string `yaml:"high_risk_countries"`
	TaxHavens          []string `yaml:"tax_havens"`
	SanctionedEntities []string `yaml:"sanctioned_entities"`
	DarknetMarkets     []string `yaml:"darknet_markets"`
	PEPNames           []string `yaml:"pep_names"`

	StageWeights map[StageName]float64 `yaml:"stage_weights"`
	Thresholds   DecisionThresholds    `yaml:"decision_thresholds"`
	Matching     MatchingConfig        `yaml:"matching"`
	Behavior     BehaviorConfig        `yaml:"behavior"`
	LLM          LLMConfig             `yaml:"llm"`
}

// DecisionThresholds are the two cut points of the decision policy
type DecisionThresholds struct {
	ClearedBelow float64 `yaml:"cleared_below"`
	EDDBelow     float64 `yaml:"edd_below"`
}

// MatchingConfig controls fuzzy name matching for sanctions and PEP screening
type MatchingConfig struct {
	FuzzyMatchThreshold   float64 `yaml:"fuzzy_match_threshold"`
	PartialMatchThreshold float64 `yaml:"partial_match_threshold"`
}

// BehaviorConfig controls structuring and deviation detection
type BehaviorConfig struct {
	ReportingThreshold      float64 `yaml:"reporting_threshold"`
	StructuringMargin       float64 `yaml:"structuring_margin"`
	StructuringMinCount     int     `yaml:"structuring_min_count"`
	StructuringWindowHours  int     `yaml:"structuring_window_hours"`
	UniformMinCount         int     `yaml:"uniform_min_count"`
	UniformStddevBelow      float64 `yaml:"uniform_stddev_below"`
	DeviationMultiplier     float64 `yaml:"deviation_multiplier"`
	NewAccountAgeDays       int     `yaml:"new_account_age_days"`
	NewWalletAgeDays        int     `yaml:"new_wallet_age_days"`
}

// LLMConfig configures the external document analyzer
type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	APIKeyEnv      string `yaml:"api_key_env"`
}

const weightTolerance = 1e-9

// LoadConfig reads and validates a yaml configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configuration defects before any case is processed.
func (c *Config) Validate() error {
	if len(c.SanctionedEntities) == 0 {
		return fmt.Errorf("%w: sanctioned_entities must not be empty", ErrConfig)
	}

	sum := 0.0
	for _, name := range DefaultStageOrder() {
		w, ok := c.StageWeights[name]
		if !ok {
			return fmt.Errorf("%w: stage_weights missing stage %s", ErrConfig, name)
		}
		if w < 0 {
			return fmt.Errorf("%w: stage_weights[%s] must be non-negative", ErrConfig, name)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: stage_weights must sum to 1.0, got %v", ErrConfig, sum)
	}

	t := c.Thresholds
	if t.ClearedBelow < 0 || t.EDDBelow > 100 || t.ClearedBelow >= t.EDDBelow {
		return fmt.Errorf("%w: decision_thresholds must satisfy 0 <= cleared_below < edd_below <= 100", ErrConfig)
	}

	if c.Matching.FuzzyMatchThreshold <= 0 || c.Matching.FuzzyMatchThreshold > 1 {
		return fmt.Errorf("%w: matching.fuzzy_match_threshold must be in (0,1]", ErrConfig)
	}
	if c.Matching.PartialMatchThreshold <= 0 || c.Matching.PartialMatchThreshold > c.Matching.FuzzyMatchThreshold {
		return fmt.Errorf("%w: matching.partial_match_threshold must be in (0, fuzzy_match_threshold]", ErrConfig)
	}

	b := c.Behavior
	if b.ReportingThreshold <= 0 {
		return fmt.Errorf("%w: behavior.reporting_threshold must be positive", ErrConfig)
	}
	if b.StructuringMargin <= 0 || b.StructuringMargin >= 1 {
		return fmt.Errorf("%w: behavior.structuring_margin must be in (0,1)", ErrConfig)
	}
	if b.StructuringMinCount <= 0 || b.StructuringWindowHours <= 0 {
		return fmt.Errorf("%w: behavior structuring window and count must be positive", ErrConfig)
	}
	if b.DeviationMultiplier <= 1 {
		return fmt.Errorf("%w: behavior.deviation_multiplier must be greater than 1", ErrConfig)
	}

	return nil
}

// DefaultConfig returns the baseline configuration used for tests and as a
// fallback when no config file is supplied.
func DefaultConfig() *Config {
	return &Config{
		HighRiskCountries:  []string{"IR", "KP", "SY", "CU", "MM", "RU"},
		TaxHavens:          []string{"KY", "VG", "BM", "PA", "MT", "AE"},
		SanctionedEntities: []string{"narcotics_cartel_xyz", "terror_group_abc", "sanctioned_russian_bank"},
		DarknetMarkets:     []string{"AlphaMarket", "Dark0d3", "Hydra"},
		PEPNames:           []string{"Viktor Ostrovsky", "Minister Adebayo Okoro", "Gov. Elena Vasquez"},
		StageWeights: map[StageName]float64{
			StageDocumentAnalysis:   0.15,
			StageGeographicRisk:     0.20,
			StageBehavioralAnalysis: 0.20,
			StageCryptoRisk:         0.15,
			StageSanctionsScreening: 0.20,
			StagePEPScreening:       0.10,
		},
		Thresholds: DecisionThresholds{
			ClearedBelow: 30,
			EDDBelow:     70,
		},
		Matching: MatchingConfig{
			FuzzyMatchThreshold:   0.85,
			PartialMatchThreshold: 0.75,
		},
		Behavior: BehaviorConfig{
			ReportingThreshold:     10000,
			StructuringMargin:      0.10,
			StructuringMinCount:    3,
			StructuringWindowHours: 24,
			UniformMinCount:        6,
			UniformStddevBelow:     500,
			DeviationMultiplier:    3.0,
			NewAccountAgeDays:      7,
			NewWalletAgeDays:       7,
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.groq.com/openai/v1",
			Model:          "llama3-70b-8192",
			TimeoutSeconds: 15,
			APIKeyEnv:      "GROQ_API_KEY",
		},
	}
}
