package scoring

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

func newScoringCase() *aml.CaseState {
	return aml.NewCaseState(
		&aml.Transaction{
			Amount:             decimal.NewFromInt(5000),
			OriginCountry:      "US",
			DestinationCountry: "DE",
			Parties:            []string{"Jane Smith"},
			Timestamp:          time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
		&aml.Customer{Name: "Jane Smith", AccountAgeDays: 365},
	)
}

func record(cs *aml.CaseState, stage aml.StageName, contribution float64, skipped bool) {
	cs.RecordFinding(&aml.Finding{Stage: stage, RiskContribution: contribution, Skipped: skipped})
}

func TestAggregateWeightedAverage(t *testing.T) {
	agg := NewAggregator(aml.DefaultConfig(), zap.NewNop().Sugar())
	cs := newScoringCase()

	record(cs, aml.StageDocumentAnalysis, 10, false)
	record(cs, aml.StageGeographicRisk, 80, false)
	record(cs, aml.StageBehavioralAnalysis, 0, false)
	record(cs, aml.StageCryptoRisk, 0, false)
	record(cs, aml.StageSanctionsScreening, 0, false)
	record(cs, aml.StagePEPScreening, 0, false)

	// 0.15*10 + 0.20*80 over a full weight of 1.0
	score := agg.Aggregate(cs)
	assert.InDelta(t, 17.5, score, 1e-9)
	assert.Equal(t, score, cs.CompositeScore)
}

func TestAggregateExcludesSkippedWeights(t *testing.T) {
	agg := NewAggregator(aml.DefaultConfig(), zap.NewNop().Sugar())
	cs := newScoringCase()

	record(cs, aml.StageDocumentAnalysis, 100, false)
	record(cs, aml.StageGeographicRisk, 100, false)
	record(cs, aml.StageBehavioralAnalysis, 100, false)
	record(cs, aml.StageCryptoRisk, 0, true)
	record(cs, aml.StageSanctionsScreening, 100, false)
	record(cs, aml.StagePEPScreening, 100, false)

	// With the skipped stage out of the denominator a fully risky case
	// still reaches the top of the scale.
	assert.InDelta(t, 100, agg.Aggregate(cs), 1e-9)
}

func TestAggregateSkippedStageDoesNotDilute(t *testing.T) {
	agg := NewAggregator(aml.DefaultConfig(), zap.NewNop().Sugar())
	cs := newScoringCase()

	record(cs, aml.StageDocumentAnalysis, 0, false)
	record(cs, aml.StageGeographicRisk, 85, false)
	record(cs, aml.StageBehavioralAnalysis, 0, false)
	record(cs, aml.StageCryptoRisk, 0, true)
	record(cs, aml.StageSanctionsScreening, 0, false)
	record(cs, aml.StagePEPScreening, 0, false)

	// 0.20*85 over 0.85 instead of 1.0
	assert.InDelta(t, 20.0, agg.Aggregate(cs), 1e-9)
}

func TestAggregateEmptyCase(t *testing.T) {
	agg := NewAggregator(aml.DefaultConfig(), zap.NewNop().Sugar())
	cs := newScoringCase()

	assert.Equal(t, 0.0, agg.Aggregate(cs))
}

func TestAggregateClampsContributions(t *testing.T) {
	agg := NewAggregator(aml.DefaultConfig(), zap.NewNop().Sugar())
	cs := newScoringCase()

	record(cs, aml.StageDocumentAnalysis, 500, false)
	record(cs, aml.StageGeographicRisk, -20, false)
	record(cs, aml.StageBehavioralAnalysis, 0, false)
	record(cs, aml.StageCryptoRisk, 0, false)
	record(cs, aml.StageSanctionsScreening, 0, false)
	record(cs, aml.StagePEPScreening, 0, false)

	// The 500 clamps to 100, the -20 to 0: 0.15*100 over 1.0.
	assert.InDelta(t, 15.0, agg.Aggregate(cs), 1e-9)
}
