// Package scoring combines per-stage risk contributions into the composite
// case score.
package scoring

import (
	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

// Aggregator computes the weighted composite score over executed stages.
type Aggregator struct {
	logger  *zap.SugaredLogger
	weights map[aml.StageName]float64
}

// NewAggregator creates an aggregator with the configured stage weights.
func NewAggregator(cfg *aml.Config, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{logger: logger, weights: cfg.StageWeights}
}

// Aggregate recomputes the composite score on the case. Skipped stages are
// excluded from the weight denominator, so missing signals never cap the
// achievable score below 100.
func (a *Aggregator) Aggregate(cs *aml.CaseState) float64 {
	weightedSum := 0.0
	weightSum := 0.0

	for _, f := range cs.OrderedFindings() {
		if f.Skipped {
			continue
		}
		w := a.weights[f.Stage]
		weightedSum += w * clamp(f.RiskContribution)
		weightSum += w
	}

	score := 0.0
	if weightSum > 0 {
		score = clamp(weightedSum / weightSum)
	}

	cs.CompositeScore = score
	a.logger.Debugw("composite score aggregated",
		"case_id", cs.CaseID,
		"score", score,
		"stages", len(cs.StageOrder),
	)
	return score
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
