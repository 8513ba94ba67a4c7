package workflow

import (
	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

// DecisionNode is the terminal stage of the graph. It maps the composite
// score and hard flags to a final verdict.
type DecisionNode struct {
	logger     *zap.SugaredLogger
	thresholds aml.DecisionThresholds
}

// NewDecisionNode creates the decision node with the configured thresholds.
func NewDecisionNode(cfg *aml.Config, logger *zap.SugaredLogger) *DecisionNode {
	return &DecisionNode{logger: logger, thresholds: cfg.Thresholds}
}

// Decide sets the case decision exactly once. Calling it on an already
// decided case returns the existing decision unchanged.
func (d *DecisionNode) Decide(cs *aml.CaseState) aml.Decision {
	if cs.Decision != aml.DecisionPending {
		return cs.Decision
	}

	switch {
	case cs.RequiresHumanReview || cs.CompositeScore >= d.thresholds.EDDBelow:
		cs.Decision = aml.DecisionSARFiled
		cs.RequiresHumanReview = true
	case cs.CompositeScore >= d.thresholds.ClearedBelow:
		cs.Decision = aml.DecisionEnhancedDueDiligence
	default:
		cs.Decision = aml.DecisionCleared
	}

	d.logger.Infow("case decided",
		"case_id", cs.CaseID,
		"decision", cs.Decision,
		"composite_score", cs.CompositeScore,
		"requires_human_review", cs.RequiresHumanReview,
	)
	return cs.Decision
}
