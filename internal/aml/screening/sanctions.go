package screening

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

// Alert codes raised by sanctions screening
const (
	AlertSanctionsMatch = "SANCTIONS_MATCH"
)

// Maximum stage contribution for a confirmed sanctions hit.
const sanctionsHitScore = 100

// SanctionsStage screens transaction parties against the configured
// sanctioned-entities list. Any match is a hard flag: it sets
// RequiresHumanReview immediately and contributes the maximum stage score.
type SanctionsStage struct {
	logger   *zap.SugaredLogger
	matcher  *Matcher
	entities []string
	fuzzy    float64
}

// NewSanctionsStage creates the sanctions screening stage.
func NewSanctionsStage(cfg *aml.Config, matcher *Matcher, logger *zap.SugaredLogger) *SanctionsStage {
	return &SanctionsStage{
		logger:   logger,
		matcher:  matcher,
		entities: cfg.SanctionedEntities,
		fuzzy:    cfg.Matching.FuzzyMatchThreshold,
	}
}

func (s *SanctionsStage) Name() aml.StageName { return aml.StageSanctionsScreening }

// Execute matches every party exactly and fuzzily against the list.
func (s *SanctionsStage) Execute(ctx context.Context, cs *aml.CaseState) *aml.Finding {
	finding := &aml.Finding{Stage: s.Name()}

	candidates := append([]string{cs.Customer.Name}, cs.Transaction.Parties...)
	for _, candidate := range candidates {
		for _, entity := range s.entities {
			if s.matcher.ExactMatch(candidate, entity) {
				s.recordHit(cs, finding, candidate, entity, 1.0)
				continue
			}
			if score := s.matcher.Score(candidate, entity); score >= s.fuzzy {
				s.recordHit(cs, finding, candidate, entity, score)
			}
		}
	}

	return finding
}

func (s *SanctionsStage) recordHit(cs *aml.CaseState, finding *aml.Finding, candidate, entity string, score float64) {
	finding.RiskContribution = sanctionsHitScore
	finding.AddAlert(AlertSanctionsMatch)
	if finding.Detail != "" {
		finding.Detail += "; "
	}
	finding.Detail += fmt.Sprintf("%q matched sanctioned entity %q (score %.2f)", candidate, entity, score)

	// Hard flag: confirmed sanctions exposure always goes to a human.
	cs.RequiresHumanReview = true

	s.logger.Warnw("sanctions hit",
		"case_id", cs.CaseID,
		"party", candidate,
		"entity", entity,
		"score", score,
	)
}
