package screening

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

// Alert codes raised by PEP screening
const (
	AlertPEPMatch        = "PEP_MATCH"
	AlertPEPPartialMatch = "PEP_PARTIAL_MATCH"
)

// Stage contributions for confirmed and partial PEP matches.
const (
	pepConfirmedScore = 70
	pepPartialScore   = 40
)

// PEPStage screens the customer and transaction parties against the
// configured politically-exposed-person list.
type PEPStage struct {
	logger  *zap.SugaredLogger
	matcher *Matcher
	names   []string
	fuzzy   float64
	partial float64
}

// NewPEPStage creates the PEP screening stage.
func NewPEPStage(cfg *aml.Config, matcher *Matcher, logger *zap.SugaredLogger) *PEPStage {
	return &PEPStage{
		logger:  logger,
		matcher: matcher,
		names:   cfg.PEPNames,
		fuzzy:   cfg.Matching.FuzzyMatchThreshold,
		partial: cfg.Matching.PartialMatchThreshold,
	}
}

func (p *PEPStage) Name() aml.StageName { return aml.StagePEPScreening }

// Execute takes the strongest match across customer and parties. A confirmed
// match outranks any number of partial ones.
func (p *PEPStage) Execute(ctx context.Context, cs *aml.CaseState) *aml.Finding {
	finding := &aml.Finding{Stage: p.Name()}

	candidates := append([]string{cs.Customer.Name}, cs.Transaction.Parties...)
	for _, candidate := range candidates {
		for _, pep := range p.names {
			if p.matcher.ExactMatch(candidate, pep) {
				p.record(finding, candidate, pep, pepConfirmedScore, AlertPEPMatch, 1.0)
				continue
			}
			score := p.matcher.Score(candidate, pep)
			switch {
			case score >= p.fuzzy:
				p.record(finding, candidate, pep, pepConfirmedScore, AlertPEPMatch, score)
			case score >= p.partial:
				p.record(finding, candidate, pep, pepPartialScore, AlertPEPPartialMatch, score)
			}
		}
	}

	if finding.RiskContribution > 0 {
		p.logger.Infow("pep screening matched",
			"case_id", cs.CaseID,
			"contribution", finding.RiskContribution,
			"alerts", finding.TriggeredAlerts,
		)
	}

	return finding
}

func (p *PEPStage) record(finding *aml.Finding, candidate, pep string, score float64, alert string, matchScore float64) {
	if score > finding.RiskContribution {
		finding.RiskContribution = score
	}
	finding.AddAlert(alert)
	if finding.Detail != "" {
		finding.Detail += "; "
	}
	finding.Detail += fmt.Sprintf("%q matched PEP %q (score %.2f)", candidate, pep, matchScore)
}
