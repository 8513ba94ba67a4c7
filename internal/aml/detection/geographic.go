package detection

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

// Per-jurisdiction contributions and the bonus applied when both endpoints
// of the transaction sit in high-risk jurisdictions.
const (
	highRiskCountryScore = 60
	taxHavenScore        = 35
	combinationBonus     = 25
)

// GeographicStage scores the jurisdictions in the transaction path against
// the configured high-risk-country and tax-haven sets.
type GeographicStage struct {
	logger    *zap.SugaredLogger
	highRisk  map[string]bool
	taxHavens map[string]bool
}

// NewGeographicStage creates the geographic risk stage.
func NewGeographicStage(cfg *aml.Config, logger *zap.SugaredLogger) *GeographicStage {
	return &GeographicStage{
		logger:    logger,
		highRisk:  toSet(cfg.HighRiskCountries),
		taxHavens: toSet(cfg.TaxHavens),
	}
}

func (g *GeographicStage) Name() aml.StageName { return aml.StageGeographicRisk }

// Execute scores every country in the path, takes the worst single-country
// score, and adds a combination bonus when two or more high-risk
// jurisdictions appear.
func (g *GeographicStage) Execute(ctx context.Context, cs *aml.CaseState) *aml.Finding {
	finding := &aml.Finding{Stage: g.Name()}
	tx := cs.Transaction

	countries := append([]string{tx.OriginCountry, tx.DestinationCountry}, tx.IntermediateCountries...)

	worst := 0.0
	highRiskHits := 0
	for _, cc := range countries {
		score := 0.0
		if g.highRisk[cc] {
			score += highRiskCountryScore
			highRiskHits++
			finding.AddAlert(fmt.Sprintf("HIGH_RISK_%s", cc))
		}
		if g.taxHavens[cc] {
			score += taxHavenScore
			finding.AddAlert(fmt.Sprintf("TAX_HAVEN_%s", cc))
		}
		if score > worst {
			worst = score
		}
	}

	finding.RiskContribution = worst
	if highRiskHits >= 2 {
		finding.RiskContribution += combinationBonus
	}
	if finding.RiskContribution > 100 {
		finding.RiskContribution = 100
	}

	if len(finding.TriggeredAlerts) > 0 {
		finding.Detail = fmt.Sprintf("jurisdiction path %v raised %d alert(s)", countries, len(finding.TriggeredAlerts))
	}

	return finding
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
