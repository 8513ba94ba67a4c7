package docanalysis

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

// Alert codes raised by document analysis
const (
	AlertLLMUnavailable   = "llm_unavailable"
	AlertMissingDocuments = "MISSING_DOCUMENTS"
)

// Risk codes the analyzer is asked to emit; anything else in its output is
// treated as prose.
var knownRiskCodes = map[string]bool{
	"INVOICE_MISMATCH":       true,
	"PHANTOM_SHIPMENT":       true,
	"PROHIBITED_GOODS":       true,
	"SHELL_COMPANY":          true,
	"DARKNET_CONNECTION":     true,
	"TRADE_BASED_LAUNDERING": true,
}

const (
	missingDocumentsScore = 10
	perRiskCodeScore      = 15
)

var riskCodePattern = regexp.MustCompile(`[A-Z_]{4,}`)

// Stage reviews attached documents through the external analyzer. The
// external call is bounded by a per-call timeout; on error or timeout the
// stage degrades to zero contribution and never aborts the run.
type Stage struct {
	logger   *zap.SugaredLogger
	analyzer Analyzer
	timeout  time.Duration
}

// NewStage creates the document analysis stage.
func NewStage(cfg *aml.Config, analyzer Analyzer, logger *zap.SugaredLogger) *Stage {
	return &Stage{
		logger:   logger,
		analyzer: analyzer,
		timeout:  time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}
}

func (s *Stage) Name() aml.StageName { return aml.StageDocumentAnalysis }

func (s *Stage) Execute(ctx context.Context, cs *aml.CaseState) *aml.Finding {
	finding := &aml.Finding{Stage: s.Name()}

	docs := cs.Transaction.Documents
	if len(docs) == 0 {
		finding.RiskContribution = missingDocumentsScore
		finding.AddAlert(AlertMissingDocuments)
		finding.Detail = "no documents attached to transaction"
		return finding
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	analysis, err := s.analyzer.AnalyzeDocument(callCtx, strings.Join(docs, "\n---\n"))
	if err != nil {
		s.logger.Warnw("document analyzer unavailable",
			"case_id", cs.CaseID,
			"error", err,
		)
		finding.RiskContribution = 0
		finding.AddAlert(AlertLLMUnavailable)
		finding.Detail = "external analyzer failed: " + err.Error()
		return finding
	}

	codes := extractRiskCodes(analysis.RiskNotes)
	for _, code := range codes {
		finding.AddAlert(code)
	}
	finding.RiskContribution = float64(len(codes) * perRiskCodeScore)
	if finding.RiskContribution > 100 {
		finding.RiskContribution = 100
	}

	finding.Detail = analysis.RiskNotes
	if len(analysis.Entities) > 0 {
		finding.Detail += " [entities: " + strings.Join(analysis.Entities, ", ") + "]"
	}

	return finding
}

// extractRiskCodes pulls known risk codes out of the analyzer's prose,
// deduplicated in order of first appearance.
func extractRiskCodes(notes string) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, match := range riskCodePattern.FindAllString(notes, -1) {
		if knownRiskCodes[match] && !seen[match] {
			seen[match] = true
			codes = append(codes, match)
		}
	}
	return codes
}
