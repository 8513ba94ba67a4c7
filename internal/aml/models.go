package aml

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Decision represents the terminal outcome of a screening run
type Decision string

const (
	DecisionPending              Decision = "PENDING"
	DecisionCleared              Decision = "CLEARED"
	DecisionEnhancedDueDiligence Decision = "ENHANCED_DUE_DILIGENCE"
	DecisionSARFiled             Decision = "SAR_FILED"
)

// StageName identifies one of the fixed assessment stages
type StageName string

const (
	StageDocumentAnalysis   StageName = "document_analysis"
	StageGeographicRisk     StageName = "geographic_risk"
	StageBehavioralAnalysis StageName = "behavioral_analysis"
	StageCryptoRisk         StageName = "crypto_risk"
	StageSanctionsScreening StageName = "sanctions_screening"
	StagePEPScreening       StageName = "pep_screening"
)

// DefaultStageOrder returns the fixed visit order used by the router.
func DefaultStageOrder() []StageName {
	return []StageName{
		StageDocumentAnalysis,
		StageGeographicRisk,
		StageBehavioralAnalysis,
		StageCryptoRisk,
		StageSanctionsScreening,
		StagePEPScreening,
	}
}

// CryptoDetails carries cryptocurrency-specific transaction attributes
type CryptoDetails struct {
	MixerUsed     bool   `json:"mixer_used"`
	DarknetMarket string `json:"darknet_market,omitempty"`
	WalletAgeDays int    `json:"wallet_age_days"`
}

// Transaction is the transaction under screening. Immutable once a case starts.
type Transaction struct {
	Amount                decimal.Decimal   `json:"amount"`
	Currency              string            `json:"currency,omitempty"`
	OriginCountry         string            `json:"origin_country" validate:"required,len=2"`
	DestinationCountry    string            `json:"destination_country" validate:"required,len=2"`
	IntermediateCountries []string          `json:"intermediate_countries,omitempty"`
	Parties               []string          `json:"parties" validate:"required,min=1"`
	Timestamp             time.Time         `json:"timestamp" validate:"required"`
	AssetType             string            `json:"asset_type,omitempty"`
	CryptoDetails         *CryptoDetails    `json:"crypto_details,omitempty"`
	Documents             []string          `json:"documents,omitempty"`
	Metadata              map[string]string `json:"metadata,omitempty"`
}

// HistoricalTransaction is one prior transaction in the customer's history
type HistoricalTransaction struct {
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// Customer is the customer profile associated with the transaction.
// Immutable during a single run.
type Customer struct {
	Name               string                  `json:"name" validate:"required"`
	AccountAgeDays     int                     `json:"account_age_days" validate:"gte=0"`
	TransactionHistory []HistoricalTransaction `json:"transaction_history"`
}

// Finding is the output of a single assessment stage
type Finding struct {
	Stage            StageName `json:"stage"`
	RiskContribution float64   `json:"risk_contribution"`
	TriggeredAlerts  []string  `json:"triggered_alerts,omitempty"`
	Detail           string    `json:"detail,omitempty"`
	// Skipped marks a stage the router bypassed; its weight is excluded
	// from aggregation.
	Skipped bool `json:"skipped,omitempty"`
}

// AddAlert appends an alert code, ignoring duplicates.
func (f *Finding) AddAlert(code string) {
	for _, a := range f.TriggeredAlerts {
		if a == code {
			return
		}
	}
	f.TriggeredAlerts = append(f.TriggeredAlerts, code)
}

// CaseState is the shared mutable record passed through every stage of a run.
// One CaseState per RunAnalysis invocation; never shared across cases.
type CaseState struct {
	CaseID      uuid.UUID
	Transaction *Transaction
	Customer    *Customer

	// Findings keyed by stage; StageOrder preserves execution order.
	Findings   map[StageName]*Finding
	StageOrder []StageName

	CompositeScore      float64
	Visited             map[StageName]bool
	Decision            Decision
	RequiresHumanReview bool
}

// NewCaseState creates the case state for one screening run.
func NewCaseState(tx *Transaction, customer *Customer) *CaseState {
	return &CaseState{
		CaseID:      uuid.New(),
		Transaction: tx,
		Customer:    customer,
		Findings:    make(map[StageName]*Finding),
		Visited:     make(map[StageName]bool),
		Decision:    DecisionPending,
	}
}

// RecordFinding stores a stage's finding and marks the stage visited.
func (cs *CaseState) RecordFinding(f *Finding) {
	if _, seen := cs.Findings[f.Stage]; !seen {
		cs.StageOrder = append(cs.StageOrder, f.Stage)
	}
	cs.Findings[f.Stage] = f
	cs.Visited[f.Stage] = true
}

// VisitedStage reports whether a stage already executed (or was skip-marked).
func (cs *CaseState) VisitedStage(name StageName) bool {
	return cs.Visited[name]
}

// OrderedFindings returns findings in execution order.
func (cs *CaseState) OrderedFindings() []*Finding {
	out := make([]*Finding, 0, len(cs.StageOrder))
	for _, name := range cs.StageOrder {
		out = append(out, cs.Findings[name])
	}
	return out
}

// Alerts returns the union of all triggered alerts in first-seen order.
func (cs *CaseState) Alerts() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range cs.OrderedFindings() {
		for _, a := range f.TriggeredAlerts {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	return out
}

// AnalysisReport is the user-facing result of one screening run
type AnalysisReport struct {
	CaseID              uuid.UUID   `json:"case_id"`
	CompositeScore      float64     `json:"composite_score"`
	Decision            Decision    `json:"decision"`
	RequiresHumanReview bool        `json:"requires_human_review"`
	Findings            []*Finding  `json:"findings"`
	Alerts              []string    `json:"alerts"`
	DecisionPath        []StageName `json:"decision_path"`
	SARFiledAt          *time.Time  `json:"sar_filed_at,omitempty"`
	ReviewDeadline      *time.Time  `json:"review_deadline,omitempty"`
}
