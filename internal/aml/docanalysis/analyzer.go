// Package docanalysis runs LLM-assisted review of documents attached to a
// transaction. The external model sits behind the Analyzer interface so the
// pipeline can be tested with a deterministic stub.
package docanalysis

import "context"

// Analysis is the result of one external document review
type Analysis struct {
	RiskNotes string   `json:"risk_notes"`
	Entities  []string `json:"extracted_entities,omitempty"`
}

// Analyzer is the narrow capability the document stage depends on. It may
// fail or time out; the stage tolerates both.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, text string) (*Analysis, error)
}
