package aml

import (
	"encoding/json"
	"fmt"
	"os"
)

// SampleCase is one record of the sample case file format: a labelled
// transaction/customer pair with an optional expected outcome.
type SampleCase struct {
	Scenario        string       `json:"scenario"`
	Transaction     *Transaction `json:"transaction"`
	Customer        *Customer    `json:"customer"`
	ExpectedOutcome string       `json:"expected_outcome,omitempty"`
}

// LoadSampleCases reads a JSON case file.
func LoadSampleCases(path string) ([]SampleCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading case file: %w", err)
	}

	var cases []SampleCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("error parsing case file: %w", err)
	}
	return cases, nil
}
