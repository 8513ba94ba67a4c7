package aml

import "errors"

var (
	// ErrInvalidCase marks data errors rejected before a case enters the graph.
	ErrInvalidCase = errors.New("invalid case")

	// ErrRouting marks a routing-policy defect: the router selected a stage
	// that already executed. Fatal for the run, never a risk decision.
	ErrRouting = errors.New("routing error")

	// ErrConfig marks configuration rejected at load time.
	ErrConfig = errors.New("invalid configuration")
)
