// Package workflow drives a case through the fixed assessment graph: router,
// decision node, and the engine loop.
package workflow

import (
	"github.com/clearwater-labs/amlguard/internal/aml"
)

// Route is the router's answer to "what next" for a case.
type Route struct {
	// Next is the stage to execute, or to skip-mark when Skip is set.
	Next aml.StageName
	// Skip instructs the engine to mark the stage visited with a zero
	// finding without executing it.
	Skip bool
	// Terminal sends the case to the decision node.
	Terminal bool
}

// Router is the conditional-edge policy of the screening graph. It is a pure
// function of case state; the graph is acyclic per run.
type Router struct {
	order  []aml.StageName
	stages map[aml.StageName]aml.Stage
}

// NewRouter builds a router over the given stages using the fixed default
// visit order.
func NewRouter(stages []aml.Stage) *Router {
	byName := make(map[aml.StageName]aml.Stage, len(stages))
	for _, s := range stages {
		byName[s.Name()] = s
	}
	return &Router{
		order:  aml.DefaultStageOrder(),
		stages: byName,
	}
}

// Next applies the routing rules in priority order:
//  1. a hard flag (requires_human_review) short-circuits to the decision node;
//  2. an inapplicable conditional stage is skip-marked without execution;
//  3. remaining stages run in the fixed default order;
//  4. all stages visited means terminal.
func (r *Router) Next(cs *aml.CaseState) Route {
	if cs.RequiresHumanReview {
		return Route{Terminal: true}
	}

	for _, name := range r.order {
		if cs.VisitedStage(name) {
			continue
		}
		stage, ok := r.stages[name]
		if !ok {
			continue
		}
		if cond, isCond := stage.(aml.ConditionalStage); isCond && !cond.Applicable(cs) {
			return Route{Next: name, Skip: true}
		}
		return Route{Next: name}
	}

	return Route{Terminal: true}
}
