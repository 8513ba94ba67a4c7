package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

type fakeStage struct {
	name aml.StageName
}

func (f *fakeStage) Name() aml.StageName { return f.name }

func (f *fakeStage) Execute(ctx context.Context, cs *aml.CaseState) *aml.Finding {
	return &aml.Finding{Stage: f.name}
}

type fakeConditionalStage struct {
	fakeStage
	applicable bool
}

func (f *fakeConditionalStage) Applicable(cs *aml.CaseState) bool { return f.applicable }

func allFakeStages(cryptoApplicable bool) []aml.Stage {
	stages := make([]aml.Stage, 0, 6)
	for _, name := range aml.DefaultStageOrder() {
		if name == aml.StageCryptoRisk {
			stages = append(stages, &fakeConditionalStage{
				fakeStage:  fakeStage{name: name},
				applicable: cryptoApplicable,
			})
			continue
		}
		stages = append(stages, &fakeStage{name: name})
	}
	return stages
}

// walk drives the router to terminal, recording the visited route sequence.
func walk(t *testing.T, r *Router, cs *aml.CaseState) []Route {
	t.Helper()
	var routes []Route
	for i := 0; i < 20; i++ {
		route := r.Next(cs)
		if route.Terminal {
			return routes
		}
		routes = append(routes, route)
		cs.RecordFinding(&aml.Finding{Stage: route.Next, Skipped: route.Skip})
	}
	t.Fatal("router never reached terminal")
	return nil
}

func TestRouterVisitsDefaultOrder(t *testing.T) {
	router := NewRouter(allFakeStages(true))
	cs := newDecisionCase()

	routes := walk(t, router, cs)
	require.Len(t, routes, 6)
	for i, name := range aml.DefaultStageOrder() {
		assert.Equal(t, name, routes[i].Next)
		assert.False(t, routes[i].Skip)
	}
}

func TestRouterSkipMarksInapplicableStage(t *testing.T) {
	router := NewRouter(allFakeStages(false))
	cs := newDecisionCase()

	routes := walk(t, router, cs)
	require.Len(t, routes, 6)

	for _, route := range routes {
		if route.Next == aml.StageCryptoRisk {
			assert.True(t, route.Skip, "inapplicable crypto stage must be skip-marked")
		} else {
			assert.False(t, route.Skip)
		}
	}
}

func TestRouterHardFlagShortCircuits(t *testing.T) {
	router := NewRouter(allFakeStages(true))
	cs := newDecisionCase()
	cs.RequiresHumanReview = true

	assert.True(t, router.Next(cs).Terminal)
}

func TestRouterHardFlagMidRun(t *testing.T) {
	router := NewRouter(allFakeStages(true))
	cs := newDecisionCase()

	// Visit two stages, then a hard flag lands.
	for i := 0; i < 2; i++ {
		route := router.Next(cs)
		require.False(t, route.Terminal)
		cs.RecordFinding(&aml.Finding{Stage: route.Next})
	}
	cs.RequiresHumanReview = true

	assert.True(t, router.Next(cs).Terminal)
}

func TestRouterIgnoresUnregisteredStages(t *testing.T) {
	// Only three stages registered; the router walks just those.
	stages := []aml.Stage{
		&fakeStage{name: aml.StageGeographicRisk},
		&fakeStage{name: aml.StageSanctionsScreening},
		&fakeStage{name: aml.StagePEPScreening},
	}
	router := NewRouter(stages)
	cs := newDecisionCase()

	routes := walk(t, router, cs)
	require.Len(t, routes, 3)
	assert.Equal(t, aml.StageGeographicRisk, routes[0].Next)
	assert.Equal(t, aml.StageSanctionsScreening, routes[1].Next)
	assert.Equal(t, aml.StagePEPScreening, routes[2].Next)
}
