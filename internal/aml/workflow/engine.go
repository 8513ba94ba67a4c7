package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
	"github.com/clearwater-labs/amlguard/internal/aml/detection"
	"github.com/clearwater-labs/amlguard/internal/aml/docanalysis"
	"github.com/clearwater-labs/amlguard/internal/aml/scoring"
	"github.com/clearwater-labs/amlguard/internal/aml/screening"
	"github.com/clearwater-labs/amlguard/pkg/metrics"
)

// routePolicy lets tests substitute the routing policy.
type routePolicy interface {
	Next(cs *aml.CaseState) Route
}

// Engine executes the screening graph for one case at a time. Engines are
// safe for concurrent use: all per-case state lives on the CaseState.
type Engine struct {
	logger     *zap.SugaredLogger
	router     routePolicy
	stages     map[aml.StageName]aml.Stage
	aggregator *scoring.Aggregator
	decision   *DecisionNode
}

// reviewDeadline is how long a SAR-filed case may wait for its human review.
const reviewDeadline = 24 * time.Hour

// NewEngine wires the six assessment stages, router, aggregator and decision
// node from one immutable configuration.
func NewEngine(cfg *aml.Config, analyzer docanalysis.Analyzer, logger *zap.SugaredLogger) *Engine {
	matcher := screening.NewMatcher(logger)

	stages := []aml.Stage{
		docanalysis.NewStage(cfg, analyzer, logger),
		detection.NewGeographicStage(cfg, logger),
		detection.NewBehavioralStage(cfg, logger),
		detection.NewCryptoStage(cfg, logger),
		screening.NewSanctionsStage(cfg, matcher, logger),
		screening.NewPEPStage(cfg, matcher, logger),
	}

	byName := make(map[aml.StageName]aml.Stage, len(stages))
	for _, s := range stages {
		byName[s.Name()] = s
	}

	return &Engine{
		logger:     logger,
		router:     NewRouter(stages),
		stages:     byName,
		aggregator: scoring.NewAggregator(cfg, logger),
		decision:   NewDecisionNode(cfg, logger),
	}
}

// RunAnalysis screens one transaction/customer pair and returns the report.
// Data errors fail fast before the graph; a router defect aborts with a
// routing error instead of a risk decision.
func (e *Engine) RunAnalysis(ctx context.Context, tx *aml.Transaction, customer *aml.Customer) (*aml.AnalysisReport, error) {
	if err := aml.ValidateCase(tx, customer); err != nil {
		return nil, err
	}

	start := time.Now()
	cs := aml.NewCaseState(tx, customer)

	e.logger.Infow("screening started",
		"case_id", cs.CaseID,
		"amount", tx.Amount,
		"origin", tx.OriginCountry,
		"destination", tx.DestinationCountry,
	)

	for {
		route := e.router.Next(cs)
		if route.Terminal {
			break
		}
		if cs.VisitedStage(route.Next) {
			return nil, fmt.Errorf("%w: router selected already-visited stage %s", aml.ErrRouting, route.Next)
		}
		if route.Skip {
			cs.RecordFinding(&aml.Finding{
				Stage:   route.Next,
				Skipped: true,
				Detail:  "stage not applicable to case; skipped without execution",
			})
			continue
		}
		stage, ok := e.stages[route.Next]
		if !ok {
			return nil, fmt.Errorf("%w: router selected unknown stage %s", aml.ErrRouting, route.Next)
		}
		cs.RecordFinding(aml.ExecuteSafe(ctx, stage, cs, e.logger))
	}

	e.aggregator.Aggregate(cs)
	e.decision.Decide(cs)

	report := buildReport(cs)

	metrics.ScreeningsProcessed.WithLabelValues(string(cs.Decision)).Inc()
	metrics.ScreeningLatency.Observe(time.Since(start).Seconds())
	if cs.Decision == aml.DecisionSARFiled {
		metrics.SARsFiled.Inc()
	}

	e.logger.Infow("screening completed",
		"case_id", cs.CaseID,
		"decision", cs.Decision,
		"composite_score", cs.CompositeScore,
		"alerts", len(report.Alerts),
		"duration", time.Since(start),
	)

	return report, nil
}

func buildReport(cs *aml.CaseState) *aml.AnalysisReport {
	report := &aml.AnalysisReport{
		CaseID:              cs.CaseID,
		CompositeScore:      cs.CompositeScore,
		Decision:            cs.Decision,
		RequiresHumanReview: cs.RequiresHumanReview,
		Findings:            cs.OrderedFindings(),
		Alerts:              cs.Alerts(),
		DecisionPath:        cs.StageOrder,
	}

	if cs.Decision == aml.DecisionSARFiled {
		filedAt := time.Now().UTC()
		deadline := filedAt.Add(reviewDeadline)
		report.SARFiledAt = &filedAt
		report.ReviewDeadline = &deadline
	}

	return report
}
