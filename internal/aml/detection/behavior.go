package detection

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

// Alert codes raised by behavioral analysis
const (
	AlertStructuringPattern   = "STRUCTURING_PATTERN"
	AlertUniformTransactions  = "UNIFORM_TRANSACTIONS"
	AlertAmountDeviation      = "AMOUNT_DEVIATION"
	AlertNewAccount           = "NEW_ACCOUNT"
)

// Contributions per behavioral signal; the stage total is their clipped sum.
const (
	structuringScore = 45
	uniformScore     = 25
	deviationScore   = 30
	newAccountScore  = 15
)

// BehavioralStage compares the current transaction against the customer's
// history for structuring and deviation patterns.
type BehavioralStage struct {
	logger *zap.SugaredLogger
	cfg    aml.BehaviorConfig
}

// NewBehavioralStage creates the behavioral analysis stage.
func NewBehavioralStage(cfg *aml.Config, logger *zap.SugaredLogger) *BehavioralStage {
	return &BehavioralStage{logger: logger, cfg: cfg.Behavior}
}

func (b *BehavioralStage) Name() aml.StageName { return aml.StageBehavioralAnalysis }

func (b *BehavioralStage) Execute(ctx context.Context, cs *aml.CaseState) *aml.Finding {
	finding := &aml.Finding{Stage: b.Name()}
	tx := cs.Transaction
	history := cs.Customer.TransactionHistory

	// Recent window: prior transactions inside the structuring window plus
	// the current one.
	window := time.Duration(b.cfg.StructuringWindowHours) * time.Hour
	recent := []decimal.Decimal{tx.Amount}
	for _, h := range history {
		if tx.Timestamp.Sub(h.Timestamp) >= 0 && tx.Timestamp.Sub(h.Timestamp) < window {
			recent = append(recent, h.Amount)
		}
	}

	threshold := decimal.NewFromFloat(b.cfg.ReportingThreshold)
	floor := threshold.Mul(decimal.NewFromFloat(1 - b.cfg.StructuringMargin))

	justBelow := 0
	for _, amount := range recent {
		if amount.GreaterThanOrEqual(floor) && amount.LessThan(threshold) {
			justBelow++
		}
	}
	if justBelow >= b.cfg.StructuringMinCount {
		finding.RiskContribution += structuringScore
		finding.AddAlert(AlertStructuringPattern)
		finding.Detail = fmt.Sprintf("%d transaction(s) within %.0f%% below the %s reporting threshold in %dh",
			justBelow, b.cfg.StructuringMargin*100, threshold, b.cfg.StructuringWindowHours)
	}

	if len(recent) >= b.cfg.UniformMinCount && stddev(recent) < b.cfg.UniformStddevBelow {
		finding.RiskContribution += uniformScore
		finding.AddAlert(AlertUniformTransactions)
	}

	if avg := average(history); avg.IsPositive() {
		limit := avg.Mul(decimal.NewFromFloat(b.cfg.DeviationMultiplier))
		if tx.Amount.GreaterThan(limit) {
			finding.RiskContribution += deviationScore
			finding.AddAlert(AlertAmountDeviation)
		}
	}

	if cs.Customer.AccountAgeDays < b.cfg.NewAccountAgeDays {
		finding.RiskContribution += newAccountScore
		finding.AddAlert(AlertNewAccount)
	}

	if finding.RiskContribution > 100 {
		finding.RiskContribution = 100
	}

	return finding
}

func average(history []aml.HistoricalTransaction) decimal.Decimal {
	if len(history) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, h := range history {
		sum = sum.Add(h.Amount)
	}
	return sum.Div(decimal.NewFromInt(int64(len(history))))
}

func stddev(amounts []decimal.Decimal) float64 {
	if len(amounts) < 2 {
		return 0
	}
	mean := 0.0
	for _, a := range amounts {
		mean += a.InexactFloat64()
	}
	mean /= float64(len(amounts))

	variance := 0.0
	for _, a := range amounts {
		d := a.InexactFloat64() - mean
		variance += d * d
	}
	variance /= float64(len(amounts) - 1)
	return math.Sqrt(variance)
}
