package aml

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/pkg/metrics"
)

// AlertStageError is attached when a stage fails internally and its
// contribution degrades to zero.
const AlertStageError = "stage_error"

// Stage is the single capability every assessment stage implements:
// read the case, produce a finding. Stages mutate only their own finding,
// except for hard flags (RequiresHumanReview).
type Stage interface {
	Name() StageName
	Execute(ctx context.Context, cs *CaseState) *Finding
}

// ConditionalStage is a stage the router may skip without executing when it
// does not apply to the case.
type ConditionalStage interface {
	Stage
	Applicable(cs *CaseState) bool
}

// ExecuteSafe runs a stage under the soft-failure contract: a panic inside a
// stage degrades to a zero-contribution finding instead of aborting the run.
func ExecuteSafe(ctx context.Context, stage Stage, cs *CaseState, logger *zap.SugaredLogger) (f *Finding) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("stage recovered from panic",
				"stage", stage.Name(),
				"case_id", cs.CaseID,
				"panic", r,
			)
			metrics.StageFailures.WithLabelValues(string(stage.Name())).Inc()
			f = &Finding{
				Stage:           stage.Name(),
				TriggeredAlerts: []string{AlertStageError},
				Detail:          fmt.Sprintf("stage failed internally: %v", r),
			}
		}
	}()

	f = stage.Execute(ctx, cs)
	if f == nil {
		f = &Finding{Stage: stage.Name()}
	}
	return f
}
