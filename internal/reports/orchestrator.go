package reports

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/internal/assessments"
	"github.com/JaimeStill/meridian/pkg/dispatch"
)

// AssessmentStore is the slice of the assessment system submissions need.
type AssessmentStore interface {
	Find(ctx context.Context, id uuid.UUID) (*assessments.Assessment, error)
	Complete(ctx context.Context, id uuid.UUID) (*assessments.Assessment, error)
}

// Scheduler runs tasks detached from the calling request.
type Scheduler interface {
	Go(name string, fn dispatch.Task)
}

// Orchestrator creates pending reports and schedules their generation
// without waiting for it.
type Orchestrator struct {
	assessments AssessmentStore
	store       Store
	scheduler   Scheduler
	generator   Generator
	logger      *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	source AssessmentStore,
	store Store,
	scheduler Scheduler,
	generator Generator,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		assessments: source,
		store:       store,
		scheduler:   scheduler,
		generator:   generator,
		logger:      logger.With("system", "reports", "component", "orchestrator"),
	}
}

// Submit completes the assessment and returns a pending summary PDF report
// whose generation has been scheduled. Generation failures never fail the
// submission; they surface only on the report status.
func (o *Orchestrator) Submit(ctx context.Context, assessmentID uuid.UUID, callerID string) (*Report, error) {
	if _, err := o.assessments.Complete(ctx, assessmentID); err != nil {
		return nil, fmt.Errorf("complete assessment %s: %w", assessmentID, err)
	}

	o.logger.Info("assessment submitted", "assessment_id", assessmentID, "caller", callerID)

	return o.schedule(ctx, CreateCommand{
		AssessmentID: assessmentID,
		Type:         TypeSummary,
		Format:       FormatPDF,
		RequestedBy:  callerID,
	})
}

// Request schedules a report of an explicit type and format for an already
// submitted assessment.
func (o *Orchestrator) Request(ctx context.Context, cmd RequestCommand, callerID string) (*Report, error) {
	if _, err := ParseType(string(cmd.Type)); err != nil {
		return nil, err
	}
	if _, err := ParseFormat(string(cmd.Format)); err != nil {
		return nil, err
	}

	a, err := o.assessments.Find(ctx, cmd.AssessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != assessments.StatusCompleted {
		return nil, fmt.Errorf("%w: assessment %s is %s", ErrAssessmentIncomplete, a.ID, a.Status)
	}

	return o.schedule(ctx, CreateCommand{
		AssessmentID: cmd.AssessmentID,
		Type:         cmd.Type,
		Format:       cmd.Format,
		RequestedBy:  callerID,
	})
}

// Retry schedules a new report with the same assessment, type, and format as
// a failed one. The failed report is left untouched.
func (o *Orchestrator) Retry(ctx context.Context, reportID uuid.UUID, callerID string) (*Report, error) {
	prev, err := o.store.Find(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if prev.Status != StatusFailed {
		return nil, fmt.Errorf("%w: only failed reports can be retried, report %s is %s", ErrInvalidStatus, prev.ID, prev.Status)
	}

	rpt, err := o.schedule(ctx, CreateCommand{
		AssessmentID: prev.AssessmentID,
		Type:         prev.Type,
		Format:       prev.Format,
		RequestedBy:  callerID,
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("report retried", "report_id", rpt.ID, "previous_id", prev.ID)
	return rpt, nil
}

func (o *Orchestrator) schedule(ctx context.Context, cmd CreateCommand) (*Report, error) {
	rpt, err := o.store.Create(ctx, cmd)
	if err != nil {
		return nil, err
	}

	id := rpt.ID
	o.scheduler.Go("generate-report:"+id.String(), func(ctx context.Context) error {
		return o.generator.Generate(ctx, id)
	})

	o.logger.Info(
		"report scheduled",
		"report_id", id,
		"assessment_id", rpt.AssessmentID,
		"type", rpt.Type,
		"format", rpt.Format,
	)
	return rpt, nil
}
