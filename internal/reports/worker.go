package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/pkg/formatting"
	"github.com/JaimeStill/meridian/pkg/storage"
)

const maxReasonLength = 1024

// Generator runs generation for one report.
type Generator interface {
	Generate(ctx context.Context, reportID uuid.UUID) error
}

// Worker drives a report from pending through generating to completed or failed.
type Worker struct {
	store    Store
	source   DataSource
	renderer *Renderer
	blobs    storage.System
	timeout  time.Duration
	logger   *slog.Logger
}

// NewWorker creates a Worker. timeout bounds rendering and conversion of a
// single report; zero disables the bound.
func NewWorker(
	store Store,
	source DataSource,
	renderer *Renderer,
	blobs storage.System,
	timeout time.Duration,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		store:    store,
		source:   source,
		renderer: renderer,
		blobs:    blobs,
		timeout:  timeout,
		logger:   logger.With("system", "reports", "component", "worker"),
	}
}

// Generate produces the artifact for reportID. A missing report, or one that
// is no longer pending, is returned without a state change. Every later
// failure marks the report failed with a reason and is returned.
func (w *Worker) Generate(ctx context.Context, reportID uuid.UUID) error {
	start := time.Now()

	rpt, err := w.store.Find(ctx, reportID)
	if err != nil {
		return fmt.Errorf("load report %s: %w", reportID, err)
	}

	logger := w.logger.With("report_id", rpt.ID, "assessment_id", rpt.AssessmentID)

	rpt, err = w.store.MarkGenerating(ctx, rpt.ID)
	if err != nil {
		return err
	}
	logger.Info("report generating", "status", rpt.Status, "type", rpt.Type, "format", rpt.Format)

	key, err := w.produce(ctx, rpt)
	if err != nil {
		return w.fail(ctx, logger, rpt.ID, err, start)
	}

	done, err := w.store.MarkCompleted(ctx, rpt.ID, key)
	if err != nil {
		if delErr := w.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return w.fail(ctx, logger, rpt.ID, fmt.Errorf("record completion: %w", err), start)
	}

	logger.Info(
		"report completed",
		"status", done.Status,
		"file_path", key,
		"duration", time.Since(start),
	)
	return nil
}

func (w *Worker) produce(ctx context.Context, rpt *Report) (string, error) {
	data, err := w.source.Aggregate(ctx, rpt.AssessmentID)
	if err != nil {
		return "", fmt.Errorf("aggregate report data: %w", err)
	}

	artifact, err := w.render(ctx, rpt, data)
	if err != nil {
		return "", err
	}

	key := StorageKey(rpt.ID, rpt.Format)
	if _, err := w.blobs.Upload(ctx, key, bytes.NewReader(artifact.Data), artifact.ContentType); err != nil {
		return "", fmt.Errorf("upload report artifact: %w", err)
	}

	w.logger.Debug(
		"report artifact stored",
		"report_id", rpt.ID,
		"key", key,
		"size", formatting.FormatBytes(int64(len(artifact.Data)), 1),
	)
	return key, nil
}

func (w *Worker) render(ctx context.Context, rpt *Report, data *ReportData) (*Artifact, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	artifact, err := w.renderer.Render(ctx, rpt, data)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("render timed out after %s: %w", w.timeout, err)
		}
		return nil, err
	}
	return artifact, nil
}

// fail records cause on the report. The update runs on a context detached
// from ctx, which may already be cancelled or past its deadline.
func (w *Worker) fail(ctx context.Context, logger *slog.Logger, id uuid.UUID, cause error, start time.Time) error {
	reason := failureReason(cause)

	rpt, err := w.store.MarkFailed(context.WithoutCancel(ctx), id, reason)
	if err != nil {
		logger.Error("mark report failed", "error", err, "cause", cause)
		return errors.Join(cause, err)
	}

	logger.Warn(
		"report failed",
		"status", rpt.Status,
		"reason", reason,
		"duration", time.Since(start),
	)
	return cause
}

func failureReason(err error) string {
	reason := err.Error()
	if len(reason) > maxReasonLength {
		reason = strings.ToValidUTF8(reason[:maxReasonLength], "")
	}
	return reason
}
