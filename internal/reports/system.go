package reports

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/internal/assessments"
	"github.com/JaimeStill/meridian/pkg/auth"
	"github.com/JaimeStill/meridian/pkg/lifecycle"
	"github.com/JaimeStill/meridian/pkg/pagination"
	"github.com/JaimeStill/meridian/pkg/render"
	"github.com/JaimeStill/meridian/pkg/storage"
)

// System defines the public contract for report operations.
type System interface {
	Handler(authz auth.Authorizer) *Handler
	Start(lc *lifecycle.Coordinator) error

	Find(ctx context.Context, id uuid.UUID) (*Report, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Report], error)

	// Submit completes an assessment and schedules its summary report.
	Submit(ctx context.Context, assessmentID uuid.UUID, callerID string) (*Report, error)
	// Request schedules a report of an explicit type and format.
	Request(ctx context.Context, cmd RequestCommand, callerID string) (*Report, error)
	// Retry schedules a new attempt for a failed report.
	Retry(ctx context.Context, id uuid.UUID, callerID string) (*Report, error)

	// Open returns a completed report with a reader over its artifact.
	// The caller must close File.Body.
	Open(ctx context.Context, id uuid.UUID) (*File, error)
	// Delete removes the report record, then its artifact.
	Delete(ctx context.Context, id uuid.UUID) error
}

// AssessmentSource is the assessment system as seen by the report pipeline.
type AssessmentSource interface {
	assessments.Reader
	Complete(ctx context.Context, id uuid.UUID) (*assessments.Assessment, error)
}

// File is an open report artifact.
type File struct {
	*storage.Blob
	Report   *Report
	Filename string
}

// Config holds report pipeline settings.
type Config struct {
	RenderTimeout time.Duration
	StaleAfter    time.Duration
	SweepSchedule string
	Pagination    pagination.Config
}

type system struct {
	store        Store
	blobs        storage.System
	orchestrator *Orchestrator
	sweeper      *Sweeper
	pagination   pagination.Config
	logger       *slog.Logger
}

// New assembles the report pipeline over a PostgreSQL store.
func New(
	cfg Config,
	db *sql.DB,
	source AssessmentSource,
	blobs storage.System,
	scheduler Scheduler,
	converter render.Converter,
	logger *slog.Logger,
) (System, error) {
	renderer, err := NewRenderer(converter)
	if err != nil {
		return nil, err
	}

	store := NewStore(db, logger, cfg.Pagination)
	return NewSystem(cfg, store, source, blobs, scheduler, renderer, logger), nil
}

// NewSystem assembles the report pipeline from its parts.
func NewSystem(
	cfg Config,
	store Store,
	source AssessmentSource,
	blobs storage.System,
	scheduler Scheduler,
	renderer *Renderer,
	logger *slog.Logger,
) System {
	worker := NewWorker(store, NewAggregator(source, logger), renderer, blobs, cfg.RenderTimeout, logger)

	return &system{
		store:        store,
		blobs:        blobs,
		orchestrator: NewOrchestrator(source, store, scheduler, worker, logger),
		sweeper:      NewSweeper(store, cfg.SweepSchedule, cfg.StaleAfter, logger),
		pagination:   cfg.Pagination,
		logger:       logger.With("system", "reports"),
	}
}

func (s *system) Handler(authz auth.Authorizer) *Handler {
	return NewHandler(s, authz, s.logger, s.pagination)
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	return s.sweeper.Start(lc)
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.store.Find(ctx, id)
}

func (s *system) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Report], error) {
	return s.store.List(ctx, page, filters)
}

func (s *system) Submit(ctx context.Context, assessmentID uuid.UUID, callerID string) (*Report, error) {
	return s.orchestrator.Submit(ctx, assessmentID, callerID)
}

func (s *system) Request(ctx context.Context, cmd RequestCommand, callerID string) (*Report, error) {
	return s.orchestrator.Request(ctx, cmd, callerID)
}

func (s *system) Retry(ctx context.Context, id uuid.UUID, callerID string) (*Report, error) {
	return s.orchestrator.Retry(ctx, id, callerID)
}

func (s *system) Open(ctx context.Context, id uuid.UUID) (*File, error) {
	rpt, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rpt.Status != StatusCompleted || rpt.FilePath == nil {
		return nil, fmt.Errorf("%w: report %s is %s", ErrFileUnavailable, rpt.ID, rpt.Status)
	}

	blob, err := s.blobs.Download(ctx, *rpt.FilePath)
	if err != nil {
		return nil, fmt.Errorf("download report %s: %w", rpt.ID, err)
	}

	blob.ContentType = rpt.Format.ContentType()

	return &File{
		Blob:     blob,
		Report:   rpt,
		Filename: fmt.Sprintf("report-%s.%s", rpt.ID, rpt.Format.Extension()),
	}, nil
}

func (s *system) Delete(ctx context.Context, id uuid.UUID) error {
	rpt, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	if rpt.FilePath != nil {
		if delErr := s.blobs.Delete(ctx, *rpt.FilePath); delErr != nil {
			s.logger.Warn(
				"blob delete failed after record delete",
				"key", *rpt.FilePath,
				"error", delErr,
			)
		}
	}

	return nil
}
