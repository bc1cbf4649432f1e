package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/internal/assessments"
	"github.com/JaimeStill/meridian/pkg/pagination"
	"github.com/JaimeStill/meridian/pkg/query"
	"github.com/JaimeStill/meridian/pkg/repository"
)

// Store persists report records and their status transitions. Each transition
// is a conditional update so concurrent writers cannot move a report backwards.
type Store interface {
	Create(ctx context.Context, cmd CreateCommand) (*Report, error)
	Find(ctx context.Context, id uuid.UUID) (*Report, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Report], error)
	// MarkGenerating moves a pending report to generating.
	MarkGenerating(ctx context.Context, id uuid.UUID) (*Report, error)
	// MarkCompleted moves a generating report to completed and records its artifact location.
	MarkCompleted(ctx context.Context, id uuid.UUID, filePath string) (*Report, error)
	// MarkFailed moves a pending or generating report to failed with a reason.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*Report, error)
	// FailStale fails every pending or generating report not updated since before.
	FailStale(ctx context.Context, before time.Time, reason string) (int64, error)
	// Delete removes the record and returns it so the caller can remove its artifact.
	Delete(ctx context.Context, id uuid.UUID) (*Report, error)
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewStore creates a PostgreSQL-backed Store.
func NewStore(db *sql.DB, logger *slog.Logger, pagination pagination.Config) Store {
	return &repo{
		db:         db,
		logger:     logger.With("system", "reports"),
		pagination: pagination,
	}
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Report, error) {
	q := `
		INSERT INTO reports(id, assessment_id, type, format, status, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6)` + returning

	args := []any{uuid.New(), cmd.AssessmentID, cmd.Type, cmd.Format, StatusPending, cmd.RequestedBy}

	rpt, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Report, error) {
		return repository.QueryOne(ctx, tx, q, args, scanReport)
	})
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("create report for assessment %s: %w", cmd.AssessmentID, assessments.ErrNotFound)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("report created", "id", rpt.ID, "assessment_id", rpt.AssessmentID, "type", rpt.Type, "format", rpt.Format)
	return &rpt, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Report, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rpt, err := repository.QueryOne(ctx, r.db, q, args, scanReport)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rpt, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Report], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanReport)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) MarkGenerating(ctx context.Context, id uuid.UUID) (*Report, error) {
	q := `
		UPDATE reports SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3` + returning

	return r.transition(ctx, id, q, []any{id, StatusGenerating, StatusPending}, StatusGenerating)
}

func (r *repo) MarkCompleted(ctx context.Context, id uuid.UUID, filePath string) (*Report, error) {
	q := `
		UPDATE reports
		SET status = $2, file_path = $3, failure_reason = NULL, generated_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4` + returning

	return r.transition(ctx, id, q, []any{id, StatusCompleted, filePath, StatusGenerating}, StatusCompleted)
}

func (r *repo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*Report, error) {
	q := `
		UPDATE reports SET status = $2, failure_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status IN ($4, $5)` + returning

	return r.transition(ctx, id, q, []any{id, StatusFailed, reason, StatusPending, StatusGenerating}, StatusFailed)
}

func (r *repo) FailStale(ctx context.Context, before time.Time, reason string) (int64, error) {
	q := `
		UPDATE reports SET status = $1, failure_reason = $2, updated_at = NOW()
		WHERE status IN ($3, $4) AND updated_at < $5`

	n, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		return repository.ExecCount(ctx, tx, q, StatusFailed, reason, StatusPending, StatusGenerating, before)
	})
	if err != nil {
		return 0, fmt.Errorf("fail stale reports: %w", err)
	}
	return n, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) (*Report, error) {
	rpt, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM reports WHERE id = $1", id)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("report deleted", "id", id)
	return rpt, nil
}

// transition runs a conditional status update. When no row matches it
// distinguishes a missing report from one in the wrong state.
func (r *repo) transition(ctx context.Context, id uuid.UUID, q string, args []any, target Status) (*Report, error) {
	rpt, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Report, error) {
		return repository.QueryOne(ctx, tx, q, args, scanReport)
	})
	if err == nil {
		return &rpt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mark report %s: %w", target, err)
	}

	current, findErr := r.Find(ctx, id)
	if findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("%w: cannot move report %s from %s to %s", ErrInvalidStatus, id, current.Status, target)
}
