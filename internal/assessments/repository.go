package assessments

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/internal/weighting"
	"github.com/JaimeStill/meridian/pkg/auth"
	"github.com/JaimeStill/meridian/pkg/query"
	"github.com/JaimeStill/meridian/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an assessment repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "assessments"),
	}
}

func (r *repo) Handler(authz auth.Authorizer) *Handler {
	return NewHandler(r, authz, r.logger)
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	q, args := query.NewBuilder(assessmentProjection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAssessment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) Completed(ctx context.Context, orgID *uuid.UUID) ([]Assessment, error) {
	q, args := query.
		NewBuilder(assessmentProjection, query.SortField{Field: "CompletedAt"}).
		WhereEquals("Status", StatusCompleted).
		WhereEquals("OrganizationID", orgID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanAssessment)
	if err != nil {
		return nil, fmt.Errorf("query completed assessments: %w", err)
	}
	return items, nil
}

func (r *repo) DimensionAssessments(ctx context.Context, assessmentID uuid.UUID) ([]DimensionAssessment, error) {
	q, args := query.
		NewBuilder(dimensionAssessmentProjection, creationOrder, query.SortField{Field: "ID"}).
		WhereEquals("AssessmentID", assessmentID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanDimensionAssessment)
	if err != nil {
		return nil, fmt.Errorf("query dimension assessments: %w", err)
	}
	return items, nil
}

func (r *repo) Dimension(ctx context.Context, id uuid.UUID) (*Dimension, error) {
	q, args := query.NewBuilder(dimensionProjection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDimension)
	if err != nil {
		return nil, repository.MapError(err, ErrDimensionNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Gap(ctx context.Context, id uuid.UUID) (*Gap, error) {
	q, args := query.NewBuilder(gapProjection).BuildSingle("ID", id)

	g, err := repository.QueryOne(ctx, r.db, q, args, scanGap)
	if err != nil {
		return nil, repository.MapError(err, ErrGapNotFound, ErrDuplicate)
	}
	return &g, nil
}

func (r *repo) Recommendation(ctx context.Context, id uuid.UUID) (*Recommendation, error) {
	q, args := query.NewBuilder(recommendationProjection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecommendation)
	if err != nil {
		return nil, repository.MapError(err, ErrRecommendationNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) State(ctx context.Context, id uuid.UUID) (*State, error) {
	q, args := query.NewBuilder(stateProjection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanState)
	if err != nil {
		return nil, repository.MapError(err, ErrStateNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) ActionItems(ctx context.Context, dimensionAssessmentID uuid.UUID) ([]ActionItem, error) {
	q, args := query.
		NewBuilder(actionItemProjection, query.SortField{Field: "ID"}).
		WhereEquals("DimensionAssessmentID", dimensionAssessmentID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanActionItem)
	if err != nil {
		return nil, fmt.Errorf("query action items: %w", err)
	}
	return items, nil
}

func (r *repo) RecommendationsByPriority(ctx context.Context, dimensionID uuid.UUID, priority Priority) ([]Recommendation, error) {
	q, args := query.
		NewBuilder(recommendationProjection, query.SortField{Field: "Description"}).
		WhereEquals("DimensionID", dimensionID).
		WhereEquals("Priority", priority).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanRecommendation)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	return items, nil
}

func (r *repo) Complete(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	q := `
		UPDATE assessments
		SET status = $2, completed_at = COALESCE(completed_at, NOW()), updated_at = NOW()
		WHERE id = $1
		RETURNING id, organization_id, title, status, started_at, completed_at, created_at, updated_at`

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Assessment, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, StatusCompleted}, scanAssessment)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("assessment completed", "id", a.ID)
	return &a, nil
}

func (r *repo) UpdateDimensionWeight(ctx context.Context, dimensionID uuid.UUID, weight int) (*Dimension, error) {
	if err := weighting.ValidateWeight(weight); err != nil {
		return nil, err
	}

	q := `
		UPDATE dimensions SET weight = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, weight`

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Dimension, error) {
		return repository.QueryOne(ctx, tx, q, []any{dimensionID, weight}, scanDimension)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrDimensionNotFound, ErrDuplicate)
	}

	r.logger.Info("dimension weight updated", "id", d.ID, "weight", weight)
	return &d, nil
}
