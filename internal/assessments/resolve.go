package assessments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/pkg/query"
	"github.com/JaimeStill/meridian/pkg/repository"
)

func (r *repo) ResolveGap(ctx context.Context, dimensionID uuid.UUID, gapScore int) (*Gap, error) {
	return resolveGap(ctx, r.db, dimensionID, gapScore)
}

func (r *repo) ResolveRecommendation(ctx context.Context, dimensionID uuid.UUID, gapScore int) (*Recommendation, error) {
	return resolveRecommendation(ctx, r.db, dimensionID, gapScore)
}

func (r *repo) CreateDimensionAssessment(ctx context.Context, cmd CreateDimensionAssessmentCommand) (*DimensionAssessmentResult, error) {
	if _, err := SeverityFromGapScore(cmd.GapScore); err != nil {
		return nil, err
	}

	result, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (DimensionAssessmentResult, error) {
		var zero DimensionAssessmentResult

		status, err := repository.QueryOne(ctx, tx,
			`SELECT status FROM assessments WHERE id = $1 FOR UPDATE`,
			[]any{cmd.AssessmentID},
			func(s repository.Scanner) (Status, error) {
				var st Status
				err := s.Scan(&st)
				return st, err
			},
		)
		if err != nil {
			return zero, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}
		if status.Terminal() {
			return zero, fmt.Errorf("%w: status %s", ErrTerminal, status)
		}

		gap, err := resolveGap(ctx, tx, cmd.DimensionID, cmd.GapScore)
		if err != nil {
			return zero, err
		}

		rec, err := resolveRecommendation(ctx, tx, cmd.DimensionID, cmd.GapScore)
		if err != nil {
			return zero, err
		}

		da, err := repository.QueryOne(ctx, tx, `
			INSERT INTO dimension_assessments(id, assessment_id, dimension_id, gap_id, gap_score, current_state_id, desired_state_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, assessment_id, dimension_id, gap_id, gap_score, current_state_id, desired_state_id, created_at`,
			[]any{uuid.New(), cmd.AssessmentID, cmd.DimensionID, gap.ID, cmd.GapScore, cmd.CurrentStateID, cmd.DesiredStateID},
			scanDimensionAssessment,
		)
		if err != nil {
			if repository.IsForeignKeyViolation(err) {
				return zero, ErrStateNotFound
			}
			return zero, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		planID, err := repository.QueryOne(ctx, tx, `
			INSERT INTO action_plans(id, assessment_id)
			VALUES ($1, $2)
			ON CONFLICT (assessment_id) DO UPDATE SET assessment_id = EXCLUDED.assessment_id
			RETURNING id`,
			[]any{uuid.New(), cmd.AssessmentID},
			scanID,
		)
		if err != nil {
			return zero, fmt.Errorf("ensure action plan: %w", err)
		}

		item, err := repository.QueryOne(ctx, tx, `
			INSERT INTO action_items(id, action_plan_id, recommendation_id, dimension_assessment_id, status, priority)
			VALUES ($1, $2, $3, $4, 'pending', $5)
			RETURNING id, action_plan_id, recommendation_id, dimension_assessment_id, status, priority`,
			[]any{uuid.New(), planID, rec.ID, da.ID, rec.Priority},
			scanActionItem,
		)
		if err != nil {
			return zero, fmt.Errorf("create action item: %w", err)
		}

		return DimensionAssessmentResult{
			DimensionAssessment: da,
			Gap:                 *gap,
			Recommendation:      *rec,
			ActionItem:          item,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"dimension assessment created",
		"id", result.DimensionAssessment.ID,
		"assessment_id", cmd.AssessmentID,
		"dimension_id", cmd.DimensionID,
		"gap_score", cmd.GapScore,
	)
	return &result, nil
}

func resolveGap(ctx context.Context, q repository.Querier, dimensionID uuid.UUID, gapScore int) (*Gap, error) {
	severity, err := SeverityFromGapScore(gapScore)
	if err != nil {
		return nil, err
	}

	stmt, args := query.
		NewBuilder(gapProjection, newestFirst, query.SortField{Field: "ID", Descending: true}).
		WhereEquals("DimensionID", dimensionID).
		WhereEquals("Severity", severity).
		BuildSingleOrNull()

	g, err := repository.QueryOne(ctx, q, stmt, args, scanGap)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: dimension %s severity %s", ErrGapNotFound, dimensionID, severity)
		}
		return nil, fmt.Errorf("resolve gap: %w", err)
	}
	return &g, nil
}

func resolveRecommendation(ctx context.Context, q repository.Querier, dimensionID uuid.UUID, gapScore int) (*Recommendation, error) {
	severity, err := SeverityFromGapScore(gapScore)
	if err != nil {
		return nil, err
	}
	priority := severity.Priority()

	stmt, args := query.
		NewBuilder(recommendationProjection, query.SortField{Field: "ID"}).
		WhereEquals("DimensionID", dimensionID).
		WhereEquals("Priority", priority).
		BuildSingleOrNull()

	rec, err := repository.QueryOne(ctx, q, stmt, args, scanRecommendation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: dimension %s priority %s", ErrRecommendationNotFound, dimensionID, priority)
		}
		return nil, fmt.Errorf("resolve recommendation: %w", err)
	}
	return &rec, nil
}

func scanID(s repository.Scanner) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.Scan(&id)
	return id, err
}
