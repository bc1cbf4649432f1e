package assessments

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/pkg/auth"
)

// Reader is the read model over the assessment graph.
type Reader interface {
	Find(ctx context.Context, id uuid.UUID) (*Assessment, error)
	// Completed returns completed assessments, restricted to orgID when non-nil.
	Completed(ctx context.Context, orgID *uuid.UUID) ([]Assessment, error)
	// DimensionAssessments returns an assessment's results in creation order.
	DimensionAssessments(ctx context.Context, assessmentID uuid.UUID) ([]DimensionAssessment, error)
	Dimension(ctx context.Context, id uuid.UUID) (*Dimension, error)
	Gap(ctx context.Context, id uuid.UUID) (*Gap, error)
	Recommendation(ctx context.Context, id uuid.UUID) (*Recommendation, error)
	State(ctx context.Context, id uuid.UUID) (*State, error)
	// ActionItems returns the action items recorded for a dimension-assessment.
	ActionItems(ctx context.Context, dimensionAssessmentID uuid.UUID) ([]ActionItem, error)
	// RecommendationsByPriority returns a dimension's recommendations with the given priority.
	RecommendationsByPriority(ctx context.Context, dimensionID uuid.UUID, priority Priority) ([]Recommendation, error)
}

// Resolver maps gap scores to the gap and recommendation they reference.
type Resolver interface {
	// ResolveGap returns the gap of the dimension whose severity matches gapScore.
	// When several match, the most recently created wins.
	ResolveGap(ctx context.Context, dimensionID uuid.UUID, gapScore int) (*Gap, error)
	// ResolveRecommendation returns the dimension's recommendation whose priority
	// is named after the severity of gapScore.
	ResolveRecommendation(ctx context.Context, dimensionID uuid.UUID, gapScore int) (*Recommendation, error)
}

// System defines the public contract for assessment domain operations.
type System interface {
	Reader
	Resolver

	Handler(authz auth.Authorizer) *Handler

	// Complete sets the assessment status to completed and stamps completed_at.
	Complete(ctx context.Context, id uuid.UUID) (*Assessment, error)
	// CreateDimensionAssessment records a dimension result on a non-terminal
	// assessment, resolving its gap and recommendation from the gap score.
	CreateDimensionAssessment(ctx context.Context, cmd CreateDimensionAssessmentCommand) (*DimensionAssessmentResult, error)
	// UpdateDimensionWeight sets a dimension weight after validating it is within [0,100].
	UpdateDimensionWeight(ctx context.Context, dimensionID uuid.UUID, weight int) (*Dimension, error)
}
