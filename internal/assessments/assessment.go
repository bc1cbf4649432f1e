// Package assessments implements the assessment graph read model used by the
// report pipeline: assessments, their dimension results, and the gaps,
// recommendations, states, and action items those results reference. It also
// owns the status transition on submission, dimension-assessment creation with
// gap and recommendation resolution, and dimension weight updates.
package assessments

import (
	"time"

	"github.com/google/uuid"
)

// Assessment is one digital-maturity evaluation of an organization.
type Assessment struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Title          string     `json:"title"`
	Status         Status     `json:"status"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Dimension is a named evaluation axis. A nil Weight counts as 100.
type Dimension struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Weight      *int      `json:"weight"`
}

// DimensionAssessment records one dimension's result within an assessment.
type DimensionAssessment struct {
	ID             uuid.UUID  `json:"id"`
	AssessmentID   uuid.UUID  `json:"assessment_id"`
	DimensionID    uuid.UUID  `json:"dimension_id"`
	GapID          uuid.UUID  `json:"gap_id"`
	GapScore       int        `json:"gap_score"`
	CurrentStateID *uuid.UUID `json:"current_state_id"`
	DesiredStateID *uuid.UUID `json:"desired_state_id"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Gap is a dimension-scoped severity classification.
type Gap struct {
	ID          uuid.UUID `json:"id"`
	DimensionID uuid.UUID `json:"dimension_id"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Recommendation is dimension-scoped guidance tagged with a priority.
type Recommendation struct {
	ID          uuid.UUID `json:"id"`
	DimensionID uuid.UUID `json:"dimension_id"`
	Priority    Priority  `json:"priority"`
	Description string    `json:"description"`
}

// State is a maturity level description for a dimension.
type State struct {
	ID          uuid.UUID `json:"id"`
	DimensionID uuid.UUID `json:"dimension_id"`
	Description string    `json:"description"`
	Level       int       `json:"level"`
}

// ActionItem binds an action plan to a recommendation and a dimension-assessment.
// RecommendationID is not constrained and may reference a deleted recommendation.
type ActionItem struct {
	ID                    uuid.UUID `json:"id"`
	ActionPlanID          uuid.UUID `json:"action_plan_id"`
	RecommendationID      uuid.UUID `json:"recommendation_id"`
	DimensionAssessmentID uuid.UUID `json:"dimension_assessment_id"`
	Status                string    `json:"status"`
	Priority              Priority  `json:"priority"`
}

// CreateDimensionAssessmentCommand records a dimension's result. GapScore must
// be 1, 2, or 3; the gap and recommendation are resolved from it.
type CreateDimensionAssessmentCommand struct {
	AssessmentID   uuid.UUID  `json:"-"`
	DimensionID    uuid.UUID  `json:"dimension_id"`
	GapScore       int        `json:"gap_score"`
	CurrentStateID *uuid.UUID `json:"current_state_id,omitempty"`
	DesiredStateID *uuid.UUID `json:"desired_state_id,omitempty"`
}

// DimensionAssessmentResult is a created dimension-assessment with the gap and
// recommendation it resolved to and the action item recorded for it.
type DimensionAssessmentResult struct {
	DimensionAssessment DimensionAssessment `json:"dimension_assessment"`
	Gap                 Gap                 `json:"gap"`
	Recommendation      Recommendation      `json:"recommendation"`
	ActionItem          ActionItem          `json:"action_item"`
}

// UpdateWeightCommand sets a dimension's weight.
type UpdateWeightCommand struct {
	Weight int `json:"weight"`
}
