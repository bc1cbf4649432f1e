package assessments

import (
	"github.com/JaimeStill/meridian/pkg/query"
	"github.com/JaimeStill/meridian/pkg/repository"
)

var assessmentProjection = query.
	NewProjectionMap("public", "assessments", "a").
	Project("id", "ID").
	Project("organization_id", "OrganizationID").
	Project("title", "Title").
	Project("status", "Status").
	Project("started_at", "StartedAt").
	Project("completed_at", "CompletedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var dimensionProjection = query.
	NewProjectionMap("public", "dimensions", "d").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("weight", "Weight")

var dimensionAssessmentProjection = query.
	NewProjectionMap("public", "dimension_assessments", "da").
	Project("id", "ID").
	Project("assessment_id", "AssessmentID").
	Project("dimension_id", "DimensionID").
	Project("gap_id", "GapID").
	Project("gap_score", "GapScore").
	Project("current_state_id", "CurrentStateID").
	Project("desired_state_id", "DesiredStateID").
	Project("created_at", "CreatedAt")

var gapProjection = query.
	NewProjectionMap("public", "gaps", "g").
	Project("id", "ID").
	Project("dimension_id", "DimensionID").
	Project("severity", "Severity").
	Project("description", "Description").
	Project("created_at", "CreatedAt")

var recommendationProjection = query.
	NewProjectionMap("public", "recommendations", "rc").
	Project("id", "ID").
	Project("dimension_id", "DimensionID").
	Project("priority", "Priority").
	Project("description", "Description")

var stateProjection = query.
	NewProjectionMap("public", "states", "s").
	Project("id", "ID").
	Project("dimension_id", "DimensionID").
	Project("description", "Description").
	Project("level", "Level")

var actionItemProjection = query.
	NewProjectionMap("public", "action_items", "ai").
	Project("id", "ID").
	Project("action_plan_id", "ActionPlanID").
	Project("recommendation_id", "RecommendationID").
	Project("dimension_assessment_id", "DimensionAssessmentID").
	Project("status", "Status").
	Project("priority", "Priority")

var (
	creationOrder = query.SortField{Field: "CreatedAt"}
	newestFirst   = query.SortField{Field: "CreatedAt", Descending: true}
)

func scanAssessment(s repository.Scanner) (Assessment, error) {
	var a Assessment
	err := s.Scan(
		&a.ID,
		&a.OrganizationID,
		&a.Title,
		&a.Status,
		&a.StartedAt,
		&a.CompletedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func scanDimension(s repository.Scanner) (Dimension, error) {
	var d Dimension
	err := s.Scan(&d.ID, &d.Name, &d.Description, &d.Weight)
	return d, err
}

func scanDimensionAssessment(s repository.Scanner) (DimensionAssessment, error) {
	var da DimensionAssessment
	err := s.Scan(
		&da.ID,
		&da.AssessmentID,
		&da.DimensionID,
		&da.GapID,
		&da.GapScore,
		&da.CurrentStateID,
		&da.DesiredStateID,
		&da.CreatedAt,
	)
	return da, err
}

func scanGap(s repository.Scanner) (Gap, error) {
	var g Gap
	err := s.Scan(&g.ID, &g.DimensionID, &g.Severity, &g.Description, &g.CreatedAt)
	return g, err
}

func scanRecommendation(s repository.Scanner) (Recommendation, error) {
	var r Recommendation
	err := s.Scan(&r.ID, &r.DimensionID, &r.Priority, &r.Description)
	return r, err
}

func scanState(s repository.Scanner) (State, error) {
	var st State
	err := s.Scan(&st.ID, &st.DimensionID, &st.Description, &st.Level)
	return st, err
}

func scanActionItem(s repository.Scanner) (ActionItem, error) {
	var ai ActionItem
	err := s.Scan(
		&ai.ID,
		&ai.ActionPlanID,
		&ai.RecommendationID,
		&ai.DimensionAssessmentID,
		&ai.Status,
		&ai.Priority,
	)
	return ai, err
}
