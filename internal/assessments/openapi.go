package assessments

import "github.com/JaimeStill/meridian/pkg/openapi"

type specs struct {
	find            *openapi.Operation
	createDimension *openapi.Operation
	updateWeight    *openapi.Operation
}

var spec = specs{
	find: &openapi.Operation{
		Summary:    "Find assessment",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Assessment ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Assessment", "Assessment"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	createDimension: &openapi.Operation{
		Summary:     "Record a dimension result",
		Description: "Resolves the gap and recommendation matching the gap score (1 low, 2 medium, 3 high) and records an action item.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Assessment ID")},
		RequestBody: openapi.RequestBodyJSON("CreateDimensionAssessmentCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Dimension result created", "DimensionAssessmentResult"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	updateWeight: &openapi.Operation{
		Summary:     "Update dimension weight",
		Description: "Admin only. Weight must be between 0 and 100.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Dimension ID")},
		RequestBody: openapi.RequestBodyJSON("UpdateWeightCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated dimension", "Dimension"),
			400: openapi.ResponseRef("BadRequest"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

func ptr[T any](v T) *T { return &v }

// Schemas returns the component schemas for assessment types.
func Schemas() map[string]*openapi.Schema {
	uuidSchema := &openapi.Schema{Type: "string", Format: "uuid"}
	timestamp := &openapi.Schema{Type: "string", Format: "date-time"}

	return map[string]*openapi.Schema{
		"Assessment": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":              uuidSchema,
				"organization_id": uuidSchema,
				"title":           {Type: "string"},
				"status":          openapi.EnumSchema("Lifecycle status", "draft", "in_progress", "completed", "archived"),
				"started_at":      timestamp,
				"completed_at":    timestamp,
				"created_at":      timestamp,
				"updated_at":      timestamp,
			},
		},
		"Dimension": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          uuidSchema,
				"name":        {Type: "string"},
				"description": {Type: "string"},
				"weight":      {Type: "integer", Description: "Importance weight; null counts as 100", Minimum: ptr(0.0), Maximum: ptr(100.0)},
			},
		},
		"CreateDimensionAssessmentCommand": {
			Type:     "object",
			Required: []string{"dimension_id", "gap_score"},
			Properties: map[string]*openapi.Schema{
				"dimension_id":     uuidSchema,
				"gap_score":        {Type: "integer", Minimum: ptr(1.0), Maximum: ptr(3.0)},
				"current_state_id": uuidSchema,
				"desired_state_id": uuidSchema,
			},
		},
		"DimensionAssessmentResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"dimension_assessment": {Type: "object"},
				"gap":                  {Type: "object"},
				"recommendation":       {Type: "object"},
				"action_item":          {Type: "object"},
			},
		},
		"UpdateWeightCommand": {
			Type:     "object",
			Required: []string{"weight"},
			Properties: map[string]*openapi.Schema{
				"weight": {Type: "integer", Minimum: ptr(0.0), Maximum: ptr(100.0)},
			},
		},
	}
}
