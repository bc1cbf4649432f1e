package consolidated

import "github.com/JaimeStill/meridian/pkg/openapi"

type specs struct {
	all             *openapi.Operation
	forOrganization *openapi.Operation
}

var spec = specs{
	all: &openapi.Operation{
		Summary:     "Consolidated report",
		Description: "Gap and risk statistics across every completed assessment.",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Consolidated report", "ConsolidatedReport"),
		},
	},
	forOrganization: &openapi.Operation{
		Summary:    "Organization consolidated report",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Organization ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Consolidated report", "ConsolidatedReport"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
}

// Schemas returns the component schemas for consolidated report types.
func Schemas() map[string]*openapi.Schema {
	number := &openapi.Schema{Type: "number"}
	integer := &openapi.Schema{Type: "integer"}

	return map[string]*openapi.Schema{
		"ConsolidatedReport": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"organization_id":            {Type: "string", Format: "uuid"},
				"submission_count":           integer,
				"dimension_assessment_count": integer,
				"dimensions":                 {Type: "array", Items: openapi.SchemaRef("DimensionSummary")},
				"overall_average_gap_score":  number,
				"overall_average_risk_level": number,
				"total_weighted_score":       number,
				"generated_at":               {Type: "string", Format: "date-time"},
			},
		},
		"DimensionSummary": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"dimension_id":        {Type: "string", Format: "uuid"},
				"name":                {Type: "string"},
				"count":               integer,
				"average_gap_score":   number,
				"risk_distribution":   openapi.SchemaRef("RiskDistribution"),
				"average_risk_level":  number,
				"top_recommendations": {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"weight":              {Type: "integer", Description: "Null counts as 100"},
				"weighted_gap_score":  number,
				"priority_score":      integer,
			},
		},
		"RiskDistribution": {
			Type:        "object",
			Description: "Percentage of results per risk band",
			Properties: map[string]*openapi.Schema{
				"high":   number,
				"medium": number,
				"low":    number,
			},
		},
	}
}
