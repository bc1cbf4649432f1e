package reports

import "github.com/JaimeStill/meridian/pkg/openapi"

type specs struct {
	submit  *openapi.Operation
	list    *openapi.Operation
	request *openapi.Operation
	find    *openapi.Operation
	status  *openapi.Operation
	file    *openapi.Operation
	retry   *openapi.Operation
	delete  *openapi.Operation
}

var spec = specs{
	submit: &openapi.Operation{
		Summary:     "Submit assessment",
		Description: "Marks the assessment completed and schedules a summary PDF report. Responds before generation runs; poll the report status for the outcome.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Assessment ID")},
		Responses: map[int]*openapi.Response{
			202: openapi.ResponseJSON("Pending report", "Report"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	list: &openapi.Operation{
		Summary: "List reports",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields, prefix with - for descending", false),
			openapi.QueryParam("assessment_id", "string", "Filter by assessment", false),
			openapi.QueryParam("organization_id", "string", "Filter by organization", false),
			openapi.QueryParam("type", "string", "Filter by report type", false),
			openapi.QueryParam("format", "string", "Filter by report format", false),
			openapi.QueryParam("status", "string", "Filter by report status", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated reports", "ReportPageResult"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	request: &openapi.Operation{
		Summary:     "Request report",
		Description: "Schedules a report of an explicit type and format for a submitted assessment.",
		RequestBody: openapi.RequestBodyJSON("RequestCommand", true),
		Responses: map[int]*openapi.Response{
			202: openapi.ResponseJSON("Pending report", "Report"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	find: &openapi.Operation{
		Summary:    "Find report",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Report ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Report", "Report"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	status: &openapi.Operation{
		Summary:    "Report status",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Report ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Report progress", "ReportStatus"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	file: &openapi.Operation{
		Summary:    "Download report",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Report ID")},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Report artifact",
				Content: map[string]*openapi.MediaType{
					"application/pdf":  {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
					"application/json": {Schema: &openapi.Schema{Type: "object"}},
				},
			},
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
			502: {Description: "Storage unavailable", Content: map[string]*openapi.MediaType{
				"application/json": {Schema: openapi.SchemaRef("Error")},
			}},
		},
	},
	retry: &openapi.Operation{
		Summary:     "Retry report",
		Description: "Creates a new pending report for a failed one.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Failed report ID")},
		Responses: map[int]*openapi.Response{
			202: openapi.ResponseJSON("Pending report", "Report"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	delete: &openapi.Operation{
		Summary:     "Delete report",
		Description: "Admin only. Removes the record and its artifact.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Report ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Report deleted"},
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

// Schemas returns the component schemas for report types.
func Schemas() map[string]*openapi.Schema {
	uuidSchema := &openapi.Schema{Type: "string", Format: "uuid"}
	timestamp := &openapi.Schema{Type: "string", Format: "date-time"}
	reportType := openapi.EnumSchema("Report template", "summary", "detailed", "action_plan")
	reportFormat := openapi.EnumSchema("Artifact format", "pdf", "excel", "json")
	reportStatus := openapi.EnumSchema("Generation status", "pending", "generating", "completed", "failed", "archived")

	return map[string]*openapi.Schema{
		"Report": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":              uuidSchema,
				"assessment_id":   uuidSchema,
				"organization_id": uuidSchema,
				"type":            reportType,
				"format":          reportFormat,
				"status":          reportStatus,
				"file_path":       {Type: "string", Description: "Set only when completed"},
				"failure_reason":  {Type: "string", Description: "Set when failed"},
				"requested_by":    {Type: "string"},
				"generated_at":    timestamp,
				"created_at":      timestamp,
				"updated_at":      timestamp,
			},
		},
		"ReportPageResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Report")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"ReportStatus": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":       uuidSchema,
				"status":   reportStatus,
				"progress": {Type: "integer", Enum: []any{0, 50, 100}},
				"message":  {Type: "string"},
			},
		},
		"RequestCommand": {
			Type:     "object",
			Required: []string{"assessment_id", "type", "format"},
			Properties: map[string]*openapi.Schema{
				"assessment_id": uuidSchema,
				"type":          reportType,
				"format":        reportFormat,
			},
		},
	}
}
