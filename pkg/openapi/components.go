package openapi

import "maps"

// NewComponents creates Components with shared schemas and error responses.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 20},
					"sort":      {Type: "string", Description: "Comma-separated sort fields. Prefix with - for descending. Example: created_at,-updated_at"},
				},
			},
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":  ErrorResponse("Invalid request"),
			"Forbidden":   ErrorResponse("Caller lacks the required permission"),
			"NotFound":    ErrorResponse("Resource not found"),
			"Conflict":    ErrorResponse("Resource is in a conflicting state"),
			"ServerError": ErrorResponse("Unexpected server failure"),
		},
	}
}

// AddBearerScheme registers an HTTP bearer security scheme under name.
func (c *Components) AddBearerScheme(name, format string) {
	if c.SecuritySchemes == nil {
		c.SecuritySchemes = make(map[string]*SecurityScheme)
	}
	c.SecuritySchemes[name] = &SecurityScheme{Type: "http", Scheme: "bearer", BearerFormat: format}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}

// ErrorResponse creates a JSON response carrying the shared Error schema.
func ErrorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}
