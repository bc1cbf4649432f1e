package reports

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/pkg/query"
	"github.com/JaimeStill/meridian/pkg/repository"
)

const returning = `
	RETURNING id, assessment_id, type, format, status, file_path, failure_reason, requested_by, generated_at, created_at, updated_at,
		(SELECT organization_id FROM assessments WHERE id = reports.assessment_id)`

var projection = query.
	NewProjectionMap("public", "reports", "r").
	Project("id", "ID").
	Project("assessment_id", "AssessmentID").
	Project("type", "Type").
	Project("format", "Format").
	Project("status", "Status").
	Project("file_path", "FilePath").
	Project("failure_reason", "FailureReason").
	Project("requested_by", "RequestedBy").
	Project("generated_at", "GeneratedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "assessments", "a", "JOIN", "a.id = r.assessment_id").
	Project("organization_id", "OrganizationID")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional exact-match criteria for report queries.
// Nil fields are ignored.
type Filters struct {
	AssessmentID   *uuid.UUID `json:"assessment_id,omitempty"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Type           *Type      `json:"type,omitempty"`
	Format         *Format    `json:"format,omitempty"`
	Status         *Status    `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("AssessmentID", f.AssessmentID).
		WhereEquals("OrganizationID", f.OrganizationID).
		WhereEquals("Type", f.Type).
		WhereEquals("Format", f.Format).
		WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Malformed values are reported as validation errors.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if s := values.Get("assessment_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, ErrInvalidRequest
		}
		f.AssessmentID = &id
	}

	if s := values.Get("organization_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, ErrInvalidRequest
		}
		f.OrganizationID = &id
	}

	if s := values.Get("type"); s != "" {
		t, err := ParseType(s)
		if err != nil {
			return f, err
		}
		f.Type = &t
	}

	if s := values.Get("format"); s != "" {
		v, err := ParseFormat(s)
		if err != nil {
			return f, err
		}
		f.Format = &v
	}

	if s := values.Get("status"); s != "" {
		v, err := ParseStatus(s)
		if err != nil {
			return f, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		f.Status = &v
	}

	return f, nil
}

func scanReport(s repository.Scanner) (Report, error) {
	var r Report
	err := s.Scan(
		&r.ID,
		&r.AssessmentID,
		&r.Type,
		&r.Format,
		&r.Status,
		&r.FilePath,
		&r.FailureReason,
		&r.RequestedBy,
		&r.GeneratedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.OrganizationID,
	)
	return r, err
}
