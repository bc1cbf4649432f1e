// Package reports implements the submission-to-report pipeline. A submission
// completes an assessment and creates a pending report record; a detached
// worker then aggregates the assessment graph, renders and converts it to the
// requested format, uploads the artifact, and records the outcome on the
// report. The report record is the only durable trace of generation progress.
package reports

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report tracks one generation attempt. FilePath is set if and only if
// Status is completed. A retry creates a new Report.
type Report struct {
	ID             uuid.UUID  `json:"id"`
	AssessmentID   uuid.UUID  `json:"assessment_id"`
	Type           Type       `json:"type"`
	Format         Format     `json:"format"`
	Status         Status     `json:"status"`
	FilePath       *string    `json:"file_path"`
	FailureReason  *string    `json:"failure_reason"`
	RequestedBy    string     `json:"requested_by"`
	GeneratedAt    *time.Time `json:"generated_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	OrganizationID uuid.UUID  `json:"organization_id"`
}

// CreateCommand carries the fields of a new pending report.
type CreateCommand struct {
	AssessmentID uuid.UUID
	Type         Type
	Format       Format
	RequestedBy  string
}

// RequestCommand asks for a report of an explicit type and format.
type RequestCommand struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
	Type         Type      `json:"type"`
	Format       Format    `json:"format"`
}

// StatusView is the polling representation of a report's progress.
type StatusView struct {
	ID       uuid.UUID `json:"id"`
	Status   Status    `json:"status"`
	Progress int       `json:"progress"`
	Message  string    `json:"message"`
}

// NewStatusView derives progress and message from the report status alone.
func NewStatusView(r *Report) StatusView {
	v := StatusView{ID: r.ID, Status: r.Status}

	switch r.Status {
	case StatusPending:
		v.Message = "report is queued for generation"
	case StatusGenerating:
		v.Progress = 50
		v.Message = "report is being generated"
	case StatusCompleted:
		v.Progress = 100
		v.Message = "report is ready for download"
	case StatusArchived:
		v.Progress = 100
		v.Message = "report has been archived"
	case StatusFailed:
		v.Message = "report generation failed"
		if r.FailureReason != nil && *r.FailureReason != "" {
			v.Message += ": " + *r.FailureReason
		}
	}

	return v
}

// StorageKey derives the object key of a report artifact. Report ids are
// unique per attempt, so keys never collide across attempts.
func StorageKey(id uuid.UUID, format Format) string {
	return fmt.Sprintf("reports/%s/report.%s", id, format.Extension())
}

// ReportData is the renderable view of one assessment.
type ReportData struct {
	AssessmentID uuid.UUID   `json:"assessment_id"`
	Title        string      `json:"title"`
	Rows         []ReportRow `json:"rows"`
	Chart        *Chart      `json:"chart"`
	GeneratedAt  time.Time   `json:"generated_at"`
}

// ReportRow summarizes one dimension-assessment.
type ReportRow struct {
	Category        string   `json:"category"`
	GapScore        int      `json:"gap_score"`
	SeverityLabel   string   `json:"severity_label"`
	SeverityClass   string   `json:"severity_class"`
	ResultText      string   `json:"result_text"`
	Recommendations []string `json:"recommendations"`
	CurrentLevel    int      `json:"current_level"`
	DesiredLevel    int      `json:"desired_level"`
}

// Chart holds parallel series of current and desired maturity levels.
type Chart struct {
	Labels        []string `json:"labels"`
	CurrentLevels []int    `json:"current_levels"`
	DesiredLevels []int    `json:"desired_levels"`
}
