package reports

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Type selects the report template.
type Type string

const (
	TypeSummary    Type = "summary"
	TypeDetailed   Type = "detailed"
	TypeActionPlan Type = "action_plan"
)

var types = []Type{TypeSummary, TypeDetailed, TypeActionPlan}

// ParseType validates a string as a known report type.
func ParseType(s string) (Type, error) {
	v := Type(s)
	if !slices.Contains(types, v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return v, nil
}

func (t *Type) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, t, ParseType)
}

// Format selects the artifact encoding.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
)

var formats = []Format{FormatPDF, FormatExcel, FormatJSON}

// ParseFormat validates a string as a known report format.
func ParseFormat(s string) (Format, error) {
	v := Format(s)
	if !slices.Contains(formats, v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return v, nil
}

func (f *Format) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, f, ParseFormat)
}

// Extension returns the file extension used in storage keys.
func (f Format) Extension() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatExcel:
		return "xlsx"
	case FormatJSON:
		return "json"
	default:
		return "bin"
	}
}

// ContentType returns the media type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Status is the generation state of a report.
type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusArchived   Status = "archived"
)

var statuses = []Status{StatusPending, StatusGenerating, StatusCompleted, StatusFailed, StatusArchived}

// ParseStatus validates a string as a known report status.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return v, nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, ParseStatus)
}

func unmarshalEnum[T ~string](data []byte, dst *T, parse func(string) (T, error)) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := parse(raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
