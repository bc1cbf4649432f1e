package assessments

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Status is the lifecycle state of an assessment.
type Status string

// Assessment statuses.
const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"
)

var statuses = []Status{StatusDraft, StatusInProgress, StatusCompleted, StatusArchived}

// Terminal reports whether the assessment no longer accepts dimension results.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusArchived:
		return true
	default:
		return false
	}
}

// ParseStatus validates a string as a known assessment status.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known status.
func (s *Status) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, ParseStatus)
}

// Severity classifies a gap.
type Severity string

// Gap severities.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

// Gap score bounds.
const (
	MinGapScore = 1
	MaxGapScore = 3
)

// SeverityFromGapScore maps a gap score to its severity: 1 low, 2 medium, 3 high.
func SeverityFromGapScore(score int) (Severity, error) {
	switch score {
	case 1:
		return SeverityLow, nil
	case 2:
		return SeverityMedium, nil
	case 3:
		return SeverityHigh, nil
	default:
		return "", fmt.Errorf("%w: got %d", ErrInvalidGapScore, score)
	}
}

// ParseSeverity validates a string as a known severity.
func ParseSeverity(s string) (Severity, error) {
	v := Severity(s)
	if !slices.Contains(severities, v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known severity.
func (s *Severity) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, ParseSeverity)
}

// Priority returns the recommendation priority of the same name.
func (s Severity) Priority() Priority {
	switch s {
	case SeverityHigh:
		return PriorityHigh
	case SeverityMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// RiskWeight is the numeric risk of a severity: low 1, medium 2, high 3.
func (s Severity) RiskWeight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Label is the upper-cased severity tag shown in reports.
func (s Severity) Label() string {
	return strings.ToUpper(string(s))
}

// Class is the presentation class for a severity. Unrecognized values fall
// back to medium.
func (s Severity) Class() string {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return string(s)
	default:
		return string(SeverityMedium)
	}
}

// Priority ranks a recommendation.
type Priority string

// Recommendation priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParsePriority validates a string as a known priority.
func ParsePriority(s string) (Priority, error) {
	v := Priority(s)
	if !slices.Contains(priorities, v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known priority.
func (p *Priority) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, p, ParsePriority)
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
