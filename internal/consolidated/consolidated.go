// Package consolidated computes weighted gap and risk statistics across many
// completed assessments, either all of them or one organization's.
package consolidated

import (
	"time"

	"github.com/google/uuid"
)

// Report is a consolidated view over a set of completed assessments.
// Dimensions appear in the order they are first encountered.
type Report struct {
	OrganizationID          *uuid.UUID         `json:"organization_id,omitempty"`
	SubmissionCount         int                `json:"submission_count"`
	DimensionAssessments    int                `json:"dimension_assessment_count"`
	Dimensions              []DimensionSummary `json:"dimensions"`
	OverallAverageGapScore  float64            `json:"overall_average_gap_score"`
	OverallAverageRiskLevel float64            `json:"overall_average_risk_level"`
	TotalWeightedScore      float64            `json:"total_weighted_score"`
	GeneratedAt             time.Time          `json:"generated_at"`
}

// DimensionSummary aggregates every result recorded for one dimension.
type DimensionSummary struct {
	DimensionID        uuid.UUID        `json:"dimension_id"`
	Name               string           `json:"name"`
	Count              int              `json:"count"`
	AverageGapScore    float64          `json:"average_gap_score"`
	RiskDistribution   RiskDistribution `json:"risk_distribution"`
	AverageRiskLevel   float64          `json:"average_risk_level"`
	TopRecommendations []string         `json:"top_recommendations"`
	Weight             *int             `json:"weight"`
	WeightedGapScore   float64          `json:"weighted_gap_score"`
	PriorityScore      int              `json:"priority_score"`
}

// RiskDistribution holds the percentage of results in each risk band. The
// bands sum to 100 for a non-empty dimension and are all 0 otherwise.
type RiskDistribution struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
	Low    float64 `json:"low"`
}

// Risk bands and their weights. A gap score of 3 or more is high, 2 is
// medium, anything else is low.
const (
	riskHigh   = 3
	riskMedium = 2
	riskLow    = 1
)

func riskLevel(gapScore int) int {
	switch {
	case gapScore >= 3:
		return riskHigh
	case gapScore == 2:
		return riskMedium
	default:
		return riskLow
	}
}
