// Package weighting normalizes gap and priority numbers by per-dimension
// importance weights. Every function is pure.
//
// A weight is an integer percentage in [0,100]. A nil weight means the
// dimension has not been weighted and counts fully (100).
package weighting

import (
	"errors"
	"fmt"
	"math"
	"net/http"
)

// Bounds of a dimension weight.
const (
	MinWeight     = 0
	MaxWeight     = 100
	DefaultWeight = MaxWeight
)

// ErrInvalidWeight indicates a weight outside [MinWeight, MaxWeight].
var ErrInvalidWeight = errors.New("weight must be between 0 and 100")

// Weighted is one gap contribution and the weight of its dimension.
type Weighted struct {
	GapScore int
	Weight   *int
}

// Multiplier returns weight/100 with weight clamped to [0,100]. A nil weight
// yields 1.
func Multiplier(weight *int) float64 {
	if weight == nil {
		return 1
	}
	w := min(max(*weight, MinWeight), MaxWeight)
	return float64(w) / 100
}

// WeightedScore scales baseScore by the weight multiplier.
func WeightedScore(baseScore int, weight *int) float64 {
	return float64(baseScore) * Multiplier(weight)
}

// ValidateWeight rejects weights outside [0,100].
func ValidateWeight(weight int) error {
	if weight < MinWeight || weight > MaxWeight {
		return fmt.Errorf("%w: got %d", ErrInvalidWeight, weight)
	}
	return nil
}

// PriorityScore ranks a gap for attention: round(gapSize * weight/100 * 100).
func PriorityScore(gapSize int, weight *int) int {
	return int(math.Round(float64(gapSize) * Multiplier(weight) * 100))
}

// TotalWeightedScore is the mean gap score weighted by each entry's
// multiplier. It returns 0 for no entries or when every weight is 0.
func TotalWeightedScore(items []Weighted) float64 {
	var sum, total float64
	for _, item := range items {
		m := Multiplier(item.Weight)
		sum += float64(item.GapScore) * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// MapHTTPStatus maps weighting errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidWeight) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
