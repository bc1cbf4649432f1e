package assessments

import (
	"errors"
	"net/http"
)

// Domain errors for assessment operations.
var (
	ErrNotFound               = errors.New("assessment not found")
	ErrDimensionNotFound      = errors.New("dimension not found")
	ErrGapNotFound            = errors.New("gap not found")
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrStateNotFound          = errors.New("state not found")
	ErrDuplicate              = errors.New("dimension already assessed")
	ErrInvalidGapScore        = errors.New("gap score must be 1, 2, or 3")
	ErrInvalidStatus          = errors.New("invalid assessment status")
	ErrInvalidSeverity        = errors.New("invalid severity")
	ErrInvalidPriority        = errors.New("invalid priority")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrTerminal               = errors.New("assessment is completed or archived")
)

// MapHTTPStatus maps assessment domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrDimensionNotFound),
		errors.Is(err, ErrGapNotFound),
		errors.Is(err, ErrRecommendationNotFound),
		errors.Is(err, ErrStateNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidGapScore),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidSeverity),
		errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTerminal), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
