package reports

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/meridian/internal/assessments"
	"github.com/JaimeStill/meridian/pkg/storage"
)

// Domain errors for report operations.
var (
	ErrNotFound             = errors.New("report not found")
	ErrDuplicate            = errors.New("report already exists")
	ErrInvalidType          = errors.New("invalid report type")
	ErrInvalidFormat        = errors.New("invalid report format")
	ErrInvalidStatus        = errors.New("invalid report status")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrAssessmentIncomplete = errors.New("assessment has not been submitted")
	ErrFileUnavailable      = errors.New("report file is not available")
	ErrUnsupportedFormat    = errors.New("report format is not supported")
	ErrRenderFailed         = errors.New("report rendering failed")
	ErrConvertFailed        = errors.New("report conversion failed")
)

// MapHTTPStatus maps report domain errors, and the assessment errors surfaced
// through report operations, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidFormat),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrAssessmentIncomplete),
		errors.Is(err, ErrFileUnavailable),
		errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, storage.ErrStorage):
		return http.StatusBadGateway
	}

	if status := assessments.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return http.StatusInternalServerError
}
