package consolidated

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/meridian/internal/assessments"
)

// ErrInvalidRequest indicates a malformed organization id.
var ErrInvalidRequest = errors.New("invalid consolidated report request")

// MapHTTPStatus maps consolidated report errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return assessments.MapHTTPStatus(err)
}
