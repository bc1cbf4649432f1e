// Package handlers provides request decoding and JSON response helpers shared
// by domain HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrBodyTooLarge indicates the request body exceeded the configured limit.
var ErrBodyTooLarge = errors.New("request body too large")

// DecodeJSON decodes the request body into v. A body cut off by
// http.MaxBytesReader yields ErrBodyTooLarge.
func DecodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, maxErr.Limit)
	}
	return err
}

// RespondDecodeError writes the response for a failed DecodeJSON: 413 for an
// oversized body, otherwise 400 carrying fallback.
func RespondDecodeError(w http.ResponseWriter, logger *slog.Logger, err, fallback error) {
	if errors.Is(err, ErrBodyTooLarge) {
		RespondError(w, logger, http.StatusRequestEntityTooLarge, err)
		return
	}
	RespondError(w, logger, http.StatusBadRequest, fallback)
}

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "<message>"}.
// Server errors log at error level, client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}
