package assessments

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/internal/weighting"
	"github.com/JaimeStill/meridian/pkg/auth"
	"github.com/JaimeStill/meridian/pkg/handlers"
	"github.com/JaimeStill/meridian/pkg/routes"
)

// Handler provides HTTP endpoints for assessment and dimension operations.
type Handler struct {
	sys    System
	authz  auth.Authorizer
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system, authorizer, and logger.
func NewHandler(sys System, authz auth.Authorizer, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		authz:  authz,
		logger: logger.With("handler", "assessments"),
	}
}

// Routes returns the route group for assessment endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/assessments",
		Tags:   []string{"Assessments"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: spec.find},
			{Method: "POST", Pattern: "/{id}/dimensions", Handler: h.CreateDimensionAssessment, OpenAPI: spec.createDimension},
		},
	}
}

// DimensionRoutes returns the route group for dimension endpoints.
func (h *Handler) DimensionRoutes() routes.Group {
	return routes.Group{
		Prefix: "/dimensions",
		Tags:   []string{"Dimensions"},
		Routes: []routes.Route{
			{Method: "PUT", Pattern: "/{id}/weight", Handler: h.UpdateWeight, OpenAPI: spec.updateWeight},
		},
	}
}

// Find returns a single assessment by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	a, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// CreateDimensionAssessment records a dimension result for the assessment in the path.
func (h *Handler) CreateDimensionAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	var cmd CreateDimensionAssessmentCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondDecodeError(w, h.logger, err, ErrInvalidRequest)
		return
	}
	cmd.AssessmentID = id

	result, err := h.sys.CreateDimensionAssessment(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

// UpdateWeight sets a dimension weight. Restricted to admins.
func (h *Handler) UpdateWeight(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(r.Context(), h.authz); err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	var cmd UpdateWeightCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondDecodeError(w, h.logger, err, ErrInvalidRequest)
		return
	}

	d, err := h.sys.UpdateDimensionWeight(r.Context(), id, cmd.Weight)
	if err != nil {
		status := MapHTTPStatus(err)
		if errors.Is(err, weighting.ErrInvalidWeight) {
			status = weighting.MapHTTPStatus(err)
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}
