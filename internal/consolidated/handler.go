package consolidated

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/pkg/handlers"
	"github.com/JaimeStill/meridian/pkg/routes"
)

// Handler provides HTTP endpoints for consolidated reports.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "consolidated"),
	}
}

// Routes returns the route group for consolidated report endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/consolidated",
		Tags:   []string{"Consolidated"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.All, OpenAPI: spec.all},
			{Method: "GET", Pattern: "/organizations/{id}", Handler: h.ForOrganization, OpenAPI: spec.forOrganization},
		},
	}
}

// All returns the consolidated report over every completed assessment.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	rpt, err := h.sys.All(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, rpt)
}

// ForOrganization returns the consolidated report for the organization in the path.
func (h *Handler) ForOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	rpt, err := h.sys.ForOrganization(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, rpt)
}
