package reports

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/pkg/auth"
	"github.com/JaimeStill/meridian/pkg/handlers"
	"github.com/JaimeStill/meridian/pkg/pagination"
	"github.com/JaimeStill/meridian/pkg/routes"
)

// Handler provides HTTP endpoints for submission and report operations.
type Handler struct {
	sys        System
	authz      auth.Authorizer
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, authorizer, logger, and pagination config.
func NewHandler(
	sys System,
	authz auth.Authorizer,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		authz:      authz,
		logger:     logger.With("handler", "reports"),
		pagination: pagination,
	}
}

// Routes returns the route group for report endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/reports",
		Tags:   []string{"Reports"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: spec.list},
			{Method: "POST", Pattern: "", Handler: h.Request, OpenAPI: spec.request},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: spec.find},
			{Method: "GET", Pattern: "/{id}/status", Handler: h.Status, OpenAPI: spec.status},
			{Method: "GET", Pattern: "/{id}/file", Handler: h.File, OpenAPI: spec.file},
			{Method: "POST", Pattern: "/{id}/retry", Handler: h.Retry, OpenAPI: spec.retry},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: spec.delete},
		},
	}
}

// SubmissionRoutes returns the route group for assessment submission.
func (h *Handler) SubmissionRoutes() routes.Group {
	return routes.Group{
		Prefix: "/assessments",
		Tags:   []string{"Assessments"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{id}/submit", Handler: h.Submit, OpenAPI: spec.submit},
		},
	}
}

// Submit completes the assessment in the path and responds with the pending report.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	rpt, err := h.sys.Submit(r.Context(), id, auth.CallerID(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, rpt)
}

// List returns a paginated list of reports with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Request schedules a report of an explicit type and format.
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	var cmd RequestCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondDecodeError(w, h.logger, err, requestError(err))
		return
	}

	rpt, err := h.sys.Request(r.Context(), cmd, auth.CallerID(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, rpt)
}

// Find returns a single report by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	rpt, ok := h.find(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, rpt)
}

// Status returns the polling view of a report.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	rpt, ok := h.find(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, NewStatusView(rpt))
}

// File streams the artifact of a completed report.
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	f, err := h.sys.Open(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer f.Body.Close()

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Filename+`"`)
	if f.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(f.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f.Body); err != nil {
		h.logger.Warn("report stream interrupted", "id", id, "error", err)
	}
}

// Retry schedules a new attempt for a failed report.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	rpt, err := h.sys.Retry(r.Context(), id, auth.CallerID(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, rpt)
}

// Delete removes a report and its artifact. Restricted to admins.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(r.Context(), h.authz); err != nil {
		handlers.RespondError(w, h.logger, auth.MapHTTPStatus(err), err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) (*Report, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return nil, false
	}

	rpt, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	return rpt, true
}

// requestError keeps enum validation errors and reports any other decode
// failure as a malformed request.
func requestError(err error) error {
	if MapHTTPStatus(err) == http.StatusBadRequest {
		return err
	}
	return ErrInvalidRequest
}
