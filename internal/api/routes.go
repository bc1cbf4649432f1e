package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/meridian/internal/assessments"
	"github.com/JaimeStill/meridian/internal/config"
	"github.com/JaimeStill/meridian/internal/consolidated"
	"github.com/JaimeStill/meridian/internal/reports"
	"github.com/JaimeStill/meridian/pkg/openapi"
	"github.com/JaimeStill/meridian/pkg/routes"
)

// SpecPath is the route serving the generated OpenAPI document.
const SpecPath = "/openapi.json"

func groups(domain *Domain, runtime *Runtime) []routes.Group {
	assessmentsHandler := domain.Assessments.Handler(runtime.Auth)
	reportsHandler := domain.Reports.Handler(runtime.Auth)

	return []routes.Group{
		assessmentsHandler.Routes(),
		assessmentsHandler.DimensionRoutes(),
		reportsHandler.SubmissionRoutes(),
		reportsHandler.Routes(),
		domain.Consolidated.Handler().Routes(),
	}
}

// NewSpec describes every API route in an OpenAPI document.
func NewSpec(cfg *config.Config, groups ...routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(cfg.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.OpenAPI.Description)
	for _, url := range cfg.OpenAPI.ServerURLs(cfg.API.BasePath) {
		spec.AddServer(url)
	}

	spec.Components.AddSchemas(assessments.Schemas())
	spec.Components.AddSchemas(reports.Schemas())
	spec.Components.AddSchemas(consolidated.Schemas())
	if cfg.Auth.Enabled {
		spec.RequireBearer("oidc", "JWT")
	}
	spec.Components.AddResponses(map[string]*openapi.Response{
		"Unauthorized":    openapi.ErrorResponse("Missing or invalid bearer token"),
		"PayloadTooLarge": openapi.ErrorResponse("Request body exceeds the configured limit"),
	})

	routes.Describe(spec, "", groups...)
	return spec
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	all := groups(domain, runtime)
	routes.Register(mux, all...)

	data, err := openapi.MarshalJSON(NewSpec(cfg, all...))
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET "+SpecPath, openapi.ServeSpec(data))

	return nil
}
