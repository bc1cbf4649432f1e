package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/meridian/internal/api"
	"github.com/JaimeStill/meridian/internal/config"
	"github.com/JaimeStill/meridian/internal/infrastructure"
	"github.com/JaimeStill/meridian/pkg/lifecycle"
	"github.com/JaimeStill/meridian/pkg/middleware"
	"github.com/JaimeStill/meridian/pkg/module"
	"github.com/JaimeStill/meridian/web/scalar"
)

const scalarPrefix = "/scalar"

// newModules builds the JSON API and the API reference UI.
func newModules(cfg *config.Config, infra *infrastructure.Infrastructure) ([]*module.Module, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	reference := scalar.NewModule(scalarPrefix, cfg.API.BasePath+api.SpecPath, infra.Logger)
	reference.Use(middleware.Logger(infra.Logger))

	return []*module.Module{apiModule, reference}, nil
}

// newRouter creates the root router with the liveness and readiness probes
// on its fallback mux.
func newRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	router.HandleNative("GET /healthz", healthz)
	router.HandleNative("GET /readyz", readyz(infra.Lifecycle))
	return router
}

func healthz(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, http.StatusOK, map[string]any{"status": "ok"})
}

func readyz(lc *lifecycle.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pending := lc.Pending(); len(pending) > 0 {
			writeProbe(w, http.StatusServiceUnavailable, map[string]any{
				"status":  "not ready",
				"pending": pending,
			})
			return
		}
		writeProbe(w, http.StatusOK, map[string]any{"status": "ready"})
	}
}

func writeProbe(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
