package api

import (
	"github.com/JaimeStill/meridian/internal/config"
	"github.com/JaimeStill/meridian/internal/infrastructure"
	"github.com/JaimeStill/meridian/internal/reports"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Reports reports.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:  infra.Lifecycle,
			Logger:     infra.Logger.With("module", "api"),
			Database:   infra.Database,
			Storage:    infra.Storage,
			Auth:       infra.Auth,
			Dispatcher: infra.Dispatcher,
			Converter:  infra.Converter,
		},
		Reports: reports.Config{
			RenderTimeout: cfg.Reports.RenderTimeoutDuration(),
			StaleAfter:    cfg.Reports.StaleAfterDuration(),
			SweepSchedule: cfg.Reports.SweepSchedule,
			Pagination:    cfg.API.Pagination,
		},
	}
}
