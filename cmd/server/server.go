package main

import (
	"context"
	"time"

	"github.com/JaimeStill/meridian/internal/config"
	"github.com/JaimeStill/meridian/internal/infrastructure"
	"github.com/JaimeStill/meridian/pkg/module"
)

// Server owns the infrastructure, the mounted modules, and the HTTP listener
// for one process.
type Server struct {
	cfg    *config.Config
	infra  *infrastructure.Infrastructure
	router *module.Router
	http   *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	mods, err := newModules(cfg, infra)
	if err != nil {
		return nil, err
	}

	router := newRouter(infra)
	for _, m := range mods {
		router.Mount(m)
	}

	return &Server{
		cfg:    cfg,
		infra:  infra,
		router: router,
		http:   newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Run starts every subsystem, serves until ctx is cancelled, then shuts down
// within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	logger := s.infra.Logger
	lc := s.infra.Lifecycle

	logger.Info(
		"meridian starting",
		"version", s.cfg.Version,
		"env", s.cfg.Env(),
		"addr", s.cfg.Server.Addr(),
		"modules", s.router.Prefixes(),
	)

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(lc); err != nil {
		return err
	}

	go func() {
		began := time.Now()
		lc.WaitForStartup()
		if pending := lc.Pending(); len(pending) > 0 {
			logger.Warn("startup finished with subsystems not ready", "pending", pending)
			return
		}
		logger.Info("all subsystems ready", "elapsed", time.Since(began))
	}()

	<-ctx.Done()

	timeout := s.cfg.ShutdownTimeoutDuration()
	logger.Info("initiating shutdown", "timeout", timeout)
	if err := lc.Shutdown(timeout); err != nil {
		return err
	}
	logger.Info("meridian stopped")
	return nil
}
