package module

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/meridian/pkg/middleware"
)

// Module serves a single-level path prefix. Requests reach the inner router
// with the prefix removed and pass through the module's own middleware.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System

	mu      sync.Mutex
	handler http.Handler
}

// New creates a Module for prefix (e.g. "/api"). It panics when prefix is
// empty, lacks a leading slash, or has more than one segment.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends mw to the module's middleware stack.
func (m *Module) Use(mw middleware.Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.middleware.Use(mw)
	m.handler = nil
}

// Handler returns the inner router wrapped with the module's middleware.
// The composed handler is cached until the next call to Use.
func (m *Module) Handler() http.Handler {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handler == nil {
		m.handler = m.middleware.Apply(m.router)
	}
	return m.handler
}

// Serve strips the module prefix from the request path and dispatches to
// the inner router.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, stripPrefix(req, m.prefix))
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	path, _ := strings.CutPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	u := *req.URL
	u.Path = path
	u.RawPath = ""

	r := req.Clone(req.Context())
	r.URL = &u
	return r
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
