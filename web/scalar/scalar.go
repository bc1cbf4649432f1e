// Package scalar serves the Scalar API reference UI for the generated OpenAPI document.
package scalar

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/meridian/pkg/module"
)

//go:embed index.html
var staticFS embed.FS

// NewModule creates a module that serves the Scalar API reference UI at basePath,
// pointed at the OpenAPI document served from specURL.
func NewModule(basePath, specURL string, logger *slog.Logger) *module.Module {
	return module.New(basePath, buildRouter(specURL, logger.With("module", "scalar")))
}

func buildRouter(specURL string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	tmpl := template.Must(template.ParseFS(staticFS, "index.html"))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, map[string]string{"SpecURL": specURL}); err != nil {
			logger.Error("render scalar index failed", "error", err)
		}
	})

	return mux
}
