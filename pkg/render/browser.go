package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Browser converts HTML by printing it from a headless Chromium process.
type Browser struct {
	path   string
	logger *slog.Logger
}

// NewBrowser creates a converter that runs the browser executable at path.
func NewBrowser(path string, logger *slog.Logger) *Browser {
	return &Browser{path: path, logger: logger}
}

// Convert writes html to a scratch directory and prints it to PDF. The process
// is killed when ctx is done.
func (b *Browser) Convert(ctx context.Context, html []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "meridian-render-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "report.html")
	out := filepath.Join(dir, "report.pdf")

	if err := os.WriteFile(in, html, 0o600); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}

	cmd := exec.CommandContext(ctx, b.path,
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--no-pdf-header-footer",
		"--print-to-pdf="+out,
		"file://"+in,
	)
	cmd.WaitDelay = 5 * time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("browser print aborted: %w", ctxErr)
		}
		return nil, fmt.Errorf("browser print: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	b.logger.Debug("browser print complete", "bytes", len(data), "duration", time.Since(start))
	return data, nil
}
