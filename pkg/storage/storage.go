// Package storage provides blob storage for generated report artifacts with
// Azure Blob Storage and S3-compatible implementations.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/JaimeStill/meridian/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Ready reports whether the container or bucket has been confirmed.
	lifecycle.ReadinessChecker
	// Start ensures the backing container or bucket exists, creating it when
	// missing. A failure is returned so the process does not serve without storage.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob at the given key and returns the locator
	// under which it can later be downloaded.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	// Download returns the blob stored at key. The caller must close Body.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (*Blob, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// Blob is a downloaded object stream with its stored metadata.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// New creates the storage system selected by cfg.Provider.
// Clients are constructed eagerly but no network call is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderS3:
		return newS3(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// ensureTimeout bounds the container or bucket check made by Start.
const ensureTimeout = 30 * time.Second

// readiness is embedded by providers; it flips once Start has ensured the
// container or bucket.
type readiness struct {
	ready atomic.Bool
}

func (r *readiness) Ready() bool {
	return r.ready.Load()
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	for segment := range strings.SplitSeq(key, "/") {
		if segment == ".." {
			return ErrInvalidKey
		}
	}
	if strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}
