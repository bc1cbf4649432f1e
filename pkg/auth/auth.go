// Package auth resolves the caller identity from OIDC bearer tokens and
// exposes the admin permission check used by privileged routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/meridian/pkg/handlers"
	"github.com/JaimeStill/meridian/pkg/lifecycle"
)

var (
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("missing or invalid bearer token")
	// ErrForbidden indicates the caller lacks the required permission.
	ErrForbidden = errors.New("caller lacks the required permission")
	// ErrNotReady indicates the identity provider has not been discovered yet.
	ErrNotReady = errors.New("identity provider not ready")
)

// LocalSubject identifies the caller attached when verification is disabled.
const LocalSubject = "local"

// Claims is the caller identity extracted from a verified token.
type Claims struct {
	Subject string   `json:"sub"`
	Email   string   `json:"email"`
	Groups  []string `json:"groups"`
}

// Verifier validates a raw bearer token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*Claims, error)
}

// Authorizer answers the admin permission check.
type Authorizer interface {
	IsAdmin(claims *Claims) bool
}

// RequireAdmin returns ErrForbidden unless the caller in ctx is an admin.
func RequireAdmin(ctx context.Context, a Authorizer) error {
	if !a.IsAdmin(FromContext(ctx)) {
		return ErrForbidden
	}
	return nil
}

// System verifies requests and answers permission checks.
type System interface {
	Authorizer
	lifecycle.ReadinessChecker
	// Start registers the identity provider discovery hook.
	Start(lc *lifecycle.Coordinator) error
	// Middleware attaches verified Claims to the request context.
	Middleware() func(http.Handler) http.Handler
}

type auth struct {
	cfg    *Config
	logger *slog.Logger

	mu       sync.RWMutex
	verifier Verifier
}

// New creates an auth system. When cfg.Enabled is false every request carries
// a local identity that is treated as admin.
func New(cfg *Config, logger *slog.Logger) System {
	return &auth{
		cfg:    cfg,
		logger: logger.With("system", "auth"),
	}
}

// NewWithVerifier creates an enabled auth system backed by the given verifier.
func NewWithVerifier(cfg *Config, v Verifier, logger *slog.Logger) System {
	return &auth{
		cfg:      cfg,
		logger:   logger.With("system", "auth"),
		verifier: v,
	}
}

func (a *auth) Start(lc *lifecycle.Coordinator) error {
	lc.Track("auth", a)

	if !a.cfg.Enabled {
		a.logger.Warn("authentication disabled, all requests run as local admin")
		return nil
	}

	a.logger.Info("starting auth system", "issuer", a.cfg.Issuer)

	lc.OnStartup(func() {
		if a.current() != nil {
			return
		}

		provider, err := oidc.NewProvider(lc.Context(), a.cfg.Issuer)
		if err != nil {
			a.logger.Error("identity provider discovery failed", "error", err)
			return
		}

		a.mu.Lock()
		a.verifier = &oidcVerifier{
			verifier: provider.Verifier(&oidc.Config{ClientID: a.cfg.ClientID}),
		}
		a.mu.Unlock()

		a.logger.Info("identity provider ready")
	})

	return nil
}

func (a *auth) Ready() bool {
	return !a.cfg.Enabled || a.current() != nil
}

func (a *auth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.cfg.Enabled {
				local := &Claims{Subject: LocalSubject, Groups: []string{a.cfg.AdminGroup}}
				next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), local)))
				return
			}

			v := a.current()
			if v == nil {
				handlers.RespondError(w, a.logger, http.StatusServiceUnavailable, ErrNotReady)
				return
			}

			raw, ok := bearerToken(r)
			if !ok {
				handlers.RespondError(w, a.logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}

			claims, err := v.Verify(r.Context(), raw)
			if err != nil {
				a.logger.Debug("token verification failed", "error", err)
				handlers.RespondError(w, a.logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func (a *auth) IsAdmin(claims *Claims) bool {
	if claims == nil {
		return false
	}
	return slices.Contains(claims.Groups, a.cfg.AdminGroup)
}

func (a *auth) current() Verifier {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.verifier
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func (o *oidcVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	token, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}

	var claims Claims
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	claims.Subject = token.Subject

	return &claims, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext returns the claims attached by Middleware, or nil.
func FromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

// CallerID returns the subject of the claims in ctx, or an empty string.
func CallerID(ctx context.Context) string {
	if claims := FromContext(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}

// MapHTTPStatus maps auth errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
