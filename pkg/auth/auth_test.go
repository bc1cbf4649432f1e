package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/meridian/pkg/auth"
	"github.com/JaimeStill/meridian/pkg/lifecycle"
)

type mockVerifier struct {
	verifyFn func(ctx context.Context, raw string) (*auth.Claims, error)
}

func (m *mockVerifier) Verify(ctx context.Context, raw string) (*auth.Claims, error) {
	return m.verifyFn(ctx, raw)
}

func echoSubject() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(auth.CallerID(r.Context())))
	})
}

func TestMiddlewareDisabledAttachesLocalAdmin(t *testing.T) {
	cfg := &auth.Config{AdminGroup: "admins"}
	sys := auth.New(cfg, slog.Default())

	var claims *auth.Claims
	handler := sys.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = auth.FromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if claims == nil {
		t.Fatal("expected claims in context")
	}
	if claims.Subject != auth.LocalSubject {
		t.Errorf("subject: got %q, want %q", claims.Subject, auth.LocalSubject)
	}
	if !sys.IsAdmin(claims) {
		t.Error("local identity should be admin")
	}
}

func TestMiddlewareEnabled(t *testing.T) {
	cfg := &auth.Config{Enabled: true, Issuer: "https://idp", ClientID: "meridian", AdminGroup: "admins"}
	verifier := &mockVerifier{
		verifyFn: func(ctx context.Context, raw string) (*auth.Claims, error) {
			if raw != "good-token" {
				return nil, errors.New("signature mismatch")
			}
			return &auth.Claims{Subject: "user-1", Email: "u@example.com"}, nil
		},
	}
	sys := auth.NewWithVerifier(cfg, verifier, slog.Default())
	handler := sys.Middleware()(echoSubject())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer good-token", http.StatusOK, "user-1"},
		{"lowercase scheme", "bearer good-token", http.StatusOK, "user-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer bad-token", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	sys := auth.New(&auth.Config{AdminGroup: "admins"}, slog.Default())

	tests := []struct {
		name   string
		claims *auth.Claims
		want   bool
	}{
		{"nil claims", nil, false},
		{"no groups", &auth.Claims{Subject: "u"}, false},
		{"other group", &auth.Claims{Subject: "u", Groups: []string{"analysts"}}, false},
		{"admin group", &auth.Claims{Subject: "u", Groups: []string{"analysts", "admins"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sys.IsAdmin(tt.claims); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	disabled := auth.New(&auth.Config{}, slog.Default())
	if !disabled.Ready() {
		t.Error("disabled auth should be ready")
	}

	enabled := auth.New(&auth.Config{Enabled: true, Issuer: "https://idp", ClientID: "c"}, slog.Default())
	if enabled.Ready() {
		t.Error("enabled auth should not be ready before discovery")
	}

	verified := auth.NewWithVerifier(&auth.Config{Enabled: true}, &mockVerifier{}, slog.Default())
	if !verified.Ready() {
		t.Error("auth with verifier should be ready")
	}
}

func TestStartTracksReadiness(t *testing.T) {
	lc := lifecycle.New()
	sys := auth.NewWithVerifier(&auth.Config{Enabled: true}, &mockVerifier{}, slog.Default())

	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	lc.WaitForStartup()

	if !lc.Ready() {
		t.Error("lifecycle should be ready with a configured verifier")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{auth.ErrUnauthorized, http.StatusUnauthorized},
		{auth.ErrForbidden, http.StatusForbidden},
		{auth.ErrNotReady, http.StatusServiceUnavailable},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := auth.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("disabled needs nothing", func(t *testing.T) {
		cfg := auth.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.AdminGroup != "meridian-admins" {
			t.Errorf("admin_group: got %q", cfg.AdminGroup)
		}
	})

	t.Run("enabled requires issuer", func(t *testing.T) {
		cfg := auth.Config{Enabled: true, ClientID: "c"}
		if err := cfg.Finalize(nil); err == nil {
			t.Fatal("expected error for missing issuer")
		}
	})

	t.Run("env enables", func(t *testing.T) {
		t.Setenv("TEST_AUTH_ENABLED", "true")
		t.Setenv("TEST_AUTH_ISSUER", "https://idp")
		t.Setenv("TEST_AUTH_CLIENT", "meridian")

		cfg := auth.Config{}
		err := cfg.Finalize(&auth.Env{
			Enabled:  "TEST_AUTH_ENABLED",
			Issuer:   "TEST_AUTH_ISSUER",
			ClientID: "TEST_AUTH_CLIENT",
		})
		if err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if !cfg.Enabled || cfg.Issuer != "https://idp" || cfg.ClientID != "meridian" {
			t.Errorf("env not applied: %+v", cfg)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	sys := auth.New(&auth.Config{AdminGroup: "admins"}, slog.Default())

	admin := auth.WithClaims(context.Background(), &auth.Claims{Subject: "a", Groups: []string{"admins"}})
	if err := auth.RequireAdmin(admin, sys); err != nil {
		t.Errorf("admin caller: got %v, want nil", err)
	}

	member := auth.WithClaims(context.Background(), &auth.Claims{Subject: "m"})
	if err := auth.RequireAdmin(member, sys); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("member caller: got %v, want ErrForbidden", err)
	}

	if err := auth.RequireAdmin(context.Background(), sys); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("anonymous caller: got %v, want ErrForbidden", err)
	}
}
