package database_test

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/meridian/pkg/database"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := database.Config{Name: "meridian", User: "meridian"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"host", cfg.Host, "localhost"},
		{"port", cfg.Port, 5432},
		{"ssl_mode", cfg.SSLMode, "disable"},
		{"max_open_conns", cfg.MaxOpenConns, 25},
		{"max_idle_conns", cfg.MaxIdleConns, 5},
		{"conn_max_lifetime", cfg.ConnMaxLifetime, "15m"},
		{"conn_timeout", cfg.ConnTimeout, "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	vars := map[string]string{
		"DB_HOST":     "db.internal",
		"DB_PORT":     "6432",
		"DB_NAME":     "maturity",
		"DB_USER":     "svc",
		"DB_PASSWORD": "s3cret",
		"DB_SSL":      "require",
		"DB_OPEN":     "40",
		"DB_IDLE":     "8",
		"DB_LIFETIME": "1h",
		"DB_TIMEOUT":  "2s",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}

	cfg := database.Config{}
	err := cfg.Finalize(&database.Env{
		Host:            "DB_HOST",
		Port:            "DB_PORT",
		Name:            "DB_NAME",
		User:            "DB_USER",
		Password:        "DB_PASSWORD",
		SSLMode:         "DB_SSL",
		MaxOpenConns:    "DB_OPEN",
		MaxIdleConns:    "DB_IDLE",
		ConnMaxLifetime: "DB_LIFETIME",
		ConnTimeout:     "DB_TIMEOUT",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	want := database.Config{
		Host:            "db.internal",
		Port:            6432,
		Name:            "maturity",
		User:            "svc",
		Password:        "s3cret",
		SSLMode:         "require",
		MaxOpenConns:    40,
		MaxIdleConns:    8,
		ConnMaxLifetime: "1h",
		ConnTimeout:     "2s",
	}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestFinalizeIgnoresMalformedPort(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")

	cfg := database.Config{Name: "meridian", User: "meridian"}
	if err := cfg.Finalize(&database.Env{Port: "DB_PORT"}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Port != 5432 {
		t.Errorf("port = %d, want default 5432", cfg.Port)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"missing name", database.Config{User: "u"}, "name required"},
		{"missing user", database.Config{Name: "n"}, "user required"},
		{"bad lifetime", database.Config{Name: "n", User: "u", ConnMaxLifetime: "forever"}, "invalid conn_max_lifetime"},
		{"bad timeout", database.Config{Name: "n", User: "u", ConnTimeout: "soon"}, "invalid conn_timeout"},
		{"bad ssl mode", database.Config{Name: "n", User: "u", SSLMode: "on"}, "invalid ssl_mode"},
		{"idle above open", database.Config{Name: "n", User: "u", MaxOpenConns: 4, MaxIdleConns: 10}, "exceeds max_open_conns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := database.Config{Host: "localhost", Port: 5432, Name: "base", User: "owner", MaxOpenConns: 25}
	base.Merge(&database.Config{Host: "replica", Name: "overlay"})

	want := database.Config{Host: "replica", Port: 5432, Name: "overlay", User: "owner", MaxOpenConns: 25}
	if base != want {
		t.Errorf("merged = %+v, want %+v", base, want)
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
		want string
	}{
		{
			name: "plain",
			cfg:  database.Config{Host: "localhost", Port: 5432, Name: "meridian", User: "svc", Password: "pw", SSLMode: "disable"},
			want: "postgres://svc:pw@localhost:5432/meridian?sslmode=disable",
		},
		{
			name: "escaped password",
			cfg:  database.Config{Host: "db", Port: 6432, Name: "m", User: "svc", Password: "p@ss/word", SSLMode: "require"},
			want: "postgres://svc:p%40ss%2Fword@db:6432/m?sslmode=require",
		},
		{
			name: "ipv6 host",
			cfg:  database.Config{Host: "::1", Port: 5432, Name: "m", User: "svc", SSLMode: "disable"},
			want: "postgres://svc:@[::1]:5432/m?sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.URL(); got != tt.want {
				t.Errorf("URL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDurations(t *testing.T) {
	cfg := database.Config{ConnMaxLifetime: "15m", ConnTimeout: "5s"}

	if d := cfg.ConnMaxLifetimeDuration(); d != 15*time.Minute {
		t.Errorf("conn_max_lifetime = %v, want 15m", d)
	}
	if d := cfg.ConnTimeoutDuration(); d != 5*time.Second {
		t.Errorf("conn_timeout = %v, want 5s", d)
	}
}
