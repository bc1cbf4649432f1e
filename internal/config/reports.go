package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/meridian/pkg/render"
)

const (
	EnvReportsConverter     = "MERIDIAN_REPORTS_CONVERTER"
	EnvReportsBrowserPath   = "MERIDIAN_REPORTS_BROWSER_PATH"
	EnvReportsRenderTimeout = "MERIDIAN_REPORTS_RENDER_TIMEOUT"
	EnvReportsStaleAfter    = "MERIDIAN_REPORTS_STALE_AFTER"
	EnvReportsSweepSchedule = "MERIDIAN_REPORTS_SWEEP_SCHEDULE"
)

// ReportsConfig holds report generation settings.
type ReportsConfig struct {
	Converter     string `toml:"converter"`
	BrowserPath   string `toml:"browser_path"`
	RenderTimeout string `toml:"render_timeout"`
	StaleAfter    string `toml:"stale_after"`
	SweepSchedule string `toml:"sweep_schedule"`
}

// RenderTimeoutDuration returns RenderTimeout as a time.Duration.
func (c *ReportsConfig) RenderTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RenderTimeout)
	return d
}

// StaleAfterDuration returns StaleAfter as a time.Duration.
func (c *ReportsConfig) StaleAfterDuration() time.Duration {
	d, _ := time.ParseDuration(c.StaleAfter)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ReportsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ReportsConfig) Merge(overlay *ReportsConfig) {
	if overlay.Converter != "" {
		c.Converter = overlay.Converter
	}
	if overlay.BrowserPath != "" {
		c.BrowserPath = overlay.BrowserPath
	}
	if overlay.RenderTimeout != "" {
		c.RenderTimeout = overlay.RenderTimeout
	}
	if overlay.StaleAfter != "" {
		c.StaleAfter = overlay.StaleAfter
	}
	if overlay.SweepSchedule != "" {
		c.SweepSchedule = overlay.SweepSchedule
	}
}

func (c *ReportsConfig) loadDefaults() {
	if c.Converter == "" {
		c.Converter = render.ConverterBrowser
	}
	if c.RenderTimeout == "" {
		c.RenderTimeout = "2m"
	}
	if c.StaleAfter == "" {
		c.StaleAfter = "30m"
	}
	if c.SweepSchedule == "" {
		c.SweepSchedule = "@every 5m"
	}
}

func (c *ReportsConfig) loadEnv() {
	if v := os.Getenv(EnvReportsConverter); v != "" {
		c.Converter = v
	}
	if v := os.Getenv(EnvReportsBrowserPath); v != "" {
		c.BrowserPath = v
	}
	if v := os.Getenv(EnvReportsRenderTimeout); v != "" {
		c.RenderTimeout = v
	}
	if v := os.Getenv(EnvReportsStaleAfter); v != "" {
		c.StaleAfter = v
	}
	if v := os.Getenv(EnvReportsSweepSchedule); v != "" {
		c.SweepSchedule = v
	}
}

func (c *ReportsConfig) validate() error {
	switch c.Converter {
	case render.ConverterBrowser, render.ConverterFPDF:
	default:
		return fmt.Errorf("invalid converter %q: must be %s or %s", c.Converter, render.ConverterBrowser, render.ConverterFPDF)
	}

	renderTimeout, err := time.ParseDuration(c.RenderTimeout)
	if err != nil {
		return fmt.Errorf("invalid render_timeout: %w", err)
	}
	staleAfter, err := time.ParseDuration(c.StaleAfter)
	if err != nil {
		return fmt.Errorf("invalid stale_after: %w", err)
	}
	if staleAfter <= renderTimeout {
		return fmt.Errorf("stale_after (%s) must exceed render_timeout (%s)", c.StaleAfter, c.RenderTimeout)
	}
	if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
		return fmt.Errorf("invalid sweep_schedule: %w", err)
	}
	return nil
}
