package main

import (
	"time"

	"ghstatus-dashboard/internal/pkg/config"
)

// apiConfig holds the settings of the dashboard server.
type apiConfig struct {
	Port            int
	Version         string
	DisplayTimezone string
	RequestTimeout  time.Duration
	CSPEnabled      bool
	CSPReportOnly   bool
}

func defaultAPIConfig() apiConfig {
	return apiConfig{
		Port:            8080,
		Version:         "dev",
		DisplayTimezone: "UTC",
		RequestTimeout:  30 * time.Second,
		CSPEnabled:      true,
	}
}

// loadAPIConfig reads PORT, VERSION, DISPLAY_TIMEZONE, REQUEST_TIMEOUT,
// CSP_ENABLED and CSP_REPORT_ONLY.
func loadAPIConfig(l *config.ComponentLoader) apiConfig {
	cfg := defaultAPIConfig()
	src := l.Source()

	cfg.Port = config.Field(l, "port",
		config.LoadInt(src, "PORT", cfg.Port, func(v int) error {
			return config.ValidateIntRange(v, 1, 65535)
		}))
	cfg.Version = config.Field(l, "version",
		config.LoadString(src, "VERSION", cfg.Version, nil))
	cfg.DisplayTimezone = config.Field(l, "display_timezone",
		config.LoadString(src, "DISPLAY_TIMEZONE", cfg.DisplayTimezone, config.ValidateTimezone))
	cfg.RequestTimeout = config.Field(l, "request_timeout",
		config.LoadDuration(src, "REQUEST_TIMEOUT", cfg.RequestTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, time.Second, 2*time.Minute)
		}))
	cfg.CSPEnabled = config.Field(l, "csp_enabled",
		config.LoadBool(src, "CSP_ENABLED", cfg.CSPEnabled))
	cfg.CSPReportOnly = config.Field(l, "csp_report_only",
		config.LoadBool(src, "CSP_REPORT_ONLY", cfg.CSPReportOnly))

	return cfg
}

func (c apiConfig) location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
