// Package worker hosts the scheduled status watcher: its configuration,
// the cron job that drives it, its metrics and its health probes.
package worker

import (
	"fmt"
	"time"

	"ghstatus-dashboard/internal/pkg/config"
)

// Config holds the worker settings.
type Config struct {
	// CronSchedule is a five field cron expression or descriptor.
	// Default: "*/5 * * * *"
	CronSchedule string

	// Timezone is the IANA zone the schedule is interpreted in.
	// Default: "UTC"
	Timezone string

	// NotifyMaxConcurrent bounds parallel webhook deliveries per change.
	// Default: 2, range 1..10
	NotifyMaxConcurrent int

	// CheckTimeout bounds a single check, feed fetch and deliveries included.
	// Default: 1m
	CheckTimeout time.Duration

	// HealthPort serves /health and /health/ready.
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		CronSchedule:        "*/5 * * * *",
		Timezone:            "UTC",
		NotifyMaxConcurrent: 2,
		CheckTimeout:        time.Minute,
		HealthPort:          9091,
	}
}

// Validate rejects settings the scheduler cannot run with.
func (c *Config) Validate() error {
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		return err
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		return err
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 10); err != nil {
		return fmt.Errorf("notify max concurrent: %w", err)
	}
	if err := config.ValidateDuration(c.CheckTimeout, 5*time.Second, 10*time.Minute); err != nil {
		return fmt.Errorf("check timeout: %w", err)
	}
	if err := config.ValidateIntRange(c.HealthPort, 1, 65535); err != nil {
		return fmt.Errorf("health port: %w", err)
	}
	return nil
}

// Location resolves Timezone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HealthAddr is the listen address of the health server.
func (c *Config) HealthAddr() string {
	return fmt.Sprintf(":%d", c.HealthPort)
}

// LoadConfig reads the worker settings through l. Invalid values fall back
// to the defaults, so the result always passes Validate.
//
// Keys: CRON_SCHEDULE, WORKER_TIMEZONE, NOTIFY_MAX_CONCURRENT,
// CHECK_TIMEOUT, WORKER_HEALTH_PORT.
func LoadConfig(l *config.ComponentLoader) Config {
	cfg := DefaultConfig()
	src := l.Source()

	cfg.CronSchedule = config.Field(l, "cron_schedule",
		config.LoadString(src, "CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule))
	cfg.Timezone = config.Field(l, "timezone",
		config.LoadString(src, "WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.NotifyMaxConcurrent = config.Field(l, "notify_max_concurrent",
		config.LoadInt(src, "NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
			return config.ValidateIntRange(v, 1, 10)
		}))
	cfg.CheckTimeout = config.Field(l, "check_timeout",
		config.LoadDuration(src, "CHECK_TIMEOUT", cfg.CheckTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, 5*time.Second, 10*time.Minute)
		}))
	cfg.HealthPort = config.Field(l, "health_port",
		config.LoadInt(src, "WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
			return config.ValidateIntRange(v, 1, 65535)
		}))

	return cfg
}
