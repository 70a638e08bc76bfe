package tasks

import (
	"time"

	"github.com/mrlokans/classlib/internal/config"
)

// Config holds configuration for the task queue.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 2
	Workers int

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// AuditRetentionDays is passed to cleanup_audit_events runs. Default: 30
	AuditRetentionDays int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:            2,
		ReleaseAfter:       15 * time.Minute,
		CleanupInterval:    time.Hour,
		AuditRetentionDays: 30,
	}
}

// ConfigFrom builds the queue configuration from application settings,
// keeping defaults for unset values.
func ConfigFrom(tasks config.Tasks, audit config.Audit) Config {
	cfg := DefaultConfig()
	if tasks.Workers > 0 {
		cfg.Workers = tasks.Workers
	}
	if tasks.ReleaseAfter > 0 {
		cfg.ReleaseAfter = tasks.ReleaseAfter
	}
	if tasks.CleanupInterval > 0 {
		cfg.CleanupInterval = tasks.CleanupInterval
	}
	if audit.RetentionDays > 0 {
		cfg.AuditRetentionDays = audit.RetentionDays
	}
	return cfg
}
