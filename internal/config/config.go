package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Audit
		Global
		Database
		UI
		Library
		Tasks
		Auth
		Analytics
	}

	HTTP struct {
		Port int32
		Host string
	}
	Audit struct {
		RetentionDays int    // Days to keep audit events (default: 30)
		Schedule      string // Cron format for the retention cleanup
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path     string
		LogLevel string // silent, error, warn, info
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Library struct {
		LoanPeriod      time.Duration // Time until a borrowed book is due (default: 90 days)
		StudentQuota    int           // Max open borrows per student, 0 disables
		TeacherQuota    int           // Max open borrows per teacher, 0 disables
		OverdueSchedule string        // Cron format: "0 8 * * *" = daily at 08:00
		SeedOnStart     bool
		ReadOnly        bool   // Refuse borrowing and returning, e.g. during a stocktake
		ReadOnlyMessage string // Shown to users while ReadOnly is set
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration // Stuck tasks go back to the queue after this
		CleanupInterval time.Duration // How often finished tasks are purged
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Analytics struct {
		PlausibleDomain     string // Enables the Plausible script when set
		PlausibleScriptURL  string
		PlausibleExtensions string // Comma separated, e.g. "outbound-links,hash"
	}
)

// Quota returns the borrow limit for the given role code.
func (l Library) Quota(teacher bool) int {
	if teacher {
		return l.TeacherQuota
	}
	return l.StudentQuota
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_log_level", "warn")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "30 3 * * *") // Daily at 03:30
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	// Library defaults
	v.SetDefault("library_loan_period", DefaultLoanPeriod.String())
	v.SetDefault("library_student_quota", DefaultStudentQuota)
	v.SetDefault("library_teacher_quota", DefaultTeacherQuota)
	v.SetDefault("library_overdue_schedule", "0 8 * * *")
	v.SetDefault("library_seed_on_start", true)
	v.SetDefault("library_read_only", false)
	v.SetDefault("library_read_only_message", "")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			Schedule:      v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:     v.GetString("DATABASE_PATH"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Library: Library{
			LoanPeriod:      v.GetDuration("LIBRARY_LOAN_PERIOD"),
			StudentQuota:    v.GetInt("LIBRARY_STUDENT_QUOTA"),
			TeacherQuota:    v.GetInt("LIBRARY_TEACHER_QUOTA"),
			OverdueSchedule: v.GetString("LIBRARY_OVERDUE_SCHEDULE"),
			SeedOnStart:     v.GetBool("LIBRARY_SEED_ON_START"),
			ReadOnly:        v.GetBool("LIBRARY_READ_ONLY"),
			ReadOnlyMessage: v.GetString("LIBRARY_READ_ONLY_MESSAGE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Auth: Auth{
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Analytics: Analytics{
			PlausibleDomain:     v.GetString("PLAUSIBLE_DOMAIN"),
			PlausibleScriptURL:  v.GetString("PLAUSIBLE_SCRIPT_URL"),
			PlausibleExtensions: v.GetString("PLAUSIBLE_EXTENSIONS"),
		},
	}
}
