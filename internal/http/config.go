package http

import (
	"github.com/mrlokans/classlib/internal/analytics"
	"github.com/mrlokans/classlib/internal/audit"
	"github.com/mrlokans/classlib/internal/auth"
	"github.com/mrlokans/classlib/internal/database"
	"github.com/mrlokans/classlib/internal/library"
	"github.com/mrlokans/classlib/internal/readonly"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Library  *library.Service
	Audit    *audit.Service

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	LoginLimiter   *auth.LoginLimiter // owned by the caller, nil disables it

	// CSRF protection is enabled when a secret is set
	CSRFSecret    []byte
	SecureCookies bool

	// UI paths. An empty TemplatesPath serves JSON only.
	TemplatesPath string
	StaticPath    string

	// Read-only mode refuses writes after sign-in (optional)
	ReadOnly *readonly.Middleware

	// Page-view analytics (optional)
	Analytics *analytics.Plausible

	// Task queue client (optional)
	TaskRunner TaskRunner

	// Application info
	Version string
}
