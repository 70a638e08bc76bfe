package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"log"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/config"
	"github.com/mrlokans/classlib/internal/entities"
)

// Session data keys
const (
	SessionKeyUserID  = "user_id"
	SessionKeyUID     = "uid"
	SessionKeyName    = "name"
	SessionKeyRole    = "role"
	SessionKeyLoginAt = "login_at"
	SessionKeyFlashes = "flashes"
)

// Flash levels
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

func init() {
	// Register types that will be stored in sessions
	gob.Register(entities.UserRole(""))
	gob.Register(time.Time{})
	gob.Register([]Flash{})
}

// SessionManager wraps scs.SessionManager with application-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	// Create sessions table if it doesn't exist
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	lifetime := cfg.SessionLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2 // Half of lifetime for inactivity

	// Configure cookie security
	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode // Lax so the post-login redirect keeps the cookie
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession creates a new session for a user after successful authentication.
// This should be called after password verification.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	// Renew token to prevent session fixation
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	// Store user ID as int to match GetInt() retrieval
	sm.Put(r.Context(), SessionKeyUserID, int(user.ID))
	sm.Put(r.Context(), SessionKeyUID, user.UID)
	sm.Put(r.Context(), SessionKeyName, user.Name)
	sm.Put(r.Context(), SessionKeyRole, user.Role)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now())

	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetUserID retrieves the user ID from the session.
// Returns 0 if not authenticated.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyUserID))
}

// GetUID retrieves the login id from the session.
func (sm *SessionManager) GetUID(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUID)
}

// GetUserRole retrieves the user role from the session.
func (sm *SessionManager) GetUserRole(r *http.Request) entities.UserRole {
	role, ok := sm.Get(r.Context(), SessionKeyRole).(entities.UserRole)
	if !ok {
		return ""
	}
	return role
}

// SetName refreshes the cached display name after a profile change.
func (sm *SessionManager) SetName(r *http.Request, name string) {
	sm.Put(r.Context(), SessionKeyName, name)
}

// IsAuthenticated returns true if the request has a valid session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetUserID(r) != 0
}

// AddFlash queues a message for the next page render.
func (sm *SessionManager) AddFlash(ctx context.Context, level, message string) {
	flashes, _ := sm.Get(ctx, SessionKeyFlashes).([]Flash)
	sm.Put(ctx, SessionKeyFlashes, append(flashes, Flash{Level: level, Message: message}))
}

// PopFlashes returns and clears queued messages.
func (sm *SessionManager) PopFlashes(ctx context.Context) []Flash {
	flashes, _ := sm.Pop(ctx, SessionKeyFlashes).([]Flash)
	return flashes
}

// SessionLoadSave loads the session of each request and saves it before the
// first response byte goes out, so redirects and flashes keep their cookie.
// It must run ahead of any handler that reads or writes the session.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			log.Printf("Failed to load session: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &sessionWriter{ResponseWriter: c.Writer, sm: sm, ctx: ctx}
		c.Writer = w
		c.Next()

		// Handlers that only set a status never flush through w
		w.save()
	}
}

// sessionWriter saves the session once, right before headers are flushed.
// gin's WriteHeader only records the status, so it is not intercepted.
type sessionWriter struct {
	gin.ResponseWriter
	sm    *SessionManager
	ctx   context.Context
	saved bool
}

func (w *sessionWriter) save() {
	if w.saved {
		return
	}
	w.saved = true

	switch w.sm.Status(w.ctx) {
	case scs.Modified:
		token, expiry, err := w.sm.Commit(w.ctx)
		if err != nil {
			log.Printf("Failed to save session: %v", err)
			return
		}
		w.sm.WriteSessionCookie(w.ctx, w.ResponseWriter, token, expiry)
	case scs.Destroyed:
		w.sm.WriteSessionCookie(w.ctx, w.ResponseWriter, "", time.Time{})
	}
}

func (w *sessionWriter) WriteHeaderNow() {
	w.save()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.save()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.save()
	return w.ResponseWriter.WriteString(s)
}
