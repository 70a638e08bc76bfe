package auth

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultLandingPath is where users go after logging in.
const DefaultLandingPath = "/index"

// Recorder receives login and logout outcomes.
type Recorder interface {
	LogAuth(ctx context.Context, userID uint, action string, success bool)
}

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
// Returns true if the path is safe for redirect (local path only).
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}

	// Must start with /
	if !strings.HasPrefix(path, "/") {
		return false
	}

	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}

	// Reject URLs with schemes
	if strings.Contains(path, "://") {
		return false
	}

	// Reject paths with backslashes (potential bypass attempts)
	if strings.Contains(path, "\\") {
		return false
	}

	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to the main menu.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) && !strings.HasPrefix(path, "/login") {
		return path
	}
	return DefaultLandingPath
}

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	templates      *template.Template
	limiter        *LoginLimiter
	recorder       Recorder
}

// NewAuthController creates a new authentication controller. limiter and
// recorder may be nil. The caller owns the limiter and stops it.
func NewAuthController(service *Service, sessionManager *SessionManager, limiter *LoginLimiter, templatesPath string, recorder Recorder) *AuthController {
	// Templates might not exist (tests), JSON is rendered instead
	pattern := filepath.Join(templatesPath, "auth", "*.html")
	tmpl, err := template.ParseGlob(pattern)
	if err != nil {
		tmpl = nil
	}

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		templates:      tmpl,
		limiter:        limiter,
		recorder:       recorder,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/logout", ac.Logout) // Support GET for simple logout links
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessionManager != nil && ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, DefaultLandingPath)
		return
	}

	ac.renderTemplate(c, http.StatusOK, "login.html", gin.H{
		"Title":     "Login",
		"Next":      sanitizeRedirectPath(c.Query("next")),
		"CSRFToken": GetCSRFToken(c),
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	uid := strings.TrimSpace(c.PostForm("uid"))
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	data := gin.H{
		"Title":     "Login",
		"Next":      next,
		"UID":       uid,
		"CSRFToken": GetCSRFToken(c),
	}

	if ac.limiter != nil {
		if wait := ac.limiter.RetryAfter(clientIP, uid); wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(wait.Round(time.Second)/time.Second)))
			data["Error"] = "Too many login attempts. Please try again later."
			ac.renderTemplate(c, http.StatusTooManyRequests, "login.html", data)
			return
		}
	}

	user, err := ac.service.Authenticate(uid, password)
	if err != nil {
		if ac.limiter != nil {
			if lockout := ac.limiter.Fail(clientIP, uid); lockout > 0 {
				log.Printf("Login for %q from %s locked for %v", uid, clientIP, lockout)
			}
		}
		if ac.recorder != nil {
			ac.recorder.LogAuth(c.Request.Context(), 0, "login:"+uid, false)
		}

		// Unknown id and wrong password look the same
		data["Error"] = "Invalid user id or password"
		if errors.Is(err, ErrAccountLocked) {
			data["Error"] = "Account is locked. Please try again later."
		}
		ac.renderTemplate(c, http.StatusUnauthorized, "login.html", data)
		return
	}

	if ac.limiter != nil {
		ac.limiter.Succeed(clientIP, uid)
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			data["Error"] = "Failed to create session"
			ac.renderTemplate(c, http.StatusInternalServerError, "login.html", data)
			return
		}
	}
	if ac.recorder != nil {
		ac.recorder.LogAuth(c.Request.Context(), user.ID, "login", true)
	}

	if IsAPIRequest(c) {
		c.JSON(http.StatusOK, gin.H{"user": user, "next": next})
		return
	}
	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and redirects to login.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		userID := ac.sessionManager.GetUserID(c.Request)
		_ = ac.sessionManager.DestroySession(c.Request)
		if ac.recorder != nil && userID != 0 {
			ac.recorder.LogAuth(c.Request.Context(), userID, "logout", true)
		}
	}
	if IsAPIRequest(c) {
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// renderTemplate renders an auth template or falls back to JSON.
func (ac *AuthController) renderTemplate(c *gin.Context, status int, name string, data gin.H) {
	if ac.templates == nil || IsAPIRequest(c) {
		if msg, ok := data["Error"]; ok {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(status, data)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := ac.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "Template error: %v", err)
	}
}
