// Package readonly freezes circulation, e.g. during a stocktake. Pages stay
// readable while every write is refused.
package readonly

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/auth"
)

// DefaultMessage is shown when no custom message is configured.
const DefaultMessage = "The library is read-only at the moment, borrowing and returning are paused"

// ContextKey marks read-only mode for templates.
const ContextKey = "read_only"

// Middleware rejects write requests while enabled. Signing in and out keeps
// working.
type Middleware struct {
	enabled bool
	message string
}

// NewMiddleware creates a read-only middleware. An empty message selects
// DefaultMessage.
func NewMiddleware(enabled bool, message string) *Middleware {
	if message == "" {
		message = DefaultMessage
	}
	return &Middleware{enabled: enabled, message: message}
}

func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKey, m.enabled)
		if !m.enabled || isSafeMethod(c.Request.Method) || isSessionPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		m.respondBlocked(c)
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func isSessionPath(path string) bool {
	return path == "/login" || path == "/logout"
}

// respondBlocked answers 503 so clients know to retry later.
func (m *Middleware) respondBlocked(c *gin.Context) {
	c.Header("Retry-After", "3600")

	if auth.IsAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error": m.message,
			"code":  "read_only",
		})
		return
	}

	c.Abort()
	c.String(http.StatusServiceUnavailable, m.message)
}
