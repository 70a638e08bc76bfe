package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/auth"
	"github.com/mrlokans/classlib/internal/entities"
	"github.com/mrlokans/classlib/internal/readonly"
)

const pageEnvKey = "page_env"

// PageData is the layout data every HTML page receives as .Page.
type PageData struct {
	Title     string
	User      *entities.User
	CSRFToken string
	CSRFField string
	Flashes   []auth.Flash
	Version   string
	ReadOnly  bool
	Analytics template.HTML
}

type pageEnv struct {
	sessions  *auth.SessionManager
	html      bool
	version   string
	analytics template.HTML
}

// PageContextMiddleware exposes the session manager and rendering mode to
// controllers. html is false when no templates were loaded; every response
// is JSON then. analytics is injected into every page head.
func PageContextMiddleware(sessions *auth.SessionManager, html bool, version string, analytics template.HTML) gin.HandlerFunc {
	env := &pageEnv{sessions: sessions, html: html, version: version, analytics: analytics}
	return func(c *gin.Context) {
		c.Set(pageEnvKey, env)
		c.Next()
	}
}

func getPageEnv(c *gin.Context) *pageEnv {
	if v, ok := c.Get(pageEnvKey); ok {
		if env, ok := v.(*pageEnv); ok {
			return env
		}
	}
	return &pageEnv{}
}

// wantsHTML reports whether the response should be a rendered page.
func wantsHTML(c *gin.Context) bool {
	return getPageEnv(c).html && !auth.IsAPIRequest(c)
}

// render writes a page for browsers and payload as JSON for API clients.
func render(c *gin.Context, status int, name, title string, data gin.H, payload any) {
	if !wantsHTML(c) {
		c.JSON(status, payload)
		return
	}
	renderHTML(c, status, name, title, data)
}

// renderHTML executes a template with the layout data attached. Pending
// flash messages are consumed here.
func renderHTML(c *gin.Context, status int, name, title string, data gin.H) {
	env := getPageEnv(c)
	page := PageData{
		Title:     title,
		User:      auth.GetUser(c),
		CSRFToken: auth.GetCSRFToken(c),
		CSRFField: auth.CSRFFormField,
		Version:   env.version,
		ReadOnly:  c.GetBool(readonly.ContextKey),
		Analytics: env.analytics,
	}
	if env.sessions != nil {
		page.Flashes = env.sessions.PopFlashes(c.Request.Context())
	}
	if data == nil {
		data = gin.H{}
	}
	data["Page"] = page
	c.HTML(status, name, data)
}

// addFlash queues a message for the next rendered page.
func addFlash(c *gin.Context, level, message string) {
	if env := getPageEnv(c); env.sessions != nil {
		env.sessions.AddFlash(c.Request.Context(), level, message)
	}
}
