package http

import (
	"html/template"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/auth"
	"github.com/mrlokans/classlib/internal/entities"
)

// templateFuncs are available to every page template.
var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"dateptr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"overdue": func(r entities.BorrowRecord) bool {
		return r.IsOverdue(time.Now())
	},
	"upper": strings.ToUpper,
}

// loadTemplates parses the page templates. It returns nil when the path is
// empty or holds no templates.
func loadTemplates(path string) *template.Template {
	if path == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(path, "*.html"))
	if err != nil || len(files) == 0 {
		log.Printf("No page templates found in %q, serving JSON only", path)
		return nil
	}
	return template.Must(template.New("").Funcs(templateFuncs).ParseFiles(files...))
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(31536000))
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	router.Use(cfg.AuthMiddleware.Handler())
	if cfg.ReadOnly != nil {
		router.Use(cfg.ReadOnly.Handler())
	}

	tmpl := loadTemplates(cfg.TemplatesPath)
	if tmpl != nil {
		router.SetHTMLTemplate(tmpl)
	}
	router.Use(PageContextMiddleware(cfg.SessionManager, tmpl != nil, cfg.Version, cfg.Analytics.ScriptTag()))

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	// Login and logout. The auth controller parses its own templates from
	// TemplatesPath/auth and falls back to JSON.
	var (
		authRecorder    auth.Recorder
		profileRecorder ProfileRecorder
	)
	if cfg.Audit != nil {
		authRecorder = cfg.Audit
		profileRecorder = cfg.Audit
	}
	authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.LoginLimiter, cfg.TemplatesPath, authRecorder)
	authController.RegisterRoutes(router)

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	ui := NewUIController()
	router.GET("/", ui.Root)
	router.GET("/index", ui.IndexPage)

	books := NewBooksController(cfg.Library)
	router.GET("/books", books.BooksPage)
	router.GET("/books/category/:category", books.CategoryPage)

	borrows := NewBorrowController(cfg.Library)
	router.POST("/borrow", borrows.Borrow)
	router.POST("/return/:id", borrows.Return)
	router.GET("/my/borrows", borrows.MyBorrowsPage)
	router.GET("/my/history", borrows.HistoryPage)

	profile := NewProfileController(cfg.Library, cfg.AuthService, cfg.SessionManager, profileRecorder)
	router.GET("/user/info", profile.InfoPage)
	router.POST("/user/update", profile.UpdateProfile)
	router.POST("/user/password", profile.ChangePassword)

	// Teacher-only routes
	teacherOnly := cfg.AuthMiddleware.RequireRole(entities.RoleTeacher)
	teacher := NewTeacherController(cfg.Library)
	classes := router.Group("/classes", teacherOnly)
	classes.GET("", teacher.ClassesPage)
	classes.POST("/add", teacher.AddClass)
	classes.POST("/remove", teacher.RemoveClass)

	teacherViews := router.Group("/teacher", teacherOnly)
	teacherViews.GET("/class-borrows", teacher.ClassBorrowsPage)
	teacherViews.GET("/class-borrows/:classID", teacher.ClassStudentsPage)
	teacherViews.GET("/student-borrows/:classID/:uid", teacher.StudentBorrowsPage)

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		router.GET("/audit", teacherOnly, auditController.AuditLogPage)
		router.GET("/api/audit", teacherOnly, auditController.GetAuditEvents)
	}

	if cfg.TaskRunner != nil {
		tasksController := NewTasksController(cfg.TaskRunner)
		api := router.Group("/api/tasks", teacherOnly)
		api.GET("/types", tasksController.ListTaskTypes)
		api.GET("/:id", tasksController.GetTaskStatus)
		api.POST("/:type/run", tasksController.RunTask)
	}

	return router
}
