package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/entities"
)

func setupMiddlewareRouter(t *testing.T, as *entities.User) (*gin.Engine, *Middleware) {
	t.Helper()

	db := setupTestDB(t)
	svc := NewService(db, testAuthConfig())
	sm := setupSessionManager(t, db)
	mw := NewMiddleware(svc, sm)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	if as != nil {
		router.Use(func(c *gin.Context) { setUserContext(c, as) })
	} else {
		router.Use(mw.Handler())
	}
	return router, mw
}

func TestMiddleware_PublicPaths(t *testing.T) {
	router, _ := setupMiddlewareRouter(t, nil)
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/static/style.css", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/static/style.css"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestMiddleware_RedirectsBrowserToLogin(t *testing.T) {
	router, _ := setupMiddlewareRouter(t, nil)
	router.GET("/my/borrows", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/my/borrows", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?next=%2Fmy%2Fborrows" {
		t.Errorf("unexpected redirect %q", loc)
	}
}

func TestMiddleware_UnauthorizedJSON(t *testing.T) {
	router, _ := setupMiddlewareRouter(t, nil)
	router.GET("/books", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "authentication required") {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestRequireRole_AllowsTeacher(t *testing.T) {
	teacher := &entities.User{ID: 1, UID: "T001", Role: entities.RoleTeacher}
	router, mw := setupMiddlewareRouter(t, teacher)
	router.GET("/classes", mw.RequireRole(entities.RoleTeacher), func(c *gin.Context) {
		c.String(http.StatusOK, GetUser(c).UID)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/classes", nil))

	if w.Code != http.StatusOK || w.Body.String() != "T001" {
		t.Errorf("expected 200 T001, got %d %s", w.Code, w.Body.String())
	}
}

func TestRequireRole_StudentForbiddenJSON(t *testing.T) {
	student := &entities.User{ID: 3, UID: "S001", Role: entities.RoleStudent}
	router, mw := setupMiddlewareRouter(t, student)
	router.GET("/classes", mw.RequireRole(entities.RoleTeacher), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/classes", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestRequireRole_StudentRedirectedToIndex(t *testing.T) {
	student := &entities.User{ID: 3, UID: "S001", Role: entities.RoleStudent}
	router, mw := setupMiddlewareRouter(t, student)
	router.GET("/teacher/class-borrows", mw.RequireRole(entities.RoleTeacher), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teacher/class-borrows", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/index" {
		t.Errorf("expected redirect to /index, got %q", loc)
	}
}

func TestContextHelpers_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetUser(c) != nil {
		t.Error("GetUser should be nil")
	}
	if GetUserID(c) != 0 || IsAuthenticated(c) {
		t.Error("context should be unauthenticated")
	}
	if GetUserRole(c) != "" {
		t.Error("role should be empty")
	}
}

func TestIsAPIRequest(t *testing.T) {
	tests := []struct {
		path   string
		accept string
		want   bool
	}{
		{"/api/audit", "", true},
		{"/books", "application/json", true},
		{"/books", "text/html", false},
		{"/books", "", false},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.accept != "" {
			c.Request.Header.Set("Accept", tt.accept)
		}
		if got := IsAPIRequest(c); got != tt.want {
			t.Errorf("IsAPIRequest(%s, %q) = %v, want %v", tt.path, tt.accept, got, tt.want)
		}
	}
}
