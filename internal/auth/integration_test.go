package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/entities"
)

type loginEvent struct {
	userID  uint
	action  string
	success bool
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []loginEvent
}

func (r *fakeRecorder) LogAuth(_ context.Context, userID uint, action string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, loginEvent{userID, action, success})
}

func setupTestRouter(t *testing.T) (*gin.Engine, *fakeRecorder) {
	t.Helper()

	db := setupTestDB(t)
	createTestUser(t, db, "S001", "111", entities.RoleStudent)
	cfg := testAuthConfig()
	svc := NewService(db, cfg)
	sm := setupSessionManager(t, db)
	mw := NewMiddleware(svc, sm)
	rec := &fakeRecorder{}
	limiter := NewLoginLimiter(cfg)
	t.Cleanup(limiter.Stop)

	ac := NewAuthController(svc, sm, limiter, t.TempDir(), rec)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(mw.Handler())
	ac.RegisterRoutes(router)
	router.GET("/my/borrows", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": GetUser(c).UID})
	})
	return router, rec
}

func postLogin(router *gin.Engine, body string, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	// Set-Cookie is written by SessionLoadSave, read it from the header map
	header := http.Header{}
	for _, v := range w.Header().Values("Set-Cookie") {
		header.Add("Set-Cookie", v)
	}
	resp := http.Response{Header: header}
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatalf("no session cookie in %v", w.Header().Values("Set-Cookie"))
	return nil
}

func TestIntegration_LoginLogoutFlow(t *testing.T) {
	router, rec := setupTestRouter(t)

	w := postLogin(router, "uid=S001&password=111&next=/my/borrows", "")
	if w.Code != http.StatusFound {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/my/borrows" {
		t.Errorf("expected redirect to /my/borrows, got %q", loc)
	}
	cookie := sessionCookie(t, w)

	req := httptest.NewRequest(http.MethodGet, "/my/borrows", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"uid":"S001"`) {
		t.Fatalf("protected route returned %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("logout returned %d to %q", w.Code, w.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodGet, "/my/borrows", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusFound {
		t.Errorf("expected redirect to login after logout, got %d", w.Code)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 2 || rec.events[0].action != "login" || rec.events[1].action != "logout" {
		t.Errorf("unexpected auth events: %+v", rec.events)
	}
}

func TestIntegration_LoginJSON(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postLogin(router, "uid=S001&password=111", "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"next":"/index"`) {
		t.Errorf("expected default landing path, got %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("response must not expose the password hash")
	}
}

func TestIntegration_LoginFailure(t *testing.T) {
	router, rec := setupTestRouter(t)

	w := postLogin(router, "uid=S001&password=wrong", "application/json")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid user id or password") {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	// Unknown ids give the same message
	w = postLogin(router, "uid=NOPE&password=111", "application/json")
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "Invalid user id or password") {
		t.Errorf("unknown id returned %d: %s", w.Code, w.Body.String())
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 2 || rec.events[0].success {
		t.Errorf("expected two failed login events, got %+v", rec.events)
	}
}

func TestIntegration_LoginRateLimited(t *testing.T) {
	router, _ := setupTestRouter(t)

	for i := 0; i < 3; i++ {
		postLogin(router, "uid=S001&password=wrong", "application/json")
	}
	w := postLogin(router, "uid=S001&password=111", "application/json")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}
