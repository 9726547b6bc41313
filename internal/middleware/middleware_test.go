package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/01moynul/relique/internal/auth"
	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/obs"
	"github.com/01moynul/relique/internal/store"
	"github.com/gin-gonic/gin"
)

const testSecret = "middleware-secret"

type fakeUsers struct {
	users       map[string]*models.User
	maintenance bool
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) MaintenanceMode(context.Context) (bool, error) {
	return f.maintenance, nil
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{
		"client": {ID: "client", Role: models.RoleClient, Status: models.UserStatusActive},
		"admin":  {ID: "admin", Role: models.RoleAdmin, Status: models.UserStatusActive},
		"banned": {ID: "banned", Role: models.RoleClient, Status: models.UserStatusSuspended},
	}}
}

func init() {
	gin.SetMode(gin.TestMode)
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, userID, models.RoleClient, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return "Bearer " + tok
}

func newRouter(users UserSource) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/public", OptionalAuthMiddleware(testSecret, users), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	private := r.Group("/", AuthMiddleware(testSecret, users, obs.Discard()))
	private.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c)+":"+UserRole(c))
	})
	private.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r http.Handler, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	users := newFakeUsers()
	r := newRouter(users)

	tests := []struct {
		name   string
		path   string
		authz  string
		status int
		body   string
	}{
		{"no header", "/me", "", http.StatusUnauthorized, ""},
		{"not bearer", "/me", "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", "/me", "Bearer nope", http.StatusUnauthorized, ""},
		{"unknown user", "/me", tokenFor(t, "ghost"), http.StatusUnauthorized, ""},
		{"suspended", "/me", tokenFor(t, "banned"), http.StatusForbidden, ""},
		{"client", "/me", tokenFor(t, "client"), http.StatusOK, "client:client"},
		{"role from database", "/me", tokenFor(t, "admin"), http.StatusOK, "admin:admin"},
		{"client on admin route", "/admin", tokenFor(t, "client"), http.StatusForbidden, ""},
		{"admin on admin route", "/admin", tokenFor(t, "admin"), http.StatusOK, ""},
		{"optional anonymous", "/public", "", http.StatusOK, ""},
		{"optional bad token", "/public", "Bearer nope", http.StatusOK, ""},
		{"optional with token", "/public", tokenFor(t, "client"), http.StatusOK, "client"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.path, tt.authz)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, w.Body.String())
			}
		})
	}
}

func TestMaintenanceMode(t *testing.T) {
	users := newFakeUsers()
	users.maintenance = true
	r := newRouter(users)

	if w := do(r, "/me", tokenFor(t, "client")); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for client during maintenance, got %d", w.Code)
	}
	if w := do(r, "/me", tokenFor(t, "admin")); w.Code != http.StatusOK {
		t.Errorf("expected admin to pass during maintenance, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := newRouter(newFakeUsers())

	w := do(r, "/public", "")
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("expected request id echoed, got %q", got)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("expected origin allowed, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("expected foreign origin served without CORS headers, got %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
}
