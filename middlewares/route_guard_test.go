package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/pos-app/session"
)

func TestEvaluateGuard(t *testing.T) {
	for path := range ProtectedPaths {
		assert.Equal(t, GuardDecision{State: Redirecting, Location: "/auth"}, EvaluateGuard(false, path), path)
		assert.Equal(t, GuardDecision{State: Guarded}, EvaluateGuard(true, path), path)
	}

	assert.Equal(t, Guarded, EvaluateGuard(false, "/auth").State)
	assert.Equal(t, Guarded, EvaluateGuard(false, "/no-such-page").State)
}

func TestGuardStateString(t *testing.T) {
	assert.Equal(t, "guarded", Guarded.String())
	assert.Equal(t, "redirecting", Redirecting.String())
}

func setupGuardRouter(state session.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := session.NewStore()
	if state.IsAuthenticated {
		store.Dispatch(session.LoginSucceeded{Profile: state.Profile, Token: state.Token})
	}
	r.Use(func(c *gin.Context) {
		c.Set(ContextClient, &session.Client{ID: "test", Store: store})
	})
	r.GET("/orders", RouteGuard(), func(c *gin.Context) {
		c.String(http.StatusOK, "Orders")
	})
	return r
}

func TestRouteGuardRedirectsUnauthenticated(t *testing.T) {
	r := setupGuardRouter(session.Session{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth", w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "Orders")
}

func TestRouteGuardRendersAuthenticated(t *testing.T) {
	r := setupGuardRouter(session.Session{
		IsAuthenticated: true,
		Profile:         &session.Profile{Name: "Admin", Role: "manager"},
		Token:           "t1",
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Orders", w.Body.String())
}

func TestRouteGuardWithoutClientRedirects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/dashboard", RouteGuard(), func(c *gin.Context) { c.String(http.StatusOK, "Dashboard") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth", w.Header().Get("Location"))
}
