package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pos-app/metrics"
)

// LoginPath is where unauthenticated clients are sent.
const LoginPath = "/auth"

// ProtectedPaths are the views only an authenticated client may see.
var ProtectedPaths = map[string]bool{
	"/":          true,
	"/orders":    true,
	"/tables":    true,
	"/menu":      true,
	"/dashboard": true,
}

type GuardState int

const (
	Guarded GuardState = iota
	Redirecting
)

func (s GuardState) String() string {
	if s == Redirecting {
		return "redirecting"
	}
	return "guarded"
}

// GuardDecision is the outcome of one guard evaluation. Location is set only
// when redirecting.
type GuardDecision struct {
	State    GuardState
	Location string
}

// EvaluateGuard decides whether path may render. Unprotected paths always
// render. The requested path is not remembered across the redirect.
func EvaluateGuard(isAuthenticated bool, path string) GuardDecision {
	if isAuthenticated || !ProtectedPaths[path] {
		return GuardDecision{State: Guarded}
	}
	return GuardDecision{State: Redirecting, Location: LoginPath}
}

// RouteGuard evaluates the guard on every navigation. It must run after
// ClientSession.
func RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := EvaluateGuard(CurrentSession(c).IsAuthenticated, c.Request.URL.Path)
		metrics.RouteGuardDecisionsTotal.WithLabelValues(decision.State.String()).Inc()

		if decision.State == Redirecting {
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
			return
		}
		c.Next()
	}
}
