package middlewares

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pos-app/metrics"
	"github.com/yeremiapane/pos-app/utils"
)

var (
	corsAllowMethods = strings.Join([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}, ", ")
	corsAllowHeaders = "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With"
)

// CORSMiddlewares only lets cross-origin requests through from allowed origins.
// Requests without an Origin header (curl, mobile apps, same-origin navigation)
// and requests whose Origin is the server's own host (form posts from the
// rendered pages) are allowed. Everything else is rejected with 403.
func CORSMiddlewares(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && sameOrigin(origin, c.Request.Host) {
			c.Next()
			return
		}
		if origin != "" {
			if _, ok := allowed[origin]; !ok {
				metrics.CORSRejectionsTotal.Inc()
				err := fmt.Errorf("Not allowed by CORS: %s", origin)
				_ = c.Error(err)
				utils.AbortWithError(c, http.StatusForbidden, err)
				return
			}

			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func sameOrigin(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, host)
}
