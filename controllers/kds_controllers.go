package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/pos-app/kds"
	"github.com/yeremiapane/pos-app/middlewares"
	"github.com/yeremiapane/pos-app/utils"
)

// KDSHandler upgrades an authenticated request to a realtime websocket.
// Origins were already vetted by the CORS middleware.
func KDSHandler(hub *kds.Hub) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return func(c *gin.Context) {
		role := c.GetString(middlewares.ContextRole)
		if role == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.ErrorLogger.WithError(err).Error("kds: upgrade failed")
			return
		}

		hub.Register(ws, role)
		defer hub.Unregister(ws)

		// drain until the client goes away
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}
}
