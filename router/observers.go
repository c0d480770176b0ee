package router

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pos-app/kds"
	"github.com/yeremiapane/pos-app/metrics"
	"github.com/yeremiapane/pos-app/session"
	"github.com/yeremiapane/pos-app/utils"
)

// SessionObserver records every client session transition and announces it to
// realtime clients. The announcement is queued on the hub, so dispatch never
// waits on a websocket. Tokens never leave the server.
func SessionObserver(hub *kds.Hub) session.Observer {
	return func(clientID string, prev, next session.Session) {
		event := session.LoggedOut{}.EventName()
		role := ""
		if next.IsAuthenticated {
			event = session.LoginSucceeded{}.EventName()
			role = next.Profile.Role
		}
		metrics.SessionTransitionsTotal.WithLabelValues(event).Inc()
		utils.InfoLogger.WithFields(logrus.Fields{
			"client": clientID,
			"event":  event,
			"role":   role,
		}).Info("session transition")

		hub.Publish(kds.Message{
			Event: kds.EventSessionUpdate,
			Data: map[string]interface{}{
				"authenticated": next.IsAuthenticated,
				"role":          role,
			},
		})
	}
}

// SessionLoadObserver records how each client's session fetch ended.
func SessionLoadObserver(clientID string, err error) {
	fields := logrus.Fields{"client": clientID}
	switch {
	case err == nil:
		metrics.SessionLoadsTotal.WithLabelValues("authenticated").Inc()
	case errors.Is(err, context.Canceled):
		metrics.SessionLoadsTotal.WithLabelValues("cancelled").Inc()
	case errors.Is(err, session.ErrNoSession):
		metrics.SessionLoadsTotal.WithLabelValues("unauthenticated").Inc()
		utils.InfoLogger.WithFields(fields).Debug("client mounted without credentials")
	default:
		metrics.SessionLoadsTotal.WithLabelValues("unauthenticated").Inc()
		utils.ErrorLogger.WithFields(fields).WithError(err).Error("session fetch failed")
	}
}
