package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pos-app/session"
)

// ClientCookie identifies a mounted view client. Dropping it is a full reload.
const ClientCookie = "pos_client"

// ContextClient is the gin context key holding the current *session.Client.
const ContextClient = "pos_client"

// FetcherFactory builds the session fetcher for a client mounting on request c.
type FetcherFactory func(c *gin.Context) session.Fetcher

// ClientSession resolves the client behind the request, mounting a new one (and
// starting its session fetch) on first sight. While the fetch is still running
// after grace, onLoading renders instead of the rest of the chain.
func ClientSession(reg *session.Registry, newFetcher FetcherFactory, grace time.Duration, onLoading gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(ClientCookie)
		client, ok := reg.Get(id)
		if !ok {
			client = reg.Create(newFetcher(c))
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     ClientCookie,
				Value:    client.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(ContextClient, client)

		if client.Loader.IsLoading() && grace > 0 {
			timer := time.NewTimer(grace)
			select {
			case <-client.Loader.Done():
			case <-timer.C:
			case <-c.Request.Context().Done():
			}
			timer.Stop()
		}

		if client.Loader.IsLoading() {
			onLoading(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentClient returns the client resolved by ClientSession, or nil.
func CurrentClient(c *gin.Context) *session.Client {
	v, ok := c.Get(ContextClient)
	if !ok {
		return nil
	}
	client, _ := v.(*session.Client)
	return client
}

// CurrentSession is the snapshot of the current client's store. Requests without
// a client are unauthenticated.
func CurrentSession(c *gin.Context) session.Session {
	client := CurrentClient(c)
	if client == nil {
		return session.Session{}
	}
	return client.Store.GetState()
}
