// Package views serves the server-rendered POS pages. Every page request runs
// through the client session middleware, and the protected pages also through
// the route guard.
package views

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pos-app/middlewares"
	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/session"
	"github.com/yeremiapane/pos-app/utils"
	"gorm.io/gorm"
)

//go:embed templates/*.html
var templateFS embed.FS

// loaderRefreshSeconds is how often the loader page polls for the finished fetch.
const loaderRefreshSeconds = 1

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"currency": utils.FormatCurrency,
	}).ParseFS(templateFS, "templates/*.html")
}

type Views struct {
	DB       *gorm.DB
	Users    *services.UserService
	Registry *session.Registry
	Fetchers middlewares.FetcherFactory
	// LoaderGrace is how long a request waits for a running session fetch
	// before the loader page is shown instead.
	LoaderGrace time.Duration
}

type page struct {
	Title      string
	Path       string
	ShowHeader bool
	Refresh    int
	Session    session.Session
	Error      string
	Data       interface{}
}

// MockSessions mounts every client with the demo manager session after delay.
func MockSessions(delay time.Duration) middlewares.FetcherFactory {
	return func(*gin.Context) session.Fetcher {
		return session.DemoFetcher(delay)
	}
}

// TokenSessions mounts clients from the access token cookie they arrive with.
func TokenSessions(users *services.UserService) middlewares.FetcherFactory {
	return func(c *gin.Context) session.Fetcher {
		token, _ := c.Cookie(middlewares.AccessTokenCookie)
		return services.TokenFetcher{Users: users, Token: token}
	}
}

// Register mounts the page routes. GET / is shared with health, which answers
// every request that does not ask for HTML. loginLimiter guards POST /auth.
func (v *Views) Register(r *gin.Engine, health gin.HandlerFunc, loginLimiter gin.HandlerFunc) {
	mount := middlewares.ClientSession(v.Registry, v.Fetchers, v.LoaderGrace, v.loading)
	guard := middlewares.RouteGuard()

	r.GET("/", htmlOnly(health), mount, guard, v.Home)
	r.GET("/orders", mount, guard, v.Orders)
	r.GET("/tables", mount, guard, v.Tables)
	r.GET("/menu", mount, guard, v.static("Menu", "menu.html"))
	r.GET("/dashboard", mount, guard, v.static("Dashboard", "dashboard.html"))

	r.GET("/auth", mount, v.AuthPage)
	r.POST("/auth", loginLimiter, mount, v.AuthSubmit)
	r.POST("/logout", mount, v.Logout)

	r.NoRoute(apiNotFound, mount, v.NotFound)
}

// htmlOnly answers with next unless the client accepts HTML, in which case the
// rest of the chain renders the page.
func htmlOnly(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.Contains(c.GetHeader("Accept"), "text/html") {
			c.Next()
			return
		}
		next(c)
		c.Abort()
	}
}

func apiNotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		utils.AbortWithError(c, http.StatusNotFound, errors.New("route not found"))
	}
}

func (v *Views) render(c *gin.Context, code int, name string, p page) {
	p.Path = c.Request.URL.Path
	p.Session = middlewares.CurrentSession(c)
	if p.Path != middlewares.LoginPath {
		p.ShowHeader = true
	}
	c.HTML(code, name, p)
}

func (v *Views) loading(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "loader.html", page{Title: "Loading", Refresh: loaderRefreshSeconds})
}

func (v *Views) static(title, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v.render(c, http.StatusOK, name, page{Title: title})
	}
}

func (v *Views) Home(c *gin.Context) {
	v.render(c, http.StatusOK, "home.html", page{Title: "Home"})
}

func (v *Views) Orders(c *gin.Context) {
	var orders []models.Order
	if err := v.DB.WithContext(c.Request.Context()).Order("created_at desc").Limit(50).Find(&orders).Error; err != nil {
		_ = c.Error(err)
		v.render(c, http.StatusInternalServerError, "orders.html", page{Title: "Orders", Error: "could not load orders"})
		return
	}
	v.render(c, http.StatusOK, "orders.html", page{Title: "Orders", Data: orders})
}

func (v *Views) Tables(c *gin.Context) {
	var tables []models.Table
	if err := v.DB.WithContext(c.Request.Context()).Order("table_no").Find(&tables).Error; err != nil {
		_ = c.Error(err)
		v.render(c, http.StatusInternalServerError, "tables.html", page{Title: "Tables", Error: "could not load tables"})
		return
	}
	v.render(c, http.StatusOK, "tables.html", page{Title: "Tables", Data: tables})
}

func (v *Views) NotFound(c *gin.Context) {
	v.render(c, http.StatusNotFound, "notfound.html", page{Title: "Not Found"})
}

// AuthPage shows the login form, or the register form with ?mode=register.
// Authenticated clients are sent home.
func (v *Views) AuthPage(c *gin.Context) {
	if middlewares.CurrentSession(c).IsAuthenticated {
		c.Redirect(http.StatusFound, "/")
		return
	}
	v.render(c, http.StatusOK, "auth.html", page{Title: "Login", Data: authMode(c.Query("mode"))})
}

// AuthSubmit logs the client in, registering the account first in register mode.
func (v *Views) AuthSubmit(c *gin.Context) {
	client := middlewares.CurrentClient(c)
	mode := authMode(c.PostForm("mode"))
	email := c.PostForm("email")
	password := c.PostForm("password")
	ctx := c.Request.Context()

	fail := func(code int, msg string) {
		v.render(c, code, "auth.html", page{Title: "Login", Error: msg, Data: mode})
	}

	if mode == "register" {
		role := c.DefaultPostForm("role", models.RoleWaiter)
		if role == models.RoleAdmin {
			fail(http.StatusBadRequest, "invalid role")
			return
		}
		_, err := v.Users.Register(ctx, services.RegisterInput{
			Name:     c.PostForm("name"),
			Email:    email,
			Password: password,
			Role:     role,
		})
		switch {
		case errors.Is(err, services.ErrUserExists):
			fail(http.StatusConflict, "an account with this email already exists")
			return
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrInvalidCredentials):
			fail(http.StatusBadRequest, "name, email, password and a valid role are required")
			return
		case err != nil:
			_ = c.Error(err)
			fail(http.StatusInternalServerError, "registration failed, please try again")
			return
		}
	}

	user, token, expiresAt, err := v.Users.Login(ctx, email, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		fail(http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		_ = c.Error(err)
		fail(http.StatusInternalServerError, "login failed, please try again")
		return
	}

	middlewares.SetAccessTokenCookie(c, token, expiresAt)
	client.Store.Dispatch(session.LoginSucceeded{
		Profile: &session.Profile{Name: user.Name, Role: user.Role},
		Token:   token,
	})
	utils.InfoLogger.WithFields(logrus.Fields{"client": client.ID, "role": user.Role}).Info("view client logged in")
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout revokes the client's token and resets its session.
func (v *Views) Logout(c *gin.Context) {
	client := middlewares.CurrentClient(c)
	token := client.Store.GetState().Token
	if err := v.Users.Logout(c.Request.Context(), token); err != nil {
		// the session is reset regardless; the token just stays valid until it expires
		utils.ErrorLogger.WithError(err).Error("revoke token on logout")
	}

	middlewares.ClearAccessTokenCookie(c)
	client.Store.Dispatch(session.LoggedOut{})
	c.Redirect(http.StatusSeeOther, middlewares.LoginPath)
}

func authMode(mode string) string {
	if mode == "register" {
		return mode
	}
	return "login"
}
