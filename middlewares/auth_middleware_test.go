package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/pos-app/database"
	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestUsers(t *testing.T) *services.UserService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return services.NewUserService(db, services.NewTokenManager("test-secret", time.Hour), services.NewMemoryBlacklist())
}

func loginToken(t *testing.T, users *services.UserService, role string) string {
	t.Helper()
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"
	_, err := users.Register(ctx, services.RegisterInput{Name: "Rita", Email: email, Password: "password123", Role: role})
	require.NoError(t, err)
	_, token, _, err := users.Login(ctx, email, "password123")
	require.NoError(t, err)
	return token
}

func setupAuthRouter(users *services.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(users), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetUint(ContextUserID),
			"role":    c.GetString(ContextRole),
		})
	})
	r.GET("/managers", AuthMiddleware(users), RequireRole(models.RoleManager), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddlewareTokenSources(t *testing.T) {
	users := newTestUsers(t)
	token := loginToken(t, users, models.RoleWaiter)
	r := setupAuthRouter(users)

	tests := []struct {
		name  string
		setup func(req *http.Request)
		code  int
	}{
		{"bearer header", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token}) }, http.StatusOK},
		{"query", func(req *http.Request) { req.URL.RawQuery = "token=" + token }, http.StatusOK},
		{"missing", func(req *http.Request) {}, http.StatusUnauthorized},
		{"malformed header", func(req *http.Request) { req.Header.Set("Authorization", token) }, http.StatusUnauthorized},
		{"garbage token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	users := newTestUsers(t)
	token := loginToken(t, users, models.RoleWaiter)
	require.NoError(t, users.Logout(context.Background(), token))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	setupAuthRouter(users).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	users := newTestUsers(t)
	r := setupAuthRouter(users)

	for role, code := range map[string]int{
		models.RoleManager: http.StatusOK,
		models.RoleWaiter:  http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/managers", nil)
		req.Header.Set("Authorization", "Bearer "+loginToken(t, users, role))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, code, w.Code, role)
	}
}
