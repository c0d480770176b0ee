package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/pos-app/database"
	"github.com/yeremiapane/pos-app/kds"
	"github.com/yeremiapane/pos-app/middlewares"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	DB     *gorm.DB
	Users  *services.UserService
	Router *gin.Engine
}

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

// setupTestEnv wires every controller the way the router does, minus the
// global middleware.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	utils.SilenceLoggers()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	users := services.NewUserService(db, services.NewTokenManager("test-secret", time.Hour), services.NewMemoryBlacklist())
	hub := kds.NewHub()

	userCtrl := NewUserController(users)
	orderCtrl := NewOrderController(db, hub)
	tableCtrl := NewTableController(db, hub)
	paymentCtrl := NewPaymentController(services.NewPaymentService(db), hub)
	auth := middlewares.AuthMiddleware(users)

	r := gin.New()
	r.POST("/api/user/register", userCtrl.Register)
	r.POST("/api/user/login", userCtrl.Login)
	r.POST("/api/user/logout", auth, userCtrl.Logout)
	r.GET("/api/user/", auth, userCtrl.GetProfile)

	r.POST("/api/order/", auth, orderCtrl.CreateOrder)
	r.GET("/api/order/", auth, orderCtrl.GetAllOrders)
	r.GET("/api/order/:id", auth, orderCtrl.GetOrderByID)
	r.PUT("/api/order/:id", auth, orderCtrl.UpdateOrderStatus)

	r.POST("/api/table/", auth, tableCtrl.CreateTable)
	r.GET("/api/table/", auth, tableCtrl.GetAllTables)
	r.PUT("/api/table/:id", auth, tableCtrl.UpdateTable)

	r.POST("/api/payment/", auth, paymentCtrl.CreatePayment)
	r.GET("/api/payment/", auth, paymentCtrl.GetAllPayments)
	r.GET("/api/payment/:id", auth, paymentCtrl.GetPaymentByID)

	return &testEnv{DB: db, Users: users, Router: r}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

// login registers a user with role and returns a bearer token for it.
func (e *testEnv) login(t *testing.T, role string) string {
	t.Helper()
	email := uuid.NewString() + "@example.com"
	w, _ := e.do(t, http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "Rita", "email": email, "password": "password123", "role": role,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := e.do(t, http.MethodPost, "/api/user/login", "", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}
