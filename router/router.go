package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/pos-app/controllers"
	"github.com/yeremiapane/pos-app/kds"
	"github.com/yeremiapane/pos-app/middlewares"
	"github.com/yeremiapane/pos-app/models"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/session"
	"github.com/yeremiapane/pos-app/views"
	"gorm.io/gorm"
)

// HealthMessage is the body of GET / for non-browser clients.
const HealthMessage = "Hello from POS Server!"

// Dependencies is everything the HTTP layer needs. All of it is built by the
// caller and owned by it.
type Dependencies struct {
	DB       *gorm.DB
	Users    *services.UserService
	Payments *services.PaymentService
	Hub      *kds.Hub
	Registry *session.Registry
	Fetchers middlewares.FetcherFactory

	AllowedOrigins []string
	// RateLimit is the number of requests per minute allowed per IP. Zero disables it.
	RateLimit   int
	LoaderGrace time.Duration
}

func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse view templates: %w", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.AllowedOrigins))
	if deps.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(deps.RateLimit, 60).RateLimit())
	}

	userCtrl := controllers.NewUserController(deps.Users)
	orderCtrl := controllers.NewOrderController(deps.DB, deps.Hub)
	tableCtrl := controllers.NewTableController(deps.DB, deps.Hub)
	paymentCtrl := controllers.NewPaymentController(deps.Payments, deps.Hub)

	loginLimiter := middlewares.NewStrictRateLimiter(time.Second, 5)
	auth := middlewares.AuthMiddleware(deps.Users)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		user := api.Group("/user")
		user.POST("/register", loginLimiter, userCtrl.Register)
		user.POST("/login", loginLimiter, userCtrl.Login)
		user.POST("/logout", auth, userCtrl.Logout)
		user.GET("/", auth, userCtrl.GetProfile)

		order := api.Group("/order", auth)
		order.POST("/", orderCtrl.CreateOrder)
		order.GET("/", orderCtrl.GetAllOrders)
		order.GET("/:id", orderCtrl.GetOrderByID)
		order.PUT("/:id", orderCtrl.UpdateOrderStatus)

		table := api.Group("/table", auth)
		table.POST("/", middlewares.RequireRole(models.RoleAdmin, models.RoleManager), tableCtrl.CreateTable)
		table.GET("/", tableCtrl.GetAllTables)
		table.PUT("/:id", tableCtrl.UpdateTable)

		payment := api.Group("/payment", auth, middlewares.LogPaymentRequest())
		payment.POST("/", paymentCtrl.CreatePayment)
		payment.GET("/", paymentCtrl.GetAllPayments)
		payment.GET("/:id", paymentCtrl.GetPaymentByID)

		api.GET("/ws", auth, controllers.KDSHandler(deps.Hub))
	}

	v := &views.Views{
		DB:          deps.DB,
		Users:       deps.Users,
		Registry:    deps.Registry,
		Fetchers:    deps.Fetchers,
		LoaderGrace: deps.LoaderGrace,
	}
	v.Register(r, health, loginLimiter)

	return r, nil
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": HealthMessage})
}
