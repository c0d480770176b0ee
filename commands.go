package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/pos-app/config"
	"github.com/yeremiapane/pos-app/database"
	"github.com/yeremiapane/pos-app/kds"
	"github.com/yeremiapane/pos-app/middlewares"
	"github.com/yeremiapane/pos-app/router"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/session"
	"github.com/yeremiapane/pos-app/utils"
	"github.com/yeremiapane/pos-app/views"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		utils.InfoLogger.Info("migration completed")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account from ADMIN_* settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		users, cleanup, err := newUserService(ctx, cfg, db)
		if err != nil {
			return err
		}
		defer cleanup()

		created, err := database.SeedAdmin(ctx, users, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return err
		}
		utils.InfoLogger.WithFields(logrus.Fields{
			"email":   cfg.Admin.Email,
			"created": created,
		}).Info("admin seed finished")
		return nil
	},
}

// bootstrap loads configuration, sets up logging and opens the database.
func bootstrap(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	utils.InitLogger(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	db, err := config.InitDB(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		utils.ErrorLogger.WithError(err).Error("close database")
	}
}

// newUserService wires the token manager and the blacklist backend. Redis is
// used when REDIS_ADDR is set.
func newUserService(ctx context.Context, cfg *config.Config, db *gorm.DB) (*services.UserService, func(), error) {
	secret, fallback := cfg.Secret()
	if fallback {
		utils.ErrorLogger.Error("JWT_SECRET is not set, using the development secret")
	}
	tokens := services.NewTokenManager(secret, cfg.JWTTTL)

	if cfg.Redis.Addr != "" {
		client, err := services.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		utils.InfoLogger.WithField("addr", cfg.Redis.Addr).Info("token blacklist backed by redis")
		cleanup := func() {
			if err := client.Close(); err != nil {
				utils.ErrorLogger.WithError(err).Error("close redis")
			}
		}
		return services.NewUserService(db, tokens, services.NewRedisBlacklist(client)), cleanup, nil
	}

	blacklist := services.NewMemoryBlacklist()
	cleanupCtx, cancel := context.WithCancel(ctx)
	blacklist.StartCleanup(cleanupCtx, time.Hour)
	return services.NewUserService(db, tokens, blacklist), cancel, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	users, cleanup, err := newUserService(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer cleanup()

	hub := kds.NewHub()
	go hub.Run(ctx)
	registry := session.NewRegistry(session.RegistryOptions{
		MaxIdle:  cfg.Session.MaxIdle,
		Observer: router.SessionObserver(hub),
		OnLoaded: router.SessionLoadObserver,
	})
	registry.Start()
	defer registry.Stop()

	var fetchers middlewares.FetcherFactory
	switch cfg.Session.Source {
	case "mock":
		fetchers = views.MockSessions(cfg.Session.FetchDelay)
	default:
		fetchers = views.TokenSessions(users)
	}

	r, err := router.SetupRouter(router.Dependencies{
		DB:             db,
		Users:          users,
		Payments:       services.NewPaymentService(db),
		Hub:            hub,
		Registry:       registry,
		Fetchers:       fetchers,
		AllowedOrigins: cfg.AllowedOrigins(),
		RateLimit:      cfg.RateLimit,
		LoaderGrace:    cfg.Session.LoaderGrace,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.WithFields(logrus.Fields{
			"port":           cfg.Port,
			"session_source": cfg.Session.Source,
			"origins":        cfg.AllowedOrigins(),
		}).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	utils.InfoLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
