package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal_care_backend/internal/cache"
	"meal_care_backend/internal/config"
	"meal_care_backend/internal/database"
	"meal_care_backend/internal/policy"
	"meal_care_backend/internal/router"
	"meal_care_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		utils.LogError(err, "Server terminated")
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	utils.LogInfo("Database initialized", map[string]interface{}{"host": cfg.DB.Host, "name": cfg.DB.Name})

	blocklist := cache.NewMemoryBlocklist()
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		blocklist = cache.NewRedisBlocklist(rdb)
		utils.LogInfo("Token blocklist backed by Redis", map[string]interface{}{"addr": cfg.RedisAddr})
	} else {
		utils.LogWarn("REDIS_ADDR not set, revoked tokens are kept in memory only")
	}

	pol, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		return err
	}

	deps := router.Dependencies{
		DB:                 db,
		JWT:                utils.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Blocklist:          blocklist,
		Policy:             pol,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	svc := router.NewServices(deps)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := svc.Auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	router.Setup(engine, deps, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "api": "/api/v1"})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		utils.LogInfo("Shutting down server", map[string]interface{}{"timeout": cfg.ShutdownTimeout.String()})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
