package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harentsoaR/mindcare-admin-api/internal/bootstrap"
	"github.com/harentsoaR/mindcare-admin-api/internal/config"
	"github.com/harentsoaR/mindcare-admin-api/internal/handlers"
	"github.com/harentsoaR/mindcare-admin-api/internal/journal"
	"github.com/harentsoaR/mindcare-admin-api/internal/middleware"
	"github.com/harentsoaR/mindcare-admin-api/internal/models"
	"github.com/harentsoaR/mindcare-admin-api/internal/services"
	"github.com/harentsoaR/mindcare-admin-api/internal/utils"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := bootstrap.NewLogger(cfg)
	logger.Info("Starting admin API",
		slog.String("environment", cfg.Server.Environment),
		slog.String("store", cfg.Store.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- External stores ---
	stores, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			logger.Error("close stores", slog.Any("error", err))
		}
	}()

	// --- Initialize Services ---
	push, err := services.NewPushServiceFromFile(ctx, cfg.Push.CredentialsPath, services.PushConfig{
		Endpoint:       cfg.Push.Endpoint,
		AndroidChannel: cfg.Push.AndroidChannel,
		Timeout:        cfg.Push.Timeout,
	}, stores.Users, logger)
	if err != nil {
		log.Fatalf("Failed to initialize push service: %v", err)
	}

	var deletionOpts []services.DeletionOption
	if cfg.Redis.Addr != "" {
		j, err := journal.NewRedisJournal(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect deletion journal: %v", err)
		}
		defer j.Close()
		deletionOpts = append(deletionOpts, services.WithJournal(j))
		logger.Info("Deletion journal enabled", slog.String("redis", cfg.Redis.Addr))
	}
	deletion := services.NewDeletionService(stores.Identities, stores.Users, logger, deletionOpts...)
	deletion.StartSweeper(ctx, cfg.Redis.SweepInterval)

	jwt := utils.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// --- Initialize Handlers with stores and services ---
	h := &handlers.Handler{
		Users:      stores.Users,
		Sessions:   stores.Sessions,
		Admins:     stores.Admins,
		Identities: stores.Identities,
		Moderation: services.NewModerationService(stores.Users, push, logger),
		Deletion:   deletion,
		Push:       push,
		Stats:      services.NewStatsService(stores.Users, stores.Sessions),
		Tokens:     jwt,
		Logger:     logger,
	}

	// --- Gin Router ---
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Metrics(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	loginLimiter := middleware.NewIPRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst)
	h.Routes(r,
		middleware.RateLimit(loginLimiter),
		middleware.AuthMiddleware(jwt),
		middleware.RequireRole(models.RoleAdmin),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	go func() {
		logger.Info("Server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", slog.Any("error", err))
	}
	logger.Info("Server stopped gracefully")
}
