package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/debate-hub/internal/api"
	"github.com/wuwenbin0122/debate-hub/internal/backend"
	"github.com/wuwenbin0122/debate-hub/internal/session"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: failed to load: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: failed to initialise: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(cfg.Backend, backend.WithLogger(logger))

	sessions, err := session.NewManager(cfg.Session)
	if err != nil {
		logger.Fatal("failed to initialise session manager", zap.Error(err))
	}
	go sessions.Run(ctx, time.Minute)

	router, err := setupRouter(logger, client, sessions, cfg.Session)
	if err != nil {
		logger.Fatal("failed to set up router", zap.Error(err))
	}

	// No write timeout: event streams hold the connection open.
	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr), zap.String("backend", client.BaseURL()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}

func setupRouter(logger *zap.Logger, client *backend.Client, sessions *session.Manager, cookie utils.SessionConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(api.RequestLogger(logger), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"backend":   client.BaseURL(),
			"sessions":  sessions.Len(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if err := api.NewHandler(client, sessions, cookie, logger).RegisterRoutes(router); err != nil {
		return nil, err
	}

	return router, nil
}
