package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/debate-hub/internal/api"
	"github.com/wuwenbin0122/debate-hub/internal/db"
	"github.com/wuwenbin0122/debate-hub/internal/devbackend"
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

	cfg.Logging.ServiceName = cfg.Logging.ServiceName + "-devbackend"
	logger := utils.MustNewLogger(cfg.Logging)
	defer logger.Sync()

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg.DevBackend)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("store", cfg.DevBackend.Store), zap.Error(err))
	}
	defer closeStore()

	router := gin.New()
	router.Use(api.RequestLogger(logger), gin.Recovery())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"store":     cfg.DevBackend.Store,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	devbackend.NewServer(store, devbackend.CannedRebuttal, logger).RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.DevBackend.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("dev backend listening", zap.String("addr", server.Addr), zap.String("store", cfg.DevBackend.Store))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server crashed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("dev backend stopped cleanly")
}

func openStore(ctx context.Context, cfg utils.DevBackendConfig) (devbackend.Store, func(), error) {
	switch cfg.Store {
	case "postgres":
		postgres, err := db.NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Ping(ctx); err != nil {
			postgres.Close()
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx); err != nil {
			postgres.Close()
			return nil, nil, err
		}
		return devbackend.NewPostgresStore(postgres), postgres.Close, nil

	case "mongo":
		mongoStore, err := db.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		if err := mongoStore.EnsureCollections(ctx); err != nil {
			mongoStore.Close(context.Background())
			return nil, nil, err
		}
		closeFn := func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				log.Printf("mongo: close error: %v", err)
			}
		}
		return devbackend.NewMongoStore(mongoStore), closeFn, nil

	default:
		store := devbackend.NewMemoryStore()
		store.Seed()
		return store, func() {}, nil
	}
}
