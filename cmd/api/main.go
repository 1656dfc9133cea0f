// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/carstore-api/internal/catalog"
	"github.com/yourusername/carstore-api/internal/config"
	"github.com/yourusername/carstore-api/internal/logging"
	"github.com/yourusername/carstore-api/internal/server"
	"github.com/yourusername/carstore-api/internal/session"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stores, err := openStores(startCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			logger.Warn("failed to close stores", zap.Error(err))
		}
	}()
	logger.Info("data stores connected",
		zap.String("database", cfg.MongoDatabase),
		zap.String("user_store", cfg.UserStore),
	)

	issuer, err := session.NewIssuer([]byte(cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("create session issuer: %w", err)
	}

	router := server.NewRouter(server.Deps{
		Users:          stores.users,
		Issuer:         issuer,
		Catalog:        catalog.NewMongoCatalog(stores.db),
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	return server.Run(ctx, ":"+cfg.Port, router, logger.With(zap.String("mode", cfg.GinMode)))
}
