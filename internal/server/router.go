// Package server はルーティングと HTTP サーバーのライフサイクルを提供します。
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/carstore-api/internal/auth"
	"github.com/yourusername/carstore-api/internal/catalog"
	"github.com/yourusername/carstore-api/internal/logging"
	"github.com/yourusername/carstore-api/internal/session"
	"github.com/yourusername/carstore-api/internal/users"
)

const (
	serviceName    = "carstore-api"
	serviceVersion = "0.1.0"
)

// Deps はルーターが利用するコンポーネントです。
type Deps struct {
	Users   users.Store
	Issuer  *session.Issuer
	Catalog catalog.Lister
	Logger  *zap.Logger

	AllowedOrigins []string
}

// NewRouter はミドルウェアとルートを登録した Gin エンジンを返します。
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(logging.Middleware(logger), logging.Recovery(logger))

	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(deps.AllowedOrigins)))
	}

	setupRoutes(router, deps)
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
	}
	cfg.AllowCredentials = true
	cfg.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	return cfg
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func setupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handleHealth)

	authManager := auth.NewManager(deps.Users, deps.Issuer)
	gate := auth.NewGate(deps.Issuer)

	router.POST("/register", authManager.Register)
	router.POST("/login", authManager.Login)

	// 公開データ（認証不要）
	router.GET("/cars-data", catalog.ListHandler(deps.Catalog))

	private := router.Group("/api/data")
	private.Use(gate.RequireToken())
	{
		private.GET("/private", auth.PrivateHandler)
	}
}
