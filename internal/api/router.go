package api

import (
	"errors"
	"time"

	favoritesHandler "fridge2food/internal/api/handlers/favorites"
	"fridge2food/internal/api/handlers/health"
	recipeHandler "fridge2food/internal/api/handlers/recipe"
	"fridge2food/internal/api/middleware"
	"fridge2food/internal/core/ai/cache"
	favoritesCore "fridge2food/internal/core/favorites"
	recipeCore "fridge2food/internal/core/recipe"
	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Orchestrator *recipeCore.Orchestrator
	Favorites    *favoritesCore.Manager
	Provider     health.ProviderStatus
	Cache        cache.Cache // 可為 nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Orchestrator == nil {
		return nil, errors.New("recipe orchestrator is required")
	}
	if deps.Favorites == nil {
		return nil, errors.New("favorites manager is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	origins := cfg.Server.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", middleware.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", middleware.SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制與超時
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodySize))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	stats := map[string]health.StatsReporter{"favorites": deps.Favorites}
	if reporter, ok := deps.Cache.(health.StatsReporter); ok {
		stats["cache"] = reporter
	}
	healthHandler := health.NewHandler(cfg, deps.Provider, deps.Favorites, stats)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Session(middleware.SessionMaxAge, cfg.App.Env == "production"))
	{
		recipes := recipeHandler.NewHandler(deps.Orchestrator, cfg.App.Debug)

		recipeGroup := api.Group("/recipe")
		if cfg.RateLimit.Enabled {
			recipeGroup.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}
		{
			recipeGroup.POST("/generate", recipes.HandleGenerate)
			recipeGroup.POST("/check", recipes.HandleCheck)
			recipeGroup.GET("/languages", recipes.HandleLanguages)
		}

		favorites := favoritesHandler.NewHandler(deps.Favorites, cfg.App.Debug)

		favoritesGroup := api.Group("/favorites")
		{
			favoritesGroup.GET("", favorites.HandleList)
			favoritesGroup.GET("/toasts", favorites.HandleToasts)
			favoritesGroup.POST("/toggle", favorites.HandleToggle)
			favoritesGroup.GET("/:id", favorites.HandleStatus)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("provider", cfg.AI.Provider),
		zap.String("favorites_backend", cfg.Favorites.Backend),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodySize),
	)

	return router, nil
}
