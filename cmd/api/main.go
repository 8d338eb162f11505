package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fridge2food/internal/api"
	"fridge2food/internal/core/ai/cache"
	"fridge2food/internal/core/ai/service"
	"fridge2food/internal/core/favorites"
	"fridge2food/internal/core/recipe"
	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/infrastructure/database"
	"fridge2food/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.ProviderModel()),
		zap.String("key_masked", config.MaskAPIKey(cfg.ProviderAPIKey())),
		zap.String("favorites_backend", cfg.Favorites.Backend),
	)
	if cfg.ProviderAPIKey() == "" {
		common.LogWarn("AI provider API key is not set, recipe generation will fail until it is configured",
			zap.String("provider", cfg.AI.Provider),
		)
	}

	// Redis 只在收藏或快取使用時連線
	var redisClient *redis.Client
	if cfg.Favorites.Backend == config.BackendRedis || (cfg.Cache.Enabled && cfg.Cache.Backend == config.BackendRedis) {
		redisClient, err = database.NewRedisClient(cfg.Redis)
		if err != nil {
			common.LogFatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// 初始化快取
	promptCache, err := cache.New(cfg.Cache, redisClient)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}

	// 初始化 AI 服務
	provider, err := service.NewProvider(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize AI provider", zap.Error(err))
	}
	aiService, err := service.NewService(cfg, provider, promptCache)
	if err != nil {
		common.LogFatal("Failed to initialize AI service", zap.Error(err))
	}
	defer aiService.Close()

	orchestrator := recipe.NewOrchestrator(aiService, recipe.OptionsFromConfig(cfg.Recipe))

	// 初始化收藏
	storage, err := favorites.NewStorage(cfg.Favorites, redisClient)
	if err != nil {
		common.LogFatal("Failed to initialize favorites storage", zap.Error(err))
	}
	favoritesManager := favorites.NewManager(storage, cfg.Favorites)
	defer favoritesManager.Shutdown()

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Orchestrator: orchestrator,
		Favorites:    favoritesManager,
		Provider:     aiService,
		Cache:        promptCache,
	})
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	serverErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		common.LogError("Failed to start server", zap.Error(err))
		return
	}

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
