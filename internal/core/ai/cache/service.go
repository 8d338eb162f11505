package cache

import (
	"context"
	"errors"
	"fmt"

	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Service Redis 緩存服務
type Service struct {
	client *redis.Client
	config config.CacheConfig
}

// NewService 創建 Redis 緩存服務，client 由呼叫者管理
func NewService(client *redis.Client, cfg config.CacheConfig) *Service {
	return &Service{
		client: client,
		config: cfg,
	}
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, prompt string) (string, error) {
	val, err := s.client.Get(ctx, s.generateKey(prompt)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			common.LogCacheMiss("redis")
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	common.LogCacheHit("redis")
	return val, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, prompt, value string) error {
	if err := s.client.Set(ctx, s.generateKey(prompt), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close Redis 連線由外部關閉
func (s *Service) Close() error {
	return nil
}

// generateKey 生成緩存鍵
func (s *Service) generateKey(prompt string) string {
	return "fridge2food:ai:" + generateKey(prompt)
}

// New 依設定建立快取，未啟用時回傳 nil
func New(cfg config.CacheConfig, client *redis.Client) (Cache, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}
	if cfg.Backend == config.BackendRedis {
		if client == nil {
			return nil, fmt.Errorf("redis cache backend requires a redis client")
		}
		return NewService(client, cfg), nil
	}
	return NewManager(cfg), nil
}
