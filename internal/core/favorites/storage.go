package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/infrastructure/database"
	"fridge2food/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRecordNotFound 收藏紀錄不存在
var ErrRecordNotFound = errors.New("favorites record not found")

// Storage 收藏紀錄的持久化儲存，值為 JSON 字串
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// NewStorage 依設定建立儲存後端，redis 後端需要傳入 client
func NewStorage(cfg config.FavoritesConfig, client *redis.Client) (Storage, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStorage(), nil
	case config.BackendRedis:
		if client == nil {
			return nil, errors.New("redis favorites backend requires a redis client")
		}
		return NewRedisStorage(client), nil
	case config.BackendSQLite, config.BackendPostgres:
		db, err := database.OpenGorm(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormStorage(db)
	default:
		return nil, fmt.Errorf("unsupported favorites backend %q", cfg.Backend)
	}
}

// MemoryStorage 記憶體儲存，重啟後資料消失
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]string
}

// NewMemoryStorage 創建記憶體儲存
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]string)}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.records[key]
	if !ok {
		return "", ErrRecordNotFound
	}
	return val, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = value
	return nil
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

// RedisStorage Redis 儲存，紀錄不設過期時間
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage 創建 Redis 儲存，client 由呼叫者管理
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrRecordNotFound
		}
		return "", fmt.Errorf("failed to read favorites: %w", err)
	}
	return val, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	return nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close Redis 連線由外部關閉
func (r *RedisStorage) Close() error {
	return nil
}

// FavoriteRecord 一個工作階段的收藏紀錄
type FavoriteRecord struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName 資料表名稱
func (FavoriteRecord) TableName() string {
	return "favorite_records"
}

// GormStorage SQL 儲存（sqlite / postgres）
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage 創建 SQL 儲存並建立資料表
func NewGormStorage(db *gorm.DB) (*GormStorage, error) {
	if err := db.AutoMigrate(&FavoriteRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate favorites table: %w", err)
	}
	return &GormStorage{db: db}, nil
}

func (g *GormStorage) Get(ctx context.Context, key string) (string, error) {
	var rec FavoriteRecord
	err := g.db.WithContext(ctx).Where(&FavoriteRecord{Key: key}).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRecordNotFound
		}
		return "", fmt.Errorf("failed to read favorites: %w", err)
	}
	return rec.Value, nil
}

func (g *GormStorage) Set(ctx context.Context, key, value string) error {
	rec := FavoriteRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	return nil
}

func (g *GormStorage) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (g *GormStorage) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		common.LogWarn("Failed to close favorites database", zap.Error(err))
		return err
	}
	return nil
}
