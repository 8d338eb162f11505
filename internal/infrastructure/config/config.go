package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 支援的 AI 提供者
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// 支援的收藏儲存後端
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config 應用配置
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	AI         AIConfig         `mapstructure:"ai"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Recipe     RecipeConfig     `mapstructure:"recipe"`
	Favorites  FavoritesConfig  `mapstructure:"favorites"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	LogLevel   string           `mapstructure:"log_level"`
	LogDir     string           `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodySize    int64         `mapstructure:"max_body_size"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`
}

// AIConfig AI 配置
type AIConfig struct {
	Provider string `mapstructure:"provider"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	BaseURL          string        `mapstructure:"base_url"`
	Model            string        `mapstructure:"model"`
	MaxTokens        int           `mapstructure:"max_tokens"`
	Temperature      float64       `mapstructure:"temperature"`
	Timeout          time.Duration `mapstructure:"timeout"`
	StructuredOutput bool          `mapstructure:"structured_output"`
}

// GeminiConfig Google Gemini 配置
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// RecipeConfig 食譜生成設定
type RecipeConfig struct {
	ValidateInput        bool   `mapstructure:"validate_input"`
	MinIngredientsLength int    `mapstructure:"min_ingredients_length"`
	MaxServings          int    `mapstructure:"max_servings"`
	DefaultLanguage      string `mapstructure:"default_language"`
	Currency             string `mapstructure:"currency"`
}

// FavoritesConfig 收藏設定
type FavoritesConfig struct {
	Backend         string        `mapstructure:"backend"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	PostgresDSN     string        `mapstructure:"postgres_dsn"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	ToastLimit      int           `mapstructure:"toast_limit"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時直接使用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	v.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	v.BindEnv("openrouter.base_url", "OPENROUTER_BASE_URL")
	v.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY", "GOOGLE_GENAI_API_KEY")
	v.BindEnv("gemini.model", "GEMINI_MODEL")
	v.BindEnv("gemini.base_url", "GEMINI_BASE_URL")
	v.BindEnv("recipe.validate_input", "RECIPE_VALIDATE_INPUT")
	v.BindEnv("recipe.currency", "RECIPE_CURRENCY")
	v.BindEnv("favorites.backend", "FAVORITES_BACKEND")
	v.BindEnv("favorites.sqlite_path", "FAVORITES_SQLITE_PATH")
	v.BindEnv("favorites.postgres_dsn", "DATABASE_URL")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("cache.enabled", "CACHE_ENABLED")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("log_dir", "LOG_DIR")
	v.BindEnv("server.port", "PORT")

	// 設定設定檔名稱和路徑
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	config.Favorites.Backend = strings.ToLower(strings.TrimSpace(config.Favorites.Backend))
	config.Cache.Backend = strings.ToLower(strings.TrimSpace(config.Cache.Backend))

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// ProviderAPIKey 回傳目前 AI 提供者的 API Key
func (c *Config) ProviderAPIKey() string {
	if c.AI.Provider == ProviderGemini {
		return c.Gemini.APIKey
	}
	return c.OpenRouter.APIKey
}

// ProviderModel 回傳目前 AI 提供者的模型名稱
func (c *Config) ProviderModel() string {
	if c.AI.Provider == ProviderGemini {
		return c.Gemini.Model
	}
	return c.OpenRouter.Model
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "fridge2food")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "130s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.max_body_size", 1<<20)
	v.SetDefault("server.allow_origins", []string{"*"})

	// AI 設定
	v.SetDefault("ai.provider", ProviderOpenRouter)

	// OpenRouter 設定
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "google/gemini-2.0-flash-001")
	v.SetDefault("openrouter.max_tokens", 2048)
	v.SetDefault("openrouter.temperature", 0.7)
	v.SetDefault("openrouter.timeout", "60s")
	v.SetDefault("openrouter.structured_output", true)

	// Gemini 設定
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.max_tokens", 2048)
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.timeout", "60s")

	// 食譜設定
	v.SetDefault("recipe.validate_input", true)
	v.SetDefault("recipe.min_ingredients_length", 10)
	v.SetDefault("recipe.max_servings", 50)
	v.SetDefault("recipe.default_language", "English")
	v.SetDefault("recipe.currency", "USD")

	// 收藏設定
	v.SetDefault("favorites.backend", BackendSQLite)
	v.SetDefault("favorites.key_prefix", "fridge2food-favorites")
	v.SetDefault("favorites.sqlite_path", "data/favorites.db")
	v.SetDefault("favorites.session_ttl", "30m")
	v.SetDefault("favorites.cleanup_interval", "5m")
	v.SetDefault("favorites.toast_limit", 1)

	// Redis 設定
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// 快取設定（只快取食材檢查結果）
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.MaxBodySize <= 0 {
		return fmt.Errorf("invalid server max body size")
	}

	switch config.AI.Provider {
	case ProviderOpenRouter, ProviderGemini:
	default:
		return fmt.Errorf("unsupported ai provider %q", config.AI.Provider)
	}

	// 驗證食譜設定
	if config.Recipe.MinIngredientsLength < 1 {
		return fmt.Errorf("invalid recipe min ingredients length")
	}
	if config.Recipe.MaxServings < 1 {
		return fmt.Errorf("invalid recipe max servings")
	}

	// 驗證收藏設定
	switch config.Favorites.Backend {
	case BackendMemory, BackendRedis:
	case BackendSQLite:
		if config.Favorites.SQLitePath == "" {
			return fmt.Errorf("favorites sqlite path is required")
		}
	case BackendPostgres:
		if config.Favorites.PostgresDSN == "" {
			return fmt.Errorf("favorites postgres dsn is required")
		}
	default:
		return fmt.Errorf("unsupported favorites backend %q", config.Favorites.Backend)
	}
	if config.Favorites.KeyPrefix == "" {
		return fmt.Errorf("favorites key prefix is required")
	}
	if config.Favorites.ToastLimit < 1 {
		return fmt.Errorf("invalid favorites toast limit")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.Backend != BackendMemory && config.Cache.Backend != BackendRedis {
			return fmt.Errorf("unsupported cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證限流設定
	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
