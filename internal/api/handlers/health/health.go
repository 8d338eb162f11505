package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProviderStatus AI 提供者狀態
type ProviderStatus interface {
	Configured() bool
	Model() string
}

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsReporter 可回報執行統計的元件
type StatsReporter interface {
	GetStats() map[string]interface{}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Stats     map[string]interface{} `json:"stats,omitempty"`
}

// ReadinessResponse 就緒檢查響應
type ReadinessResponse struct {
	Status    string          `json:"status"`
	Checks    map[string]bool `json:"checks"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Favorites string          `json:"favorites_backend"`
}

// Handler 健康檢查處理器
type Handler struct {
	config    *config.Config
	provider  ProviderStatus
	favorites Pinger
	stats     map[string]StatsReporter
}

// NewHandler 創建健康檢查處理器，stats 以名稱列出要回報統計的元件
func NewHandler(cfg *config.Config, provider ProviderStatus, favorites Pinger, stats map[string]StatsReporter) *Handler {
	return &Handler{
		config:    cfg,
		provider:  provider,
		favorites: favorites,
		stats:     stats,
	}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.config.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if len(h.stats) > 0 {
		response.Stats = make(map[string]interface{}, len(h.stats))
		for name, r := range h.stats {
			response.Stats[name] = r.GetStats()
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：收藏儲存可連線且 AI 提供者已設定
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]bool{
		"provider_configured": h.provider != nil && h.provider.Configured(),
		"favorites_storage":   true,
	}
	if h.favorites != nil {
		if err := h.favorites.Ping(ctx); err != nil {
			common.LogWarn("Favorites storage not ready", zap.Error(err))
			checks["favorites_storage"] = false
		}
	}

	resp := ReadinessResponse{
		Status:    "ready",
		Checks:    checks,
		Provider:  h.config.AI.Provider,
		Favorites: h.config.Favorites.Backend,
	}
	if h.provider != nil {
		resp.Model = h.provider.Model()
	}

	status := http.StatusOK
	for _, ok := range checks {
		if !ok {
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, resp)
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
