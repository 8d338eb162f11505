package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fridge2food/internal/core/ai/cache"
	"fridge2food/internal/core/ai/gemini"
	"fridge2food/internal/core/ai/openrouter"
	"fridge2food/internal/core/ai/provider"
	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/pkg/common"

	"go.uber.org/zap"
)

// Request 一次模型呼叫
type Request struct {
	Phase     string           // 用於日誌，例如 "check" / "generate"
	Prompt    string           // 完整提示詞
	Schema    *provider.Schema // 宣告的輸出結構
	Cacheable bool             // 是否允許使用快取結果
}

// Response AI 回應
type Response struct {
	Content  string
	CacheHit bool
}

// Service AI 服務
type Service struct {
	config   *config.Config
	provider provider.Provider
	cache    cache.Cache
}

// NewProvider 依設定建立 AI 提供者
func NewProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.AI.Provider {
	case config.ProviderOpenRouter:
		return openrouter.NewClient(cfg.OpenRouter), nil
	case config.ProviderGemini:
		return gemini.NewClient(cfg.Gemini), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.AI.Provider)
	}
}

// NewService 創建 AI 服務，c 可為 nil
func NewService(cfg *config.Config, p provider.Provider, c cache.Cache) (*Service, error) {
	if p == nil {
		return nil, errors.New("ai provider is required")
	}
	return &Service{
		config:   cfg,
		provider: p,
		cache:    c,
	}, nil
}

// Configured 檢查目前提供者是否已設定 API Key
func (s *Service) Configured() bool {
	return strings.TrimSpace(s.config.ProviderAPIKey()) != ""
}

// Model 目前使用的模型
func (s *Service) Model() string {
	return s.provider.GetModel()
}

// ProcessRequest 統一對外方法
func (s *Service) ProcessRequest(ctx context.Context, req *Request) (*Response, error) {
	// 缺少金鑰時不發出任何網路請求
	if !s.Configured() {
		return nil, common.ErrConfiguration.Wrap(fmt.Errorf("missing API key for provider %q", s.config.AI.Provider))
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt is empty")
	}

	useCache := req.Cacheable && s.cache != nil
	if useCache {
		if val, err := s.cache.Get(ctx, prompt); err == nil && val != "" {
			return &Response{Content: val, CacheHit: true}, nil
		}
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, provider.UserPrompt(prompt, req.Schema))
	common.LogAICall(req.Phase, s.provider.GetModel(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	common.LogDebug("AI 回應內容",
		zap.String("phase", req.Phase),
		zap.Int("content_length", len(resp.Content)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.String("preview", common.Truncate(resp.Content, 200)),
	)

	if useCache {
		if err := s.cache.Set(ctx, prompt, resp.Content); err != nil {
			common.LogWarn("Failed to store AI response in cache", zap.Error(err))
		}
	}

	return &Response{Content: resp.Content}, nil
}

// Close 關閉提供者與快取
func (s *Service) Close() error {
	var errs []error
	if err := s.provider.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
