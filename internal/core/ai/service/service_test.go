package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fridge2food/internal/core/ai/cache"
	"fridge2food/internal/core/ai/gemini"
	"fridge2food/internal/core/ai/openrouter"
	"fridge2food/internal/core/ai/provider"
	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls   int
	content string
	err     error
	lastReq *provider.Request
}

func (p *countingProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	p.calls++
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &provider.Response{Content: p.content}, nil
}

func (p *countingProvider) GetModel() string          { return "fake-model" }
func (p *countingProvider) GetTimeout() time.Duration { return time.Second }
func (p *countingProvider) Close() error              { return nil }

func testConfig(apiKey string) *config.Config {
	return &config.Config{
		AI:         config.AIConfig{Provider: config.ProviderOpenRouter},
		OpenRouter: config.OpenRouterConfig{APIKey: apiKey, Model: "fake-model"},
	}
}

func TestProcessRequest_MissingKeyMakesNoCall(t *testing.T) {
	p := &countingProvider{content: "{}"}
	svc, err := NewService(testConfig(""), p, nil)
	require.NoError(t, err)

	assert.False(t, svc.Configured())
	_, err = svc.ProcessRequest(context.Background(), &Request{Phase: "generate", Prompt: "hi"})

	assert.True(t, errors.Is(err, common.ErrConfiguration))
	assert.Zero(t, p.calls)
}

func TestProcessRequest(t *testing.T) {
	p := &countingProvider{content: `{"ok":true}`}
	svc, err := NewService(testConfig("sk-test"), p, nil)
	require.NoError(t, err)

	schema := &provider.Schema{Name: "x"}
	resp, err := svc.ProcessRequest(context.Background(), &Request{Phase: "generate", Prompt: "  hi  ", Schema: schema})
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, resp.Content)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, "hi", p.lastReq.Messages[0].Content)
	assert.Same(t, schema, p.lastReq.Schema)
	assert.Equal(t, "fake-model", svc.Model())

	_, err = svc.ProcessRequest(context.Background(), &Request{Prompt: "   "})
	assert.Error(t, err)
	assert.Equal(t, 1, p.calls)
}

func TestProcessRequest_ProviderError(t *testing.T) {
	p := &countingProvider{err: errors.New("status 500")}
	svc, _ := NewService(testConfig("sk-test"), p, nil)

	_, err := svc.ProcessRequest(context.Background(), &Request{Phase: "generate", Prompt: "hi"})
	assert.EqualError(t, err, "status 500")
}

func TestProcessRequest_CacheOnlyForCacheable(t *testing.T) {
	c := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()

	p := &countingProvider{content: `{"isValid":true,"language":"English"}`}
	svc, _ := NewService(testConfig("sk-test"), p, c)

	for i := 0; i < 2; i++ {
		_, err := svc.ProcessRequest(context.Background(), &Request{Phase: "check", Prompt: "eggs", Cacheable: true})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, p.calls)

	resp, err := svc.ProcessRequest(context.Background(), &Request{Phase: "check", Prompt: "eggs", Cacheable: true})
	require.NoError(t, err)
	assert.True(t, resp.CacheHit)

	for i := 0; i < 2; i++ {
		_, err := svc.ProcessRequest(context.Background(), &Request{Phase: "generate", Prompt: "eggs"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, p.calls)
}

func TestNewProvider(t *testing.T) {
	cfg := testConfig("sk-test")
	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &openrouter.Client{}, p)

	cfg.AI.Provider = config.ProviderGemini
	p, err = NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &gemini.Client{}, p)

	cfg.AI.Provider = "unknown"
	_, err = NewProvider(cfg)
	assert.Error(t, err)

	_, err = NewService(cfg, nil, nil)
	assert.Error(t, err)
}
