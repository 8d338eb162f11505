package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fridge2food/internal/core/ai/provider"
	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client Google Gemini generateContent 客戶端
type Client struct {
	client *resty.Client
	config config.GeminiConfig
}

// Part 內容片段
type Part struct {
	Text string `json:"text"`
}

// Content 對話內容
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig 生成參數
type GenerationConfig struct {
	ResponseMimeType string                 `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]interface{} `json:"responseSchema,omitempty"`
	MaxOutputTokens  int                    `json:"maxOutputTokens,omitempty"`
	Temperature      float64                `json:"temperature,omitempty"`
}

// Request generateContent 請求
type Request struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate 候選回應
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// UsageMetadata 使用量
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Response generateContent 響應
type Response struct {
	Candidates    []Candidate   `json:"candidates"`
	UsageMetadata UsageMetadata `json:"usageMetadata"`
}

// Error API 錯誤
type Error struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient 創建 Gemini 客戶端
func NewClient(cfg config.GeminiConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &Client{
		client: client,
		config: cfg,
	}
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := &Request{
		GenerationConfig: &GenerationConfig{
			MaxOutputTokens: c.config.MaxTokens,
			Temperature:     c.config.Temperature,
		},
	}
	for _, m := range req.Messages {
		// Gemini 只接受 user / model 角色，system 訊息改放 systemInstruction
		switch m.Role {
		case "system":
			body.SystemInstruction = &Content{Parts: []Part{{Text: m.Content}}}
		case "assistant":
			body.Contents = append(body.Contents, Content{Role: "model", Parts: []Part{{Text: m.Content}}})
		default:
			body.Contents = append(body.Contents, Content{Role: "user", Parts: []Part{{Text: m.Content}}})
		}
	}
	if req.MaxTokens > 0 {
		body.GenerationConfig.MaxOutputTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		body.GenerationConfig.Temperature = req.Temperature
	}
	if req.Schema != nil {
		body.GenerationConfig.ResponseMimeType = "application/json"
		if req.Schema.Definition != nil {
			body.GenerationConfig.ResponseSchema = toResponseSchema(req.Schema.Definition)
		}
	}

	common.LogDebug("Sending request to Gemini",
		zap.String("model", c.config.Model),
		zap.Int("contents", len(body.Contents)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("model", c.config.Model).
		SetBody(body).
		Post("/models/{model}:generateContent")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Gemini: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		var apiErr Error
		if jsonErr := json.Unmarshal(resp.Body(), &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("Gemini API error (status %d): %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return nil, fmt.Errorf("Gemini API error (status %d): %s", resp.StatusCode(), common.Truncate(resp.String(), 200))
	}

	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty content in Gemini response (finish_reason: %s)", result.Candidates[0].FinishReason)
	}

	return &provider.Response{
		Content: content,
		Usage: provider.Usage{
			PromptTokens:     result.UsageMetadata.PromptTokenCount,
			CompletionTokens: result.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      result.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// toResponseSchema 複製 JSON Schema 並移除 Gemini 不接受的 additionalProperties
func toResponseSchema(def map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(def))
	for k, v := range def {
		if k == "additionalProperties" {
			continue
		}
		out[k] = toSchemaValue(v)
	}
	return out
}

func toSchemaValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return toResponseSchema(t)
	case []interface{}:
		items := make([]interface{}, len(t))
		for i, item := range t {
			items[i] = toSchemaValue(item)
		}
		return items
	default:
		return v
	}
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.config.Model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.config.Timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
