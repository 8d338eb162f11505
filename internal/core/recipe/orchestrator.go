package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fridge2food/internal/core/ai/service"
	"fridge2food/internal/infrastructure/config"
	"fridge2food/internal/pkg/common"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// 呼叫階段
const (
	PhaseCheck    = "check"
	PhaseGenerate = "generate"
)

// Completer 送出提示詞並取得模型輸出，*service.Service 實作此介面
type Completer interface {
	ProcessRequest(ctx context.Context, req *service.Request) (*service.Response, error)
}

// Orchestrator 食譜請求協調器
// --------------------------------------------------
// 1. 本地檢查請求格式
// 2. （可選）請模型判斷食材是否合理並偵測語言
// 3. 請模型生成食譜並檢查輸出結構
type Orchestrator struct {
	ai       Completer
	opts     Options
	validate *validator.Validate
}

// NewOrchestrator 創建協調器
func NewOrchestrator(ai Completer, opts Options) *Orchestrator {
	if opts.MinIngredientsLength <= 0 {
		opts.MinIngredientsLength = DefaultOptions().MinIngredientsLength
	}
	if opts.MaxServings <= 0 {
		opts.MaxServings = DefaultOptions().MaxServings
	}
	if _, ok := ParseLanguage(string(opts.DefaultLanguage)); !ok {
		opts.DefaultLanguage = LanguageEnglish
	}
	if opts.Currency == "" {
		opts.Currency = DefaultOptions().Currency
	}
	return &Orchestrator{
		ai:       ai,
		opts:     opts,
		validate: newValidator(),
	}
}

// OptionsFromConfig 從設定建立協調器參數
func OptionsFromConfig(cfg config.RecipeConfig) Options {
	lang, _ := ParseLanguage(cfg.DefaultLanguage)
	return Options{
		ValidateInput:        cfg.ValidateInput,
		MinIngredientsLength: cfg.MinIngredientsLength,
		MaxServings:          cfg.MaxServings,
		DefaultLanguage:      lang,
		Currency:             cfg.Currency,
	}
}

// Options 目前的設定
func (o *Orchestrator) Options() Options {
	return o.opts
}

// Run 執行完整流程並回傳帶標籤的結果
func (o *Orchestrator) Run(ctx context.Context, req RecipeRequest) Result {
	recipe, err := o.Generate(ctx, req)
	if err != nil {
		ce := common.AsCustomError(err)
		common.LogWarn("Recipe generation failed",
			zap.String("code", ce.Code),
			zap.Error(err),
		)
		return Result{Err: ce}
	}
	return Result{Recipe: recipe}
}

// Generate 根據食材生成食譜
func (o *Orchestrator) Generate(ctx context.Context, req RecipeRequest) (*common.GeneratedRecipe, error) {
	normalized, err := o.ValidateRequest(req)
	if err != nil {
		return nil, err
	}

	validated := false
	if o.opts.ValidateInput {
		check, err := o.Check(ctx, normalized.Ingredients)
		if err != nil {
			return nil, err
		}
		if !check.IsValid {
			common.LogInfo("Ingredients rejected by check",
				zap.String("ingredients", common.Truncate(normalized.Ingredients, 100)),
			)
			return nil, common.ErrInvalidInput.WithMessage("These don't look like ingredients. Please enter a list of food items.")
		}
		validated = true
		if normalized.Language == "" {
			if lang, ok := ParseLanguage(string(check.Language)); ok {
				normalized.Language = lang
			}
		}
	}
	if normalized.Language == "" {
		normalized.Language = o.opts.DefaultLanguage
	}

	resp, err := o.ai.ProcessRequest(ctx, &service.Request{
		Phase:  PhaseGenerate,
		Prompt: buildRecipePrompt(normalized, o.opts.Currency),
		Schema: recipeSchema(normalized.PriceRange != nil),
	})
	if err != nil {
		return nil, upstreamError(err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return nil, common.ErrGenerationFailed.Wrap(errors.New("empty AI response"))
	}

	recipe, err := o.parseRecipe(resp.Content)
	if err != nil {
		return nil, common.ErrMalformedOutput.Wrap(err)
	}
	if validated {
		ok := true
		recipe.IsValid = &ok
	}

	common.LogInfo("Recipe generated",
		zap.String("title", recipe.Title),
		zap.String("language", string(normalized.Language)),
		zap.Int("servings", normalized.Servings),
		zap.Int("ingredients", len(recipe.Ingredients)),
		zap.Int("steps", len(recipe.Steps)),
	)
	return recipe, nil
}

// Check 請模型判斷食材是否合理並偵測語言
func (o *Orchestrator) Check(ctx context.Context, ingredients string) (*CheckResult, error) {
	ingredients = strings.TrimSpace(ingredients)
	if ingredients == "" {
		return nil, invalidInput(common.NewValidationError("ingredients", "ingredients is required"))
	}

	resp, err := o.ai.ProcessRequest(ctx, &service.Request{
		Phase:     PhaseCheck,
		Prompt:    buildCheckPrompt(ingredients),
		Schema:    checkSchema(),
		Cacheable: true,
	})
	if err != nil {
		return nil, upstreamError(err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return nil, common.ErrGenerationFailed.Wrap(errors.New("empty AI response"))
	}

	result, err := parseCheck(resp.Content)
	if err != nil {
		return nil, common.ErrMalformedOutput.Wrap(err)
	}

	common.LogDebug("Ingredient check result",
		zap.Bool("is_valid", result.IsValid),
		zap.String("language", string(result.Language)),
	)
	return result, nil
}

// parseRecipe 解析並檢查食譜輸出
func (o *Orchestrator) parseRecipe(content string) (*common.GeneratedRecipe, error) {
	raw, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var result common.GeneratedRecipe
	if err := common.ParseJSON(raw, &result); err != nil {
		// 部分模型會省略鍵的雙引號
		result = common.GeneratedRecipe{}
		if err2 := common.ParseJSON(common.QuoteJSONKeys(raw), &result); err2 != nil {
			return nil, fmt.Errorf("failed to parse AI response: %w", err)
		}
	}

	// 清理空白，略過沒有名稱的食材與空步驟
	result.Title = strings.TrimSpace(result.Title)
	ingredients := make([]common.Ingredient, 0, len(result.Ingredients))
	for _, ing := range result.Ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		ing.Quantity = strings.TrimSpace(ing.Quantity)
		ing.Price = strings.TrimSpace(ing.Price)
		if ing.Name == "" {
			continue
		}
		ingredients = append(ingredients, ing)
	}
	result.Ingredients = ingredients

	steps := make([]string, 0, len(result.Steps))
	for _, step := range result.Steps {
		if step = strings.TrimSpace(step); step != "" {
			steps = append(steps, step)
		}
	}
	result.Steps = steps
	result.IsValid = nil

	if err := o.ValidateRecipe(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// checkPayload 食材檢查的原始輸出
type checkPayload struct {
	IsValid  *bool  `json:"isValid"`
	Language string `json:"language"`
}

// parseCheck 解析食材檢查輸出
func parseCheck(content string) (*CheckResult, error) {
	raw, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var payload checkPayload
	if err := common.ParseJSON(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if payload.IsValid == nil {
		return nil, errors.New("isValid is missing")
	}

	lang := LanguageUnknown
	if l, ok := ParseLanguage(payload.Language); ok {
		lang = l
	}
	return &CheckResult{IsValid: *payload.IsValid, Language: lang}, nil
}

// upstreamError 將外部服務錯誤轉為對應的錯誤類型，逾時回傳 504
func upstreamError(err error) error {
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return common.ErrGatewayTimeout.Wrap(err)
	}
	return common.ErrGenerationFailed.Wrap(err)
}
