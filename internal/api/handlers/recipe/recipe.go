package recipe

import (
	"net/http"

	"fridge2food/internal/api/handlers"
	"fridge2food/internal/api/middleware"
	recipeCore "fridge2food/internal/core/recipe"
	"fridge2food/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateResponse 食譜生成成功的回應
type GenerateResponse struct {
	Recipe common.Recipe `json:"recipe"`
}

// CheckRequest 食材檢查請求
type CheckRequest struct {
	Ingredients string `json:"ingredients"`
}

// LanguagesResponse 支援的語言
type LanguagesResponse struct {
	Languages []recipeCore.Language `json:"languages"`
	Default   recipeCore.Language   `json:"default"`
}

// Handler 食譜處理程序
type Handler struct {
	orchestrator *recipeCore.Orchestrator
	debug        bool
}

// NewHandler 創建新的食譜處理程序
func NewHandler(orchestrator *recipeCore.Orchestrator, debug bool) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		debug:        debug,
	}
}

// HandleGenerate 依食材生成食譜，成功時指定新的 id
func (h *Handler) HandleGenerate(c *gin.Context) {
	requestID := requestid.Get(c)

	var req recipeCore.RecipeRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestID),
		zap.String("session_id", middleware.SessionID(c)),
		zap.Int("servings", req.Servings),
		zap.String("language", string(req.Language)),
		zap.Bool("price_range", req.PriceRange != nil),
	)

	result := h.orchestrator.Run(c.Request.Context(), req)
	if result.Err != nil {
		handlers.RespondError(c, result.Err, h.debug)
		return
	}

	recipe := common.NewRecipe(common.GenerateUUID(), *result.Recipe)
	common.LogInfo("食譜生成完成",
		zap.String("request_id", requestID),
		zap.String("recipe_id", recipe.ID),
		zap.String("title", recipe.Title),
	)
	c.JSON(http.StatusOK, GenerateResponse{Recipe: recipe})
}

// HandleCheck 只執行食材檢查
func (h *Handler) HandleCheck(c *gin.Context) {
	var req CheckRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}

	result, err := h.orchestrator.Check(c.Request.Context(), req.Ingredients)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleLanguages 列出支援的語言
func (h *Handler) HandleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, LanguagesResponse{
		Languages: recipeCore.SupportedLanguages,
		Default:   h.orchestrator.Options().DefaultLanguage,
	})
}
