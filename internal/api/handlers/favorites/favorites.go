package favorites

import (
	"net/http"

	"fridge2food/internal/api/handlers"
	"fridge2food/internal/api/middleware"
	favoritesCore "fridge2food/internal/core/favorites"
	"fridge2food/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ListResponse 收藏清單
type ListResponse struct {
	Favorites     []common.Recipe `json:"favorites"`
	Count         int             `json:"count"`
	PendingToasts int             `json:"pending_toasts"`
}

// StatusResponse 單一食譜的收藏狀態
type StatusResponse struct {
	ID         string `json:"id"`
	IsFavorite bool   `json:"is_favorite"`
}

// ToggleResponse 切換收藏後的狀態
type ToggleResponse struct {
	IsFavorite bool            `json:"is_favorite"`
	Favorites  []common.Recipe `json:"favorites"`
	Toasts     []common.Notice `json:"toasts"`
}

// ToastsResponse 待顯示的提示
type ToastsResponse struct {
	Toasts []common.Notice `json:"toasts"`
}

// Handler 收藏處理程序
type Handler struct {
	manager  *favoritesCore.Manager
	validate *validator.Validate
	debug    bool
}

// NewHandler 創建收藏處理程序
func NewHandler(manager *favoritesCore.Manager, debug bool) *Handler {
	return &Handler{
		manager:  manager,
		validate: validator.New(),
		debug:    debug,
	}
}

func (h *Handler) session(c *gin.Context) (*favoritesCore.Session, bool) {
	sess, err := h.manager.Open(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return nil, false
	}
	return sess, true
}

// HandleList 列出收藏
func (h *Handler) HandleList(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	items := sess.Store.List()
	c.JSON(http.StatusOK, ListResponse{
		Favorites:     items,
		Count:         len(items),
		PendingToasts: sess.Toasts.Pending(),
	})
}

// HandleStatus 查詢單一食譜是否已收藏
func (h *Handler) HandleStatus(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id := c.Param("id")
	c.JSON(http.StatusOK, StatusResponse{ID: id, IsFavorite: sess.Store.IsFavorite(id)})
}

// HandleToggle 切換收藏狀態，寫入失敗只以提示呈現
func (h *Handler) HandleToggle(c *gin.Context) {
	var recipe common.Recipe
	if !handlers.BindJSON(c, &recipe, h.debug) {
		return
	}
	if err := h.validate.Struct(recipe); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.WithMessage("A complete recipe with an id is required").Wrap(err), h.debug)
		return
	}

	sess, ok := h.session(c)
	if !ok {
		return
	}

	isFavorite := sess.Store.Toggle(c.Request.Context(), recipe)
	common.LogInfo("Favorite toggled",
		zap.String("session_id", sess.ID),
		zap.String("recipe_id", recipe.ID),
		zap.Bool("is_favorite", isFavorite),
		zap.Int("count", sess.Store.Count()),
	)

	c.JSON(http.StatusOK, ToggleResponse{
		IsFavorite: isFavorite,
		Favorites:  sess.Store.List(),
		Toasts:     sess.Toasts.Drain(),
	})
}

// HandleToasts 取出待顯示的提示
func (h *Handler) HandleToasts(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ToastsResponse{Toasts: sess.Toasts.Drain()})
}
