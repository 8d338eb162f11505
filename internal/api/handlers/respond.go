package handlers

import (
	"errors"
	"net/http"

	"fridge2food/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// ErrorBody API 錯誤回應
type ErrorBody struct {
	Error common.ErrorResponse `json:"error"`
}

// RespondError 將錯誤轉為 {"error": {code, message}}，debug 時附上原始錯誤
func RespondError(c *gin.Context, err error, debug bool) {
	ce := common.AsCustomError(err)
	status := ce.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorBody{Error: ce.Response(debug)})
}

// BindJSON 解析 JSON 請求體，失敗時直接回應 400
func BindJSON(c *gin.Context, v interface{}, debug bool) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(c, common.NewError("REQUEST_TOO_LARGE", "Request body too large", http.StatusRequestEntityTooLarge, err), debug)
			return false
		}
		RespondError(c, common.ErrInvalidRequest.Wrap(err), debug)
		return false
	}
	return true
}
