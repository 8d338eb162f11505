package middleware

import (
	"net/http"
	"time"

	"fridge2food/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// 工作階段識別
const (
	SessionCookie = "fridge2food_session"
	SessionHeader = "X-Session-ID"

	sessionContextKey = "session_id"
)

// SessionMaxAge cookie 有效期，收藏紀錄以工作階段識別碼為鍵，需長期保留
const SessionMaxAge = 365 * 24 * time.Hour

// Session 工作階段中間件
// 依序讀取 X-Session-ID 標頭與 cookie，沒有合法的識別碼時產生新的
func Session(maxAge time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				id = cookie
			}
		}
		if !common.IsUUID(id) {
			id = common.GenerateUUID()
		}

		c.Set(sessionContextKey, id)
		c.Header(SessionHeader, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, int(maxAge.Seconds()), "/", "", secure, true)

		c.Next()
	}
}

// SessionID 取得目前請求的工作階段識別碼
func SessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}
