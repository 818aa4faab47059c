package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/response"
)

// MustGetTokenInfo 从 Gin 上下文中安全提取令牌 jti 与过期时间（登出用）。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应，
// 调用方应在 ok=false 时直接 return。角色判定走 RoleAuth 中间件，不在这里做。
func MustGetTokenInfo(c *gin.Context) (string, time.Time, bool) {
	jti, exists := c.Get("token_jti")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	s, ok := jti.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	expiresAt, _ := c.Get("token_expires_at")
	t, _ := expiresAt.(time.Time)
	return s, t, true
}
