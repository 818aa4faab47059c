package dto

// ── 认证模块 DTO ──

// LoginRequest 入口口令登录请求
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// ElevateRequest 管理员口令升级请求
type ElevateRequest struct {
	Password string `json:"password" binding:"required"`
}

// TokenResponse 令牌响应
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresIn   int    `json:"expires_in"` // 秒
}
