package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/dto"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/service"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 入口口令登录（viewer 角色）
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			response.Error(c, http.StatusUnauthorized, 11001, "接入口令错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Elevate 管理员口令升级（admin 角色）
// POST /api/v1/auth/elevate
func (h *AuthHandler) Elevate(c *gin.Context) {
	var req dto.ElevateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Elevate(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAdminPassword) {
			response.Error(c, http.StatusUnauthorized, 11002, "管理员口令错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 登出（令牌加入黑名单）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, expiresAt, ok := MustGetTokenInfo(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, expiresAt); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
