package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dong641/R-CG-Promotion-Dashboard/config"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/dto"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/jwt"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/redis"
)

var (
	ErrInvalidPassword      = errors.New("接入口令错误")
	ErrInvalidAdminPassword = errors.New("管理员口令错误")
)

// AuthService 口令门禁业务接口
//
// 两道静态共享口令（产品约定，不是凭据体系）：
//   - Login: 入口口令 → viewer 令牌（只读看板 + 周报）
//   - Elevate: 管理员口令 → admin 令牌（编辑后台）
//
// 口令比较用常量时间比较。需要管理员权限的核心操作只在该门禁
// 放行（admin 角色）之后可达，由路由层的 RoleAuth 强制。
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Elevate(ctx context.Context, req *dto.ElevateRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	cfg    *config.Config
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(cfg *config.Config, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) AuthService {
	return &authService{cfg: cfg, jwtMgr: jwtMgr, rdb: rdb, logger: logger}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if !secureEqual(req.Password, s.cfg.Auth.AccessPassword) {
		return nil, ErrInvalidPassword
	}
	return s.issue(jwt.RoleViewer)
}

func (s *authService) Elevate(ctx context.Context, req *dto.ElevateRequest) (*dto.TokenResponse, error) {
	if !secureEqual(req.Password, s.cfg.Auth.AdminPassword) {
		return nil, ErrInvalidAdminPassword
	}
	return s.issue(jwt.RoleAdmin)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		// Redis 降级运行时黑名单不可用，令牌只能等自然过期
		s.logger.Warn("Redis 不可用，登出未加入黑名单", zap.String("jti", jti))
		return nil
	}
	return s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt))
}

func (s *authService) issue(role string) (*dto.TokenResponse, error) {
	token, err := s.jwtMgr.GenerateAccessToken(role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		Role:        role,
		ExpiresIn:   int(s.cfg.Auth.AccessTokenTTL.Seconds()),
	}, nil
}

// secureEqual 常量时间字符串比较
func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
