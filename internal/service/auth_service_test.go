package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dong641/R-CG-Promotion-Dashboard/config"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/dto"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *jwt.Manager) {
	cfg := &config.Config{}
	cfg.Auth = config.AuthConfig{
		AccessPassword: "viewer-pass",
		AdminPassword:  "admin-pass",
		JWTSecret:      "test-secret-key-for-unit-tests",
		AccessTokenTTL: time.Hour,
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, jwtMgr, nil, zap.NewNop())
	return svc, jwtMgr
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, jwtMgr := setupTestAuthService()

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Password: "viewer-pass"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.Role != jwt.RoleViewer {
		t.Errorf("期望Role=viewer，实际=%s", resp.Role)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("期望ExpiresIn=3600，实际=%d", resp.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("签发的令牌应可解析: %v", err)
	}
	if claims.Role != jwt.RoleViewer {
		t.Errorf("令牌角色期望viewer，实际=%s", claims.Role)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Password: "wrong"})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("期望 ErrInvalidPassword，实际: %v", err)
	}
}

func TestAuthService_Login_AdminPasswordNotAccepted(t *testing.T) {
	svc, _ := setupTestAuthService()

	// 两道口令各管各的：管理员口令不能走入口登录
	_, err := svc.Login(context.Background(), &dto.LoginRequest{Password: "admin-pass"})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("期望 ErrInvalidPassword，实际: %v", err)
	}
}

// ── Elevate 测试 ──

func TestAuthService_Elevate_Success(t *testing.T) {
	svc, jwtMgr := setupTestAuthService()

	resp, err := svc.Elevate(context.Background(), &dto.ElevateRequest{Password: "admin-pass"})
	if err != nil {
		t.Fatalf("Elevate 应成功: %v", err)
	}
	if resp.Role != jwt.RoleAdmin {
		t.Errorf("期望Role=admin，实际=%s", resp.Role)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("签发的令牌应可解析: %v", err)
	}
	if claims.Role != jwt.RoleAdmin {
		t.Errorf("令牌角色期望admin，实际=%s", claims.Role)
	}
}

func TestAuthService_Elevate_WrongPassword(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Elevate(context.Background(), &dto.ElevateRequest{Password: "viewer-pass"})
	if !errors.Is(err, ErrInvalidAdminPassword) {
		t.Errorf("期望 ErrInvalidAdminPassword，实际: %v", err)
	}
}

// ── Logout 测试 ──

func TestAuthService_Logout_NoRedisDegrades(t *testing.T) {
	svc, _ := setupTestAuthService()

	// Redis 降级运行：登出不报错，令牌等自然过期
	if err := svc.Logout(context.Background(), "some-jti", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("无 Redis 时登出应降级成功: %v", err)
	}
}
