package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dong641/R-CG-Promotion-Dashboard/config"
)

// ErrKeyNotFound 键不存在
var ErrKeyNotFound = errors.New("redis: 键不存在")

// Client Redis 客户端封装
// 用途：编辑会话草稿缓冲、登出 Token 黑名单、登录限流窗口
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 编辑会话草稿缓冲 ──

const draftPrefix = "editor:draft:"

// SetDraft 写入草稿（JSON 字节），TTL 到期自动回收
func (c *Client) SetDraft(ctx context.Context, sessionID string, data []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, draftPrefix+sessionID, data, ttl).Err()
}

// GetDraft 读取草稿；不存在返回 ErrKeyNotFound
func (c *Client) GetDraft(ctx context.Context, sessionID string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, draftPrefix+sessionID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrKeyNotFound
	}
	return b, err
}

// DeleteDraft 删除草稿
func (c *Client) DeleteDraft(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, draftPrefix+sessionID).Err()
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流 ──

// CheckRateLimit 固定窗口限流：窗口内第 limit+1 次返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
