package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/model"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/redis"
)

var (
	// ErrDraftNotFound 草稿不存在或已过期
	ErrDraftNotFound = errors.New("编辑会话不存在或已过期")
	// ErrDraftStoreUnavailable Redis 未连接时编辑会话整体不可用
	// （服务其余部分降级运行，见 main 的启动策略）
	ErrDraftStoreUnavailable = errors.New("草稿存储不可用")
)

// DraftRepository 编辑会话草稿的存取。
// 草稿是工作副本，不是持久状态：TTL 到期即回收，丢了只影响未保存的编辑。
type DraftRepository interface {
	Get(ctx context.Context, sessionID string) (*model.Draft, error)
	Save(ctx context.Context, sessionID string, d *model.Draft) error
	Delete(ctx context.Context, sessionID string) error
}

// redisDraftRepo DraftRepository 的 Redis 实现（JSON 序列化 + TTL）
type redisDraftRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDraftRepo 创建 DraftRepository 实例
func NewDraftRepo(rdb *redis.Client, ttl time.Duration) DraftRepository {
	return &redisDraftRepo{rdb: rdb, ttl: ttl}
}

func (r *redisDraftRepo) Get(ctx context.Context, sessionID string) (*model.Draft, error) {
	if r.rdb == nil {
		return nil, ErrDraftStoreUnavailable
	}
	b, err := r.rdb.GetDraft(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("读取草稿失败: %w", err)
	}
	var d model.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("解析草稿失败: %w", err)
	}
	return &d, nil
}

func (r *redisDraftRepo) Save(ctx context.Context, sessionID string, d *model.Draft) error {
	if r.rdb == nil {
		return ErrDraftStoreUnavailable
	}
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("序列化草稿失败: %w", err)
	}
	if err := r.rdb.SetDraft(ctx, sessionID, b, r.ttl); err != nil {
		return fmt.Errorf("写入草稿失败: %w", err)
	}
	return nil
}

func (r *redisDraftRepo) Delete(ctx context.Context, sessionID string) error {
	if r.rdb == nil {
		return ErrDraftStoreUnavailable
	}
	return r.rdb.DeleteDraft(ctx, sessionID)
}
