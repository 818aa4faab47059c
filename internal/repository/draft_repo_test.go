package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/model"
)

// Redis 未连接时（main 降级启动把 rdb 置 nil），草稿操作必须返回
// 明确错误而不是空指针崩溃。
func TestDraftRepo_NilClientUnavailable(t *testing.T) {
	repo := NewDraftRepo(nil, time.Hour)
	ctx := context.Background()

	draft := &model.Draft{
		Collection: model.CollectionPromotions,
		Table:      model.Table{Schema: model.PromotionSchema()},
	}

	if err := repo.Save(ctx, "s1", draft); !errors.Is(err, ErrDraftStoreUnavailable) {
		t.Errorf("Save: 期望 ErrDraftStoreUnavailable，实际: %v", err)
	}
	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, ErrDraftStoreUnavailable) {
		t.Errorf("Get: 期望 ErrDraftStoreUnavailable，实际: %v", err)
	}
	if err := repo.Delete(ctx, "s1"); !errors.Is(err, ErrDraftStoreUnavailable) {
		t.Errorf("Delete: 期望 ErrDraftStoreUnavailable，实际: %v", err)
	}
}
