package repository

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/redis"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Table TableRepository
	Draft DraftRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB, rdb *redis.Client, draftTTL time.Duration, logger *zap.Logger) *Repository {
	return &Repository{
		Table: NewTableRepo(db, logger),
		Draft: NewDraftRepo(rdb, draftTTL),
	}
}
