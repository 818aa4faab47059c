package service

import (
	"go.uber.org/zap"

	"github.com/dong641/R-CG-Promotion-Dashboard/config"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/repository"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/jwt"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	Dashboard DashboardService
	Editor    EditorService
	Weekly    WeeklyService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:      NewAuthService(cfg, jwtMgr, rdb, logger),
		Dashboard: NewDashboardService(cfg, repo, logger),
		Editor:    NewEditorService(repo, logger),
		Weekly:    NewWeeklyService(repo, logger),
		Export:    NewExportService(repo, logger),
	}
}
