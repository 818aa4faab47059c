package handler

import "github.com/dong641/R-CG-Promotion-Dashboard/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Editor    *EditorHandler
	Weekly    *WeeklyHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Dashboard: NewDashboardHandler(svc.Dashboard),
		Editor:    NewEditorHandler(svc.Editor),
		Weekly:    NewWeeklyHandler(svc.Weekly),
		Export:    NewExportHandler(svc.Export),
	}
}
