package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/dto"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/service"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/response"
)

// DashboardHandler 看板模块 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// GetDashboard 无过滤的看板全景
// GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	result, err := h.dashboardSvc.Query(c.Request.Context(), &dto.DashboardQueryRequest{})
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// QueryDashboard 带联动过滤选择的看板查询
// POST /api/v1/dashboard/query
func (h *DashboardHandler) QueryDashboard(c *gin.Context) {
	var req dto.DashboardQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.dashboardSvc.Query(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
