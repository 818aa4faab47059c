package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/dto"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/service"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/response"
)

// WeeklyHandler 周报模块 HTTP 处理器
type WeeklyHandler struct {
	weeklySvc service.WeeklyService
}

// NewWeeklyHandler 创建 WeeklyHandler
func NewWeeklyHandler(weeklySvc service.WeeklyService) *WeeklyHandler {
	return &WeeklyHandler{weeklySvc: weeklySvc}
}

// Submit 提交周报（同 周起点+负责人 整批替换）
// POST /api/v1/weekly-reports
func (h *WeeklyHandler) Submit(c *gin.Context) {
	var req dto.SubmitWeeklyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.weeklySvc.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleWeeklyError(c, err)
		return
	}

	response.OK(c, result)
}

// GetWeek 查看某一周的周报（week 参数可为该周内任意日期）
// GET /api/v1/weekly-reports?week=2026-08-24
func (h *WeeklyHandler) GetWeek(c *gin.Context) {
	week := c.Query("week")
	if week == "" {
		response.BadRequest(c, 10001, "week 参数不能为空")
		return
	}

	result, err := h.weeklySvc.GetWeek(c.Request.Context(), week)
	if err != nil {
		h.handleWeeklyError(c, err)
		return
	}

	response.OK(c, result)
}

// ListWeeks 已有周报的周列表（最近在前）
// GET /api/v1/weekly-reports/weeks
func (h *WeeklyHandler) ListWeeks(c *gin.Context) {
	result, err := h.weeklySvc.ListWeeks(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": result})
}

func (h *WeeklyHandler) handleWeeklyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWeeklyBadDate):
		response.BadRequest(c, 14001, "周报日期格式无效")
	case errors.Is(err, service.ErrWeeklyAssigneeRequired):
		response.BadRequest(c, 14002, "负责人不能为空")
	case errors.Is(err, service.ErrWeeklyEmptySubmission):
		response.BadRequest(c, 14003, "提交的条目内容全部为空")
	default:
		response.InternalError(c)
	}
}
