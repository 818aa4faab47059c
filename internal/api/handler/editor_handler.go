package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/dto"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/repository"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/service"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/response"
)

// EditorHandler 编辑会话模块 HTTP 处理器
type EditorHandler struct {
	editorSvc service.EditorService
}

// NewEditorHandler 创建 EditorHandler
func NewEditorHandler(editorSvc service.EditorService) *EditorHandler {
	return &EditorHandler{editorSvc: editorSvc}
}

// OpenSession 打开编辑会话（可携带过滤选择）
// POST /api/v1/editor/sessions
func (h *EditorHandler) OpenSession(c *gin.Context) {
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.editorSvc.OpenSession(c.Request.Context(), &req)
	if err != nil {
		h.handleEditorError(c, err)
		return
	}

	response.Created(c, result)
}

// GetSession 获取编辑会话快照
// GET /api/v1/editor/sessions/:id
func (h *EditorHandler) GetSession(c *gin.Context) {
	result, err := h.editorSvc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEditorError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateCell 编辑单元格
// PUT /api/v1/editor/sessions/:id/cells
func (h *EditorHandler) UpdateCell(c *gin.Context) {
	var req dto.UpdateCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.editorSvc.UpdateCell(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleEditorError(c, err)
		return
	}

	response.OK(c, result)
}

// AddRow 新增行
// POST /api/v1/editor/sessions/:id/rows
func (h *EditorHandler) AddRow(c *gin.Context) {
	var req dto.AddRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.editorSvc.AddRow(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleEditorError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteRow 删除行
// DELETE /api/v1/editor/sessions/:id/rows/:rowId
func (h *EditorHandler) DeleteRow(c *gin.Context) {
	result, err := h.editorSvc.DeleteRow(c.Request.Context(), c.Param("id"), c.Param("rowId"))
	if err != nil {
		h.handleEditorError(c, err)
		return
	}

	response.OK(c, result)
}

// AddColumn 新增列（草稿态，保存时全表生效）
// POST /api/v1/editor/sessions/:id/columns
func (h *EditorHandler) AddColumn(c *gin.Context) {
	var req dto.AddColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.editorSvc.AddColumn(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleEditorError(c, err)
		return
	}

	response.OK(c, result)
}

// RemoveColumn 删除列
// DELETE /api/v1/editor/sessions/:id/columns/:name
func (h *EditorHandler) RemoveColumn(c *gin.Context) {
	result, err := h.editorSvc.RemoveColumn(c.Request.Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		h.handleEditorError(c, err)
		return
	}

	response.OK(c, result)
}

// ImportCSV 导入 CSV 整体替换草稿
// POST /api/v1/editor/sessions/:id/import
func (h *EditorHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}
	defer file.Close()

	result, err := h.editorSvc.ImportCSV(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		h.handleEditorError(c, err)
		return
	}

	response.OK(c, result)
}

// Save 保存草稿到已提交副本
// POST /api/v1/editor/sessions/:id/save
func (h *EditorHandler) Save(c *gin.Context) {
	result, err := h.editorSvc.Save(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEditorError(c, err)
		return
	}

	response.OK(c, result)
}

// Discard 丢弃会话草稿
// DELETE /api/v1/editor/sessions/:id
func (h *EditorHandler) Discard(c *gin.Context) {
	if err := h.editorSvc.Discard(c.Request.Context(), c.Param("id")); err != nil {
		h.handleEditorError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *EditorHandler) handleEditorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 13001, "编辑会话不存在或已过期")
	case errors.Is(err, service.ErrRowNotFound):
		response.NotFound(c, 13002, "指定行不存在")
	case errors.Is(err, service.ErrFieldNotFound), errors.Is(err, service.ErrColumnNotFound):
		response.NotFound(c, 13003, "指定列不存在")
	case errors.Is(err, service.ErrRowOpFiltered):
		response.Conflict(c, 13004, "过滤模式下禁止增删行")
	case errors.Is(err, service.ErrImportFiltered):
		response.Conflict(c, 13005, "过滤模式下禁止导入")
	case errors.Is(err, service.ErrNameRequired):
		response.BadRequest(c, 13006, "活动名称不能为空")
	case errors.Is(err, service.ErrColumnRequired):
		response.BadRequest(c, 13007, "列名不能为空")
	case errors.Is(err, service.ErrColumnExists):
		response.Conflict(c, 13008, "同名列已存在")
	case errors.Is(err, service.ErrColumnProtected):
		response.Conflict(c, 13009, "受保护列不可删除")
	case errors.Is(err, service.ErrCSVEmpty), errors.Is(err, service.ErrCSVNoName), errors.Is(err, service.ErrCSVMalformed):
		response.BadRequest(c, 13010, err.Error())
	case errors.Is(err, service.ErrSavePersistFail):
		response.Error(c, http.StatusServiceUnavailable, 13011, "保存失败，草稿已保留，请重试")
	case errors.Is(err, repository.ErrDraftStoreUnavailable):
		response.Error(c, http.StatusServiceUnavailable, 13012, "编辑功能暂不可用（草稿存储未连接）")
	default:
		response.InternalError(c)
	}
}
