package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/service"
	"github.com/dong641/R-CG-Promotion-Dashboard/pkg/response"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportPromotionsCSV 导出推广总表为 CSV
// GET /api/v1/export/promotions.csv
func (h *ExportHandler) ExportPromotionsCSV(c *gin.Context) {
	h.serve(c, contentTypeCSV, h.exportSvc.ExportPromotionsCSV)
}

// ExportPromotionsExcel 导出推广总表为 Excel
// GET /api/v1/export/promotions.xlsx
func (h *ExportHandler) ExportPromotionsExcel(c *gin.Context) {
	h.serve(c, contentTypeXLSX, h.exportSvc.ExportPromotionsExcel)
}

// ExportWeeklyExcel 导出全部周报为 Excel
// GET /api/v1/export/weekly.xlsx
func (h *ExportHandler) ExportWeeklyExcel(c *gin.Context) {
	h.serve(c, contentTypeXLSX, h.exportSvc.ExportWeeklyExcel)
}

// ExportCalendar 导出推广档期日历订阅
// GET /api/v1/export/calendar.ics
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	h.serve(c, contentTypeICS, h.exportSvc.ExportCalendar)
}

// serve 统一的文件下载出口（设置下载响应头后写入内容）
func (h *ExportHandler) serve(c *gin.Context, contentType string, fn func(context.Context) (*bytes.Buffer, string, error)) {
	buf, filename, err := fn(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
