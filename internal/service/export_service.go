package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/model"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/repository"
)

// ── 导出模块业务错误 ──

// ErrExportGenerateFail 导出文件生成失败
var ErrExportGenerateFail = errors.New("生成导出文件失败")

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出只读已提交数据，与编辑草稿完全隔离
//   - CSV 带 UTF-8 BOM（Excel 直接双击打开不乱码）
//   - Excel 以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
//   - 日历订阅导出为 iCalendar（VEVENT 全天事件，起止取推广档期）
type ExportService interface {
	// ExportPromotionsCSV 导出推广总表为 CSV
	ExportPromotionsCSV(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportPromotionsExcel 导出推广总表为 Excel
	ExportPromotionsExcel(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportWeeklyExcel 导出全部周报为 Excel（按周分 Sheet）
	ExportWeeklyExcel(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportCalendar 导出推广档期为 iCalendar 订阅源
	ExportCalendar(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportPromotionsCSV — 导出推广总表为 CSV
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportPromotionsCSV(ctx context.Context) (*bytes.Buffer, string, error) {
	table, err := s.repo.Table.Load(ctx, model.CollectionPromotions, model.PromotionSchema())
	if err != nil {
		s.logger.Error("加载推广总表失败", zap.Error(err))
		return nil, "", err
	}

	buf, err := WritePromotionCSV(table)
	if err != nil {
		s.logger.Error("写入 CSV 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, exportFilename("promotions", "csv"), nil
}

// ═══════════════════════════════════════════════════════════
// ExportPromotionsExcel — 导出推广总表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "Promotions"
//   - 首行标题 + 第二行表头（按当前 Schema 列序）
//   - 单元格取值的规范字符串形式（progress 导出为整数）

func (s *exportService) ExportPromotionsExcel(ctx context.Context) (*bytes.Buffer, string, error) {
	table, err := s.repo.Table.Load(ctx, model.CollectionPromotions, model.PromotionSchema())
	if err != nil {
		s.logger.Error("加载推广总表失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Promotions"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 设置列宽
	for i := range table.Schema.Fields {
		col := colName(1 + i)
		f.SetColWidth(sheetName, col, col, 18)
	}
	f.SetColWidth(sheetName, "A", "A", 28)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", "R&CG Promotion Dashboard")
	f.MergeCell(sheetName, "A1", cell(colName(len(table.Schema.Fields)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, field := range table.Schema.Fields {
		c := cell(colName(1+i), row)
		f.SetCellValue(sheetName, c, field)
		f.SetCellStyle(sheetName, c, c, headerStyle)
	}

	// 数据行
	row = 3
	for _, r := range table.Rows {
		for i, field := range table.Schema.Fields {
			v := r.Get(field)
			c := cell(colName(1+i), row)
			if v.Kind == model.KindInt {
				f.SetCellValue(sheetName, c, v.Int)
			} else {
				f.SetCellValue(sheetName, c, v.String())
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, exportFilename("promotions", "xlsx"), nil
}

// ═══════════════════════════════════════════════════════════
// ExportWeeklyExcel — 导出全部周报为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 按 weekStart 分 Sheet（"2024-03-04" 一周一页，新周在前）
//   - 列: 担当 / 分类 / 内容 / 关联推广 / 状态 / 截止日
//   - 行序与提交顺序一致

func (s *exportService) ExportWeeklyExcel(ctx context.Context) (*bytes.Buffer, string, error) {
	table, err := s.repo.Table.Load(ctx, model.CollectionWeeklyReports, model.WeeklySchema())
	if err != nil {
		s.logger.Error("加载周报表失败", zap.Error(err))
		return nil, "", err
	}

	// 按周分组，保持提交顺序
	byWeek := make(map[string][]model.WeeklyReportEntry)
	var weeks []string
	for _, r := range table.Rows {
		e := model.WeeklyEntryFromRow(r)
		if _, ok := byWeek[e.WeekStart]; !ok {
			weeks = append(weeks, e.WeekStart)
		}
		byWeek[e.WeekStart] = append(byWeek[e.WeekStart], e)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(weeks)))

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headers := []string{"Assignee", "Category", "Content", "Related Project", "Status", "Due Date"}
	widths := []float64{14, 14, 48, 24, 12, 14}

	if len(weeks) == 0 {
		weeks = []string{model.WeekStart(time.Now()).Format(model.DateLayout)}
	}

	for si, week := range weeks {
		sheetName := week
		idx, _ := f.NewSheet(sheetName)
		if si == 0 {
			f.SetActiveSheet(idx)
		}

		for i, w := range widths {
			col := colName(1 + i)
			f.SetColWidth(sheetName, col, col, w)
		}
		for i, h := range headers {
			c := cell(colName(1+i), 1)
			f.SetCellValue(sheetName, c, h)
			f.SetCellStyle(sheetName, c, c, headerStyle)
		}

		row := 2
		for _, e := range byWeek[week] {
			f.SetCellValue(sheetName, cell("A", row), e.Assignee)
			f.SetCellValue(sheetName, cell("B", row), e.Category)
			f.SetCellValue(sheetName, cell("C", row), e.Content)
			f.SetCellValue(sheetName, cell("D", row), e.RelatedProject)
			f.SetCellValue(sheetName, cell("E", row), e.Status)
			if !e.DueDate.IsZero() {
				f.SetCellValue(sheetName, cell("F", row), e.DueDate.Format(model.DateLayout))
			} else {
				f.SetCellValue(sheetName, cell("F", row), "-")
			}
			row++
		}
	}
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, exportFilename("weekly-reports", "xlsx"), nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — 导出推广档期为 iCalendar 订阅源
// ═══════════════════════════════════════════════════════════
//
// 每条有 startDate 的推广生成一个全天 VEVENT：
//   - UID 取行 ID（跨导出稳定，订阅端可正确去重/更新）
//   - DTEND 取 endDate + 1 天（iCal 全天事件结束日为开区间）
//   - endDate 缺失时按单日事件处理

func (s *exportService) ExportCalendar(ctx context.Context) (*bytes.Buffer, string, error) {
	table, err := s.repo.Table.Load(ctx, model.CollectionPromotions, model.PromotionSchema())
	if err != nil {
		s.logger.Error("加载推广总表失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//R&CG//Promotion Dashboard//KO")
	cal.SetName("R&CG Promotions")

	now := time.Now()
	for _, r := range table.Rows {
		start := r.Get(model.FieldStartDate)
		if start.IsNullDate() {
			continue
		}
		end := r.Get(model.FieldEndDate)
		endDate := start.Date
		if end.Kind == model.KindDate && !end.Date.IsZero() {
			endDate = end.Date
		}

		event := cal.AddEvent(r.ID)
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(start.Date)
		event.SetAllDayEndAt(endDate.AddDate(0, 0, 1))
		event.SetSummary(r.Get(model.FieldName).String())
		event.SetDescription(fmt.Sprintf("%s / %s / %s (%d%%)",
			r.Get(model.FieldChannel).String(),
			r.Get(model.FieldOwner).String(),
			r.Get(model.FieldStatus).String(),
			r.Get(model.FieldProgress).Int,
		))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, exportFilename("promotions", "ics"), nil
}

// ── 辅助函数 ──

func exportFilename(base, ext string) string {
	return fmt.Sprintf("%s_%s.%s", base, time.Now().Format("20060102"), ext)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
