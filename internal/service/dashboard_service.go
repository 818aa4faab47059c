package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/dong641/R-CG-Promotion-Dashboard/config"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/dto"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/model"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/repository"
)

// DashboardService 看板业务接口
//
// 设计说明：
//   - 联动过滤（cascading filter）：按列序从左到右，每个字段的候选集
//     只受它前面字段已选值的约束，后面的字段不反向传播——刻意不做
//     不动点计算，换取确定的从左到右收窄交互。
//   - 过滤选择无持久生命周期，每次查询重算。
//   - 平均进度的状态排除集来自配置（历次版本口径不一）。
type DashboardService interface {
	Query(ctx context.Context, req *dto.DashboardQueryRequest) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo        *repository.Repository
	avgExcludes map[string]bool
	logger      *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) DashboardService {
	excludes := make(map[string]bool, len(cfg.Dashboard.AvgExcludeStatuses))
	for _, s := range cfg.Dashboard.AvgExcludeStatuses {
		excludes[s] = true
	}
	return &dashboardService{repo: repo, avgExcludes: excludes, logger: logger}
}

func (s *dashboardService) Query(ctx context.Context, req *dto.DashboardQueryRequest) (*dto.DashboardResponse, error) {
	table, err := s.repo.Table.Load(ctx, model.CollectionPromotions, model.PromotionSchema())
	if err != nil {
		s.logger.Error("加载推广活动表失败", zap.Error(err))
		return nil, err
	}

	selections := req.Selections
	if selections == nil {
		selections = map[string][]string{}
	}

	filters, filtered := cascadeFilter(table, selections)

	resp := &dto.DashboardResponse{
		Fields:  table.Schema.Fields,
		Filters: filters,
		Metrics: computeMetrics(filtered, s.avgExcludes),
		Rows:    make([]dto.RowData, 0, len(filtered)),
	}
	for _, r := range filtered {
		rd := rowData(&table.Schema, r)
		resp.Rows = append(resp.Rows, rd)
		if r.Get(model.FieldStatus).String() == model.StatusComplete {
			resp.Completed = append(resp.Completed, rd)
		} else {
			resp.Active = append(resp.Active, rd)
		}
	}
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// 联动过滤引擎
// ═══════════════════════════════════════════════════════════

// filterFields 可离散过滤的字段：列序中的字符串字段。
// 连续量（进度整数）与日期列不进入离散过滤。
func filterFields(schema *model.Schema) []string {
	fields := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		if schema.Kind(f) == model.KindString {
			fields = append(fields, f)
		}
	}
	return fields
}

// cascadeFilter 从左到右逐字段计算候选集并收窄行集。
//
// 不变式：字段 f_i 的候选集只反映 f_1..f_{i-1} 的约束。
// 某一步选择把行集清空后，后续候选集全为空——允许，不是错误。
func cascadeFilter(t *model.Table, selections map[string][]string) ([]dto.FilterFieldResponse, []model.Row) {
	running := t.Rows
	fields := filterFields(&t.Schema)
	result := make([]dto.FilterFieldResponse, 0, len(fields))

	for _, f := range fields {
		candidates := uniqueSorted(running, f)
		selected := selections[f]
		result = append(result, dto.FilterFieldResponse{Field: f, Candidates: candidates, Selected: selected})

		if len(selected) == 0 {
			continue
		}
		chosen := make(map[string]bool, len(selected))
		for _, v := range selected {
			chosen[v] = true
		}
		narrowed := make([]model.Row, 0, len(running))
		for _, r := range running {
			if chosen[r.Get(f).String()] {
				narrowed = append(narrowed, r)
			}
		}
		running = narrowed
	}
	return result, running
}

// uniqueSorted 行集中某字段的去重候选值，按字符串表示升序（保证跨次运行确定）
func uniqueSorted(rows []model.Row, field string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range rows {
		v := r.Get(field).String()
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// ═══════════════════════════════════════════════════════════
// 指标聚合
// ═══════════════════════════════════════════════════════════

// computeMetrics 过滤结果集的汇总指标。
// 平均进度：排除指定状态后的算术平均，合格子集为空时定义为 0
// （调用方永远拿不到 NaN）；四舍五入到一位小数，在整数域做
// 精确 half-up，避免浮点在 x.05 上的漂移。
func computeMetrics(rows []model.Row, excludeStatuses map[string]bool) dto.MetricsResponse {
	m := dto.MetricsResponse{
		Total:    len(rows),
		ByStatus: make(map[string]int, len(model.AllStatuses)),
	}
	for _, st := range model.AllStatuses {
		m.ByStatus[st] = 0
	}

	sum, n := 0, 0
	for _, r := range rows {
		status := r.Get(model.FieldStatus).String()
		m.ByStatus[status]++
		if excludeStatuses[status] {
			continue
		}
		sum += r.Get(model.FieldProgress).Int
		n++
	}
	if n > 0 {
		tenths := (sum*20 + n) / (2 * n) // 精确 half-up 到 0.1
		m.AverageProgress = float64(tenths) / 10
	}
	return m
}

// rowData 行 → 展示形态
func rowData(schema *model.Schema, r model.Row) dto.RowData {
	cells := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		cells[f] = r.Get(f).String()
	}
	return dto.RowData{
		ID:       r.ID,
		Cells:    cells,
		Progress: r.Get(model.FieldProgress).Int,
	}
}
