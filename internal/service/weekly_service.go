package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/dto"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/model"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/repository"
)

// ── 周报模块业务错误 ──

var (
	ErrWeeklyBadDate          = errors.New("周报日期格式无效")
	ErrWeeklyAssigneeRequired = errors.New("负责人不能为空")
	ErrWeeklyEmptySubmission  = errors.New("提交的条目内容全部为空")
)

// WeeklyService 周报业务接口
//
// 写端是按键 upsert：同一 (周起点, 负责人) 的一次提交整批替换该键下
// 的全部既有条目，其他键的条目不动；整集合随后原子全量覆盖落库
// （与推广活动表同一套 last-write-wins 契约）。
type WeeklyService interface {
	Submit(ctx context.Context, req *dto.SubmitWeeklyReportRequest) (*dto.WeeklyReportWeekResponse, error)
	GetWeek(ctx context.Context, ref string) (*dto.WeeklyReportWeekResponse, error)
	ListWeeks(ctx context.Context) ([]dto.WeeklyWeekSummary, error)
}

type weeklyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWeeklyService 创建 WeeklyService 实例
func NewWeeklyService(repo *repository.Repository, logger *zap.Logger) WeeklyService {
	return &weeklyService{repo: repo, logger: logger}
}

func (s *weeklyService) Submit(ctx context.Context, req *dto.SubmitWeeklyReportRequest) (*dto.WeeklyReportWeekResponse, error) {
	assignee := strings.TrimSpace(req.Assignee)
	if assignee == "" {
		return nil, ErrWeeklyAssigneeRequired
	}
	refDate := model.ParseDate(req.WeekOf)
	if refDate.IsZero() {
		return nil, ErrWeeklyBadDate
	}
	weekStart := model.WeekStart(refDate).Format(model.DateLayout)

	// 1. 丢弃空内容条目，归一化分类/状态默认值
	entries := make([]model.WeeklyReportEntry, 0, len(req.Entries))
	for _, in := range req.Entries {
		content := strings.TrimSpace(in.Content)
		if content == "" {
			continue
		}
		entries = append(entries, model.WeeklyReportEntry{
			WeekStart:      weekStart,
			Assignee:       assignee,
			Category:       normalizeCategory(in.Category),
			Content:        content,
			RelatedProject: normalizeProject(in.RelatedProject),
			Status:         normalizeReportStatus(in.Status),
			DueDate:        model.ParseDate(in.DueDate),
		})
	}
	// 2. 全空提交是校验失败，不是静默成功
	if len(entries) == 0 {
		return nil, ErrWeeklyEmptySubmission
	}

	// 3. 严格加载整集合（软失败的空表一旦写回会抹掉其他键的条目），
	//    剔除同键旧条目
	table, err := s.repo.Table.LoadForUpdate(ctx, model.CollectionWeeklyReports, model.WeeklySchema())
	if err != nil {
		s.logger.Error("加载周报集合失败，中止提交", zap.Error(err))
		return nil, err
	}
	kept := make([]model.Row, 0, len(table.Rows))
	for _, r := range table.Rows {
		if r.Get(model.WeeklyFieldWeekStart).String() == weekStart &&
			r.Get(model.WeeklyFieldAssignee).String() == assignee {
			continue
		}
		kept = append(kept, r)
	}
	table.Rows = kept

	// 4. 追加新条目并整集合落库
	for i := range entries {
		table.Rows = append(table.Rows, entries[i].ToRow())
	}
	model.EnsureRowIDs(table)

	if err := s.repo.Table.Replace(ctx, model.CollectionWeeklyReports, table); err != nil {
		s.logger.Error("保存周报集合失败", zap.Error(err))
		return nil, err
	}

	return groupWeek(table, weekStart), nil
}

func (s *weeklyService) GetWeek(ctx context.Context, ref string) (*dto.WeeklyReportWeekResponse, error) {
	refDate := model.ParseDate(ref)
	if refDate.IsZero() {
		return nil, ErrWeeklyBadDate
	}
	weekStart := model.WeekStart(refDate).Format(model.DateLayout)

	table, err := s.repo.Table.Load(ctx, model.CollectionWeeklyReports, model.WeeklySchema())
	if err != nil {
		s.logger.Error("加载周报集合失败", zap.Error(err))
		return nil, err
	}
	return groupWeek(table, weekStart), nil
}

func (s *weeklyService) ListWeeks(ctx context.Context) ([]dto.WeeklyWeekSummary, error) {
	table, err := s.repo.Table.Load(ctx, model.CollectionWeeklyReports, model.WeeklySchema())
	if err != nil {
		s.logger.Error("加载周报集合失败", zap.Error(err))
		return nil, err
	}

	counts := make(map[string]int)
	for _, r := range table.Rows {
		counts[r.Get(model.WeeklyFieldWeekStart).String()]++
	}
	weeks := make([]string, 0, len(counts))
	for w := range counts {
		weeks = append(weeks, w)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(weeks))) // 最近的周在前

	out := make([]dto.WeeklyWeekSummary, 0, len(weeks))
	for _, w := range weeks {
		summary := dto.WeeklyWeekSummary{WeekStart: w, EntryCount: counts[w]}
		if d := model.ParseDate(w); !d.IsZero() {
			summary.WeekEnd = model.WeekEnd(d).Format(model.DateLayout)
		}
		out = append(out, summary)
	}
	return out, nil
}

// ── 辅助函数 ──

func normalizeCategory(s string) string {
	if model.IsValidCategory(s) {
		return s
	}
	return model.CategoryAchievement
}

func normalizeReportStatus(s string) string {
	if model.IsValidReportStatus(s) {
		return s
	}
	return model.ReportStatusNormal
}

func normalizeProject(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.DefaultCellText
	}
	return s
}

// groupWeek 读端分组：先按负责人（升序），再按固定分类顺序，
// 组内保持提交顺序。空周返回空分组，是合法展示状态。
func groupWeek(table *model.Table, weekStart string) *dto.WeeklyReportWeekResponse {
	resp := &dto.WeeklyReportWeekResponse{
		WeekStart: weekStart,
		Assignees: []dto.WeeklyAssigneeGroup{},
	}
	if d := model.ParseDate(weekStart); !d.IsZero() {
		resp.WeekEnd = model.WeekEnd(d).Format(model.DateLayout)
	}

	// assignee → category → entries（保持行序 = 提交顺序）
	byAssignee := make(map[string]map[string][]dto.WeeklyEntryResponse)
	var assignees []string
	for _, r := range table.Rows {
		if r.Get(model.WeeklyFieldWeekStart).String() != weekStart {
			continue
		}
		e := model.WeeklyEntryFromRow(r)
		if _, ok := byAssignee[e.Assignee]; !ok {
			byAssignee[e.Assignee] = make(map[string][]dto.WeeklyEntryResponse)
			assignees = append(assignees, e.Assignee)
		}
		entry := dto.WeeklyEntryResponse{
			Category:       e.Category,
			Content:        e.Content,
			RelatedProject: e.RelatedProject,
			Status:         e.Status,
		}
		if !e.DueDate.IsZero() {
			entry.DueDate = e.DueDate.Format(model.DateLayout)
		}
		byAssignee[e.Assignee][e.Category] = append(byAssignee[e.Assignee][e.Category], entry)
	}
	sort.Strings(assignees)

	for _, a := range assignees {
		group := dto.WeeklyAssigneeGroup{Assignee: a}
		for _, cat := range model.AllCategories {
			if entries := byAssignee[a][cat]; len(entries) > 0 {
				group.Categories = append(group.Categories, dto.WeeklyCategoryGroup{Category: cat, Entries: entries})
			}
		}
		resp.Assignees = append(resp.Assignees, group)
	}
	return resp
}
