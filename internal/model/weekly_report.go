package model

import "time"

// ── 周报 ──

// 周报固定字段
const (
	WeeklyFieldWeekStart = "weekStart"
	WeeklyFieldAssignee  = "assignee"
	WeeklyFieldCategory  = "category"
	WeeklyFieldContent   = "content"
	WeeklyFieldProject   = "relatedProject"
	WeeklyFieldStatus    = "status"
	WeeklyFieldDueDate   = "dueDate"
)

// 周报条目分类
const (
	CategoryAchievement = "Achievement"
	CategoryPlan        = "Plan"
	CategoryIssue       = "Issue"
)

// AllCategories 分类全集（读端分组按此顺序输出）
var AllCategories = []string{CategoryAchievement, CategoryPlan, CategoryIssue}

// IsValidCategory 是否合法分类
func IsValidCategory(s string) bool {
	for _, v := range AllCategories {
		if v == s {
			return true
		}
	}
	return false
}

// 周报条目状态
const (
	ReportStatusNormal  = "Normal"
	ReportStatusDelayed = "Delayed"
	ReportStatusStopped = "Stopped"
)

// IsValidReportStatus 是否合法条目状态
func IsValidReportStatus(s string) bool {
	return s == ReportStatusNormal || s == ReportStatusDelayed || s == ReportStatusStopped
}

// WeeklyReportEntry 周报条目。
// WeekStart 固定为字符串形式的周一日期（YYYY-MM-DD）：
// upsert 键比较跨加载必须类型稳定，日期对象与字符串混比是老系统的惯性缺陷。
type WeeklyReportEntry struct {
	WeekStart      string    `json:"week_start"`
	Assignee       string    `json:"assignee"`
	Category       string    `json:"category"`
	Content        string    `json:"content"`
	RelatedProject string    `json:"related_project"`
	Status         string    `json:"status"`
	DueDate        time.Time `json:"due_date,omitempty"` // 零值 = 未设定
}

// WeekStart 任意参考日期所在 ISO 周的周一（UTC 零点）。
// 写端（upsert 键）与读端（按周过滤）共用，保证两侧完全一致。
func WeekStart(ref time.Time) time.Time {
	y, m, d := ref.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 … Sunday=6
	return day.AddDate(0, 0, -offset)
}

// WeekEnd 所在 ISO 周的周日（周一 + 6 天）
func WeekEnd(ref time.Time) time.Time {
	return WeekStart(ref).AddDate(0, 0, 6)
}

// WeeklySchema 周报集合 Schema（固定，不开放增删列）
func WeeklySchema() Schema {
	return Schema{
		Fields: []string{
			WeeklyFieldWeekStart, WeeklyFieldAssignee, WeeklyFieldCategory,
			WeeklyFieldContent, WeeklyFieldProject, WeeklyFieldStatus, WeeklyFieldDueDate,
		},
		Kinds: map[string]ValueKind{
			WeeklyFieldWeekStart: KindString,
			WeeklyFieldAssignee:  KindString,
			WeeklyFieldCategory:  KindString,
			WeeklyFieldContent:   KindString,
			WeeklyFieldProject:   KindString,
			WeeklyFieldStatus:    KindString,
			WeeklyFieldDueDate:   KindDate,
		},
	}
}

// EmptyWeeklyTable 周报集合的规范空表
func EmptyWeeklyTable() *Table {
	return &Table{Schema: WeeklySchema()}
}

// ToRow 条目 → 表行
func (e *WeeklyReportEntry) ToRow() Row {
	return Row{
		Cells: map[string]Value{
			WeeklyFieldWeekStart: StringValue(e.WeekStart),
			WeeklyFieldAssignee:  StringValue(e.Assignee),
			WeeklyFieldCategory:  StringValue(e.Category),
			WeeklyFieldContent:   StringValue(e.Content),
			WeeklyFieldProject:   StringValue(e.RelatedProject),
			WeeklyFieldStatus:    StringValue(e.Status),
			WeeklyFieldDueDate:   DateValue(e.DueDate),
		},
	}
}

// WeeklyEntryFromRow 表行 → 条目
func WeeklyEntryFromRow(r Row) WeeklyReportEntry {
	return WeeklyReportEntry{
		WeekStart:      r.Get(WeeklyFieldWeekStart).String(),
		Assignee:       r.Get(WeeklyFieldAssignee).String(),
		Category:       r.Get(WeeklyFieldCategory).String(),
		Content:        r.Get(WeeklyFieldContent).String(),
		RelatedProject: r.Get(WeeklyFieldProject).String(),
		Status:         r.Get(WeeklyFieldStatus).String(),
		DueDate:        r.Get(WeeklyFieldDueDate).Date,
	}
}
