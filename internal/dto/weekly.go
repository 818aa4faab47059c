package dto

// ── 周报模块 DTO ──

// WeeklyEntryInput 单条周报条目提交
type WeeklyEntryInput struct {
	Category       string `json:"category"`
	Content        string `json:"content"`
	RelatedProject string `json:"related_project"`
	Status         string `json:"status"`
	DueDate        string `json:"due_date"` // YYYY-MM-DD，可空
}

// SubmitWeeklyReportRequest 周报提交请求。
// WeekOf 可为该周内任意日期，服务端归一化到周一。
type SubmitWeeklyReportRequest struct {
	WeekOf   string             `json:"week_of"  binding:"required"`
	Assignee string             `json:"assignee" binding:"required"`
	Entries  []WeeklyEntryInput `json:"entries"  binding:"required"`
}

// WeeklyEntryResponse 单条周报条目
type WeeklyEntryResponse struct {
	Category       string `json:"category"`
	Content        string `json:"content"`
	RelatedProject string `json:"related_project"`
	Status         string `json:"status"`
	DueDate        string `json:"due_date,omitempty"`
}

// WeeklyCategoryGroup 某分类下的条目（保持提交顺序）
type WeeklyCategoryGroup struct {
	Category string                `json:"category"`
	Entries  []WeeklyEntryResponse `json:"entries"`
}

// WeeklyAssigneeGroup 某负责人当周的条目，按分类分组
type WeeklyAssigneeGroup struct {
	Assignee   string                `json:"assignee"`
	Categories []WeeklyCategoryGroup `json:"categories"`
}

// WeeklyReportWeekResponse 某一周的周报视图。
// 空周是合法的可展示状态，不是错误。
type WeeklyReportWeekResponse struct {
	WeekStart string                `json:"week_start"`
	WeekEnd   string                `json:"week_end"`
	Assignees []WeeklyAssigneeGroup `json:"assignees"`
}

// WeeklyWeekSummary 周列表项
type WeeklyWeekSummary struct {
	WeekStart  string `json:"week_start"`
	WeekEnd    string `json:"week_end"`
	EntryCount int    `json:"entry_count"`
}
