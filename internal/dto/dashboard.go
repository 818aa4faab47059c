package dto

// ── 看板模块 DTO ──

// DashboardQueryRequest 看板查询请求。
// Selections: 字段名 → 选中值集合；空映射等价于不过滤。
type DashboardQueryRequest struct {
	Selections map[string][]string `json:"selections"`
}

// FilterFieldResponse 单个过滤字段的联动候选集
type FilterFieldResponse struct {
	Field      string   `json:"field"`
	Candidates []string `json:"candidates"`
	Selected   []string `json:"selected,omitempty"`
}

// MetricsResponse 过滤结果集的汇总指标
type MetricsResponse struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"by_status"`
	AverageProgress float64        `json:"average_progress"` // 一位小数
}

// RowData 行的展示形态：单元格按规范字符串表示输出，
// 进度字段额外给出整数形态
type RowData struct {
	ID       string            `json:"id"`
	Cells    map[string]string `json:"cells"`
	Progress int               `json:"progress"`
}

// DashboardResponse 看板查询响应
type DashboardResponse struct {
	Fields    []string              `json:"fields"` // 列顺序
	Filters   []FilterFieldResponse `json:"filters"`
	Metrics   MetricsResponse       `json:"metrics"`
	Rows      []RowData             `json:"rows"`
	Active    []RowData             `json:"active"`    // 状态 != Complete
	Completed []RowData             `json:"completed"` // 状态 == Complete
}
