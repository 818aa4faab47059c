package dto

// ── 编辑会话模块 DTO ──

// OpenSessionRequest 打开编辑会话请求。
// Selections 非空时进入过滤模式：草稿只含过滤子集，行增删被禁用。
type OpenSessionRequest struct {
	Selections map[string][]string `json:"selections"`
}

// UpdateCellRequest 单元格编辑请求（值以字符串提交，按列类型矫正）
type UpdateCellRequest struct {
	RowID string `json:"row_id" binding:"required"`
	Field string `json:"field"  binding:"required"`
	Value string `json:"value"`
}

// AddRowRequest 新增行请求。Cells 中缺失的列补默认值。
type AddRowRequest struct {
	Cells map[string]string `json:"cells" binding:"required"`
}

// AddColumnRequest 新增列请求
type AddColumnRequest struct {
	Name string `json:"name" binding:"required"`
}

// EditorSessionResponse 编辑会话快照
type EditorSessionResponse struct {
	SessionID string    `json:"session_id"`
	Filtered  bool      `json:"filtered"`
	Fields    []string  `json:"fields"`
	Rows      []RowData `json:"rows"`
}
