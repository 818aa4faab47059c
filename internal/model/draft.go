package model

// Draft 编辑会话的工作副本。
// 会话开始时从刚加载的已提交副本派生（而非跨会话缓存），
// 这本身就是过期读守卫：上一个会话没见过的提交不会被悄悄盖掉。
type Draft struct {
	Collection string              `json:"collection"`
	Filtered   bool                `json:"filtered"`             // 过滤模式：行增删被禁用，保存走部分合并
	Selections map[string][]string `json:"selections,omitempty"` // 派生草稿时的过滤选择（保存后重新套用）
	Table      Table               `json:"table"`
}
