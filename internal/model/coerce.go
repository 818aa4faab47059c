package model

import (
	"strconv"
	"strings"
	"time"
)

// ── 加载边界类型矫正管线 ──
//
// 历史版本里 “try/默认值” 的容错逻辑散落在各处，口径不一。
// 这里集中声明一次：每次 Load（以及 CSV 导入）无条件过一遍，
// 任何坏单元格只降级为字段级默认值，绝不让整表加载失败。
// 矫正是幂等的：CoerceTable(CoerceTable(T)) == CoerceTable(T)。

// dateLayouts 日期解析容忍的输入格式（输出一律 DateLayout）
var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02"}

// ParseDate 解析日历日期；解析失败或为空返回零值哨兵
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

// ParseProgress 解析进度百分比：容忍 "80%"、前后空白；
// 非数字 → 0；越界截断到 [0,100]。
func ParseProgress(s string) int {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return clampProgress(n)
}

func clampProgress(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// CoerceValue 将任意来源的值矫正为目标类型的规范值
func CoerceValue(kind ValueKind, v Value) Value {
	switch kind {
	case KindInt:
		if v.Kind == KindInt {
			return IntValue(clampProgress(v.Int))
		}
		return IntValue(ParseProgress(v.String()))
	case KindDate:
		if v.Kind == KindDate {
			return DateValue(v.Date)
		}
		return DateValue(ParseDate(v.String()))
	default:
		return StringValue(v.String())
	}
}

// CoerceTable 按 Schema 声明的字段类型矫正整张表（返回新表，不改入参）：
//   - 日期字段：解析失败 → 空日期哨兵；
//   - 进度字段：剥掉 "%" 与空白后取整，失败 → 0，越界截断；
//   - 字符串字段：取规范字符串表示，保证跨加载相等性比较类型稳定；
//   - 行缺失的 Schema 字段补默认值（字符串 "-"、整数 0、日期空哨兵）。
func CoerceTable(t *Table) *Table {
	out := &Table{Schema: t.Schema.Clone(), Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		cells := make(map[string]Value, len(out.Schema.Fields))
		for _, f := range out.Schema.Fields {
			kind := out.Schema.Kind(f)
			if v, ok := r.Cells[f]; ok {
				cells[f] = CoerceValue(kind, v)
			} else {
				cells[f] = defaultCell(kind)
			}
		}
		out.Rows = append(out.Rows, Row{ID: r.ID, Cells: cells})
	}
	return out
}
