package model

import "github.com/google/uuid"

// ── 动态表结构 ──

// Schema 列描述符：有序字段列表 + 字段类型。
// 增删列操作只改 Schema，由调用方将已有行对齐到新 Schema。
type Schema struct {
	Fields []string             `json:"fields"`
	Kinds  map[string]ValueKind `json:"kinds"`
}

// Kind 返回字段类型，未声明的字段按字符串处理
func (s *Schema) Kind(field string) ValueKind {
	if k, ok := s.Kinds[field]; ok {
		return k
	}
	return KindString
}

// Has 字段是否存在
func (s *Schema) Has(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Clone 深拷贝
func (s *Schema) Clone() Schema {
	fields := make([]string, len(s.Fields))
	copy(fields, s.Fields)
	kinds := make(map[string]ValueKind, len(s.Kinds))
	for k, v := range s.Kinds {
		kinds[k] = v
	}
	return Schema{Fields: fields, Kinds: kinds}
}

// Row 一行记录。ID 为行身份标识（UUID），
// 过滤编辑的部分提交按 ID 把改动合并回已提交副本。
type Row struct {
	ID    string           `json:"id"`
	Cells map[string]Value `json:"cells"`
}

// Get 读取单元格，缺失字段返回空字符串值
func (r Row) Get(field string) Value {
	if v, ok := r.Cells[field]; ok {
		return v
	}
	return StringValue("")
}

// Clone 深拷贝
func (r Row) Clone() Row {
	cells := make(map[string]Value, len(r.Cells))
	for k, v := range r.Cells {
		cells[k] = v
	}
	return Row{ID: r.ID, Cells: cells}
}

// Table 单一列 Schema 下的有序行集合
type Table struct {
	Schema Schema `json:"schema"`
	Rows   []Row  `json:"rows"`
}

// Clone 深拷贝。草稿永远持有已提交副本的拷贝而非引用，
// 丢弃草稿不可能污染已提交状态。
func (t *Table) Clone() *Table {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	return &Table{Schema: t.Schema.Clone(), Rows: rows}
}

// FindRow 按 ID 查找行，返回下标；未找到返回 -1
func (t *Table) FindRow(rowID string) int {
	for i, r := range t.Rows {
		if r.ID == rowID {
			return i
		}
	}
	return -1
}

// EnsureRowIDs 为缺失身份标识的行补发 UUID
func EnsureRowIDs(t *Table) {
	for i := range t.Rows {
		if t.Rows[i].ID == "" {
			t.Rows[i].ID = uuid.New().String()
		}
	}
}

// ApplyPartialUpdate 过滤编辑的部分提交合并：
//  1. 列增删是表级概念，草稿 Schema 全表生效——已提交行对齐到新
//     Schema（新增列补 "-"，删除列丢值）；
//  2. 按行 ID 匹配的行，其全部字段值被草稿行覆盖；
//  3. 未匹配（过滤视图之外）的行除列对齐外原样保留。
//
// 纯函数：不修改入参，返回新表。
func ApplyPartialUpdate(committed *Table, schema Schema, rows []Row) *Table {
	byID := make(map[string]Row, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	result := &Table{Schema: schema.Clone(), Rows: make([]Row, 0, len(committed.Rows))}
	for _, old := range committed.Rows {
		cells := make(map[string]Value, len(schema.Fields))
		src := old
		if edited, ok := byID[old.ID]; ok {
			src = edited
		}
		for _, f := range schema.Fields {
			if v, ok := src.Cells[f]; ok {
				cells[f] = v
				continue
			}
			// 新增列：已有行统一补默认值
			cells[f] = defaultCell(schema.Kind(f))
		}
		result.Rows = append(result.Rows, Row{ID: old.ID, Cells: cells})
	}
	return result
}

// defaultCell 字段类型对应的默认单元格值
func defaultCell(kind ValueKind) Value {
	switch kind {
	case KindInt:
		return IntValue(0)
	case KindDate:
		return NullDateValue()
	default:
		return StringValue(DefaultCellText)
	}
}
