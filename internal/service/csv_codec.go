package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/model"
)

// ── CSV 编解码器 ──────────────────────────────────────────────
//
// 职责：推广活动表与分隔文本（CSV, UTF-8）之间的互转。
//
// 设计决策：
//   - 导出带 UTF-8 BOM（电子表格软件兼容）；导入时剥掉 BOM
//   - 表头行 = 字段名；已知基础字段沿用其声明类型，未知列按字符串
//   - 日期序列化为 YYYY-MM-DD；进度导出为裸整数，导入容忍 "%"
//     后缀、前后空白与空单元格（与加载边界同一套矫正管线）
//   - 导出→导入在矫正意义下幂等
// ─────────────────────────────────────────────────────────────

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	ErrCSVEmpty     = errors.New("CSV 内容为空")
	ErrCSVNoName    = errors.New("CSV 缺少 name 列")
	ErrCSVMalformed = errors.New("CSV 格式错误")
)

// ParsePromotionCSV 解析 CSV 为推广活动表（解析后过矫正管线并补发行 ID）
func ParsePromotionCSV(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrCSVEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCSVMalformed, err)
	}

	base := model.PromotionSchema()
	schema := model.Schema{Kinds: make(map[string]model.ValueKind, len(header))}
	for _, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || schema.Has(name) {
			continue
		}
		schema.Fields = append(schema.Fields, name)
		if k, ok := base.Kinds[name]; ok {
			schema.Kinds[name] = k
		} else {
			schema.Kinds[name] = model.KindString
		}
	}
	if !schema.Has(model.FieldName) {
		return nil, ErrCSVNoName
	}

	table := &model.Table{Schema: schema}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCSVMalformed, err)
		}
		cells := make(map[string]model.Value, len(schema.Fields))
		for i, f := range schema.Fields {
			raw := ""
			if i < len(record) {
				raw = record[i]
			}
			cells[f] = model.StringValue(raw)
		}
		table.Rows = append(table.Rows, model.Row{Cells: cells})
	}

	table = model.CoerceTable(table)
	model.EnsureRowIDs(table)
	return table, nil
}

// WritePromotionCSV 导出推广活动表为 CSV（UTF-8 BOM + 表头 + 规范字符串单元格）
func WritePromotionCSV(t *model.Table) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	buf.Write(utf8BOM)

	w := csv.NewWriter(buf)
	if err := w.Write(t.Schema.Fields); err != nil {
		return nil, fmt.Errorf("写 CSV 表头失败: %w", err)
	}
	record := make([]string, len(t.Schema.Fields))
	for _, row := range t.Rows {
		for i, f := range t.Schema.Fields {
			record[i] = row.Get(f).String()
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("写 CSV 行失败: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("写 CSV 失败: %w", err)
	}
	return buf, nil
}

// stripBOM 剥掉输入开头的 UTF-8 BOM（若有）
func stripBOM(r io.Reader) io.Reader {
	br := make([]byte, 3)
	n, _ := io.ReadFull(r, br)
	if n == 3 && bytes.Equal(br, utf8BOM) {
		return r
	}
	return io.MultiReader(bytes.NewReader(br[:n]), r)
}
