package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ── 单元格值 ──
//
// 管理端可在运行时增删列，行因此不是固定结构体，而是
// “字段名 → 带类型标签的值” 的映射。值只有三种类型：
// 字符串、整数（进度百分比）、日历日期（无时间部分）。

// ValueKind 单元格值类型标签
type ValueKind string

const (
	KindString ValueKind = "string"
	KindInt    ValueKind = "int"
	KindDate   ValueKind = "date"
)

// DateLayout 日期字段统一序列化格式
const DateLayout = "2006-01-02"

// Value 带类型标签的单元格值
// Date 为零值时表示“空日期”哨兵（解析失败或单元格为空）。
type Value struct {
	Kind ValueKind
	Str  string
	Int  int
	Date time.Time
}

// StringValue 构造字符串值
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue 构造整数值
func IntValue(n int) Value { return Value{Kind: KindInt, Int: n} }

// DateValue 构造日期值（归一化到 UTC 零点，丢弃时间部分）
func DateValue(t time.Time) Value {
	if t.IsZero() {
		return Value{Kind: KindDate}
	}
	y, m, d := t.Date()
	return Value{Kind: KindDate, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NullDateValue 构造空日期哨兵
func NullDateValue() Value { return Value{Kind: KindDate} }

// IsNullDate 日期值是否为空哨兵
func (v Value) IsNullDate() bool { return v.Kind == KindDate && v.Date.IsZero() }

// String 值的规范字符串表示。
// 过滤比较、周键比较一律走该表示，避免“日期对象 vs 字符串”静默不相等。
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.Itoa(v.Int)
	case KindDate:
		if v.Date.IsZero() {
			return ""
		}
		return v.Date.Format(DateLayout)
	default:
		return v.Str
	}
}

// valueJSON Value 的 JSON 线格式: {"t":"string","v":"x"} / {"t":"int","v":80} / {"t":"date","v":"2024-03-04"}
type valueJSON struct {
	T ValueKind       `json:"t"`
	V json.RawMessage `json:"v"`
}

// MarshalJSON 序列化为带类型标签的 JSON
func (v Value) MarshalJSON() ([]byte, error) {
	var raw interface{}
	switch v.Kind {
	case KindInt:
		raw = v.Int
	case KindDate:
		raw = v.String() // 空日期 → ""
	default:
		raw = v.Str
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueJSON{T: v.Kind, V: b})
}

// UnmarshalJSON 从带类型标签的 JSON 还原
func (v *Value) UnmarshalJSON(data []byte) error {
	var aux valueJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch aux.T {
	case KindInt:
		var n int
		if err := json.Unmarshal(aux.V, &n); err != nil {
			return fmt.Errorf("解析整数值失败: %w", err)
		}
		*v = IntValue(n)
	case KindDate:
		var s string
		if err := json.Unmarshal(aux.V, &s); err != nil {
			return fmt.Errorf("解析日期值失败: %w", err)
		}
		if s == "" {
			*v = NullDateValue()
			return nil
		}
		t, err := time.ParseInLocation(DateLayout, s, time.UTC)
		if err != nil {
			// 坏日期按空哨兵处理，不让一个坏单元格拖垮整行
			*v = NullDateValue()
			return nil
		}
		*v = DateValue(t)
	case KindString:
		var s string
		if err := json.Unmarshal(aux.V, &s); err != nil {
			return fmt.Errorf("解析字符串值失败: %w", err)
		}
		*v = StringValue(s)
	default:
		return fmt.Errorf("未知的值类型标签: %q", aux.T)
	}
	return nil
}
