package model

import (
	"testing"
	"time"
)

// ── 进度矫正 ──

func TestParseProgress(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"80%", 80},
		{" 80 ", 80},
		{"80", 80},
		{" 80 % ", 80}, // TrimSuffix 前后各修剪一次空白
		{"abc", 0},
		{"", 0},
		{"-5", 0},
		{"150", 100},
	}
	for _, c := range cases {
		if got := ParseProgress(c.in); got != c.want {
			t.Errorf("ParseProgress(%q) 期望 %d，实际 %d", c.in, c.want, got)
		}
	}
}

func TestCoerceValue_ProgressBounds(t *testing.T) {
	// 任意输入矫正后进度必须落在 [0,100]
	inputs := []Value{
		StringValue("80%"), StringValue(" 80 "), IntValue(80),
		StringValue("abc"), StringValue(""), IntValue(-3), IntValue(250),
	}
	want := []int{80, 80, 80, 0, 0, 0, 100}
	for i, in := range inputs {
		got := CoerceValue(KindInt, in)
		if got.Kind != KindInt || got.Int != want[i] {
			t.Errorf("CoerceValue(int, %v) 期望 %d，实际 %v", in, want[i], got)
		}
		if got.Int < 0 || got.Int > 100 {
			t.Errorf("矫正后进度越界: %d", got.Int)
		}
	}
}

// ── 日期矫正 ──

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-04", "2024/03/04", "2024.03.04", " 2024-03-04 "} {
		if got := ParseDate(in); !got.Equal(want) {
			t.Errorf("ParseDate(%q) 期望 %v，实际 %v", in, want, got)
		}
	}
	if got := ParseDate("not-a-date"); !got.IsZero() {
		t.Errorf("坏日期应返回零值哨兵，实际 %v", got)
	}
	if got := ParseDate(""); !got.IsZero() {
		t.Errorf("空日期应返回零值哨兵，实际 %v", got)
	}
}

// ── 整表矫正 ──

func coerceFixture() *Table {
	return &Table{
		Schema: PromotionSchema(),
		Rows: []Row{
			{ID: "r1", Cells: map[string]Value{
				FieldName:      StringValue("春季定期特卖"),
				FieldStatus:    StringValue(StatusInProgress),
				FieldProgress:  StringValue("75%"),
				FieldStartDate: StringValue("2024-03-01"),
				FieldEndDate:   StringValue("bogus"),
			}},
			{ID: "r2", Cells: map[string]Value{
				FieldName:     StringValue("新会员活动"),
				FieldStatus:   StringValue(StatusPlanning),
				FieldProgress: StringValue("oops"),
			}},
		},
	}
}

func TestCoerceTable_Defaults(t *testing.T) {
	got := CoerceTable(coerceFixture())

	r1 := got.Rows[0]
	if r1.Get(FieldProgress).Int != 75 {
		t.Errorf("期望进度 75，实际 %v", r1.Get(FieldProgress))
	}
	if r1.Get(FieldStartDate).String() != "2024-03-01" {
		t.Errorf("期望开始日期 2024-03-01，实际 %q", r1.Get(FieldStartDate).String())
	}
	if !r1.Get(FieldEndDate).IsNullDate() {
		t.Errorf("坏结束日期应矫正为空哨兵，实际 %v", r1.Get(FieldEndDate))
	}

	r2 := got.Rows[1]
	if r2.Get(FieldProgress).Int != 0 {
		t.Errorf("非数字进度应矫正为 0，实际 %d", r2.Get(FieldProgress).Int)
	}
	// 行缺失的 Schema 字段补字符串默认值
	if r2.Get(FieldChannel).String() != DefaultCellText {
		t.Errorf("缺失渠道字段应补 %q，实际 %q", DefaultCellText, r2.Get(FieldChannel).String())
	}
	if !r2.Get(FieldStartDate).IsNullDate() {
		t.Errorf("缺失日期字段应补空哨兵")
	}
}

func TestCoerceTable_Idempotent(t *testing.T) {
	once := CoerceTable(coerceFixture())
	twice := CoerceTable(once)

	if len(once.Rows) != len(twice.Rows) {
		t.Fatalf("矫正不应改变行数: %d vs %d", len(once.Rows), len(twice.Rows))
	}
	for i := range once.Rows {
		for _, f := range once.Schema.Fields {
			a, b := once.Rows[i].Get(f), twice.Rows[i].Get(f)
			if a != b {
				t.Errorf("矫正不幂等: 行 %d 字段 %s: %v vs %v", i, f, a, b)
			}
		}
	}
}

func TestCoerceTable_DoesNotMutateInput(t *testing.T) {
	in := coerceFixture()
	_ = CoerceTable(in)
	if in.Rows[0].Get(FieldProgress).String() != "75%" {
		t.Error("CoerceTable 不应修改入参")
	}
}
