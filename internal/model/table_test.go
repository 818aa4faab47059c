package model

import (
	"encoding/json"
	"testing"
)

func partialFixture() *Table {
	t := &Table{Schema: PromotionSchema()}
	for _, rw := range []struct {
		id, name, channel, status string
		progress                  int
	}{
		{"r1", "春季特卖", "Off Trade", StatusInProgress, 75},
		{"r2", "新会员活动", "On Trade", StatusPlanning, 20},
		{"r3", "暑期特价", "Off Trade", StatusPending, 0},
	} {
		t.Rows = append(t.Rows, Row{ID: rw.id, Cells: map[string]Value{
			FieldName:      StringValue(rw.name),
			FieldChannel:   StringValue(rw.channel),
			FieldOwner:     StringValue("-"),
			FieldStatus:    StringValue(rw.status),
			FieldProgress:  IntValue(rw.progress),
			FieldStartDate: NullDateValue(),
			FieldEndDate:   NullDateValue(),
		}})
	}
	return t
}

func TestApplyPartialUpdate_OnlyMatchedRowsChange(t *testing.T) {
	committed := partialFixture()

	// 过滤子集只含 r1，改其进度
	edited := committed.Rows[0].Clone()
	edited.Cells[FieldProgress] = IntValue(90)

	got := ApplyPartialUpdate(committed, committed.Schema, []Row{edited})

	if got.Rows[0].Get(FieldProgress).Int != 90 {
		t.Errorf("匹配行进度应为 90，实际 %d", got.Rows[0].Get(FieldProgress).Int)
	}
	// 过滤之外的行必须逐字段与提交前一致
	for _, idx := range []int{1, 2} {
		before, _ := json.Marshal(committed.Rows[idx])
		after, _ := json.Marshal(got.Rows[idx])
		if string(before) != string(after) {
			t.Errorf("未匹配行 %s 不应变化:\n前 %s\n后 %s", committed.Rows[idx].ID, before, after)
		}
	}
	if len(got.Rows) != len(committed.Rows) {
		t.Errorf("部分合并不应增删行: %d vs %d", len(got.Rows), len(committed.Rows))
	}
}

func TestApplyPartialUpdate_SchemaDeltaTableWide(t *testing.T) {
	committed := partialFixture()

	// 草稿 Schema 增加 budget 列、删除 channel 列
	schema := committed.Schema.Clone()
	schema.Fields = append(schema.Fields, "budget")
	schema.Kinds["budget"] = KindString
	fields := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		if f != FieldChannel {
			fields = append(fields, f)
		}
	}
	schema.Fields = fields
	delete(schema.Kinds, FieldChannel)

	edited := committed.Rows[0].Clone()
	edited.Cells["budget"] = StringValue("5000")
	delete(edited.Cells, FieldChannel)

	got := ApplyPartialUpdate(committed, schema, []Row{edited})

	if got.Rows[0].Get("budget").String() != "5000" {
		t.Errorf("匹配行 budget 应为 5000，实际 %q", got.Rows[0].Get("budget").String())
	}
	// 列增删全表生效：未匹配行补默认值、删除列丢值
	if got.Rows[1].Get("budget").String() != DefaultCellText {
		t.Errorf("未匹配行新增列应补 %q，实际 %q", DefaultCellText, got.Rows[1].Get("budget").String())
	}
	for _, r := range got.Rows {
		if _, ok := r.Cells[FieldChannel]; ok {
			t.Errorf("删除列后行 %s 仍残留 channel 值", r.ID)
		}
	}
}

func TestApplyPartialUpdate_DoesNotMutateCommitted(t *testing.T) {
	committed := partialFixture()
	edited := committed.Rows[0].Clone()
	edited.Cells[FieldProgress] = IntValue(99)

	_ = ApplyPartialUpdate(committed, committed.Schema, []Row{edited})

	if committed.Rows[0].Get(FieldProgress).Int != 75 {
		t.Error("ApplyPartialUpdate 不应修改已提交副本")
	}
}

func TestTableClone_Isolation(t *testing.T) {
	src := partialFixture()
	cp := src.Clone()
	cp.Rows[0].Cells[FieldName] = StringValue("改名")
	cp.Schema.Fields = append(cp.Schema.Fields, "extra")

	if src.Rows[0].Get(FieldName).String() != "春季特卖" {
		t.Error("拷贝上的单元格修改泄漏到了源表")
	}
	if src.Schema.Has("extra") {
		t.Error("拷贝上的 Schema 修改泄漏到了源表")
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	row := Row{ID: "r1", Cells: map[string]Value{
		FieldName:      StringValue("春季特卖"),
		FieldProgress:  IntValue(75),
		FieldStartDate: DateValue(date(2024, 3, 1)),
		FieldEndDate:   NullDateValue(),
	}}
	b, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	var got Row
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	for f, want := range row.Cells {
		if got.Cells[f].String() != want.String() || got.Cells[f].Kind != want.Kind {
			t.Errorf("字段 %s 往返后不一致: %v vs %v", f, want, got.Cells[f])
		}
	}
}
