package service

import (
	"context"
	"errors"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/model"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/repository"
)

// ── Mock TableRepository ──

type mockTableRepo struct {
	tables map[string]*model.Table
	// 置为非 nil 时 Replace/PartialUpdate 直接返回该错误（模拟存储层故障）
	failPersist error
	// 置为非 nil 时 LoadForUpdate 返回该错误（模拟读-改-写路径的加载故障；
	// 软失败的 Load 按契约永不报错，故障时吞掉错误返回空表）
	failLoad error
	// 计数器：验证调用了哪条保存路径
	replaceCalls int
	partialCalls int
}

func newMockTableRepo() *mockTableRepo {
	return &mockTableRepo{tables: make(map[string]*model.Table)}
}

func (m *mockTableRepo) Load(_ context.Context, name string, fallback model.Schema) (*model.Table, error) {
	if m.failLoad != nil {
		// 模拟软失败契约：故障降级为规范空表 + nil 错误
		return &model.Table{Schema: fallback.Clone(), Rows: []model.Row{}}, nil
	}
	t, ok := m.tables[name]
	if !ok {
		return &model.Table{Schema: fallback.Clone(), Rows: []model.Row{}}, nil
	}
	return t.Clone(), nil
}

func (m *mockTableRepo) LoadForUpdate(ctx context.Context, name string, fallback model.Schema) (*model.Table, error) {
	if m.failLoad != nil {
		return nil, m.failLoad
	}
	return m.Load(ctx, name, fallback)
}

func (m *mockTableRepo) Replace(_ context.Context, name string, t *model.Table) error {
	m.replaceCalls++
	if m.failPersist != nil {
		return m.failPersist
	}
	m.tables[name] = t.Clone()
	return nil
}

func (m *mockTableRepo) PartialUpdate(_ context.Context, name string, schema model.Schema, rows []model.Row) error {
	m.partialCalls++
	if m.failPersist != nil {
		return m.failPersist
	}
	if m.failLoad != nil {
		// 真实实现的事务内严格加载在故障时中止合并
		return m.failLoad
	}
	committed, ok := m.tables[name]
	if !ok {
		committed = &model.Table{Schema: schema.Clone(), Rows: []model.Row{}}
	}
	m.tables[name] = model.ApplyPartialUpdate(committed, schema, rows)
	return nil
}

// ── Mock DraftRepository ──

type mockDraftRepo struct {
	drafts  map[string]*model.Draft
	failGet error
}

func newMockDraftRepo() *mockDraftRepo {
	return &mockDraftRepo{drafts: make(map[string]*model.Draft)}
}

func (m *mockDraftRepo) Get(_ context.Context, sessionID string) (*model.Draft, error) {
	if m.failGet != nil {
		return nil, m.failGet
	}
	d, ok := m.drafts[sessionID]
	if !ok {
		return nil, repository.ErrDraftNotFound
	}
	clone := *d
	clone.Table = *d.Table.Clone()
	return &clone, nil
}

func (m *mockDraftRepo) Save(_ context.Context, sessionID string, d *model.Draft) error {
	clone := *d
	clone.Table = *d.Table.Clone()
	m.drafts[sessionID] = &clone
	return nil
}

func (m *mockDraftRepo) Delete(_ context.Context, sessionID string) error {
	delete(m.drafts, sessionID)
	return nil
}

// ── 测试数据 ──

var errMockStorage = errors.New("mock storage down")

// promoRow 按推广表 Schema 造一行
func promoRow(id, name, channel, owner, status string, progress int, start, end string) model.Row {
	return model.Row{
		ID: id,
		Cells: map[string]model.Value{
			model.FieldName:      model.StringValue(name),
			model.FieldChannel:   model.StringValue(channel),
			model.FieldOwner:     model.StringValue(owner),
			model.FieldStatus:    model.StringValue(status),
			model.FieldProgress:  model.IntValue(progress),
			model.FieldStartDate: model.DateValue(model.ParseDate(start)),
			model.FieldEndDate:   model.DateValue(model.ParseDate(end)),
		},
	}
}

// seedPromotions 四行固定样本：
//
//	r1  Spring Sale   Off Trade  Kim  InProgress 75
//	r2  Summer Push   On Trade   Lee  Planning   10
//	r3  Autumn Promo  Off Trade  Kim  Complete   100
//	r4  Winter Event  E-Commerce Park OnHold     40
func seedPromotions(repo *mockTableRepo) {
	repo.tables[model.CollectionPromotions] = &model.Table{
		Schema: model.PromotionSchema(),
		Rows: []model.Row{
			promoRow("r1", "Spring Sale", "Off Trade", "Kim", model.StatusInProgress, 75, "2026-03-02", "2026-03-31"),
			promoRow("r2", "Summer Push", "On Trade", "Lee", model.StatusPlanning, 10, "2026-06-01", "2026-06-30"),
			promoRow("r3", "Autumn Promo", "Off Trade", "Kim", model.StatusComplete, 100, "2025-09-01", "2025-09-30"),
			promoRow("r4", "Winter Event", "E-Commerce", "Park", model.StatusOnHold, 40, "2026-12-01", "2026-12-31"),
		},
	}
}
