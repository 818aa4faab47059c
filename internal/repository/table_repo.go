package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/model"
)

// TableRepository 命名集合的加载 / 全量替换 / 部分合并。
//
// 契约：
//   - Load 软失败：底层资源缺失、损坏或为空时记日志并返回规范空表，
//     绝不把加载失败抛给调用方（“永不挡住界面”策略）；
//     每次 Load 无条件过一遍类型矫正管线。软失败只服务读端：
//     凡是读出来还要整表写回去的路径一律禁用。
//   - LoadForUpdate 严格加载，供读-改-写路径使用：任何加载故障
//     （查询出错、描述符或行数据损坏）都返回错误中止写入——
//     软失败出来的空表一旦被 Replace 写回，整个集合就被截断了。
//     集合尚不存在不算故障，照常返回规范空表。
//   - Replace 原子全量覆盖，last-write-wins，无版本无审计——这是
//     显式契约，不是待修缺陷。
//   - PartialUpdate 按行 ID 合并过滤草稿，行 ID 未匹配的行不动；
//     列增删全表生效。
type TableRepository interface {
	Load(ctx context.Context, name string, fallback model.Schema) (*model.Table, error)
	LoadForUpdate(ctx context.Context, name string, fallback model.Schema) (*model.Table, error)
	Replace(ctx context.Context, name string, t *model.Table) error
	PartialUpdate(ctx context.Context, name string, schema model.Schema, rows []model.Row) error
}

// tableRepo TableRepository 的 GORM 实现
type tableRepo struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTableRepo 创建 TableRepository 实例
func NewTableRepo(db *gorm.DB, logger *zap.Logger) TableRepository {
	return &tableRepo{db: db, logger: logger}
}

func (r *tableRepo) Load(ctx context.Context, name string, fallback model.Schema) (*model.Table, error) {
	return r.load(ctx, name, fallback, false)
}

func (r *tableRepo) LoadForUpdate(ctx context.Context, name string, fallback model.Schema) (*model.Table, error) {
	return r.load(ctx, name, fallback, true)
}

func (r *tableRepo) load(ctx context.Context, name string, fallback model.Schema, strict bool) (*model.Table, error) {
	schema := fallback.Clone()

	var rec model.CollectionSchema
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 集合尚未建立 → 规范空表（严格模式同样放行）
	case err != nil:
		if strict {
			return nil, fmt.Errorf("加载集合 %s 描述符失败: %w", name, err)
		}
		r.logger.Warn("加载集合描述符失败，返回规范空表", zap.String("collection", name), zap.Error(err))
		return model.CoerceTable(&model.Table{Schema: schema}), nil
	default:
		var parsed model.Schema
		if uerr := json.Unmarshal([]byte(rec.Definition), &parsed); uerr != nil || len(parsed.Fields) == 0 {
			if strict {
				// 描述符损坏时写回会用基础 Schema 覆盖自定义列，宁可中止
				return nil, fmt.Errorf("集合 %s 描述符损坏: %w", name, uerr)
			}
			r.logger.Warn("集合描述符损坏，回退到基础 Schema", zap.String("collection", name), zap.Error(uerr))
		} else {
			schema = parsed
		}
	}

	var rowRecs []model.CollectionRow
	if err := r.db.WithContext(ctx).
		Where("collection = ?", name).
		Order("position ASC").
		Find(&rowRecs).Error; err != nil {
		if strict {
			return nil, fmt.Errorf("加载集合 %s 行失败: %w", name, err)
		}
		r.logger.Warn("加载集合行失败，返回规范空表", zap.String("collection", name), zap.Error(err))
		return model.CoerceTable(&model.Table{Schema: schema}), nil
	}

	table := &model.Table{Schema: schema}
	for _, rr := range rowRecs {
		var cells map[string]model.Value
		if err := json.Unmarshal([]byte(rr.Data), &cells); err != nil {
			if strict {
				// 跳过损坏行再写回等于悄悄删行，写路径一律中止
				return nil, fmt.Errorf("集合 %s 行 %s 数据损坏: %w", name, rr.RowID, err)
			}
			// 单行损坏只跳过该行
			r.logger.Warn("集合行数据损坏，已跳过",
				zap.String("collection", name), zap.String("row_id", rr.RowID), zap.Error(err))
			continue
		}
		table.Rows = append(table.Rows, model.Row{ID: rr.RowID, Cells: cells})
	}

	table = model.CoerceTable(table)
	model.EnsureRowIDs(table)
	return table, nil
}

func (r *tableRepo) Replace(ctx context.Context, name string, t *model.Table) error {
	recs, defJSON, err := encodeTable(name, t)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&model.CollectionSchema{Name: name, Definition: defJSON}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection = ?", name).Delete(&model.CollectionRow{}).Error; err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil
		}
		return tx.Create(&recs).Error
	})
}

func (r *tableRepo) PartialUpdate(ctx context.Context, name string, schema model.Schema, rows []model.Row) error {
	// 读-改-写放在一个事务里：严格加载已提交副本 → 纯函数合并 → 整体写回。
	// 软失败加载在这里会把加载故障放大成整表截断，必须用严格变体。
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := &tableRepo{db: tx, logger: r.logger}
		committed, err := inner.LoadForUpdate(ctx, name, schema)
		if err != nil {
			return err
		}
		merged := model.ApplyPartialUpdate(committed, schema, rows)
		return inner.Replace(ctx, name, merged)
	})
}

// encodeTable 把表编码为持久化记录（行 ID 缺失时先补发）
func encodeTable(name string, t *model.Table) ([]model.CollectionRow, string, error) {
	t = t.Clone()
	model.EnsureRowIDs(t)

	def, err := json.Marshal(t.Schema)
	if err != nil {
		return nil, "", err
	}

	recs := make([]model.CollectionRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		data, err := json.Marshal(row.Cells)
		if err != nil {
			return nil, "", err
		}
		recs = append(recs, model.CollectionRow{
			RowID:      row.ID,
			Collection: name,
			Position:   i,
			Data:       string(data),
		})
	}
	return recs, string(def), nil
}
