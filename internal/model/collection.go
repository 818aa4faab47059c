package model

import "time"

// ── TableStore 持久化模型 ──
//
// 命名集合落到两张表：collection_schemas 存每个集合的列描述符，
// collection_rows 按集合名 + 位置存行（单元格映射序列化为 JSONB）。

// CollectionSchema 集合列描述符 — 对应 collection_schemas
type CollectionSchema struct {
	Name       string    `gorm:"type:varchar(64);primaryKey"        json:"name"`
	Definition string    `gorm:"type:jsonb;not null"                json:"definition"` // 序列化后的 Schema
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CollectionSchema) TableName() string { return "collection_schemas" }

// CollectionRow 集合行 — 对应 collection_rows
type CollectionRow struct {
	RowID      string    `gorm:"type:uuid;primaryKey"               json:"row_id"`
	Collection string    `gorm:"type:varchar(64);not null;index"    json:"collection"`
	Position   int       `gorm:"not null"                           json:"position"`
	Data       string    `gorm:"type:jsonb;not null"                json:"data"` // 序列化后的单元格映射
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CollectionRow) TableName() string { return "collection_rows" }
