package model

// ── 推广活动表 ──

// 集合名（TableStore 中的命名集合）
const (
	CollectionPromotions    = "promotions"
	CollectionWeeklyReports = "weekly_reports"
)

// 推广活动固定语义字段
const (
	FieldName      = "name"
	FieldChannel   = "channel"
	FieldOwner     = "owner"
	FieldStatus    = "status"
	FieldProgress  = "progressPercent"
	FieldStartDate = "startDate"
	FieldEndDate   = "endDate"
)

// DefaultCellText 新增列 / 缺失字符串字段的统一默认值
const DefaultCellText = "-"

// 推广活动状态枚举
const (
	StatusPlanning   = "Planning"
	StatusPending    = "Pending"
	StatusInProgress = "InProgress"
	StatusComplete   = "Complete"
	StatusOnHold     = "OnHold"
)

// AllStatuses 状态全集（指标分状态计数按此顺序输出）
var AllStatuses = []string{StatusPlanning, StatusPending, StatusInProgress, StatusComplete, StatusOnHold}

// IsValidStatus 是否合法状态值
func IsValidStatus(s string) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// protectedFields 受保护列：Schema 建立后不可删除
var protectedFields = map[string]bool{
	FieldName:     true,
	FieldStatus:   true,
	FieldProgress: true,
}

// IsProtectedField 字段是否受保护
func IsProtectedField(field string) bool { return protectedFields[field] }

// PromotionSchema 推广活动表基础 Schema。
// 管理端可随时在其上增删自定义列（字符串类型）。
func PromotionSchema() Schema {
	return Schema{
		Fields: []string{FieldName, FieldChannel, FieldOwner, FieldStatus, FieldProgress, FieldStartDate, FieldEndDate},
		Kinds: map[string]ValueKind{
			FieldName:      KindString,
			FieldChannel:   KindString,
			FieldOwner:     KindString,
			FieldStatus:    KindString,
			FieldProgress:  KindInt,
			FieldStartDate: KindDate,
			FieldEndDate:   KindDate,
		},
	}
}

// EmptyPromotionTable 规范空表：底层资源缺失 / 不可读 / 为空时的兜底返回
func EmptyPromotionTable() *Table {
	return &Table{Schema: PromotionSchema()}
}
