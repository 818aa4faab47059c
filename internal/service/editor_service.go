package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/dto"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/model"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/repository"
)

// ── 编辑模块业务错误 ──

var (
	ErrSessionNotFound = errors.New("编辑会话不存在或已过期")
	ErrRowNotFound     = errors.New("指定行不存在")
	ErrFieldNotFound   = errors.New("指定列不存在")
	ErrRowOpFiltered   = errors.New("过滤模式下禁止增删行")
	ErrImportFiltered  = errors.New("过滤模式下禁止导入")
	ErrNameRequired    = errors.New("活动名称不能为空")
	ErrColumnRequired  = errors.New("列名不能为空")
	ErrColumnExists    = errors.New("同名列已存在")
	ErrColumnProtected = errors.New("受保护列不可删除")
	ErrColumnNotFound  = errors.New("指定列不存在")
	ErrSavePersistFail = errors.New("保存到存储层失败，草稿已保留")
)

// EditorService 草稿/提交编辑协议。
//
// 每个会话打开时从刚加载的已提交副本派生一份草稿（过期读守卫），
// 所有编辑只动草稿；显式保存时：
//   - 非过滤模式：草稿整表 Replace 已提交副本（允许行增删）；
//   - 过滤模式：按行 ID 做部分合并，过滤之外的行不动（行增删被
//     拒绝——防止把整表截断成可见子集的护栏）。
//
// 列增删始终先进草稿，保存时才全表生效（与行编辑同一持久化时机，
// 避免列改了一半落库的意外）。
type EditorService interface {
	OpenSession(ctx context.Context, req *dto.OpenSessionRequest) (*dto.EditorSessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.EditorSessionResponse, error)
	UpdateCell(ctx context.Context, sessionID string, req *dto.UpdateCellRequest) (*dto.EditorSessionResponse, error)
	AddRow(ctx context.Context, sessionID string, req *dto.AddRowRequest) (*dto.EditorSessionResponse, error)
	DeleteRow(ctx context.Context, sessionID, rowID string) (*dto.EditorSessionResponse, error)
	AddColumn(ctx context.Context, sessionID string, req *dto.AddColumnRequest) (*dto.EditorSessionResponse, error)
	RemoveColumn(ctx context.Context, sessionID, name string) (*dto.EditorSessionResponse, error)
	ImportCSV(ctx context.Context, sessionID string, r io.Reader) (*dto.EditorSessionResponse, error)
	Save(ctx context.Context, sessionID string) (*dto.EditorSessionResponse, error)
	Discard(ctx context.Context, sessionID string) error
}

type editorService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEditorService 创建 EditorService 实例
func NewEditorService(repo *repository.Repository, logger *zap.Logger) EditorService {
	return &editorService{repo: repo, logger: logger}
}

func (s *editorService) OpenSession(ctx context.Context, req *dto.OpenSessionRequest) (*dto.EditorSessionResponse, error) {
	draft, err := s.deriveDraft(ctx, req.Selections)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	if err := s.repo.Draft.Save(ctx, sessionID, draft); err != nil {
		s.logger.Error("写入编辑草稿失败", zap.Error(err))
		return nil, err
	}
	return sessionResponse(sessionID, draft), nil
}

// deriveDraft 从刚加载的已提交副本派生草稿。
// 草稿最终会整表写回，基底必须严格加载：软失败出来的空表
// 保存时就是整表截断。
func (s *editorService) deriveDraft(ctx context.Context, selections map[string][]string) (*model.Draft, error) {
	committed, err := s.repo.Table.LoadForUpdate(ctx, model.CollectionPromotions, model.PromotionSchema())
	if err != nil {
		return nil, err
	}

	draft := &model.Draft{
		Collection: model.CollectionPromotions,
		Table:      *committed.Clone(),
	}
	if hasSelections(selections) {
		_, filtered := cascadeFilter(committed, selections)
		rows := make([]model.Row, len(filtered))
		for i, r := range filtered {
			rows[i] = r.Clone()
		}
		draft.Filtered = true
		draft.Selections = selections
		draft.Table.Rows = rows
	}
	return draft, nil
}

func hasSelections(selections map[string][]string) bool {
	for _, vals := range selections {
		if len(vals) > 0 {
			return true
		}
	}
	return false
}

func (s *editorService) GetSession(ctx context.Context, sessionID string) (*dto.EditorSessionResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(sessionID, draft), nil
}

func (s *editorService) UpdateCell(ctx context.Context, sessionID string, req *dto.UpdateCellRequest) (*dto.EditorSessionResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !draft.Table.Schema.Has(req.Field) {
		return nil, ErrFieldNotFound
	}
	idx := draft.Table.FindRow(req.RowID)
	if idx < 0 {
		return nil, ErrRowNotFound
	}

	// 提交值按列类型矫正，坏值降级为字段默认，不报错（与加载边界同一套规则）
	kind := draft.Table.Schema.Kind(req.Field)
	draft.Table.Rows[idx].Cells[req.Field] = model.CoerceValue(kind, model.StringValue(req.Value))

	return s.saveAndRespond(ctx, sessionID, draft)
}

func (s *editorService) AddRow(ctx context.Context, sessionID string, req *dto.AddRowRequest) (*dto.EditorSessionResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft.Filtered {
		return nil, ErrRowOpFiltered
	}
	if strings.TrimSpace(req.Cells[model.FieldName]) == "" {
		return nil, ErrNameRequired
	}

	cells := make(map[string]model.Value, len(draft.Table.Schema.Fields))
	for _, f := range draft.Table.Schema.Fields {
		kind := draft.Table.Schema.Kind(f)
		if raw, ok := req.Cells[f]; ok {
			cells[f] = model.CoerceValue(kind, model.StringValue(raw))
		} else {
			cells[f] = model.CoerceValue(kind, model.StringValue(""))
		}
	}
	// 缺失的字符串字段统一补 "-"
	for _, f := range draft.Table.Schema.Fields {
		if draft.Table.Schema.Kind(f) == model.KindString && cells[f].String() == "" {
			cells[f] = model.StringValue(model.DefaultCellText)
		}
	}
	if !model.IsValidStatus(cells[model.FieldStatus].String()) {
		cells[model.FieldStatus] = model.StringValue(model.StatusPlanning)
	}

	draft.Table.Rows = append(draft.Table.Rows, model.Row{ID: uuid.New().String(), Cells: cells})
	return s.saveAndRespond(ctx, sessionID, draft)
}

func (s *editorService) DeleteRow(ctx context.Context, sessionID, rowID string) (*dto.EditorSessionResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft.Filtered {
		return nil, ErrRowOpFiltered
	}
	idx := draft.Table.FindRow(rowID)
	if idx < 0 {
		return nil, ErrRowNotFound
	}

	draft.Table.Rows = append(draft.Table.Rows[:idx], draft.Table.Rows[idx+1:]...)
	return s.saveAndRespond(ctx, sessionID, draft)
}

func (s *editorService) AddColumn(ctx context.Context, sessionID string, req *dto.AddColumnRequest) (*dto.EditorSessionResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrColumnRequired
	}
	if draft.Table.Schema.Has(name) {
		return nil, ErrColumnExists
	}

	draft.Table.Schema.Fields = append(draft.Table.Schema.Fields, name)
	draft.Table.Schema.Kinds[name] = model.KindString
	for i := range draft.Table.Rows {
		draft.Table.Rows[i].Cells[name] = model.StringValue(model.DefaultCellText)
	}
	return s.saveAndRespond(ctx, sessionID, draft)
}

func (s *editorService) RemoveColumn(ctx context.Context, sessionID, name string) (*dto.EditorSessionResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// 校验全部通过后才动草稿：拒绝的操作不留半截状态
	if model.IsProtectedField(name) {
		return nil, ErrColumnProtected
	}
	if !draft.Table.Schema.Has(name) {
		return nil, ErrColumnNotFound
	}

	fields := make([]string, 0, len(draft.Table.Schema.Fields))
	for _, f := range draft.Table.Schema.Fields {
		if f != name {
			fields = append(fields, f)
		}
	}
	draft.Table.Schema.Fields = fields
	delete(draft.Table.Schema.Kinds, name)
	for i := range draft.Table.Rows {
		delete(draft.Table.Rows[i].Cells, name)
	}
	return s.saveAndRespond(ctx, sessionID, draft)
}

func (s *editorService) ImportCSV(ctx context.Context, sessionID string, r io.Reader) (*dto.EditorSessionResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft.Filtered {
		// 导入整体替换草稿，与行增删同理，过滤模式下一律拒绝
		return nil, ErrImportFiltered
	}

	table, err := ParsePromotionCSV(r)
	if err != nil {
		return nil, err
	}
	draft.Table = *table

	return s.saveAndRespond(ctx, sessionID, draft)
}

func (s *editorService) Save(ctx context.Context, sessionID string) (*dto.EditorSessionResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if draft.Filtered {
		err = s.repo.Table.PartialUpdate(ctx, draft.Collection, draft.Table.Schema, draft.Table.Rows)
	} else {
		err = s.repo.Table.Replace(ctx, draft.Collection, &draft.Table)
	}
	if err != nil {
		// 保存失败：草稿原样保留，用户可以重试而不必重新录入
		s.logger.Error("保存编辑草稿到存储层失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSavePersistFail, err)
	}

	// 保存成功后从最新已提交副本重新派生草稿，会话继续可用
	fresh, err := s.deriveDraft(ctx, draft.Selections)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Draft.Save(ctx, sessionID, fresh); err != nil {
		s.logger.Error("刷新编辑草稿失败", zap.Error(err))
		return nil, err
	}
	return sessionResponse(sessionID, fresh), nil
}

func (s *editorService) Discard(ctx context.Context, sessionID string) error {
	return s.repo.Draft.Delete(ctx, sessionID)
}

// ── 辅助函数 ──

func (s *editorService) getDraft(ctx context.Context, sessionID string) (*model.Draft, error) {
	draft, err := s.repo.Draft.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("读取编辑草稿失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return draft, nil
}

func (s *editorService) saveAndRespond(ctx context.Context, sessionID string, draft *model.Draft) (*dto.EditorSessionResponse, error) {
	if err := s.repo.Draft.Save(ctx, sessionID, draft); err != nil {
		s.logger.Error("写入编辑草稿失败", zap.Error(err))
		return nil, err
	}
	return sessionResponse(sessionID, draft), nil
}

func sessionResponse(sessionID string, draft *model.Draft) *dto.EditorSessionResponse {
	resp := &dto.EditorSessionResponse{
		SessionID: sessionID,
		Filtered:  draft.Filtered,
		Fields:    draft.Table.Schema.Fields,
		Rows:      make([]dto.RowData, 0, len(draft.Table.Rows)),
	}
	for _, r := range draft.Table.Rows {
		resp.Rows = append(resp.Rows, rowData(&draft.Table.Schema, r))
	}
	return resp
}
