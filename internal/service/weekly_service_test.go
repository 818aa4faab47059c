package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/dong641/R-CG-Promotion-Dashboard/internal/dto"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/model"
	"github.com/dong641/R-CG-Promotion-Dashboard/internal/repository"
)

// ── 测试辅助 ──

func setupTestWeeklyService() (WeeklyService, *mockTableRepo) {
	tableRepo := newMockTableRepo()
	repo := &repository.Repository{Table: tableRepo, Draft: newMockDraftRepo()}
	svc := NewWeeklyService(repo, zap.NewNop())
	return svc, tableRepo
}

func weeklyRowCount(tableRepo *mockTableRepo) int {
	t, ok := tableRepo.tables[model.CollectionWeeklyReports]
	if !ok {
		return 0
	}
	return len(t.Rows)
}

func submitReq(weekOf, assignee string, contents ...string) *dto.SubmitWeeklyReportRequest {
	req := &dto.SubmitWeeklyReportRequest{WeekOf: weekOf, Assignee: assignee}
	for _, c := range contents {
		req.Entries = append(req.Entries, dto.WeeklyEntryInput{Category: model.CategoryAchievement, Content: c})
	}
	return req
}

// ── Submit 测试 ──

func TestWeeklyService_Submit_NormalizesToMonday(t *testing.T) {
	svc, _ := setupTestWeeklyService()

	// 2026-08-27 是周四，归一化到周一 2026-08-24
	resp, err := svc.Submit(context.Background(), submitReq("2026-08-27", "Kim", "launch prep done"))
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if resp.WeekStart != "2026-08-24" {
		t.Errorf("期望WeekStart=2026-08-24，实际=%s", resp.WeekStart)
	}
	if resp.WeekEnd != "2026-08-30" {
		t.Errorf("期望WeekEnd=2026-08-30，实际=%s", resp.WeekEnd)
	}
}

func TestWeeklyService_Submit_UpsertReplacesSameKey(t *testing.T) {
	svc, tableRepo := setupTestWeeklyService()
	ctx := context.Background()

	// Kim 先交3条，再交1条：同键整批替换，不累加
	if _, err := svc.Submit(ctx, submitReq("2026-08-24", "Kim", "a", "b", "c")); err != nil {
		t.Fatalf("首次提交应成功: %v", err)
	}
	if weeklyRowCount(tableRepo) != 3 {
		t.Fatalf("期望3行，实际=%d", weeklyRowCount(tableRepo))
	}

	resp, err := svc.Submit(ctx, submitReq("2026-08-24", "Kim", "only one now"))
	if err != nil {
		t.Fatalf("重复提交应成功: %v", err)
	}
	if weeklyRowCount(tableRepo) != 1 {
		t.Errorf("同键重交应整批替换，期望1行，实际=%d", weeklyRowCount(tableRepo))
	}
	if len(resp.Assignees) != 1 || len(resp.Assignees[0].Categories[0].Entries) != 1 {
		t.Errorf("响应应只含替换后的1条，实际=%+v", resp.Assignees)
	}
}

func TestWeeklyService_Submit_OtherKeysUntouched(t *testing.T) {
	svc, tableRepo := setupTestWeeklyService()
	ctx := context.Background()

	svc.Submit(ctx, submitReq("2026-08-24", "Kim", "kim week1"))
	svc.Submit(ctx, submitReq("2026-08-24", "Lee", "lee week1"))
	svc.Submit(ctx, submitReq("2026-08-17", "Kim", "kim week0"))

	// Kim 重交本周：Lee 的条目和 Kim 上周的条目都不动
	if _, err := svc.Submit(ctx, submitReq("2026-08-24", "Kim", "kim week1 v2")); err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if weeklyRowCount(tableRepo) != 3 {
		t.Errorf("期望3行（Lee/上周Kim/新Kim），实际=%d", weeklyRowCount(tableRepo))
	}

	resp, err := svc.GetWeek(ctx, "2026-08-24")
	if err != nil {
		t.Fatalf("GetWeek 应成功: %v", err)
	}
	if len(resp.Assignees) != 2 {
		t.Fatalf("期望2位负责人，实际=%d", len(resp.Assignees))
	}
	// 负责人升序：Kim 在前
	if resp.Assignees[0].Assignee != "Kim" || resp.Assignees[1].Assignee != "Lee" {
		t.Errorf("负责人应升序排列，实际=%+v", resp.Assignees)
	}
	if resp.Assignees[0].Categories[0].Entries[0].Content != "kim week1 v2" {
		t.Error("Kim 的条目应为替换后的版本")
	}
	if resp.Assignees[1].Categories[0].Entries[0].Content != "lee week1" {
		t.Error("Lee 的条目不应受 Kim 重交影响")
	}
}

func TestWeeklyService_Submit_LoadFaultAbortsWithoutTruncation(t *testing.T) {
	svc, tableRepo := setupTestWeeklyService()
	ctx := context.Background()

	svc.Submit(ctx, submitReq("2026-08-24", "Kim", "kim week1"))
	svc.Submit(ctx, submitReq("2026-08-24", "Lee", "lee week1"))
	replacesBefore := tableRepo.replaceCalls

	// 读-改-写中的加载出故障：提交必须中止，而不是把软失败的
	// 空表当基底写回、顺手抹掉 Lee 的条目
	tableRepo.failLoad = errMockStorage
	if _, err := svc.Submit(ctx, submitReq("2026-08-24", "Kim", "kim week1 v2")); !errors.Is(err, errMockStorage) {
		t.Fatalf("加载故障时 Submit 应返回错误，实际: %v", err)
	}
	if tableRepo.replaceCalls != replacesBefore {
		t.Error("加载故障时不应触达 Replace")
	}
	if weeklyRowCount(tableRepo) != 2 {
		t.Errorf("集合应保持2行不动，实际=%d", weeklyRowCount(tableRepo))
	}

	// 故障恢复后重交成功，其他键仍在
	tableRepo.failLoad = nil
	if _, err := svc.Submit(ctx, submitReq("2026-08-24", "Kim", "kim week1 v2")); err != nil {
		t.Fatalf("故障恢复后 Submit 应成功: %v", err)
	}
	if weeklyRowCount(tableRepo) != 2 {
		t.Errorf("期望2行（Kim替换版/Lee原样），实际=%d", weeklyRowCount(tableRepo))
	}
}

func TestWeeklyService_Submit_DiscardsBlankEntries(t *testing.T) {
	svc, tableRepo := setupTestWeeklyService()

	req := submitReq("2026-08-24", "Kim", "real content")
	req.Entries = append(req.Entries, dto.WeeklyEntryInput{Category: model.CategoryPlan, Content: "   "})
	req.Entries = append(req.Entries, dto.WeeklyEntryInput{Category: model.CategoryIssue, Content: ""})

	if _, err := svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if weeklyRowCount(tableRepo) != 1 {
		t.Errorf("空内容条目应被丢弃，期望1行，实际=%d", weeklyRowCount(tableRepo))
	}
}

func TestWeeklyService_Submit_AllBlankRejected(t *testing.T) {
	svc, tableRepo := setupTestWeeklyService()
	ctx := context.Background()

	// 先有一批既有条目
	svc.Submit(ctx, submitReq("2026-08-24", "Kim", "existing"))

	// 全空提交被拒绝，且既有条目不被清掉
	req := submitReq("2026-08-24", "Kim", "  ")
	_, err := svc.Submit(ctx, req)
	if !errors.Is(err, ErrWeeklyEmptySubmission) {
		t.Fatalf("期望 ErrWeeklyEmptySubmission，实际: %v", err)
	}
	if weeklyRowCount(tableRepo) != 1 {
		t.Errorf("被拒绝的提交不应触碰既有条目，实际=%d行", weeklyRowCount(tableRepo))
	}
}

func TestWeeklyService_Submit_Validation(t *testing.T) {
	svc, _ := setupTestWeeklyService()
	ctx := context.Background()

	if _, err := svc.Submit(ctx, submitReq("not-a-date", "Kim", "x")); !errors.Is(err, ErrWeeklyBadDate) {
		t.Errorf("期望 ErrWeeklyBadDate，实际: %v", err)
	}
	if _, err := svc.Submit(ctx, submitReq("2026-08-24", "  ", "x")); !errors.Is(err, ErrWeeklyAssigneeRequired) {
		t.Errorf("期望 ErrWeeklyAssigneeRequired，实际: %v", err)
	}
}

func TestWeeklyService_Submit_NormalizesDefaults(t *testing.T) {
	svc, _ := setupTestWeeklyService()

	req := &dto.SubmitWeeklyReportRequest{
		WeekOf:   "2026-08-24",
		Assignee: "Kim",
		Entries: []dto.WeeklyEntryInput{
			{Category: "bogus", Content: "c1", Status: "bogus", RelatedProject: "  "},
		},
	}
	resp, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	entry := resp.Assignees[0].Categories[0].Entries[0]
	if resp.Assignees[0].Categories[0].Category != model.CategoryAchievement {
		t.Errorf("非法分类应落默认 Achievement，实际=%s", resp.Assignees[0].Categories[0].Category)
	}
	if entry.Status != model.ReportStatusNormal {
		t.Errorf("非法状态应落默认 Normal，实际=%s", entry.Status)
	}
	if entry.RelatedProject != model.DefaultCellText {
		t.Errorf("空关联推广应落 %q，实际=%s", model.DefaultCellText, entry.RelatedProject)
	}
}

// ── 读端测试 ──

func TestWeeklyService_GetWeek_GroupsByCategoryOrder(t *testing.T) {
	svc, _ := setupTestWeeklyService()
	ctx := context.Background()

	req := &dto.SubmitWeeklyReportRequest{
		WeekOf:   "2026-08-24",
		Assignee: "Kim",
		Entries: []dto.WeeklyEntryInput{
			{Category: model.CategoryIssue, Content: "issue 1"},
			{Category: model.CategoryAchievement, Content: "done 1"},
			{Category: model.CategoryAchievement, Content: "done 2"},
			{Category: model.CategoryPlan, Content: "plan 1"},
		},
	}
	if _, err := svc.Submit(ctx, req); err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}

	resp, err := svc.GetWeek(ctx, "2026-08-26")
	if err != nil {
		t.Fatalf("GetWeek 应成功: %v", err)
	}
	cats := resp.Assignees[0].Categories
	if len(cats) != 3 {
		t.Fatalf("期望3个分类组，实际=%d", len(cats))
	}
	// 固定分类顺序 Achievement → Plan → Issue，组内保持提交顺序
	if cats[0].Category != model.CategoryAchievement || cats[1].Category != model.CategoryPlan || cats[2].Category != model.CategoryIssue {
		t.Errorf("分类顺序错误: %+v", cats)
	}
	if cats[0].Entries[0].Content != "done 1" || cats[0].Entries[1].Content != "done 2" {
		t.Error("组内应保持提交顺序")
	}
}

func TestWeeklyService_GetWeek_Empty(t *testing.T) {
	svc, _ := setupTestWeeklyService()

	resp, err := svc.GetWeek(context.Background(), "2026-08-24")
	if err != nil {
		t.Fatalf("空周查询应成功: %v", err)
	}
	if len(resp.Assignees) != 0 {
		t.Errorf("空周应返回空分组，实际=%+v", resp.Assignees)
	}
	if resp.WeekStart != "2026-08-24" || resp.WeekEnd != "2026-08-30" {
		t.Errorf("空周仍应返回周界，实际 %s ~ %s", resp.WeekStart, resp.WeekEnd)
	}
}

func TestWeeklyService_ListWeeks_RecentFirst(t *testing.T) {
	svc, _ := setupTestWeeklyService()
	ctx := context.Background()

	svc.Submit(ctx, submitReq("2026-08-10", "Kim", "w1"))
	svc.Submit(ctx, submitReq("2026-08-24", "Kim", "w3a", "w3b"))
	svc.Submit(ctx, submitReq("2026-08-17", "Lee", "w2"))

	weeks, err := svc.ListWeeks(ctx)
	if err != nil {
		t.Fatalf("ListWeeks 应成功: %v", err)
	}
	if len(weeks) != 3 {
		t.Fatalf("期望3周，实际=%d", len(weeks))
	}
	if weeks[0].WeekStart != "2026-08-24" || weeks[2].WeekStart != "2026-08-10" {
		t.Errorf("周列表应最近在前，实际=%+v", weeks)
	}
	if weeks[0].EntryCount != 2 {
		t.Errorf("期望条目数=2，实际=%d", weeks[0].EntryCount)
	}
}
