package service

import (
	"context"
	"errors"
	"testing"

	"gesrh/backend/internal/dataview"
	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/wizard"
	pkgerrors "gesrh/backend/pkg/errors"
)

func setupTestJobService() (JobService, *testRepos) {
	repos := newTestRepos()
	repos.skills.add("s-go", "GO", "Go", "Dev")
	repos.skills.add("s-sql", "SQL", "SQL", "Data")
	svc := NewJobService(repos.repo, newListCache(newFakeCache(), 0, testLogger), 10, testLogger)
	return svc, repos
}

func validJobRequest() *dto.JobRequest {
	return &dto.JobRequest{
		CodeEmploi:  "DEV01",
		NomEmploi:   "Développeur",
		Entite:      "DSI",
		Formation:   "Bac+5",
		Experience:  "3",
		PoidsEmploi: "2",
		Competences: []dto.JobSkillRequest{
			{CompetenceID: "s-go", NiveauRequis: 3},
			{CompetenceID: "s-sql", NiveauRequis: 2},
		},
	}
}

func TestCreateJob_Success(t *testing.T) {
	svc, repos := setupTestJobService()

	resp, err := svc.Create(context.Background(), validJobRequest(), "admin-1")
	if err != nil {
		t.Fatalf("创建岗位失败: %v", err)
	}
	if resp.Experience == nil || *resp.Experience != 3 {
		t.Errorf("experience 应为 3，实际 %v", resp.Experience)
	}
	if resp.PoidsEmploi == nil || *resp.PoidsEmploi != 2 {
		t.Errorf("poidsemploi 应为 2，实际 %v", resp.PoidsEmploi)
	}
	if len(resp.Competences) != 2 || resp.Competences[0].ID != "s-go" {
		t.Errorf("技能顺序应与提交一致: %+v", resp.Competences)
	}
	if _, ok := repos.jobs.jobs[resp.ID]; !ok {
		t.Error("岗位未持久化")
	}
}

func TestCreateJob_OptionalNumbers(t *testing.T) {
	svc, _ := setupTestJobService()

	req := validJobRequest()
	req.Experience = ""
	req.PoidsEmploi = ""
	resp, err := svc.Create(context.Background(), req, "admin-1")
	if err != nil {
		t.Fatalf("创建岗位失败: %v", err)
	}
	if resp.Experience != nil || resp.PoidsEmploi != nil {
		t.Errorf("未填写的数值应为 nil: %v %v", resp.Experience, resp.PoidsEmploi)
	}
}

func TestCreateJob_RuleOrder(t *testing.T) {
	svc, _ := setupTestJobService()

	cases := []struct {
		name  string
		edit  func(r *dto.JobRequest)
		field string
	}{
		{"名称过短优先", func(r *dto.JobRequest) { r.NomEmploi = "ab"; r.CodeEmploi = "x" }, "nom_emploi"},
		{"名称先于非数字经验", func(r *dto.JobRequest) { r.NomEmploi = "ab"; r.Experience = "abc" }, "nom_emploi"},
		{"经验非数字", func(r *dto.JobRequest) { r.Experience = "abc" }, "experience"},
		{"缺少实体", func(r *dto.JobRequest) { r.Entite = " " }, "entite"},
		{"缺少学历", func(r *dto.JobRequest) { r.Formation = "" }, "formation"},
		{"经验为负", func(r *dto.JobRequest) { r.Experience = "-1" }, "experience"},
		{"经验非整数", func(r *dto.JobRequest) { r.Experience = "1.5" }, "experience"},
		{"编码小写", func(r *dto.JobRequest) { r.CodeEmploi = "dev01" }, "codeemploi"},
		{"权重为零", func(r *dto.JobRequest) { r.PoidsEmploi = "0" }, "poidsemploi"},
		{"技能等级非法", func(r *dto.JobRequest) { r.Competences[0].NiveauRequis = 0 }, "competences"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validJobRequest()
			tc.edit(req)
			_, err := svc.Create(context.Background(), req, "admin-1")
			var verr *wizard.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("期望校验错误，实际 %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("期望字段 %s，实际 %s", tc.field, verr.Field)
			}
		})
	}
}

func TestCreateJob_CodeTaken(t *testing.T) {
	svc, _ := setupTestJobService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, validJobRequest(), "admin-1"); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	req := validJobRequest()
	req.NomEmploi = "Autre emploi"
	if _, err := svc.Create(ctx, req, "admin-1"); !errors.Is(err, ErrJobCodeTaken) {
		t.Errorf("期望 ErrJobCodeTaken，实际 %v", err)
	}
}

func TestCreateJob_UnknownSkill(t *testing.T) {
	svc, repos := setupTestJobService()

	req := validJobRequest()
	req.Competences = append(req.Competences, dto.JobSkillRequest{CompetenceID: "s-gone", NiveauRequis: 1})
	if _, err := svc.Create(context.Background(), req, "admin-1"); !errors.Is(err, ErrSkillNotFound) {
		t.Errorf("期望 ErrSkillNotFound，实际 %v", err)
	}
	if len(repos.jobs.jobs) != 0 {
		t.Error("引用不存在的技能时不应写入")
	}
}

func TestCheckCode(t *testing.T) {
	svc, _ := setupTestJobService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validJobRequest(), "admin-1")
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	if ok, _ := svc.CheckCode(ctx, "NEW01", ""); !ok {
		t.Error("未使用的编码应可用")
	}
	if ok, _ := svc.CheckCode(ctx, "DEV01", ""); ok {
		t.Error("已使用的编码不可用")
	}
	if ok, _ := svc.CheckCode(ctx, "DEV01", created.ID); !ok {
		t.Error("编辑自身时编码应可用")
	}
}

func TestUpdateJob(t *testing.T) {
	svc, _ := setupTestJobService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validJobRequest(), "admin-1")
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	req := validJobRequest()
	req.Version = created.Version
	req.Competences = []dto.JobSkillRequest{{CompetenceID: "s-sql", NiveauRequis: 4}}
	updated, err := svc.Update(ctx, created.ID, req, "admin-1")
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if len(updated.Competences) != 1 || updated.Competences[0].Level != 4 {
		t.Errorf("技能应被整体替换: %+v", updated.Competences)
	}

	req.Version = created.Version
	if _, err := svc.Update(ctx, created.ID, req, "admin-1"); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望乐观锁冲突，实际 %v", err)
	}

	if _, err := svc.Update(ctx, "missing", req, "admin-1"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("期望 ErrJobNotFound，实际 %v", err)
	}
}

func TestListJobs_Stats(t *testing.T) {
	svc, _ := setupTestJobService()
	ctx := context.Background()

	for _, j := range []struct{ code, entite string }{{"DEV01", "DSI"}, {"RH001", "RH"}, {"OPS01", "DSI"}} {
		req := validJobRequest()
		req.CodeEmploi = j.code
		req.Entite = j.entite
		if _, err := svc.Create(ctx, req, "admin-1"); err != nil {
			t.Fatalf("创建 %s 失败: %v", j.code, err)
		}
	}

	page, err := svc.List(ctx, dataview.Query{Category: "RH"})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if page.Stats["total"] != 1 || page.Stats["entites"] != 2 || page.Stats["competences"] != 2 {
		t.Errorf("统计不正确: %+v", page.Stats)
	}
}

func TestListJobs_CreateRefreshesCachedList(t *testing.T) {
	svc, _ := setupTestJobService()
	ctx := context.Background()

	seed := validJobRequest()
	seed.CodeEmploi = "RH001"
	if _, err := svc.Create(ctx, seed, "admin-1"); err != nil {
		t.Fatalf("创建岗位失败: %v", err)
	}

	before, err := svc.List(ctx, dataview.Query{})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}

	req := &dto.JobRequest{CodeEmploi: "DEV01", NomEmploi: "Developer", Entite: "IT", Formation: "BSc"}
	created, err := svc.Create(ctx, req, "admin-1")
	if err != nil {
		t.Fatalf("无技能岗位创建失败: %v", err)
	}

	after, err := svc.List(ctx, dataview.Query{})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(after.Items) != len(before.Items)+1 {
		t.Fatalf("新建后列表应多一行: %d -> %d", len(before.Items), len(after.Items))
	}
	if after.Stats["total"] != before.Stats["total"]+1 {
		t.Errorf("total 应加 1: %v -> %v", before.Stats["total"], after.Stats["total"])
	}
	found := false
	for _, j := range after.Items {
		if j.ID == created.ID && j.CodeEmploi == "DEV01" && len(j.Competences) == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("列表中缺少新建岗位: %+v", after.Items)
	}
}

func TestGroupedSkillsAndDelete(t *testing.T) {
	svc, _ := setupTestJobService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validJobRequest(), "admin-1")
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	groups, err := svc.GroupedSkills(ctx, created.ID)
	if err != nil {
		t.Fatalf("分组失败: %v", err)
	}
	if len(groups) != 2 || groups[0].Level != 2 {
		t.Errorf("分组应按等级升序: %+v", groups)
	}

	if err := svc.Delete(ctx, created.ID, "admin-1"); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("删除后应不存在，实际 %v", err)
	}
}
