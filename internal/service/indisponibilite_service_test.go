package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/model"
	"gesrh/backend/internal/wizard"
)

var (
	adminCaller = Caller{ID: "admin-1", Role: model.RoleAdmin}
	userCaller  = Caller{ID: "emp-1", Role: model.RoleUser}
)

func setupTestIndispoService() (IndisponibiliteService, *testRepos) {
	repos := newTestRepos()
	repos.employees.add("admin-1", "admin@example.com", model.RoleAdmin)
	repos.employees.add("emp-1", "alice@example.com", model.RoleUser)
	repos.employees.add("emp-2", "bob@example.com", model.RoleUser)
	return NewIndisponibiliteService(repos.repo, testLogger), repos
}

func indispoRequest(employeeID, typ string) *dto.IndisponibiliteRequest {
	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	return &dto.IndisponibiliteRequest{
		EmployeeID:  employeeID,
		Type:        typ,
		DateDebut:   &start,
		DateFin:     &end,
		Description: "Rendez-vous",
	}
}

func TestCreateIndispo_Rules(t *testing.T) {
	svc, _ := setupTestIndispoService()

	cases := []struct {
		name  string
		edit  func(r *dto.IndisponibiliteRequest)
		field string
		msg   string
	}{
		{"缺少员工", func(r *dto.IndisponibiliteRequest) { r.EmployeeID = ""; r.Type = "x" }, "employee_id", MsgIndispoEmployee},
		{"类型非法", func(r *dto.IndisponibiliteRequest) { r.Type = "holiday" }, "type", MsgIndispoType},
		{"缺少日期", func(r *dto.IndisponibiliteRequest) { r.DateFin = nil }, "date_debut", MsgIndispoDates},
		{"结束早于开始", func(r *dto.IndisponibiliteRequest) { *r.DateFin = *r.DateDebut }, "date_fin", MsgIndispoOrder},
		{"other 缺少描述", func(r *dto.IndisponibiliteRequest) { r.Description = "  " }, "description", MsgIndispoDescription},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := indispoRequest("emp-1", model.IndispoOther)
			tc.edit(req)
			_, err := svc.Create(context.Background(), adminCaller, req)
			var verr *wizard.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("期望校验错误，实际 %v", err)
			}
			if verr.Field != tc.field || verr.Message != tc.msg {
				t.Errorf("期望 %s/%q，实际 %s/%q", tc.field, tc.msg, verr.Field, verr.Message)
			}
		})
	}
}

func TestCreateIndispo_StartAfterEndWritesNothing(t *testing.T) {
	svc, repos := setupTestIndispoService()

	req := indispoRequest("emp-1", model.IndispoLeave)
	start, end := *req.DateFin, *req.DateDebut
	req.DateDebut, req.DateFin = &start, &end

	_, err := svc.Create(context.Background(), userCaller, req)
	var verr *wizard.ValidationError
	if !errors.As(err, &verr) || verr.Message != MsgIndispoOrder {
		t.Fatalf("期望 %q，实际 %v", MsgIndispoOrder, err)
	}
	if len(repos.indispos.slots) != 0 {
		t.Errorf("校验失败时不应写入: %+v", repos.indispos.slots)
	}
}

func TestCreateIndispo_LeaveWithoutDescription(t *testing.T) {
	svc, repos := setupTestIndispoService()

	req := indispoRequest("emp-1", model.IndispoLeave)
	req.Description = ""
	slot, err := svc.Create(context.Background(), userCaller, req)
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if _, ok := repos.indispos.slots[slot.ID]; !ok {
		t.Error("记录未持久化")
	}
}

func TestIndispo_OwnershipForUsers(t *testing.T) {
	svc, _ := setupTestIndispoService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, userCaller, indispoRequest("emp-2", model.IndispoLeave)); !errors.Is(err, ErrForbidden) {
		t.Errorf("普通员工不能为他人创建，实际 %v", err)
	}

	other, err := svc.Create(ctx, adminCaller, indispoRequest("emp-2", model.IndispoLeave))
	if err != nil {
		t.Fatalf("管理员创建失败: %v", err)
	}
	mine, err := svc.Create(ctx, userCaller, indispoRequest("emp-1", model.IndispoLeave))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	if _, err := svc.Get(ctx, userCaller, other.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("普通员工不能查看他人记录，实际 %v", err)
	}
	if err := svc.Delete(ctx, userCaller, other.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("普通员工不能删除他人记录，实际 %v", err)
	}

	// 普通员工的过滤条件被强制为本人
	list, err := svc.List(ctx, userCaller, &dto.IndisponibiliteListRequest{EmployeeID: "emp-2"})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("只能看到自己的记录: %+v", list)
	}

	all, _ := svc.List(ctx, adminCaller, &dto.IndisponibiliteListRequest{})
	if len(all) != 2 {
		t.Errorf("管理员应看到全部记录，实际 %d", len(all))
	}
}

func TestIndispo_ArchiveLocksRecord(t *testing.T) {
	svc, _ := setupTestIndispoService()
	ctx := context.Background()

	slot, err := svc.Create(ctx, userCaller, indispoRequest("emp-1", model.IndispoOther))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if err := svc.Archive(ctx, userCaller, slot.ID); err != nil {
		t.Fatalf("归档失败: %v", err)
	}
	if _, err := svc.Update(ctx, userCaller, slot.ID, indispoRequest("emp-1", model.IndispoOther)); !errors.Is(err, ErrIndispoArchived) {
		t.Errorf("归档后不能修改，实际 %v", err)
	}

	list, _ := svc.List(ctx, userCaller, &dto.IndisponibiliteListRequest{})
	if len(list) != 0 {
		t.Errorf("默认不返回已归档记录，实际 %d", len(list))
	}
	list, _ = svc.List(ctx, userCaller, &dto.IndisponibiliteListRequest{IncludeArchived: true})
	if len(list) != 1 {
		t.Errorf("include_archived 应返回已归档记录，实际 %d", len(list))
	}
}

func TestIndispo_UnknownEmployee(t *testing.T) {
	svc, _ := setupTestIndispoService()

	if _, err := svc.Create(context.Background(), adminCaller, indispoRequest("ghost", model.IndispoLeave)); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际 %v", err)
	}
}

func TestIndispo_ICSImportExport(t *testing.T) {
	svc, repos := setupTestIndispoService()
	ctx := context.Background()

	ics := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"SUMMARY:Médecin",
		"DTSTART:20260601T140000Z",
		"DTEND:20260601T150000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"DTSTART:20260602T140000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n") + "\r\n"

	if _, err := svc.ImportICS(ctx, userCaller, "emp-2", strings.NewReader(ics)); !errors.Is(err, ErrForbidden) {
		t.Errorf("普通员工不能为他人导入，实际 %v", err)
	}

	resp, err := svc.ImportICS(ctx, userCaller, "emp-1", strings.NewReader(ics))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if resp.Imported != 1 || resp.Skipped != 1 {
		t.Errorf("导入结果不正确: %+v", resp)
	}
	for _, s := range repos.indispos.slots {
		if s.CreatedBy == nil || *s.CreatedBy != "emp-1" {
			t.Errorf("导入记录应记录创建人: %+v", s)
		}
	}

	out, err := svc.ExportICS(ctx, userCaller, "emp-1")
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if !strings.Contains(out, "SUMMARY:Indisponibilité : Médecin") {
		t.Errorf("导出内容不正确:\n%s", out)
	}
}
