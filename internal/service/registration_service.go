package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/model"
	"gesrh/backend/internal/repository"
	"gesrh/backend/internal/workflow"
	pkgerrors "gesrh/backend/pkg/errors"
)

var (
	ErrTargetNotFound       = errors.New("Cycle ou programme introuvable")
	ErrRegistrationNotFound = errors.New("Inscription introuvable")
	ErrAlreadyRegistered    = errors.New("Cet employé est déjà inscrit à ce parcours")
)

// RegistrationService 培训报名与审批业务接口
type RegistrationService interface {
	ListTargets(ctx context.Context) ([]model.CycleProgram, error)
	GetTarget(ctx context.Context, id string) (*model.CycleProgram, error)
	ListRegistrations(ctx context.Context, caller Caller, targetID, userID string) ([]dto.RegistrationResponse, error)
	Register(ctx context.Context, caller Caller, targetID string, req *dto.RegisterRequest) (*dto.RegistrationResponse, error)
	Pending(ctx context.Context) ([]dto.RegistrationResponse, error)
	Decide(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.RegistrationResponse, error)
	DecideBatch(ctx context.Context, caller Caller, req *dto.BatchDecisionRequest) (*dto.BatchDecisionResponse, error)
}

type registrationService struct {
	repo   *repository.Repository
	feed   *PendingFeed
	logger *zap.Logger
}

// NewRegistrationService 创建 RegistrationService 实例；feed 可为 nil
func NewRegistrationService(repo *repository.Repository, feed *PendingFeed, logger *zap.Logger) RegistrationService {
	return &registrationService{repo: repo, feed: feed, logger: logger}
}

func (s *registrationService) ListTargets(ctx context.Context) ([]model.CycleProgram, error) {
	cps, err := s.repo.CycleProgram.List(ctx)
	if err != nil {
		s.logger.Error("查询周期/项目列表失败", zap.Error(err))
		return nil, err
	}
	return cps, nil
}

func (s *registrationService) GetTarget(ctx context.Context, id string) (*model.CycleProgram, error) {
	cp, err := s.repo.CycleProgram.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		s.logger.Error("查询周期/项目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return cp, nil
}

// ListRegistrations 某个周期/项目的报名；普通员工只看到自己的报名
func (s *registrationService) ListRegistrations(ctx context.Context, caller Caller, targetID, userID string) ([]dto.RegistrationResponse, error) {
	if _, err := s.GetTarget(ctx, targetID); err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		userID = caller.ID
	}

	regs, err := s.repo.Registration.ListByTarget(ctx, targetID, userID)
	if err != nil {
		s.logger.Error("查询报名列表失败", zap.String("target_id", targetID), zap.Error(err))
		return nil, err
	}
	return toRegistrationResponses(regs), nil
}

// ═══════════════════════════════════════════════════════════
// Register — 报名
// ═══════════════════════════════════════════════════════════
//
// 规则：
//   - 只有管理员可以替其他员工报名
//   - program：至少选择一个属于该项目的模块，每个模块生成一行待审批状态
//   - cycle：整体报名，不生成模块行
//   - 同一员工对同一周期/项目只能报名一次

func (s *registrationService) Register(ctx context.Context, caller Caller, targetID string, req *dto.RegisterRequest) (*dto.RegistrationResponse, error) {
	// 1. 确定报名人
	employeeID := caller.ID
	if req.UserID != "" && req.UserID != caller.ID {
		if !caller.IsAdmin() {
			return nil, ErrForbidden
		}
		employeeID = req.UserID
	}
	if _, err := s.repo.Employee.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}

	// 2. 校验模块选择
	cp, err := s.GetTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	enrollment, err := workflow.Enroll(workflow.Target{
		ID:        cp.ID,
		Type:      workflow.TargetType(cp.Type),
		ModuleIDs: cp.ModuleIDs(),
	}, req.ModuleIDs)
	if err != nil {
		return nil, err
	}

	// 3. 写入报名
	reg := &model.Registration{
		EmployeeID:     employeeID,
		CycleProgramID: cp.ID,
		Status:         string(workflow.StatusPending),
	}
	for _, id := range enrollment.ModuleIDs {
		reg.Modules = append(reg.Modules, model.RegistrationModule{
			ModuleID: id,
			Status:   string(workflow.StatusPending),
		})
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Registration.Create(ctx, reg)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, ErrAlreadyRegistered
		}
		s.logger.Error("创建报名失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("报名已创建",
		zap.String("registration_id", reg.ID),
		zap.String("employee_id", employeeID),
		zap.String("target_id", cp.ID),
		zap.String("type", cp.Type),
		zap.Int("modules", len(reg.Modules)),
	)
	s.feed.Notify("registered")
	return s.get(ctx, reg.ID)
}

func (s *registrationService) Pending(ctx context.Context) ([]dto.RegistrationResponse, error) {
	regs, err := s.repo.Registration.ListPending(ctx)
	if err != nil {
		s.logger.Error("查询待审批报名失败", zap.Error(err))
		return nil, err
	}
	return toRegistrationResponses(regs), nil
}

// Decide 审批单个报名（module_id 非空时为模块级审批）
func (s *registrationService) Decide(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.RegistrationResponse, error) {
	if err := s.decide(ctx, caller.ID, id, req.ModuleID, workflow.Status(req.Status)); err != nil {
		return nil, err
	}
	s.feed.Notify("decided")
	return s.get(ctx, id)
}

// DecideBatch 批量审批：逐行推进 pending → in_flight → settled | error
// 失败的行带着错误信息留在待审批视图中，不影响其他行
func (s *registrationService) DecideBatch(ctx context.Context, caller Caller, req *dto.BatchDecisionRequest) (*dto.BatchDecisionResponse, error) {
	keys := make([]string, len(req.Decisions))
	for i, d := range req.Decisions {
		keys[i] = decisionKey(d.RegistrationID, d.ModuleID)
	}
	wl := workflow.NewWorklist(keys...)

	settled := 0
	for i, d := range req.Decisions {
		if err := wl.Begin(keys[i]); err != nil {
			// 同一行重复提交
			continue
		}
		status := workflow.Status(d.Status)
		if err := s.decide(ctx, caller.ID, d.RegistrationID, d.ModuleID, status); err != nil {
			_ = wl.Fail(keys[i], err)
			continue
		}
		_ = wl.Settle(keys[i], status)
		settled++
	}

	if settled > 0 {
		s.feed.Notify("decided")
	}
	s.logger.Info("批量审批完成",
		zap.String("caller", caller.ID),
		zap.Int("total", len(req.Decisions)),
		zap.Int("settled", settled),
	)
	return &dto.BatchDecisionResponse{Rows: wl.Rows(), Pending: wl.Pending()}, nil
}

// ── 内部方法 ──

// decide 在状态机上校验审批，持久化后为被接受的模块分配学员
func (s *registrationService) decide(ctx context.Context, deciderID, id, moduleID string, status workflow.Status) error {
	reg, err := s.repo.Registration.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistrationNotFound
		}
		s.logger.Error("查询报名失败", zap.String("registration_id", id), zap.Error(err))
		return err
	}

	cp, err := s.GetTarget(ctx, reg.CycleProgramID)
	if err != nil {
		return err
	}

	agg := toWorkflowRegistration(reg, cp.Type)
	if moduleID == "" {
		err = agg.Decide(status)
	} else {
		err = agg.DecideModule(moduleID, status)
	}
	if err != nil {
		return err
	}

	// 接受时的学员分配：cycle 整体接受分配全部模块，program 仅分配被接受的模块
	var assign []string
	if status == workflow.StatusAccepted {
		switch {
		case moduleID != "":
			assign = []string{moduleID}
		case agg.TargetType == workflow.TargetCycle:
			assign = cp.ModuleIDs()
		}
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if moduleID == "" {
			if err := tx.Registration.UpdateStatus(ctx, id, string(status), deciderID); err != nil {
				return err
			}
		} else {
			if err := tx.Registration.UpdateModuleStatus(ctx, id, moduleID, string(status), deciderID); err != nil {
				return err
			}
		}
		for _, m := range assign {
			if err := tx.Course.Assign(ctx, m, []string{reg.EmployeeID}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistrationNotFound
		}
		s.logger.Error("保存审批结果失败", zap.String("registration_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("报名已审批",
		zap.String("registration_id", id),
		zap.String("module_id", moduleID),
		zap.String("status", string(status)),
		zap.String("decided_by", deciderID),
		zap.Int("assigned_modules", len(assign)),
	)
	return nil
}

func (s *registrationService) get(ctx context.Context, id string) (*dto.RegistrationResponse, error) {
	reg, err := s.repo.Registration.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		s.logger.Error("查询报名失败", zap.String("registration_id", id), zap.Error(err))
		return nil, err
	}
	resp := toRegistrationResponse(reg)
	return &resp, nil
}

func decisionKey(registrationID, moduleID string) string {
	if moduleID == "" {
		return registrationID
	}
	return registrationID + "/" + moduleID
}

func toWorkflowRegistration(reg *model.Registration, targetType string) *workflow.Registration {
	agg := &workflow.Registration{
		ID:         reg.ID,
		TargetType: workflow.TargetType(targetType),
		Status:     workflow.Status(reg.Status),
	}
	for _, m := range reg.Modules {
		agg.Modules = append(agg.Modules, workflow.ModuleStatus{
			ModuleID: m.ModuleID,
			Status:   workflow.Status(m.Status),
		})
	}
	return agg
}

func toRegistrationResponse(reg *model.Registration) dto.RegistrationResponse {
	targetType := ""
	resp := dto.RegistrationResponse{
		ID:        reg.ID,
		Status:    reg.Status,
		Modules:   make([]dto.RegistrationModuleResponse, 0, len(reg.Modules)),
		CreatedAt: reg.CreatedAt,
		DecidedAt: reg.DecidedAt,
	}
	if reg.Employee != nil {
		resp.User = &dto.RegistrationUser{
			ID:     reg.Employee.ID,
			Nom:    reg.Employee.Nom,
			Prenom: reg.Employee.Prenom,
			Email:  reg.Employee.Email,
		}
	}
	if reg.CycleProgram != nil {
		targetType = reg.CycleProgram.Type
		resp.CycleProgram = &dto.RegistrationTarget{
			ID:    reg.CycleProgram.ID,
			Titre: reg.CycleProgram.Titre,
			Type:  reg.CycleProgram.Type,
		}
	}
	for _, m := range reg.Modules {
		item := dto.RegistrationModuleResponse{ModuleID: m.ModuleID, Status: m.Status}
		if m.Module != nil {
			item.Titre = m.Module.Titre
		}
		resp.Modules = append(resp.Modules, item)
	}
	resp.Actions = toWorkflowRegistration(reg, targetType).Actions()
	return resp
}

func toRegistrationResponses(regs []model.Registration) []dto.RegistrationResponse {
	out := make([]dto.RegistrationResponse, 0, len(regs))
	for i := range regs {
		out = append(out, toRegistrationResponse(&regs[i]))
	}
	return out
}
