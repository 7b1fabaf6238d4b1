package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/model"
	"gesrh/backend/internal/repository"
)

var (
	ErrModuleNotFound     = errors.New("Module introuvable")
	ErrEvaluationNotFound = errors.New("Évaluation introuvable")
	ErrNoAssignedUsers    = errors.New("Aucun utilisateur assigné")
	ErrUserNotAssigned    = errors.New("Utilisateur non assigné à ce module")
)

// CourseService 培训模块业务接口
type CourseService interface {
	ListModules(ctx context.Context) ([]model.Module, error)
	GetModule(ctx context.Context, id string) (*model.Module, error)
	GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error)
	AssignedUsers(ctx context.Context, moduleID string) ([]dto.AssignedUserResponse, error)
	UpdatePresence(ctx context.Context, moduleID string, req *dto.UpdatePresenceRequest) ([]dto.AssignedUserResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) ListModules(ctx context.Context) ([]model.Module, error) {
	modules, err := s.repo.Course.ListModules(ctx)
	if err != nil {
		s.logger.Error("查询模块列表失败", zap.Error(err))
		return nil, err
	}
	return modules, nil
}

func (s *courseService) GetModule(ctx context.Context, id string) (*model.Module, error) {
	m, err := s.repo.Course.GetModule(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		s.logger.Error("查询模块失败", zap.String("module_id", id), zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (s *courseService) GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error) {
	ev, err := s.repo.Course.GetEvaluation(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvaluationNotFound
		}
		s.logger.Error("查询评估失败", zap.String("evaluation_id", id), zap.Error(err))
		return nil, err
	}
	return ev, nil
}

// AssignedUsers 模块学员及出勤；模块存在但无学员时返回 ErrNoAssignedUsers
func (s *courseService) AssignedUsers(ctx context.Context, moduleID string) ([]dto.AssignedUserResponse, error) {
	if _, err := s.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}

	rows, err := s.repo.Course.ListAssignments(ctx, moduleID)
	if err != nil {
		s.logger.Error("查询模块学员失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoAssignedUsers
	}

	out := make([]dto.AssignedUserResponse, 0, len(rows))
	for _, a := range rows {
		u := dto.AssignedUserResponse{ID: a.EmployeeID, Present: a.Present}
		if a.Employee != nil {
			u.Nom = a.Employee.Nom
			u.Prenom = a.Employee.Prenom
			u.Email = a.Employee.Email
		}
		out = append(out, u)
	}
	return out, nil
}

// UpdatePresence 批量更新出勤：任一学员未分配到该模块则整体拒绝
func (s *courseService) UpdatePresence(ctx context.Context, moduleID string, req *dto.UpdatePresenceRequest) ([]dto.AssignedUserResponse, error) {
	if _, err := s.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}

	rows, err := s.repo.Course.ListAssignments(ctx, moduleID)
	if err != nil {
		s.logger.Error("查询模块学员失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, err
	}
	assigned := make(map[string]bool, len(rows))
	for _, a := range rows {
		assigned[a.EmployeeID] = true
	}

	presence := make(map[string]bool, len(req.Presences))
	for _, p := range req.Presences {
		if !assigned[p.UserID] {
			return nil, ErrUserNotAssigned
		}
		presence[p.UserID] = p.Present
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Course.SetPresence(ctx, moduleID, presence)
	})
	if err != nil {
		s.logger.Error("更新出勤失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("出勤已更新", zap.String("module_id", moduleID), zap.Int("count", len(presence)))
	return s.AssignedUsers(ctx, moduleID)
}
