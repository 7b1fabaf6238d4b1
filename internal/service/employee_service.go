package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gesrh/backend/internal/competency"
	"gesrh/backend/internal/dataview"
	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/model"
	"gesrh/backend/internal/repository"
	"gesrh/backend/internal/wizard"
	pkgerrors "gesrh/backend/pkg/errors"
)

var (
	ErrEmployeeExists     = errors.New("Un employé avec ce matricule ou cet e-mail existe déjà")
	ErrInvalidHireDate    = errors.New("La date d'embauche doit être au format AAAA-MM-JJ")
	ErrCompetencyNotFound = errors.New("Compétence non associée à cet employé")
	ErrCannotDeleteSelf   = errors.New("Vous ne pouvez pas supprimer votre propre compte")
)

const (
	dateLayout           = "2006-01-02"
	employeeEmptyMessage = "Aucun employé trouvé"
)

// EmployeeService 员工业务接口
type EmployeeService interface {
	List(ctx context.Context, q dataview.Query) (*dataview.Page[dto.EmployeeResponse], error)
	Get(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	Create(ctx context.Context, req *dto.EmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	Update(ctx context.Context, id string, req *dto.EmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	GroupedCompetencies(ctx context.Context, id string) (competency.Groups, error)
	SetCompetencyLevel(ctx context.Context, id, skillID string, level int) error
}

type employeeService struct {
	repo     *repository.Repository
	cache    *listCache
	pageSize int
	logger   *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, cache *listCache, pageSize int, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, cache: cache, pageSize: pageSize, logger: logger}
}

// employeeView 员工列表页：分类为所属实体
func (s *employeeService) employeeView() *dataview.View[dto.EmployeeResponse] {
	return dataview.New(dataview.Config[dto.EmployeeResponse]{
		PageSize: s.pageSize,
		Category: func(e dto.EmployeeResponse) string { return e.Entite },
		Stats: func(all, filtered []dto.EmployeeResponse) dataview.Stats {
			return dataview.Stats{
				"total":       len(filtered),
				"entites":     dataview.Distinct(all, func(e dto.EmployeeResponse) string { return e.Entite }),
				"competences": dataview.Sum(filtered, func(e dto.EmployeeResponse) int { return len(e.Competences) }),
			}
		},
		EmptyMessage: employeeEmptyMessage,
	})
}

func (s *employeeService) List(ctx context.Context, q dataview.Query) (*dataview.Page[dto.EmployeeResponse], error) {
	items, err := cachedList(ctx, s.cache, cacheKindEmployees, q.Search, func() ([]dto.EmployeeResponse, error) {
		emps, err := s.repo.Employee.List(ctx, q.Search)
		if err != nil {
			s.logger.Error("查询员工列表失败", zap.Error(err))
			return nil, err
		}
		out := make([]dto.EmployeeResponse, 0, len(emps))
		for i := range emps {
			out = append(out, toEmployeeResponse(&emps[i]))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	page := s.employeeView().Render(items, q)
	return &page, nil
}

func (s *employeeService) Get(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	emp, err := s.getEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(emp)
	return &resp, nil
}

func (s *employeeService) Create(ctx context.Context, req *dto.EmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	emp := &model.Employee{}
	comps, err := s.prepare(ctx, req, emp)
	if err != nil {
		return nil, err
	}
	emp.CreatedBy = &callerID
	emp.UpdatedBy = &callerID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Employee.Create(ctx, emp); err != nil {
			return err
		}
		return tx.Employee.ReplaceCompetencies(ctx, emp.ID, comps)
	})
	if err != nil {
		return nil, s.writeError("创建员工失败", err)
	}

	s.cache.invalidate(ctx, cacheKindEmployees, cacheKindSkills)
	s.logger.Info("员工已创建", zap.String("employee_id", emp.ID), zap.String("caller", callerID))
	return s.Get(ctx, emp.ID)
}

func (s *employeeService) Update(ctx context.Context, id string, req *dto.EmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	emp, err := s.getEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	comps, err := s.prepare(ctx, req, emp)
	if err != nil {
		return nil, err
	}
	if req.Version > 0 {
		emp.Version = req.Version
	}
	emp.UpdatedBy = &callerID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Employee.Update(ctx, emp); err != nil {
			return err
		}
		return tx.Employee.ReplaceCompetencies(ctx, emp.ID, comps)
	})
	if err != nil {
		return nil, s.writeError("更新员工失败", err)
	}

	s.cache.invalidate(ctx, cacheKindEmployees, cacheKindSkills)
	return s.Get(ctx, emp.ID)
}

func (s *employeeService) Delete(ctx context.Context, id, callerID string) error {
	if id == callerID {
		return ErrCannotDeleteSelf
	}
	if err := s.repo.Employee.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		s.logger.Error("删除员工失败", zap.String("employee_id", id), zap.Error(err))
		return err
	}

	s.cache.invalidate(ctx, cacheKindEmployees, cacheKindSkills)
	s.logger.Info("员工已删除", zap.String("employee_id", id), zap.String("caller", callerID))
	return nil
}

func (s *employeeService) GroupedCompetencies(ctx context.Context, id string) (competency.Groups, error) {
	emp, err := s.getEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	return competency.GroupByLevel(emp.CompetencyItems()), nil
}

func (s *employeeService) SetCompetencyLevel(ctx context.Context, id, skillID string, level int) error {
	if !competency.ValidLevel(level) {
		return competency.ErrInvalidLevel
	}
	if err := s.repo.Employee.SetCompetencyLevel(ctx, id, skillID, level); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompetencyNotFound
		}
		s.logger.Error("修改技能等级失败", zap.String("employee_id", id), zap.Error(err))
		return err
	}
	s.cache.invalidate(ctx, cacheKindEmployees)
	return nil
}

// ── 内部方法 ──

func (s *employeeService) getEmployee(ctx context.Context, id string) (*model.Employee, error) {
	emp, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", id), zap.Error(err))
		return nil, err
	}
	return emp, nil
}

// prepare 校验请求并写入 emp 字段，返回去重后的技能行
func (s *employeeService) prepare(ctx context.Context, req *dto.EmployeeRequest, emp *model.Employee) ([]model.EmployeeCompetency, error) {
	refs := make([]wizard.SkillRef, 0, len(req.Competences))
	for _, c := range req.Competences {
		refs = append(refs, wizard.SkillRef{ID: c.CompetenceID, Level: c.Niveau})
	}

	// 1. 有序规则校验
	form := wizard.EmployeeForm{
		Matricule:    req.Matricule,
		Nom:          req.Nom,
		Prenom:       req.Prenom,
		Email:        req.Email,
		Role:         req.Role,
		Competencies: refs,
	}
	if err := wizard.EmployeeRules.Validate(form); err != nil {
		return nil, err
	}

	// 2. 日期与关联实体
	var hired *time.Time
	if req.DateEmbauche != nil && strings.TrimSpace(*req.DateEmbauche) != "" {
		t, err := time.Parse(dateLayout, strings.TrimSpace(*req.DateEmbauche))
		if err != nil {
			return nil, ErrInvalidHireDate
		}
		hired = &t
	}

	var jobID *string
	if req.JobID != nil && *req.JobID != "" {
		if _, err := s.repo.Job.GetByID(ctx, *req.JobID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrJobNotFound
			}
			return nil, err
		}
		jobID = req.JobID
	}

	refs = wizard.Dedupe(refs)
	if err := ensureSkillsExist(ctx, s.repo, refs); err != nil {
		return nil, err
	}

	// 3. 写入字段
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	emp.Matricule = strings.TrimSpace(req.Matricule)
	emp.Nom = strings.TrimSpace(req.Nom)
	emp.Prenom = strings.TrimSpace(req.Prenom)
	emp.Email = normalizeEmail(req.Email)
	emp.Role = role
	emp.Entite = strings.TrimSpace(req.Entite)
	emp.JobID = jobID
	emp.DateEmbauche = hired

	comps := make([]model.EmployeeCompetency, 0, len(refs))
	for _, r := range refs {
		comps = append(comps, model.EmployeeCompetency{CompetenceID: r.ID, NiveauAcquis: r.Level})
	}
	return comps, nil
}

func (s *employeeService) writeError(msg string, err error) error {
	switch {
	case errors.Is(err, pkgerrors.ErrConflict):
		return ErrEmployeeExists
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		return err
	}
	s.logger.Error(msg, zap.Error(err))
	return err
}

// ensureSkillsExist 确认引用的技能都存在（未删除）
func ensureSkillsExist(ctx context.Context, repo *repository.Repository, refs []wizard.SkillRef) error {
	if len(refs) == 0 {
		return nil
	}
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	skills, err := repo.Skill.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(skills) != len(ids) {
		return ErrSkillNotFound
	}
	return nil
}

func toEmployeeResponse(emp *model.Employee) dto.EmployeeResponse {
	resp := dto.EmployeeResponse{
		ID:          emp.ID,
		Matricule:   emp.Matricule,
		Nom:         emp.Nom,
		Prenom:      emp.Prenom,
		Email:       emp.Email,
		Role:        emp.Role,
		Entite:      emp.Entite,
		JobID:       emp.JobID,
		HasPassword: emp.HasPassword(),
		Competences: emp.CompetencyItems(),
		Version:     emp.Version,
	}
	if emp.DateEmbauche != nil {
		resp.DateEmbauche = emp.DateEmbauche.Format(dateLayout)
	}
	return resp
}
