package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/model"
	"gesrh/backend/internal/repository"
	"gesrh/backend/internal/wizard"
)

var (
	ErrIndispoNotFound = errors.New("Indisponibilité introuvable")
	ErrIndispoArchived = errors.New("Une indisponibilité archivée ne peut plus être modifiée")
	ErrIndispoICS      = errors.New("Fichier iCalendar invalide")
	ErrForbidden       = errors.New("Accès refusé")
)

// 不可用时间校验提示
const (
	MsgIndispoEmployee    = "L'employé est requis"
	MsgIndispoType        = "Le type doit être leave, weekly_meeting ou other"
	MsgIndispoDates       = "Les dates de début et de fin sont requises"
	MsgIndispoOrder       = "La date de fin doit être postérieure à la date de début"
	MsgIndispoDescription = "La description est requise pour une indisponibilité de type « other »"
)

const icsTimezone = "Europe/Paris"

// indispoRules 校验顺序：员工 → 类型 → 日期 → 先后 → 描述
var indispoRules = wizard.Rules[dto.IndisponibiliteRequest]{
	{Field: "employee_id", Check: func(r dto.IndisponibiliteRequest) string {
		if strings.TrimSpace(r.EmployeeID) == "" {
			return MsgIndispoEmployee
		}
		return ""
	}},
	{Field: "type", Check: func(r dto.IndisponibiliteRequest) string {
		if _, ok := indispoLabels[r.Type]; !ok {
			return MsgIndispoType
		}
		return ""
	}},
	{Field: "date_debut", Check: func(r dto.IndisponibiliteRequest) string {
		if r.DateDebut == nil || r.DateFin == nil {
			return MsgIndispoDates
		}
		return ""
	}},
	{Field: "date_fin", Check: func(r dto.IndisponibiliteRequest) string {
		if !r.DateDebut.Before(*r.DateFin) {
			return MsgIndispoOrder
		}
		return ""
	}},
	{Field: "description", Check: func(r dto.IndisponibiliteRequest) string {
		if r.Type == model.IndispoOther && strings.TrimSpace(r.Description) == "" {
			return MsgIndispoDescription
		}
		return ""
	}},
}

// IndisponibiliteService 不可用时间业务接口
// 普通员工只能访问自己的记录，管理员可访问全部
type IndisponibiliteService interface {
	List(ctx context.Context, caller Caller, req *dto.IndisponibiliteListRequest) ([]model.Indisponibilite, error)
	Get(ctx context.Context, caller Caller, id string) (*model.Indisponibilite, error)
	Create(ctx context.Context, caller Caller, req *dto.IndisponibiliteRequest) (*model.Indisponibilite, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.IndisponibiliteRequest) (*model.Indisponibilite, error)
	Archive(ctx context.Context, caller Caller, id string) error
	Delete(ctx context.Context, caller Caller, id string) error
	ExportICS(ctx context.Context, caller Caller, employeeID string) (string, error)
	ImportICS(ctx context.Context, caller Caller, employeeID string, r io.Reader) (*dto.IndisponibiliteImportResponse, error)
}

type indisponibiliteService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewIndisponibiliteService 创建 IndisponibiliteService 实例
func NewIndisponibiliteService(repo *repository.Repository, logger *zap.Logger) IndisponibiliteService {
	loc, err := time.LoadLocation(icsTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &indisponibiliteService{repo: repo, loc: loc, logger: logger}
}

func (s *indisponibiliteService) List(ctx context.Context, caller Caller, req *dto.IndisponibiliteListRequest) ([]model.Indisponibilite, error) {
	filter := repository.IndisponibiliteFilter{
		EmployeeID:      req.EmployeeID,
		IncludeArchived: req.IncludeArchived,
	}
	if !caller.IsAdmin() {
		filter.EmployeeID = caller.ID
	}

	slots, err := s.repo.Indisponibilite.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询不可用时间失败", zap.Error(err))
		return nil, err
	}
	return slots, nil
}

func (s *indisponibiliteService) Get(ctx context.Context, caller Caller, id string) (*model.Indisponibilite, error) {
	slot, err := s.repo.Indisponibilite.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIndispoNotFound
		}
		s.logger.Error("查询不可用时间失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !caller.IsAdmin() && slot.EmployeeID != caller.ID {
		return nil, ErrForbidden
	}
	return slot, nil
}

func (s *indisponibiliteService) Create(ctx context.Context, caller Caller, req *dto.IndisponibiliteRequest) (*model.Indisponibilite, error) {
	if err := s.validate(ctx, caller, req); err != nil {
		return nil, err
	}

	slot := &model.Indisponibilite{
		EmployeeID:  req.EmployeeID,
		Type:        req.Type,
		DateDebut:   *req.DateDebut,
		DateFin:     *req.DateFin,
		Description: strings.TrimSpace(req.Description),
	}
	slot.CreatedBy = &caller.ID
	slot.UpdatedBy = &caller.ID

	if err := s.repo.Indisponibilite.Create(ctx, slot); err != nil {
		s.logger.Error("创建不可用时间失败", zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func (s *indisponibiliteService) Update(ctx context.Context, caller Caller, id string, req *dto.IndisponibiliteRequest) (*model.Indisponibilite, error) {
	slot, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if slot.Archived {
		return nil, ErrIndispoArchived
	}
	if err := s.validate(ctx, caller, req); err != nil {
		return nil, err
	}

	slot.EmployeeID = req.EmployeeID
	slot.Type = req.Type
	slot.DateDebut = *req.DateDebut
	slot.DateFin = *req.DateFin
	slot.Description = strings.TrimSpace(req.Description)
	slot.UpdatedBy = &caller.ID

	if err := s.repo.Indisponibilite.Update(ctx, slot); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIndispoNotFound
		}
		s.logger.Error("更新不可用时间失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func (s *indisponibiliteService) Archive(ctx context.Context, caller Caller, id string) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Indisponibilite.Archive(ctx, id, caller.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIndispoNotFound
		}
		s.logger.Error("归档不可用时间失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *indisponibiliteService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Indisponibilite.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIndispoNotFound
		}
		s.logger.Error("删除不可用时间失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ExportICS 导出员工未归档的不可用时间
func (s *indisponibiliteService) ExportICS(ctx context.Context, caller Caller, employeeID string) (string, error) {
	slots, err := s.List(ctx, caller, &dto.IndisponibiliteListRequest{EmployeeID: employeeID})
	if err != nil {
		return "", err
	}
	return BuildICS(slots), nil
}

// ImportICS 导入 ICS 文件，所有事件记为 other 类型
func (s *indisponibiliteService) ImportICS(ctx context.Context, caller Caller, employeeID string, r io.Reader) (*dto.IndisponibiliteImportResponse, error) {
	if !caller.IsAdmin() && employeeID != caller.ID {
		return nil, ErrForbidden
	}
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	slots, skipped, err := ParseICS(r, employeeID, s.loc)
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, ErrIndispoICS
	}
	for i := range slots {
		slots[i].CreatedBy = &caller.ID
		slots[i].UpdatedBy = &caller.ID
	}

	if err := s.repo.Indisponibilite.BatchCreate(ctx, slots); err != nil {
		s.logger.Error("批量写入不可用时间失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("ICS 导入完成",
		zap.String("employee_id", employeeID),
		zap.Int("imported", len(slots)),
		zap.Int("skipped", skipped),
	)
	return &dto.IndisponibiliteImportResponse{Imported: len(slots), Skipped: skipped}, nil
}

// ── 内部方法 ──

func (s *indisponibiliteService) validate(ctx context.Context, caller Caller, req *dto.IndisponibiliteRequest) error {
	if err := indispoRules.Validate(*req); err != nil {
		return err
	}
	if !caller.IsAdmin() && req.EmployeeID != caller.ID {
		return ErrForbidden
	}
	return s.ensureEmployee(ctx, req.EmployeeID)
}

func (s *indisponibiliteService) ensureEmployee(ctx context.Context, id string) error {
	if _, err := s.repo.Employee.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", id), zap.Error(err))
		return err
	}
	return nil
}
