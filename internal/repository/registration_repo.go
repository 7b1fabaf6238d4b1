package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gesrh/backend/internal/model"
)

// RegistrationRepository 报名数据访问接口
type RegistrationRepository interface {
	Create(ctx context.Context, reg *model.Registration) error
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	ListByTarget(ctx context.Context, cycleProgramID, employeeID string) ([]model.Registration, error)
	ListPending(ctx context.Context) ([]model.Registration, error)
	UpdateStatus(ctx context.Context, id, status, decidedBy string) error
	UpdateModuleStatus(ctx context.Context, id, moduleID, status, decidedBy string) error
}

// registrationRepo RegistrationRepository 的 GORM 实现
type registrationRepo struct {
	db *gorm.DB
}

// NewRegistrationRepo 创建 RegistrationRepository 实例
func NewRegistrationRepo(db *gorm.DB) RegistrationRepository {
	return &registrationRepo{db: db}
}

func preloadRegistration(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Employee").
		Preload("CycleProgram").
		Preload("Modules").
		Preload("Modules.Module")
}

// Create 写入报名及其模块行（需在事务中调用）
func (r *registrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Employee", "CycleProgram", "Modules").Create(reg).Error; err != nil {
		return translateError(err)
	}
	if len(reg.Modules) == 0 {
		return nil
	}
	for i := range reg.Modules {
		reg.Modules[i].RegistrationID = reg.ID
	}
	return translateError(db.Omit("Module").Create(&reg.Modules).Error)
}

func (r *registrationRepo) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	var reg model.Registration
	if err := preloadRegistration(r.db.WithContext(ctx)).Where("id = ?", id).First(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepo) ListByTarget(ctx context.Context, cycleProgramID, employeeID string) ([]model.Registration, error) {
	var regs []model.Registration
	db := preloadRegistration(r.db.WithContext(ctx)).Where("cycle_program_id = ?", cycleProgramID)
	if employeeID != "" {
		db = db.Where("employee_id = ?", employeeID)
	}
	err := db.Order("created_at DESC").Find(&regs).Error
	return regs, err
}

// ListPending 待审批列表：整体待定，或 program 报名中仍有待定模块
func (r *registrationRepo) ListPending(ctx context.Context) ([]model.Registration, error) {
	var regs []model.Registration
	err := preloadRegistration(r.db.WithContext(ctx)).
		Where("status = ? OR EXISTS (SELECT 1 FROM registration_modules rm WHERE rm.registration_id = registrations.id AND rm.status = ?)",
			"pending", "pending").
		Order("created_at ASC").
		Find(&regs).Error
	return regs, err
}

func (r *registrationRepo) UpdateStatus(ctx context.Context, id, status, decidedBy string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Registration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepo) UpdateModuleStatus(ctx context.Context, id, moduleID, status, decidedBy string) error {
	now := time.Now()
	db := r.db.WithContext(ctx)
	result := db.Model(&model.RegistrationModule{}).
		Where("registration_id = ? AND module_id = ?", id, moduleID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.Model(&model.Registration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"decided_by": decidedBy,
			"decided_at": now,
			"updated_at": now,
		}).Error
}
