package repository

import (
	"context"

	"gorm.io/gorm"

	"gesrh/backend/internal/model"
)

// CycleProgramRepository 培训周期 / 项目数据访问接口
type CycleProgramRepository interface {
	List(ctx context.Context) ([]model.CycleProgram, error)
	GetByID(ctx context.Context, id string) (*model.CycleProgram, error)
}

// cycleProgramRepo CycleProgramRepository 的 GORM 实现
type cycleProgramRepo struct {
	db *gorm.DB
}

// NewCycleProgramRepo 创建 CycleProgramRepository 实例
func NewCycleProgramRepo(db *gorm.DB) CycleProgramRepository {
	return &cycleProgramRepo{db: db}
}

func (r *cycleProgramRepo) List(ctx context.Context) ([]model.CycleProgram, error) {
	var cps []model.CycleProgram
	if err := r.db.WithContext(ctx).Order("date_debut ASC NULLS LAST, titre ASC").Find(&cps).Error; err != nil {
		return nil, err
	}
	for i := range cps {
		modules, err := r.modules(ctx, cps[i].ID)
		if err != nil {
			return nil, err
		}
		cps[i].Modules = modules
	}
	return cps, nil
}

func (r *cycleProgramRepo) GetByID(ctx context.Context, id string) (*model.CycleProgram, error) {
	var cp model.CycleProgram
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cp).Error; err != nil {
		return nil, err
	}
	modules, err := r.modules(ctx, id)
	if err != nil {
		return nil, err
	}
	cp.Modules = modules
	return &cp, nil
}

func (r *cycleProgramRepo) modules(ctx context.Context, cycleProgramID string) ([]model.Module, error) {
	var modules []model.Module
	err := r.db.WithContext(ctx).
		Joins("JOIN cycle_program_modules cpm ON cpm.module_id = modules.id").
		Where("cpm.cycle_program_id = ?", cycleProgramID).
		Order("cpm.position ASC").
		Find(&modules).Error
	return modules, err
}
