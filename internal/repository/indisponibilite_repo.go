package repository

import (
	"context"

	"gorm.io/gorm"

	"gesrh/backend/internal/model"
)

// IndisponibiliteFilter 列表过滤条件
type IndisponibiliteFilter struct {
	EmployeeID      string
	IncludeArchived bool
}

// IndisponibiliteRepository 不可用时间数据访问接口
type IndisponibiliteRepository interface {
	Create(ctx context.Context, slot *model.Indisponibilite) error
	BatchCreate(ctx context.Context, slots []model.Indisponibilite) error
	GetByID(ctx context.Context, id string) (*model.Indisponibilite, error)
	List(ctx context.Context, filter IndisponibiliteFilter) ([]model.Indisponibilite, error)
	Update(ctx context.Context, slot *model.Indisponibilite) error
	Archive(ctx context.Context, id string, updatedBy string) error
	Delete(ctx context.Context, id string) error
}

// indisponibiliteRepo IndisponibiliteRepository 的 GORM 实现
type indisponibiliteRepo struct {
	db *gorm.DB
}

// NewIndisponibiliteRepo 创建 IndisponibiliteRepository 实例
func NewIndisponibiliteRepo(db *gorm.DB) IndisponibiliteRepository {
	return &indisponibiliteRepo{db: db}
}

func (r *indisponibiliteRepo) Create(ctx context.Context, slot *model.Indisponibilite) error {
	return r.db.WithContext(ctx).Omit("Employee").Create(slot).Error
}

func (r *indisponibiliteRepo) BatchCreate(ctx context.Context, slots []model.Indisponibilite) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Employee").CreateInBatches(slots, 100).Error
}

func (r *indisponibiliteRepo) GetByID(ctx context.Context, id string) (*model.Indisponibilite, error) {
	var slot model.Indisponibilite
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&slot).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *indisponibiliteRepo) List(ctx context.Context, filter IndisponibiliteFilter) ([]model.Indisponibilite, error) {
	var slots []model.Indisponibilite
	db := r.db.WithContext(ctx).Preload("Employee")
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if !filter.IncludeArchived {
		db = db.Where("archived = ?", false)
	}
	err := db.Order("date_debut ASC").Find(&slots).Error
	return slots, err
}

func (r *indisponibiliteRepo) Update(ctx context.Context, slot *model.Indisponibilite) error {
	result := r.db.WithContext(ctx).
		Model(&model.Indisponibilite{}).
		Where("id = ?", slot.ID).
		Updates(map[string]interface{}{
			"employee_id": slot.EmployeeID,
			"type":        slot.Type,
			"date_debut":  slot.DateDebut,
			"date_fin":    slot.DateFin,
			"description": slot.Description,
			"updated_by":  slot.UpdatedBy,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *indisponibiliteRepo) Archive(ctx context.Context, id string, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Indisponibilite{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"archived":   true,
			"updated_by": updatedBy,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *indisponibiliteRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Indisponibilite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
