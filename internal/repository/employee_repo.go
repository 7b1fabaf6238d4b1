package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"gesrh/backend/internal/model"
	pkgerrors "gesrh/backend/pkg/errors"
)

// EmployeeRepository 员工数据访问接口
type EmployeeRepository interface {
	Create(ctx context.Context, emp *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	GetByEmail(ctx context.Context, email string) (*model.Employee, error)
	List(ctx context.Context, search string) ([]model.Employee, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Employee, error)
	Update(ctx context.Context, emp *model.Employee) error
	Delete(ctx context.Context, id string, deletedBy string) error
	SetPassword(ctx context.Context, id string, hash string) error
	ReplaceCompetencies(ctx context.Context, employeeID string, comps []model.EmployeeCompetency) error
	SetCompetencyLevel(ctx context.Context, employeeID, skillID string, level int) error
}

// employeeRepo EmployeeRepository 的 GORM 实现
type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func preloadCompetencies(db *gorm.DB) *gorm.DB {
	return db.Order("employee_competences.position ASC").Preload("Skill")
}

func (r *employeeRepo) Create(ctx context.Context, emp *model.Employee) error {
	return translateError(r.db.WithContext(ctx).Omit("Competencies", "Job").Create(emp).Error)
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Competencies", preloadCompetencies).
		Where("id = ?", id).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) List(ctx context.Context, search string) ([]model.Employee, error) {
	var emps []model.Employee
	db := r.db.WithContext(ctx).Preload("Competencies", preloadCompetencies)
	if strings.TrimSpace(search) != "" {
		p := likePattern(search)
		db = db.Where("nom ILIKE ? OR prenom ILIKE ? OR email ILIKE ? OR matricule ILIKE ?", p, p, p, p)
	}
	err := db.Order("nom ASC, prenom ASC").Find(&emps).Error
	return emps, err
}

func (r *employeeRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Employee, error) {
	var emps []model.Employee
	if len(ids) == 0 {
		return emps, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&emps).Error
	return emps, err
}

func (r *employeeRepo) Update(ctx context.Context, emp *model.Employee) error {
	oldVersion := emp.Version
	result := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("id = ? AND version = ?", emp.ID, oldVersion).
		Updates(map[string]interface{}{
			"matricule":     emp.Matricule,
			"nom":           emp.Nom,
			"prenom":        emp.Prenom,
			"email":         emp.Email,
			"role":          emp.Role,
			"entite":        emp.Entite,
			"job_id":        emp.JobID,
			"date_embauche": emp.DateEmbauche,
			"updated_by":    emp.UpdatedBy,
			"updated_at":    gorm.Expr("NOW()"),
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	emp.Version = oldVersion + 1
	return nil
}

func (r *employeeRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *employeeRepo) SetPassword(ctx context.Context, id string, hash string) error {
	return r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": hash,
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}

// ReplaceCompetencies 全量替换员工技能（需在事务中调用）
func (r *employeeRepo) ReplaceCompetencies(ctx context.Context, employeeID string, comps []model.EmployeeCompetency) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("employee_id = ?", employeeID).Delete(&model.EmployeeCompetency{}).Error; err != nil {
		return err
	}
	if len(comps) == 0 {
		return nil
	}
	for i := range comps {
		comps[i].EmployeeID = employeeID
		comps[i].Position = i
	}
	return db.Omit("Skill").Create(&comps).Error
}

func (r *employeeRepo) SetCompetencyLevel(ctx context.Context, employeeID, skillID string, level int) error {
	result := r.db.WithContext(ctx).
		Model(&model.EmployeeCompetency{}).
		Where("employee_id = ? AND competence_id = ?", employeeID, skillID).
		Update("niveau_acquis", level)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
