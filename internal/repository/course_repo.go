package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gesrh/backend/internal/model"
)

// CourseRepository 培训模块（课程）、评估与出勤数据访问接口
type CourseRepository interface {
	GetModule(ctx context.Context, id string) (*model.Module, error)
	ListModules(ctx context.Context) ([]model.Module, error)
	GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error)
	ListAssignments(ctx context.Context, moduleID string) ([]model.ModuleAssignment, error)
	Assign(ctx context.Context, moduleID string, employeeIDs []string) error
	SetPresence(ctx context.Context, moduleID string, presence map[string]bool) error
}

// courseRepo CourseRepository 的 GORM 实现
type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) GetModule(ctx context.Context, id string) (*model.Module, error) {
	var m model.Module
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *courseRepo) ListModules(ctx context.Context) ([]model.Module, error) {
	var modules []model.Module
	err := r.db.WithContext(ctx).Order("date_debut ASC NULLS LAST, titre ASC").Find(&modules).Error
	return modules, err
}

func (r *courseRepo) GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error) {
	var ev model.Evaluation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *courseRepo) ListAssignments(ctx context.Context, moduleID string) ([]model.ModuleAssignment, error) {
	var rows []model.ModuleAssignment
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Joins("JOIN employees e ON e.id = module_assignments.employee_id AND e.deleted_at IS NULL").
		Where("module_assignments.module_id = ?", moduleID).
		Order("e.nom ASC, e.prenom ASC").
		Find(&rows).Error
	return rows, err
}

// Assign 分配学员到模块，已分配的忽略（报名被接受时调用）
func (r *courseRepo) Assign(ctx context.Context, moduleID string, employeeIDs []string) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	rows := make([]model.ModuleAssignment, len(employeeIDs))
	for i, id := range employeeIDs {
		rows[i] = model.ModuleAssignment{ModuleID: moduleID, EmployeeID: id}
	}
	return r.db.WithContext(ctx).
		Omit("Employee").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// SetPresence 批量更新出勤（需在事务中调用）
func (r *courseRepo) SetPresence(ctx context.Context, moduleID string, presence map[string]bool) error {
	db := r.db.WithContext(ctx)
	for employeeID, present := range presence {
		err := db.Model(&model.ModuleAssignment{}).
			Where("module_id = ? AND employee_id = ?", moduleID, employeeID).
			Updates(map[string]interface{}{
				"present":    present,
				"updated_at": gorm.Expr("NOW()"),
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
