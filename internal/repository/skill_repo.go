package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"gesrh/backend/internal/model"
	pkgerrors "gesrh/backend/pkg/errors"
)

// SkillRepository 技能数据访问接口
type SkillRepository interface {
	Create(ctx context.Context, skill *model.Skill) error
	GetByID(ctx context.Context, id string) (*model.Skill, error)
	GetByCode(ctx context.Context, code string) (*model.Skill, error)
	List(ctx context.Context, search string) ([]model.Skill, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Skill, error)
	Update(ctx context.Context, skill *model.Skill) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountJobUsages(ctx context.Context, id string) (int64, error)
	Usage(ctx context.Context, search string) ([]model.SkillUsage, error)
	Upsert(ctx context.Context, skill *model.Skill) (created bool, err error)
}

// skillRepo SkillRepository 的 GORM 实现
type skillRepo struct {
	db *gorm.DB
}

// NewSkillRepo 创建 SkillRepository 实例
func NewSkillRepo(db *gorm.DB) SkillRepository {
	return &skillRepo{db: db}
}

func (r *skillRepo) Create(ctx context.Context, skill *model.Skill) error {
	return translateError(r.db.WithContext(ctx).Create(skill).Error)
}

func (r *skillRepo) GetByID(ctx context.Context, id string) (*model.Skill, error) {
	var skill model.Skill
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepo) GetByCode(ctx context.Context, code string) (*model.Skill, error) {
	var skill model.Skill
	if err := r.db.WithContext(ctx).Where("code_competence = ?", code).First(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepo) List(ctx context.Context, search string) ([]model.Skill, error) {
	var skills []model.Skill
	db := r.db.WithContext(ctx)
	if strings.TrimSpace(search) != "" {
		p := likePattern(search)
		db = db.Where("competence ILIKE ? OR code_competence ILIKE ? OR categorie ILIKE ?", p, p, p)
	}
	err := db.Order("competence ASC").Find(&skills).Error
	return skills, err
}

func (r *skillRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Skill, error) {
	var skills []model.Skill
	if len(ids) == 0 {
		return skills, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&skills).Error
	return skills, err
}

func (r *skillRepo) Update(ctx context.Context, skill *model.Skill) error {
	oldVersion := skill.Version
	result := r.db.WithContext(ctx).
		Model(&model.Skill{}).
		Where("id = ? AND version = ?", skill.ID, oldVersion).
		Updates(map[string]interface{}{
			"code_competence": skill.CodeCompetence,
			"competence":      skill.Competence,
			"categorie":       skill.Categorie,
			"updated_by":      skill.UpdatedBy,
			"updated_at":      gorm.Expr("NOW()"),
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	skill.Version = oldVersion + 1
	return nil
}

func (r *skillRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Skill{}).
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

func (r *skillRepo) CountJobUsages(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("job_skills js").
		Joins("JOIN jobs j ON j.id = js.job_id AND j.deleted_at IS NULL").
		Where("js.competence_id = ?", id).
		Count(&count).Error
	return count, err
}

// Usage 每个技能被岗位要求与被员工掌握的次数
func (r *skillRepo) Usage(ctx context.Context, search string) ([]model.SkillUsage, error) {
	var rows []model.SkillUsage
	db := r.db.WithContext(ctx).
		Table("skills s").
		Select(`s.*,
			(SELECT COUNT(*) FROM job_skills js JOIN jobs j ON j.id = js.job_id AND j.deleted_at IS NULL
			  WHERE js.competence_id = s.id) AS job_count,
			(SELECT COUNT(*) FROM employee_competences ec JOIN employees e ON e.id = ec.employee_id AND e.deleted_at IS NULL
			  WHERE ec.competence_id = s.id) AS employee_count`).
		Where("s.deleted_at IS NULL")
	if strings.TrimSpace(search) != "" {
		p := likePattern(search)
		db = db.Where("s.competence ILIKE ? OR s.code_competence ILIKE ?", p, p)
	}
	err := db.Order("job_count DESC, s.competence ASC").Scan(&rows).Error
	return rows, err
}

// Upsert 按编码新增或更新技能（Excel 导入）
func (r *skillRepo) Upsert(ctx context.Context, skill *model.Skill) (bool, error) {
	existing, err := r.GetByCode(ctx, skill.CodeCompetence)
	switch {
	case err == nil:
		skill.ID = existing.ID
		result := r.db.WithContext(ctx).
			Model(&model.Skill{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"competence": skill.Competence,
				"categorie":  skill.Categorie,
				"updated_by": skill.UpdatedBy,
				"updated_at": gorm.Expr("NOW()"),
				"version":    gorm.Expr("version + 1"),
			})
		return false, result.Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(skill).Error; err != nil {
			return false, translateError(err)
		}
		return true, nil
	default:
		return false, err
	}
}
