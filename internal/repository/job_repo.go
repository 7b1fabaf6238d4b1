package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"gesrh/backend/internal/model"
	pkgerrors "gesrh/backend/pkg/errors"
)

// JobRepository 岗位数据访问接口
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id string) (*model.Job, error)
	GetByCode(ctx context.Context, code string) (*model.Job, error)
	List(ctx context.Context, search string) ([]model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id string, deletedBy string) error
	ReplaceSkills(ctx context.Context, jobID string, skills []model.JobSkill) error
}

// jobRepo JobRepository 的 GORM 实现
type jobRepo struct {
	db *gorm.DB
}

// NewJobRepo 创建 JobRepository 实例
func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func preloadJobSkills(db *gorm.DB) *gorm.DB {
	return db.Order("job_skills.position ASC").Preload("Skill")
}

func (r *jobRepo) Create(ctx context.Context, job *model.Job) error {
	return translateError(r.db.WithContext(ctx).Omit("Skills").Create(job).Error)
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Preload("Skills", preloadJobSkills).
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) GetByCode(ctx context.Context, code string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Where("codeemploi = ?", code).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) List(ctx context.Context, search string) ([]model.Job, error) {
	var jobs []model.Job
	db := r.db.WithContext(ctx).Preload("Skills", preloadJobSkills)
	if strings.TrimSpace(search) != "" {
		p := likePattern(search)
		db = db.Where("nom_emploi ILIKE ? OR codeemploi ILIKE ? OR entite ILIKE ?", p, p, p)
	}
	err := db.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *jobRepo) Update(ctx context.Context, job *model.Job) error {
	oldVersion := job.Version
	result := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ? AND version = ?", job.ID, oldVersion).
		Updates(map[string]interface{}{
			"codeemploi":  job.CodeEmploi,
			"nom_emploi":  job.NomEmploi,
			"entite":      job.Entite,
			"formation":   job.Formation,
			"experience":  job.Experience,
			"poidsemploi": job.PoidsEmploi,
			"updated_by":  job.UpdatedBy,
			"updated_at":  gorm.Expr("NOW()"),
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	job.Version = oldVersion + 1
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Job{}).
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

// ReplaceSkills 全量替换岗位所需技能（需在事务中调用）
func (r *jobRepo) ReplaceSkills(ctx context.Context, jobID string, skills []model.JobSkill) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("job_id = ?", jobID).Delete(&model.JobSkill{}).Error; err != nil {
		return err
	}
	if len(skills) == 0 {
		return nil
	}
	for i := range skills {
		skills[i].JobID = jobID
		skills[i].Position = i
	}
	return db.Omit("Skill").Create(&skills).Error
}
