package service

import (
	"context"
	"errors"
	"strings"

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
	ErrJobNotFound  = errors.New("Emploi introuvable")
	ErrJobCodeTaken = errors.New("Ce code emploi est déjà utilisé")
)

const jobEmptyMessage = "Aucun emploi trouvé"

// JobService 岗位业务接口
type JobService interface {
	List(ctx context.Context, q dataview.Query) (*dataview.Page[dto.JobResponse], error)
	Get(ctx context.Context, id string) (*dto.JobResponse, error)
	Create(ctx context.Context, req *dto.JobRequest, callerID string) (*dto.JobResponse, error)
	Update(ctx context.Context, id string, req *dto.JobRequest, callerID string) (*dto.JobResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	GroupedSkills(ctx context.Context, id string) (competency.Groups, error)
	CheckCode(ctx context.Context, code, excludeID string) (bool, error)
}

type jobService struct {
	repo     *repository.Repository
	cache    *listCache
	pageSize int
	logger   *zap.Logger
}

// NewJobService 创建 JobService 实例
func NewJobService(repo *repository.Repository, cache *listCache, pageSize int, logger *zap.Logger) JobService {
	return &jobService{repo: repo, cache: cache, pageSize: pageSize, logger: logger}
}

// jobView 岗位列表页：分类为实体，统计岗位数、实体数与所需技能总数
func (s *jobService) jobView() *dataview.View[dto.JobResponse] {
	return dataview.New(dataview.Config[dto.JobResponse]{
		PageSize: s.pageSize,
		Category: func(j dto.JobResponse) string { return j.Entite },
		Stats: func(all, filtered []dto.JobResponse) dataview.Stats {
			return dataview.Stats{
				"total":       len(filtered),
				"entites":     dataview.Distinct(all, func(j dto.JobResponse) string { return j.Entite }),
				"competences": dataview.Sum(filtered, func(j dto.JobResponse) int { return len(j.Competences) }),
			}
		},
		EmptyMessage: jobEmptyMessage,
	})
}

func (s *jobService) List(ctx context.Context, q dataview.Query) (*dataview.Page[dto.JobResponse], error) {
	items, err := cachedList(ctx, s.cache, cacheKindJobs, q.Search, func() ([]dto.JobResponse, error) {
		jobs, err := s.repo.Job.List(ctx, q.Search)
		if err != nil {
			s.logger.Error("查询岗位列表失败", zap.Error(err))
			return nil, err
		}
		out := make([]dto.JobResponse, 0, len(jobs))
		for i := range jobs {
			out = append(out, toJobResponse(&jobs[i]))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	page := s.jobView().Render(items, q)
	return &page, nil
}

func (s *jobService) Get(ctx context.Context, id string) (*dto.JobResponse, error) {
	job, err := s.getJob(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toJobResponse(job)
	return &resp, nil
}

// Create 新建岗位：规则校验通过后在同一事务中写入岗位与所需技能
func (s *jobService) Create(ctx context.Context, req *dto.JobRequest, callerID string) (*dto.JobResponse, error) {
	job := &model.Job{}
	skills, err := s.prepare(ctx, req, job, "")
	if err != nil {
		return nil, err
	}
	job.CreatedBy = &callerID
	job.UpdatedBy = &callerID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Job.Create(ctx, job); err != nil {
			return err
		}
		return tx.Job.ReplaceSkills(ctx, job.ID, skills)
	})
	if err != nil {
		return nil, s.writeError("创建岗位失败", err)
	}

	s.cache.invalidate(ctx, cacheKindJobs, cacheKindSkills)
	s.logger.Info("岗位已创建",
		zap.String("job_id", job.ID),
		zap.String("code", job.CodeEmploi),
		zap.Int("skills", len(skills)),
	)
	return s.Get(ctx, job.ID)
}

func (s *jobService) Update(ctx context.Context, id string, req *dto.JobRequest, callerID string) (*dto.JobResponse, error) {
	job, err := s.getJob(ctx, id)
	if err != nil {
		return nil, err
	}
	skills, err := s.prepare(ctx, req, job, job.ID)
	if err != nil {
		return nil, err
	}
	if req.Version > 0 {
		job.Version = req.Version
	}
	job.UpdatedBy = &callerID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Job.Update(ctx, job); err != nil {
			return err
		}
		return tx.Job.ReplaceSkills(ctx, job.ID, skills)
	})
	if err != nil {
		return nil, s.writeError("更新岗位失败", err)
	}

	s.cache.invalidate(ctx, cacheKindJobs, cacheKindSkills)
	return s.Get(ctx, job.ID)
}

func (s *jobService) Delete(ctx context.Context, id, callerID string) error {
	if err := s.repo.Job.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobNotFound
		}
		s.logger.Error("删除岗位失败", zap.String("job_id", id), zap.Error(err))
		return err
	}

	s.cache.invalidate(ctx, cacheKindJobs, cacheKindSkills)
	s.logger.Info("岗位已删除", zap.String("job_id", id), zap.String("caller", callerID))
	return nil
}

func (s *jobService) GroupedSkills(ctx context.Context, id string) (competency.Groups, error) {
	job, err := s.getJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return competency.GroupByLevel(job.CompetencyItems()), nil
}

// CheckCode 编码是否可用；excludeID 为编辑中的岗位
func (s *jobService) CheckCode(ctx context.Context, code, excludeID string) (bool, error) {
	job, err := s.repo.Job.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		s.logger.Error("查询岗位编码失败", zap.Error(err))
		return false, err
	}
	return job.ID == excludeID, nil
}

// ── 内部方法 ──

func (s *jobService) getJob(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.repo.Job.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("查询岗位失败", zap.String("job_id", id), zap.Error(err))
		return nil, err
	}
	return job, nil
}

// prepare 按规则顺序校验，写入 job 字段并返回去重后的技能行
func (s *jobService) prepare(ctx context.Context, req *dto.JobRequest, job *model.Job, selfID string) ([]model.JobSkill, error) {
	refs := make([]wizard.SkillRef, 0, len(req.Competences))
	for _, c := range req.Competences {
		refs = append(refs, wizard.SkillRef{ID: c.CompetenceID, Level: c.NiveauRequis})
	}

	form := wizard.JobForm{
		NomEmploi:  req.NomEmploi,
		Entite:     req.Entite,
		Formation:  req.Formation,
		Experience: req.Experience,
		CodeEmploi: req.CodeEmploi,
		Weight:     req.PoidsEmploi,
		Skills:     refs,
	}
	if err := wizard.ValidateJob(form); err != nil {
		return nil, err
	}

	available, err := s.CheckCode(ctx, req.CodeEmploi, selfID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrJobCodeTaken
	}

	refs = wizard.Dedupe(refs)
	if err := ensureSkillsExist(ctx, s.repo, refs); err != nil {
		return nil, err
	}

	job.CodeEmploi = req.CodeEmploi
	job.NomEmploi = strings.TrimSpace(req.NomEmploi)
	job.Entite = strings.TrimSpace(req.Entite)
	job.Formation = strings.TrimSpace(req.Formation)
	job.Experience = numberPtr(req.Experience)
	job.PoidsEmploi = numberPtr(req.PoidsEmploi)

	skills := make([]model.JobSkill, 0, len(refs))
	for _, r := range refs {
		skills = append(skills, model.JobSkill{CompetenceID: r.ID, NiveauRequis: r.Level})
	}
	return skills, nil
}

func (s *jobService) writeError(msg string, err error) error {
	switch {
	case errors.Is(err, pkgerrors.ErrConflict):
		return ErrJobCodeTaken
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		return err
	}
	s.logger.Error(msg, zap.Error(err))
	return err
}

// numberPtr 已通过规则校验的可选整数；空值为 nil
func numberPtr(n wizard.NumberInput) *int {
	if n.Empty() {
		return nil
	}
	v, err := n.Int64()
	if err != nil {
		return nil
	}
	i := int(v)
	return &i
}

func toJobResponse(job *model.Job) dto.JobResponse {
	return dto.JobResponse{
		ID:          job.ID,
		CodeEmploi:  job.CodeEmploi,
		NomEmploi:   job.NomEmploi,
		Entite:      job.Entite,
		Formation:   job.Formation,
		Experience:  job.Experience,
		PoidsEmploi: job.PoidsEmploi,
		Competences: job.CompetencyItems(),
		Version:     job.Version,
	}
}
