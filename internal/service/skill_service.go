package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gesrh/backend/internal/dataview"
	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/model"
	"gesrh/backend/internal/repository"
	"gesrh/backend/internal/wizard"
	pkgerrors "gesrh/backend/pkg/errors"
)

var (
	ErrSkillNotFound    = errors.New("Compétence introuvable")
	ErrSkillCodeTaken   = errors.New("Ce code compétence est déjà utilisé")
	ErrSkillInUse       = errors.New("Cette compétence est requise par au moins un emploi")
	ErrImportBadFile    = errors.New("Fichier Excel illisible")
	ErrImportBadHeader  = errors.New("En-tête attendu : code | competence | categorie")
	ErrImportEmptySheet = errors.New("Le fichier ne contient aucune ligne")
)

const (
	skillEmptyMessage    = "Aucune compétence trouvée"
	analysisEmptyMessage = "Aucune compétence à analyser"
)

// skillImportHeader 导入文件首行
var skillImportHeader = []string{"code", "competence", "categorie"}

// SkillService 技能业务接口
type SkillService interface {
	List(ctx context.Context, q dataview.Query) (*dataview.Page[model.SkillUsage], error)
	Analysis(ctx context.Context, q dataview.Query) (*dataview.Page[model.SkillUsage], error)
	Get(ctx context.Context, id string) (*model.Skill, error)
	Create(ctx context.Context, req *dto.SkillRequest, callerID string) (*model.Skill, error)
	Update(ctx context.Context, id string, req *dto.SkillRequest, callerID string) (*model.Skill, error)
	Delete(ctx context.Context, id, callerID string) error
	Suggest(ctx context.Context, req *dto.SuggestRequest) (*dto.SuggestResponse, error)
	ImportXLSX(ctx context.Context, r io.Reader, callerID string) (*dto.ImportResponse, error)
}

type skillService struct {
	repo     *repository.Repository
	cache    *listCache
	pageSize int
	logger   *zap.Logger
}

// NewSkillService 创建 SkillService 实例
func NewSkillService(repo *repository.Repository, cache *listCache, pageSize int, logger *zap.Logger) SkillService {
	return &skillService{repo: repo, cache: cache, pageSize: pageSize, logger: logger}
}

func skillCategory(u model.SkillUsage) string { return u.Categorie }

// skillView 技能列表页：统计技能数、分类数与岗位引用总数
func (s *skillService) skillView() *dataview.View[model.SkillUsage] {
	return dataview.New(dataview.Config[model.SkillUsage]{
		PageSize: s.pageSize,
		Category: skillCategory,
		Stats: func(all, filtered []model.SkillUsage) dataview.Stats {
			return dataview.Stats{
				"total":      len(filtered),
				"categories": dataview.Distinct(all, skillCategory),
				"usages":     dataview.Sum(filtered, func(u model.SkillUsage) int { return u.JobCount }),
			}
		},
		EmptyMessage: skillEmptyMessage,
	})
}

// analysisView 技能分析页：统计技能数、未被使用的技能数与使用总数
func (s *skillService) analysisView() *dataview.View[model.SkillUsage] {
	return dataview.New(dataview.Config[model.SkillUsage]{
		PageSize: s.pageSize,
		Category: skillCategory,
		Stats: func(all, filtered []model.SkillUsage) dataview.Stats {
			unused := 0
			for _, u := range filtered {
				if u.JobCount == 0 && u.EmployeeCount == 0 {
					unused++
				}
			}
			return dataview.Stats{
				"total":  len(filtered),
				"unused": unused,
				"usages": dataview.Sum(filtered, func(u model.SkillUsage) int { return u.JobCount + u.EmployeeCount }),
			}
		},
		EmptyMessage: analysisEmptyMessage,
	})
}

func (s *skillService) usage(ctx context.Context, search string) ([]model.SkillUsage, error) {
	return cachedList(ctx, s.cache, cacheKindSkills, search, func() ([]model.SkillUsage, error) {
		rows, err := s.repo.Skill.Usage(ctx, search)
		if err != nil {
			s.logger.Error("查询技能使用情况失败", zap.Error(err))
		}
		return rows, err
	})
}

func (s *skillService) List(ctx context.Context, q dataview.Query) (*dataview.Page[model.SkillUsage], error) {
	items, err := s.usage(ctx, q.Search)
	if err != nil {
		return nil, err
	}
	page := s.skillView().Render(items, q)
	return &page, nil
}

func (s *skillService) Analysis(ctx context.Context, q dataview.Query) (*dataview.Page[model.SkillUsage], error) {
	items, err := s.usage(ctx, q.Search)
	if err != nil {
		return nil, err
	}
	page := s.analysisView().Render(items, q)
	return &page, nil
}

func (s *skillService) Get(ctx context.Context, id string) (*model.Skill, error) {
	skill, err := s.repo.Skill.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		s.logger.Error("查询技能失败", zap.String("skill_id", id), zap.Error(err))
		return nil, err
	}
	return skill, nil
}

func (s *skillService) Create(ctx context.Context, req *dto.SkillRequest, callerID string) (*model.Skill, error) {
	form := skillForm(req)
	if err := wizard.SkillRules.Validate(form); err != nil {
		return nil, err
	}

	skill := &model.Skill{
		CodeCompetence: form.Code,
		Competence:     form.Competence,
		Categorie:      form.Categorie,
	}
	skill.CreatedBy = &callerID
	skill.UpdatedBy = &callerID

	if err := s.repo.Skill.Create(ctx, skill); err != nil {
		return nil, s.writeError("创建技能失败", err)
	}

	s.cache.invalidate(ctx, cacheKindSkills)
	s.logger.Info("技能已创建", zap.String("skill_id", skill.ID), zap.String("code", skill.CodeCompetence))
	return skill, nil
}

func (s *skillService) Update(ctx context.Context, id string, req *dto.SkillRequest, callerID string) (*model.Skill, error) {
	skill, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	form := skillForm(req)
	if err := wizard.SkillRules.Validate(form); err != nil {
		return nil, err
	}

	skill.CodeCompetence = form.Code
	skill.Competence = form.Competence
	skill.Categorie = form.Categorie
	skill.UpdatedBy = &callerID
	if req.Version > 0 {
		skill.Version = req.Version
	}

	if err := s.repo.Skill.Update(ctx, skill); err != nil {
		return nil, s.writeError("更新技能失败", err)
	}

	// 技能名称出现在岗位与员工的技能列表中
	s.cache.invalidate(ctx, cacheKindSkills, cacheKindJobs, cacheKindEmployees)
	return skill, nil
}

// Delete 软删除技能；仍被岗位要求时拒绝
func (s *skillService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Skill.CountJobUsages(ctx, id)
	if err != nil {
		s.logger.Error("统计技能引用失败", zap.String("skill_id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrSkillInUse
	}

	if err := s.repo.Skill.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSkillNotFound
		}
		s.logger.Error("删除技能失败", zap.String("skill_id", id), zap.Error(err))
		return err
	}

	s.cache.invalidate(ctx, cacheKindSkills, cacheKindEmployees)
	s.logger.Info("技能已删除", zap.String("skill_id", id), zap.String("caller", callerID))
	return nil
}

// Suggest 技能联想：排除草稿中已有的技能后做模糊匹配
func (s *skillService) Suggest(ctx context.Context, req *dto.SuggestRequest) (*dto.SuggestResponse, error) {
	all, err := s.usage(ctx, "")
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(req.Exclude))
	for _, id := range req.Exclude {
		excluded[id] = struct{}{}
	}

	candidates := make([]wizard.Candidate, 0, len(all))
	for _, u := range all {
		if _, skip := excluded[u.ID]; skip {
			continue
		}
		candidates = append(candidates, wizard.Candidate{ID: u.ID, Label: u.Competence})
	}

	m := wizard.NewMatcher(candidates)
	resp := &dto.SuggestResponse{
		Matches: m.Filter(req.Q),
		CanAdd:  m.CanAdd(req.Q),
	}
	if c, ok := m.Unique(req.Q); ok {
		resp.Unique = &c
	}
	return resp, nil
}

// ImportXLSX 从 Excel 导入技能：按编码新增或更新，逐行报告错误
func (s *skillService) ImportXLSX(ctx context.Context, r io.Reader, callerID string) (*dto.ImportResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrImportBadFile
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrImportBadFile
	}
	if len(rows) == 0 {
		return nil, ErrImportEmptySheet
	}
	if !matchHeader(rows[0], skillImportHeader) {
		return nil, ErrImportBadHeader
	}

	resp := &dto.ImportResponse{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}
		resp.Total++

		form := wizard.SkillForm{
			Code:       strings.TrimSpace(cellAt(row, 0)),
			Competence: strings.TrimSpace(cellAt(row, 1)),
			Categorie:  strings.TrimSpace(cellAt(row, 2)),
		}
		if err := wizard.SkillRules.Validate(form); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportError{Row: rowNum, Reason: err.Error()})
			continue
		}

		skill := &model.Skill{
			CodeCompetence: form.Code,
			Competence:     form.Competence,
			Categorie:      form.Categorie,
		}
		skill.CreatedBy = &callerID
		skill.UpdatedBy = &callerID

		created, err := s.repo.Skill.Upsert(ctx, skill)
		if err != nil {
			s.logger.Warn("导入技能行失败", zap.Int("row", rowNum), zap.Error(err))
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportError{Row: rowNum, Reason: fmt.Sprintf("Ligne non enregistrée : %s", form.Code)})
			continue
		}
		if created {
			resp.Created++
		} else {
			resp.Updated++
		}
	}

	if resp.Created+resp.Updated > 0 {
		s.cache.invalidate(ctx, cacheKindSkills, cacheKindJobs, cacheKindEmployees)
	}
	s.logger.Info("技能导入完成",
		zap.Int("total", resp.Total),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// ── 内部方法 ──

func (s *skillService) writeError(msg string, err error) error {
	switch {
	case errors.Is(err, pkgerrors.ErrConflict):
		return ErrSkillCodeTaken
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		return err
	}
	s.logger.Error(msg, zap.Error(err))
	return err
}

func skillForm(req *dto.SkillRequest) wizard.SkillForm {
	return wizard.SkillForm{
		Code:       strings.TrimSpace(req.CodeCompetence),
		Competence: strings.TrimSpace(req.Competence),
		Categorie:  strings.TrimSpace(req.Categorie),
	}
}

func matchHeader(row, want []string) bool {
	if len(row) < len(want) {
		return false
	}
	for i, w := range want {
		if wizard.Fold(row[i]) != w {
			return false
		}
	}
	return true
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
