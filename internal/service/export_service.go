package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gesrh/backend/internal/competency"
	"gesrh/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoJobs       = errors.New("Aucun emploi à exporter")
	ErrExportGenerateFail = errors.New("Échec de la génération du fichier Excel")
)

const (
	exportJobsSheet   = "Emplois"
	exportSkillsSheet = "Compétences requises"
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 命令行工具 hrctl export-jobs 复用同一实现
type ExportService interface {
	// ExportJobs 导出岗位及其所需技能为 Excel
	ExportJobs(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportJobs — 导出岗位为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Emplois"：每行一个岗位，最后一列为 "技能 (等级)" 列表
//   - Sheet "Compétences requises"：每行一个 (岗位, 技能, 等级)
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportJobs(ctx context.Context) (*bytes.Buffer, string, error) {
	jobs, err := s.repo.Job.List(ctx, "")
	if err != nil {
		s.logger.Error("查询岗位失败", zap.Error(err))
		return nil, "", err
	}
	if len(jobs) == 0 {
		return nil, "", ErrExportNoJobs
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(exportJobsSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	f.NewSheet(exportSkillsSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── Sheet 1: 岗位 ──
	jobHeaders := []string{"Code", "Emploi", "Entité", "Formation", "Expérience", "Poids", "Compétences"}
	writeHeader(f, exportJobsSheet, jobHeaders, headerStyle)
	f.SetColWidth(exportJobsSheet, "A", "A", 12)
	f.SetColWidth(exportJobsSheet, "B", "D", 28)
	f.SetColWidth(exportJobsSheet, "E", "F", 12)
	f.SetColWidth(exportJobsSheet, "G", "G", 60)

	// ── Sheet 2: 岗位 × 技能 ──
	skillHeaders := []string{"Code emploi", "Code compétence", "Compétence", "Niveau", "Libellé niveau"}
	writeHeader(f, exportSkillsSheet, skillHeaders, headerStyle)
	f.SetColWidth(exportSkillsSheet, "A", "B", 16)
	f.SetColWidth(exportSkillsSheet, "C", "C", 36)
	f.SetColWidth(exportSkillsSheet, "D", "E", 16)

	row, skillRow := 2, 2
	for _, job := range jobs {
		labels := make([]string, 0, len(job.Skills))
		for _, js := range job.Skills {
			label, code := js.CompetenceID, ""
			if js.Skill != nil {
				label, code = js.Skill.Competence, js.Skill.CodeCompetence
			}
			labels = append(labels, fmt.Sprintf("%s (%d)", label, js.NiveauRequis))

			f.SetCellValue(exportSkillsSheet, cell("A", skillRow), job.CodeEmploi)
			f.SetCellValue(exportSkillsSheet, cell("B", skillRow), code)
			f.SetCellValue(exportSkillsSheet, cell("C", skillRow), label)
			f.SetCellValue(exportSkillsSheet, cell("D", skillRow), js.NiveauRequis)
			f.SetCellValue(exportSkillsSheet, cell("E", skillRow), competency.StyleFor(js.NiveauRequis).Name)
			skillRow++
		}

		f.SetCellValue(exportJobsSheet, cell("A", row), job.CodeEmploi)
		f.SetCellValue(exportJobsSheet, cell("B", row), job.NomEmploi)
		f.SetCellValue(exportJobsSheet, cell("C", row), job.Entite)
		f.SetCellValue(exportJobsSheet, cell("D", row), job.Formation)
		if job.Experience != nil {
			f.SetCellValue(exportJobsSheet, cell("E", row), *job.Experience)
		}
		if job.PoidsEmploi != nil {
			f.SetCellValue(exportJobsSheet, cell("F", row), *job.PoidsEmploi)
		}
		f.SetCellValue(exportJobsSheet, cell("G", row), strings.Join(labels, "; "))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("emplois_%s.xlsx", time.Now().Format("20060102"))
	s.logger.Info("岗位导出完成", zap.Int("jobs", len(jobs)), zap.Int("skill_rows", skillRow-2))
	return buf, filename, nil
}

// ── 辅助函数 ──

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), style)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
