package dto

import "gesrh/backend/internal/wizard"

// ── 技能模块 DTO ──

// SkillRequest 新建 / 编辑技能
type SkillRequest struct {
	CodeCompetence string `json:"code_competence"`
	Competence     string `json:"competence"`
	Categorie      string `json:"categorie"`
	Version        int    `json:"version"`
}

// SuggestRequest 技能联想
type SuggestRequest struct {
	Q       string   `form:"q"       binding:"omitempty,max=100"`
	Exclude []string `form:"exclude"`
}

// SuggestResponse 联想结果
type SuggestResponse struct {
	Matches []wizard.Candidate `json:"matches"`
	Unique  *wizard.Candidate  `json:"unique"`
	CanAdd  bool               `json:"can_add"`
}
