package dto

import "gesrh/backend/internal/competency"

// ── 员工模块 DTO ──

// CompetencyRequest 员工技能（id + 等级）
type CompetencyRequest struct {
	CompetenceID string `json:"competence_id"`
	Niveau       int    `json:"niveau"`
}

// EmployeeRequest 新建 / 编辑员工
// 字段合法性由有序规则校验，这里不加 binding 约束
type EmployeeRequest struct {
	Matricule    string              `json:"matricule"`
	Nom          string              `json:"nom"`
	Prenom       string              `json:"prenom"`
	Email        string              `json:"email"`
	Role         string              `json:"role"`
	Entite       string              `json:"entite"`
	JobID        *string             `json:"job_id"`
	DateEmbauche *string             `json:"date_embauche"` // YYYY-MM-DD
	Competences  []CompetencyRequest `json:"competences"`
	Version      int                 `json:"version"`
}

// SetCompetencyLevelRequest 修改单项技能等级
type SetCompetencyLevelRequest struct {
	Niveau int `json:"niveau" binding:"required,competency_level"`
}

// EmployeeResponse 员工信息（脱敏）
type EmployeeResponse struct {
	ID           string            `json:"id"`
	Matricule    string            `json:"matricule"`
	Nom          string            `json:"nom"`
	Prenom       string            `json:"prenom"`
	Email        string            `json:"email"`
	Role         string            `json:"role"`
	Entite       string            `json:"entite"`
	JobID        *string           `json:"job_id,omitempty"`
	DateEmbauche string            `json:"date_embauche,omitempty"`
	HasPassword  bool              `json:"hasPassword"`
	Competences  []competency.Item `json:"competences"`
	Version      int               `json:"version"`
}
