package dto

import (
	"gesrh/backend/internal/competency"
	"gesrh/backend/internal/wizard"
)

// ── 岗位模块 DTO ──

// JobSkillRequest 岗位所需技能
type JobSkillRequest struct {
	CompetenceID string `json:"competence_id"`
	NiveauRequis int    `json:"niveau_requis"`
}

// JobRequest 新建 / 编辑岗位
// experience / poidsemploi 接受数字、字符串或 null，空串视为未填写，是否为整数由规则校验
type JobRequest struct {
	CodeEmploi  string             `json:"codeemploi"`
	NomEmploi   string             `json:"nom_emploi"`
	Entite      string             `json:"entite"`
	Formation   string             `json:"formation"`
	Experience  wizard.NumberInput `json:"experience"`
	PoidsEmploi wizard.NumberInput `json:"poidsemploi"`
	Competences []JobSkillRequest  `json:"competences"`
	Version     int                `json:"version"`
}

// CheckCodeRequest 岗位编码可用性检查
type CheckCodeRequest struct {
	Code      string `form:"code"       binding:"required,job_code"`
	ExcludeID string `form:"exclude_id" binding:"omitempty,uuid"`
}

// CheckCodeResponse 编码可用性
type CheckCodeResponse struct {
	Available bool `json:"available"`
}

// JobResponse 岗位信息
type JobResponse struct {
	ID          string            `json:"id"`
	CodeEmploi  string            `json:"codeemploi"`
	NomEmploi   string            `json:"nom_emploi"`
	Entite      string            `json:"entite"`
	Formation   string            `json:"formation"`
	Experience  *int              `json:"experience"`
	PoidsEmploi *int              `json:"poidsemploi"`
	Competences []competency.Item `json:"competences"`
	Version     int               `json:"version"`
}
