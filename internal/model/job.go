package model

import "gesrh/backend/internal/competency"

// Job 岗位（emploi）— 对应 jobs
type Job struct {
	ID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CodeEmploi  string `gorm:"column:codeemploi;type:varchar(10);not null"    json:"codeemploi"`
	NomEmploi   string `gorm:"type:varchar(150);not null"                     json:"nom_emploi"`
	Entite      string `gorm:"type:varchar(100);not null"                     json:"entite"`
	Formation   string `gorm:"type:varchar(255);not null"                     json:"formation"`
	Experience  *int   `gorm:"type:int"                                       json:"experience"`
	PoidsEmploi *int   `gorm:"column:poidsemploi;type:int"                    json:"poidsemploi"`
	VersionedModel

	// 关联
	Skills []JobSkill `gorm:"foreignKey:JobID;references:ID" json:"competences"`
}

// TableName 指定表名
func (Job) TableName() string { return "jobs" }

// JobSkill 岗位所需技能 — 对应 job_skills
type JobSkill struct {
	JobID        string `gorm:"type:uuid;primaryKey"     json:"-"`
	CompetenceID string `gorm:"type:uuid;primaryKey"     json:"competence_id"`
	NiveauRequis int    `gorm:"type:smallint;not null"   json:"niveau_requis"`
	Position     int    `gorm:"not null;default:0"       json:"-"`

	Skill *Skill `gorm:"foreignKey:CompetenceID;references:ID" json:"competence,omitempty"`
}

// TableName 指定表名
func (JobSkill) TableName() string { return "job_skills" }

// CompetencyItems 转为共享的"技能 + 等级"类型
func (j *Job) CompetencyItems() []competency.Item {
	items := make([]competency.Item, 0, len(j.Skills))
	for _, s := range j.Skills {
		item := competency.Item{ID: s.CompetenceID, Level: s.NiveauRequis}
		if s.Skill != nil {
			item.Label = s.Skill.Competence
		}
		items = append(items, item)
	}
	return items
}
