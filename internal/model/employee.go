package model

import (
	"time"

	"gesrh/backend/internal/competency"
)

// 员工角色
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Employee 员工 — 对应 employees
type Employee struct {
	ID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Matricule    string     `gorm:"type:varchar(20);not null"                      json:"matricule"`
	Nom          string     `gorm:"type:varchar(100);not null"                     json:"nom"`
	Prenom       string     `gorm:"type:varchar(100);not null"                     json:"prenom"`
	Email        string     `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash *string    `gorm:"type:varchar(255)"                              json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	Entite       string     `gorm:"type:varchar(100);not null;default:''"          json:"entite"`
	JobID        *string    `gorm:"type:uuid"                                      json:"job_id,omitempty"`
	DateEmbauche *time.Time `gorm:"type:date"                                      json:"date_embauche,omitempty"`
	VersionedModel

	// 关联
	Job          *Job                 `gorm:"foreignKey:JobID;references:ID"      json:"job,omitempty"`
	Competencies []EmployeeCompetency `gorm:"foreignKey:EmployeeID;references:ID" json:"competences"`
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// HasPassword 是否已设置密码
func (e *Employee) HasPassword() bool {
	return e.PasswordHash != nil && *e.PasswordHash != ""
}

// EmployeeCompetency 员工已掌握技能 — 对应 employee_competences
type EmployeeCompetency struct {
	EmployeeID   string `gorm:"type:uuid;primaryKey"   json:"-"`
	CompetenceID string `gorm:"type:uuid;primaryKey"   json:"competence_id"`
	NiveauAcquis int    `gorm:"type:smallint;not null" json:"niveau_acquis"`
	Position     int    `gorm:"not null;default:0"     json:"-"`

	Skill *Skill `gorm:"foreignKey:CompetenceID;references:ID" json:"competence,omitempty"`
}

// TableName 指定表名
func (EmployeeCompetency) TableName() string { return "employee_competences" }

// CompetencyItems 转为共享的"技能 + 等级"类型
func (e *Employee) CompetencyItems() []competency.Item {
	items := make([]competency.Item, 0, len(e.Competencies))
	for _, c := range e.Competencies {
		item := competency.Item{ID: c.CompetenceID, Level: c.NiveauAcquis}
		if c.Skill != nil {
			item.Label = c.Skill.Competence
		}
		items = append(items, item)
	}
	return items
}
