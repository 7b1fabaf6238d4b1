package model

// Skill 技能（compétence）— 对应 skills
type Skill struct {
	ID             string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CodeCompetence string `gorm:"type:varchar(20);not null"                      json:"code_competence"`
	Competence     string `gorm:"type:varchar(150);not null"                     json:"competence"`
	Categorie      string `gorm:"type:varchar(100);not null;default:''"          json:"categorie"`
	VersionedModel
}

// TableName 指定表名
func (Skill) TableName() string { return "skills" }

// SkillUsage 技能使用统计（技能分析页面）
type SkillUsage struct {
	Skill
	JobCount      int `gorm:"column:job_count"      json:"job_count"`
	EmployeeCount int `gorm:"column:employee_count" json:"employee_count"`
}
