package model

import (
	"encoding/json"
	"time"
)

// Module 培训模块（课程）— 对应 modules
type Module struct {
	ID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Titre       string     `gorm:"type:varchar(200);not null"                     json:"titre"`
	Description string     `gorm:"type:text;not null;default:''"                  json:"description"`
	DureeHeures int        `gorm:"not null;default:0"                             json:"duree_heures"`
	DateDebut   *time.Time `gorm:"type:timestamptz"                               json:"date_debut,omitempty"`
	DateFin     *time.Time `gorm:"type:timestamptz"                               json:"date_fin,omitempty"`
	Formateur   string     `gorm:"type:varchar(150);not null;default:''"          json:"formateur"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Module) TableName() string { return "modules" }

// ModuleAssignment 模块学员分配与出勤 — 对应 module_assignments
type ModuleAssignment struct {
	ModuleID   string    `gorm:"type:uuid;primaryKey"               json:"module_id"`
	EmployeeID string    `gorm:"type:uuid;primaryKey"               json:"employee_id"`
	Present    *bool     `                                          json:"present"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Employee *Employee `gorm:"foreignKey:EmployeeID;references:ID" json:"employee,omitempty"`
}

// TableName 指定表名
func (ModuleAssignment) TableName() string { return "module_assignments" }

// Evaluation 模块评估 — 对应 evaluations
type Evaluation struct {
	ID        string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ModuleID  string          `gorm:"type:uuid;not null"                             json:"module_id"`
	Titre     string          `gorm:"type:varchar(200);not null"                     json:"titre"`
	Questions json.RawMessage `gorm:"type:jsonb;not null;default:'[]'"               json:"questions"`
	NoteMax   int             `gorm:"not null;default:20"                            json:"note_max"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Evaluation) TableName() string { return "evaluations" }

// CycleProgram 培训周期 / 项目 — 对应 cycles_programs
type CycleProgram struct {
	ID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Titre       string     `gorm:"type:varchar(200);not null"                     json:"titre"`
	Type        string     `gorm:"type:varchar(10);not null"                      json:"type"` // cycle | program
	Description string     `gorm:"type:text;not null;default:''"                  json:"description"`
	DateDebut   *time.Time `gorm:"type:timestamptz"                               json:"date_debut,omitempty"`
	DateFin     *time.Time `gorm:"type:timestamptz"                               json:"date_fin,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 由仓储层按 cycle_program_modules.position 顺序加载
	Modules []Module `gorm:"-" json:"modules"`
}

// TableName 指定表名
func (CycleProgram) TableName() string { return "cycles_programs" }

// ModuleIDs 所含模块 ID
func (cp *CycleProgram) ModuleIDs() []string {
	ids := make([]string, len(cp.Modules))
	for i, m := range cp.Modules {
		ids[i] = m.ID
	}
	return ids
}

// CycleProgramModule 周期 / 项目与模块的关联 — 对应 cycle_program_modules
type CycleProgramModule struct {
	CycleProgramID string `gorm:"type:uuid;primaryKey" json:"cycle_program_id"`
	ModuleID       string `gorm:"type:uuid;primaryKey" json:"module_id"`
	Position       int    `gorm:"not null;default:0"   json:"position"`
}

// TableName 指定表名
func (CycleProgramModule) TableName() string { return "cycle_program_modules" }

// Registration 报名 — 对应 registrations
type Registration struct {
	ID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EmployeeID     string     `gorm:"type:uuid;not null"                             json:"user_id"`
	CycleProgramID string     `gorm:"type:uuid;not null"                             json:"cycle_program_id"`
	Status         string     `gorm:"type:varchar(10);not null;default:'pending'"    json:"status"`
	DecidedBy      *string    `gorm:"type:uuid"                                      json:"decided_by,omitempty"`
	DecidedAt      *time.Time `gorm:"type:timestamptz"                               json:"decided_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Employee     *Employee            `gorm:"foreignKey:EmployeeID;references:ID"     json:"user,omitempty"`
	CycleProgram *CycleProgram        `gorm:"foreignKey:CycleProgramID;references:ID" json:"cycle_program,omitempty"`
	Modules      []RegistrationModule `gorm:"foreignKey:RegistrationID;references:ID" json:"modules"`
}

// TableName 指定表名
func (Registration) TableName() string { return "registrations" }

// RegistrationModule 报名的模块级状态 — 对应 registration_modules
type RegistrationModule struct {
	RegistrationID string    `gorm:"type:uuid;primaryKey"                        json:"-"`
	ModuleID       string    `gorm:"type:uuid;primaryKey"                        json:"module_id"`
	Status         string    `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"updated_at"`

	Module *Module `gorm:"foreignKey:ModuleID;references:ID" json:"module,omitempty"`
}

// TableName 指定表名
func (RegistrationModule) TableName() string { return "registration_modules" }
