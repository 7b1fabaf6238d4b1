package model

import "time"

// 不可用时间类型
const (
	IndispoLeave         = "leave"
	IndispoWeeklyMeeting = "weekly_meeting"
	IndispoOther         = "other"
)

// Indisponibilite 员工不可用时间 — 对应 indisponibilites
type Indisponibilite struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EmployeeID  string    `gorm:"type:uuid;not null"                             json:"employee_id"`
	Type        string    `gorm:"type:varchar(20);not null"                      json:"type"`
	DateDebut   time.Time `gorm:"type:timestamptz;not null"                      json:"date_debut"`
	DateFin     time.Time `gorm:"type:timestamptz;not null"                      json:"date_fin"`
	Description string    `gorm:"type:text;not null;default:''"                  json:"description"`
	Archived    bool      `gorm:"not null;default:false"                         json:"archived"`
	BaseModel

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:ID" json:"employee,omitempty"`
}

// TableName 指定表名
func (Indisponibilite) TableName() string { return "indisponibilites" }
