package dto

import "time"

// ── 不可用时间 DTO ──

// IndisponibiliteRequest 新建 / 编辑不可用时间
type IndisponibiliteRequest struct {
	EmployeeID  string     `json:"employee_id"`
	Type        string     `json:"type"`
	DateDebut   *time.Time `json:"date_debut"`
	DateFin     *time.Time `json:"date_fin"`
	Description string     `json:"description"`
}

// IndisponibiliteListRequest 列表过滤
type IndisponibiliteListRequest struct {
	EmployeeID      string `form:"employee_id"      binding:"omitempty,uuid"`
	IncludeArchived bool   `form:"include_archived"`
}

// IndisponibiliteImportResponse ICS 导入结果
type IndisponibiliteImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
