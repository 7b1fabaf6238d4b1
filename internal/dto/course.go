package dto

// ── 课程模块 DTO ──

// PresenceItem 单个学员出勤
type PresenceItem struct {
	UserID  string `json:"user_id" binding:"required"`
	Present bool   `json:"present"`
}

// UpdatePresenceRequest 批量更新出勤
type UpdatePresenceRequest struct {
	Presences []PresenceItem `json:"presences" binding:"required,min=1,dive"`
}

// AssignedUserResponse 模块学员
type AssignedUserResponse struct {
	ID      string `json:"id"`
	Nom     string `json:"nom"`
	Prenom  string `json:"prenom"`
	Email   string `json:"email"`
	Present *bool  `json:"present"`
}
