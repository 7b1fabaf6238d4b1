package dto

import (
	"time"

	"gesrh/backend/internal/workflow"
)

// ── 报名模块 DTO ──

// RegisterRequest 报名：program 需选择模块，cycle 忽略模块
type RegisterRequest struct {
	UserID    string   `json:"user_id"    binding:"omitempty,uuid"` // 仅管理员可代报名
	ModuleIDs []string `json:"module_ids"`
}

// RegistrationListRequest 报名列表过滤
type RegistrationListRequest struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// DecisionRequest 审批：带 module_id 时为模块级审批
type DecisionRequest struct {
	ModuleID string `json:"module_id" binding:"omitempty,uuid"`
	Status   string `json:"status"    binding:"required,oneof=accepted rejected"`
}

// BatchDecisionItem 批量审批中的一项
type BatchDecisionItem struct {
	RegistrationID string `json:"registration_id" binding:"required,uuid"`
	ModuleID       string `json:"module_id"       binding:"omitempty,uuid"`
	Status         string `json:"status"          binding:"required,oneof=accepted rejected"`
}

// BatchDecisionRequest 批量审批
type BatchDecisionRequest struct {
	Decisions []BatchDecisionItem `json:"decisions" binding:"required,min=1,max=100,dive"`
}

// BatchDecisionResponse 批量审批结果：rows 为逐行状态，pending 为仍待处理的行
type BatchDecisionResponse struct {
	Rows    []workflow.Row `json:"rows"`
	Pending []workflow.Row `json:"pending"`
}

// RegistrationModuleResponse 报名中的模块
type RegistrationModuleResponse struct {
	ModuleID string `json:"module_id"`
	Titre    string `json:"titre"`
	Status   string `json:"status"`
}

// RegistrationUser 报名人
type RegistrationUser struct {
	ID     string `json:"id"`
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
	Email  string `json:"email"`
}

// RegistrationTarget 报名对象
type RegistrationTarget struct {
	ID    string `json:"id"`
	Titre string `json:"titre"`
	Type  string `json:"type"`
}

// RegistrationResponse 报名详情（含可执行的审批操作）
type RegistrationResponse struct {
	ID           string                       `json:"id"`
	User         *RegistrationUser            `json:"user,omitempty"`
	CycleProgram *RegistrationTarget          `json:"cycle_program,omitempty"`
	Status       string                       `json:"status"`
	Modules      []RegistrationModuleResponse `json:"modules"`
	Actions      workflow.Actions             `json:"actions"`
	CreatedAt    time.Time                    `json:"created_at"`
	DecidedAt    *time.Time                   `json:"decided_at,omitempty"`
}
