// Package workflow 培训报名审批流程
package workflow

import "errors"

// Status 报名（或模块）状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Valid 是否为已知状态
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsDecision 是否为可提交的审批结果
func (s Status) IsDecision() bool {
	return s == StatusAccepted || s == StatusRejected
}

// TargetType 报名对象类型
type TargetType string

const (
	TargetCycle   TargetType = "cycle"
	TargetProgram TargetType = "program"
)

// Valid 是否为已知类型
func (t TargetType) Valid() bool {
	return t == TargetCycle || t == TargetProgram
}

var (
	ErrInvalidDecision   = errors.New("le statut doit être accepted ou rejected")
	ErrRedundantDecision = errors.New("la décision correspond déjà au statut actuel")
	ErrAlreadyDecided    = errors.New("l'inscription a déjà été traitée")
	ErrCycleIsAtomic     = errors.New("une inscription à un cycle se décide dans son ensemble")
	ErrUnknownModule     = errors.New("module absent de l'inscription")
)

// ModuleStatus 模块级状态
type ModuleStatus struct {
	ModuleID string `json:"module_id"`
	Status   Status `json:"status"`
}

// Registration 报名审批聚合
type Registration struct {
	ID         string         `json:"id"`
	TargetType TargetType     `json:"type"`
	Status     Status         `json:"status"`
	Modules    []ModuleStatus `json:"modules"`
}

// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - 整体审批只能从 pending 出发，accepted / rejected 为终态
//   - program 类报名的每个模块独立审批，互不影响；模块可从任何状态改判，重复提交当前状态视为无效操作
//   - cycle 类报名整体生效，不接受模块级审批

// Decide 整体审批
func (r *Registration) Decide(s Status) error {
	if !s.IsDecision() {
		return ErrInvalidDecision
	}
	if r.Status == s {
		return ErrRedundantDecision
	}
	if r.Status != StatusPending {
		return ErrAlreadyDecided
	}
	r.Status = s
	return nil
}

// DecideModule 模块级审批，仅 program 类报名可用，其余模块保持不变
func (r *Registration) DecideModule(moduleID string, s Status) error {
	if r.TargetType == TargetCycle {
		return ErrCycleIsAtomic
	}
	if !s.IsDecision() {
		return ErrInvalidDecision
	}
	for i := range r.Modules {
		if r.Modules[i].ModuleID != moduleID {
			continue
		}
		if r.Modules[i].Status == s {
			return ErrRedundantDecision
		}
		r.Modules[i].Status = s
		return nil
	}
	return ErrUnknownModule
}

// ModuleStatusOf 查询模块状态
func (r *Registration) ModuleStatusOf(moduleID string) (Status, bool) {
	for _, m := range r.Modules {
		if m.ModuleID == moduleID {
			return m.Status, true
		}
	}
	return "", false
}

// ActionSet 审批按钮可用性
type ActionSet struct {
	CanAccept bool `json:"can_accept"`
	CanReject bool `json:"can_reject"`
}

func actionsFor(s Status) ActionSet {
	return ActionSet{
		CanAccept: s != StatusAccepted,
		CanReject: s != StatusRejected,
	}
}

// Actions 审批操作
type Actions struct {
	Overall ActionSet            `json:"overall"`
	Modules map[string]ActionSet `json:"modules,omitempty"`
}

// Actions 当前状态下可执行的审批操作
// 整体审批结束后按钮全部禁用；模块按钮只禁用与当前状态相同的一项
func (r *Registration) Actions() Actions {
	var a Actions
	if r.Status == StatusPending {
		a.Overall = actionsFor(r.Status)
	}
	if r.TargetType == TargetProgram && len(r.Modules) > 0 {
		a.Modules = make(map[string]ActionSet, len(r.Modules))
		for _, m := range r.Modules {
			a.Modules[m.ModuleID] = actionsFor(m.Status)
		}
	}
	return a
}
