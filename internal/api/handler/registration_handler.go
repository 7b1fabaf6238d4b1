package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/service"
	"gesrh/backend/internal/workflow"
	"gesrh/backend/pkg/response"
	"gesrh/backend/pkg/wshub"
)

// RegistrationHandler 周期/项目报名与审批 HTTP 处理器
type RegistrationHandler struct {
	regSvc service.RegistrationService
	ws     WSServer
}

// NewRegistrationHandler 创建 RegistrationHandler；ws 可为 nil
func NewRegistrationHandler(regSvc service.RegistrationService, ws WSServer) *RegistrationHandler {
	return &RegistrationHandler{regSvc: regSvc, ws: ws}
}

// ListTargets 周期/项目列表
// GET /api/cycles-programs
func (h *RegistrationHandler) ListTargets(c *gin.Context) {
	targets, err := h.regSvc.ListTargets(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, targets)
}

// GetTarget 周期/项目详情
// GET /api/cycles-programs/:id
func (h *RegistrationHandler) GetTarget(c *gin.Context) {
	target, err := h.regSvc.GetTarget(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleRegistrationError(c, err)
		return
	}
	response.OK(c, target)
}

// ListRegistrations 报名列表；普通员工只看到自己的报名
// GET /api/cycles-programs/:id/registrations?user_id=
func (h *RegistrationHandler) ListRegistrations(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.RegistrationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	regs, err := h.regSvc.ListRegistrations(c.Request.Context(), caller, c.Param("id"), req.UserID)
	if err != nil {
		handleRegistrationError(c, err)
		return
	}
	response.OK(c, regs)
}

// Register 报名
// POST /api/cycles-programs/:id/register
func (h *RegistrationHandler) Register(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	reg, err := h.regSvc.Register(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleRegistrationError(c, err)
		return
	}
	response.Created(c, reg)
}

// Pending 待审批报名（管理员）
// GET /api/cycles-programs/pending-registrations
func (h *RegistrationHandler) Pending(c *gin.Context) {
	regs, err := h.regSvc.Pending(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, regs)
}

// Decide 审批单个报名或其中一个模块（管理员）
// PUT /api/cycles-programs/registrations/:id/status
func (h *RegistrationHandler) Decide(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	reg, err := h.regSvc.Decide(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleRegistrationError(c, err)
		return
	}
	response.OK(c, reg)
}

// DecideBatch 批量审批（管理员）；单行失败不影响其他行
// POST /api/cycles-programs/registrations/decisions
func (h *RegistrationHandler) DecideBatch(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.BatchDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.regSvc.DecideBatch(c.Request.Context(), caller, &req)
	if err != nil {
		handleRegistrationError(c, err)
		return
	}
	response.OK(c, result)
}

// PendingFeed 待审批列表实时推送（管理员）
// GET /api/cycles-programs/pending-registrations/ws
func (h *RegistrationHandler) PendingFeed(c *gin.Context) {
	if h.ws == nil {
		response.Error(c, http.StatusServiceUnavailable, codeLiveFeedUnavailable, "Flux temps réel indisponible")
		return
	}
	// 升级失败时 upgrader 已写入响应
	if err := h.ws.ServeWS(c.Writer, c.Request); errors.Is(err, wshub.ErrHubStopped) && !c.Writer.Written() {
		response.Error(c, http.StatusServiceUnavailable, codeLiveFeedUnavailable, "Flux temps réel indisponible")
	}
}

func handleRegistrationError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrTargetNotFound):
		response.NotFound(c, codeTargetNotFound, err.Error())
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.NotFound(c, codeRegistrationNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyRegistered):
		response.Conflict(c, codeAlreadyRegistered, err.Error())
	case errors.Is(err, workflow.ErrNoModuleSelected),
		errors.Is(err, workflow.ErrModuleNotInProgram),
		errors.Is(err, workflow.ErrInvalidTargetType):
		response.BadRequest(c, codeInvalidSelection, err.Error())
	case errors.Is(err, workflow.ErrRedundantDecision):
		response.Conflict(c, codeRedundantDecision, err.Error())
	case errors.Is(err, workflow.ErrAlreadyDecided):
		response.Conflict(c, codeAlreadyDecided, err.Error())
	case errors.Is(err, workflow.ErrInvalidDecision),
		errors.Is(err, workflow.ErrCycleIsAtomic),
		errors.Is(err, workflow.ErrUnknownModule):
		response.BadRequest(c, codeInvalidDecision, err.Error())
	case errors.Is(err, workflow.ErrRowBusy):
		response.Conflict(c, codeRowBusy, err.Error())
	default:
		response.InternalError(c)
	}
}
