package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/service"
	"gesrh/backend/pkg/response"
)

// CourseHandler 培训模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListModules 模块列表
// GET /api/courses
func (h *CourseHandler) ListModules(c *gin.Context) {
	modules, err := h.courseSvc.ListModules(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, modules)
}

// GetModule 模块详情
// GET /api/courses/:id
func (h *CourseHandler) GetModule(c *gin.Context) {
	m, err := h.courseSvc.GetModule(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, m)
}

// GetEvaluation 评估详情
// GET /api/evaluations/:id
func (h *CourseHandler) GetEvaluation(c *gin.Context) {
	ev, err := h.courseSvc.GetEvaluation(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, ev)
}

// AssignedUsers 模块学员及出勤
// GET /api/courses/:id/assignedUsers
func (h *CourseHandler) AssignedUsers(c *gin.Context) {
	users, err := h.courseSvc.AssignedUsers(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, users)
}

// UpdatePresence 批量更新出勤（管理员）
// POST /api/courses/:id/updatePresence
func (h *CourseHandler) UpdatePresence(c *gin.Context) {
	var req dto.UpdatePresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	users, err := h.courseSvc.UpdatePresence(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, users)
}

func handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrModuleNotFound):
		response.NotFound(c, codeModuleNotFound, err.Error())
	case errors.Is(err, service.ErrEvaluationNotFound):
		response.NotFound(c, codeEvaluationNotFound, err.Error())
	case errors.Is(err, service.ErrNoAssignedUsers):
		response.NotFound(c, codeNoAssignedUsers, err.Error())
	case errors.Is(err, service.ErrUserNotAssigned):
		response.BadRequest(c, codeUserNotAssigned, err.Error())
	default:
		response.InternalError(c)
	}
}
