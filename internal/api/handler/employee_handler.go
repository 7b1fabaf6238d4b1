package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/service"
	"gesrh/backend/pkg/response"
)

// EmployeeHandler 员工模块 HTTP 处理器
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// ListEmployees 员工列表（搜索 + 分类 + 分页）
// GET /api/employees
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	page, err := h.employeeSvc.List(c.Request.Context(), req.Query())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, page)
}

// GetEmployee 员工详情
// GET /api/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	emp, err := h.employeeSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// CreateEmployee 新建员工（管理员）
// POST /api/employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}
	var req dto.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	emp, err := h.employeeSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.Created(c, emp)
}

// UpdateEmployee 编辑员工（管理员）
// PUT /api/employees/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}
	var req dto.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	emp, err := h.employeeSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// DeleteEmployee 删除员工（管理员）
// DELETE /api/employees/:id
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	if err := h.employeeSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, nil)
}

// GroupedCompetencies 按等级分组的员工技能
// GET /api/employees/:id/competencies/grouped
func (h *EmployeeHandler) GroupedCompetencies(c *gin.Context) {
	groups, err := h.employeeSvc.GroupedCompetencies(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, groups)
}

// SetCompetencyLevel 修改单项技能等级（管理员）
// PUT /api/employees/:id/competencies/:skillId
func (h *EmployeeHandler) SetCompetencyLevel(c *gin.Context) {
	var req dto.SetCompetencyLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	err := h.employeeSvc.SetCompetencyLevel(c.Request.Context(), c.Param("id"), c.Param("skillId"), req.Niveau)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, nil)
}

func handleEmployeeError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEmployeeExists):
		response.Conflict(c, codeEmployeeExists, err.Error())
	case errors.Is(err, service.ErrInvalidHireDate):
		response.BadRequest(c, codeInvalidHireDate, err.Error())
	case errors.Is(err, service.ErrCompetencyNotFound):
		response.NotFound(c, codeCompetencyNotFound, err.Error())
	case errors.Is(err, service.ErrCannotDeleteSelf):
		response.BadRequest(c, codeCannotDeleteSelf, err.Error())
	default:
		response.InternalError(c)
	}
}
