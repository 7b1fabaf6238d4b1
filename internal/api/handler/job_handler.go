package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/service"
	"gesrh/backend/pkg/response"
)

// JobHandler 岗位模块 HTTP 处理器
type JobHandler struct {
	jobSvc service.JobService
}

// NewJobHandler 创建 JobHandler
func NewJobHandler(jobSvc service.JobService) *JobHandler {
	return &JobHandler{jobSvc: jobSvc}
}

// ListJobs 岗位列表
// GET /api/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	page, err := h.jobSvc.List(c.Request.Context(), req.Query())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, page)
}

// GetJob 岗位详情
// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleJobError(c, err)
		return
	}
	response.OK(c, job)
}

// CreateJob 新建岗位（管理员）
// POST /api/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}
	var req dto.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	job, err := h.jobSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleJobError(c, err)
		return
	}
	response.Created(c, job)
}

// UpdateJob 编辑岗位（管理员）
// PUT /api/jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}
	var req dto.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	job, err := h.jobSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleJobError(c, err)
		return
	}
	response.OK(c, job)
}

// DeleteJob 删除岗位（管理员）
// DELETE /api/jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	if err := h.jobSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleJobError(c, err)
		return
	}
	response.OK(c, nil)
}

// GroupedSkills 按等级分组的岗位所需技能
// GET /api/jobs/:id/skills/grouped
func (h *JobHandler) GroupedSkills(c *gin.Context) {
	groups, err := h.jobSvc.GroupedSkills(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleJobError(c, err)
		return
	}
	response.OK(c, groups)
}

// CheckCode 岗位编码是否可用
// GET /api/jobs/check-code?code=&exclude_id=
func (h *JobHandler) CheckCode(c *gin.Context) {
	var req dto.CheckCodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	available, err := h.jobSvc.CheckCode(c.Request.Context(), req.Code, req.ExcludeID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, dto.CheckCodeResponse{Available: available})
}

func handleJobError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrJobCodeTaken):
		response.Conflict(c, codeJobCodeTaken, err.Error())
	default:
		response.InternalError(c)
	}
}
