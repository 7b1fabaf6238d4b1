package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/service"
	"gesrh/backend/pkg/response"
)

const icsContentType = "text/calendar; charset=utf-8"

// IndisponibiliteHandler 不可用时间 HTTP 处理器
// 普通员工只能操作自己的记录，归属校验在 Service 层
type IndisponibiliteHandler struct {
	svc service.IndisponibiliteService
}

// NewIndisponibiliteHandler 创建 IndisponibiliteHandler
func NewIndisponibiliteHandler(svc service.IndisponibiliteService) *IndisponibiliteHandler {
	return &IndisponibiliteHandler{svc: svc}
}

// List 不可用时间列表
// GET /api/indisponibilites?employee_id=&include_archived=
func (h *IndisponibiliteHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.IndisponibiliteListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	slots, err := h.svc.List(c.Request.Context(), caller, &req)
	if err != nil {
		handleIndispoError(c, err)
		return
	}
	response.OK(c, slots)
}

// Get 不可用时间详情
// GET /api/indisponibilites/:id
func (h *IndisponibiliteHandler) Get(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	slot, err := h.svc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		handleIndispoError(c, err)
		return
	}
	response.OK(c, slot)
}

// Create 新建不可用时间
// POST /api/indisponibilites
func (h *IndisponibiliteHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.IndisponibiliteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	slot, err := h.svc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleIndispoError(c, err)
		return
	}
	response.Created(c, slot)
}

// Update 编辑不可用时间；已归档的记录不可修改
// PUT /api/indisponibilites/:id
func (h *IndisponibiliteHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.IndisponibiliteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	slot, err := h.svc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleIndispoError(c, err)
		return
	}
	response.OK(c, slot)
}

// Archive 归档
// PUT /api/indisponibilites/:id/archive
func (h *IndisponibiliteHandler) Archive(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.svc.Archive(c.Request.Context(), caller, c.Param("id")); err != nil {
		handleIndispoError(c, err)
		return
	}
	response.OK(c, nil)
}

// Delete 删除
// DELETE /api/indisponibilites/:id
func (h *IndisponibiliteHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		handleIndispoError(c, err)
		return
	}
	response.OK(c, nil)
}

// ExportICS 导出为 iCalendar 文件
// GET /api/indisponibilites/export.ics?employee_id=
func (h *IndisponibiliteHandler) ExportICS(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	employeeID := c.Query("employee_id")
	if employeeID == "" {
		employeeID = caller.ID
	}

	body, err := h.svc.ExportICS(c.Request.Context(), caller, employeeID)
	if err != nil {
		handleIndispoError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape("indisponibilites.ics"))
	c.Data(http.StatusOK, icsContentType, []byte(body))
}

// ImportICS 导入 iCalendar 文件，事件记为 other 类型
// POST /api/indisponibilites/import  (multipart: file, employee_id)
func (h *IndisponibiliteHandler) ImportICS(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeParamError, "Veuillez joindre un fichier .ics")
		return
	}
	defer file.Close()

	employeeID := c.PostForm("employee_id")
	if employeeID == "" {
		employeeID = caller.ID
	}

	result, err := h.svc.ImportICS(c.Request.Context(), caller, employeeID, file)
	if err != nil {
		handleIndispoError(c, err)
		return
	}
	response.Created(c, result)
}

func handleIndispoError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrIndispoNotFound):
		response.NotFound(c, codeIndispoNotFound, err.Error())
	case errors.Is(err, service.ErrIndispoArchived):
		response.Conflict(c, codeIndispoArchived, err.Error())
	case errors.Is(err, service.ErrIndispoICS):
		response.BadRequest(c, codeIndispoICS, err.Error())
	default:
		response.InternalError(c)
	}
}
