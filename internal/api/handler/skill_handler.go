package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/service"
	"gesrh/backend/pkg/response"
)

// SkillHandler 技能模块 HTTP 处理器
type SkillHandler struct {
	skillSvc service.SkillService
}

// NewSkillHandler 创建 SkillHandler
func NewSkillHandler(skillSvc service.SkillService) *SkillHandler {
	return &SkillHandler{skillSvc: skillSvc}
}

// ListSkills 技能列表（附使用情况）
// GET /api/skills
func (h *SkillHandler) ListSkills(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	page, err := h.skillSvc.List(c.Request.Context(), req.Query())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, page)
}

// Analysis 技能分析页
// GET /api/skills/analysis
func (h *SkillHandler) Analysis(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	page, err := h.skillSvc.Analysis(c.Request.Context(), req.Query())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, page)
}

// GetSkill 技能详情
// GET /api/skills/:id
func (h *SkillHandler) GetSkill(c *gin.Context) {
	skill, err := h.skillSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleSkillError(c, err)
		return
	}
	response.OK(c, skill)
}

// CreateSkill 新建技能（管理员）
// POST /api/skills
func (h *SkillHandler) CreateSkill(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}
	var req dto.SkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	skill, err := h.skillSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleSkillError(c, err)
		return
	}
	response.Created(c, skill)
}

// UpdateSkill 编辑技能（管理员）
// PUT /api/skills/:id
func (h *SkillHandler) UpdateSkill(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}
	var req dto.SkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	skill, err := h.skillSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleSkillError(c, err)
		return
	}
	response.OK(c, skill)
}

// DeleteSkill 删除技能（管理员）；仍被岗位要求时拒绝
// DELETE /api/skills/:id
func (h *SkillHandler) DeleteSkill(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	if err := h.skillSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleSkillError(c, err)
		return
	}
	response.OK(c, nil)
}

// Suggest 技能联想
// GET /api/skills/suggest?q=&exclude=
func (h *SkillHandler) Suggest(c *gin.Context) {
	var req dto.SuggestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.skillSvc.Suggest(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ImportSkills 从 Excel 批量导入技能（管理员）
// POST /api/skills/import  (multipart: file)
func (h *SkillHandler) ImportSkills(c *gin.Context) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeParamError, "Veuillez joindre un fichier Excel")
		return
	}
	defer file.Close()

	result, err := h.skillSvc.ImportXLSX(c.Request.Context(), file, callerID)
	if err != nil {
		handleSkillError(c, err)
		return
	}
	response.OK(c, result)
}

func handleSkillError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrSkillCodeTaken):
		response.Conflict(c, codeSkillCodeTaken, err.Error())
	case errors.Is(err, service.ErrSkillInUse):
		response.Conflict(c, codeSkillInUse, err.Error())
	case errors.Is(err, service.ErrImportBadFile),
		errors.Is(err, service.ErrImportBadHeader),
		errors.Is(err, service.ErrImportEmptySheet):
		response.BadRequest(c, codeImportInvalid, err.Error())
	default:
		response.InternalError(c)
	}
}
