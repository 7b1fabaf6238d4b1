package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/service"
	"gesrh/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// CheckEmail 邮箱是否已登记、是否已设置密码
// GET /api/employees/check-email?email=
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var req dto.CheckEmailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.CheckEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// CheckPassword 登录
// POST /api/employees/check-password
func (h *AuthHandler) CheckPassword(c *gin.Context) {
	var req dto.CheckPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.CheckPassword(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// SavePassword 首次设置密码
// POST /api/employees/save-password
func (h *AuthHandler) SavePassword(c *gin.Context) {
	var req dto.SavePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.SavePassword(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}
	response.OK(c, result)
}

// VerifySession 校验当前会话
// GET /api/employees/verify-session
func (h *AuthHandler) VerifySession(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	result, err := h.authSvc.VerifySession(c.Request.Context(), claims)
	if err != nil {
		handleAuthError(c, err)
		return
	}
	response.OK(c, result)
}

// Logout 登出：token 拉黑至过期
// POST /api/employees/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		response.BadRequest(c, codePasswordMismatch, err.Error())
	case errors.Is(err, service.ErrWeakPassword):
		response.BadRequest(c, codeWeakPassword, err.Error())
	case errors.Is(err, service.ErrPasswordAlreadySet):
		response.Conflict(c, codePasswordAlreadySet, err.Error())
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, codeAuthUnknownEmail, err.Error())
	case errors.Is(err, service.ErrSessionInvalid):
		response.Unauthorized(c, codeSessionInvalid, err.Error())
	default:
		response.InternalError(c)
	}
}
