package handler

import (
	"github.com/gin-gonic/gin"

	"gesrh/backend/internal/service"
	"gesrh/backend/pkg/jwt"
	"gesrh/backend/pkg/response"
)

const msgUnauthenticated = "Authentification requise"

// MustGetEmployeeID 从 Gin 上下文中安全提取 employee_id。
// 如果 JWT 中间件未正确注入 employee_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetEmployeeID(c *gin.Context) (string, bool) {
	return mustGetString(c, "employee_id")
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

// MustGetCaller 组合 employee_id 与 role
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	id, ok := MustGetEmployeeID(c)
	if !ok {
		return service.Caller{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Caller{}, false
	}
	return service.Caller{ID: id, Role: role}, true
}

// MustGetClaims 取出完整的 token 声明（登出、会话校验使用）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, msgUnauthenticated)
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, response.CodeUnauthorized, msgUnauthenticated)
		return nil, false
	}
	return claims, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, msgUnauthenticated)
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, msgUnauthenticated)
		return "", false
	}
	return s, true
}
