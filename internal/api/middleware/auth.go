package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"gesrh/backend/pkg/jwt"
	"gesrh/backend/pkg/response"
)

// TokenBlacklist 登出 token 查询（*redis.Client 实现，nil 客户端视为空黑名单）
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证会话 token；
// WebSocket 握手无法携带请求头，允许使用 ?token= 查询参数
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := jwtMgr.ParseToken(raw)
		if err != nil {
			response.Unauthorized(c, response.CodeUnauthorized, "Session invalide ou expirée")
			c.Abort()
			return
		}

		// Redis 出错时降级放行（与限流策略一致）
		if blacklist != nil && claims.ID != "" {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, response.CodeUnauthorized, "Session terminée, veuillez vous reconnecter")
				c.Abort()
				return
			}
		}

		// 将员工信息注入上下文
		c.Set("employee_id", claims.EmployeeID)
		c.Set("role", claims.Role)
		c.Set("claims", claims)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" && c.IsWebsocket() {
			return t, true
		}
		response.Unauthorized(c, response.CodeUnauthorized, "En-tête d'authentification manquant")
		c.Abort()
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "En-tête d'authentification invalide")
		c.Abort()
		return "", false
	}
	return parts[1], true
}

// RoleAuth 角色权限中间件
// 检查当前员工是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, response.CodeUnauthorized, "Authentification requise")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "Accès refusé")
		c.Abort()
	}
}
