// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"electrical-qa-go/internal/service"
	"electrical-qa-go/pkg/log"
	"electrical-qa-go/pkg/token"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// BearerToken 从 Authorization 请求头中取出 token，格式不正确时返回空字符串。
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": status, "message": message})
}

// AuthMiddleware 创建一个 Gin 中间件，用于 JWT 认证。
// 它会从请求头中提取 access token，验证其有效性和是否已登出，并将完整的 User 对象存入 Gin 的上下文中。
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			abort(c, http.StatusUnauthorized, "请求未包含授权头")
			return
		}
		tokenString := BearerToken(c)
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "无效的授权头格式")
			return
		}

		// refresh token 不能用来访问接口
		claims, err := jwtManager.VerifyTokenOfType(tokenString, token.TypeAccess)
		if err != nil {
			abort(c, http.StatusUnauthorized, "无效或已过期的 token")
			return
		}

		revoked, err := userService.IsTokenRevoked(c.Request.Context(), tokenString)
		if err != nil {
			log.Error("AuthMiddleware: 检查 token 黑名单失败", err)
			abort(c, http.StatusInternalServerError, "无法校验 token")
			return
		}
		if revoked {
			abort(c, http.StatusUnauthorized, "token 已失效，请重新登录")
			return
		}

		// 使用 claims 中的用户名从数据库获取完整的用户信息
		user, err := userService.GetProfile(claims.Username)
		if err != nil {
			// 用户可能已被删除
			abort(c, http.StatusUnauthorized, "用户不存在")
			return
		}

		c.Set("user", user)
		c.Set("claims", claims)
		c.Next()
	}
}
