package middleware

import (
	"Inkstone/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入用户身份，失败或缺失则身份为空
func AuthOptionalMiddleware(validator *security.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Set("user_id", "")
			c.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := validator.ValidateToken(token)

		if err != nil {
			c.Set("user_id", "")
		} else {
			userID := claims.ResolveUserID()
			c.Set("user_id", userID)
			c.Set("username", claims.Username)
			newCtx := context.WithValue(c.Request.Context(), "user_id", userID)
			c.Request = c.Request.WithContext(newCtx)
		}

		c.Next()
	}
}
