package security

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims auth-service 签发的 Token 载荷。
// 用户 ID 优先取 user_id，缺省回落到标准 sub
type UserClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (c *UserClaims) ResolveUserID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}
