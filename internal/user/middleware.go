package user

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader 携带由外部身份解析层验证过的用户ID。
	// 本服务信任这个值，不做任何认证（见外部接口约定）。
	UserIDHeader = "X-User-ID"

	// UserIDKey 是UserID在Gin上下文中的键名。
	UserIDKey = "userID"
)

// RequireUserMiddleware 从请求头读取已认证的UserID，
// 校验格式、确保用户已激活，并将其放入Gin上下文。
// 缺失或格式非法的ID直接拒绝请求。
func RequireUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" || !IsValidUUID(userID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少或非法的用户标识"})
			return
		}

		if err := ActivateUser(userID); err != nil {
			fmt.Printf("激活用户 %s 失败: %v\n", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "用户初始化失败"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// CurrentUserID 从Gin上下文中取出当前请求的UserID。
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
