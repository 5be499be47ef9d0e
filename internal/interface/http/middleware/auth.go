package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cerbrary/cerbrary/internal/domain/user"
	"github.com/cerbrary/cerbrary/internal/infrastructure/persistence/redis"
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
	"github.com/cerbrary/cerbrary/pkg/jwt"
	"github.com/cerbrary/cerbrary/pkg/response"
)

// AuthMiddleware JWT认证中间件
// 设计说明:
// 1. 从Header提取Token,检查黑名单,验证签名
// 2. Claims中的角色/状态用于粗粒度授权;借阅等关键操作
//    仍会回库校验,防止Claims过期失真
// 3. 用户信息注入Context,供Handler使用
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 格式:Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 黑名单检查:已登出或被强制失效的Token直接拒绝
		isBlacklisted, err := m.sessionStore.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if isBlacklisted {
			response.Error(c, apperrors.ErrTokenExpired)
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("access_token", tokenString)

		c.Next()
	}
}

// RequireAdmin 要求管理员角色,必须在RequireAuth之后使用
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != user.RoleAdmin {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID 从Context获取当前登录用户ID(未登录返回0)
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetRole 从Context获取当前登录用户角色
func GetRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}

// IsAdmin 当前登录用户是否管理员
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == user.RoleAdmin
}

// GetAccessToken 从Context获取当前请求的Access Token(登出时拉黑用)
func GetAccessToken(c *gin.Context) string {
	if token, exists := c.Get("access_token"); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}

// MustGetUserID 从Context获取用户ID,用于已通过RequireAuth的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
