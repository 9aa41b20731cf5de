package jwt

import (
	"net/http"
	"strings"

	"blog-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUserIDKey 用户ID在gin.Context中的键名
	ContextUserIDKey = "user_id"
	// ContextUsernameKey 用户名在gin.Context中的键名
	ContextUsernameKey = "username"
	// ContextClaimsKey JWT声明在gin.Context中的键名
	ContextClaimsKey = "jwt_claims"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}

// bearerToken 提取 Authorization: Bearer <token>；present 表示请求头是否存在
func bearerToken(c *gin.Context) (token string, present bool, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", true, false
	}
	token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, true, token != ""
}

// AuthMiddleware JWT认证中间件
// 验证 access token 并将用户信息存入gin.Context
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, present, ok := bearerToken(c)
		if !present {
			abortUnauthorized(c, "Authentication credentials were not provided.")
			return
		}
		if !ok {
			abortUnauthorized(c, "Authorization header must be Bearer <token>.")
			return
		}
		if !s.authenticate(c, tokenString) {
			abortUnauthorized(c, "Given token not valid for any token type.")
			return
		}
		c.Next()
	}
}

// OptionalAuth 可选认证：无请求头时按匿名处理，携带了无效令牌则拒绝
func (s *JWTService) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, present, ok := bearerToken(c)
		if !present {
			c.Next()
			return
		}
		if !ok || !s.authenticate(c, tokenString) {
			abortUnauthorized(c, "Given token not valid for any token type.")
			return
		}
		c.Next()
	}
}

func (s *JWTService) authenticate(c *gin.Context, tokenString string) bool {
	claims, err := s.ValidateToken(tokenString, TokenTypeAccess)
	if err != nil {
		logger.Warn("JWT验证失败",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		return false
	}

	// 将用户信息存入Context
	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextUsernameKey, claims.Username)
	c.Set(ContextClaimsKey, claims)

	logger.Debug("用户访问接口",
		zap.Uint("user_id", claims.UserID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
	return true
}

// GetUserID 从gin.Context中获取用户ID，未认证时返回 0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ContextUserIDKey); exists {
		if id, ok := userID.(uint); ok {
			return id
		}
	}
	return 0
}

// GetUsername 从gin.Context中获取用户名
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsernameKey)
}

// GetClaims 从gin.Context中获取JWT声明
func GetClaims(c *gin.Context) *CustomClaims {
	if claims, exists := c.Get(ContextClaimsKey); exists {
		if cl, ok := claims.(*CustomClaims); ok {
			return cl
		}
	}
	return nil
}
