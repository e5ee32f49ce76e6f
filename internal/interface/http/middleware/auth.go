// Package middleware 提供gin中间件：认证、鉴权与指标收集
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/domain/user"
	redisstore "github.com/biblioteka/backend/internal/infrastructure/persistence/redis"
	"github.com/biblioteka/backend/pkg/errors"
	"github.com/biblioteka/backend/pkg/jwt"
	"github.com/biblioteka/backend/pkg/response"
)

// context键约定
const (
	ctxKeyActor = "actor"
	ctxKeyToken = "token"
)

// RequireAuth 认证中间件
//
// 校验流程：
// 1. 解析Authorization: Bearer <token>
// 2. 验证JWT签名与有效期
// 3. 检查令牌黑名单（登出后的令牌即使未过期也被拒绝）
// 4. 构造Actor注入context
func RequireAuth(jwtMgr *jwt.Manager, sessions *redisstore.SessionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if sessions != nil {
			blacklisted, err := sessions.IsTokenBlacklisted(c.Request.Context(), token)
			if err != nil {
				// 黑名单检查失败时放行：Redis故障不应导致整个API不可用
				log.Warn("令牌黑名单检查失败", zap.Error(err))
			} else if blacklisted {
				response.Error(c, errors.ErrInvalidToken)
				c.Abort()
				return
			}
		}

		c.Set(ctxKeyActor, user.Actor{
			ID:    claims.UserID,
			Email: claims.Email,
			Name:  claims.Name,
			Role:  user.Role(claims.Role),
		})
		c.Set(ctxKeyToken, token)
		c.Next()
	}
}

// RequireRole 角色鉴权中间件，必须在RequireAuth之后使用
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		response.Error(c, errors.ErrForbidden)
		c.Abort()
	}
}

// GetActor 从context取当前操作者
func GetActor(c *gin.Context) (user.Actor, bool) {
	v, exists := c.Get(ctxKeyActor)
	if !exists {
		return user.Actor{}, false
	}
	actor, ok := v.(user.Actor)
	return actor, ok
}

// GetToken 从context取当前请求的原始令牌（登出时入黑名单用）
func GetToken(c *gin.Context) string {
	v, exists := c.Get(ctxKeyToken)
	if !exists {
		return ""
	}
	token, _ := v.(string)
	return token
}

// extractToken 从Authorization头提取Bearer令牌
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
