package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/internal/api/handler"
	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/pkg/jwt"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// JWTAuth validates the Bearer access token and injects the caller into the
// context. blacklist may be nil; when the blacklist lookup fails the token is
// accepted.
func JWTAuth(jwtMgr *jwt.Manager, blacklist backend.TokenBlacklist, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, response.CodeUnauthorized, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, response.CodeUnauthorized, "token invalid or expired")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TypeAccess {
			response.Unauthorized(c, response.CodeUnauthorized, "wrong token type")
			c.Abort()
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Warn("token blacklist lookup failed", zap.Error(err))
			} else if revoked {
				response.Unauthorized(c, response.CodeUnauthorized, "token revoked")
				c.Abort()
				return
			}
		}

		c.Set(handler.CtxUserID, claims.UserID)
		c.Set(handler.CtxRole, claims.Role)
		c.Set(handler.CtxAccessToken, parts[1])

		c.Next()
	}
}

// RoleAuth lets through callers holding one of allowedRoles.
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(handler.CtxRole)
		if userRole == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "not authenticated")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "access denied")
		c.Abort()
	}
}
