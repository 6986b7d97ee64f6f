package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// Context keys set by middleware.JWTAuth.
const (
	CtxUserID      = "user_id"
	CtxRole        = "role"
	CtxAccessToken = "access_token"
)

const msgUnauthenticated = "not authenticated"

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

// MustGetUserID extracts user_id. On false a 401 has been written and the
// caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxUserID)
}

// MustGetRole extracts role.
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxRole)
}

// mustCurrentUser loads the caller as an AppUser.
func mustCurrentUser(c *gin.Context, auth service.AuthService) (*model.AppUser, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return nil, false
	}
	user, err := auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		switch backend.KindOf(err) {
		case backend.KindNotConfigured:
			response.NotConfigured(c)
		case backend.KindNotFound, backend.KindUnauthorized:
			response.Unauthorized(c, response.CodeUnauthorized, msgUnauthenticated)
		default:
			response.InternalError(c)
		}
		return nil, false
	}
	return user, true
}

// handleBackendError writes the response for errors no handler maps itself.
func handleBackendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, backend.ErrNotConfigured):
		response.NotConfigured(c)
	case errors.Is(err, service.ErrNotInstructor):
		response.Forbidden(c, response.CodeForbidden, "instructors only")
	default:
		switch backend.KindOf(err) {
		case backend.KindNotFound:
			response.NotFound(c, 10404, "resource not found")
		case backend.KindDuplicate:
			response.Conflict(c, 10409, "resource already exists")
		default:
			response.InternalError(c)
		}
	}
}

func bindFailed(c *gin.Context) {
	response.BadRequest(c, response.CodeBadParams, "invalid parameters")
}
