package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// AuthHandler serves sign-in, registration and the session lifecycle.
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.OK(c, result)
}

// Register POST /api/v1/auth/register
//
// The account may exist even when an error is returned; the client is
// told what failed and can sign in afterwards.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Created(c, result)
}

// Refresh POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.OK(c, result)
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), c.GetString(CtxAccessToken), userID); err != nil {
		writeAuthError(c, err)
		return
	}
	response.OK(c, nil)
}

// Me GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := mustCurrentUser(c, h.authSvc)
	if !ok {
		return
	}
	response.OK(c, user)
}
