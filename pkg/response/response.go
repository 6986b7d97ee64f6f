package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Business error codes shared across modules.
const (
	CodeOK             = 0
	CodeBadParams      = 10001
	CodeUnauthorized   = 10002
	CodeForbidden      = 10003
	CodeRateLimited    = 10004
	CodeBodyTooLarge   = 10005
	CodeNotConfigured  = 10006
	CodeInternalError  = 50000
	messageSuccess     = "success"
	messageInternalErr = "internal server error"
)

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// ListData wraps a collection.
type ListData struct {
	List  interface{} `json:"list"`
	Total int         `json:"total"`
}

// OK 200.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: messageSuccess, Data: data})
}

// Created 201.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: messageSuccess, Data: data})
}

// List 200 with a list payload.
func List(c *gin.Context, list interface{}, total int) {
	OK(c, ListData{List: list, Total: total})
}

// Error writes a failure envelope.
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{Code: code, Message: message})
}

// ErrorWithDetails writes a failure envelope with a structured details payload.
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message string, details interface{}) {
	c.JSON(httpStatus, Response{Code: code, Message: message, Details: details})
}

// BadRequest 400.
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401.
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403.
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404.
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409.
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// NotConfigured 503, the backend is not configured (offline mode).
func NotConfigured(c *gin.Context) {
	Error(c, http.StatusServiceUnavailable, CodeNotConfigured, "backend not configured")
}

// InternalError 500.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternalError, messageInternalErr)
}
