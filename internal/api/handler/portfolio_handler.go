package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// PortfolioHandler serves tool-run history and the idea box.
type PortfolioHandler struct {
	portfolioSvc service.PortfolioService
	ideaSvc      service.IdeaBoxService
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(portfolioSvc service.PortfolioService, ideaSvc service.IdeaBoxService) *PortfolioHandler {
	return &PortfolioHandler{portfolioSvc: portfolioSvc, ideaSvc: ideaSvc}
}

// Create POST /api/v1/portfolio
func (h *PortfolioHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreatePortfolioEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	entry, err := h.portfolioSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleBackendError(c, err)
		return
	}
	response.Created(c, entry)
}

// List GET /api/v1/portfolio?tool_id=
func (h *PortfolioHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.PortfolioListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c)
		return
	}
	list := h.portfolioSvc.List(c.Request.Context(), userID, req.ToolID)
	response.List(c, list, len(list))
}

// Stats GET /api/v1/portfolio/stats
func (h *PortfolioHandler) Stats(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	response.OK(c, h.portfolioSvc.Stats(c.Request.Context(), userID))
}

// Ideas GET /api/v1/ideas
func (h *PortfolioHandler) Ideas(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list := h.ideaSvc.List(c.Request.Context(), userID)
	response.List(c, list, len(list))
}

// AddIdea POST /api/v1/ideas
func (h *PortfolioHandler) AddIdea(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c)
		return
	}

	item, err := h.ideaSvc.Add(c.Request.Context(), userID, &req)
	if err != nil {
		handleBackendError(c, err)
		return
	}
	response.Created(c, item)
}

// RemoveIdea DELETE /api/v1/ideas/:id
func (h *PortfolioHandler) RemoveIdea(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.ideaSvc.Remove(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrIdeaNotFound) {
			response.NotFound(c, 17001, "idea not found")
			return
		}
		handleBackendError(c, err)
		return
	}
	response.OK(c, nil)
}
