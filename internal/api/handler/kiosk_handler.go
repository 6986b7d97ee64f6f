package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/kiosk"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// Kiosk business codes.
const (
	CodeKioskSessionNotFound = 20001
	CodeKioskActionRejected  = 20002
)

// KioskStore is the part of kiosk.Store the handler uses.
type KioskStore interface {
	Create() *kiosk.View
	Get(id string) (*kiosk.View, error)
	Apply(id string, a kiosk.Action) (*kiosk.View, error)
	Delete(id string)
}

// KioskHandler drives the practice ordering simulator.
type KioskHandler struct {
	store KioskStore
}

// NewKioskHandler creates a KioskHandler.
func NewKioskHandler(store KioskStore) *KioskHandler {
	return &KioskHandler{store: store}
}

type catalogResponse struct {
	Categories     []kiosk.Category      `json:"categories"`
	Menu           []kiosk.MenuItem      `json:"menu"`
	OptionGroups   []kiosk.OptionGroup   `json:"option_groups"`
	PaymentMethods []kiosk.PaymentMethod `json:"payment_methods"`
	Recommended    []string              `json:"recommended"`
	Screens        []kiosk.Screen        `json:"screens"`
}

// Catalog GET /api/v1/kiosk/catalog
func (h *KioskHandler) Catalog(c *gin.Context) {
	response.OK(c, &catalogResponse{
		Categories:     kiosk.Categories,
		Menu:           kiosk.Menu,
		OptionGroups:   kiosk.OptionGroups,
		PaymentMethods: kiosk.PaymentMethods,
		Recommended:    kiosk.Recommended,
		Screens:        kiosk.ScreenOrder,
	})
}

// Create POST /api/v1/kiosk/sessions
func (h *KioskHandler) Create(c *gin.Context) {
	response.Created(c, h.store.Create())
}

// Get GET /api/v1/kiosk/sessions/:id
func (h *KioskHandler) Get(c *gin.Context) {
	v, err := h.store.Get(c.Param("id"))
	if err != nil {
		response.NotFound(c, CodeKioskSessionNotFound, "kiosk session not found or expired")
		return
	}
	response.OK(c, v)
}

// Action POST /api/v1/kiosk/sessions/:id/actions
//
// A rejected action answers 422 with the unchanged session in details so
// the screen can stay where it is.
func (h *KioskHandler) Action(c *gin.Context) {
	var a kiosk.Action
	if err := c.ShouldBindJSON(&a); err != nil {
		bindFailed(c)
		return
	}

	v, err := h.store.Apply(c.Param("id"), a)
	if err != nil {
		if errors.Is(err, kiosk.ErrSessionNotFound) {
			response.NotFound(c, CodeKioskSessionNotFound, "kiosk session not found or expired")
			return
		}
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, CodeKioskActionRejected, err.Error(), v)
		return
	}
	response.OK(c, v)
}

// Delete DELETE /api/v1/kiosk/sessions/:id
func (h *KioskHandler) Delete(c *gin.Context) {
	h.store.Delete(c.Param("id"))
	response.OK(c, nil)
}
