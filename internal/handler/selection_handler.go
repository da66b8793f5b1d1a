package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ppdb-selection-api/internal/service"
	appErrors "github.com/noah-isme/ppdb-selection-api/pkg/errors"
	"github.com/noah-isme/ppdb-selection-api/pkg/response"
)

// SelectionHandler exposes manual selection override endpoints.
type SelectionHandler struct {
	selections *service.SelectionService
}

// NewSelectionHandler constructs SelectionHandler.
func NewSelectionHandler(selections *service.SelectionService) *SelectionHandler {
	return &SelectionHandler{selections: selections}
}

// Get godoc
// @Summary Get a selection outcome
// @Tags Selection
// @Produce json
// @Param id path string true "Selection ID"
// @Success 200 {object} response.Envelope
// @Router /selections/{id} [get]
func (h *SelectionHandler) Get(c *gin.Context) {
	selection, err := h.selections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection, nil)
}

// UpdateStatus godoc
// @Summary Manually override a selection status
// @Tags Selection
// @Accept json
// @Produce json
// @Param id path string true "Selection ID"
// @Param payload body service.UpdateSelectionStatusRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Router /selections/{id}/status [put]
func (h *SelectionHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateSelectionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	selection, err := h.selections.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection, nil)
}
