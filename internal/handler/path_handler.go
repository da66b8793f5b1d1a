package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
	"github.com/noah-isme/ppdb-selection-api/internal/service"
	appErrors "github.com/noah-isme/ppdb-selection-api/pkg/errors"
	"github.com/noah-isme/ppdb-selection-api/pkg/response"
)

// PathHandler exposes admission path endpoints including the selection run.
type PathHandler struct {
	paths      *service.PathService
	selections *service.SelectionService
	exports    *service.ExportService
	stats      *service.StatsService
}

// NewPathHandler constructs PathHandler.
func NewPathHandler(paths *service.PathService, selections *service.SelectionService, exports *service.ExportService, stats *service.StatsService) *PathHandler {
	return &PathHandler{paths: paths, selections: selections, exports: exports, stats: stats}
}

// List godoc
// @Summary List admission paths
// @Tags Paths
// @Produce json
// @Param periodId query string false "Filter by period"
// @Param type query string false "Filter by path type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /paths [get]
func (h *PathHandler) List(c *gin.Context) {
	var filter models.PathFilter
	filter.PeriodID = c.Query("periodId")
	filter.Type = models.PathType(strings.ToUpper(c.Query("type")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	paths, pagination, err := h.paths.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, paths, pagination)
}

// Create godoc
// @Summary Create admission path
// @Tags Paths
// @Accept json
// @Produce json
// @Param payload body service.CreatePathRequest true "Path payload"
// @Success 201 {object} response.Envelope
// @Router /paths [post]
func (h *PathHandler) Create(c *gin.Context) {
	var req service.CreatePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	path, err := h.paths.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, path)
}

// Get godoc
// @Summary Get admission path
// @Tags Paths
// @Produce json
// @Param id path string true "Path ID"
// @Success 200 {object} response.Envelope
// @Router /paths/{id} [get]
func (h *PathHandler) Get(c *gin.Context) {
	path, err := h.paths.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, path, nil)
}

// Update godoc
// @Summary Update admission path
// @Tags Paths
// @Accept json
// @Produce json
// @Param id path string true "Path ID"
// @Param payload body service.UpdatePathRequest true "Path payload"
// @Success 200 {object} response.Envelope
// @Router /paths/{id} [put]
func (h *PathHandler) Update(c *gin.Context) {
	var req service.UpdatePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	path, err := h.paths.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, path, nil)
}

// RunSelection godoc
// @Summary Run the selection for a path
// @Tags Selection
// @Produce json
// @Param id path string true "Path ID"
// @Success 200 {object} response.Envelope
// @Router /paths/{id}/selection/run [post]
func (h *PathHandler) RunSelection(c *gin.Context) {
	pathID := c.Param("id")
	result, err := h.selections.Run(c.Request.Context(), pathID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if path, err := h.paths.Get(c.Request.Context(), pathID); err == nil {
		h.stats.Invalidate(c.Request.Context(), path.PeriodID)
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SelectionResults godoc
// @Summary Ranked selection results of a path
// @Tags Selection
// @Produce json
// @Param id path string true "Path ID"
// @Param status query string false "Filter by selection status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /paths/{id}/selection/results [get]
func (h *PathHandler) SelectionResults(c *gin.Context) {
	var filter models.SelectionFilter
	filter.PathID = c.Param("id")
	filter.Status = models.SelectionStatus(strings.ToUpper(c.Query("status")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	results, pagination, err := h.selections.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, pagination)
}

// ExportResults godoc
// @Summary Download ranked selection results as CSV
// @Tags Selection
// @Produce text/csv
// @Param id path string true "Path ID"
// @Success 200 {string} string "CSV payload"
// @Router /paths/{id}/selection/export [get]
func (h *PathHandler) ExportResults(c *gin.Context) {
	payload, filename, err := h.exports.SelectionResults(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", payload)
}
