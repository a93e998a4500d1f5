package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frii-edu/examiner-api/internal/models"
	"github.com/frii-edu/examiner-api/internal/service"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
	"github.com/frii-edu/examiner-api/pkg/response"
)

// LeaveHandler exposes leave endpoints.
type LeaveHandler struct {
	leaves  *service.LeaveService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewLeaveHandler constructs LeaveHandler.
func NewLeaveHandler(leaves *service.LeaveService, exports *service.ExportService, metrics *service.MetricsService) *LeaveHandler {
	return &LeaveHandler{leaves: leaves, exports: exports, metrics: metrics}
}

// Create godoc
// @Summary Record a leave
// @Tags Leaves
// @Accept json
// @Produce json
// @Param payload body service.CreateLeaveRequest true "Leave payload"
// @Success 201 {object} response.Envelope
// @Router /leaves [post]
func (h *LeaveHandler) Create(c *gin.Context) {
	var req service.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	leave, err := h.leaves.Create(c.Request.Context(), scopeFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, leave)
}

// List godoc
// @Summary List leaves
// @Tags Leaves
// @Produce json
// @Param status query string false "Filter by status"
// @Param teacher_id query string false "Filter by teacher"
// @Param year query int false "Filter by year"
// @Success 200 {object} response.Envelope
// @Router /leaves [get]
func (h *LeaveHandler) List(c *gin.Context) {
	var filter models.LeaveFilter
	filter.Status = models.LeaveStatus(c.Query("status"))
	filter.TeacherID = c.Query("teacher_id")
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	leaves, err := h.leaves.List(c.Request.Context(), scopeFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leaves, nil)
}

type leaveStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Granted Rejected"`
}

// UpdateStatus godoc
// @Summary Grant or reject a leave
// @Tags Leaves
// @Accept json
// @Produce json
// @Param id path string true "Leave ID"
// @Param payload body leaveStatusRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /leaves/{id}/status [put]
func (h *LeaveHandler) UpdateStatus(c *gin.Context) {
	var req leaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	var err error
	if req.Status == string(models.LeaveGranted) {
		err = h.leaves.Grant(c.Request.Context(), c.Param("id"), userIDFromContext(c))
	} else {
		err = h.leaves.Reject(c.Request.Context(), c.Param("id"), userIDFromContext(c))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "leave " + req.Status}, nil)
}

// Delete godoc
// @Summary Delete leave
// @Tags Leaves
// @Produce json
// @Param id path string true "Leave ID"
// @Success 204
// @Router /leaves/{id} [delete]
func (h *LeaveHandler) Delete(c *gin.Context) {
	if err := h.leaves.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CheckConflict godoc
// @Summary Check whether a granted leave blocks an assignment
// @Tags Leaves
// @Produce json
// @Param teacher_id query string true "Teacher ID"
// @Param responsibility_type_id query string true "Responsibility type ID"
// @Param year query int true "Year"
// @Success 200 {object} response.Envelope
// @Router /leaves/conflict-check [get]
func (h *LeaveHandler) CheckConflict(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	result, err := h.leaves.CheckConflict(c.Request.Context(), c.Query("teacher_id"), c.Query("responsibility_type_id"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ExportExcel godoc
// @Summary Export granted leaves as a spreadsheet
// @Tags Leaves
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int true "Year"
// @Success 200 {file} binary
// @Router /leaves/export/excel [get]
func (h *LeaveHandler) ExportExcel(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	if year <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year is required"))
		return
	}
	doc, err := h.exports.GrantedLeavesExcel(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordExport("excel")
	}
	writeDocument(c, doc)
}
