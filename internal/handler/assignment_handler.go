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

// AssignmentHandler exposes duty assignment endpoints.
type AssignmentHandler struct {
	assignments *service.AssignmentService
	dashboards  *service.DashboardService
}

// NewAssignmentHandler constructs AssignmentHandler. The dashboard service
// is optional; when present its cache is invalidated after mutations.
func NewAssignmentHandler(assignments *service.AssignmentService, dashboards *service.DashboardService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, dashboards: dashboards}
}

// Assign godoc
// @Summary Assign a duty to a teacher
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.AssignRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req service.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Assign(c.Request.Context(), scopeFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.Created(c, assignment)
}

// List godoc
// @Summary List assignments across teachers
// @Tags Assignments
// @Produce json
// @Param year query int false "Filter by year"
// @Param type_id query string false "Filter by responsibility type"
// @Param class_id query string false "Filter by target class"
// @Param status query string false "Filter by lifecycle status"
// @Param campus_id query string false "Filter by campus"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	filter := models.AssignmentFilter{
		Year:     year,
		TypeID:   c.Query("type_id"),
		ClassID:  c.Query("class_id"),
		Status:   models.AssignmentStatus(c.Query("status")),
		CampusID: c.Query("campus_id"),
	}
	assignments, err := h.assignments.List(c.Request.Context(), scopeFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// ListByTeacher godoc
// @Summary List assignments of one teacher
// @Tags Assignments
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param year query int false "Filter by year"
// @Success 200 {object} response.Envelope
// @Router /assignments/teacher/{teacherId} [get]
func (h *AssignmentHandler) ListByTeacher(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	assignments, err := h.assignments.ListByTeacher(c.Request.Context(), scopeFromContext(c), c.Param("teacherId"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Get godoc
// @Summary Get assignment detail
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.assignments.Get(c.Request.Context(), scopeFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// UpdateStatus godoc
// @Summary Transition assignment lifecycle status
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.UpdateAssignmentStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/status [put]
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateAssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.assignments.UpdateStatus(c.Request.Context(), scopeFromContext(c), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.JSON(c, http.StatusOK, gin.H{"message": "status updated"}, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignments.Delete(c.Request.Context(), scopeFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboard(c)
	response.NoContent(c)
}

func (h *AssignmentHandler) invalidateDashboard(c *gin.Context) {
	if h.dashboards != nil {
		h.dashboards.Invalidate(c.Request.Context())
	}
}
