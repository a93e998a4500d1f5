package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frii-edu/examiner-api/internal/service"
	"github.com/frii-edu/examiner-api/pkg/response"
)

// DashboardHandler exposes the admin dashboard widgets. Every widget route
// projects the same cached overview so one year costs one aggregation.
type DashboardHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

func yearFromQuery(c *gin.Context) int {
	year, _ := strconv.Atoi(c.Query("year"))
	return year
}

// Overview godoc
// @Summary All dashboard widgets in one payload
// @Tags Dashboard
// @Produce json
// @Param year query int false "Session year, defaults to the current year"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboards.Overview(c.Request.Context(), yearFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Summary godoc
// @Summary Headline counts
// @Tags Dashboard
// @Produce json
// @Param year query int false "Session year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboards.Summary(c.Request.Context(), yearFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// TopTeachers godoc
// @Summary Teachers carrying the most duties
// @Tags Dashboard
// @Produce json
// @Param year query int false "Session year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/top-teachers [get]
func (h *DashboardHandler) TopTeachers(c *gin.Context) {
	overview, err := h.dashboards.Overview(c.Request.Context(), yearFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview.TopTeachers, nil)
}

// ByDutyType godoc
// @Summary Assignment counts per responsibility type
// @Tags Dashboard
// @Produce json
// @Param year query int false "Session year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/by-duty-type [get]
func (h *DashboardHandler) ByDutyType(c *gin.Context) {
	overview, err := h.dashboards.Overview(c.Request.Context(), yearFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview.ByType, nil)
}

// ByBranch godoc
// @Summary Assignment counts per campus
// @Tags Dashboard
// @Produce json
// @Param year query int false "Session year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/by-branch [get]
func (h *DashboardHandler) ByBranch(c *gin.Context) {
	overview, err := h.dashboards.Overview(c.Request.Context(), yearFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview.ByBranch, nil)
}

// RecentLeaves godoc
// @Summary Recently granted leaves
// @Tags Dashboard
// @Produce json
// @Param year query int false "Session year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/recent-leaves [get]
func (h *DashboardHandler) RecentLeaves(c *gin.Context) {
	overview, err := h.dashboards.Overview(c.Request.Context(), yearFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview.RecentLeaves, nil)
}
