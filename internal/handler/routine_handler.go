package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frii-edu/examiner-api/internal/service"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
	"github.com/frii-edu/examiner-api/pkg/response"
)

const maxRoutineUploadBytes = 8 << 20

// RoutineHandler exposes teaching routine endpoints.
type RoutineHandler struct {
	routines *service.RoutineService
	exports  *service.ExportService
	metrics  *service.MetricsService
}

// NewRoutineHandler constructs RoutineHandler.
func NewRoutineHandler(routines *service.RoutineService, exports *service.ExportService, metrics *service.MetricsService) *RoutineHandler {
	return &RoutineHandler{routines: routines, exports: exports, metrics: metrics}
}

// Add godoc
// @Summary Add one routine entry
// @Tags Routines
// @Accept json
// @Produce json
// @Param payload body service.AddRoutineEntryRequest true "Routine entry payload"
// @Success 201 {object} response.Envelope
// @Router /routines [post]
func (h *RoutineHandler) Add(c *gin.Context) {
	var req service.AddRoutineEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.routines.Add(c.Request.Context(), scopeFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Delete godoc
// @Summary Delete one routine entry
// @Tags Routines
// @Produce json
// @Param id path string true "Entry ID"
// @Success 204
// @Router /routines/{id} [delete]
func (h *RoutineHandler) Delete(c *gin.Context) {
	if err := h.routines.DeleteEntry(c.Request.Context(), scopeFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByTeacher godoc
// @Summary List routine entries of one teacher
// @Tags Routines
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param year query int false "Filter by year"
// @Success 200 {object} response.Envelope
// @Router /routines/teacher/{teacherId} [get]
func (h *RoutineHandler) ListByTeacher(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	entries, err := h.routines.ListByTeacher(c.Request.Context(), scopeFromContext(c), c.Param("teacherId"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Filter godoc
// @Summary Find teachers eligible by routine slot
// @Tags Routines
// @Produce json
// @Param year query int true "Year"
// @Param class_id query string false "Filter by class"
// @Param subject_id query string false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /routines/filter [get]
func (h *RoutineHandler) Filter(c *gin.Context) {
	var req service.RoutineFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	teachers, err := h.routines.Filter(c.Request.Context(), scopeFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// ExportPDF godoc
// @Summary Export the routine of a campus and year as PDF
// @Tags Routines
// @Produce application/pdf
// @Param year query int true "Year"
// @Param campus_id query string false "Campus (incharge defaults to own)"
// @Success 200 {file} binary
// @Router /routines/export/pdf [get]
func (h *RoutineHandler) ExportPDF(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	doc, err := h.exports.RoutinePDF(c.Request.Context(), scopeFromContext(c), c.Query("campus_id"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordExport("pdf")
	}
	writeDocument(c, doc)
}

// BulkUpload godoc
// @Summary Bulk upload routine entries from a spreadsheet
// @Tags Routines
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet (.xlsx)"
// @Param year formData int true "Year"
// @Param campus_id formData string false "Campus submitted for the sheet"
// @Success 200 {object} response.Envelope
// @Router /routines/bulk-upload [post]
func (h *RoutineHandler) BulkUpload(c *gin.Context) {
	year, err := strconv.Atoi(c.PostForm("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year is required"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "spreadsheet file is required"))
		return
	}
	if fileHeader.Size > maxRoutineUploadBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "spreadsheet exceeds the size limit"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read spreadsheet"))
		return
	}
	defer file.Close()

	result, err := h.routines.BulkUpload(c.Request.Context(), scopeFromContext(c), year, c.PostForm("campus_id"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordBulkRows(result.Synced)
	}
	response.JSON(c, http.StatusOK, result, nil)
}
