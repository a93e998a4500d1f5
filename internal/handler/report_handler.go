package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/frii-edu/examiner-api/internal/dto"
	"github.com/frii-edu/examiner-api/internal/service"
	"github.com/frii-edu/examiner-api/pkg/response"
)

// ReportHandler exposes report aggregation and document export endpoints.
type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService, exports *service.ExportService, metrics *service.MetricsService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports, metrics: metrics}
}

func reportFilterFromQuery(c *gin.Context) dto.ReportFilter {
	var filter dto.ReportFilter
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	filter.TypeID = c.Query("type_id")
	filter.ClassID = c.Query("class_id")
	filter.SubjectID = c.Query("subject_id")
	filter.Status = c.Query("status")
	filter.BranchID = c.Query("branch_id")
	return filter
}

func typeCodesFromQuery(c *gin.Context) []string {
	raw := strings.TrimSpace(c.Query("type_codes"))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if code := strings.TrimSpace(p); code != "" {
			codes = append(codes, strings.ToUpper(code))
		}
	}
	return codes
}

// Data godoc
// @Summary Generate report data
// @Tags Reports
// @Produce json
// @Param type query string true "Report type" Enums(DETAILED_ASSIGNMENT, CAMPUS_SUMMARY, CLASS_SUMMARY, YEARLY_SUMMARY)
// @Param year query int true "Year"
// @Param type_id query string false "Filter by responsibility type"
// @Param class_id query string false "Filter by class"
// @Param subject_id query string false "Filter by subject"
// @Param status query string false "Filter by status"
// @Param branch_id query string false "Filter by campus"
// @Param type_codes query string false "Comma separated type codes for the yearly pivot"
// @Param compare query bool false "Include the previous year"
// @Success 200 {object} response.Envelope
// @Router /reports/data [get]
func (h *ReportHandler) Data(c *gin.Context) {
	filter := reportFilterFromQuery(c)
	compare := c.Query("compare") == "true"
	result, err := h.reports.Generate(c.Request.Context(), dto.ReportType(c.Query("type")), filter, typeCodesFromQuery(c), compare)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ExportCustomPDF godoc
// @Summary Export the custom ordered duty roster as PDF
// @Tags Reports
// @Produce application/pdf
// @Param year query int true "Year"
// @Success 200 {file} binary
// @Router /reports/export/custom-pdf [get]
func (h *ReportHandler) ExportCustomPDF(c *gin.Context) {
	doc, err := h.exports.CustomPDF(c.Request.Context(), reportFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordExport("pdf")
	writeDocument(c, doc)
}

// ExportYearlyPDF godoc
// @Summary Export the yearly pivot as landscape PDF
// @Tags Reports
// @Produce application/pdf
// @Param year query int true "Year"
// @Param type_codes query string false "Comma separated type codes"
// @Param compare query bool false "Include the previous year"
// @Success 200 {file} binary
// @Router /reports/export/yearly-pdf [get]
func (h *ReportHandler) ExportYearlyPDF(c *gin.Context) {
	compare := c.Query("compare") == "true"
	doc, err := h.exports.YearlyPDF(c.Request.Context(), reportFilterFromQuery(c), typeCodesFromQuery(c), compare)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordExport("pdf")
	writeDocument(c, doc)
}

// ExportExcel godoc
// @Summary Export the detailed roster as a spreadsheet
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int true "Year"
// @Success 200 {file} binary
// @Router /reports/export/excel [get]
func (h *ReportHandler) ExportExcel(c *gin.Context) {
	doc, err := h.exports.Excel(c.Request.Context(), reportFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordExport("excel")
	writeDocument(c, doc)
}

// ExportCSV godoc
// @Summary Export the detailed roster as CSV
// @Tags Reports
// @Produce text/csv
// @Param year query int true "Year"
// @Success 200 {file} binary
// @Router /reports/export/csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	doc, err := h.exports.CSV(c.Request.Context(), reportFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordExport("csv")
	writeDocument(c, doc)
}

// Download godoc
// @Summary Re-download an archived export by its signed token
// @Tags Reports
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/archive/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	doc, err := h.exports.ArchivedDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeDocument(c, doc)
}

func (h *ReportHandler) recordExport(format string) {
	if h.metrics != nil {
		h.metrics.RecordExport(format)
	}
}

// writeDocument streams an export document, exposing the archive token so
// clients can re-fetch the file without regenerating it.
func writeDocument(c *gin.Context, doc *service.ExportDocument) {
	if doc.DownloadToken != "" {
		c.Header("X-Download-Token", doc.DownloadToken)
	}
	response.Binary(c, doc.ContentType, doc.Filename, doc.Payload)
}
