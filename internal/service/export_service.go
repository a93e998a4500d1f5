package service

import (
	"context"
	"fmt"
	"path"
	"strconv"

	"go.uber.org/zap"

	"github.com/frii-edu/examiner-api/internal/dto"
	"github.com/frii-edu/examiner-api/internal/models"
	apperrors "github.com/frii-edu/examiner-api/pkg/errors"
	"github.com/frii-edu/examiner-api/pkg/export"
	"github.com/frii-edu/examiner-api/pkg/storage"
)

type exportLeaveReader interface {
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveDetail, error)
}

type exportRoutineReader interface {
	ListForCampus(ctx context.Context, campusID string, year int) ([]models.RoutineCampusRow, error)
}

// ExportDocument is a rendered file ready for download. DownloadToken, when
// set, allows re-fetching the archived copy without regenerating the report.
type ExportDocument struct {
	Filename      string
	ContentType   string
	Payload       []byte
	DownloadToken string
}

// ExportService renders report data into downloadable documents.
type ExportService struct {
	reports  *ReportService
	leaves   exportLeaveReader
	routines exportRoutineReader
	archive  *storage.ExportArchive
	signer   *storage.DownloadTokenSigner
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	excel    *export.ExcelExporter
	logger   *zap.Logger
}

// NewExportService constructs the export service. The archive and signer are
// optional; without them documents are returned but not retained.
func NewExportService(reports *ReportService, leaves exportLeaveReader, routines exportRoutineReader, archive *storage.ExportArchive, signer *storage.DownloadTokenSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reports:  reports,
		leaves:   leaves,
		routines: routines,
		archive:  archive,
		signer:   signer,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		excel:    export.NewExcelExporter(),
		logger:   logger,
	}
}

const (
	contentTypePDF   = "application/pdf"
	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV   = "text/csv"
)

// archived stores a copy of the document and attaches a signed download
// token. Archiving is best effort; a failure is logged and the document is
// returned without a token.
func (s *ExportService) archived(doc *ExportDocument) *ExportDocument {
	if s.archive == nil || s.signer == nil {
		return doc
	}
	rel, err := s.archive.Save(doc.Filename, doc.Payload)
	if err != nil {
		s.logger.Warn("failed to archive export", zap.String("filename", doc.Filename), zap.Error(err))
		return doc
	}
	token, _, err := s.signer.Generate(rel)
	if err != nil {
		s.logger.Warn("failed to sign download token", zap.String("filename", doc.Filename), zap.Error(err))
		return doc
	}
	doc.DownloadToken = token
	return doc
}

// ArchivedDownload resolves a signed token back to the stored document.
func (s *ExportService) ArchivedDownload(_ context.Context, token string) (*ExportDocument, error) {
	if s.archive == nil || s.signer == nil {
		return nil, apperrors.Clone(apperrors.ErrNotFound, "export archive is not enabled")
	}
	rel, err := s.signer.Parse(token)
	if err != nil {
		return nil, apperrors.Clone(apperrors.ErrUnauthorized, "invalid or expired download token")
	}
	payload, err := s.archive.Read(rel)
	if err != nil {
		return nil, apperrors.Clone(apperrors.ErrNotFound, "archived export no longer exists")
	}
	return &ExportDocument{
		Filename:    path.Base(rel),
		ContentType: contentTypeFor(rel),
		Payload:     payload,
	}, nil
}

func contentTypeFor(name string) string {
	switch path.Ext(name) {
	case ".pdf":
		return contentTypePDF
	case ".xlsx":
		return contentTypeExcel
	case ".csv":
		return contentTypeCSV
	default:
		return "application/octet-stream"
	}
}

// CustomPDF renders the detailed assignment listing as a portrait PDF in the
// pedagogical class/subject order.
func (s *ExportService) CustomPDF(ctx context.Context, filter dto.ReportFilter) (*ExportDocument, error) {
	rows, err := s.reports.DetailedCustomOrder(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := detailedDataset(rows)
	payload, err := s.pdf.Render(data, fmt.Sprintf("Duty Assignments %d", filter.Year))
	if err != nil {
		return nil, err
	}
	return s.archived(&ExportDocument{
		Filename:    fmt.Sprintf("assignments_%d.pdf", filter.Year),
		ContentType: contentTypePDF,
		Payload:     payload,
	}), nil
}

// YearlyPDF renders the teacher/year pivot as a landscape PDF.
func (s *ExportService) YearlyPDF(ctx context.Context, filter dto.ReportFilter, typeCodes []string, compare bool) (*ExportDocument, error) {
	result, err := s.reports.Generate(ctx, dto.ReportYearlySummary, filter, typeCodes, compare)
	if err != nil {
		return nil, err
	}
	data := yearlyDataset(result.Yearly)
	payload, err := s.pdf.RenderLandscape(data, fmt.Sprintf("Yearly Duty Summary %d", filter.Year))
	if err != nil {
		return nil, err
	}
	return s.archived(&ExportDocument{
		Filename:    fmt.Sprintf("yearly_summary_%d.pdf", filter.Year),
		ContentType: contentTypePDF,
		Payload:     payload,
	}), nil
}

// Excel renders the detailed assignment listing as a workbook.
func (s *ExportService) Excel(ctx context.Context, filter dto.ReportFilter) (*ExportDocument, error) {
	rows, err := s.reports.DetailedCustomOrder(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := detailedDataset(rows)
	payload, err := s.excel.Render(data, "Assignments")
	if err != nil {
		return nil, err
	}
	return s.archived(&ExportDocument{
		Filename:    fmt.Sprintf("assignments_%d.xlsx", filter.Year),
		ContentType: contentTypeExcel,
		Payload:     payload,
	}), nil
}

// CSV renders the detailed assignment listing as CSV.
func (s *ExportService) CSV(ctx context.Context, filter dto.ReportFilter) (*ExportDocument, error) {
	rows, err := s.reports.DetailedCustomOrder(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(detailedDataset(rows))
	if err != nil {
		return nil, err
	}
	return s.archived(&ExportDocument{
		Filename:    fmt.Sprintf("assignments_%d.csv", filter.Year),
		ContentType: contentTypeCSV,
		Payload:     payload,
	}), nil
}

// GrantedLeavesExcel renders the granted leaves of a year as a workbook.
func (s *ExportService) GrantedLeavesExcel(ctx context.Context, year int) (*ExportDocument, error) {
	leaves, err := s.leaves.List(ctx, models.LeaveFilter{Status: models.LeaveGranted, Year: year})
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Headers: []string{"SL", "Teacher ID", "Teacher Name", "Campus", "Responsibility", "Year", "Reason"},
	}
	for i, l := range leaves {
		reason := ""
		if l.Reason != nil {
			reason = *l.Reason
		}
		campus := ""
		if l.CampusName != nil {
			campus = *l.CampusName
		}
		data.Rows = append(data.Rows, map[string]string{
			"SL":             strconv.Itoa(i + 1),
			"Teacher ID":     l.TeacherCode,
			"Teacher Name":   l.TeacherName,
			"Campus":         campus,
			"Responsibility": l.TypeName,
			"Year":           strconv.Itoa(l.Year),
			"Reason":         reason,
		})
	}

	payload, err := s.excel.Render(data, "Granted Leaves")
	if err != nil {
		return nil, err
	}
	return s.archived(&ExportDocument{
		Filename:    fmt.Sprintf("granted_leaves_%d.xlsx", year),
		ContentType: contentTypeExcel,
		Payload:     payload,
	}), nil
}

// RoutinePDF renders the routine slots of a campus and year as a PDF. An
// incharge without an explicit campus defaults to their own; other campuses
// are rejected.
func (s *ExportService) RoutinePDF(ctx context.Context, scope models.CampusScope, campusID string, year int) (*ExportDocument, error) {
	if year <= 0 {
		return nil, apperrors.Clone(apperrors.ErrValidation, "year is required")
	}
	if scope.Restricted() {
		if campusID == "" {
			campusID = scope.CampusID
		}
		if !scope.Allows(campusID) {
			return nil, apperrors.Clone(apperrors.ErrForbidden, "campus outside your scope")
		}
	}

	rows, err := s.routines.ListForCampus(ctx, campusID, year)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load campus routine")
	}

	data := export.Dataset{
		Headers: []string{"SL", "Class", "Subject", "Teacher", "Teacher ID"},
	}
	for i, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"SL":         strconv.Itoa(i + 1),
			"Class":      r.ClassName,
			"Subject":    r.SubjectName,
			"Teacher":    r.TeacherName,
			"Teacher ID": r.TeacherCode,
		})
	}

	payload, err := s.pdf.Render(data, fmt.Sprintf("Class Routine %d", year))
	if err != nil {
		return nil, err
	}
	return s.archived(&ExportDocument{
		Filename:    fmt.Sprintf("routine_%d.pdf", year),
		ContentType: contentTypePDF,
		Payload:     payload,
	}), nil
}

func detailedDataset(rows []dto.DetailedRow) export.Dataset {
	data := export.Dataset{
		Headers: []string{"SL", "Teacher", "Teacher ID", "Campus", "Responsibility", "Class", "Subject", "Year", "Status"},
	}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"SL":             strconv.Itoa(r.Seq),
			"Teacher":        r.TeacherName,
			"Teacher ID":     r.TeacherCode,
			"Campus":         r.CampusName,
			"Responsibility": r.TypeName,
			"Class":          r.ClassName,
			"Subject":        r.SubjectName,
			"Year":           strconv.Itoa(r.Year),
			"Status":         r.Status,
		})
	}
	return data
}

func yearlyDataset(report *dto.YearlyReport) export.Dataset {
	headers := []string{"Teacher", "Teacher ID", "Campus", "Year"}
	headers = append(headers, report.TypeCodes...)
	data := export.Dataset{Headers: headers}
	for _, row := range report.Rows {
		record := map[string]string{
			"Teacher":    row.TeacherName,
			"Teacher ID": row.TeacherCode,
			"Campus":     row.CampusName,
			"Year":       strconv.Itoa(row.Year),
		}
		for _, code := range report.TypeCodes {
			record[code] = row.Cells[code]
		}
		data.Rows = append(data.Rows, record)
	}
	return data
}
