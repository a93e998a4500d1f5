package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frii-edu/examiner-api/internal/dto"
	"github.com/frii-edu/examiner-api/internal/models"
	apperrors "github.com/frii-edu/examiner-api/pkg/errors"
	"github.com/frii-edu/examiner-api/pkg/storage"
)

type reportRepoStub struct{}

func (reportRepoStub) Detailed(ctx context.Context, filter dto.ReportFilter) ([]dto.DetailedRow, error) {
	return []dto.DetailedRow{
		{AssignmentID: "a-1", TeacherName: "Alice", TeacherCode: "T-001", CampusName: "Main", TypeName: "Examiner", TypeCode: "EXM", Year: filter.Year, ClassName: "SIX", SubjectName: "English", Status: "Active"},
		{AssignmentID: "a-2", TeacherName: "Bob", TeacherCode: "T-002", CampusName: "Main", TypeName: "Examiner", TypeCode: "EXM", Year: filter.Year, ClassName: "ONE", SubjectName: "Bangla", Status: "Active"},
	}, nil
}

func (reportRepoStub) CampusSummary(ctx context.Context, filter dto.ReportFilter) ([]dto.CampusSummaryRow, error) {
	return nil, nil
}

func (reportRepoStub) ClassSummary(ctx context.Context, filter dto.ReportFilter) ([]dto.ClassSummaryRow, error) {
	return nil, nil
}

func (reportRepoStub) YearlyRaw(ctx context.Context, years []int, branchID string) ([]dto.YearlyRawRow, error) {
	return nil, nil
}

type routineReaderStub struct {
	lastCampusID string
}

func (r *routineReaderStub) ListForCampus(ctx context.Context, campusID string, year int) ([]models.RoutineCampusRow, error) {
	r.lastCampusID = campusID
	return []models.RoutineCampusRow{
		{TeacherName: "Alice", TeacherCode: "T-001", ClassName: "ONE", SubjectName: "Bangla", Year: year},
		{TeacherName: "Bob", TeacherCode: "T-002", ClassName: "SIX", SubjectName: "English", Year: year},
	}, nil
}

type leaveReaderStub struct{}

func (leaveReaderStub) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveDetail, error) {
	reason := "Board exam duty elsewhere"
	campus := "Main"
	return []models.LeaveDetail{
		{
			Leave:       models.Leave{ID: "l-1", TeacherID: "t-1", Year: filter.Year, Status: models.LeaveGranted, Reason: &reason},
			TeacherName: "Alice",
			TeacherCode: "T-001",
			CampusName:  &campus,
			TypeName:    "Examiner",
		},
	}, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *routineReaderStub) {
	t.Helper()
	archive, err := storage.NewExportArchive(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewDownloadTokenSigner("export-secret", time.Hour)
	reports := NewReportService(reportRepoStub{}, nil, 0, zap.NewNop())
	routines := &routineReaderStub{}
	return NewExportService(reports, leaveReaderStub{}, routines, archive, signer, zap.NewNop()), routines
}

func TestExportCustomPDFArchivesDocument(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	doc, err := svc.CustomPDF(context.Background(), dto.ReportFilter{Year: 2026})
	require.NoError(t, err)
	require.Equal(t, "assignments_2026.pdf", doc.Filename)
	require.NotEmpty(t, doc.Payload)
	require.NotEmpty(t, doc.DownloadToken)

	stored, err := svc.ArchivedDownload(context.Background(), doc.DownloadToken)
	require.NoError(t, err)
	require.Equal(t, doc.Payload, stored.Payload)
	require.Equal(t, "application/pdf", stored.ContentType)
}

func TestExportCSVContent(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	doc, err := svc.CSV(context.Background(), dto.ReportFilter{Year: 2026})
	require.NoError(t, err)
	require.Equal(t, "text/csv", doc.ContentType)

	body := string(doc.Payload)
	require.Contains(t, body, "Alice")
	require.Contains(t, body, "T-002")
}

func TestGrantedLeavesExcelArchivesDocument(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	doc, err := svc.GrantedLeavesExcel(context.Background(), 2026)
	require.NoError(t, err)
	require.Equal(t, "granted_leaves_2026.xlsx", doc.Filename)
	require.NotEmpty(t, doc.Payload)
	require.NotEmpty(t, doc.DownloadToken)
}

func TestArchivedDownloadRejectsTamperedToken(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	doc, err := svc.CSV(context.Background(), dto.ReportFilter{Year: 2026})
	require.NoError(t, err)

	tampered := strings.Replace(doc.DownloadToken, ".", ".x", 1)
	_, err = svc.ArchivedDownload(context.Background(), tampered)
	require.Error(t, err)
	require.Equal(t, apperrors.ErrUnauthorized.Code, apperrors.FromError(err).Code)
}

func TestRoutinePDFInchargeDefaultsToOwnCampus(t *testing.T) {
	svc, routines := newExportServiceForTest(t)
	scope := models.NewCampusScope(models.RoleIncharge, "campus-1")

	doc, err := svc.RoutinePDF(context.Background(), scope, "", 2026)
	require.NoError(t, err)
	require.Equal(t, "routine_2026.pdf", doc.Filename)
	require.NotEmpty(t, doc.Payload)
	require.Equal(t, "campus-1", routines.lastCampusID)

	_, err = svc.RoutinePDF(context.Background(), scope, "campus-2", 2026)
	require.Error(t, err)
	require.Equal(t, apperrors.ErrForbidden.Code, apperrors.FromError(err).Code)
}

func TestExportWithoutArchiveSkipsToken(t *testing.T) {
	reports := NewReportService(reportRepoStub{}, nil, 0, zap.NewNop())
	svc := NewExportService(reports, leaveReaderStub{}, &routineReaderStub{}, nil, nil, zap.NewNop())

	doc, err := svc.CSV(context.Background(), dto.ReportFilter{Year: 2026})
	require.NoError(t, err)
	require.Empty(t, doc.DownloadToken)

	_, err = svc.ArchivedDownload(context.Background(), "anything")
	require.Error(t, err)
}
