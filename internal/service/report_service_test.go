package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frii-edu/examiner-api/internal/dto"
)

type mockReportRepo struct {
	detailed   []dto.DetailedRow
	byCampus   []dto.CampusSummaryRow
	byClass    []dto.ClassSummaryRow
	yearly     []dto.YearlyRawRow
	lastYears  []int
	lastBranch string
}

func (m *mockReportRepo) Detailed(ctx context.Context, filter dto.ReportFilter) ([]dto.DetailedRow, error) {
	out := make([]dto.DetailedRow, len(m.detailed))
	copy(out, m.detailed)
	return out, nil
}

func (m *mockReportRepo) CampusSummary(ctx context.Context, filter dto.ReportFilter) ([]dto.CampusSummaryRow, error) {
	return m.byCampus, nil
}

func (m *mockReportRepo) ClassSummary(ctx context.Context, filter dto.ReportFilter) ([]dto.ClassSummaryRow, error) {
	return m.byClass, nil
}

func (m *mockReportRepo) YearlyRaw(ctx context.Context, years []int, branchID string) ([]dto.YearlyRawRow, error) {
	m.lastYears = years
	m.lastBranch = branchID
	return m.yearly, nil
}

func strPtr(s string) *string { return &s }

func TestReportServiceDetailedSequentialIDs(t *testing.T) {
	repo := &mockReportRepo{detailed: []dto.DetailedRow{
		{TeacherName: "Alice", ClassName: "SIX"},
		{TeacherName: "Bob", ClassName: "SEVEN"},
	}}
	svc := NewReportService(repo, nil, 0, zap.NewNop())

	result, err := svc.Generate(context.Background(), dto.ReportDetailedAssignment, dto.ReportFilter{Year: 2026}, nil, false)
	require.NoError(t, err)
	require.Len(t, result.Detailed, 2)
	assert.Equal(t, 1, result.Detailed[0].Seq)
	assert.Equal(t, 2, result.Detailed[1].Seq)
}

func TestReportServiceRejectsUnknownType(t *testing.T) {
	svc := NewReportService(&mockReportRepo{}, nil, 0, zap.NewNop())

	_, err := svc.Generate(context.Background(), dto.ReportType("BOGUS"), dto.ReportFilter{Year: 2026}, nil, false)
	require.Error(t, err)
}

func TestReportServiceCustomOrder(t *testing.T) {
	repo := &mockReportRepo{detailed: []dto.DetailedRow{
		{TeacherName: "Zed", ClassName: "TEN", SubjectName: "English"},
		{TeacherName: "Amy", ClassName: "ONE", SubjectName: "Mathematics"},
		{TeacherName: "Bob", ClassName: "ONE", SubjectName: "Bangla"},
		{TeacherName: "Cid", ClassName: "ZULU", SubjectName: "Bangla"},
		{TeacherName: "Dan", ClassName: "ALPHA", SubjectName: "Bangla"},
	}}
	svc := NewReportService(repo, nil, 0, zap.NewNop())

	rows, err := svc.DetailedCustomOrder(context.Background(), dto.ReportFilter{Year: 2026})
	require.NoError(t, err)
	require.Len(t, rows, 5)

	// Ranked classes first in pedagogical order, unknown classes last
	// alphabetically.
	assert.Equal(t, "Bob", rows[0].TeacherName)
	assert.Equal(t, "Amy", rows[1].TeacherName)
	assert.Equal(t, "Zed", rows[2].TeacherName)
	assert.Equal(t, "Dan", rows[3].TeacherName)
	assert.Equal(t, "Cid", rows[4].TeacherName)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Seq)
	}
}

func TestReportServiceYearlyPivot(t *testing.T) {
	repo := &mockReportRepo{yearly: []dto.YearlyRawRow{
		{TeacherName: "Alice", TeacherCode: "T-001", CampusName: "Main", Year: 2026, TypeCode: "EXM", ClassName: strPtr("SIX"), SubjectName: strPtr("Mathematics")},
		{TeacherName: "Alice", TeacherCode: "T-001", CampusName: "Main", Year: 2026, TypeCode: "EXM", ClassName: strPtr("SEVEN"), SubjectName: strPtr("English")},
		{TeacherName: "Alice", TeacherCode: "T-001", CampusName: "Main", Year: 2026, TypeCode: "INV"},
		{TeacherName: "Bob", TeacherCode: "T-002", CampusName: "North", Year: 2026, TypeCode: "EXM", ClassName: strPtr("SIX"), SubjectName: strPtr("Bangla")},
	}}
	svc := NewReportService(repo, nil, 0, zap.NewNop())

	result, err := svc.Generate(context.Background(), dto.ReportYearlySummary, dto.ReportFilter{Year: 2026}, nil, false)
	require.NoError(t, err)
	require.NotNil(t, result.Yearly)

	// Column set defaults to the distinct codes present, sorted.
	assert.Equal(t, []string{"EXM", "INV"}, result.Yearly.TypeCodes)
	require.Len(t, result.Yearly.Rows, 2)

	alice := result.Yearly.Rows[0]
	assert.Equal(t, "T-001", alice.TeacherCode)
	assert.Equal(t, "SIX-Mathematics, SEVEN-English", alice.Cells["EXM"])
	assert.Equal(t, "-", alice.Cells["INV"])

	bob := result.Yearly.Rows[1]
	assert.Equal(t, "SIX-Bangla", bob.Cells["EXM"])
	assert.Equal(t, "-", bob.Cells["INV"])
}

func TestReportServiceYearlyCompareSpansTwoYears(t *testing.T) {
	repo := &mockReportRepo{}
	svc := NewReportService(repo, nil, 0, zap.NewNop())

	_, err := svc.Generate(context.Background(), dto.ReportYearlySummary, dto.ReportFilter{Year: 2026}, []string{"EXM"}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2026}, repo.lastYears)
}

func TestReportServiceYearlyCompareSynthesizesMissingYear(t *testing.T) {
	repo := &mockReportRepo{yearly: []dto.YearlyRawRow{
		{TeacherName: "Alice", TeacherCode: "T-001", CampusName: "Main", Year: 2024, TypeCode: "EXM", ClassName: strPtr("SIX"), SubjectName: strPtr("Mathematics")},
	}}
	svc := NewReportService(repo, nil, 0, zap.NewNop())

	result, err := svc.Generate(context.Background(), dto.ReportYearlySummary, dto.ReportFilter{Year: 2024}, nil, true)
	require.NoError(t, err)
	require.NotNil(t, result.Yearly)

	// One teacher, two rows: the current year with data, then the previous
	// year rendered all "-" even though it holds no assignments.
	require.Len(t, result.Yearly.Rows, 2)

	current := result.Yearly.Rows[0]
	assert.Equal(t, 2024, current.Year)
	assert.Equal(t, "T-001", current.TeacherCode)
	assert.Equal(t, "SIX-Mathematics", current.Cells["EXM"])

	previous := result.Yearly.Rows[1]
	assert.Equal(t, 2023, previous.Year)
	assert.Equal(t, "T-001", previous.TeacherCode)
	assert.Equal(t, "-", previous.Cells["EXM"])
}

func TestReportServiceYearlyCompareInterleavesCurrentThenPrevious(t *testing.T) {
	repo := &mockReportRepo{yearly: []dto.YearlyRawRow{
		{TeacherName: "Alice", TeacherCode: "T-001", CampusName: "Main", Year: 2025, TypeCode: "EXM", ClassName: strPtr("FIVE"), SubjectName: strPtr("Bangla")},
		{TeacherName: "Alice", TeacherCode: "T-001", CampusName: "Main", Year: 2026, TypeCode: "EXM", ClassName: strPtr("SIX"), SubjectName: strPtr("Mathematics")},
		{TeacherName: "Bob", TeacherCode: "T-002", CampusName: "North", Year: 2026, TypeCode: "EXM", ClassName: strPtr("SIX"), SubjectName: strPtr("Bangla")},
	}}
	svc := NewReportService(repo, nil, 0, zap.NewNop())

	result, err := svc.Generate(context.Background(), dto.ReportYearlySummary, dto.ReportFilter{Year: 2026}, []string{"EXM"}, true)
	require.NoError(t, err)
	require.Len(t, result.Yearly.Rows, 4)

	// Per teacher the current-year row precedes the comparison-year row.
	assert.Equal(t, "T-001", result.Yearly.Rows[0].TeacherCode)
	assert.Equal(t, 2026, result.Yearly.Rows[0].Year)
	assert.Equal(t, "SIX-Mathematics", result.Yearly.Rows[0].Cells["EXM"])
	assert.Equal(t, "T-001", result.Yearly.Rows[1].TeacherCode)
	assert.Equal(t, 2025, result.Yearly.Rows[1].Year)
	assert.Equal(t, "FIVE-Bangla", result.Yearly.Rows[1].Cells["EXM"])
	assert.Equal(t, "T-002", result.Yearly.Rows[2].TeacherCode)
	assert.Equal(t, 2026, result.Yearly.Rows[2].Year)
	assert.Equal(t, "T-002", result.Yearly.Rows[3].TeacherCode)
	assert.Equal(t, 2025, result.Yearly.Rows[3].Year)
	assert.Equal(t, "-", result.Yearly.Rows[3].Cells["EXM"])
}

func TestReportServiceRequiresYear(t *testing.T) {
	svc := NewReportService(&mockReportRepo{}, nil, 0, zap.NewNop())

	_, err := svc.Generate(context.Background(), dto.ReportDetailedAssignment, dto.ReportFilter{}, nil, false)
	require.Error(t, err)
}
