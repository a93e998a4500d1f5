package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/frii-edu/examiner-api/internal/dto"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
)

type reportRepository interface {
	Detailed(ctx context.Context, filter dto.ReportFilter) ([]dto.DetailedRow, error)
	CampusSummary(ctx context.Context, filter dto.ReportFilter) ([]dto.CampusSummaryRow, error)
	ClassSummary(ctx context.Context, filter dto.ReportFilter) ([]dto.ClassSummaryRow, error)
	YearlyRaw(ctx context.Context, years []int, branchID string) ([]dto.YearlyRawRow, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// classOrder is the pedagogical class sequence used for custom report
// ordering. Classes outside the list sort after it, alphabetically.
var classOrder = map[string]int{
	"ONE":   1,
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
	"SIX":   6,
	"SEVEN": 7,
	"EIGHT": 8,
	"NINE":  9,
	"TEN":   10,
}

// subjectOrder is the fixed subject sequence for custom report ordering.
var subjectOrder = map[string]int{
	"Bangla":             1,
	"English":            2,
	"Mathematics":        3,
	"Science":            4,
	"Social Science":     5,
	"Religion":           6,
	"ICT":                7,
	"Physics":            8,
	"Chemistry":          9,
	"Biology":            10,
	"Higher Mathematics": 11,
	"Accounting":         12,
}

// ReportResult is the payload of a report-data request. Exactly one of the
// row slices is populated according to Type.
type ReportResult struct {
	Type        dto.ReportType         `json:"type"`
	Detailed    []dto.DetailedRow      `json:"detailed,omitempty"`
	ByCampus    []dto.CampusSummaryRow `json:"by_campus,omitempty"`
	ByClass     []dto.ClassSummaryRow  `json:"by_class,omitempty"`
	Yearly      *dto.YearlyReport      `json:"yearly,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// ReportService assembles the reporting payloads.
type ReportService struct {
	repo     reportRepository
	cache    reportCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewReportService constructs the report service. cache may be nil to
// disable report caching.
func NewReportService(repo reportRepository, cache reportCache, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Generate dispatches on the report type and returns the assembled data.
func (s *ReportService) Generate(ctx context.Context, reportType dto.ReportType, filter dto.ReportFilter, typeCodes []string, compare bool) (*ReportResult, error) {
	if !reportType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report type")
	}
	if filter.Year <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year is required")
	}

	cacheKey := s.cacheKey(reportType, filter, typeCodes, compare)
	if s.cache != nil {
		var cached ReportResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("report cache read failed", zap.Error(err))
		}
	}

	result := &ReportResult{Type: reportType, GeneratedAt: time.Now().UTC()}
	var err error
	switch reportType {
	case dto.ReportDetailedAssignment:
		result.Detailed, err = s.detailed(ctx, filter)
	case dto.ReportCampusSummary:
		result.ByCampus, err = s.repo.CampusSummary(ctx, filter)
	case dto.ReportClassSummary:
		result.ByClass, err = s.repo.ClassSummary(ctx, filter)
	case dto.ReportYearlySummary:
		result.Yearly, err = s.yearly(ctx, filter, typeCodes, compare)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("report cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// detailed returns the flat listing with sequential display IDs assigned
// after sorting.
func (s *ReportService) detailed(ctx context.Context, filter dto.ReportFilter) ([]dto.DetailedRow, error) {
	rows, err := s.repo.Detailed(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build detailed report")
	}
	for i := range rows {
		rows[i].Seq = i + 1
	}
	return rows, nil
}

// DetailedCustomOrder returns the detailed listing ordered by the
// pedagogical class sequence, then the fixed subject sequence, then teacher
// name. The sort is stable so equal rows keep their query order.
func (s *ReportService) DetailedCustomOrder(ctx context.Context, filter dto.ReportFilter) ([]dto.DetailedRow, error) {
	rows, err := s.repo.Detailed(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build detailed report")
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ci, cj := classRank(rows[i].ClassName), classRank(rows[j].ClassName)
		if ci != cj {
			return ci < cj
		}
		if ci == unrankedClass && rows[i].ClassName != rows[j].ClassName {
			return rows[i].ClassName < rows[j].ClassName
		}
		si, sj := subjectRank(rows[i].SubjectName), subjectRank(rows[j].SubjectName)
		if si != sj {
			return si < sj
		}
		if si == unrankedSubject && rows[i].SubjectName != rows[j].SubjectName {
			return rows[i].SubjectName < rows[j].SubjectName
		}
		return rows[i].TeacherName < rows[j].TeacherName
	})
	for i := range rows {
		rows[i].Seq = i + 1
	}
	return rows, nil
}

// yearly builds the teacher/year pivot. When typeCodes is empty the columns
// default to the distinct codes present in the data, sorted. compare adds
// the previous year's rows.
func (s *ReportService) yearly(ctx context.Context, filter dto.ReportFilter, typeCodes []string, compare bool) (*dto.YearlyReport, error) {
	years := []int{filter.Year}
	if compare {
		years = []int{filter.Year - 1, filter.Year}
	}
	raw, err := s.repo.YearlyRaw(ctx, years, filter.BranchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build yearly report")
	}

	codes := typeCodes
	if len(codes) == 0 {
		set := make(map[string]bool)
		for _, r := range raw {
			if r.TypeCode != "" {
				set[r.TypeCode] = true
			}
		}
		for code := range set {
			codes = append(codes, code)
		}
		sort.Strings(codes)
	}

	// Rows group per teacher. Under compare every teacher gets a row for the
	// current year and one for the previous year even when one of them holds
	// no assignments; the empty row renders all "-" cells.
	type teacherAgg struct {
		meta  dto.YearlyRawRow
		years map[int]map[string][]string
	}
	teachers := make(map[string]*teacherAgg)
	var order []string

	for _, r := range raw {
		agg, ok := teachers[r.TeacherCode]
		if !ok {
			agg = &teacherAgg{meta: r, years: make(map[int]map[string][]string)}
			teachers[r.TeacherCode] = agg
			order = append(order, r.TeacherCode)
		}
		byCode := agg.years[r.Year]
		if byCode == nil {
			byCode = make(map[string][]string)
			agg.years[r.Year] = byCode
		}
		label := "-"
		switch {
		case r.ClassName != nil && r.SubjectName != nil:
			label = fmt.Sprintf("%s-%s", *r.ClassName, *r.SubjectName)
		case r.ClassName != nil:
			label = *r.ClassName
		case r.SubjectName != nil:
			label = *r.SubjectName
		}
		byCode[r.TypeCode] = append(byCode[r.TypeCode], label)
	}

	rowYears := []int{filter.Year}
	if compare {
		rowYears = []int{filter.Year, filter.Year - 1}
	}

	report := &dto.YearlyReport{
		Year:      filter.Year,
		Compare:   compare,
		TypeCodes: codes,
	}
	for _, teacherCode := range order {
		agg := teachers[teacherCode]
		for _, year := range rowYears {
			row := dto.YearlyRow{
				TeacherName: agg.meta.TeacherName,
				TeacherCode: agg.meta.TeacherCode,
				CampusName:  agg.meta.CampusName,
				Year:        year,
				Cells:       make(map[string]string, len(codes)),
			}
			for _, code := range codes {
				labels := agg.years[year][code]
				if len(labels) == 0 {
					row.Cells[code] = "-"
					continue
				}
				row.Cells[code] = strings.Join(labels, ", ")
			}
			report.Rows = append(report.Rows, row)
		}
	}
	return report, nil
}

const (
	unrankedClass   = 100
	unrankedSubject = 100
)

func classRank(name string) int {
	if rank, ok := classOrder[strings.ToUpper(name)]; ok {
		return rank
	}
	return unrankedClass
}

func subjectRank(name string) int {
	if rank, ok := subjectOrder[name]; ok {
		return rank
	}
	return unrankedSubject
}

func (s *ReportService) cacheKey(reportType dto.ReportType, filter dto.ReportFilter, typeCodes []string, compare bool) string {
	return fmt.Sprintf("report:%s:%d:%s:%s:%s:%s:%s:%s:%t",
		reportType, filter.Year, filter.TypeID, filter.ClassID, filter.SubjectID,
		filter.Status, filter.BranchID, strings.Join(typeCodes, ","), compare)
}
