package dto

import "time"

// ReportType selects one of the report shapes.
type ReportType string

const (
	ReportDetailedAssignment ReportType = "DETAILED_ASSIGNMENT"
	ReportCampusSummary      ReportType = "CAMPUS_SUMMARY"
	ReportClassSummary       ReportType = "CLASS_SUMMARY"
	ReportYearlySummary      ReportType = "YEARLY_SUMMARY"
)

// Valid reports whether the type is one of the supported report shapes.
func (t ReportType) Valid() bool {
	switch t {
	case ReportDetailedAssignment, ReportCampusSummary, ReportClassSummary, ReportYearlySummary:
		return true
	}
	return false
}

// ReportFilter is the explicit, immutable filter applied to every report
// template. Status empty means "exclude Cancelled". BranchID matches the
// effective campus: either the assignment's campus snapshot or the teacher's
// current campus.
type ReportFilter struct {
	Year      int
	TypeID    string
	ClassID   string
	SubjectID string
	Status    string
	BranchID  string
}

// DetailedRow is one joined assignment row.
type DetailedRow struct {
	Seq          int       `db:"-" json:"id"`
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	TeacherName  string    `db:"teacher_name" json:"teacher"`
	TeacherCode  string    `db:"teacher_code" json:"teacher_code"`
	CampusName   string    `db:"campus_name" json:"campus"`
	TypeName     string    `db:"type_name" json:"responsibility_type"`
	TypeCode     string    `db:"type_code" json:"type_code"`
	Year         int       `db:"year" json:"year"`
	ClassName    string    `db:"class_name" json:"class"`
	SubjectName  string    `db:"subject_name" json:"subject"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CampusSummaryRow counts assignments per (effective campus, type).
type CampusSummaryRow struct {
	CampusName string `db:"campus_name" json:"campus"`
	TypeName   string `db:"type_name" json:"responsibility_type"`
	Total      int    `db:"total" json:"total_assignments"`
}

// ClassSummaryRow counts assignments per (class, type).
type ClassSummaryRow struct {
	ClassName string `db:"class_name" json:"class"`
	TypeName  string `db:"type_name" json:"responsibility_type"`
	Total     int    `db:"total" json:"total_assignments"`
}

// YearlyRawRow is one flat assignment row feeding the yearly pivot.
type YearlyRawRow struct {
	TeacherName string  `db:"teacher_name"`
	TeacherCode string  `db:"teacher_code"`
	CampusName  string  `db:"campus_name"`
	Year        int     `db:"year"`
	TypeCode    string  `db:"type_code"`
	ClassName   *string `db:"class_name"`
	SubjectName *string `db:"subject_name"`
}

// YearlyRow is one teacher-year line of the pivot report. Cells maps
// responsibility-type code to the "CLASS-SUBJECT" list for that year, "-"
// when none.
type YearlyRow struct {
	TeacherName string            `json:"teacher"`
	TeacherCode string            `json:"teacher_code"`
	CampusName  string            `json:"campus"`
	Year        int               `json:"year"`
	Cells       map[string]string `json:"cells"`
}

// YearlyReport is the full pivot payload with its column order preserved.
type YearlyReport struct {
	Year      int         `json:"year"`
	Compare   bool        `json:"compare"`
	TypeCodes []string    `json:"type_codes"`
	Rows      []YearlyRow `json:"rows"`
}

// DashboardSummary carries the year-scoped headline counts.
type DashboardSummary struct {
	TotalBranches             int `json:"total_branches"`
	TotalClasses              int `json:"total_classes"`
	TotalSubjects             int `json:"total_subjects"`
	TotalResponsibilityTypes  int `json:"total_responsibility_types"`
	TotalTeachers             int `json:"total_teachers"`
	TotalGrantedLeaves        int `json:"total_granted_leaves"`
	TotalActiveResponsibility int `json:"total_responsibilities"`
	ActiveSession             int `json:"active_session"`
}

// TopTeacherRow is one line of the top-duty-count listing.
type TopTeacherRow struct {
	TeacherCode string `db:"teacher_code" json:"teacher_id"`
	Name        string `db:"name" json:"name"`
	TotalDuties int    `db:"total_duties" json:"total_duties"`
}

// NameCountRow is a generic analytics bucket (duty type or branch).
type NameCountRow struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}
