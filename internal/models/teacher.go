package models

import "time"

// Teacher represents an instructor record. TeacherID is the human-facing
// business key printed on duty rosters.
type Teacher struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Name        string    `db:"name" json:"name"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	CampusID    string    `db:"campus_id" json:"campus_id"`
	CampusName  *string   `db:"campus_name" json:"campus_name,omitempty"`
	Designation *string   `db:"designation" json:"designation,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherReport is a yearly performance report attached to a teacher.
type TeacherReport struct {
	ID                   string    `db:"id" json:"id"`
	TeacherID            string    `db:"teacher_id" json:"teacher_id"`
	Year                 int       `db:"year" json:"year"`
	ResponsibilityTypeID string    `db:"responsibility_type_id" json:"responsibility_type_id"`
	Report               string    `db:"report" json:"report"`
	AddedBy              string    `db:"added_by" json:"added_by"`
	ReportDate           time.Time `db:"report_date" json:"report_date"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search   string
	Active   *bool
	CampusID string
	Page     int
	PageSize int
}

// TeacherYearAssignments groups a teacher's assignments for the profile view.
type TeacherYearAssignments struct {
	Year             int                  `json:"year"`
	Responsibilities []TeacherDutySummary `json:"responsibilities"`
}

// TeacherDutySummary is one duty line in the profile view.
type TeacherDutySummary struct {
	AssignmentID string `json:"assignment_id"`
	TypeName     string `json:"type_name"`
	ClassName    string `json:"class_name"`
	SubjectName  string `json:"subject_name"`
	Status       string `json:"status"`
}
