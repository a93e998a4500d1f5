package models

import "time"

// LeaveStatus tracks exemption approval.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveGranted  LeaveStatus = "Granted"
	LeaveRejected LeaveStatus = "Rejected"
)

// Leave is an exemption record. A Granted leave blocks new assignments for
// the same (teacher, responsibility type, year) tuple regardless of class or
// subject.
type Leave struct {
	ID                   string      `db:"id" json:"id"`
	TeacherID            string      `db:"teacher_id" json:"teacher_id"`
	ResponsibilityTypeID string      `db:"responsibility_type_id" json:"responsibility_type_id"`
	Year                 int         `db:"year" json:"year"`
	StartDate            *time.Time  `db:"start_date" json:"start_date,omitempty"`
	EndDate              *time.Time  `db:"end_date" json:"end_date,omitempty"`
	Status               LeaveStatus `db:"status" json:"status"`
	Reason               *string     `db:"reason" json:"reason,omitempty"`
	DecidedBy            *string     `db:"decided_by" json:"decided_by,omitempty"`
	CreatedAt            time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at" json:"updated_at"`
}

// LeaveDetail joins a leave with teacher and type display fields.
type LeaveDetail struct {
	Leave
	TeacherName string  `db:"teacher_name" json:"teacher_name"`
	TeacherCode string  `db:"teacher_code" json:"teacher_code"`
	CampusName  *string `db:"campus_name" json:"campus_name,omitempty"`
	TypeName    string  `db:"type_name" json:"type_name"`
}

// LeaveFilter selects leaves for listings.
type LeaveFilter struct {
	Status    LeaveStatus
	TeacherID string
	Year      int
}
