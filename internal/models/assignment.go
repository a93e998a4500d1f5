package models

import "time"

// AssignmentStatus tracks the lifecycle of a duty assignment.
type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "Assigned"
	AssignmentConfirmed AssignmentStatus = "Confirmed"
	AssignmentCancelled AssignmentStatus = "Cancelled"
	AssignmentCompleted AssignmentStatus = "Completed"
)

// Assignment links a teacher to a responsibility type for a year.
// TeacherCampusID is a snapshot of the teacher's campus captured at creation
// time so the record survives later teacher re-assignment; older records
// migrated from before the snapshot existed carry NULL here and resolve their
// campus through the teacher row instead.
type Assignment struct {
	ID                   string           `db:"id" json:"id"`
	TeacherID            string           `db:"teacher_id" json:"teacher_id"`
	TeacherCampusID      *string          `db:"teacher_campus_id" json:"teacher_campus_id,omitempty"`
	ResponsibilityTypeID string           `db:"responsibility_type_id" json:"responsibility_type_id"`
	Year                 int              `db:"year" json:"year"`
	TargetClassID        *string          `db:"target_class_id" json:"target_class_id,omitempty"`
	TargetSubjectID      *string          `db:"target_subject_id" json:"target_subject_id,omitempty"`
	Status               AssignmentStatus `db:"status" json:"status"`
	Notes                *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updated_at"`
}

// AssignmentFilter narrows the cross-teacher assignment listing. Zero values
// mean no filtering on that dimension.
type AssignmentFilter struct {
	Year     int
	TypeID   string
	ClassID  string
	Status   AssignmentStatus
	CampusID string
}

// AssignmentDetail is an assignment joined with display names for listings.
type AssignmentDetail struct {
	Assignment
	TeacherName     string  `db:"teacher_name" json:"teacher_name"`
	TeacherCode     string  `db:"teacher_code" json:"teacher_code"`
	TypeName        string  `db:"type_name" json:"type_name"`
	ClassName       *string `db:"class_name" json:"class_name,omitempty"`
	SubjectName     *string `db:"subject_name" json:"subject_name,omitempty"`
	CampusName      *string `db:"campus_name" json:"campus_name,omitempty"`
}
