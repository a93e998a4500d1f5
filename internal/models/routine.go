package models

import "time"

// RoutineEntry is one teaching slot: a (teacher, year, class, subject) tuple.
// The tuple is unique; the manual path rejects duplicates while the bulk
// upload overwrites them.
type RoutineEntry struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Year      int       `db:"year" json:"year"`
	ClassID   string    `db:"class_id" json:"class_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RoutineEntryDetail is a routine entry joined with display names.
type RoutineEntryDetail struct {
	RoutineEntry
	ClassName   string `db:"class_name" json:"class_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	Display     string `json:"display"`
}

// RoutineTeacher is a teacher eligible for a duty according to the routine
// filter (year + class + subject).
type RoutineTeacher struct {
	ID         string  `db:"id" json:"id"`
	TeacherID  string  `db:"teacher_id" json:"teacher_id"`
	Name       string  `db:"name" json:"name"`
	Phone      *string `db:"phone" json:"phone,omitempty"`
	CampusID   string  `db:"campus_id" json:"campus_id"`
	CampusName *string `db:"campus_name" json:"campus_name,omitempty"`
}

// RoutineCampusRow is one routine slot of a campus listing, joined with the
// teacher and catalog display fields for export.
type RoutineCampusRow struct {
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	TeacherCode string `db:"teacher_code" json:"teacher_code"`
	ClassName   string `db:"class_name" json:"class_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	Year        int    `db:"year" json:"year"`
}

// RoutineBulkResult reports the outcome of a bulk upload. Rows are processed
// independently; Errors preserves spreadsheet order and carries the sheet row
// number (header = row 1).
type RoutineBulkResult struct {
	Synced          int      `json:"synced"`
	TeachersCreated int      `json:"teachers_created"`
	Errors          []string `json:"errors"`
}
