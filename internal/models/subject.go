package models

import "time"

// SubjectType classifies subjects for reporting.
type SubjectType string

const (
	SubjectCompulsory SubjectType = "Compulsory"
	SubjectOptional   SubjectType = "Optional"
	SubjectCore       SubjectType = "Core"
	SubjectReligious  SubjectType = "Religious"
	SubjectGroup      SubjectType = "Group"
)

// Subject represents a taught subject.
type Subject struct {
	ID            string      `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	Code          *string     `db:"code" json:"code,omitempty"`
	Type          SubjectType `db:"type" json:"type"`
	MinClassLevel *int        `db:"min_class_level" json:"min_class_level,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}
