package models

import "time"

// ResponsibilityCategory groups duty types.
type ResponsibilityCategory string

const (
	CategoryExamination    ResponsibilityCategory = "Examination"
	CategoryAdministrative ResponsibilityCategory = "Administrative"
	CategoryAcademic       ResponsibilityCategory = "Academic"
	CategoryCoCurricular   ResponsibilityCategory = "Co-curricular"
	CategoryOther          ResponsibilityCategory = "Other"
)

// ResponsibilityType is a catalog entry describing a kind of duty, e.g.
// "E-Annual" (annual exam examiner) or "Q-HY" (half-yearly question setter).
// RequiresClassSubject marks duties that must carry a class/subject pair.
type ResponsibilityType struct {
	ID                   string                 `db:"id" json:"id"`
	Name                 string                 `db:"name" json:"name"`
	Code                 *string                `db:"code" json:"code,omitempty"`
	Description          *string                `db:"description" json:"description,omitempty"`
	Category             ResponsibilityCategory `db:"category" json:"category"`
	RequiresClassSubject bool                   `db:"requires_class_subject" json:"requires_class_subject"`
	CreatedAt            time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time              `db:"updated_at" json:"updated_at"`
}
