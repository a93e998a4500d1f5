package models

import (
	"time"

	"github.com/lib/pq"
)

// Class represents a teaching class. Names are stored upper-case; level is
// the numeric sort order (FIVE = 5, NINE = 9).
type Class struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Level     int            `db:"level" json:"level"`
	Streams   pq.StringArray `db:"streams" json:"streams,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
