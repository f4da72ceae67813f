package models

import (
	"time"
)

// Building is an entry in the campus building directory.
// Rows are maintained by the import tooling; the API only reads them.
type Building struct {
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Latitude  *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64  `db:"longitude" json:"longitude,omitempty"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Address   string    `db:"address" json:"address"`
	ID        int64     `db:"id" json:"id"`
}

