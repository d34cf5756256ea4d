package models

import "time"

// Region is a geographic region an album can belong to. Rows are owned by
// the periodic sync job: a region missing from the external feed is marked
// inactive rather than deleted, so albums keep a valid reference.
type Region struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
