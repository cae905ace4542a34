package models

import "time"

// SessionOrigin tells whether a session only exists as a projection or has been persisted.
type SessionOrigin string

const (
	SessionOriginProjected SessionOrigin = "projected"
	SessionOriginPersisted SessionOrigin = "persisted"
)

// SessionInstance is one concrete occurrence of a class on a calendar date.
type SessionInstance struct {
	ID            string        `db:"id" json:"id,omitempty"`
	ClassID       string        `db:"class_id" json:"class_id"`
	SessionNumber int           `db:"session_number" json:"session_number"`
	SessionDate   time.Time     `db:"session_date" json:"session_date"`
	Origin        SessionOrigin `db:"-" json:"origin"`
	PresentCount  int           `db:"present_count" json:"present_count"`
	TotalStudents int           `db:"total_students" json:"total_students"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at,omitempty"`
}

// SessionStub is a projected session computed from a weekly pattern.
type SessionStub struct {
	SessionNumber int       `json:"session_number"`
	SessionDate   time.Time `json:"session_date"`
}

// Class is the minimal class view the schedule engine needs.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
