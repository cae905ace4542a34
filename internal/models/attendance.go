package models

import "time"

// PaymentStatus tracks whether a member's class enrollment is paid up.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusOverdue PaymentStatus = "OVERDUE"
)

// RosterMember is an enrolled, paid member expected at a class.
type RosterMember struct {
	StudentID     string        `db:"student_id" json:"student_id"`
	FullName      string        `db:"full_name" json:"full_name"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
}

// AttendanceRecord is one member's attendance for a session. IsPresent is nil until marked.
type AttendanceRecord struct {
	ID            string     `db:"id" json:"id,omitempty"`
	SessionID     string     `db:"session_id" json:"session_id,omitempty"`
	ClassID       string     `db:"class_id" json:"class_id"`
	SessionNumber int        `db:"session_number" json:"session_number"`
	StudentID     string     `db:"student_id" json:"student_id"`
	StudentName   string     `db:"student_name" json:"student_name"`
	IsPresent     *bool      `db:"is_present" json:"is_present"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	Timestamp     *time.Time `db:"marked_at" json:"timestamp,omitempty"`
}

// Marked reports whether attendance has been recorded for this row.
func (r AttendanceRecord) Marked() bool {
	return r.IsPresent != nil
}

// Roster is the resolved attendance list for one session.
type Roster struct {
	ClassID       string             `json:"class_id"`
	SessionNumber int                `json:"session_number"`
	Synthesized   bool               `json:"synthesized"`
	Records       []AttendanceRecord `json:"records"`
}

// AttendanceMark is the idempotent upsert command keyed by (class, session, student).
type AttendanceMark struct {
	SessionID     string  `json:"session_id,omitempty"`
	ClassID       string  `json:"class_id"`
	SessionNumber int     `json:"session_number"`
	StudentID     string  `json:"user_id"`
	IsPresent     bool    `json:"is_present"`
	Notes         *string `json:"notes,omitempty"`
}

// AttendanceBulkFailure captures a bulk mark that could not be queued.
type AttendanceBulkFailure struct {
	StudentID string `json:"user_id"`
	Reason    string `json:"reason"`
}
