package dto

import "github.com/noah-isme/gym-schedule-api/internal/models"

// TimeSlotRequest is one structured weekly slot.
type TimeSlotRequest struct {
	DayOfWeek *int   `json:"dayOfWeek" validate:"required,weekday"`
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
}

// PatternInput carries a weekly pattern either as structured slots or as the legacy
// "Mon: 19:00-21:00, Wed: 19:00-21:00" string. Slots win when both are present.
type PatternInput struct {
	Slots        []TimeSlotRequest `json:"slots" validate:"omitempty,dive"`
	ScheduleText string            `json:"scheduleText"`
}

// CreateClassAssignmentRequest creates the first snapshot of a class schedule.
type CreateClassAssignmentRequest struct {
	ClassID   string `json:"classId" validate:"required"`
	TrainerID string `json:"trainerId" validate:"required"`
	PatternInput
	StartDate     string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"endDate" validate:"required,datetime=2006-01-02"`
	TotalSessions *int   `json:"totalSessions" validate:"omitempty,min=0"`
	Room          string `json:"room"`
}

// UpdateClassAssignmentRequest writes a new snapshot for an existing assignment.
type UpdateClassAssignmentRequest struct {
	TrainerID string `json:"trainerId" validate:"required"`
	PatternInput
	StartDate     string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"endDate" validate:"required,datetime=2006-01-02"`
	TotalSessions *int   `json:"totalSessions" validate:"omitempty,min=0"`
	Room          string `json:"room"`
}

// ConflictCheckRequest asks whether a draft schedule collides with the trainer's assignments.
type ConflictCheckRequest struct {
	TrainerID string `json:"trainerId" validate:"required"`
	PatternInput
	StartDate           string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate             string `json:"endDate" validate:"required,datetime=2006-01-02"`
	ExcludeAssignmentID string `json:"excludeAssignmentId"`
}

// ConflictCheckResponse is the conflict-check query result.
type ConflictCheckResponse struct {
	HasConflict bool                      `json:"hasConflict"`
	Details     string                    `json:"details"`
	Conflicts   []models.ScheduleConflict `json:"conflicts,omitempty"`
}

// SessionListResponse is the reconciled session list for a class.
type SessionListResponse struct {
	ClassID  string                   `json:"classId"`
	Sessions []models.SessionInstance `json:"sessions"`
	Degraded bool                     `json:"degraded"`
	Warnings []string                 `json:"warnings,omitempty"`
}

// OpenSessionRequest optionally pins the session date; it defaults to the projected date.
type OpenSessionRequest struct {
	SessionDate string `json:"sessionDate" validate:"omitempty,datetime=2006-01-02"`
}

// MarkAttendanceRequest is the attendance-mark command body.
type MarkAttendanceRequest struct {
	UserID    string  `json:"userId" validate:"required"`
	IsPresent *bool   `json:"isPresent" validate:"required"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

// BulkMarkAttendanceRequest marks many members for one session.
type BulkMarkAttendanceRequest struct {
	Items []MarkAttendanceRequest `json:"items" validate:"required,min=1,dive"`
}

// BulkMarkAttendanceResponse reports how many marks were queued.
type BulkMarkAttendanceResponse struct {
	Queued   int                            `json:"queued"`
	Rejected []models.AttendanceBulkFailure `json:"rejected,omitempty"`
}
