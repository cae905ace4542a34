package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Weekday uses 0=Sunday through 6=Saturday, matching time.Weekday.
type Weekday int

// Valid reports whether the weekday lies in 0..6.
func (d Weekday) Valid() bool {
	return d >= 0 && d <= 6
}

// String returns the English day name.
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return time.Weekday(d).String()
}

// ClockTime is a time of day expressed in minutes since midnight.
type ClockTime int

// EndOfDay is midnight at the end of the day, written "24:00". Only valid as a slot end.
const EndOfDay ClockTime = 24 * 60

// ParseClockTime parses "HH:MM" (24h). "24:00" parses as EndOfDay.
func ParseClockTime(raw string) (ClockTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "24:00" {
		return EndOfDay, nil
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// String formats the clock time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalJSON encodes as "HH:MM".
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts "HH:MM".
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TimeSlot is one weekly occurrence of a class.
type TimeSlot struct {
	DayOfWeek Weekday   `json:"day_of_week"`
	StartTime ClockTime `json:"start_time"`
	EndTime   ClockTime `json:"end_time"`
}

// Validate checks the slot invariants.
func (s TimeSlot) Validate() error {
	if !s.DayOfWeek.Valid() {
		return fmt.Errorf("day_of_week %d out of range 0-6", int(s.DayOfWeek))
	}
	if s.StartTime < 0 || s.EndTime > EndOfDay {
		return fmt.Errorf("slot %s-%s outside of a single day", s.StartTime, s.EndTime)
	}
	if s.StartTime >= s.EndTime {
		return fmt.Errorf("slot on %s must start before it ends (%s-%s)", s.DayOfWeek, s.StartTime, s.EndTime)
	}
	return nil
}

// Overlaps tests half-open overlap on the same weekday. Touching endpoints do not overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if s.DayOfWeek != other.DayOfWeek {
		return false
	}
	return s.StartTime < other.EndTime && other.StartTime < s.EndTime
}

// String renders the slot as "Mon 19:00-21:00".
func (s TimeSlot) String() string {
	return fmt.Sprintf("%s %s-%s", s.DayOfWeek.String()[:3], s.StartTime, s.EndTime)
}

// WeeklyPattern is the recurring weekly template of a class. It is stored as JSON.
type WeeklyPattern []TimeSlot

// Normalize validates every slot and returns a sorted copy without exact duplicates.
func (p WeeklyPattern) Normalize() (WeeklyPattern, error) {
	out := make(WeeklyPattern, 0, len(p))
	seen := make(map[TimeSlot]struct{}, len(p))
	for _, slot := range p {
		if err := slot.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[slot]; ok {
			continue
		}
		seen[slot] = struct{}{}
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].EndTime < out[j].EndTime
	})
	return out, nil
}

// Days returns the de-duplicated set of valid weekdays the pattern meets on.
func (p WeeklyPattern) Days() map[Weekday]struct{} {
	days := make(map[Weekday]struct{}, len(p))
	for _, slot := range p {
		if slot.DayOfWeek.Valid() {
			days[slot.DayOfWeek] = struct{}{}
		}
	}
	return days
}

// String renders the pattern in the legacy "Mon: 19:00-21:00, Wed: ..." form.
func (p WeeklyPattern) String() string {
	parts := make([]string, 0, len(p))
	for _, slot := range p {
		if !slot.DayOfWeek.Valid() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s-%s", slot.DayOfWeek.String()[:3], slot.StartTime, slot.EndTime))
	}
	return strings.Join(parts, ", ")
}

// Value implements driver.Valuer for JSONB columns.
func (p WeeklyPattern) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB columns.
func (p *WeeklyPattern) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = WeeklyPattern{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported weekly pattern source %T", src)
	}
	return json.Unmarshal(raw, p)
}

// DateRange is an inclusive calendar date range.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// NewDateRange truncates both bounds to UTC calendar dates.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: DateOnly(start), End: DateOnly(end)}
}

// Empty reports whether the range contains no days.
func (r DateRange) Empty() bool {
	return DateOnly(r.Start).After(DateOnly(r.End))
}

// Contains reports whether the date falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	d := DateOnly(day)
	return !d.Before(DateOnly(r.Start)) && !d.After(DateOnly(r.End))
}

// Intersect returns the overlapping window and whether it is non-empty.
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	start := DateOnly(r.Start)
	if s := DateOnly(other.Start); s.After(start) {
		start = s
	}
	end := DateOnly(r.End)
	if e := DateOnly(other.End); e.Before(end) {
		end = e
	}
	window := DateRange{Start: start, End: end}
	if window.Empty() {
		return DateRange{}, false
	}
	return window, true
}

// String renders the range as "2006-01-02..2006-01-02".
func (r DateRange) String() string {
	return DateOnly(r.Start).Format(DateLayout) + ".." + DateOnly(r.End).Format(DateLayout)
}

// DateOnly drops the time-of-day component, keeping the calendar date as UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClassAssignment is an immutable snapshot binding a trainer and weekly pattern to a class.
type ClassAssignment struct {
	ID            string        `db:"id" json:"id"`
	ClassID       string        `db:"class_id" json:"class_id"`
	TrainerID     string        `db:"trainer_id" json:"trainer_id"`
	Pattern       WeeklyPattern `db:"pattern" json:"pattern"`
	StartDate     time.Time     `db:"start_date" json:"start_date"`
	EndDate       time.Time     `db:"end_date" json:"end_date"`
	TotalSessions *int          `db:"total_sessions" json:"total_sessions,omitempty"`
	Room          string        `db:"room" json:"room"`
	Version       int           `db:"version" json:"version"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// ActiveRange returns the assignment's inclusive date range.
func (a ClassAssignment) ActiveRange() DateRange {
	return NewDateRange(a.StartDate, a.EndDate)
}

// ScheduleDescriptor is the minimal view of an assignment used by conflict detection.
type ScheduleDescriptor struct {
	AssignmentID string        `json:"assignment_id,omitempty"`
	ClassID      string        `json:"class_id,omitempty"`
	TrainerID    string        `json:"trainer_id"`
	Pattern      WeeklyPattern `json:"pattern"`
	Range        DateRange     `json:"range"`
}

// Descriptor projects the assignment for conflict detection.
func (a ClassAssignment) Descriptor() ScheduleDescriptor {
	return ScheduleDescriptor{
		AssignmentID: a.ID,
		ClassID:      a.ClassID,
		TrainerID:    a.TrainerID,
		Pattern:      a.Pattern,
		Range:        a.ActiveRange(),
	}
}

// SlotOverlap names one pair of colliding slots.
type SlotOverlap struct {
	Candidate TimeSlot `json:"candidate"`
	Existing  TimeSlot `json:"existing"`
}

// ScheduleConflict describes a collision between a candidate schedule and an existing assignment.
type ScheduleConflict struct {
	AssignmentID string        `json:"assignment_id,omitempty"`
	ClassID      string        `json:"class_id,omitempty"`
	TrainerID    string        `json:"trainer_id"`
	Window       DateRange     `json:"window"`
	Overlaps     []SlotOverlap `json:"overlaps"`
}

// ScheduleConflictError is returned when a write collides with an existing assignment.
type ScheduleConflictError struct {
	Type      string             `json:"type"`
	Message   string             `json:"message"`
	Conflicts []ScheduleConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
