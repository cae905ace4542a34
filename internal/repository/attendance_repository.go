package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

const attendanceColumns = `sa.id, sa.session_id, sa.class_id, sa.session_number, sa.student_id, m.full_name AS student_name, sa.is_present, sa.notes, sa.marked_at`

// AttendanceRepository stores per-session attendance keyed by (class, session number, member).
// SeedRoster and Upsert require UNIQUE (class_id, session_number, student_id) on
// session_attendance.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListBySession returns recorded attendance for a session ordered by member name.
func (r *AttendanceRepository) ListBySession(ctx context.Context, classID string, sessionNumber int) ([]models.AttendanceRecord, error) {
	const query = `SELECT ` + attendanceColumns + `
FROM session_attendance sa
JOIN members m ON m.id = sa.student_id
WHERE sa.class_id = $1 AND sa.session_number = $2
ORDER BY m.full_name ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, classID, sessionNumber); err != nil {
		return nil, fmt.Errorf("list session attendance: %w", err)
	}
	return records, nil
}

// SeedRoster inserts an unmarked row per member, leaving existing rows untouched.
func (r *AttendanceRepository) SeedRoster(ctx context.Context, session *models.SessionInstance, members []models.RosterMember) error {
	if len(members) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed roster: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	const query = `INSERT INTO session_attendance (id, session_id, class_id, session_number, student_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (class_id, session_number, student_id) DO NOTHING`
	now := time.Now().UTC()
	for _, member := range members {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), session.ID, session.ClassID, session.SessionNumber, member.StudentID, now); err != nil {
			return fmt.Errorf("seed roster member %s: %w", member.StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed roster: %w", err)
	}
	commit = true
	return nil
}

// Upsert records a mark. Re-applying the same mark is a no-op apart from marked_at.
func (r *AttendanceRepository) Upsert(ctx context.Context, mark models.AttendanceMark) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	const query = `INSERT INTO session_attendance (id, session_id, class_id, session_number, student_id, is_present, notes, marked_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $8)
ON CONFLICT (class_id, session_number, student_id)
DO UPDATE SET is_present = EXCLUDED.is_present, notes = EXCLUDED.notes, marked_at = EXCLUDED.marked_at, updated_at = EXCLUDED.updated_at
RETURNING id, session_id, class_id, session_number, student_id, is_present, notes, marked_at`
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query, uuid.NewString(), mark.SessionID, mark.ClassID, mark.SessionNumber, mark.StudentID, mark.IsPresent, mark.Notes, now); err != nil {
		return nil, fmt.Errorf("upsert session attendance: %w", err)
	}
	return &stored, nil
}
