package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

const assignmentColumns = `id, class_id, trainer_id, pattern, start_date, end_date, total_sessions, room, version, created_at`

// assignmentRow mirrors class_assignments; the pattern column is JSONB.
type assignmentRow struct {
	ID            string         `db:"id"`
	ClassID       string         `db:"class_id"`
	TrainerID     string         `db:"trainer_id"`
	Pattern       types.JSONText `db:"pattern"`
	StartDate     time.Time      `db:"start_date"`
	EndDate       time.Time      `db:"end_date"`
	TotalSessions *int           `db:"total_sessions"`
	Room          string         `db:"room"`
	Version       int            `db:"version"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (r assignmentRow) toModel() (models.ClassAssignment, error) {
	var pattern models.WeeklyPattern
	if len(r.Pattern) > 0 {
		if err := r.Pattern.Unmarshal(&pattern); err != nil {
			return models.ClassAssignment{}, fmt.Errorf("decode pattern of assignment %s: %w", r.ID, err)
		}
	}
	return models.ClassAssignment{
		ID:            r.ID,
		ClassID:       r.ClassID,
		TrainerID:     r.TrainerID,
		Pattern:       pattern,
		StartDate:     models.DateOnly(r.StartDate),
		EndDate:       models.DateOnly(r.EndDate),
		TotalSessions: r.TotalSessions,
		Room:          r.Room,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
	}, nil
}

// ClassAssignmentRepository stores versioned schedule snapshots.
type ClassAssignmentRepository struct {
	db *sqlx.DB
}

// NewClassAssignmentRepository constructs the repository.
func NewClassAssignmentRepository(db *sqlx.DB) *ClassAssignmentRepository {
	return &ClassAssignmentRepository{db: db}
}

// FindByID loads one snapshot.
func (r *ClassAssignmentRepository) FindByID(ctx context.Context, id string) (*models.ClassAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM class_assignments WHERE id = $1`
	var row assignmentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	assignment, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindCurrentByClass loads the highest version for a class.
func (r *ClassAssignmentRepository) FindCurrentByClass(ctx context.Context, classID string) (*models.ClassAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM class_assignments WHERE class_id = $1 ORDER BY version DESC LIMIT 1`
	var row assignmentRow
	if err := r.db.GetContext(ctx, &row, query, classID); err != nil {
		return nil, err
	}
	assignment, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListCurrentByTrainer returns the current snapshot of each class whose latest version is
// taught by the trainer.
func (r *ClassAssignmentRepository) ListCurrentByTrainer(ctx context.Context, trainerID string) ([]models.ClassAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM (
    SELECT DISTINCT ON (class_id) ` + assignmentColumns + `
    FROM class_assignments
    ORDER BY class_id, version DESC
) current
WHERE trainer_id = $1
ORDER BY start_date ASC`
	var rows []assignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, trainerID); err != nil {
		return nil, fmt.Errorf("list trainer assignments: %w", err)
	}
	assignments := make([]models.ClassAssignment, 0, len(rows))
	for _, row := range rows {
		assignment, err := row.toModel()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, nil
}

// CreateVersion inserts a new snapshot numbered after the class's latest version.
func (r *ClassAssignmentRepository) CreateVersion(ctx context.Context, assignment *models.ClassAssignment) error {
	pattern, err := json.Marshal(assignment.Pattern)
	if err != nil {
		return fmt.Errorf("encode pattern: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment version: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	var latest int
	if err := tx.GetContext(ctx, &latest, `SELECT COALESCE(MAX(version), 0) FROM class_assignments WHERE class_id = $1`, assignment.ClassID); err != nil {
		return fmt.Errorf("load latest assignment version: %w", err)
	}

	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.Version = latest + 1
	assignment.CreatedAt = time.Now().UTC()

	const insert = `INSERT INTO class_assignments (` + assignmentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := tx.ExecContext(ctx, insert,
		assignment.ID,
		assignment.ClassID,
		assignment.TrainerID,
		types.JSONText(pattern),
		assignment.StartDate,
		assignment.EndDate,
		assignment.TotalSessions,
		assignment.Room,
		assignment.Version,
		assignment.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert class assignment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit class assignment: %w", err)
	}
	commit = true
	return nil
}
