package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

const sessionSelect = `SELECT cs.id, cs.class_id, cs.session_number, cs.session_date, cs.total_students, cs.created_at,
       COUNT(sa.id) FILTER (WHERE sa.is_present) AS present_count
FROM class_sessions cs
LEFT JOIN session_attendance sa ON sa.session_id = cs.id`

// SessionRepository persists session instances.
//
// EnsureExists relies on these constraints on class_sessions:
//
//	UNIQUE (class_id, session_number)
//	UNIQUE (class_id, session_date)
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// ListByClass returns every persisted session of the class with its present count.
func (r *SessionRepository) ListByClass(ctx context.Context, classID string) ([]models.SessionInstance, error) {
	const query = sessionSelect + `
WHERE cs.class_id = $1
GROUP BY cs.id
ORDER BY cs.session_date ASC, cs.session_number ASC`
	var sessions []models.SessionInstance
	if err := r.db.SelectContext(ctx, &sessions, query, classID); err != nil {
		return nil, fmt.Errorf("list class sessions: %w", err)
	}
	for i := range sessions {
		sessions[i].Origin = models.SessionOriginPersisted
	}
	return sessions, nil
}

// FindByNumber loads a persisted session by its class-scoped number.
func (r *SessionRepository) FindByNumber(ctx context.Context, classID string, sessionNumber int) (*models.SessionInstance, error) {
	const query = sessionSelect + `
WHERE cs.class_id = $1 AND cs.session_number = $2
GROUP BY cs.id`
	var session models.SessionInstance
	if err := r.db.GetContext(ctx, &session, query, classID, sessionNumber); err != nil {
		return nil, err
	}
	session.Origin = models.SessionOriginPersisted
	return &session, nil
}

// EnsureExists inserts the session unless its number or date is already taken for the
// class, then reads the row back by number. sql.ErrNoRows means the date belongs to a
// different session number.
func (r *SessionRepository) EnsureExists(ctx context.Context, session *models.SessionInstance) (*models.SessionInstance, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO class_sessions (id, class_id, session_number, session_date, total_students, created_at)
VALUES (:id, :class_id, :session_number, :session_date, :total_students, :created_at)
ON CONFLICT DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, insert, session); err != nil {
		return nil, fmt.Errorf("ensure class session: %w", err)
	}
	return r.FindByNumber(ctx, session.ClassID, session.SessionNumber)
}
