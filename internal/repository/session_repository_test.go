package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

var sessionColumnNames = []string{"id", "class_id", "session_number", "session_date", "total_students", "created_at", "present_count"}

func TestSessionRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows(sessionColumnNames).
		AddRow("session-1", "class-1", 1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 8, time.Now(), 6).
		AddRow("session-2", "class-1", 2, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 8, time.Now(), 0)
	mock.ExpectQuery("FROM class_sessions cs\\s+LEFT JOIN session_attendance sa").
		WithArgs("class-1").
		WillReturnRows(rows)

	sessions, err := repo.ListByClass(context.Background(), "class-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, 6, sessions[0].PresentCount)
	assert.Equal(t, models.SessionOriginPersisted, sessions[1].Origin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryEnsureExists(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	date := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO class_sessions .* ON CONFLICT DO NOTHING").
		WithArgs(sqlmock.AnyArg(), "class-1", 3, date, 8, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("WHERE cs.class_id = \\$1 AND cs.session_number = \\$2").
		WithArgs("class-1", 3).
		WillReturnRows(sqlmock.NewRows(sessionColumnNames).AddRow("session-existing", "class-1", 3, date, 8, time.Now(), 2))

	session, err := repo.EnsureExists(context.Background(), &models.SessionInstance{ClassID: "class-1", SessionNumber: 3, SessionDate: date, TotalStudents: 8})
	require.NoError(t, err)
	assert.Equal(t, "session-existing", session.ID)
	assert.Equal(t, 2, session.PresentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryEnsureExistsDateTaken(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO class_sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("WHERE cs.class_id = \\$1 AND cs.session_number = \\$2").
		WithArgs("class-1", 5).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.EnsureExists(context.Background(), &models.SessionInstance{ClassID: "class-1", SessionNumber: 5, SessionDate: time.Now()})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
