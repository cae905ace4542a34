package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

func newRepositoryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var assignmentColumnNames = []string{"id", "class_id", "trainer_id", "pattern", "start_date", "end_date", "total_sessions", "room", "version", "created_at"}

func TestClassAssignmentRepositoryFindCurrentByClass(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewClassAssignmentRepository(db)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(assignmentColumnNames).
		AddRow("assign-2", "class-1", "trainer-1", []byte(`[{"day_of_week":1,"start_time":"19:00","end_time":"21:00"}]`), start, start.AddDate(0, 3, 0), 12, "Studio A", 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + assignmentColumns + ` FROM class_assignments WHERE class_id = $1 ORDER BY version DESC LIMIT 1`)).
		WithArgs("class-1").
		WillReturnRows(rows)

	assignment, err := repo.FindCurrentByClass(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Equal(t, 2, assignment.Version)
	assert.Equal(t, "Mon: 19:00-21:00", assignment.Pattern.String())
	require.NotNil(t, assignment.TotalSessions)
	assert.Equal(t, 12, *assignment.TotalSessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassAssignmentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewClassAssignmentRepository(db)

	mock.ExpectQuery("FROM class_assignments WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassAssignmentRepositoryListCurrentByTrainer(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewClassAssignmentRepository(db)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(assignmentColumnNames).
		AddRow("assign-1", "class-1", "trainer-1", []byte(`[]`), start, start.AddDate(0, 1, 0), nil, "", 1, time.Now()).
		AddRow("assign-7", "class-3", "trainer-1", []byte(`[{"day_of_week":3,"start_time":"07:00","end_time":"08:00"}]`), start, start.AddDate(0, 6, 0), nil, "Pool", 4, time.Now())
	mock.ExpectQuery("SELECT DISTINCT ON \\(class_id\\)").
		WithArgs("trainer-1").
		WillReturnRows(rows)

	assignments, err := repo.ListCurrentByTrainer(context.Background(), "trainer-1")
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Empty(t, assignments[0].Pattern)
	assert.Nil(t, assignments[0].TotalSessions)
	assert.Equal(t, "Wed: 07:00-08:00", assignments[1].Pattern.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassAssignmentRepositoryCreateVersion(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewClassAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(version), 0) FROM class_assignments WHERE class_id = $1`)).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))
	mock.ExpectExec("INSERT INTO class_assignments").
		WithArgs(sqlmock.AnyArg(), "class-1", "trainer-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), nil, "Studio A", 4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assignment := &models.ClassAssignment{
		ClassID:   "class-1",
		TrainerID: "trainer-1",
		Pattern:   models.WeeklyPattern{{DayOfWeek: 1, StartTime: 19 * 60, EndTime: 21 * 60}},
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Room:      "Studio A",
	}
	require.NoError(t, repo.CreateVersion(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.Equal(t, 4, assignment.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassAssignmentRepositoryCreateVersionRollsBack(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewClassAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectExec("INSERT INTO class_assignments").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.CreateVersion(context.Background(), &models.ClassAssignment{ClassID: "class-1", TrainerID: "trainer-1"})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
