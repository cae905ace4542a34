package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

func TestAttendanceRepositoryListBySession(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	marked := time.Date(2024, 1, 8, 19, 5, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "session_id", "class_id", "session_number", "student_id", "student_name", "is_present", "notes", "marked_at"}).
		AddRow("att-1", "session-1", "class-1", 3, "member-1", "Ada", true, nil, marked).
		AddRow("att-2", "session-1", "class-1", 3, "member-2", "Ben", nil, nil, nil)
	mock.ExpectQuery("FROM session_attendance sa\\s+JOIN members m").
		WithArgs("class-1", 3).
		WillReturnRows(rows)

	records, err := repo.ListBySession(context.Background(), "class-1", 3)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].IsPresent)
	assert.True(t, *records[0].IsPresent)
	assert.Nil(t, records[1].IsPresent)
	assert.Nil(t, records[1].Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySeedRoster(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	session := &models.SessionInstance{ID: "session-1", ClassID: "class-1", SessionNumber: 3}
	members := []models.RosterMember{{StudentID: "member-1"}, {StudentID: "member-2"}}

	mock.ExpectBegin()
	for _, member := range members {
		mock.ExpectExec("INSERT INTO session_attendance .* DO NOTHING").
			WithArgs(sqlmock.AnyArg(), "session-1", "class-1", 3, member.StudentID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.SeedRoster(context.Background(), session, members))
	require.NoError(t, repo.SeedRoster(context.Background(), session, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySeedRosterRollsBack(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO session_attendance").
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.SeedRoster(context.Background(), &models.SessionInstance{ID: "session-1", ClassID: "class-1", SessionNumber: 1}, []models.RosterMember{{StudentID: "ghost"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO session_attendance .* DO UPDATE SET is_present = EXCLUDED.is_present").
		WithArgs(sqlmock.AnyArg(), "session-1", "class-1", 3, "member-1", true, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "class_id", "session_number", "student_id", "is_present", "notes", "marked_at"}).
			AddRow("att-1", "session-1", "class-1", 3, "member-1", true, nil, now))

	record, err := repo.Upsert(context.Background(), models.AttendanceMark{SessionID: "session-1", ClassID: "class-1", SessionNumber: 3, StudentID: "member-1", IsPresent: true})
	require.NoError(t, err)
	assert.Equal(t, "att-1", record.ID)
	require.NotNil(t, record.Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}
