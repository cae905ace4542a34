package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

func TestRosterRepositoryListPaidMembers(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "full_name", "payment_status"}).
		AddRow("member-1", "Ada", "PAID").
		AddRow("member-2", "Ben", "PAID")
	mock.ExpectQuery("FROM class_enrollments ce\\s+JOIN members m").
		WithArgs("class-1", models.PaymentStatusPaid).
		WillReturnRows(rows)

	members, err := repo.ListPaidMembers(context.Background(), "class-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, models.PaymentStatusPaid, members[0].PaymentStatus)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM class_enrollments WHERE class_id = $1 AND payment_status = $2`)).
		WithArgs("class-1", models.PaymentStatusPaid).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	total, err := repo.CountPaidMembers(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, created_at FROM classes WHERE id = $1`)).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow("class-1", "Spin", time.Now()))
	mock.ExpectQuery("FROM classes").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	class, err := repo.FindByID(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Equal(t, "Spin", class.Name)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
