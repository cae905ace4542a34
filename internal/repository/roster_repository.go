package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

// RosterRepository reads class enrollments.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs the repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// ListPaidMembers returns members enrolled in the class whose payment is settled.
func (r *RosterRepository) ListPaidMembers(ctx context.Context, classID string) ([]models.RosterMember, error) {
	const query = `SELECT m.id AS student_id, m.full_name, ce.payment_status
FROM class_enrollments ce
JOIN members m ON m.id = ce.member_id
WHERE ce.class_id = $1 AND ce.payment_status = $2
ORDER BY m.full_name ASC`
	var members []models.RosterMember
	if err := r.db.SelectContext(ctx, &members, query, classID, models.PaymentStatusPaid); err != nil {
		return nil, fmt.Errorf("list paid members: %w", err)
	}
	return members, nil
}

// CountPaidMembers returns the size of the paid roster.
func (r *RosterRepository) CountPaidMembers(ctx context.Context, classID string) (int, error) {
	const query = `SELECT COUNT(*) FROM class_enrollments WHERE class_id = $1 AND payment_status = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, classID, models.PaymentStatusPaid); err != nil {
		return 0, fmt.Errorf("count paid members: %w", err)
	}
	return total, nil
}
