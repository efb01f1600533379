package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
)

type CreateMembershipInput struct {
	UserID    uuid.UUID
	ClassID   uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

type MembershipRepository struct {
	db DBTX
}

func NewMembershipRepository(db DBTX) *MembershipRepository {
	return &MembershipRepository{db: db}
}

const membershipColumns = `id, user_id, class_id, start_date, end_date, payment_status,
	amount_paid, transaction_id, created_at, updated_at`

func scanMembership(row interface{ Scan(dest ...any) error }) (*models.Membership, error) {
	var membership models.Membership
	err := row.Scan(
		&membership.ID,
		&membership.UserID,
		&membership.ClassID,
		&membership.StartDate,
		&membership.EndDate,
		&membership.PaymentStatus,
		&membership.AmountPaid,
		&membership.TransactionID,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *MembershipRepository) Create(
	ctx context.Context,
	input CreateMembershipInput,
) (*models.Membership, error) {
	query := `
		INSERT INTO memberships (user_id, class_id, start_date, end_date, payment_status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING ` + membershipColumns
	return scanMembership(r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.ClassID,
		input.StartDate,
		input.EndDate,
	))
}

func (r *MembershipRepository) GetByID(
	ctx context.Context,
	membershipID uuid.UUID,
) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`
	return scanMembership(r.db.QueryRow(ctx, query, membershipID))
}

func (r *MembershipRepository) GetByIDForUpdate(
	ctx context.Context,
	membershipID uuid.UUID,
) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1 FOR UPDATE`
	return scanMembership(r.db.QueryRow(ctx, query, membershipID))
}

// HasOverlapping reports whether any membership for (user, class) overlaps
// the [startDate, endDate] window. The stored unique constraint only rejects
// identical windows, so the overlap rule lives here.
func (r *MembershipRepository) HasOverlapping(
	ctx context.Context,
	userID uuid.UUID,
	classID uuid.UUID,
	startDate time.Time,
	endDate time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM memberships
			WHERE user_id = $1
			  AND class_id = $2
			  AND start_date <= $4
			  AND end_date >= $3
		)
	`
	var overlaps bool
	if err := r.db.QueryRow(ctx, query, userID, classID, startDate, endDate).Scan(&overlaps); err != nil {
		return false, err
	}
	return overlaps, nil
}

// ListCovering returns every paid membership for (user, class) whose window
// includes sessionDate, latest end date first. The caller treats the first
// entry as the covering membership.
func (r *MembershipRepository) ListCovering(
	ctx context.Context,
	userID uuid.UUID,
	classID uuid.UUID,
	sessionDate time.Time,
) ([]models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE user_id = $1
		  AND class_id = $2
		  AND payment_status = 'paid'
		  AND start_date <= $3
		  AND end_date >= $3
		ORDER BY end_date DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, classID, sessionDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := make([]models.Membership, 0)
	for rows.Next() {
		membership, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, *membership)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *MembershipRepository) ListByUserID(
	ctx context.Context,
	userID uuid.UUID,
) ([]models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE user_id = $1
		ORDER BY start_date DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := make([]models.Membership, 0)
	for rows.Next() {
		membership, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, *membership)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *MembershipRepository) MarkPaid(
	ctx context.Context,
	membershipID uuid.UUID,
	amountPaid float64,
	transactionID string,
) (*models.Membership, error) {
	query := `
		UPDATE memberships
		SET payment_status = 'paid', amount_paid = $2, transaction_id = $3, updated_at = NOW()
		WHERE id = $1 AND payment_status IN ('pending', 'failed', 'refunded')
		RETURNING ` + membershipColumns
	return scanMembership(r.db.QueryRow(ctx, query, membershipID, amountPaid, transactionID))
}

func (r *MembershipRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	membershipID uuid.UUID,
	currentStatus string,
	nextStatus string,
) (*models.Membership, error) {
	query := `
		UPDATE memberships
		SET payment_status = $3, updated_at = NOW()
		WHERE id = $1 AND payment_status = $2
		RETURNING ` + membershipColumns
	return scanMembership(r.db.QueryRow(ctx, query, membershipID, currentStatus, nextStatus))
}
