package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farhoud/yoga-guru/internal/models"
	"github.com/farhoud/yoga-guru/internal/repository"
)

var (
	ErrInvalidRange          = errors.New("invalid date range")
	ErrClassNotFound         = errors.New("class not found")
	ErrMembershipNotFound    = errors.New("membership not found")
	ErrOverlappingMembership = errors.New("membership overlaps an existing one for this class")
)

type MembershipService struct {
	db             *pgxpool.Pool
	membershipRepo *repository.MembershipRepository
	classRepo      *repository.ClassRepository
}

func NewMembershipService(
	db *pgxpool.Pool,
	membershipRepo *repository.MembershipRepository,
	classRepo *repository.ClassRepository,
) *MembershipService {
	return &MembershipService{
		db:             db,
		membershipRepo: membershipRepo,
		classRepo:      classRepo,
	}
}

type CreateMembershipInput struct {
	ClassID   uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// CreateMembership opens a pending access window. The unique constraint only
// rejects identical windows, so the overlap rule is enforced here under an
// advisory lock on the (user, class) pair.
func (s *MembershipService) CreateMembership(
	ctx context.Context,
	userID uuid.UUID,
	input CreateMembershipInput,
) (*models.Membership, error) {
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidRange
	}

	if _, err := s.classRepo.GetByID(ctx, input.ClassID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMembershipRepo := repository.NewMembershipRepository(tx)

	if _, err := tx.Exec(
		ctx,
		"SELECT pg_advisory_xact_lock(hashtext($1::text), hashtext($2::text))",
		userID,
		input.ClassID,
	); err != nil {
		return nil, err
	}

	overlaps, err := txMembershipRepo.HasOverlapping(ctx, userID, input.ClassID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, ErrOverlappingMembership
	}

	membership, err := txMembershipRepo.Create(ctx, repository.CreateMembershipInput{
		UserID:    userID,
		ClassID:   input.ClassID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return membership, nil
}

// MarkPaid records payment for a membership. Re-payment after a failed or
// refunded state is allowed; paying an already paid membership is a no-op.
func (s *MembershipService) MarkPaid(
	ctx context.Context,
	userID uuid.UUID,
	membershipID uuid.UUID,
	amountPaid float64,
	transactionID string,
) (*models.Membership, error) {
	if amountPaid < 0 || transactionID == "" {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMembershipRepo := repository.NewMembershipRepository(tx)

	membership, err := txMembershipRepo.GetByIDForUpdate(ctx, membershipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	if membership.UserID != userID {
		return nil, ErrForbidden
	}
	if membership.PaymentStatus == "paid" {
		return membership, nil
	}

	paid, err := txMembershipRepo.MarkPaid(ctx, membershipID, amountPaid, transactionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return paid, nil
}

// Refund moves a paid membership to refunded. Enrollments backed by the
// membership are left untouched; cancelling them is a separate action.
func (s *MembershipService) Refund(
	ctx context.Context,
	userID uuid.UUID,
	membershipID uuid.UUID,
) (*models.Membership, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMembershipRepo := repository.NewMembershipRepository(tx)

	membership, err := txMembershipRepo.GetByIDForUpdate(ctx, membershipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	if membership.UserID != userID {
		return nil, ErrForbidden
	}

	refunded, err := txMembershipRepo.UpdateStatusIfCurrent(ctx, membershipID, "paid", "refunded")
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return refunded, nil
}

func (s *MembershipService) ListMine(
	ctx context.Context,
	userID uuid.UUID,
) ([]models.Membership, error) {
	return s.membershipRepo.ListByUserID(ctx, userID)
}
