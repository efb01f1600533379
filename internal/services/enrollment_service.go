package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farhoud/yoga-guru/internal/models"
	"github.com/farhoud/yoga-guru/internal/repository"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrSessionNotFound        = errors.New("session not found")
	ErrSessionCancelled       = errors.New("session is cancelled")
	ErrNotEligible            = errors.New("no paid membership covers this session")
	ErrAlreadyEnrolled        = errors.New("already enrolled in this session")
	ErrEnrollmentNotFound     = errors.New("enrollment not found")
	ErrSessionNotStarted      = errors.New("session has not started yet")
)

// EnrollmentService decides whether a user may claim a seat in a session and
// keeps capacity correct as seats are taken and freed.
type EnrollmentService struct {
	db             *pgxpool.Pool
	sessionRepo    *repository.SessionRepository
	membershipRepo *repository.MembershipRepository
	enrollmentRepo *repository.EnrollmentRepository
}

func NewEnrollmentService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	membershipRepo *repository.MembershipRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *EnrollmentService {
	return &EnrollmentService{
		db:             db,
		sessionRepo:    sessionRepo,
		membershipRepo: membershipRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// Enroll admits userID into the session, or onto its waitlist when the
// session is full. The whole decision runs in one transaction with the
// session row locked, so two concurrent enrollments cannot both pass the
// capacity count.
func (s *EnrollmentService) Enroll(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
) (*models.SessionEnrollment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txMembershipRepo := repository.NewMembershipRepository(tx)
	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)

	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.IsCancelled {
		return nil, ErrSessionCancelled
	}

	covering, err := txMembershipRepo.ListCovering(ctx, userID, session.ClassID, session.SessionDate)
	if err != nil {
		return nil, err
	}
	membership := chooseCoveringMembership(covering, session.SessionDate)
	if membership == nil {
		return nil, ErrNotEligible
	}

	if _, err := txEnrollmentRepo.GetByUserAndSession(ctx, userID, sessionID); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	enrolledCount, err := txEnrollmentRepo.CountEnrolled(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	enrollment, err := txEnrollmentRepo.Create(ctx, repository.CreateEnrollmentInput{
		UserID:       userID,
		SessionID:    sessionID,
		MembershipID: membership.ID,
		Status:       enrollmentStatusFor(enrolledCount, session.MaxCapacity),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Cancel releases userID's claim. When an enrolled seat frees up, the oldest
// waitlisted enrollment for the session is promoted in the same transaction.
func (s *EnrollmentService) Cancel(
	ctx context.Context,
	userID uuid.UUID,
	enrollmentID uuid.UUID,
) (*models.SessionEnrollment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)

	enrollment, err := txEnrollmentRepo.GetByIDForUpdate(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, ErrForbidden
	}
	if enrollment.Status != "enrolled" && enrollment.Status != "waitlisted" {
		return nil, ErrInvalidStateTransition
	}

	// Lock the session row before touching seat counts so cancellation and
	// enrollment serialize on the same lock.
	if _, err := txSessionRepo.GetByIDForUpdate(ctx, enrollment.SessionID); err != nil {
		return nil, err
	}

	cancelled, err := txEnrollmentRepo.UpdateStatusIfCurrent(ctx, enrollmentID, enrollment.Status, "cancelled")
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if enrollment.Status == "enrolled" {
		next, err := txEnrollmentRepo.OldestWaitlistedForUpdate(ctx, enrollment.SessionID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if next != nil {
			if _, err := txEnrollmentRepo.UpdateStatusIfCurrent(ctx, next.ID, "waitlisted", "enrolled"); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cancelled, nil
}

// MarkNoShow moves an enrolled record to no_show. Only the session's assigned
// instructor may do it, and only once the session has started.
func (s *EnrollmentService) MarkNoShow(
	ctx context.Context,
	actorID uuid.UUID,
	role string,
	enrollmentID uuid.UUID,
) (*models.SessionEnrollment, error) {
	if role != "instructor" {
		return nil, ErrForbidden
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	session, err := s.sessionRepo.GetByID(ctx, enrollment.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.InstructorID == nil || *session.InstructorID != actorID {
		return nil, ErrForbidden
	}

	startAt, err := sessionStartAt(session)
	if err != nil {
		return nil, err
	}
	if time.Now().UTC().Before(startAt) {
		return nil, ErrSessionNotStarted
	}

	updated, err := s.enrollmentRepo.UpdateStatusIfCurrent(ctx, enrollmentID, "enrolled", "no_show")
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return updated, nil
}

func (s *EnrollmentService) ListMine(
	ctx context.Context,
	userID uuid.UUID,
) ([]models.SessionEnrollment, error) {
	return s.enrollmentRepo.ListByUserID(ctx, userID)
}

// ListForSession returns the roster of a session to its assigned instructor.
func (s *EnrollmentService) ListForSession(
	ctx context.Context,
	actorID uuid.UUID,
	role string,
	sessionID uuid.UUID,
) ([]models.SessionEnrollment, error) {
	if role != "instructor" {
		return nil, ErrForbidden
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.InstructorID == nil || *session.InstructorID != actorID {
		return nil, ErrForbidden
	}
	return s.enrollmentRepo.ListBySessionID(ctx, sessionID)
}

// chooseCoveringMembership picks the membership that authorizes an
// enrollment on sessionDate: it must be paid and its window must include the
// date. The schema does not prevent overlapping windows, so when more than
// one qualifies the one with the latest end date wins.
func chooseCoveringMembership(memberships []models.Membership, sessionDate time.Time) *models.Membership {
	var chosen *models.Membership
	for i := range memberships {
		m := &memberships[i]
		if m.PaymentStatus != "paid" || !m.Covers(sessionDate) {
			continue
		}
		if chosen == nil || m.EndDate.After(chosen.EndDate) {
			chosen = m
		}
	}
	return chosen
}

func enrollmentStatusFor(enrolledCount, maxCapacity int) string {
	if enrolledCount < maxCapacity {
		return "enrolled"
	}
	return "waitlisted"
}

func sessionStartAt(session *models.ClassSession) (time.Time, error) {
	clock, err := parseClockTime(session.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	d := session.SessionDate
	return time.Date(
		d.Year(), d.Month(), d.Day(),
		clock.Hour(), clock.Minute(), clock.Second(),
		0, time.UTC,
	), nil
}
