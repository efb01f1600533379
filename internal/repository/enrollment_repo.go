package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
)

type CreateEnrollmentInput struct {
	UserID       uuid.UUID
	SessionID    uuid.UUID
	MembershipID uuid.UUID
	Status       string
}

type EnrollmentRepository struct {
	db DBTX
}

func NewEnrollmentRepository(db DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, user_id, session_id, membership_id, enrollment_date,
	status, created_at, updated_at`

func scanEnrollment(row interface{ Scan(dest ...any) error }) (*models.SessionEnrollment, error) {
	var enrollment models.SessionEnrollment
	err := row.Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.SessionID,
		&enrollment.MembershipID,
		&enrollment.EnrollmentDate,
		&enrollment.Status,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) Create(
	ctx context.Context,
	input CreateEnrollmentInput,
) (*models.SessionEnrollment, error) {
	query := `
		INSERT INTO session_enrollments (user_id, session_id, membership_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + enrollmentColumns
	return scanEnrollment(r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.SessionID,
		input.MembershipID,
		input.Status,
	))
}

func (r *EnrollmentRepository) GetByID(
	ctx context.Context,
	enrollmentID uuid.UUID,
) (*models.SessionEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM session_enrollments WHERE id = $1`
	return scanEnrollment(r.db.QueryRow(ctx, query, enrollmentID))
}

func (r *EnrollmentRepository) GetByIDForUpdate(
	ctx context.Context,
	enrollmentID uuid.UUID,
) (*models.SessionEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM session_enrollments WHERE id = $1 FOR UPDATE`
	return scanEnrollment(r.db.QueryRow(ctx, query, enrollmentID))
}

func (r *EnrollmentRepository) GetByUserAndSession(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
) (*models.SessionEnrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM session_enrollments
		WHERE user_id = $1 AND session_id = $2
	`
	return scanEnrollment(r.db.QueryRow(ctx, query, userID, sessionID))
}

func (r *EnrollmentRepository) CountEnrolled(
	ctx context.Context,
	sessionID uuid.UUID,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM session_enrollments
		WHERE session_id = $1 AND status = 'enrolled'
	`
	var count int
	if err := r.db.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// OldestWaitlistedForUpdate locks and returns the next waitlisted enrollment
// in FIFO order, or pgx.ErrNoRows when the waitlist is empty.
func (r *EnrollmentRepository) OldestWaitlistedForUpdate(
	ctx context.Context,
	sessionID uuid.UUID,
) (*models.SessionEnrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM session_enrollments
		WHERE session_id = $1 AND status = 'waitlisted'
		ORDER BY enrollment_date ASC, id ASC
		LIMIT 1
		FOR UPDATE
	`
	return scanEnrollment(r.db.QueryRow(ctx, query, sessionID))
}

func (r *EnrollmentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	enrollmentID uuid.UUID,
	currentStatus string,
	nextStatus string,
) (*models.SessionEnrollment, error) {
	query := `
		UPDATE session_enrollments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + enrollmentColumns
	return scanEnrollment(r.db.QueryRow(ctx, query, enrollmentID, currentStatus, nextStatus))
}

func (r *EnrollmentRepository) ListByUserID(
	ctx context.Context,
	userID uuid.UUID,
) ([]models.SessionEnrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM session_enrollments
		WHERE user_id = $1
		ORDER BY enrollment_date DESC, id DESC
	`
	return r.list(ctx, query, userID)
}

func (r *EnrollmentRepository) ListBySessionID(
	ctx context.Context,
	sessionID uuid.UUID,
) ([]models.SessionEnrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM session_enrollments
		WHERE session_id = $1
		ORDER BY enrollment_date ASC, id ASC
	`
	return r.list(ctx, query, sessionID)
}

func (r *EnrollmentRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]models.SessionEnrollment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]models.SessionEnrollment, 0)
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, *enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return enrollments, nil
}
