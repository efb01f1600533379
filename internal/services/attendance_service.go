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
	ErrDuplicateAttendance = errors.New("attendance already recorded for this enrollment")
	ErrAttendanceNotFound  = errors.New("attendance not found")
)

// AttendanceService records whether enrolled users actually showed up.
// Marking is restricted to the session's assigned instructor, mirroring the
// storage-level policy the mobile app relied on.
type AttendanceService struct {
	db             *pgxpool.Pool
	enrollmentRepo *repository.EnrollmentRepository
	sessionRepo    *repository.SessionRepository
	attendanceRepo *repository.AttendanceRepository
}

func NewAttendanceService(
	db *pgxpool.Pool,
	enrollmentRepo *repository.EnrollmentRepository,
	sessionRepo *repository.SessionRepository,
	attendanceRepo *repository.AttendanceRepository,
) *AttendanceService {
	return &AttendanceService{
		db:             db,
		enrollmentRepo: enrollmentRepo,
		sessionRepo:    sessionRepo,
		attendanceRepo: attendanceRepo,
	}
}

// CheckIn creates the single attendance record for an enrollment with
// attended=true. A second check-in fails with ErrDuplicateAttendance.
func (s *AttendanceService) CheckIn(
	ctx context.Context,
	actorID uuid.UUID,
	role string,
	enrollmentID uuid.UUID,
) (*models.Attendance, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)
	txSessionRepo := repository.NewSessionRepository(tx)
	txAttendanceRepo := repository.NewAttendanceRepository(tx)

	enrollment, err := txEnrollmentRepo.GetByIDForUpdate(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	if err := authorizeSessionInstructor(ctx, txSessionRepo, actorID, role, enrollment.SessionID); err != nil {
		return nil, err
	}
	if enrollment.Status != "enrolled" {
		return nil, ErrInvalidStateTransition
	}

	if _, err := txAttendanceRepo.GetByEnrollmentID(ctx, enrollmentID); err == nil {
		return nil, ErrDuplicateAttendance
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	now := time.Now().UTC()
	attendance, err := txAttendanceRepo.Create(ctx, repository.CreateAttendanceInput{
		SessionEnrollmentID: enrollmentID,
		Attended:            true,
		CheckInTime:         &now,
		CheckedInBy:         actorID,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateAttendance
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return attendance, nil
}

// UpdateAttendance toggles the attended flag on an existing record. Setting
// the same value again is harmless.
func (s *AttendanceService) UpdateAttendance(
	ctx context.Context,
	actorID uuid.UUID,
	role string,
	enrollmentID uuid.UUID,
	attended bool,
) (*models.Attendance, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	if err := authorizeSessionInstructor(ctx, s.sessionRepo, actorID, role, enrollment.SessionID); err != nil {
		return nil, err
	}

	attendance, err := s.attendanceRepo.GetByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}

	var checkInTime *time.Time
	if attended {
		if attendance.CheckInTime != nil {
			checkInTime = attendance.CheckInTime
		} else {
			now := time.Now().UTC()
			checkInTime = &now
		}
	}
	return s.attendanceRepo.SetAttended(ctx, attendance.ID, attended, checkInTime, actorID)
}

// GetForEnrollment lets the enrollment's owner or the session's instructor
// read the attendance record.
func (s *AttendanceService) GetForEnrollment(
	ctx context.Context,
	actorID uuid.UUID,
	role string,
	enrollmentID uuid.UUID,
) (*models.Attendance, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	if enrollment.UserID != actorID {
		if err := authorizeSessionInstructor(ctx, s.sessionRepo, actorID, role, enrollment.SessionID); err != nil {
			return nil, err
		}
	}

	attendance, err := s.attendanceRepo.GetByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return attendance, nil
}

func authorizeSessionInstructor(
	ctx context.Context,
	sessionRepo *repository.SessionRepository,
	actorID uuid.UUID,
	role string,
	sessionID uuid.UUID,
) error {
	if role != "instructor" {
		return ErrForbidden
	}
	session, err := sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.InstructorID == nil || *session.InstructorID != actorID {
		return ErrForbidden
	}
	return nil
}
