package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
)

type CreateAttendanceInput struct {
	SessionEnrollmentID uuid.UUID
	Attended            bool
	CheckInTime         *time.Time
	CheckedInBy         uuid.UUID
}

type AttendanceRepository struct {
	db DBTX
}

func NewAttendanceRepository(db DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, session_enrollment_id, attended, check_in_time,
	checked_in_by, created_at, updated_at`

func scanAttendance(row interface{ Scan(dest ...any) error }) (*models.Attendance, error) {
	var attendance models.Attendance
	err := row.Scan(
		&attendance.ID,
		&attendance.SessionEnrollmentID,
		&attendance.Attended,
		&attendance.CheckInTime,
		&attendance.CheckedInBy,
		&attendance.CreatedAt,
		&attendance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *AttendanceRepository) Create(
	ctx context.Context,
	input CreateAttendanceInput,
) (*models.Attendance, error) {
	query := `
		INSERT INTO attendance (session_enrollment_id, attended, check_in_time, checked_in_by)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + attendanceColumns
	return scanAttendance(r.db.QueryRow(
		ctx,
		query,
		input.SessionEnrollmentID,
		input.Attended,
		input.CheckInTime,
		input.CheckedInBy,
	))
}

func (r *AttendanceRepository) GetByEnrollmentID(
	ctx context.Context,
	enrollmentID uuid.UUID,
) (*models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE session_enrollment_id = $1`
	return scanAttendance(r.db.QueryRow(ctx, query, enrollmentID))
}

func (r *AttendanceRepository) SetAttended(
	ctx context.Context,
	attendanceID uuid.UUID,
	attended bool,
	checkInTime *time.Time,
	checkedInBy uuid.UUID,
) (*models.Attendance, error) {
	query := `
		UPDATE attendance
		SET attended = $2, check_in_time = $3, checked_in_by = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + attendanceColumns
	return scanAttendance(r.db.QueryRow(ctx, query, attendanceID, attended, checkInTime, checkedInBy))
}
