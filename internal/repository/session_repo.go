package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/farhoud/yoga-guru/internal/models"
)

type CreateSessionInput struct {
	ClassID      uuid.UUID
	SessionDate  time.Time
	StartTime    string
	EndTime      string
	MaxCapacity  int
	InstructorID *uuid.UUID
}

type SessionListFilter struct {
	ClassID   uuid.UUID
	Timeframe string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, class_id, session_date, start_time::text, end_time::text,
	max_capacity, instructor_id, is_cancelled, created_at, updated_at`

func scanSession(row interface{ Scan(dest ...any) error }) (*models.ClassSession, error) {
	var session models.ClassSession
	err := row.Scan(
		&session.ID,
		&session.ClassID,
		&session.SessionDate,
		&session.StartTime,
		&session.EndTime,
		&session.MaxCapacity,
		&session.InstructorID,
		&session.IsCancelled,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateIfAbsent inserts a session unless one already exists for the same
// (class, date, start time). The unique constraint is the serialization
// point, so a re-run is a no-op rather than an error.
func (r *SessionRepository) CreateIfAbsent(
	ctx context.Context,
	input CreateSessionInput,
) (*models.ClassSession, bool, error) {
	query := `
		INSERT INTO class_sessions
			(class_id, session_date, start_time, end_time, max_capacity, instructor_id)
		VALUES ($1, $2, $3::time, $4::time, $5, $6)
		ON CONFLICT ON CONSTRAINT unique_session_constraint DO NOTHING
		RETURNING ` + sessionColumns
	session, err := scanSession(r.db.QueryRow(
		ctx,
		query,
		input.ClassID,
		input.SessionDate,
		input.StartTime,
		input.EndTime,
		input.MaxCapacity,
		input.InstructorID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return session, true, nil
}

func (r *SessionRepository) GetByID(
	ctx context.Context,
	sessionID uuid.UUID,
) (*models.ClassSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions WHERE id = $1`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

// GetByIDForUpdate locks the session row for the rest of the transaction.
// Enrollment capacity counting and waitlist promotion serialize on this lock.
func (r *SessionRepository) GetByIDForUpdate(
	ctx context.Context,
	sessionID uuid.UUID,
) (*models.ClassSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions WHERE id = $1 FOR UPDATE`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) List(
	ctx context.Context,
	filter SessionListFilter,
) ([]models.ClassSession, error) {
	args := []any{filter.ClassID}
	whereParts := []string{"class_id = $1"}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(whereParts, "(session_date + start_time) > NOW()")
	case "past":
		whereParts = append(whereParts, "(session_date + start_time) <= NOW()")
	}

	query := fmt.Sprintf(`
		SELECT `+sessionColumns+`
		FROM class_sessions
		WHERE %s
		ORDER BY session_date ASC, start_time ASC
	`, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.ClassSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepository) Cancel(
	ctx context.Context,
	sessionID uuid.UUID,
) (*models.ClassSession, error) {
	query := `
		UPDATE class_sessions
		SET is_cancelled = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}
