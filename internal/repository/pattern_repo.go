package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
)

type CreatePatternInput struct {
	ClassID           uuid.UUID
	DayOfWeek         string
	StartTime         string
	DurationMinutes   int
	EffectiveFromDate time.Time
	EffectiveToDate   *time.Time
}

type PatternRepository struct {
	db DBTX
}

func NewPatternRepository(db DBTX) *PatternRepository {
	return &PatternRepository{db: db}
}

const patternColumns = `id, class_id, day_of_week, start_time::text, duration_minutes,
	effective_from_date, effective_to_date, created_at, updated_at`

func scanPattern(row interface{ Scan(dest ...any) error }) (*models.RecurringPattern, error) {
	var pattern models.RecurringPattern
	err := row.Scan(
		&pattern.ID,
		&pattern.ClassID,
		&pattern.DayOfWeek,
		&pattern.StartTime,
		&pattern.DurationMinutes,
		&pattern.EffectiveFromDate,
		&pattern.EffectiveToDate,
		&pattern.CreatedAt,
		&pattern.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

func (r *PatternRepository) Create(
	ctx context.Context,
	input CreatePatternInput,
) (*models.RecurringPattern, error) {
	query := `
		INSERT INTO recurring_patterns
			(class_id, day_of_week, start_time, duration_minutes, effective_from_date, effective_to_date)
		VALUES ($1, $2, $3::time, $4, $5, $6)
		RETURNING ` + patternColumns
	return scanPattern(r.db.QueryRow(
		ctx,
		query,
		input.ClassID,
		input.DayOfWeek,
		input.StartTime,
		input.DurationMinutes,
		input.EffectiveFromDate,
		input.EffectiveToDate,
	))
}

func (r *PatternRepository) GetByID(
	ctx context.Context,
	patternID uuid.UUID,
) (*models.RecurringPattern, error) {
	query := `SELECT ` + patternColumns + ` FROM recurring_patterns WHERE id = $1`
	return scanPattern(r.db.QueryRow(ctx, query, patternID))
}

func (r *PatternRepository) ListByClassID(
	ctx context.Context,
	classID uuid.UUID,
) ([]models.RecurringPattern, error) {
	query := `
		SELECT ` + patternColumns + `
		FROM recurring_patterns
		WHERE class_id = $1
		ORDER BY effective_from_date ASC, start_time ASC
	`
	rows, err := r.db.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patterns := make([]models.RecurringPattern, 0)
	for rows.Next() {
		pattern, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, *pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

func (r *PatternRepository) Delete(ctx context.Context, patternID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM recurring_patterns WHERE id = $1`, patternID)
	return err
}
