package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
)

type CreateClassInput struct {
	Name            string
	Description     *string
	PricePerSession float64
	InstructorID    uuid.UUID
}

type UpdateClassInput struct {
	Name            *string
	Description     *string
	PricePerSession *float64
}

type ClassRepository struct {
	db DBTX
}

func NewClassRepository(db DBTX) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `id, name, description, price_per_session, instructor_id, created_at, updated_at`

func scanClass(row interface{ Scan(dest ...any) error }) (*models.Class, error) {
	var class models.Class
	err := row.Scan(
		&class.ID,
		&class.Name,
		&class.Description,
		&class.PricePerSession,
		&class.InstructorID,
		&class.CreatedAt,
		&class.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *ClassRepository) Create(ctx context.Context, input CreateClassInput) (*models.Class, error) {
	query := `
		INSERT INTO classes (name, description, price_per_session, instructor_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + classColumns
	return scanClass(r.db.QueryRow(
		ctx,
		query,
		input.Name,
		input.Description,
		input.PricePerSession,
		input.InstructorID,
	))
}

func (r *ClassRepository) GetByID(ctx context.Context, classID uuid.UUID) (*models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`
	return scanClass(r.db.QueryRow(ctx, query, classID))
}

func (r *ClassRepository) List(ctx context.Context, limit, offset int) ([]models.Class, error) {
	query := `
		SELECT ` + classColumns + `
		FROM classes
		ORDER BY name ASC, id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := make([]models.Class, 0)
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *class)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *ClassRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM classes`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ClassRepository) Update(
	ctx context.Context,
	classID uuid.UUID,
	input UpdateClassInput,
) (*models.Class, error) {
	query := `
		UPDATE classes
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price_per_session = COALESCE($4, price_per_session),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + classColumns
	return scanClass(r.db.QueryRow(
		ctx,
		query,
		classID,
		input.Name,
		input.Description,
		input.PricePerSession,
	))
}

func (r *ClassRepository) Delete(ctx context.Context, classID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM classes WHERE id = $1`, classID)
	return err
}
