package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, avatar_url, is_instructor)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, profile.ID, profile.FullName, profile.AvatarURL, profile.IsInstructor).
		Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, full_name, avatar_url, is_instructor, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.IsInstructor,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type UpdateProfileInput struct {
	FullName  *string
	AvatarURL *string
}

func (r *ProfileRepository) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateProfileInput,
) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET full_name = COALESCE($2, full_name),
		    avatar_url = COALESCE($3, avatar_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, full_name, avatar_url, is_instructor, created_at, updated_at
	`
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, id, input.FullName, input.AvatarURL).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.IsInstructor,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
