package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"quantumshop/internal/db"
	"quantumshop/internal/domain"
)

// ProfileRepository lee el perfil de analisis de un usuario existente.
// El alta y edicion de usuarios vive fuera de este servicio.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (domain.UserProfile, error)
}

type PgProfileRepository struct {
	pool db.Pool
}

func NewPgProfileRepository(pool db.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.UserProfile, error) {
	const query = `
		SELECT COALESCE(profile_data, '{}'::jsonb)
		FROM users
		WHERE id = $1
	`
	var raw []byte
	err := r.pool.QueryRow(ctx, query, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return domain.UserProfile{}, eris.Wrapf(err, "profiles: get %s", userID)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return domain.UserProfile{}, eris.Wrapf(err, "profiles: decode %s", userID)
	}
	return profile, nil
}

// StaticProfileRepository devuelve siempre el mismo perfil; sirve para la CLI y tests.
type StaticProfileRepository struct {
	Profile domain.UserProfile
	Err     error
}

func (r StaticProfileRepository) GetByUserID(_ context.Context, _ string) (domain.UserProfile, error) {
	return r.Profile, r.Err
}
