package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hairult/hairstyle-service/internal/domain"
)

// GuestRepository defines read access for submission guests. Guests are
// written only together with their suggestions, see SuggestionRepository.
type GuestRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Guest, error)
	GetByEmail(ctx context.Context, email string) (*domain.Guest, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type guestRepository struct {
	pool *pgxpool.Pool
}

// NewGuestRepository returns a Postgres-backed implementation.
func NewGuestRepository(pool *pgxpool.Pool) GuestRepository {
	return &guestRepository{pool: pool}
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	const query = `
        SELECT id, email, portrait_image_path, created_at, updated_at
        FROM guests WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *guestRepository) GetByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	const query = `
        SELECT id, email, portrait_image_path, created_at, updated_at
        FROM guests WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *guestRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM guests WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

func (r *guestRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Guest, error) {
	var guest domain.Guest
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&guest.ID,
		&guest.Email,
		&guest.PortraitImagePath,
		&guest.CreatedAt,
		&guest.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &guest, nil
}
