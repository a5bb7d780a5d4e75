package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hairult/hairstyle-service/internal/domain"
)

// HairstyleRepository encapsulates catalog persistence.
type HairstyleRepository interface {
	Create(ctx context.Context, hairstyle *domain.Hairstyle) error
	GetByID(ctx context.Context, id string) (*domain.Hairstyle, error)
	GetByName(ctx context.Context, name string) (*domain.Hairstyle, error)
	List(ctx context.Context) ([]domain.Hairstyle, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Hairstyle, error)
}

type hairstyleRepository struct {
	pool *pgxpool.Pool
}

// NewHairstyleRepository instantiates repository.
func NewHairstyleRepository(pool *pgxpool.Pool) HairstyleRepository {
	return &hairstyleRepository{pool: pool}
}

const hairstyleColumns = `id, name, description, hair_length, cut_type, perm_type, straight_type, updo_type,
               curl_pattern, bangs_type, volume_type, layering_type, finish_texture, created_at, updated_at`

func (r *hairstyleRepository) Create(ctx context.Context, h *domain.Hairstyle) error {
	const query = `
        INSERT INTO hairstyles (name, description, hair_length, cut_type, perm_type, straight_type, updo_type,
                                curl_pattern, bangs_type, volume_type, layering_type, finish_texture)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		h.Name,
		h.Description,
		h.HairLength,
		h.CutType,
		h.PermType,
		h.StraightType,
		h.UpdoType,
		h.CurlPattern,
		h.BangsType,
		h.VolumeType,
		h.LayeringType,
		h.FinishTexture,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if isUniqueViolation(err, "") {
		return ErrDuplicateName
	}
	return err
}

func (r *hairstyleRepository) GetByID(ctx context.Context, id string) (*domain.Hairstyle, error) {
	query := `SELECT ` + hairstyleColumns + ` FROM hairstyles WHERE id=$1`
	return scanHairstyle(r.pool.QueryRow(ctx, query, id))
}

func (r *hairstyleRepository) GetByName(ctx context.Context, name string) (*domain.Hairstyle, error) {
	query := `SELECT ` + hairstyleColumns + ` FROM hairstyles WHERE name=$1`
	return scanHairstyle(r.pool.QueryRow(ctx, query, name))
}

func (r *hairstyleRepository) List(ctx context.Context) ([]domain.Hairstyle, error) {
	query := `SELECT ` + hairstyleColumns + ` FROM hairstyles ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHairstyles(rows)
}

func (r *hairstyleRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Hairstyle, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + hairstyleColumns + ` FROM hairstyles WHERE id::text = ANY($1::text[])`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHairstyles(rows)
}

func scanHairstyle(row pgx.Row) (*domain.Hairstyle, error) {
	var h domain.Hairstyle
	if err := row.Scan(hairstyleDest(&h)...); err != nil {
		return nil, err
	}
	return &h, nil
}

func scanHairstyles(rows pgx.Rows) ([]domain.Hairstyle, error) {
	var result []domain.Hairstyle
	for rows.Next() {
		var h domain.Hairstyle
		if err := rows.Scan(hairstyleDest(&h)...); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

func hairstyleDest(h *domain.Hairstyle) []any {
	return []any{
		&h.ID,
		&h.Name,
		&h.Description,
		&h.HairLength,
		&h.CutType,
		&h.PermType,
		&h.StraightType,
		&h.UpdoType,
		&h.CurlPattern,
		&h.BangsType,
		&h.VolumeType,
		&h.LayeringType,
		&h.FinishTexture,
		&h.CreatedAt,
		&h.UpdatedAt,
	}
}
