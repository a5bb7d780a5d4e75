package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hairult/hairstyle-service/internal/domain"
)

// SuggestionRepository persists suggestion rows and their lifecycle status.
// Every status change is a conditional update on the current status, so a row
// claimed or finished by one sweep cannot be touched by another.
type SuggestionRepository interface {
	CreateSubmission(ctx context.Context, guest *domain.Guest, hairstyleIDs []string) ([]domain.HairstyleSuggestion, error)
	ListPending(ctx context.Context, limit int) ([]domain.PendingSuggestion, error)
	Claim(ctx context.Context, id string) (bool, error)
	Complete(ctx context.Context, id, imagePath string) (bool, error)
	Fail(ctx context.Context, id, reason string) (bool, error)
	FailStale(ctx context.Context, olderThan time.Time, reason string) (int64, error)
	ListByGuest(ctx context.Context, guestID string) ([]domain.SuggestionView, error)
	ListByStatus(ctx context.Context, status domain.SuggestionStatus, limit int) ([]domain.HairstyleSuggestion, error)
}

type suggestionRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepository instantiates repository.
func NewSuggestionRepository(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepository{pool: pool}
}

// CreateSubmission inserts the guest and one PENDING suggestion per hairstyle in
// a single transaction. A unique violation on the email maps to ErrDuplicateEmail.
func (r *suggestionRepository) CreateSubmission(ctx context.Context, guest *domain.Guest, hairstyleIDs []string) ([]domain.HairstyleSuggestion, error) {
	const insertGuest = `
        INSERT INTO guests (id, email, portrait_image_path)
        VALUES ($1, $2, $3)
        RETURNING created_at, updated_at`
	const insertSuggestion = `
        INSERT INTO hairstyle_suggestions (guest_id, hairstyle_id, status)
        VALUES ($1, $2, 'PENDING')
        RETURNING id, status, created_at, updated_at`

	suggestions := make([]domain.HairstyleSuggestion, 0, len(hairstyleIDs))
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertGuest, guest.ID, guest.Email, guest.PortraitImagePath).
			Scan(&guest.CreatedAt, &guest.UpdatedAt); err != nil {
			return err
		}
		for _, hairstyleID := range hairstyleIDs {
			s := domain.HairstyleSuggestion{GuestID: guest.ID, HairstyleID: hairstyleID}
			if err := tx.QueryRow(ctx, insertSuggestion, guest.ID, hairstyleID).
				Scan(&s.ID, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
				return err
			}
			suggestions = append(suggestions, s)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err, "guests_email_key") {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return suggestions, nil
}

func (r *suggestionRepository) ListPending(ctx context.Context, limit int) ([]domain.PendingSuggestion, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	const query = `
        SELECT s.id, s.guest_id, s.hairstyle_id, s.image_path, s.status, s.error_message, s.created_at, s.updated_at,
               g.id, g.email, g.portrait_image_path, g.created_at, g.updated_at,
               h.id, h.name, h.description, h.hair_length, h.cut_type, h.perm_type, h.straight_type, h.updo_type,
               h.curl_pattern, h.bangs_type, h.volume_type, h.layering_type, h.finish_texture, h.created_at, h.updated_at
        FROM hairstyle_suggestions s
        JOIN guests g ON g.id = s.guest_id
        JOIN hairstyles h ON h.id = s.hairstyle_id
        WHERE s.status = 'PENDING'
        ORDER BY s.created_at ASC, s.id ASC
        LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PendingSuggestion
	for rows.Next() {
		var p domain.PendingSuggestion
		dest := append(suggestionDest(&p.Suggestion),
			&p.Guest.ID, &p.Guest.Email, &p.Guest.PortraitImagePath, &p.Guest.CreatedAt, &p.Guest.UpdatedAt)
		dest = append(dest, hairstyleDest(&p.Hairstyle)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *suggestionRepository) Claim(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE hairstyle_suggestions SET status='GENERATING', updated_at=NOW()
        WHERE id=$1 AND status='PENDING'`
	return r.execOne(ctx, query, id)
}

func (r *suggestionRepository) Complete(ctx context.Context, id, imagePath string) (bool, error) {
	const query = `
        UPDATE hairstyle_suggestions SET status='COMPLETED', image_path=$2, error_message=NULL, updated_at=NOW()
        WHERE id=$1 AND status='GENERATING'`
	return r.execOne(ctx, query, id, imagePath)
}

func (r *suggestionRepository) Fail(ctx context.Context, id, reason string) (bool, error) {
	const query = `
        UPDATE hairstyle_suggestions SET status='FAILED', error_message=$2, updated_at=NOW()
        WHERE id=$1 AND status='GENERATING'`
	return r.execOne(ctx, query, id, reason)
}

func (r *suggestionRepository) FailStale(ctx context.Context, olderThan time.Time, reason string) (int64, error) {
	const query = `
        UPDATE hairstyle_suggestions SET status='FAILED', error_message=$2, updated_at=NOW()
        WHERE status='GENERATING' AND updated_at < $1`
	cmd, err := r.pool.Exec(ctx, query, olderThan, reason)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *suggestionRepository) ListByGuest(ctx context.Context, guestID string) ([]domain.SuggestionView, error) {
	const query = `
        SELECT s.id, s.guest_id, s.hairstyle_id, s.image_path, s.status, s.error_message, s.created_at, s.updated_at, h.name
        FROM hairstyle_suggestions s
        JOIN hairstyles h ON h.id = s.hairstyle_id
        WHERE s.guest_id=$1
        ORDER BY s.created_at ASC, s.id ASC`
	rows, err := r.pool.Query(ctx, query, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SuggestionView
	for rows.Next() {
		var v domain.SuggestionView
		if err := rows.Scan(append(suggestionDest(&v.HairstyleSuggestion), &v.HairstyleName)...); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *suggestionRepository) ListByStatus(ctx context.Context, status domain.SuggestionStatus, limit int) ([]domain.HairstyleSuggestion, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, guest_id, hairstyle_id, image_path, status, error_message, created_at, updated_at
        FROM hairstyle_suggestions
        WHERE status::text=$1
        ORDER BY created_at ASC, id ASC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HairstyleSuggestion
	for rows.Next() {
		var s domain.HairstyleSuggestion
		if err := rows.Scan(suggestionDest(&s)...); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *suggestionRepository) execOne(ctx context.Context, query string, args ...any) (bool, error) {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func suggestionDest(s *domain.HairstyleSuggestion) []any {
	return []any{
		&s.ID,
		&s.GuestID,
		&s.HairstyleID,
		&s.ImagePath,
		&s.Status,
		&s.ErrorMessage,
		&s.CreatedAt,
		&s.UpdatedAt,
	}
}
