package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hairult/hairstyle-service/internal/domain"
)

// SuggestionHistoryRepository stores audit entries.
type SuggestionHistoryRepository interface {
	Create(ctx context.Context, entry *domain.SuggestionHistory) error
	ListBySuggestion(ctx context.Context, suggestionID string) ([]domain.SuggestionHistory, error)
}

type suggestionHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionHistoryRepository builds repository.
func NewSuggestionHistoryRepository(pool *pgxpool.Pool) SuggestionHistoryRepository {
	return &suggestionHistoryRepository{pool: pool}
}

func (r *suggestionHistoryRepository) Create(ctx context.Context, entry *domain.SuggestionHistory) error {
	const query = `
        INSERT INTO suggestion_history (suggestion_id, guest_id, event_type, status, detail)
        VALUES ($1,$2,$3,$4::text::hairstyle_suggestion_status,$5)
        RETURNING id, created_at`
	detail := entry.Detail
	if detail == nil {
		detail = map[string]any{}
	}
	return r.pool.QueryRow(ctx, query,
		entry.SuggestionID,
		entry.GuestID,
		entry.EventType,
		string(entry.Status),
		detail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *suggestionHistoryRepository) ListBySuggestion(ctx context.Context, suggestionID string) ([]domain.SuggestionHistory, error) {
	const query = `
        SELECT id, suggestion_id, guest_id, event_type, status::text, detail, created_at
        FROM suggestion_history WHERE suggestion_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, suggestionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SuggestionHistory
	for rows.Next() {
		var entry domain.SuggestionHistory
		var status string
		if err := rows.Scan(
			&entry.ID,
			&entry.SuggestionID,
			&entry.GuestID,
			&entry.EventType,
			&status,
			&entry.Detail,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Status = domain.SuggestionStatus(status)
		result = append(result, entry)
	}
	return result, rows.Err()
}
