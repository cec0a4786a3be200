package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"persona/internal/domain"
)

func (s *Store) AppendHistory(ctx context.Context, owner string, queryID uuid.UUID) (*domain.SearchHistoryEntry, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	entry := &domain.SearchHistoryEntry{
		ID:            uuid.New(),
		OwnerID:       owner,
		SearchQueryID: queryID,
		SearchedAt:    s.clock(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (id, owner_id, search_query_id, searched_at)
		VALUES ($1, $2, $3, $4)
	`, entry.ID, entry.OwnerID, entry.SearchQueryID, entry.SearchedAt)
	if err != nil {
		return nil, fmt.Errorf("append search history: %w", err)
	}
	return entry, nil
}

func (s *Store) GetHistory(ctx context.Context, owner string, limit int) ([]*domain.SearchHistoryEntry, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	query := `
		SELECT h.id, h.owner_id, h.search_query_id, h.searched_at,
		       q.first_name, q.last_name, q.age, q.location, q.created_at
		FROM search_history h
		JOIN search_queries q ON q.id = h.search_query_id
		WHERE h.owner_id = $1
		ORDER BY h.searched_at DESC
	`
	args := []any{owner}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get search history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.SearchHistoryEntry
	for rows.Next() {
		entry := &domain.SearchHistoryEntry{Query: &domain.SearchQuery{}}
		var age sql.NullInt64
		if err := rows.Scan(
			&entry.ID, &entry.OwnerID, &entry.SearchQueryID, &entry.SearchedAt,
			&entry.Query.FirstName, &entry.Query.LastName, &age, &entry.Query.Location, &entry.Query.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan search history entry: %w", err)
		}
		entry.Query.ID = entry.SearchQueryID
		entry.Query.OwnerID = entry.OwnerID
		entry.Query.Age = intPtr(age)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search history: %w", err)
	}
	return entries, nil
}

func (s *Store) DeleteHistoryEntry(ctx context.Context, owner string, historyID uuid.UUID) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM search_history WHERE id = $1 AND owner_id = $2
	`, historyID, owner)
	if err != nil {
		return fmt.Errorf("delete search history entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAllHistory(ctx context.Context, owner string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM search_history WHERE owner_id = $1`, owner)
	if err != nil {
		return fmt.Errorf("delete all search history: %w", err)
	}
	return nil
}
