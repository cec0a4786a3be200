package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"persona/internal/domain"
)

// AddFavorite is idempotent per (owner, query): the unique constraint turns a
// duplicate insert into a no-op and the existing entry is returned unchanged.
func (s *Store) AddFavorite(ctx context.Context, owner string, queryID uuid.UUID, label *string) (*domain.FavoriteEntry, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	entry := &domain.FavoriteEntry{
		ID:            uuid.New(),
		OwnerID:       owner,
		SearchQueryID: queryID,
		Label:         label,
		FavoritedAt:   s.clock(),
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (id, owner_id, search_query_id, label, favorited_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, search_query_id) DO NOTHING
	`, entry.ID, entry.OwnerID, entry.SearchQueryID, nullString(label), entry.FavoritedAt)
	if err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return entry, nil
	}
	return s.getFavoriteByQuery(ctx, owner, queryID)
}

func (s *Store) getFavoriteByQuery(ctx context.Context, owner string, queryID uuid.UUID) (*domain.FavoriteEntry, error) {
	entry := &domain.FavoriteEntry{OwnerID: owner, SearchQueryID: queryID}
	var label sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, favorited_at FROM favorites
		WHERE owner_id = $1 AND search_query_id = $2
	`, owner, queryID).Scan(&entry.ID, &label, &entry.FavoritedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	entry.Label = strPtr(label)
	return entry, nil
}

func (s *Store) GetFavorites(ctx context.Context, owner string) ([]*domain.FavoriteEntry, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.owner_id, f.search_query_id, f.label, f.favorited_at,
		       q.first_name, q.last_name, q.age, q.location, q.created_at
		FROM favorites f
		JOIN search_queries q ON q.id = f.search_query_id
		WHERE f.owner_id = $1
		ORDER BY f.favorited_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("get favorites: %w", err)
	}
	defer rows.Close()

	var entries []*domain.FavoriteEntry
	for rows.Next() {
		entry := &domain.FavoriteEntry{Query: &domain.SearchQuery{}}
		var (
			label sql.NullString
			age   sql.NullInt64
		)
		if err := rows.Scan(
			&entry.ID, &entry.OwnerID, &entry.SearchQueryID, &label, &entry.FavoritedAt,
			&entry.Query.FirstName, &entry.Query.LastName, &age, &entry.Query.Location, &entry.Query.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		entry.Label = strPtr(label)
		entry.Query.ID = entry.SearchQueryID
		entry.Query.OwnerID = entry.OwnerID
		entry.Query.Age = intPtr(age)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return entries, nil
}

func (s *Store) RemoveFavorite(ctx context.Context, owner string, favoriteID uuid.UUID) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE id = $1 AND owner_id = $2
	`, favoriteID, owner)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (s *Store) UpdateFavoriteLabel(ctx context.Context, owner string, favoriteID uuid.UUID, label string) (*domain.FavoriteEntry, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	entry := &domain.FavoriteEntry{ID: favoriteID, OwnerID: owner, Label: &label}
	err := s.db.QueryRowContext(ctx, `
		UPDATE favorites SET label = $1
		WHERE id = $2 AND owner_id = $3
		RETURNING search_query_id, favorited_at
	`, label, favoriteID, owner).Scan(&entry.SearchQueryID, &entry.FavoritedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update favorite label: %w", err)
	}
	return entry, nil
}

func (s *Store) IsFavorited(ctx context.Context, owner string, queryID uuid.UUID) (bool, error) {
	if err := requireOwner(owner); err != nil {
		return false, err
	}
	var favorited bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM favorites WHERE owner_id = $1 AND search_query_id = $2)
	`, owner, queryID).Scan(&favorited)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return favorited, nil
}
