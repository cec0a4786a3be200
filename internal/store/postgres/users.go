package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"persona/internal/domain"
	"persona/internal/store"
)

// EnsureUser creates the account row on first authenticated touch. The
// identity provider owns credentials; this table only mirrors what the token
// carries plus the editable profile fields.
func (s *Store) EnsureUser(ctx context.Context, owner, email string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	now := s.clock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO NOTHING
	`, owner, email, now)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, owner string) (*domain.UserProfile, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	profile := &domain.UserProfile{ID: owner}
	err := s.db.QueryRowContext(ctx, `
		SELECT email, first_name, last_name, created_at, updated_at
		FROM users WHERE id = $1
	`, owner).Scan(&profile.Email, &profile.FirstName, &profile.LastName, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return profile, nil
}

func (s *Store) UpdateProfile(ctx context.Context, owner string, patch store.UserProfilePatch) (*domain.UserProfile, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	profile := &domain.UserProfile{ID: owner}
	err := s.db.QueryRowContext(ctx, `
		UPDATE users SET
			first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			email = COALESCE($3, email),
			updated_at = $4
		WHERE id = $5
		RETURNING email, first_name, last_name, created_at, updated_at
	`, nullString(patch.FirstName), nullString(patch.LastName), nullString(patch.Email), s.clock(), owner).
		Scan(&profile.Email, &profile.FirstName, &profile.LastName, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return profile, nil
}

// DeleteAccount removes everything the owner holds in one transaction.
// Query deletion cascades to results, history, and favorites; the explicit
// history and favorites deletes catch rows whose query another path removed.
func (s *Store) DeleteAccount(ctx context.Context, owner string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete account: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM search_queries WHERE owner_id = $1`,
		`DELETE FROM search_history WHERE owner_id = $1`,
		`DELETE FROM favorites WHERE owner_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, owner); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete account: %w", err)
	}
	return nil
}
