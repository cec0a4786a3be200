// Package store defines the storage backend contract the search pipeline and
// user-facing reads depend on. Two implementations satisfy it identically:
// postgres (durable, multi-user) and local (single-device JSON document).
package store

import (
	"context"

	"github.com/google/uuid"

	"persona/internal/domain"
)

// QueryParams is the validated input persisted as a SearchQuery.
type QueryParams struct {
	FirstName string
	LastName  string
	Age       *int
	Location  string
}

// ProfilePatch carries the fields a search may set on a person profile.
// Metadata replaces the stored mapping wholesale (last write wins).
type ProfilePatch struct {
	Age      *int
	Metadata map[string]any
}

// UserProfilePatch carries account-profile updates; nil fields are untouched.
type UserProfilePatch struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// Store is the backend contract. The owner argument scopes remote-mode rows;
// implementations backed by a single-owner medium ignore it. Remote
// implementations return domain.ErrAuthRequired when owner is empty.
type Store interface {
	// SaveQuery persists an immutable SearchQuery.
	SaveQuery(ctx context.Context, owner string, params QueryParams) (*domain.SearchQuery, error)

	// UpsertProfile matches by exact (firstName, lastName) and updates, else
	// inserts. Two distinct people sharing a name therefore merge into one
	// profile; known ambiguity, preserved deliberately. Single-owner
	// implementations always insert instead.
	UpsertProfile(ctx context.Context, firstName, lastName string, patch ProfilePatch) (*domain.PersonProfile, error)

	// AppendCategoryRecords attaches normalized rows to a profile. Best
	// effort per category: one category's failure must not block the rest.
	// The returned error joins any per-category failures.
	AppendCategoryRecords(ctx context.Context, profileID uuid.UUID, recs domain.CategoryRecords) error

	// SaveResult persists the query's one-to-one result.
	SaveResult(ctx context.Context, queryID, profileID uuid.UUID, confidenceScore int) (*domain.SearchResult, error)

	// AppendHistory appends one log row for this execution.
	AppendHistory(ctx context.Context, owner string, queryID uuid.UUID) (*domain.SearchHistoryEntry, error)

	GetHistory(ctx context.Context, owner string, limit int) ([]*domain.SearchHistoryEntry, error)
	DeleteHistoryEntry(ctx context.Context, owner string, historyID uuid.UUID) error
	DeleteAllHistory(ctx context.Context, owner string) error

	GetFavorites(ctx context.Context, owner string) ([]*domain.FavoriteEntry, error)

	// AddFavorite is idempotent per (owner, query): re-favoriting returns the
	// existing entry unchanged.
	AddFavorite(ctx context.Context, owner string, queryID uuid.UUID, label *string) (*domain.FavoriteEntry, error)
	RemoveFavorite(ctx context.Context, owner string, favoriteID uuid.UUID) error
	UpdateFavoriteLabel(ctx context.Context, owner string, favoriteID uuid.UUID, label string) (*domain.FavoriteEntry, error)
	IsFavorited(ctx context.Context, owner string, queryID uuid.UUID) (bool, error)

	// DeleteQuery removes the query and cascades to its result, history
	// entries, and favorites. Profiles and their category records survive;
	// profiles are shared across queries.
	DeleteQuery(ctx context.Context, owner string, queryID uuid.UUID) error

	// GetResultByQueryID assembles the unified outcome for a past search.
	GetResultByQueryID(ctx context.Context, owner string, queryID uuid.UUID) (*domain.SearchOutcome, error)

	GetProfile(ctx context.Context, owner string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, owner string, patch UserProfilePatch) (*domain.UserProfile, error)

	// DeleteAccount removes the owner's profile and everything owned by it.
	DeleteAccount(ctx context.Context, owner string) error
}

// Selector resolves the backend for a given mode. Resolution happens on every
// call site invocation, never cached, so a mode switch is observed by the
// next operation.
type Selector struct {
	remote Store
	local  Store
}

// NewSelector wires the two backends.
func NewSelector(remote, local Store) *Selector {
	return &Selector{remote: remote, local: local}
}

// Select returns the backend for mode.
func (s *Selector) Select(mode domain.Mode) Store {
	if mode.IsGuest() {
		return s.local
	}
	return s.remote
}
