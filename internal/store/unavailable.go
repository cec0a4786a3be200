package store

import (
	"context"

	"github.com/google/uuid"

	"persona/internal/domain"
)

// Unavailable is the remote slot when no database is configured. Every
// operation fails with domain.ErrAuthRequired so authenticated requests get
// the same 401 an unauthenticated one would, instead of reaching a backend
// that does not exist. Guest traffic never touches it.
type Unavailable struct{}

var _ Store = Unavailable{}

// NewUnavailable returns the no-database remote store.
func NewUnavailable() Unavailable {
	return Unavailable{}
}

func (Unavailable) err() error {
	return domain.ErrAuthRequired
}

func (u Unavailable) SaveQuery(context.Context, string, QueryParams) (*domain.SearchQuery, error) {
	return nil, u.err()
}

func (u Unavailable) UpsertProfile(context.Context, string, string, ProfilePatch) (*domain.PersonProfile, error) {
	return nil, u.err()
}

func (u Unavailable) AppendCategoryRecords(context.Context, uuid.UUID, domain.CategoryRecords) error {
	return u.err()
}

func (u Unavailable) SaveResult(context.Context, uuid.UUID, uuid.UUID, int) (*domain.SearchResult, error) {
	return nil, u.err()
}

func (u Unavailable) AppendHistory(context.Context, string, uuid.UUID) (*domain.SearchHistoryEntry, error) {
	return nil, u.err()
}

func (u Unavailable) GetHistory(context.Context, string, int) ([]*domain.SearchHistoryEntry, error) {
	return nil, u.err()
}

func (u Unavailable) DeleteHistoryEntry(context.Context, string, uuid.UUID) error {
	return u.err()
}

func (u Unavailable) DeleteAllHistory(context.Context, string) error {
	return u.err()
}

func (u Unavailable) GetFavorites(context.Context, string) ([]*domain.FavoriteEntry, error) {
	return nil, u.err()
}

func (u Unavailable) AddFavorite(context.Context, string, uuid.UUID, *string) (*domain.FavoriteEntry, error) {
	return nil, u.err()
}

func (u Unavailable) RemoveFavorite(context.Context, string, uuid.UUID) error {
	return u.err()
}

func (u Unavailable) UpdateFavoriteLabel(context.Context, string, uuid.UUID, string) (*domain.FavoriteEntry, error) {
	return nil, u.err()
}

func (u Unavailable) IsFavorited(context.Context, string, uuid.UUID) (bool, error) {
	return false, u.err()
}

func (u Unavailable) DeleteQuery(context.Context, string, uuid.UUID) error {
	return u.err()
}

func (u Unavailable) GetResultByQueryID(context.Context, string, uuid.UUID) (*domain.SearchOutcome, error) {
	return nil, u.err()
}

func (u Unavailable) GetProfile(context.Context, string) (*domain.UserProfile, error) {
	return nil, u.err()
}

func (u Unavailable) UpdateProfile(context.Context, string, UserProfilePatch) (*domain.UserProfile, error) {
	return nil, u.err()
}

func (u Unavailable) DeleteAccount(context.Context, string) error {
	return u.err()
}
