//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona/internal/domain"
	"persona/internal/store"
	"persona/pkg/testutil/containers"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	pc := containers.NewPostgresContainer(t)
	s := New(pc.DB)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestPostgresIntegration_SearchLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	owner := "user-123"
	require.NoError(t, s.EnsureUser(ctx, owner, "user@example.com"))

	query, err := s.SaveQuery(ctx, owner, store.QueryParams{FirstName: "John", LastName: "Doe", Location: "Austin, TX"})
	require.NoError(t, err)

	profile, err := s.UpsertProfile(ctx, "John", "Doe", store.ProfilePatch{
		Metadata: map[string]any{"aliases": []string{"Johnny"}},
	})
	require.NoError(t, err)

	err = s.AppendCategoryRecords(ctx, profile.ID, domain.CategoryRecords{
		Addresses: []domain.Address{{Street: "1 Main St", City: "Austin", State: "TX", Country: "USA"}},
		Phones:    []domain.PhoneNumber{{Number: "512-555-0100", Type: "mobile", IsCurrent: true}},
		Relatives: []domain.Relative{{FirstName: "Jane", Relationship: "sister"}},
	})
	require.NoError(t, err)

	_, err = s.SaveResult(ctx, query.ID, profile.ID, 35)
	require.NoError(t, err)

	outcome, err := s.GetResultByQueryID(ctx, owner, query.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, outcome.ConfidenceScore)
	assert.Equal(t, profile.ID, outcome.PersonProfile.ID)
	assert.Len(t, outcome.Addresses, 1)
	assert.Len(t, outcome.Phones, 1)
	assert.Len(t, outcome.Relatives, 1)

	// same name resolves to the same profile
	again, err := s.UpsertProfile(ctx, "John", "Doe", store.ProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
	assert.Equal(t, "Johnny", again.Metadata["aliases"].([]any)[0])
}

func TestPostgresIntegration_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	require.NoError(t, s.EnsureUser(ctx, "alice", "alice@example.com"))
	require.NoError(t, s.EnsureUser(ctx, "bob", "bob@example.com"))

	query, err := s.SaveQuery(ctx, "alice", store.QueryParams{FirstName: "John", LastName: "Doe"})
	require.NoError(t, err)
	profile, err := s.UpsertProfile(ctx, "John", "Doe", store.ProfilePatch{})
	require.NoError(t, err)
	_, err = s.SaveResult(ctx, query.ID, profile.ID, 25)
	require.NoError(t, err)

	_, err = s.GetResultByQueryID(ctx, "bob", query.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.ErrorIs(t, s.DeleteQuery(ctx, "bob", query.ID), domain.ErrNotFound)

	_, err = s.SaveQuery(ctx, "", store.QueryParams{FirstName: "X", LastName: "Y"})
	require.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestPostgresIntegration_HistoryAndFavorites(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	owner := "user-123"
	require.NoError(t, s.EnsureUser(ctx, owner, "user@example.com"))

	q1, err := s.SaveQuery(ctx, owner, store.QueryParams{FirstName: "John", LastName: "Doe"})
	require.NoError(t, err)
	q2, err := s.SaveQuery(ctx, owner, store.QueryParams{FirstName: "Jane", LastName: "Roe"})
	require.NoError(t, err)

	_, err = s.AppendHistory(ctx, owner, q1.ID)
	require.NoError(t, err)
	h2, err := s.AppendHistory(ctx, owner, q2.ID)
	require.NoError(t, err)

	entries, err := s.GetHistory(ctx, owner, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, q2.ID, entries[0].SearchQueryID)
	require.NotNil(t, entries[0].Query)
	assert.Equal(t, "Jane", entries[0].Query.FirstName)

	require.NoError(t, s.DeleteHistoryEntry(ctx, owner, h2.ID))
	entries, err = s.GetHistory(ctx, owner, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	label := "follow up"
	fav, err := s.AddFavorite(ctx, owner, q1.ID, &label)
	require.NoError(t, err)
	dup, err := s.AddFavorite(ctx, owner, q1.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, fav.ID, dup.ID)
	require.NotNil(t, dup.Label)
	assert.Equal(t, label, *dup.Label)

	favorited, err := s.IsFavorited(ctx, owner, q1.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	updated, err := s.UpdateFavoriteLabel(ctx, owner, fav.ID, "verified")
	require.NoError(t, err)
	assert.Equal(t, "verified", *updated.Label)

	require.NoError(t, s.RemoveFavorite(ctx, owner, fav.ID))
	favorites, err := s.GetFavorites(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestPostgresIntegration_DeleteQueryCascades(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	owner := "user-123"
	require.NoError(t, s.EnsureUser(ctx, owner, "user@example.com"))

	query, err := s.SaveQuery(ctx, owner, store.QueryParams{FirstName: "John", LastName: "Doe"})
	require.NoError(t, err)
	profile, err := s.UpsertProfile(ctx, "John", "Doe", store.ProfilePatch{})
	require.NoError(t, err)
	_, err = s.SaveResult(ctx, query.ID, profile.ID, 25)
	require.NoError(t, err)
	_, err = s.AppendHistory(ctx, owner, query.ID)
	require.NoError(t, err)
	_, err = s.AddFavorite(ctx, owner, query.ID, nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteQuery(ctx, owner, query.ID))

	_, err = s.GetResultByQueryID(ctx, owner, query.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	entries, err := s.GetHistory(ctx, owner, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	favorites, err := s.GetFavorites(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	// the shared profile survives
	again, err := s.UpsertProfile(ctx, "John", "Doe", store.ProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestPostgresIntegration_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	owner := "user-123"
	require.NoError(t, s.EnsureUser(ctx, owner, "user@example.com"))

	profile, err := s.GetProfile(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", profile.Email)

	name := "Ada"
	updated, err := s.UpdateProfile(ctx, owner, store.UserProfilePatch{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "user@example.com", updated.Email)

	query, err := s.SaveQuery(ctx, owner, store.QueryParams{FirstName: "John", LastName: "Doe"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount(ctx, owner))

	_, err = s.GetProfile(ctx, owner)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetResultByQueryID(ctx, owner, query.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
