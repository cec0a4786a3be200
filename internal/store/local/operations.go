package local

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"persona/internal/domain"
	"persona/internal/store"
)

// The owner argument is ignored throughout: the document has exactly one
// synthetic owner, its embedded guest profile.

func (s *Store) SaveQuery(_ context.Context, _ string, params store.QueryParams) (*domain.SearchQuery, error) {
	var saved *domain.SearchQuery
	err := s.mutate(func(doc *document) error {
		saved = &domain.SearchQuery{
			ID:        uuid.New(),
			OwnerID:   doc.Profile.ID,
			FirstName: params.FirstName,
			LastName:  params.LastName,
			Age:       params.Age,
			Location:  params.Location,
			CreatedAt: s.now(),
		}
		doc.SearchQueries = append(doc.SearchQueries, saved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UpsertProfile always inserts: guest searches never merge into an existing
// profile, by design. The fresh profile is buffered until SaveResult embeds
// it into the result entry.
func (s *Store) UpsertProfile(_ context.Context, firstName, lastName string, patch store.ProfilePatch) (*domain.PersonProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, p := range s.pending {
		if now.Sub(p.buffered) > pendingTTL {
			delete(s.pending, id)
		}
	}
	profile := &domain.PersonProfile{
		ID:          uuid.New(),
		FirstName:   firstName,
		LastName:    lastName,
		Age:         patch.Age,
		LastUpdated: now,
		Metadata:    patch.Metadata,
	}
	s.pending[profile.ID] = &pendingProfile{profile: profile, buffered: now}
	return profile, nil
}

func (s *Store) AppendCategoryRecords(_ context.Context, profileID uuid.UUID, recs domain.CategoryRecords) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[profileID]
	if !ok {
		return domain.NewStorageError("append category records", fmt.Errorf("profile %s: %w", profileID, domain.ErrNotFound))
	}
	stampProfileID(profileID, &recs)
	p.records.Addresses = append(p.records.Addresses, recs.Addresses...)
	p.records.Phones = append(p.records.Phones, recs.Phones...)
	p.records.Social = append(p.records.Social, recs.Social...)
	p.records.Criminal = append(p.records.Criminal, recs.Criminal...)
	p.records.Relatives = append(p.records.Relatives, recs.Relatives...)
	return nil
}

func (s *Store) SaveResult(_ context.Context, queryID, profileID uuid.UUID, confidenceScore int) (*domain.SearchResult, error) {
	var saved *domain.SearchResult
	err := s.mutate(func(doc *document) error {
		entry := &storedResult{
			SearchResult: domain.SearchResult{
				ID:              uuid.New(),
				SearchQueryID:   queryID,
				PersonProfileID: profileID,
				ConfidenceScore: confidenceScore,
				CreatedAt:       s.now(),
			},
		}
		if p, ok := s.pending[profileID]; ok {
			entry.PersonProfile = p.profile
			entry.CategoryRecords = p.records
			entry.PropertyRecords = domain.PropertyRecordsFromMetadata(p.profile.Metadata)
			delete(s.pending, profileID)
		}
		doc.SearchResults = append(doc.SearchResults, entry)
		saved = &entry.SearchResult
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Store) AppendHistory(_ context.Context, _ string, queryID uuid.UUID) (*domain.SearchHistoryEntry, error) {
	var saved *domain.SearchHistoryEntry
	err := s.mutate(func(doc *document) error {
		saved = &domain.SearchHistoryEntry{
			ID:            uuid.New(),
			OwnerID:       doc.Profile.ID,
			SearchQueryID: queryID,
			SearchedAt:    s.now(),
		}
		doc.SearchHistory = append(doc.SearchHistory, saved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Store) GetHistory(_ context.Context, _ string, limit int) ([]*domain.SearchHistoryEntry, error) {
	var out []*domain.SearchHistoryEntry
	err := s.view(func(doc *document) error {
		entries := make([]*domain.SearchHistoryEntry, len(doc.SearchHistory))
		copy(entries, doc.SearchHistory)
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].SearchedAt.After(entries[j].SearchedAt)
		})
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
		for _, entry := range entries {
			joined := *entry
			joined.Query = findQuery(doc, entry.SearchQueryID)
			out = append(out, &joined)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteHistoryEntry(_ context.Context, _ string, historyID uuid.UUID) error {
	return s.mutate(func(doc *document) error {
		doc.SearchHistory = filterHistory(doc.SearchHistory, func(h *domain.SearchHistoryEntry) bool {
			return h.ID != historyID
		})
		return nil
	})
}

func (s *Store) DeleteAllHistory(_ context.Context, _ string) error {
	return s.mutate(func(doc *document) error {
		doc.SearchHistory = []*domain.SearchHistoryEntry{}
		return nil
	})
}

func (s *Store) GetFavorites(_ context.Context, _ string) ([]*domain.FavoriteEntry, error) {
	var out []*domain.FavoriteEntry
	err := s.view(func(doc *document) error {
		favorites := make([]*domain.FavoriteEntry, len(doc.Favorites))
		copy(favorites, doc.Favorites)
		sort.Slice(favorites, func(i, j int) bool {
			return favorites[i].FavoritedAt.After(favorites[j].FavoritedAt)
		})
		for _, fav := range favorites {
			joined := *fav
			joined.Query = findQuery(doc, fav.SearchQueryID)
			out = append(out, &joined)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) AddFavorite(_ context.Context, _ string, queryID uuid.UUID, label *string) (*domain.FavoriteEntry, error) {
	var saved *domain.FavoriteEntry
	err := s.mutate(func(doc *document) error {
		for _, existing := range doc.Favorites {
			if existing.SearchQueryID == queryID {
				saved = existing
				return nil
			}
		}
		saved = &domain.FavoriteEntry{
			ID:            uuid.New(),
			OwnerID:       doc.Profile.ID,
			SearchQueryID: queryID,
			Label:         label,
			FavoritedAt:   s.now(),
		}
		doc.Favorites = append(doc.Favorites, saved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Store) RemoveFavorite(_ context.Context, _ string, favoriteID uuid.UUID) error {
	return s.mutate(func(doc *document) error {
		kept := doc.Favorites[:0]
		for _, fav := range doc.Favorites {
			if fav.ID != favoriteID {
				kept = append(kept, fav)
			}
		}
		doc.Favorites = kept
		return nil
	})
}

func (s *Store) UpdateFavoriteLabel(_ context.Context, _ string, favoriteID uuid.UUID, label string) (*domain.FavoriteEntry, error) {
	var updated *domain.FavoriteEntry
	err := s.mutate(func(doc *document) error {
		for _, fav := range doc.Favorites {
			if fav.ID == favoriteID {
				fav.Label = &label
				updated = fav
				return nil
			}
		}
		return domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) IsFavorited(_ context.Context, _ string, queryID uuid.UUID) (bool, error) {
	var favorited bool
	err := s.view(func(doc *document) error {
		for _, fav := range doc.Favorites {
			if fav.SearchQueryID == queryID {
				favorited = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

// DeleteQuery cascades in-document: the query, its results, its history
// entries, and its favorites all go in one atomic replacement.
func (s *Store) DeleteQuery(_ context.Context, _ string, queryID uuid.UUID) error {
	return s.mutate(func(doc *document) error {
		queries := doc.SearchQueries[:0]
		for _, q := range doc.SearchQueries {
			if q.ID != queryID {
				queries = append(queries, q)
			}
		}
		doc.SearchQueries = queries

		results := doc.SearchResults[:0]
		for _, r := range doc.SearchResults {
			if r.SearchQueryID != queryID {
				results = append(results, r)
			}
		}
		doc.SearchResults = results

		doc.SearchHistory = filterHistory(doc.SearchHistory, func(h *domain.SearchHistoryEntry) bool {
			return h.SearchQueryID != queryID
		})

		favorites := doc.Favorites[:0]
		for _, fav := range doc.Favorites {
			if fav.SearchQueryID != queryID {
				favorites = append(favorites, fav)
			}
		}
		doc.Favorites = favorites
		return nil
	})
}

func (s *Store) GetResultByQueryID(_ context.Context, _ string, queryID uuid.UUID) (*domain.SearchOutcome, error) {
	var outcome *domain.SearchOutcome
	err := s.view(func(doc *document) error {
		for _, r := range doc.SearchResults {
			if r.SearchQueryID == queryID {
				result := r.SearchResult
				outcome = &domain.SearchOutcome{
					SearchQuery:     findQuery(doc, queryID),
					SearchResult:    &result,
					PersonProfile:   r.PersonProfile,
					ConfidenceScore: r.ConfidenceScore,
					CategoryRecords: r.CategoryRecords,
					PropertyRecords: r.PropertyRecords,
				}
				return nil
			}
		}
		return domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *Store) GetProfile(_ context.Context, _ string) (*domain.UserProfile, error) {
	var profile *domain.UserProfile
	err := s.view(func(doc *document) error {
		p := *doc.Profile
		profile = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Store) UpdateProfile(_ context.Context, _ string, patch store.UserProfilePatch) (*domain.UserProfile, error) {
	var updated *domain.UserProfile
	err := s.mutate(func(doc *document) error {
		if patch.FirstName != nil {
			doc.Profile.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			doc.Profile.LastName = *patch.LastName
		}
		if patch.Email != nil {
			doc.Profile.Email = *patch.Email
		}
		doc.Profile.UpdatedAt = s.now()
		p := *doc.Profile
		updated = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAccount resets the document to a fresh guest.
func (s *Store) DeleteAccount(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[uuid.UUID]*pendingProfile)
	return s.persist(s.initialDocument())
}

func findQuery(doc *document, queryID uuid.UUID) *domain.SearchQuery {
	for _, q := range doc.SearchQueries {
		if q.ID == queryID {
			return q
		}
	}
	return nil
}

func filterHistory(entries []*domain.SearchHistoryEntry, keep func(*domain.SearchHistoryEntry) bool) []*domain.SearchHistoryEntry {
	out := entries[:0]
	for _, entry := range entries {
		if keep(entry) {
			out = append(out, entry)
		}
	}
	return out
}

func stampProfileID(profileID uuid.UUID, recs *domain.CategoryRecords) {
	for i := range recs.Addresses {
		recs.Addresses[i].PersonProfileID = profileID
		if recs.Addresses[i].ID == uuid.Nil {
			recs.Addresses[i].ID = uuid.New()
		}
	}
	for i := range recs.Phones {
		recs.Phones[i].PersonProfileID = profileID
		if recs.Phones[i].ID == uuid.Nil {
			recs.Phones[i].ID = uuid.New()
		}
	}
	for i := range recs.Social {
		recs.Social[i].PersonProfileID = profileID
		if recs.Social[i].ID == uuid.Nil {
			recs.Social[i].ID = uuid.New()
		}
	}
	for i := range recs.Criminal {
		recs.Criminal[i].PersonProfileID = profileID
		if recs.Criminal[i].ID == uuid.Nil {
			recs.Criminal[i].ID = uuid.New()
		}
	}
	for i := range recs.Relatives {
		recs.Relatives[i].PersonProfileID = profileID
		if recs.Relatives[i].ID == uuid.Nil {
			recs.Relatives[i].ID = uuid.New()
		}
	}
}
