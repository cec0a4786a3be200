// Package local implements the storage backend against a single JSON
// document on disk, mirroring the guest-mode contract: one synthetic owner,
// whole-document read-modify-write per mutation, atomic replacement, and a
// distinct capacity error when the medium is full.
package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"persona/internal/domain"
	"persona/internal/store"
)

const (
	// documentName is the fixed storage key; all guest state lives here.
	documentName = "guest_data.json"

	// defaultMaxBytes bounds the document, in the spirit of a browser
	// localStorage quota.
	defaultMaxBytes = 5 << 20
)

// storedResult is a search result with its profile and category rows embedded.
// The guest document has no relational tables to join, so results carry
// everything needed to re-assemble an outcome.
type storedResult struct {
	domain.SearchResult
	PersonProfile *domain.PersonProfile `json:"personProfile"`
	domain.CategoryRecords
	PropertyRecords []domain.PropertyRecord `json:"propertyRecords,omitempty"`
}

// document is the single JSON blob, atomically replaced on every mutation.
type document struct {
	Profile       *domain.UserProfile          `json:"profile"`
	SearchHistory []*domain.SearchHistoryEntry `json:"searchHistory"`
	Favorites     []*domain.FavoriteEntry      `json:"favorites"`
	SearchQueries []*domain.SearchQuery        `json:"searchQueries"`
	SearchResults []*storedResult              `json:"searchResults"`
}

// pendingProfile buffers a profile's category rows between UpsertProfile and
// SaveResult within one search. Never persisted on its own; SaveResult folds
// it into the result entry. A search that dies before SaveResult leaves its
// entry behind, so UpsertProfile sweeps entries older than pendingTTL.
type pendingProfile struct {
	profile  *domain.PersonProfile
	records  domain.CategoryRecords
	buffered time.Time
}

const pendingTTL = time.Minute

// Store is the local implementation of store.Store.
type Store struct {
	mu       sync.Mutex
	path     string
	maxBytes int
	pending  map[uuid.UUID]*pendingProfile
	now      func() time.Time
}

var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithMaxBytes overrides the document capacity bound.
func WithMaxBytes(n int) Option {
	return func(s *Store) { s.maxBytes = n }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a local store rooted at dataDir.
func New(dataDir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create local data dir: %w", err)
	}
	s := &Store{
		path:     filepath.Join(dataDir, documentName),
		maxBytes: defaultMaxBytes,
		pending:  make(map[uuid.UUID]*pendingProfile),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// EnableGuestMode initializes the document if absent.
func (s *Store) EnableGuestMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}

// DisableGuestMode removes the document entirely: switching back to an
// authenticated session must leave no residual guest entities behind.
func (s *Store) DisableGuestMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[uuid.UUID]*pendingProfile)
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.NewStorageError("disable guest mode", err)
	}
	return nil
}

// load reads the document, initializing it on first use.
func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		doc := s.initialDocument()
		if err := s.persist(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("read local document", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewStorageError("decode local document", err)
	}
	return &doc, nil
}

func (s *Store) initialDocument() *document {
	now := s.now()
	return &document{
		Profile: &domain.UserProfile{
			ID:        fmt.Sprintf("guest_%d", now.UnixMilli()),
			Email:     "guest@persona.local",
			FirstName: "Guest",
			LastName:  "User",
			CreatedAt: now,
		},
		SearchHistory: []*domain.SearchHistoryEntry{},
		Favorites:     []*domain.FavoriteEntry{},
		SearchQueries: []*domain.SearchQuery{},
		SearchResults: []*storedResult{},
	}
}

// persist replaces the document atomically: encode, capacity check, write to
// a temp file, rename over the fixed path. A reader never observes a partial
// document.
func (s *Store) persist(doc *document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return domain.NewStorageError("encode local document", err)
	}
	if len(data) > s.maxBytes {
		return fmt.Errorf("document %d bytes exceeds %d: %w", len(data), s.maxBytes, domain.ErrStorageFull)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		if errors.Is(err, syscall.ENOSPC) {
			return fmt.Errorf("write local document: %w", domain.ErrStorageFull)
		}
		return domain.NewStorageError("write local document", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return domain.NewStorageError("replace local document", err)
	}
	return nil
}

// mutate runs one read-modify-write cycle under the lock.
func (s *Store) mutate(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.persist(doc)
}

// view runs a read-only access under the lock.
func (s *Store) view(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	return fn(doc)
}
