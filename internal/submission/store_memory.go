package submission

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"persona/internal/domain"
)

type InMemoryStore struct {
	mu          sync.RWMutex
	submissions map[uuid.UUID]*Submission
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{submissions: make(map[uuid.UUID]*Submission)}
}

func (s *InMemoryStore) Save(_ context.Context, sub *Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sub
	s.submissions[sub.ID] = &copied
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *sub
	return &copied, nil
}

func (s *InMemoryStore) ListApprovedByProfile(_ context.Context, profileID uuid.UUID) ([]*Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Submission
	for _, sub := range s.submissions {
		if sub.Status == StatusApproved && sub.PersonProfileID != nil && *sub.PersonProfileID == profileID {
			copied := *sub
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListApprovedByName(_ context.Context, firstName, lastName string) ([]*Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Submission
	for _, sub := range s.submissions {
		if sub.Status == StatusApproved &&
			strings.EqualFold(sub.FirstName, firstName) &&
			strings.EqualFold(sub.LastName, lastName) {
			copied := *sub
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListPending(_ context.Context) ([]*Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Submission
	for _, sub := range s.submissions {
		if sub.Status == StatusPending {
			copied := *sub
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, sub *Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[sub.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *sub
	s.submissions[sub.ID] = &copied
	return nil
}
