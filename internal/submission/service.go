package submission

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"persona/internal/audit"
	"persona/internal/domain"
	"persona/internal/platform/metrics"
)

// Input is a submission request before validation.
type Input struct {
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	PersonProfileID *uuid.UUID `json:"personProfileId,omitempty"`
	Data            Data       `json:"data"`
	Proofs          []string   `json:"proofs"`
}

// Service owns submission intake and the review queue.
type Service struct {
	store   Store
	audit   *audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(store Store, publisher *audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		audit:   publisher,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// CreateSubmission validates and enqueues a contribution. Guests cannot
// submit: a review trail needs an accountable identity.
func (s *Service) CreateSubmission(ctx context.Context, mode domain.Mode, input Input) (*Submission, error) {
	if mode.IsGuest() {
		return nil, domain.NewValidationError("submitter", "guest sessions cannot submit person information")
	}
	if mode.OwnerID() == "" {
		return nil, domain.ErrAuthRequired
	}
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.FirstName == "" {
		return nil, domain.NewValidationError("firstName", "is required")
	}
	if input.LastName == "" {
		return nil, domain.NewValidationError("lastName", "is required")
	}
	if len(input.Proofs) == 0 {
		return nil, domain.NewValidationError("proofs", "at least one proof reference is required")
	}

	sub := &Submission{
		ID:              uuid.New(),
		SubmitterID:     mode.OwnerID(),
		PersonProfileID: input.PersonProfileID,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Data:            input.Data,
		Proofs:          input.Proofs,
		Status:          StatusPending,
		CreatedAt:       s.now(),
	}
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.metrics.SubmissionsCreated.Inc()
	s.audit.Emit(ctx, audit.Event{
		OwnerID: sub.SubmitterID,
		Action:  audit.ActionSubmissionCreated,
		Subject: sub.ID.String(),
	})
	return sub, nil
}

// GetApprovedSubmissions returns approved contributions for a profile when an
// ID is known, otherwise by exact name.
func (s *Service) GetApprovedSubmissions(ctx context.Context, profileID *uuid.UUID, firstName, lastName string) ([]*Submission, error) {
	if profileID != nil {
		return s.store.ListApprovedByProfile(ctx, *profileID)
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, domain.NewValidationError("name", "profile id or first and last name required")
	}
	return s.store.ListApprovedByName(ctx, firstName, lastName)
}

// GetPendingSubmissions returns the review queue.
func (s *Service) GetPendingSubmissions(ctx context.Context) ([]*Submission, error) {
	return s.store.ListPending(ctx)
}

// UpdateSubmissionStatus moves a pending submission to approved or rejected.
// A reviewed submission is immutable except for its notes: re-asserting the
// same verdict with new notes amends them, any other change is rejected.
func (s *Service) UpdateSubmissionStatus(ctx context.Context, id uuid.UUID, status Status, reviewer string, notes string) (*Submission, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, domain.NewValidationError("status", "must be approved or rejected")
	}
	sub, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != StatusPending {
		if status != sub.Status || notes == "" {
			return nil, domain.NewValidationError("status", "submission has already been reviewed")
		}
		sub.ReviewNotes = &notes
		if err := s.store.Update(ctx, sub); err != nil {
			return nil, err
		}
		s.audit.Emit(ctx, audit.Event{
			OwnerID: reviewer,
			Action:  audit.ActionSubmissionReviewed,
			Subject: sub.ID.String(),
			Detail:  "notes amended",
		})
		return sub, nil
	}

	reviewedAt := s.now()
	sub.Status = status
	sub.ReviewedBy = &reviewer
	sub.ReviewedAt = &reviewedAt
	if notes != "" {
		sub.ReviewNotes = &notes
	}
	if err := s.store.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, audit.Event{
		OwnerID: reviewer,
		Action:  audit.ActionSubmissionReviewed,
		Subject: sub.ID.String(),
		Detail:  string(status),
	})
	return sub, nil
}
