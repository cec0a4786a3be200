package submission

import (
	"context"

	"github.com/google/uuid"
)

type Store interface {
	Save(ctx context.Context, sub *Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	ListApprovedByProfile(ctx context.Context, profileID uuid.UUID) ([]*Submission, error)
	ListApprovedByName(ctx context.Context, firstName, lastName string) ([]*Submission, error)
	ListPending(ctx context.Context) ([]*Submission, error)
	Update(ctx context.Context, sub *Submission) error
}
