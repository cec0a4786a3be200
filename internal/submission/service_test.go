package submission

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona/internal/audit"
	"persona/internal/domain"
	"persona/internal/platform/metrics"
)

var ctx = context.Background()

func newTestService() (*Service, *audit.MemorySink) {
	sink := audit.NewMemorySink()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(NewInMemoryStore(), audit.NewPublisher(sink, logger), logger, metrics.NewFor(prometheus.NewRegistry()))
	return svc, sink
}

func validInput() Input {
	return Input{
		FirstName: "John",
		LastName:  "Doe",
		Data: Data{
			Addresses: []domain.Address{{Street: "1 Main St", City: "Austin"}},
			PastNames: []string{"Jon Doe"},
		},
		Proofs: []string{"uploads/proof-1.pdf"},
	}
}

func Test_CreateSubmission(t *testing.T) {
	svc, sink := newTestService()

	sub, err := svc.CreateSubmission(ctx, domain.RemoteMode(domain.Identity{ID: "user-123"}), validInput())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, sub.Status)
	assert.Equal(t, "user-123", sub.SubmitterID)
	assert.False(t, sub.CreatedAt.IsZero())

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionSubmissionCreated, events[0].Action)
}

func Test_CreateSubmission_GuestRejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateSubmission(ctx, domain.GuestMode(), validInput())
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func Test_CreateSubmission_RequiresProof(t *testing.T) {
	svc, _ := newTestService()

	input := validInput()
	input.Proofs = nil
	_, err := svc.CreateSubmission(ctx, domain.RemoteMode(domain.Identity{ID: "user-123"}), input)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func Test_UpdateSubmissionStatus_Transitions(t *testing.T) {
	svc, sink := newTestService()
	mode := domain.RemoteMode(domain.Identity{ID: "user-123"})

	sub, err := svc.CreateSubmission(ctx, mode, validInput())
	require.NoError(t, err)

	approved, err := svc.UpdateSubmissionStatus(ctx, sub.ID, StatusApproved, "reviewer-1", "checked against county records")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "reviewer-1", *approved.ReviewedBy)
	require.NotNil(t, approved.ReviewedAt)
	require.NotNil(t, approved.ReviewNotes)

	// the verdict is final
	_, err = svc.UpdateSubmissionStatus(ctx, sub.ID, StatusRejected, "reviewer-2", "")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	// only approved/rejected are valid targets
	_, err = svc.UpdateSubmissionStatus(ctx, sub.ID, StatusPending, "reviewer-1", "")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionSubmissionReviewed, events[1].Action)
}

func Test_UpdateSubmissionStatus_NotesAmendment(t *testing.T) {
	svc, sink := newTestService()
	mode := domain.RemoteMode(domain.Identity{ID: "user-123"})

	sub, err := svc.CreateSubmission(ctx, mode, validInput())
	require.NoError(t, err)

	approved, err := svc.UpdateSubmissionStatus(ctx, sub.ID, StatusApproved, "reviewer-1", "initial notes")
	require.NoError(t, err)
	reviewedAt := *approved.ReviewedAt

	// Re-asserting the same verdict with new notes amends them; everything
	// else about the review stays frozen.
	amended, err := svc.UpdateSubmissionStatus(ctx, sub.ID, StatusApproved, "reviewer-2", "added court reference")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, amended.Status)
	require.NotNil(t, amended.ReviewNotes)
	assert.Equal(t, "added court reference", *amended.ReviewNotes)
	require.NotNil(t, amended.ReviewedBy)
	assert.Equal(t, "reviewer-1", *amended.ReviewedBy)
	require.NotNil(t, amended.ReviewedAt)
	assert.Equal(t, reviewedAt, *amended.ReviewedAt)

	// An amendment must carry notes.
	_, err = svc.UpdateSubmissionStatus(ctx, sub.ID, StatusApproved, "reviewer-2", "")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	events := sink.Events()
	require.Len(t, events, 3)
	assert.Equal(t, audit.ActionSubmissionReviewed, events[2].Action)
	assert.Equal(t, "notes amended", events[2].Detail)
}

func Test_UpdateSubmissionStatus_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateSubmissionStatus(ctx, uuid.New(), StatusApproved, "reviewer-1", "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_GetApprovedSubmissions(t *testing.T) {
	svc, _ := newTestService()
	mode := domain.RemoteMode(domain.Identity{ID: "user-123"})

	profileID := uuid.New()
	input := validInput()
	input.PersonProfileID = &profileID
	sub, err := svc.CreateSubmission(ctx, mode, input)
	require.NoError(t, err)

	// pending submissions never surface
	approvedSubs, err := svc.GetApprovedSubmissions(ctx, &profileID, "", "")
	require.NoError(t, err)
	assert.Empty(t, approvedSubs)

	_, err = svc.UpdateSubmissionStatus(ctx, sub.ID, StatusApproved, "reviewer-1", "")
	require.NoError(t, err)

	approvedSubs, err = svc.GetApprovedSubmissions(ctx, &profileID, "", "")
	require.NoError(t, err)
	require.Len(t, approvedSubs, 1)

	byName, err := svc.GetApprovedSubmissions(ctx, nil, "john", "DOE")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, sub.ID, byName[0].ID)

	_, err = svc.GetApprovedSubmissions(ctx, nil, "john", "")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func Test_GetPendingSubmissions(t *testing.T) {
	svc, _ := newTestService()
	mode := domain.RemoteMode(domain.Identity{ID: "user-123"})

	sub, err := svc.CreateSubmission(ctx, mode, validInput())
	require.NoError(t, err)

	pending, err := svc.GetPendingSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, sub.ID, pending[0].ID)
}
