package audit

import "time"

// Actions emitted by the service.
const (
	ActionSearchExecuted     = "search.executed"
	ActionQueryDeleted       = "query.deleted"
	ActionSubmissionCreated  = "submission.created"
	ActionSubmissionReviewed = "submission.reviewed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	OwnerID   string    `json:"ownerId"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	Guest     bool      `json:"guest"`
	Detail    string    `json:"detail,omitempty"`
}
