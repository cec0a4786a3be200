// Package submission handles community-contributed person information. A
// submission carries the contributor's claims plus proof references and sits
// in a review queue; only approved submissions surface in search results.
package submission

import (
	"time"

	"github.com/google/uuid"

	"persona/internal/domain"
)

// Status is the review state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Data holds the contributed child collections. All optional; a submission
// may contribute any subset.
type Data struct {
	Addresses []domain.Address            `json:"addresses,omitempty"`
	Phones    []domain.PhoneNumber        `json:"phoneNumbers,omitempty"`
	Social    []domain.SocialMediaProfile `json:"socialMedia,omitempty"`
	Criminal  []domain.CriminalRecord     `json:"criminalRecords,omitempty"`
	Relatives []domain.Relative           `json:"relatives,omitempty"`
	PastNames []string                    `json:"pastNames,omitempty"`
}

// Submission is one contributed record awaiting or past review. Proofs are
// references to already-uploaded documents; this service never handles the
// files themselves.
type Submission struct {
	ID              uuid.UUID  `json:"id"`
	SubmitterID     string     `json:"submitterId"`
	PersonProfileID *uuid.UUID `json:"personProfileId,omitempty"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Data            Data       `json:"data"`
	Proofs          []string   `json:"proofs"`
	Status          Status     `json:"status"`
	ReviewNotes     *string    `json:"reviewNotes,omitempty"`
	ReviewedBy      *string    `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
