package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Category identifies one of the data categories the upstream provider serves.
type Category string

const (
	CategoryPersonSearch      Category = "person_search"
	CategoryContactEnrichment Category = "contact_enrichment"
	CategoryAddresses         Category = "addresses"
	CategoryPhones            Category = "phones"
	CategorySocialMedia       Category = "social_media"
	CategoryCriminalRecords   Category = "criminal_records"
	CategoryPropertyRecords   Category = "property_records"
	CategoryRelatives         Category = "relatives"
)

// AllCategories lists every category fetched during a search, in fan-out order.
var AllCategories = []Category{
	CategoryPersonSearch,
	CategoryContactEnrichment,
	CategoryAddresses,
	CategoryPhones,
	CategorySocialMedia,
	CategoryCriminalRecords,
	CategoryPropertyRecords,
	CategoryRelatives,
}

// SearchQuery is an immutable record of one submitted search. Deleting it
// cascades to its result, history entries, and favorites.
type SearchQuery struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"ownerId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Age       *int      `json:"age,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PersonProfile aggregates what is known about one person. Metadata is an open
// mapping carrying provider enrichment fields not modeled as first-class
// categories (aliases, employment, property records under "propertyRecords").
type PersonProfile struct {
	ID          uuid.UUID      `json:"id"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Age         *int           `json:"age,omitempty"`
	LastUpdated time.Time      `json:"lastUpdated"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SearchResult links a query to the profile it resolved and the confidence
// score computed for it. One-to-one with its query, immutable after creation.
type SearchResult struct {
	ID              uuid.UUID `json:"id"`
	SearchQueryID   uuid.UUID `json:"searchQueryId"`
	PersonProfileID uuid.UUID `json:"personProfileId"`
	ConfidenceScore int       `json:"confidenceScore"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Address is a normalized address-history record. Raw holds the untouched
// provider payload for provenance; it is excluded from record comparisons.
type Address struct {
	ID              uuid.UUID       `json:"id"`
	PersonProfileID uuid.UUID       `json:"personProfileId"`
	Street          string          `json:"street"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	ZipCode         string          `json:"zipCode"`
	Country         string          `json:"country"`
	IsCurrent       bool            `json:"isCurrent"`
	StartDate       string          `json:"startDate,omitempty"`
	EndDate         string          `json:"endDate,omitempty"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

type PhoneNumber struct {
	ID              uuid.UUID       `json:"id"`
	PersonProfileID uuid.UUID       `json:"personProfileId"`
	Number          string          `json:"number"`
	Type            string          `json:"type"`
	IsCurrent       bool            `json:"isCurrent"`
	LastVerified    string          `json:"lastVerified,omitempty"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

type SocialMediaProfile struct {
	ID              uuid.UUID       `json:"id"`
	PersonProfileID uuid.UUID       `json:"personProfileId"`
	Platform        string          `json:"platform"`
	Username        string          `json:"username"`
	URL             string          `json:"url,omitempty"`
	LastActive      string          `json:"lastActive,omitempty"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

type CriminalRecord struct {
	ID              uuid.UUID       `json:"id"`
	PersonProfileID uuid.UUID       `json:"personProfileId"`
	CaseNumber      string          `json:"caseNumber,omitempty"`
	Charge          string          `json:"charge"`
	Status          string          `json:"status"`
	RecordDate      string          `json:"recordDate,omitempty"`
	Jurisdiction    string          `json:"jurisdiction,omitempty"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

type Relative struct {
	ID              uuid.UUID       `json:"id"`
	PersonProfileID uuid.UUID       `json:"personProfileId"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName,omitempty"`
	Relationship    string          `json:"relationship"`
	Age             *int            `json:"age,omitempty"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

type PropertyRecord struct {
	ID              uuid.UUID       `json:"id"`
	PersonProfileID uuid.UUID       `json:"personProfileId"`
	Address         string          `json:"address"`
	City            string          `json:"city,omitempty"`
	State           string          `json:"state,omitempty"`
	ParcelNumber    string          `json:"parcelNumber,omitempty"`
	AssessedValue   float64         `json:"assessedValue,omitempty"`
	SaleDate        string          `json:"saleDate,omitempty"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

// SearchHistoryEntry is one row of the append-only search log. Query is
// populated on reads that join the owning query.
type SearchHistoryEntry struct {
	ID            uuid.UUID    `json:"id"`
	OwnerID       string       `json:"ownerId"`
	SearchQueryID uuid.UUID    `json:"searchQueryId"`
	SearchedAt    time.Time    `json:"searchedAt"`
	Query         *SearchQuery `json:"query,omitempty"`
}

// FavoriteEntry marks a query as favorited. Unique per (owner, query);
// re-favoriting returns the existing entry.
type FavoriteEntry struct {
	ID            uuid.UUID    `json:"id"`
	OwnerID       string       `json:"ownerId"`
	SearchQueryID uuid.UUID    `json:"searchQueryId"`
	Label         *string      `json:"label,omitempty"`
	FavoritedAt   time.Time    `json:"favoritedAt"`
	Query         *SearchQuery `json:"query,omitempty"`
}

// UserProfile is the account-level profile (the searching user, not a person
// being searched). In guest mode a synthetic profile stands in.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// CategoryRecords bundles the normalized per-category rows produced by one
// search, before they are attached to a profile.
type CategoryRecords struct {
	Addresses []Address            `json:"addresses"`
	Phones    []PhoneNumber        `json:"phoneNumbers"`
	Social    []SocialMediaProfile `json:"socialMedia"`
	Criminal  []CriminalRecord     `json:"criminalRecords"`
	Relatives []Relative           `json:"relatives"`
}

// MetadataPropertyKey is where property records live inside profile metadata;
// they are not modeled as a first-class table.
const MetadataPropertyKey = "propertyRecords"

// PropertyRecordsFromMetadata recovers typed property records from profile
// metadata, tolerating both the in-process typed slice and the generic form
// produced by a JSON round trip.
func PropertyRecordsFromMetadata(metadata map[string]any) []PropertyRecord {
	v, ok := metadata[MetadataPropertyKey]
	if !ok || v == nil {
		return nil
	}
	if typed, isTyped := v.([]PropertyRecord); isTyped {
		return typed
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out []PropertyRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// SearchOutcome is the unified object returned by a completed search and by
// result lookups.
type SearchOutcome struct {
	SearchQuery     *SearchQuery     `json:"searchQuery"`
	SearchResult    *SearchResult    `json:"searchResult"`
	PersonProfile   *PersonProfile   `json:"personProfile"`
	ConfidenceScore int              `json:"confidenceScore"`
	CategoryRecords                  // flattened into the JSON body
	PropertyRecords []PropertyRecord `json:"propertyRecords"`
}
