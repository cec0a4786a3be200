// Package search orchestrates one person search: persist the query, fan out
// to every provider category, normalize and score whatever came back, and
// persist the unified outcome. Provider failures are contained per category;
// storage failures abort the search.
package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"persona/internal/audit"
	"persona/internal/domain"
	"persona/internal/normalize"
	"persona/internal/platform/metrics"
	"persona/internal/provider"
	"persona/internal/score"
	"persona/internal/store"
)

// Input is the raw search request before validation.
type Input struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       *int   `json:"age,omitempty"`
	Location  string `json:"location,omitempty"`
}

// Service runs the search pipeline against whichever backend the mode selects.
type Service struct {
	stores  *store.Selector
	fetcher provider.Fetcher
	audit   *audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewService(stores *store.Selector, fetcher provider.Fetcher, publisher *audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		stores:  stores,
		fetcher: fetcher,
		audit:   publisher,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("persona/search"),
	}
}

// SearchPerson executes one search end to end and returns the unified
// outcome. The mode is explicit per call; a mode switch between calls selects
// a different backend with no shared state.
func (s *Service) SearchPerson(ctx context.Context, mode domain.Mode, input Input) (*domain.SearchOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "search.person")
	defer span.End()

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.FirstName == "" {
		return nil, domain.NewValidationError("firstName", "is required")
	}
	if input.LastName == "" {
		return nil, domain.NewValidationError("lastName", "is required")
	}

	backend := s.stores.Select(mode)
	owner := mode.OwnerID()

	query, err := backend.SaveQuery(ctx, owner, store.QueryParams{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Age:       input.Age,
		Location:  input.Location,
	})
	if err != nil {
		return nil, err
	}

	fetched := fetchAll(ctx, s.fetcher, provider.Params{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Age:       input.Age,
		Location:  input.Location,
	})
	for cat, res := range fetched {
		if res.err != nil {
			s.containFailure(ctx, cat, res.err)
		}
	}

	person := s.personData(ctx, fetched[domain.CategoryPersonSearch], domain.CategoryPersonSearch)
	enrichment := s.personData(ctx, fetched[domain.CategoryContactEnrichment], domain.CategoryContactEnrichment)
	merged := normalize.MergeEnrichment(person, enrichment)

	addresses := normalizeSlot(s, ctx, fetched[domain.CategoryAddresses], domain.CategoryAddresses, normalize.Addresses)
	phones := normalizeSlot(s, ctx, fetched[domain.CategoryPhones], domain.CategoryPhones, normalize.Phones)
	social := normalizeSlot(s, ctx, fetched[domain.CategorySocialMedia], domain.CategorySocialMedia, normalize.SocialProfiles)
	criminal := normalizeSlot(s, ctx, fetched[domain.CategoryCriminalRecords], domain.CategoryCriminalRecords, normalize.CriminalRecords)
	property := normalizeSlot(s, ctx, fetched[domain.CategoryPropertyRecords], domain.CategoryPropertyRecords, normalize.PropertyRecords)
	relatives := normalizeSlot(s, ctx, fetched[domain.CategoryRelatives], domain.CategoryRelatives, normalize.Relatives)

	metadata := merged
	if len(property) > 0 {
		if metadata == nil {
			metadata = make(map[string]any)
		}
		metadata[domain.MetadataPropertyKey] = property
	}

	profile, err := backend.UpsertProfile(ctx, input.FirstName, input.LastName, store.ProfilePatch{
		Age:      input.Age,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	records := domain.CategoryRecords{
		Addresses: addresses,
		Phones:    phones,
		Social:    social,
		Criminal:  criminal,
		Relatives: relatives,
	}
	stampOwnership(profile.ID, &records, property)
	if err := backend.AppendCategoryRecords(ctx, profile.ID, records); err != nil {
		// Partial category persistence does not abort the search.
		s.logger.WarnContext(ctx, "category records partially persisted",
			slog.String("profile_id", profile.ID.String()),
			slog.String("error", err.Error()))
	}

	confidence := score.Score(score.Presence{
		PersonData: person != nil,
		Addresses:  len(addresses),
		Phones:     len(phones),
		Social:     len(social),
		Criminal:   len(criminal),
		Property:   len(property),
		Relatives:  len(relatives),
	})

	result, err := backend.SaveResult(ctx, query.ID, profile.ID, confidence)
	if err != nil {
		return nil, err
	}
	if _, err := backend.AppendHistory(ctx, owner, query.ID); err != nil {
		return nil, err
	}

	modeLabel := "remote"
	if mode.IsGuest() {
		modeLabel = "guest"
	}
	s.metrics.ObserveSearch(modeLabel, confidence)
	span.SetAttributes(
		attribute.String("search.mode", modeLabel),
		attribute.Int("search.confidence_score", confidence),
	)
	s.audit.Emit(ctx, audit.Event{
		OwnerID: query.OwnerID,
		Action:  audit.ActionSearchExecuted,
		Subject: input.FirstName + " " + input.LastName,
		Guest:   mode.IsGuest(),
	})

	return &domain.SearchOutcome{
		SearchQuery:     query,
		SearchResult:    result,
		PersonProfile:   profile,
		ConfidenceScore: confidence,
		CategoryRecords: records,
		PropertyRecords: property,
	}, nil
}

// GetResult returns the stored outcome for a past query.
func (s *Service) GetResult(ctx context.Context, mode domain.Mode, queryID uuid.UUID) (*domain.SearchOutcome, error) {
	return s.stores.Select(mode).GetResultByQueryID(ctx, mode.OwnerID(), queryID)
}

// DeleteQuery removes a query and everything hanging off it.
func (s *Service) DeleteQuery(ctx context.Context, mode domain.Mode, queryID uuid.UUID) error {
	if err := s.stores.Select(mode).DeleteQuery(ctx, mode.OwnerID(), queryID); err != nil {
		return err
	}
	s.audit.Emit(ctx, audit.Event{
		OwnerID: mode.OwnerID(),
		Action:  audit.ActionQueryDeleted,
		Subject: queryID.String(),
		Guest:   mode.IsGuest(),
	})
	return nil
}

// containFailure logs and counts one failed category fetch. The failure never
// propagates; the category simply contributes nothing.
func (s *Service) containFailure(ctx context.Context, cat domain.Category, err error) {
	class := string(provider.CategoryOf(err))
	s.logger.WarnContext(ctx, "category fetch failed",
		slog.String("category", string(cat)),
		slog.String("class", class),
		slog.String("error", err.Error()))
	s.metrics.ObserveProviderFailure(string(cat), class)
}

// personData normalizes a person-shaped slot, treating a parse failure as bad
// data from the provider.
func (s *Service) personData(ctx context.Context, res categoryResult, cat domain.Category) map[string]any {
	if res.err != nil || len(res.payload) == 0 {
		return nil
	}
	data, err := normalize.Person(res.payload)
	if err != nil {
		s.containFailure(ctx, cat, provider.NewError(provider.ErrorBadData, cat, "unparseable payload", err))
		return nil
	}
	return data
}

// normalizeSlot applies a category normalizer to its fetched slot, containing
// parse failures the same way fetch failures are contained.
func normalizeSlot[T any](s *Service, ctx context.Context, res categoryResult, cat domain.Category, fn func(json.RawMessage) ([]T, error)) []T {
	if res.err != nil || len(res.payload) == 0 {
		return nil
	}
	out, err := fn(res.payload)
	if err != nil {
		s.containFailure(ctx, cat, provider.NewError(provider.ErrorBadData, cat, "unparseable payload", err))
		return nil
	}
	return out
}

// stampOwnership assigns the profile ID to every normalized record before
// persistence so the returned outcome carries fully linked rows.
func stampOwnership(profileID uuid.UUID, recs *domain.CategoryRecords, property []domain.PropertyRecord) {
	for i := range recs.Addresses {
		recs.Addresses[i].PersonProfileID = profileID
	}
	for i := range recs.Phones {
		recs.Phones[i].PersonProfileID = profileID
	}
	for i := range recs.Social {
		recs.Social[i].PersonProfileID = profileID
	}
	for i := range recs.Criminal {
		recs.Criminal[i].PersonProfileID = profileID
	}
	for i := range recs.Relatives {
		recs.Relatives[i].PersonProfileID = profileID
	}
	for i := range property {
		property[i].PersonProfileID = profileID
	}
}
