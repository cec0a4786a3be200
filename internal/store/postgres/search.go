package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"persona/internal/domain"
	"persona/internal/store"
)

func (s *Store) SaveQuery(ctx context.Context, owner string, params store.QueryParams) (*domain.SearchQuery, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	query := &domain.SearchQuery{
		ID:        uuid.New(),
		OwnerID:   owner,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Age:       params.Age,
		Location:  params.Location,
		CreatedAt: s.clock(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_queries (id, owner_id, first_name, last_name, age, location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, query.ID, query.OwnerID, query.FirstName, query.LastName, nullInt(query.Age), query.Location, query.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save search query: %w", err)
	}
	return query, nil
}

// UpsertProfile matches on exact (first_name, last_name); the unique
// constraint makes the insert race-free.
func (s *Store) UpsertProfile(ctx context.Context, firstName, lastName string, patch store.ProfilePatch) (*domain.PersonProfile, error) {
	var metadata []byte
	if patch.Metadata != nil {
		var err error
		metadata, err = json.Marshal(patch.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal profile metadata: %w", err)
		}
	}
	profile := &domain.PersonProfile{FirstName: firstName, LastName: lastName}
	var (
		age sql.NullInt64
		raw []byte
	)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO person_profiles (id, first_name, last_name, age, last_updated, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (first_name, last_name) DO UPDATE SET
			age = COALESCE(EXCLUDED.age, person_profiles.age),
			last_updated = EXCLUDED.last_updated,
			metadata = COALESCE(EXCLUDED.metadata, person_profiles.metadata)
		RETURNING id, age, last_updated, metadata
	`, uuid.New(), firstName, lastName, nullInt(patch.Age), s.clock(), nullBytes(metadata)).
		Scan(&profile.ID, &age, &profile.LastUpdated, &raw)
	if err != nil {
		return nil, fmt.Errorf("upsert person profile: %w", err)
	}
	profile.Age = intPtr(age)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &profile.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal profile metadata: %w", err)
		}
	}
	return profile, nil
}

// AppendCategoryRecords inserts each category independently; one category
// failing must not block the rest. The joined error carries every failure.
func (s *Store) AppendCategoryRecords(ctx context.Context, profileID uuid.UUID, recs domain.CategoryRecords) error {
	var errs []error
	if err := s.insertAddresses(ctx, profileID, recs.Addresses); err != nil {
		errs = append(errs, err)
	}
	if err := s.insertPhones(ctx, profileID, recs.Phones); err != nil {
		errs = append(errs, err)
	}
	if err := s.insertSocial(ctx, profileID, recs.Social); err != nil {
		errs = append(errs, err)
	}
	if err := s.insertCriminal(ctx, profileID, recs.Criminal); err != nil {
		errs = append(errs, err)
	}
	if err := s.insertRelatives(ctx, profileID, recs.Relatives); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Store) insertAddresses(ctx context.Context, profileID uuid.UUID, rows []domain.Address) error {
	for _, row := range rows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO addresses (id, person_profile_id, street, city, state, zip_code, country, is_current, start_date, end_date, raw)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, newID(row.ID), profileID, row.Street, row.City, row.State, row.ZipCode, row.Country, row.IsCurrent, row.StartDate, row.EndDate, nullBytes(row.Raw))
		if err != nil {
			return fmt.Errorf("insert address: %w", err)
		}
	}
	return nil
}

func (s *Store) insertPhones(ctx context.Context, profileID uuid.UUID, rows []domain.PhoneNumber) error {
	for _, row := range rows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO phone_numbers (id, person_profile_id, number, type, is_current, last_verified, raw)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, newID(row.ID), profileID, row.Number, row.Type, row.IsCurrent, row.LastVerified, nullBytes(row.Raw))
		if err != nil {
			return fmt.Errorf("insert phone number: %w", err)
		}
	}
	return nil
}

func (s *Store) insertSocial(ctx context.Context, profileID uuid.UUID, rows []domain.SocialMediaProfile) error {
	for _, row := range rows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO social_media_profiles (id, person_profile_id, platform, username, url, last_active, raw)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, newID(row.ID), profileID, row.Platform, row.Username, row.URL, row.LastActive, nullBytes(row.Raw))
		if err != nil {
			return fmt.Errorf("insert social media profile: %w", err)
		}
	}
	return nil
}

func (s *Store) insertCriminal(ctx context.Context, profileID uuid.UUID, rows []domain.CriminalRecord) error {
	for _, row := range rows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO criminal_records (id, person_profile_id, case_number, charge, status, record_date, jurisdiction, raw)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, newID(row.ID), profileID, row.CaseNumber, row.Charge, row.Status, row.RecordDate, row.Jurisdiction, nullBytes(row.Raw))
		if err != nil {
			return fmt.Errorf("insert criminal record: %w", err)
		}
	}
	return nil
}

func (s *Store) insertRelatives(ctx context.Context, profileID uuid.UUID, rows []domain.Relative) error {
	for _, row := range rows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO relatives (id, person_profile_id, first_name, last_name, relationship, age, raw)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, newID(row.ID), profileID, row.FirstName, row.LastName, row.Relationship, nullInt(row.Age), nullBytes(row.Raw))
		if err != nil {
			return fmt.Errorf("insert relative: %w", err)
		}
	}
	return nil
}

func (s *Store) SaveResult(ctx context.Context, queryID, profileID uuid.UUID, confidenceScore int) (*domain.SearchResult, error) {
	result := &domain.SearchResult{
		ID:              uuid.New(),
		SearchQueryID:   queryID,
		PersonProfileID: profileID,
		ConfidenceScore: confidenceScore,
		CreatedAt:       s.clock(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_results (id, search_query_id, person_profile_id, confidence_score, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, result.ID, result.SearchQueryID, result.PersonProfileID, result.ConfidenceScore, result.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save search result: %w", err)
	}
	return result, nil
}

// DeleteQuery removes the query; the schema cascades to its result, history
// entries, and favorites. Person profiles are shared and survive.
func (s *Store) DeleteQuery(ctx context.Context, owner string, queryID uuid.UUID) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM search_queries WHERE id = $1 AND owner_id = $2
	`, queryID, owner)
	if err != nil {
		return fmt.Errorf("delete search query: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetResultByQueryID(ctx context.Context, owner string, queryID uuid.UUID) (*domain.SearchOutcome, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	query := &domain.SearchQuery{ID: queryID}
	result := &domain.SearchResult{SearchQueryID: queryID}
	profile := &domain.PersonProfile{}
	var (
		queryAge   sql.NullInt64
		profileAge sql.NullInt64
		metadata   []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT q.owner_id, q.first_name, q.last_name, q.age, q.location, q.created_at,
		       r.id, r.person_profile_id, r.confidence_score, r.created_at,
		       p.id, p.first_name, p.last_name, p.age, p.last_updated, p.metadata
		FROM search_queries q
		JOIN search_results r ON r.search_query_id = q.id
		JOIN person_profiles p ON p.id = r.person_profile_id
		WHERE q.id = $1 AND q.owner_id = $2
	`, queryID, owner).Scan(
		&query.OwnerID, &query.FirstName, &query.LastName, &queryAge, &query.Location, &query.CreatedAt,
		&result.ID, &result.PersonProfileID, &result.ConfidenceScore, &result.CreatedAt,
		&profile.ID, &profile.FirstName, &profile.LastName, &profileAge, &profile.LastUpdated, &metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get search result: %w", err)
	}
	query.Age = intPtr(queryAge)
	profile.Age = intPtr(profileAge)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &profile.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal profile metadata: %w", err)
		}
	}

	records, err := s.loadCategoryRecords(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return &domain.SearchOutcome{
		SearchQuery:     query,
		SearchResult:    result,
		PersonProfile:   profile,
		ConfidenceScore: result.ConfidenceScore,
		CategoryRecords: records,
		PropertyRecords: domain.PropertyRecordsFromMetadata(profile.Metadata),
	}, nil
}

func (s *Store) loadCategoryRecords(ctx context.Context, profileID uuid.UUID) (domain.CategoryRecords, error) {
	var records domain.CategoryRecords

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, street, city, state, zip_code, country, is_current, start_date, end_date, raw
		FROM addresses WHERE person_profile_id = $1
	`, profileID)
	if err != nil {
		return records, fmt.Errorf("load addresses: %w", err)
	}
	for rows.Next() {
		row := domain.Address{PersonProfileID: profileID}
		var raw []byte
		if err := rows.Scan(&row.ID, &row.Street, &row.City, &row.State, &row.ZipCode, &row.Country, &row.IsCurrent, &row.StartDate, &row.EndDate, &raw); err != nil {
			rows.Close()
			return records, fmt.Errorf("scan address: %w", err)
		}
		row.Raw = raw
		records.Addresses = append(records.Addresses, row)
	}
	if err := closeRows(rows); err != nil {
		return records, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, number, type, is_current, last_verified, raw
		FROM phone_numbers WHERE person_profile_id = $1
	`, profileID)
	if err != nil {
		return records, fmt.Errorf("load phone numbers: %w", err)
	}
	for rows.Next() {
		row := domain.PhoneNumber{PersonProfileID: profileID}
		var raw []byte
		if err := rows.Scan(&row.ID, &row.Number, &row.Type, &row.IsCurrent, &row.LastVerified, &raw); err != nil {
			rows.Close()
			return records, fmt.Errorf("scan phone number: %w", err)
		}
		row.Raw = raw
		records.Phones = append(records.Phones, row)
	}
	if err := closeRows(rows); err != nil {
		return records, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, platform, username, url, last_active, raw
		FROM social_media_profiles WHERE person_profile_id = $1
	`, profileID)
	if err != nil {
		return records, fmt.Errorf("load social media profiles: %w", err)
	}
	for rows.Next() {
		row := domain.SocialMediaProfile{PersonProfileID: profileID}
		var raw []byte
		if err := rows.Scan(&row.ID, &row.Platform, &row.Username, &row.URL, &row.LastActive, &raw); err != nil {
			rows.Close()
			return records, fmt.Errorf("scan social media profile: %w", err)
		}
		row.Raw = raw
		records.Social = append(records.Social, row)
	}
	if err := closeRows(rows); err != nil {
		return records, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, case_number, charge, status, record_date, jurisdiction, raw
		FROM criminal_records WHERE person_profile_id = $1
	`, profileID)
	if err != nil {
		return records, fmt.Errorf("load criminal records: %w", err)
	}
	for rows.Next() {
		row := domain.CriminalRecord{PersonProfileID: profileID}
		var raw []byte
		if err := rows.Scan(&row.ID, &row.CaseNumber, &row.Charge, &row.Status, &row.RecordDate, &row.Jurisdiction, &raw); err != nil {
			rows.Close()
			return records, fmt.Errorf("scan criminal record: %w", err)
		}
		row.Raw = raw
		records.Criminal = append(records.Criminal, row)
	}
	if err := closeRows(rows); err != nil {
		return records, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, relationship, age, raw
		FROM relatives WHERE person_profile_id = $1
	`, profileID)
	if err != nil {
		return records, fmt.Errorf("load relatives: %w", err)
	}
	for rows.Next() {
		row := domain.Relative{PersonProfileID: profileID}
		var (
			age sql.NullInt64
			raw []byte
		)
		if err := rows.Scan(&row.ID, &row.FirstName, &row.LastName, &row.Relationship, &age, &raw); err != nil {
			rows.Close()
			return records, fmt.Errorf("scan relative: %w", err)
		}
		row.Age = intPtr(age)
		row.Raw = raw
		records.Relatives = append(records.Relatives, row)
	}
	if err := closeRows(rows); err != nil {
		return records, err
	}

	return records, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate rows: %w", err)
	}
	return rows.Close()
}

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
