package normalize

import (
	"encoding/json"
	"fmt"

	"persona/internal/domain"
)

// Per-category alias tables. Ordering is the resolution priority.
var (
	addressStreet    = aliases{"street", "street_address", "streetAddress", "address_line1", "addressLine1", "address"}
	addressCity      = aliases{"city", "locality"}
	addressState     = aliases{"state", "state_code", "stateCode", "region"}
	addressZip       = aliases{"zipCode", "zip_code", "zip", "postal_code", "postalCode"}
	addressCountry   = aliases{"country", "country_code", "countryCode"}
	addressIsCurrent = aliases{"isCurrent", "is_current", "current"}
	addressStart     = aliases{"startDate", "start_date", "from_date", "fromDate"}
	addressEnd       = aliases{"endDate", "end_date", "to_date", "toDate"}

	phoneNumber       = aliases{"number", "phone", "phone_number", "phoneNumber"}
	phoneType         = aliases{"type", "phone_type", "phoneType", "line_type", "lineType"}
	phoneIsCurrent    = aliases{"isCurrent", "is_current", "current"}
	phoneLastVerified = aliases{"lastVerified", "last_verified", "verified_at", "verifiedAt"}

	socialPlatform   = aliases{"platform", "network", "site"}
	socialUsername   = aliases{"username", "handle", "user_name", "userName", "screen_name", "screenName"}
	socialURL        = aliases{"url", "profile_url", "profileUrl", "link"}
	socialLastActive = aliases{"lastActive", "last_active", "last_seen", "lastSeen"}

	criminalCaseNumber   = aliases{"caseNumber", "case_number", "docket_number", "docketNumber", "docket"}
	criminalCharge       = aliases{"charge", "offense", "description"}
	criminalStatus       = aliases{"status", "disposition"}
	criminalRecordDate   = aliases{"recordDate", "record_date", "date", "filed_date", "filedDate"}
	criminalJurisdiction = aliases{"jurisdiction", "county", "court"}

	relativeFirstName    = aliases{"firstName", "first_name", "given_name", "givenName"}
	relativeLastName     = aliases{"lastName", "last_name", "surname", "family_name", "familyName"}
	relativeRelationship = aliases{"relationship", "relation", "relationship_type", "relationshipType"}
	relativeAge          = aliases{"age"}

	propertyAddress  = aliases{"address", "property_address", "propertyAddress", "street"}
	propertyCity     = aliases{"city"}
	propertyState    = aliases{"state"}
	propertyParcel   = aliases{"parcelNumber", "parcel_number", "parcel_id", "parcelId", "apn"}
	propertyAssessed = aliases{"assessedValue", "assessed_value", "market_value", "marketValue", "value"}
	propertySaleDate = aliases{"saleDate", "sale_date", "last_sale_date", "lastSaleDate"}
)

// personAliases canonicalizes the person-search and enrichment fields the
// merge step compares by name.
var personAliases = map[string]aliases{
	"firstName": {"firstName", "first_name", "given_name", "givenName"},
	"lastName":  {"lastName", "last_name", "surname", "family_name", "familyName"},
	"age":       {"age"},
	"location":  {"location", "city_state", "cityState"},
	"email":     {"email", "email_address", "emailAddress"},
	"phone":     {"phone", "phone_number", "phoneNumber"},
	"employer":  {"employer", "company", "employer_name", "employerName"},
}

// Addresses normalizes an address-history response.
func Addresses(raw json.RawMessage) ([]domain.Address, error) {
	recs, err := records(raw, "addresses", "address_history", "addressHistory", "data", "results")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Address, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.Address{
			Street:    addressStreet.str(rec, ""),
			City:      addressCity.str(rec, ""),
			State:     addressState.str(rec, ""),
			ZipCode:   addressZip.str(rec, ""),
			Country:   addressCountry.str(rec, "USA"),
			IsCurrent: addressIsCurrent.boolean(rec, false),
			StartDate: addressStart.str(rec, ""),
			EndDate:   addressEnd.str(rec, ""),
			Raw:       provenance(rec),
		})
	}
	return out, nil
}

// Phones normalizes a phone-search response.
func Phones(raw json.RawMessage) ([]domain.PhoneNumber, error) {
	recs, err := records(raw, "phones", "phone_numbers", "phoneNumbers", "data", "results")
	if err != nil {
		return nil, err
	}
	out := make([]domain.PhoneNumber, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.PhoneNumber{
			Number:       phoneNumber.str(rec, ""),
			Type:         phoneType.str(rec, "mobile"),
			IsCurrent:    phoneIsCurrent.boolean(rec, true),
			LastVerified: phoneLastVerified.str(rec, ""),
			Raw:          provenance(rec),
		})
	}
	return out, nil
}

// SocialProfiles normalizes a social-media response.
func SocialProfiles(raw json.RawMessage) ([]domain.SocialMediaProfile, error) {
	recs, err := records(raw, "socialMedia", "social_media", "profiles", "data", "results")
	if err != nil {
		return nil, err
	}
	out := make([]domain.SocialMediaProfile, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.SocialMediaProfile{
			Platform:   socialPlatform.str(rec, ""),
			Username:   socialUsername.str(rec, ""),
			URL:        socialURL.str(rec, ""),
			LastActive: socialLastActive.str(rec, ""),
			Raw:        provenance(rec),
		})
	}
	return out, nil
}

// CriminalRecords normalizes a criminal-records response.
func CriminalRecords(raw json.RawMessage) ([]domain.CriminalRecord, error) {
	recs, err := records(raw, "records", "criminal_records", "criminalRecords", "data", "results")
	if err != nil {
		return nil, err
	}
	out := make([]domain.CriminalRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.CriminalRecord{
			CaseNumber:   criminalCaseNumber.str(rec, ""),
			Charge:       criminalCharge.str(rec, ""),
			Status:       criminalStatus.str(rec, "unknown"),
			RecordDate:   criminalRecordDate.str(rec, ""),
			Jurisdiction: criminalJurisdiction.str(rec, ""),
			Raw:          provenance(rec),
		})
	}
	return out, nil
}

// Relatives normalizes a relatives response.
func Relatives(raw json.RawMessage) ([]domain.Relative, error) {
	recs, err := records(raw, "relatives", "data", "results")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Relative, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.Relative{
			FirstName:    relativeFirstName.str(rec, ""),
			LastName:     relativeLastName.str(rec, ""),
			Relationship: relativeRelationship.str(rec, "unknown"),
			Age:          relativeAge.intPtr(rec),
			Raw:          provenance(rec),
		})
	}
	return out, nil
}

// PropertyRecords normalizes a property-records response.
func PropertyRecords(raw json.RawMessage) ([]domain.PropertyRecord, error) {
	recs, err := records(raw, "properties", "property_records", "propertyRecords", "data", "results")
	if err != nil {
		return nil, err
	}
	out := make([]domain.PropertyRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.PropertyRecord{
			Address:       propertyAddress.str(rec, ""),
			City:          propertyCity.str(rec, ""),
			State:         propertyState.str(rec, ""),
			ParcelNumber:  propertyParcel.str(rec, ""),
			AssessedValue: propertyAssessed.float(rec),
			SaleDate:      propertySaleDate.str(rec, ""),
			Raw:           provenance(rec),
		})
	}
	return out, nil
}

// Person normalizes the person-search response into profile metadata. Known
// fields resolve to canonical names; unrecognized provider fields are carried
// through untouched so nothing the provider knows is lost.
func Person(raw json.RawMessage) (map[string]any, error) {
	return personObject(raw)
}

// Enrichment normalizes the contact-enrichment response the same way Person
// does; the merge step decides which fields survive.
func Enrichment(raw json.RawMessage) (map[string]any, error) {
	return personObject(raw)
}

func personObject(raw json.RawMessage) (map[string]any, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse provider payload: %w", err)
	}

	rec, ok := payload.(map[string]any)
	if !ok {
		// A single-element array is tolerated; providers disagree on shape.
		if list, isList := payload.([]any); isList && len(list) > 0 {
			if first, isObj := list[0].(map[string]any); isObj {
				rec = first
			}
		}
		if rec == nil {
			return nil, fmt.Errorf("provider payload is neither object nor array")
		}
	}

	out := make(map[string]any, len(rec))
	claimed := make(map[string]bool)
	for canonical, candidates := range personAliases {
		if v, found := candidates.resolve(rec); found {
			out[canonical] = v
			for _, key := range candidates {
				claimed[key] = true
			}
		}
	}
	for key, v := range rec {
		if !claimed[key] {
			out[key] = v
		}
	}
	return out, nil
}

// MergeEnrichment overlays enrichment fields onto person metadata without
// overwriting person-search fields that are already present and non-empty.
func MergeEnrichment(person, enrichment map[string]any) map[string]any {
	if person == nil && enrichment == nil {
		return nil
	}
	merged := make(map[string]any, len(person)+len(enrichment))
	for k, v := range person {
		merged[k] = v
	}
	for k, v := range enrichment {
		if existing, ok := merged[k]; ok {
			if s, isStr := existing.(string); !isStr || s != "" {
				continue
			}
		}
		merged[k] = v
	}
	return merged
}
