package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Addresses_SnakeAndCamelCaseEquivalent(t *testing.T) {
	snake := json.RawMessage(`{"addresses": [{
		"street_address": "100 Main St",
		"city": "Springfield",
		"state_code": "IL",
		"zip_code": "62701",
		"is_current": true,
		"start_date": "2019-01"
	}]}`)
	camel := json.RawMessage(`{"addresses": [{
		"streetAddress": "100 Main St",
		"city": "Springfield",
		"stateCode": "IL",
		"zipCode": "62701",
		"isCurrent": true,
		"startDate": "2019-01"
	}]}`)

	fromSnake, err := Addresses(snake)
	require.NoError(t, err)
	fromCamel, err := Addresses(camel)
	require.NoError(t, err)

	require.Len(t, fromSnake, 1)
	require.Len(t, fromCamel, 1)

	// Raw preserves the original spelling, so compare everything else.
	fromSnake[0].Raw = nil
	fromCamel[0].Raw = nil
	assert.Equal(t, fromSnake[0], fromCamel[0])
	assert.Equal(t, "100 Main St", fromSnake[0].Street)
	assert.Equal(t, "62701", fromSnake[0].ZipCode)
	assert.True(t, fromSnake[0].IsCurrent)
}

func Test_Addresses_Defaults(t *testing.T) {
	raw := json.RawMessage(`[{"street": "1 Elm Ave", "city": "Boston", "state": "MA"}]`)

	addrs, err := Addresses(raw)
	require.NoError(t, err)
	require.Len(t, addrs, 1)

	assert.Equal(t, "USA", addrs[0].Country)
	assert.False(t, addrs[0].IsCurrent)
	assert.Empty(t, addrs[0].ZipCode)
}

func Test_Addresses_BareArrayAndWrappedObjectEquivalent(t *testing.T) {
	bare := json.RawMessage(`[{"street": "9 Oak Ln"}]`)
	wrapped := json.RawMessage(`{"address_history": [{"street": "9 Oak Ln"}]}`)

	fromBare, err := Addresses(bare)
	require.NoError(t, err)
	fromWrapped, err := Addresses(wrapped)
	require.NoError(t, err)

	assert.Equal(t, fromBare, fromWrapped)
}

func Test_Addresses_UnknownWrapperYieldsEmpty(t *testing.T) {
	raw := json.RawMessage(`{"status": "ok", "count": 0}`)

	addrs, err := Addresses(raw)
	require.NoError(t, err)
	assert.Empty(t, addrs)
}

func Test_Addresses_ScalarPayloadIsParseError(t *testing.T) {
	_, err := Addresses(json.RawMessage(`"no results"`))
	require.Error(t, err)

	_, err = Addresses(json.RawMessage(`{invalid`))
	require.Error(t, err)
}

func Test_Phones_Defaults(t *testing.T) {
	raw := json.RawMessage(`{"phones": [{"number": "555-0100"}]}`)

	phones, err := Phones(raw)
	require.NoError(t, err)
	require.Len(t, phones, 1)

	assert.Equal(t, "555-0100", phones[0].Number)
	assert.Equal(t, "mobile", phones[0].Type)
	assert.True(t, phones[0].IsCurrent)
}

func Test_Phones_StringBooleans(t *testing.T) {
	raw := json.RawMessage(`{"phoneNumbers": [
		{"phone_number": "555-0100", "line_type": "landline", "current": "no"},
		{"phone_number": "555-0101", "current": "yes"}
	]}`)

	phones, err := Phones(raw)
	require.NoError(t, err)
	require.Len(t, phones, 2)

	assert.Equal(t, "landline", phones[0].Type)
	assert.False(t, phones[0].IsCurrent)
	assert.True(t, phones[1].IsCurrent)
}

func Test_SocialProfiles_AliasResolution(t *testing.T) {
	raw := json.RawMessage(`{"profiles": [
		{"network": "twitter", "screen_name": "jdoe", "profile_url": "https://twitter.com/jdoe"}
	]}`)

	profiles, err := SocialProfiles(raw)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	assert.Equal(t, "twitter", profiles[0].Platform)
	assert.Equal(t, "jdoe", profiles[0].Username)
	assert.Equal(t, "https://twitter.com/jdoe", profiles[0].URL)
}

func Test_CriminalRecords_StatusDefault(t *testing.T) {
	raw := json.RawMessage(`{"records": [
		{"docket_number": "CR-2020-114", "offense": "Speeding", "county": "Cook"}
	]}`)

	recs, err := CriminalRecords(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, "CR-2020-114", recs[0].CaseNumber)
	assert.Equal(t, "Speeding", recs[0].Charge)
	assert.Equal(t, "unknown", recs[0].Status)
	assert.Equal(t, "Cook", recs[0].Jurisdiction)
}

func Test_Relatives_AgeCoercion(t *testing.T) {
	raw := json.RawMessage(`{"relatives": [
		{"given_name": "Jane", "surname": "Doe", "relation": "sister", "age": 41},
		{"given_name": "Jim", "surname": "Doe", "age": "67"},
		{"given_name": "Pat", "surname": "Doe", "age": "unknown"}
	]}`)

	rels, err := Relatives(raw)
	require.NoError(t, err)
	require.Len(t, rels, 3)

	require.NotNil(t, rels[0].Age)
	assert.Equal(t, 41, *rels[0].Age)
	assert.Equal(t, "sister", rels[0].Relationship)

	require.NotNil(t, rels[1].Age)
	assert.Equal(t, 67, *rels[1].Age)
	assert.Equal(t, "unknown", rels[1].Relationship)

	assert.Nil(t, rels[2].Age)
}

func Test_PropertyRecords_ValueCoercion(t *testing.T) {
	raw := json.RawMessage(`{"properties": [
		{"property_address": "4 Birch Rd", "assessed_value": 310000},
		{"property_address": "5 Birch Rd", "market_value": "$1,250,000"}
	]}`)

	props, err := PropertyRecords(raw)
	require.NoError(t, err)
	require.Len(t, props, 2)

	assert.Equal(t, 310000.0, props[0].AssessedValue)
	assert.Equal(t, 1250000.0, props[1].AssessedValue)
}

func Test_Person_CanonicalizesAndCarriesUnknownKeys(t *testing.T) {
	raw := json.RawMessage(`{
		"given_name": "John",
		"last_name": "Doe",
		"age": 52,
		"city_state": "Austin, TX",
		"aka": ["Johnny D"]
	}`)

	person, err := Person(raw)
	require.NoError(t, err)

	assert.Equal(t, "John", person["firstName"])
	assert.Equal(t, "Doe", person["lastName"])
	assert.Equal(t, 52.0, person["age"])
	assert.Equal(t, "Austin, TX", person["location"])
	// Fields with no canonical name survive untouched.
	assert.Equal(t, []any{"Johnny D"}, person["aka"])
	assert.NotContains(t, person, "given_name")
}

func Test_Person_SingleElementArrayTolerated(t *testing.T) {
	raw := json.RawMessage(`[{"first_name": "Ada", "last_name": "Lovelace"}]`)

	person, err := Person(raw)
	require.NoError(t, err)

	assert.Equal(t, "Ada", person["firstName"])
	assert.Equal(t, "Lovelace", person["lastName"])
}

func Test_MergeEnrichment_PersonFieldsWin(t *testing.T) {
	person := map[string]any{
		"firstName": "John",
		"lastName":  "Doe",
		"email":     "",
	}
	enrichment := map[string]any{
		"firstName": "Jonathan",
		"email":     "jdoe@example.com",
		"employer":  "Acme Corp",
	}

	merged := MergeEnrichment(person, enrichment)

	assert.Equal(t, "John", merged["firstName"])
	assert.Equal(t, "Doe", merged["lastName"])
	// Empty strings count as absent, so enrichment fills them.
	assert.Equal(t, "jdoe@example.com", merged["email"])
	assert.Equal(t, "Acme Corp", merged["employer"])
}

func Test_MergeEnrichment_NilInputs(t *testing.T) {
	assert.Nil(t, MergeEnrichment(nil, nil))

	onlyEnrichment := MergeEnrichment(nil, map[string]any{"email": "a@b.c"})
	assert.Equal(t, "a@b.c", onlyEnrichment["email"])

	onlyPerson := MergeEnrichment(map[string]any{"firstName": "Ada"}, nil)
	assert.Equal(t, "Ada", onlyPerson["firstName"])
}
