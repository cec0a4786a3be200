package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"persona/internal/audit"
	"persona/internal/domain"
	"persona/internal/jwttoken"
	"persona/internal/platform/metrics"
	"persona/internal/provider"
	"persona/internal/provider/mocks"
	"persona/internal/search"
	"persona/internal/store"
	"persona/internal/store/local"
	"persona/internal/submission"
	"persona/pkg/testutil"
)

// newTestRouter serves guest traffic against a real local store; the remote
// slot is the unavailable store, mirroring the DB-less deployment wiring.
func newTestRouter(t *testing.T, payloads map[domain.Category]string) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchCategory(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cat domain.Category, _ provider.Params) (json.RawMessage, error) {
			payload, ok := payloads[cat]
			if !ok {
				return nil, provider.NewError(provider.ErrorOutage, cat, "service unavailable", errors.New("503"))
			}
			return json.RawMessage(payload), nil
		}).
		AnyTimes()

	localStore, err := local.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, localStore.EnableGuestMode())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewFor(prometheus.NewRegistry())
	publisher := audit.NewPublisher(audit.NewMemorySink(), logger)
	stores := store.NewSelector(store.NewUnavailable(), localStore)

	return NewRouter(Dependencies{
		Search:      search.NewService(stores, fetcher, publisher, logger, m),
		Submissions: submission.NewService(submission.NewInMemoryStore(), publisher, logger, m),
		Stores:      stores,
		Validator:   jwttoken.NewJWTService("test-signing-key", "persona"),
		Logger:      logger,
		Metrics:     m,
	})
}

func Test_Search_GuestFlow(t *testing.T) {
	router := newTestRouter(t, map[domain.Category]string{
		domain.CategoryPersonSearch: `{"first_name":"John","last_name":"Doe"}`,
		domain.CategoryAddresses:    `[{"street":"1 Main St"},{"street":"2 Oak Ave"}]`,
	})

	req := testutil.AsGuest(testutil.NewJSONRequest(t, http.MethodPost, "/api/search",
		map[string]string{"firstName": "John", "lastName": "Doe"}))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	outcome := testutil.UnmarshalResponse[domain.SearchOutcome](t, rr)
	assert.Equal(t, 35, outcome.ConfidenceScore)
	require.NotNil(t, outcome.SearchQuery)

	// the result is retrievable
	req = testutil.AsGuest(testutil.NewRequest(t, http.MethodGet, "/api/search/"+outcome.SearchQuery.ID.String()))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	// history recorded the execution
	req = testutil.AsGuest(testutil.NewRequest(t, http.MethodGet, "/api/history"))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	entries := testutil.UnmarshalResponse[[]domain.SearchHistoryEntry](t, rr)
	assert.Len(t, *entries, 1)

	// delete cascades
	req = testutil.AsGuest(testutil.NewRequest(t, http.MethodDelete, "/api/search/"+outcome.SearchQuery.ID.String()))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	req = testutil.AsGuest(testutil.NewRequest(t, http.MethodGet, "/api/search/"+outcome.SearchQuery.ID.String()))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func Test_Search_InvalidBody(t *testing.T) {
	router := newTestRouter(t, nil)

	req := testutil.AsGuest(testutil.NewJSONRequest(t, http.MethodPost, "/api/search",
		map[string]string{"firstName": "John"}))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertErrorContains(t, rr, "lastName")

	req = testutil.AsGuest(testutil.NewRequest(t, http.MethodGet, "/api/search/not-a-uuid"))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func Test_History_RequiresIdentityOrGuest(t *testing.T) {
	router := newTestRouter(t, nil)

	req := testutil.NewRequest(t, http.MethodGet, "/api/history")
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func Test_InvalidBearerToken(t *testing.T) {
	router := newTestRouter(t, nil)

	req := testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/api/history"), "garbage")
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func Test_ValidBearerToken_RemoteStoreUnavailable(t *testing.T) {
	router := newTestRouter(t, nil)

	token, err := jwttoken.NewJWTService("test-signing-key", "persona").
		GenerateAccessToken("user-123", "user@example.com", time.Hour)
	require.NoError(t, err)

	// Without a configured database, authenticated requests fail cleanly
	// with 401 rather than reaching a backend that does not exist.
	for _, path := range []string{"/api/history", "/api/favorites", "/api/profile"} {
		req := testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, path), token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	}

	req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPost, "/api/search",
		map[string]string{"firstName": "John", "lastName": "Doe"}), token)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func Test_Favorites_GuestFlow(t *testing.T) {
	router := newTestRouter(t, map[domain.Category]string{
		domain.CategoryPersonSearch: `{"first_name":"John"}`,
	})

	req := testutil.AsGuest(testutil.NewJSONRequest(t, http.MethodPost, "/api/search",
		map[string]string{"firstName": "John", "lastName": "Doe"}))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	outcome := testutil.UnmarshalResponse[domain.SearchOutcome](t, rr)

	req = testutil.AsGuest(testutil.NewJSONRequest(t, http.MethodPost, "/api/favorites",
		map[string]string{"queryId": outcome.SearchQuery.ID.String(), "label": "lead"}))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	fav := testutil.UnmarshalResponse[domain.FavoriteEntry](t, rr)

	req = testutil.AsGuest(testutil.NewRequest(t, http.MethodGet,
		"/api/favorites/status?queryId="+outcome.SearchQuery.ID.String()))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "favorited", true)

	req = testutil.AsGuest(testutil.NewJSONRequest(t, http.MethodPatch,
		"/api/favorites/"+fav.ID.String()+"/label", map[string]string{"label": "verified"}))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "label", "verified")

	req = testutil.AsGuest(testutil.NewRequest(t, http.MethodDelete, "/api/favorites/"+fav.ID.String()))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)
}

func Test_Profile_Guest(t *testing.T) {
	router := newTestRouter(t, nil)

	req := testutil.AsGuest(testutil.NewRequest(t, http.MethodGet, "/api/profile"))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "email", "guest@persona.local")

	req = testutil.AsGuest(testutil.NewJSONRequest(t, http.MethodPatch, "/api/profile",
		map[string]string{"firstName": "Ada"}))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "firstName", "Ada")
}

func Test_Submissions_GuestRejected(t *testing.T) {
	router := newTestRouter(t, nil)

	req := testutil.AsGuest(testutil.NewJSONRequest(t, http.MethodPost, "/api/submissions", map[string]any{
		"firstName": "John",
		"lastName":  "Doe",
		"proofs":    []string{"uploads/p.pdf"},
	}))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertErrorContains(t, rr, "guest")
}

func Test_Submissions_RequireAuth(t *testing.T) {
	router := newTestRouter(t, nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/submissions", map[string]any{
		"firstName": "John",
		"lastName":  "Doe",
		"proofs":    []string{"uploads/p.pdf"},
	})
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func Test_Healthz(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "status", "ok")
}
