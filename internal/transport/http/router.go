// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"persona/internal/platform/metrics"
	"persona/internal/platform/middleware"
	"persona/internal/search"
	"persona/internal/store"
	"persona/internal/submission"
)

// AccountEnsurer lazily creates the account row behind an authenticated
// identity. The remote store implements it; nil disables the hook.
type AccountEnsurer interface {
	EnsureUser(ctx context.Context, owner, email string) error
}

// Dependencies carries everything the router wires together.
type Dependencies struct {
	Search      *search.Service
	Submissions *submission.Service
	Stores      *store.Selector
	Accounts    AccountEnsurer
	Validator   middleware.JWTValidator
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// NewRouter wires all endpoints behind the shared middleware stack.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Identity(deps.Validator, deps.Logger))
		api.Use(ensureAccount(deps.Accounts, deps.Logger))
		NewSearchHandler(deps.Search).Register(api)
		NewUserHandler(deps.Stores).Register(api)
		NewSubmissionHandler(deps.Submissions).Register(api)
	})
	return r
}

// ensureAccount creates the user row on first authenticated touch. Best
// effort: a failure here surfaces later as ErrNotFound on profile reads, not
// as a blocked request.
func ensureAccount(accounts AccountEnsurer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if accounts != nil && !middleware.IsGuestRequest(ctx) {
				if owner := middleware.GetUserID(ctx); owner != "" {
					if err := accounts.EnsureUser(ctx, owner, middleware.GetEmail(ctx)); err != nil {
						logger.WarnContext(ctx, "ensure account failed",
							slog.String("owner", owner),
							slog.String("error", err.Error()))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
