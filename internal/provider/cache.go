package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"persona/internal/domain"
	"persona/internal/platform/metrics"
)

const cacheKeyPrefix = "persona:provider:"

//go:generate mockgen -source=cache.go -destination=mocks/mocks.go -package=mocks Fetcher

// Fetcher is the port the cache wraps and the orchestrator consumes.
type Fetcher interface {
	FetchCategory(ctx context.Context, cat domain.Category, params Params) (json.RawMessage, error)
}

// CachedFetcher is a read-through cache over a Fetcher. Cache failures are
// logged and degrade to a direct fetch; a hit skips the provider entirely.
type CachedFetcher struct {
	inner   Fetcher
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewCachedFetcher wraps inner with a Redis response cache.
func NewCachedFetcher(inner Fetcher, client *redis.Client, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *CachedFetcher {
	return &CachedFetcher{inner: inner, client: client, ttl: ttl, logger: logger, metrics: m}
}

func (f *CachedFetcher) FetchCategory(ctx context.Context, cat domain.Category, params Params) (json.RawMessage, error) {
	key := f.cacheKey(cat, params)

	cached, err := f.client.Get(ctx, key).Bytes()
	if err == nil {
		if f.metrics != nil {
			f.metrics.ObserveProviderCache(string(cat), true)
		}
		return json.RawMessage(cached), nil
	}
	if !errors.Is(err, redis.Nil) {
		f.logger.WarnContext(ctx, "provider cache read failed", "category", cat, "error", err)
	}
	if f.metrics != nil {
		f.metrics.ObserveProviderCache(string(cat), false)
	}

	raw, err := f.inner.FetchCategory(ctx, cat, params)
	if err != nil {
		return nil, err
	}

	if err := f.client.Set(ctx, key, []byte(raw), f.ttl).Err(); err != nil {
		f.logger.WarnContext(ctx, "provider cache write failed", "category", cat, "error", err)
	}
	return raw, nil
}

func (f *CachedFetcher) cacheKey(cat domain.Category, params Params) string {
	age := ""
	if params.Age != nil {
		age = fmt.Sprintf("%d", *params.Age)
	}
	return cacheKeyPrefix + string(cat) + ":" + strings.ToLower(strings.Join([]string{
		params.FirstName, params.LastName, age, params.Location,
	}, "|"))
}
