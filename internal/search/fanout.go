package search

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"persona/internal/domain"
	"persona/internal/provider"
)

type categoryResult struct {
	payload json.RawMessage
	err     error
}

// fetchAll fans out one fetch per category and waits for every slot to
// settle. The group is a pure barrier: goroutines write their own slot and
// never return an error, so one category's failure cannot cancel a sibling.
func fetchAll(ctx context.Context, fetcher provider.Fetcher, params provider.Params) map[domain.Category]categoryResult {
	slots := make([]categoryResult, len(domain.AllCategories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range domain.AllCategories {
		g.Go(func() error {
			payload, err := fetcher.FetchCategory(gctx, cat, params)
			slots[i] = categoryResult{payload: payload, err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[domain.Category]categoryResult, len(slots))
	for i, cat := range domain.AllCategories {
		out[cat] = slots[i]
	}
	return out
}
