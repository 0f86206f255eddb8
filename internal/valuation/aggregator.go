package valuation

import (
	"context"
	"fmt"
	"sync"

	"rust-tracker/internal/cache"
	"rust-tracker/internal/catalog"
	"rust-tracker/internal/models"
)

// PriceSource resolves an item's current price record, refreshing as needed.
type PriceSource interface {
	Get(ctx context.Context, item catalog.Item) cache.PriceRecord
}

// HoldingsSource resolves one account's holding of one item at a price.
type HoldingsSource interface {
	Get(ctx context.Context, user models.TrackedUser, item catalog.Item, price int64) cache.HoldingEntry
}

// AccountRegistry enumerates the tracked accounts.
type AccountRegistry interface {
	ListTrackedUsers(ctx context.Context) ([]models.TrackedUser, error)
}

// Aggregator combines a fresh-or-cached price with fresh-or-cached holdings
// for every tracked account into one item snapshot.
type Aggregator struct {
	prices   PriceSource
	holdings HoldingsSource
	registry AccountRegistry
}

func NewAggregator(prices PriceSource, holdings HoldingsSource, registry AccountRegistry) *Aggregator {
	return &Aggregator{
		prices:   prices,
		holdings: holdings,
		registry: registry,
	}
}

// ComputeSnapshot builds the snapshot for one catalog item. Upstream fetch
// failures have already degraded to cached values inside the sources; the
// only failure left is being unable to enumerate accounts.
func (a *Aggregator) ComputeSnapshot(ctx context.Context, item catalog.Item) (Snapshot, error) {
	price := a.prices.Get(ctx, item)

	users, err := a.registry.ListTrackedUsers(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list tracked accounts: %w", err)
	}

	// Accounts resolve independently and in no particular order. Each
	// entry is a consistent read of that account at resolution time, not
	// part of a global point-in-time snapshot.
	entries := make([]cache.HoldingEntry, len(users))
	var wg sync.WaitGroup
	for i, user := range users {
		wg.Add(1)
		go func(i int, user models.TrackedUser) {
			defer wg.Done()
			entries[i] = a.holdings.Get(ctx, user, item, price.Price)
		}(i, user)
	}
	wg.Wait()

	counts := make(map[string]AccountLine, len(users))
	totalAmount := 0
	totalUSD := 0.0
	totalNoFee := 0.0
	for i, user := range users {
		e := entries[i]
		counts[user.SteamID] = AccountLine{Name: e.Name, Amount: e.Amount, USD: e.USD, USDNoFee: e.USDNoFee}
		totalAmount += e.Amount
		totalUSD += e.USD
		totalNoFee += e.USDNoFee
	}

	return Snapshot{
		Success:              true,
		ItemCounts:           counts,
		Price:                float64(price.Price) / 100,
		PriceNoFee:           priceNoFee(price.Price),
		TotalBanditsAmount:   totalAmount,
		TotalBanditsUSD:      round2(totalUSD),
		TotalBanditsUSDNoFee: round2(totalNoFee),
		SteamMarketSupply:    price.Supply,
	}, nil
}
