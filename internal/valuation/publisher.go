package valuation

import (
	"context"
	"sync"

	"rust-tracker/internal/catalog"
	"rust-tracker/internal/models"
)

// SnapshotComputer produces a fresh snapshot for an item.
type SnapshotComputer interface {
	ComputeSnapshot(ctx context.Context, item catalog.Item) (Snapshot, error)
}

// SeedStore supplies the persisted rows replayed into snapshots at startup.
type SeedStore interface {
	AllPrices(ctx context.Context) (map[string]int64, error)
	AllSupplies(ctx context.Context) (map[string]int64, error)
	AllHoldings(ctx context.Context) ([]models.ItemCount, error)
}

// Publisher keeps the last successfully computed snapshot per item. The
// instant path reads that slot without blocking; the normal path always
// recomputes, which is cheap when the underlying caches are still fresh.
type Publisher struct {
	computer SnapshotComputer

	mu    sync.RWMutex
	snaps map[string]Snapshot

	// OnPublish, when set, observes every stored snapshot. Used to push
	// updates to connected browsers.
	OnPublish func(itemID string, snap Snapshot)
}

func NewPublisher(computer SnapshotComputer) *Publisher {
	return &Publisher{
		computer: computer,
		snaps:    make(map[string]Snapshot),
	}
}

// Publish stores the snapshot as the item's served answer, overwriting any
// previous one.
func (p *Publisher) Publish(itemID string, snap Snapshot) {
	p.mu.Lock()
	p.snaps[itemID] = snap
	p.mu.Unlock()

	if p.OnPublish != nil {
		p.OnPublish(itemID, snap)
	}
}

// GetCached returns the last published snapshot, if any. It never performs
// I/O and never blocks beyond the map read.
func (p *Publisher) GetCached(itemID string) (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap, ok := p.snaps[itemID]
	return snap, ok
}

// GetOrCompute recomputes the item's snapshot, publishes it and returns it.
// It never reads the published slot first; the sub-caches make repeat calls
// inside the freshness window cheap.
func (p *Publisher) GetOrCompute(ctx context.Context, item catalog.Item) (Snapshot, error) {
	snap, err := p.computer.ComputeSnapshot(ctx, item)
	if err != nil {
		return Snapshot{}, err
	}
	p.Publish(item.ID, snap)
	return snap, nil
}

// Seed replays persisted rows into published snapshots so the instant path
// has an answer before the first real request. No network calls are made;
// every item with any persisted holding rows gets a slot.
func (p *Publisher) Seed(ctx context.Context, store SeedStore) error {
	prices, err := store.AllPrices(ctx)
	if err != nil {
		return err
	}
	supplies, err := store.AllSupplies(ctx)
	if err != nil {
		return err
	}
	holdings, err := store.AllHoldings(ctx)
	if err != nil {
		return err
	}

	byItem := make(map[string][]models.ItemCount)
	for _, row := range holdings {
		byItem[row.ItemID] = append(byItem[row.ItemID], row)
	}

	for itemID, rows := range byItem {
		counts := make(map[string]AccountLine, len(rows))
		totalAmount := 0
		totalUSD := 0.0
		totalNoFee := 0.0
		for _, row := range rows {
			counts[row.SteamID] = AccountLine{Name: row.Name, Amount: row.Amount, USD: row.USD, USDNoFee: row.USDNoFee}
			totalAmount += row.Amount
			totalUSD += row.USD
			totalNoFee += row.USDNoFee
		}

		p.Publish(itemID, Snapshot{
			Success:              true,
			ItemCounts:           counts,
			Price:                float64(prices[itemID]) / 100,
			PriceNoFee:           priceNoFee(prices[itemID]),
			TotalBanditsAmount:   totalAmount,
			TotalBanditsUSD:      round2(totalUSD),
			TotalBanditsUSDNoFee: round2(totalNoFee),
			SteamMarketSupply:    supplies[itemID],
		})
	}
	return nil
}
