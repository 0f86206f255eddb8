package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"rust-tracker/internal/catalog"
	"rust-tracker/internal/services/market"
)

// QuoteFetcher is the live market price source.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, displayName string) (market.Quote, error)
}

// PriceStore persists prices, listing supplies and last-check timestamps
// across restarts.
type PriceStore interface {
	Price(ctx context.Context, itemID string) (int64, bool, error)
	SavePrice(ctx context.Context, itemID string, price int64) error
	Supply(ctx context.Context, itemID string) (int64, bool, error)
	SaveSupply(ctx context.Context, itemID string, supply int64) error
	SaveLastCheck(ctx context.Context, itemID string, lastCheck int64) error
	AllPrices(ctx context.Context) (map[string]int64, error)
	AllSupplies(ctx context.Context) (map[string]int64, error)
	AllLastChecks(ctx context.Context) (map[string]int64, error)
}

// PriceRecord is the cached market state for one item. Price is in cents,
// 0 meaning unknown. LastCheck is unix milliseconds, 0 meaning the price
// has never been confirmed.
type PriceRecord struct {
	Price     int64
	Supply    int64
	LastCheck int64
}

type priceState struct {
	PriceRecord
	// confirmed is set after the first successful quote. LastCheck only
	// starts advancing once a later quote succeeds on top of a confirmed
	// one, so a cold item always gets at least one re-check before the
	// fresh window engages.
	confirmed bool
}

// PriceCache owns the freshness policy for market prices. A price inside
// the window is served from memory; a stale or never-checked one triggers
// a live quote, falling back to the persisted value when the quote fails.
type PriceCache struct {
	quotes QuoteFetcher
	store  PriceStore
	window time.Duration

	mu   sync.Mutex
	recs map[string]*priceState

	now func() time.Time
}

func NewPriceCache(quotes QuoteFetcher, store PriceStore, window time.Duration) *PriceCache {
	return &PriceCache{
		quotes: quotes,
		store:  store,
		window: window,
		recs:   make(map[string]*priceState),
		now:    time.Now,
	}
}

// Warm seeds the in-memory table from the persisted store. Called once at
// process start, before any request is served.
func (p *PriceCache) Warm(ctx context.Context) error {
	prices, err := p.store.AllPrices(ctx)
	if err != nil {
		return err
	}
	supplies, err := p.store.AllSupplies(ctx)
	if err != nil {
		return err
	}
	checks, err := p.store.AllLastChecks(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for itemID, price := range prices {
		p.state(itemID).Price = price
	}
	for itemID, supply := range supplies {
		p.state(itemID).Supply = supply
	}
	for itemID, lastCheck := range checks {
		st := p.state(itemID)
		st.LastCheck = lastCheck
		st.confirmed = lastCheck != 0
	}
	return nil
}

// state returns the in-memory entry for an item, creating a zero-valued
// one on first access. Caller holds p.mu.
func (p *PriceCache) state(itemID string) *priceState {
	st, ok := p.recs[itemID]
	if !ok {
		st = &priceState{}
		p.recs[itemID] = st
	}
	return st
}

// Get returns the item's price record, refreshing it first when stale.
// Quote failures never surface; the caller always gets the best known
// value, down to all zeroes for an item that has never priced.
func (p *PriceCache) Get(ctx context.Context, item catalog.Item) PriceRecord {
	nowMs := p.now().UnixMilli()

	p.mu.Lock()
	st := p.state(item.ID)
	if st.LastCheck != 0 && nowMs-st.LastCheck < p.window.Milliseconds() {
		rec := st.PriceRecord
		p.mu.Unlock()
		return rec
	}
	p.mu.Unlock()

	// Concurrent callers may both reach here and fetch twice. The writes
	// below are idempotent per item, so the duplication is only cost.
	quote, err := p.quotes.FetchQuote(ctx, item.Name)
	if err != nil {
		log.Printf("price fetch failed for item %s (%s): %v", item.ID, item.Name, err)
		return p.restorePersisted(ctx, item.ID)
	}

	p.mu.Lock()
	st = p.state(item.ID)
	if quote.SellPrice != 0 {
		st.Price = quote.SellPrice
	}
	st.Supply = quote.SellListings
	persistCheck := false
	if st.confirmed {
		st.LastCheck = p.now().UnixMilli()
		persistCheck = true
	}
	st.confirmed = true
	rec := st.PriceRecord
	p.mu.Unlock()

	// Store I/O happens off the lock so a slow database cannot stall
	// lookups for unrelated items.
	if persistCheck {
		if perr := p.store.SaveLastCheck(ctx, item.ID, rec.LastCheck); perr != nil {
			log.Printf("persist last check failed for item %s: %v", item.ID, perr)
		}
	}
	if perr := p.store.SavePrice(ctx, item.ID, rec.Price); perr != nil {
		log.Printf("persist price failed for item %s: %v", item.ID, perr)
	}
	// Supply is persisted even when zero; an empty market is a real reading.
	if perr := p.store.SaveSupply(ctx, item.ID, rec.Supply); perr != nil {
		log.Printf("persist supply failed for item %s: %v", item.ID, perr)
	}

	return rec
}

// restorePersisted resets the in-memory price and supply to the last
// durable values, so a transient fetch failure leaves the entry no worse
// than what survived the previous success. LastCheck is left alone, and
// the store reads happen off the lock.
func (p *PriceCache) restorePersisted(ctx context.Context, itemID string) PriceRecord {
	price, priceOK, err := p.store.Price(ctx, itemID)
	if err != nil {
		log.Printf("load persisted price failed for item %s: %v", itemID, err)
	}
	supply, supplyOK, err := p.store.Supply(ctx, itemID)
	if err != nil {
		log.Printf("load persisted supply failed for item %s: %v", itemID, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state(itemID)
	if priceOK {
		st.Price = price
	}
	if supplyOK {
		st.Supply = supply
	}
	return st.PriceRecord
}
