package cache

import (
	"context"
	"log"
	"math"
	"regexp"
	"strings"
	"time"

	"rust-tracker/internal/catalog"
	"rust-tracker/internal/models"
	"rust-tracker/internal/services/steam"
)

// InventoryFetcher is the live holdings source.
type InventoryFetcher interface {
	FetchInventory(ctx context.Context, steamID string) ([]steam.Asset, error)
}

// HoldingStore persists per-(account,item) holding rows.
type HoldingStore interface {
	HoldingRow(ctx context.Context, steamID, itemID string) (models.ItemCount, bool, error)
	UpsertHolding(ctx context.Context, row *models.ItemCount) error
}

// HoldingEntry is what one account contributes to an item snapshot.
type HoldingEntry struct {
	Name     string
	Amount   int
	USD      float64
	USDNoFee float64
}

// Steam takes a 15% cut on market sales; the +1 cent comes from the
// legacy rounding of the original tracker and is kept for continuity.
const marketFeeDivisor = 1.15

var ownerSuffix = regexp.MustCompile(`(?i)bandit\.camp`)

// CleanOwnerName strips the clan suffix tracked accounts carry in their
// persona names and trims the leftovers.
func CleanOwnerName(name string) string {
	return strings.TrimSpace(ownerSuffix.ReplaceAllString(name, ""))
}

// FeeAdjusted converts a gross cent value to fee-adjusted dollars. A
// result of exactly one cent is a rounding artifact of near-zero holdings
// and is reported as zero.
func FeeAdjusted(cents int64) float64 {
	v := math.Round(float64(cents)/marketFeeDivisor+1) / 100
	if v == 0.01 {
		return 0
	}
	return v
}

// HoldingsCache owns the freshness policy for per-account holdings. Each
// (account, item) pair is independent; the persisted row doubles as the
// cache entry, so freshness requires both that a row exists and that it
// was written inside the window.
type HoldingsCache struct {
	inventory InventoryFetcher
	store     HoldingStore
	window    time.Duration

	now func() time.Time
}

func NewHoldingsCache(inventory InventoryFetcher, store HoldingStore, window time.Duration) *HoldingsCache {
	return &HoldingsCache{
		inventory: inventory,
		store:     store,
		window:    window,
		now:       time.Now,
	}
}

// Get returns the account's holding of the item, refetching the inventory
// when the stored row is stale or missing. price is the item's current
// price in cents and feeds the derived dollar values. Fetch failures never
// surface; the caller gets the last known row, or a zero entry for a pair
// that has never resolved.
func (h *HoldingsCache) Get(ctx context.Context, user models.TrackedUser, item catalog.Item, price int64) HoldingEntry {
	cleanName := CleanOwnerName(user.SteamName)
	nowMs := h.now().UnixMilli()

	row, exists, err := h.store.HoldingRow(ctx, user.SteamID, item.ID)
	if err != nil {
		log.Printf("load holding failed for %s/%s: %v", user.SteamID, item.ID, err)
		exists = false
	}

	if exists && nowMs-row.LastUpdated < h.window.Milliseconds() {
		return HoldingEntry{Name: row.Name, Amount: row.Amount, USD: row.USD, USDNoFee: row.USDNoFee}
	}

	assets, ferr := h.inventory.FetchInventory(ctx, user.SteamID)
	if ferr != nil {
		log.Printf("inventory fetch failed for %s (item %s): %v", user.SteamID, item.ID, ferr)
		if exists {
			return HoldingEntry{Name: cleanName, Amount: row.Amount, USD: row.USD, USDNoFee: row.USDNoFee}
		}
		// First miss for the pair: establish a zero baseline so the next
		// call inside the window short-circuits instead of refetching.
		baseline := models.ItemCount{
			SteamID:     user.SteamID,
			ItemID:      item.ID,
			Name:        cleanName,
			LastUpdated: nowMs,
		}
		if perr := h.store.UpsertHolding(ctx, &baseline); perr != nil {
			log.Printf("persist zero baseline failed for %s/%s: %v", user.SteamID, item.ID, perr)
		}
		return HoldingEntry{Name: cleanName}
	}

	amount := 0
	for _, a := range assets {
		if a.ClassID == item.ID {
			amount++
		}
	}

	gross := price * int64(amount)
	entry := HoldingEntry{
		Name:     cleanName,
		Amount:   amount,
		USD:      float64(gross) / 100,
		USDNoFee: FeeAdjusted(gross),
	}

	switch {
	case exists && amount != 0:
		row.Name = cleanName
		row.Amount = entry.Amount
		row.USD = entry.USD
		row.USDNoFee = entry.USDNoFee
		row.LastUpdated = nowMs
		if perr := h.store.UpsertHolding(ctx, &row); perr != nil {
			log.Printf("persist holding failed for %s/%s: %v", user.SteamID, item.ID, perr)
		}
	case exists:
		// A zero count over an existing row is treated as a possibly
		// transient empty read; the last known value stands.
	default:
		fresh := models.ItemCount{
			SteamID:     user.SteamID,
			ItemID:      item.ID,
			Name:        cleanName,
			Amount:      entry.Amount,
			USD:         entry.USD,
			USDNoFee:    entry.USDNoFee,
			LastUpdated: nowMs,
		}
		if perr := h.store.UpsertHolding(ctx, &fresh); perr != nil {
			log.Printf("persist holding failed for %s/%s: %v", user.SteamID, item.ID, perr)
		}
	}

	return entry
}
