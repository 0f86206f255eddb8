package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"rust-tracker/internal/models"
	"rust-tracker/internal/services/steam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testUser = models.TrackedUser{SteamID: "76561198000000001", SteamName: "Joe bandit.camp"}

func newTestHoldingsCache(inv InventoryFetcher, store HoldingStore, at time.Time) *HoldingsCache {
	hc := NewHoldingsCache(inv, store, 60*time.Second)
	hc.now = func() time.Time { return at }
	return hc
}

func assets(classID string, n int) []steam.Asset {
	out := make([]steam.Asset, n)
	for i := range out {
		out[i] = steam.Asset{ClassID: classID, AssetID: "a", Amount: "1"}
	}
	return out
}

func TestFreshHoldingServedWithoutFetch(t *testing.T) {
	ctx := context.Background()
	inv := new(MockInventoryFetcher)
	store := newFakeStore()
	now := time.Now()
	store.holdings[holdingKey(testUser.SteamID, testItem.ID)] = models.ItemCount{
		SteamID: testUser.SteamID, ItemID: testItem.ID,
		Name: "Joe", Amount: 3, USD: 30, USDNoFee: 26.10,
		LastUpdated: now.Add(-30 * time.Second).UnixMilli(),
	}
	hc := newTestHoldingsCache(inv, store, now)

	entry := hc.Get(ctx, testUser, testItem, 1000)

	assert.Equal(t, HoldingEntry{Name: "Joe", Amount: 3, USD: 30, USDNoFee: 26.10}, entry)
	inv.AssertNotCalled(t, "FetchInventory", mock.Anything, mock.Anything)
}

func TestStaleHoldingWithFailingFetchKeepsPriorValue(t *testing.T) {
	ctx := context.Background()
	inv := new(MockInventoryFetcher)
	store := newFakeStore()
	now := time.Now()
	prior := models.ItemCount{
		SteamID: testUser.SteamID, ItemID: testItem.ID,
		Name: "Joe", Amount: 3, USD: 30, USDNoFee: 26.10,
		LastUpdated: now.Add(-61 * time.Second).UnixMilli(),
	}
	store.holdings[holdingKey(testUser.SteamID, testItem.ID)] = prior
	hc := newTestHoldingsCache(inv, store, now)

	inv.On("FetchInventory", ctx, testUser.SteamID).Return(nil, steam.ErrUnavailable)

	entry := hc.Get(ctx, testUser, testItem, 1000)

	assert.Equal(t, 3, entry.Amount)
	assert.Equal(t, 30.0, entry.USD)
	assert.Equal(t, 26.10, entry.USDNoFee)
	inv.AssertNumberOfCalls(t, "FetchInventory", 1)
	// The stored row is untouched.
	assert.Equal(t, prior, store.holdings[holdingKey(testUser.SteamID, testItem.ID)])
}

func TestFetchFailureFirstMissCreatesZeroBaseline(t *testing.T) {
	ctx := context.Background()
	inv := new(MockInventoryFetcher)
	store := newFakeStore()
	now := time.Now()
	hc := newTestHoldingsCache(inv, store, now)

	inv.On("FetchInventory", ctx, testUser.SteamID).Return(nil, errors.New("network down"))

	entry := hc.Get(ctx, testUser, testItem, 1000)
	assert.Equal(t, HoldingEntry{Name: "Joe"}, entry)

	row, ok := store.holdings[holdingKey(testUser.SteamID, testItem.ID)]
	assert.True(t, ok)
	assert.Equal(t, 0, row.Amount)
	assert.Equal(t, now.UnixMilli(), row.LastUpdated)

	// The baseline short-circuits the next call; no second fetch.
	hc.Get(ctx, testUser, testItem, 1000)
	inv.AssertNumberOfCalls(t, "FetchInventory", 1)
}

func TestZeroCountFetchKeepsExistingRecord(t *testing.T) {
	ctx := context.Background()
	inv := new(MockInventoryFetcher)
	store := newFakeStore()
	now := time.Now()
	prior := models.ItemCount{
		SteamID: testUser.SteamID, ItemID: testItem.ID,
		Name: "Joe", Amount: 3, USD: 30, USDNoFee: 26.10,
		LastUpdated: now.Add(-61 * time.Second).UnixMilli(),
	}
	store.holdings[holdingKey(testUser.SteamID, testItem.ID)] = prior
	hc := newTestHoldingsCache(inv, store, now)

	inv.On("FetchInventory", ctx, testUser.SteamID).Return(assets("1111", 2), nil)

	entry := hc.Get(ctx, testUser, testItem, 1000)

	// The read itself reports empty, but an empty inventory response is
	// not trusted enough to overwrite the last known holding.
	assert.Equal(t, 0, entry.Amount)
	assert.Equal(t, prior, store.holdings[holdingKey(testUser.SteamID, testItem.ID)])
}

func TestZeroCountFetchWithNoRecordInsertsBaseline(t *testing.T) {
	ctx := context.Background()
	inv := new(MockInventoryFetcher)
	store := newFakeStore()
	now := time.Now()
	hc := newTestHoldingsCache(inv, store, now)

	inv.On("FetchInventory", ctx, testUser.SteamID).Return([]steam.Asset{}, nil)

	entry := hc.Get(ctx, testUser, testItem, 1000)
	assert.Equal(t, 0, entry.Amount)
	assert.Equal(t, 0.0, entry.USDNoFee)

	row, ok := store.holdings[holdingKey(testUser.SteamID, testItem.ID)]
	assert.True(t, ok)
	assert.Equal(t, 0, row.Amount)
}

func TestSuccessfulFetchCountsMatchingUnits(t *testing.T) {
	ctx := context.Background()
	inv := new(MockInventoryFetcher)
	store := newFakeStore()
	now := time.Now()
	hc := newTestHoldingsCache(inv, store, now)

	mixed := append(assets(testItem.ID, 3), assets("1111", 2)...)
	inv.On("FetchInventory", ctx, testUser.SteamID).Return(mixed, nil)

	entry := hc.Get(ctx, testUser, testItem, 1000)

	assert.Equal(t, HoldingEntry{Name: "Joe", Amount: 3, USD: 30, USDNoFee: 26.10}, entry)

	row := store.holdings[holdingKey(testUser.SteamID, testItem.ID)]
	assert.Equal(t, 3, row.Amount)
	assert.Equal(t, now.UnixMilli(), row.LastUpdated)

	// Second call inside the window is served from the stored row.
	hc.Get(ctx, testUser, testItem, 1000)
	inv.AssertNumberOfCalls(t, "FetchInventory", 1)
}

func TestFeeAdjustedPennyClampsToZero(t *testing.T) {
	// 0 cents computes to round(0/1.15+1)/100 = 0.01, a rounding artifact
	// of empty holdings, reported as zero.
	assert.Equal(t, 0.0, FeeAdjusted(0))
	assert.Equal(t, 26.10, FeeAdjusted(3000))
	assert.Equal(t, 8.71, FeeAdjusted(1000))
}

func TestCleanOwnerName(t *testing.T) {
	assert.Equal(t, "Joe", CleanOwnerName("Joe bandit.camp"))
	assert.Equal(t, "joe", CleanOwnerName("  BANDIT.CAMP joe "))
	assert.Equal(t, "plain", CleanOwnerName("plain"))
}
