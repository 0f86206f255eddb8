package cache

import (
	"context"

	"rust-tracker/internal/models"
	"rust-tracker/internal/services/market"
	"rust-tracker/internal/services/steam"

	"github.com/stretchr/testify/mock"
)

// MockQuoteFetcher is a mock implementation of QuoteFetcher for testing
type MockQuoteFetcher struct {
	mock.Mock
}

func (m *MockQuoteFetcher) FetchQuote(ctx context.Context, displayName string) (market.Quote, error) {
	args := m.Called(ctx, displayName)
	return args.Get(0).(market.Quote), args.Error(1)
}

// MockInventoryFetcher is a mock implementation of InventoryFetcher for testing
type MockInventoryFetcher struct {
	mock.Mock
}

func (m *MockInventoryFetcher) FetchInventory(ctx context.Context, steamID string) ([]steam.Asset, error) {
	args := m.Called(ctx, steamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]steam.Asset), args.Error(1)
}

// fakeStore is an in-memory PriceStore + HoldingStore so tests can inspect
// exactly what was persisted.
type fakeStore struct {
	prices   map[string]int64
	supplies map[string]int64
	checks   map[string]int64
	holdings map[string]models.ItemCount
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prices:   make(map[string]int64),
		supplies: make(map[string]int64),
		checks:   make(map[string]int64),
		holdings: make(map[string]models.ItemCount),
	}
}

func holdingKey(steamID, itemID string) string {
	return steamID + "|" + itemID
}

func (f *fakeStore) Price(_ context.Context, itemID string) (int64, bool, error) {
	v, ok := f.prices[itemID]
	return v, ok, nil
}

func (f *fakeStore) SavePrice(_ context.Context, itemID string, price int64) error {
	f.prices[itemID] = price
	return nil
}

func (f *fakeStore) Supply(_ context.Context, itemID string) (int64, bool, error) {
	v, ok := f.supplies[itemID]
	return v, ok, nil
}

func (f *fakeStore) SaveSupply(_ context.Context, itemID string, supply int64) error {
	f.supplies[itemID] = supply
	return nil
}

func (f *fakeStore) SaveLastCheck(_ context.Context, itemID string, lastCheck int64) error {
	f.checks[itemID] = lastCheck
	return nil
}

func (f *fakeStore) AllPrices(_ context.Context) (map[string]int64, error) {
	return f.prices, nil
}

func (f *fakeStore) AllSupplies(_ context.Context) (map[string]int64, error) {
	return f.supplies, nil
}

func (f *fakeStore) AllLastChecks(_ context.Context) (map[string]int64, error) {
	return f.checks, nil
}

func (f *fakeStore) HoldingRow(_ context.Context, steamID, itemID string) (models.ItemCount, bool, error) {
	row, ok := f.holdings[holdingKey(steamID, itemID)]
	return row, ok, nil
}

func (f *fakeStore) UpsertHolding(_ context.Context, row *models.ItemCount) error {
	f.holdings[holdingKey(row.SteamID, row.ItemID)] = *row
	return nil
}
