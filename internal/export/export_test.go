package export

import (
	"testing"

	"rust-tracker/internal/catalog"
	"rust-tracker/internal/valuation"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotWorkbookLayout(t *testing.T) {
	item := catalog.Item{ID: "4666163159", Name: "Nuclear Fanatic Facemask"}
	snap := valuation.Snapshot{
		Success: true,
		ItemCounts: map[string]valuation.AccountLine{
			"76561198000000001": {Name: "Alice", Amount: 1, USD: 10, USDNoFee: 8.71},
			"76561198000000002": {Name: "Bob", Amount: 3, USD: 30, USDNoFee: 26.1},
		},
		Price: 10, PriceNoFee: 8.71,
		TotalBanditsAmount: 4, TotalBanditsUSD: 40, TotalBanditsUSDNoFee: 34.81,
		SteamMarketSupply: 12,
	}

	f, err := SnapshotWorkbook(item, snap)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Inventory"}, f.GetSheetList())

	name, err := f.GetCellValue("Inventory", "B1")
	assert.NoError(t, err)
	assert.Equal(t, item.Name, name)

	total, err := f.GetCellValue("Inventory", "B6")
	assert.NoError(t, err)
	assert.Equal(t, "40", total)

	header, err := f.GetCellValue("Inventory", "A9")
	assert.NoError(t, err)
	assert.Equal(t, "Steam ID", header)

	// Accounts sort by amount held, largest first.
	first, err := f.GetCellValue("Inventory", "B10")
	assert.NoError(t, err)
	assert.Equal(t, "Bob", first)
	firstAmount, err := f.GetCellValue("Inventory", "C10")
	assert.NoError(t, err)
	assert.Equal(t, "3", firstAmount)

	second, err := f.GetCellValue("Inventory", "B11")
	assert.NoError(t, err)
	assert.Equal(t, "Alice", second)
}
