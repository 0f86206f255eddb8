package export

import (
	"fmt"
	"sort"

	"rust-tracker/internal/catalog"
	"rust-tracker/internal/valuation"

	"github.com/xuri/excelize/v2"
)

const sheet = "Inventory"

// SnapshotWorkbook renders one item snapshot as an xlsx report: a summary
// block, then per-account rows sorted by amount held.
func SnapshotWorkbook(item catalog.Item, snap valuation.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	summary := [][]interface{}{
		{"Item", item.Name},
		{"Single Item USD", snap.Price},
		{"Single Item USD (No Fee)", snap.PriceNoFee},
		{"Steam Market Supply", snap.SteamMarketSupply},
		{"Total Items", snap.TotalBanditsAmount},
		{"Total USD", snap.TotalBanditsUSD},
		{"Total USD (No Fee)", snap.TotalBanditsUSDNoFee},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}

	headerRow := len(summary) + 2
	header := []interface{}{"Steam ID", "Name", "Amount", "USD", "USD (No Fee)"}
	cell, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	steamIDs := make([]string, 0, len(snap.ItemCounts))
	for id := range snap.ItemCounts {
		steamIDs = append(steamIDs, id)
	}
	sort.Slice(steamIDs, func(i, j int) bool {
		return snap.ItemCounts[steamIDs[i]].Amount > snap.ItemCounts[steamIDs[j]].Amount
	})

	for i, id := range steamIDs {
		line := snap.ItemCounts[id]
		row := []interface{}{id, line.Name, line.Amount, line.USD, line.USDNoFee}
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write account row: %w", err)
		}
	}

	return f, nil
}
