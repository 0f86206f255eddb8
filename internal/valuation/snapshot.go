package valuation

import "math"

// AccountLine is one account's share of an item snapshot. Field names are
// the wire contract of the inventory endpoint and predate this codebase;
// they must not change.
type AccountLine struct {
	Name     string  `json:"name"`
	Amount   int     `json:"amount"`
	USD      float64 `json:"USD"`
	USDNoFee float64 `json:"USDNoFee"`
}

// Snapshot is the full valuation of one item across all tracked accounts.
type Snapshot struct {
	Success              bool                   `json:"success"`
	ItemCounts           map[string]AccountLine `json:"itemCounts"`
	Price                float64                `json:"price"`
	PriceNoFee           float64                `json:"priceNoFee"`
	TotalBanditsAmount   int                    `json:"totalBanditsAmount"`
	TotalBanditsUSD      float64                `json:"totalBanditsUSD"`
	TotalBanditsUSDNoFee float64                `json:"totalBanditsUSDNoFee"`
	SteamMarketSupply    int64                  `json:"steamMarketSupply"`
}

// round2 rounds to two decimal places, applied once to each total rather
// than per account.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// priceNoFee converts a unit price in cents to fee-adjusted dollars. No
// penny clamp here: a zero price legitimately reports as 0.01, which the
// consuming UI renders as a fetch-error marker.
func priceNoFee(cents int64) float64 {
	return math.Round(float64(cents)/1.15+1) / 100
}
