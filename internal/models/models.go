package models

import (
	"time"
)

// TrackedUser is a Steam account whose inventory is being tracked.
type TrackedUser struct {
	SteamID   string    `json:"steam_id" gorm:"primaryKey;column:steam_id"`
	SteamName string    `json:"steam_name" gorm:"column:steam_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemPrice is the last known market sell price for an item, in cents.
// A price of 0 means the item has never been priced successfully.
type ItemPrice struct {
	ItemID string `json:"item_id" gorm:"primaryKey;column:item_id"`
	Price  int64  `json:"price"`
}

// MarketSupply is the last known number of market listings for an item.
type MarketSupply struct {
	ItemID       string `json:"item_id" gorm:"primaryKey;column:item_id"`
	MarketSupply int64  `json:"market_supply"`
}

// PriceCheck records when an item's price was last confirmed, as unix
// milliseconds. 0 means never checked.
type PriceCheck struct {
	ItemID    string `json:"item_id" gorm:"primaryKey;column:item_id"`
	LastCheck int64  `json:"last_check"`
}

// ItemCount is one tracked account's holding of one item, with its value
// at the price in effect when the row was last written. Exactly one row
// exists per (steam_id, item_id) pair.
type ItemCount struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	SteamID     string  `json:"steam_id" gorm:"column:steam_id;uniqueIndex:idx_item_counts_pair"`
	ItemID      string  `json:"item_id" gorm:"column:item_id;uniqueIndex:idx_item_counts_pair"`
	Name        string  `json:"name"`
	Amount      int     `json:"amount"`
	USD         float64 `json:"usd" gorm:"column:usd"`
	USDNoFee    float64 `json:"usd_no_fee" gorm:"column:usd_no_fee"`
	LastUpdated int64   `json:"last_updated" gorm:"default:0"`
}
