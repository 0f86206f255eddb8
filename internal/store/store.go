package store

import (
	"context"
	"errors"
	"fmt"

	"rust-tracker/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm-backed persistence surface. In-memory caches remain the
// source of truth for the running process; the store only has to survive
// restarts, so callers treat write failures as non-fatal.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Price(ctx context.Context, itemID string) (int64, bool, error) {
	var row models.ItemPrice
	err := s.db.WithContext(ctx).Where("item_id = ?", itemID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load price for item %s: %w", itemID, err)
	}
	return row.Price, true, nil
}

func (s *Store) SavePrice(ctx context.Context, itemID string, price int64) error {
	row := models.ItemPrice{ItemID: itemID, Price: price}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save price for item %s: %w", itemID, err)
	}
	return nil
}

func (s *Store) Supply(ctx context.Context, itemID string) (int64, bool, error) {
	var row models.MarketSupply
	err := s.db.WithContext(ctx).Where("item_id = ?", itemID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load supply for item %s: %w", itemID, err)
	}
	return row.MarketSupply, true, nil
}

func (s *Store) SaveSupply(ctx context.Context, itemID string, supply int64) error {
	row := models.MarketSupply{ItemID: itemID, MarketSupply: supply}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"market_supply"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save supply for item %s: %w", itemID, err)
	}
	return nil
}

func (s *Store) SaveLastCheck(ctx context.Context, itemID string, lastCheck int64) error {
	row := models.PriceCheck{ItemID: itemID, LastCheck: lastCheck}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_check"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save last check for item %s: %w", itemID, err)
	}
	return nil
}

func (s *Store) AllPrices(ctx context.Context) (map[string]int64, error) {
	var rows []models.ItemPrice
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ItemID] = r.Price
	}
	return out, nil
}

func (s *Store) AllSupplies(ctx context.Context) (map[string]int64, error) {
	var rows []models.MarketSupply
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load supplies: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ItemID] = r.MarketSupply
	}
	return out, nil
}

func (s *Store) AllLastChecks(ctx context.Context) (map[string]int64, error) {
	var rows []models.PriceCheck
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load price checks: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ItemID] = r.LastCheck
	}
	return out, nil
}

func (s *Store) HoldingRow(ctx context.Context, steamID, itemID string) (models.ItemCount, bool, error) {
	var row models.ItemCount
	err := s.db.WithContext(ctx).Where("steam_id = ? AND item_id = ?", steamID, itemID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ItemCount{}, false, nil
	}
	if err != nil {
		return models.ItemCount{}, false, fmt.Errorf("load holding for %s/%s: %w", steamID, itemID, err)
	}
	return row, true, nil
}

// UpsertHolding writes a holding row keyed by (steam_id, item_id). The
// unique pair index guarantees concurrent writers converge on one row.
func (s *Store) UpsertHolding(ctx context.Context, row *models.ItemCount) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "steam_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "amount", "usd", "usd_no_fee", "last_updated"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert holding for %s/%s: %w", row.SteamID, row.ItemID, err)
	}
	return nil
}

func (s *Store) AllHoldings(ctx context.Context) ([]models.ItemCount, error) {
	var rows []models.ItemCount
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}
	return rows, nil
}

func (s *Store) TrackedUser(ctx context.Context, steamID string) (models.TrackedUser, bool, error) {
	var row models.TrackedUser
	err := s.db.WithContext(ctx).Where("steam_id = ?", steamID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TrackedUser{}, false, nil
	}
	if err != nil {
		return models.TrackedUser{}, false, fmt.Errorf("load tracked user %s: %w", steamID, err)
	}
	return row, true, nil
}

func (s *Store) InsertTrackedUser(ctx context.Context, user models.TrackedUser) error {
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("insert tracked user %s: %w", user.SteamID, err)
	}
	return nil
}

func (s *Store) ListTrackedUsers(ctx context.Context) ([]models.TrackedUser, error) {
	var rows []models.TrackedUser
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tracked users: %w", err)
	}
	return rows, nil
}
