package models

import (
	"time"

	"kidquiz/internal/domain"

	"gorm.io/gorm"
)

// RedeemableItem is a catalog entry kids can spend wallet currency on.
// At least one per-currency cost must be set.
type RedeemableItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:128;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"size:512" json:"image_url"`
	Category    string         `gorm:"size:20;not null;index" json:"category"`

	CostCoins      int64 `gorm:"not null;default:0" json:"cost_coins"`
	CostSilverGems int64 `gorm:"not null;default:0" json:"cost_silver_gems"`
	CostGoldCoins  int64 `gorm:"not null;default:0" json:"cost_gold_coins"`
	CostRubies     int64 `gorm:"not null;default:0" json:"cost_rubies"`
	CostSapphires  int64 `gorm:"not null;default:0" json:"cost_sapphires"`
	CostDiamonds   int64 `gorm:"not null;default:0" json:"cost_diamonds"`

	MinLevel  int            `gorm:"not null" json:"min_level"`
	Quantity  int            `gorm:"not null" json:"quantity"` // -1 = unlimited
	Active    bool           `gorm:"not null" json:"active"`
	ExpiresAt *time.Time     `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RedeemableItem) TableName() string {
	return "redeemable_items"
}

// Cost returns the per-currency cost for one currency.
func (i *RedeemableItem) Cost(c domain.CurrencyType) int64 {
	switch c {
	case domain.CurrencyCoins:
		return i.CostCoins
	case domain.CurrencySilverGems:
		return i.CostSilverGems
	case domain.CurrencyGoldCoins:
		return i.CostGoldCoins
	case domain.CurrencyRubies:
		return i.CostRubies
	case domain.CurrencySapphires:
		return i.CostSapphires
	case domain.CurrencyDiamonds:
		return i.CostDiamonds
	}
	return 0
}

// HasCost reports whether any currency cost is set.
func (i *RedeemableItem) HasCost() bool {
	for _, c := range domain.Currencies {
		if i.Cost(c) > 0 {
			return true
		}
	}
	return false
}

// Expired reports whether the item has passed its expiry at time t.
func (i *RedeemableItem) Expired(t time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(t)
}

// InStock reports whether at least one unit remains.
func (i *RedeemableItem) InStock() bool {
	return i.Quantity == domain.ItemQuantityUnlimited || i.Quantity > 0
}
