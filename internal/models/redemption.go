package models

import (
	"time"

	"kidquiz/internal/domain"

	"gorm.io/gorm"
)

// Redemption tracks one purchase request through its approval lifecycle:
// PENDING_APPROVAL -> APPROVED -> FULFILLED, PENDING_APPROVAL -> REJECTED,
// {PENDING_APPROVAL, APPROVED} -> CANCELLED. The Spent* columns freeze the
// item's costs at request time so later price changes never touch an
// in-flight redemption. Nothing is debited until approval.
type Redemption struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	WalletID uint   `gorm:"not null;index" json:"wallet_id"`
	KidID    uint   `gorm:"not null;index" json:"kid_id"`
	ItemID   uint   `gorm:"not null;index" json:"item_id"`
	Status   string `gorm:"size:20;not null;index" json:"status"`

	SpentCoins      int64 `gorm:"not null;default:0" json:"spent_coins"`
	SpentSilverGems int64 `gorm:"not null;default:0" json:"spent_silver_gems"`
	SpentGoldCoins  int64 `gorm:"not null;default:0" json:"spent_gold_coins"`
	SpentRubies     int64 `gorm:"not null;default:0" json:"spent_rubies"`
	SpentSapphires  int64 `gorm:"not null;default:0" json:"spent_sapphires"`
	SpentDiamonds   int64 `gorm:"not null;default:0" json:"spent_diamonds"`

	GuardianNote        string         `gorm:"size:255" json:"guardian_note"`
	DecidedByGuardianID *uint          `json:"decided_by_guardian_id"`
	DecidedAt           *time.Time     `json:"decided_at"`
	FulfilledAt         *time.Time     `json:"fulfilled_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	Item RedeemableItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

func (Redemption) TableName() string {
	return "redemptions"
}

// SpentCost returns the frozen cost for one currency.
func (r *Redemption) SpentCost(c domain.CurrencyType) int64 {
	switch c {
	case domain.CurrencyCoins:
		return r.SpentCoins
	case domain.CurrencySilverGems:
		return r.SpentSilverGems
	case domain.CurrencyGoldCoins:
		return r.SpentGoldCoins
	case domain.CurrencyRubies:
		return r.SpentRubies
	case domain.CurrencySapphires:
		return r.SpentSapphires
	case domain.CurrencyDiamonds:
		return r.SpentDiamonds
	}
	return 0
}

// SnapshotCosts copies the item's current costs into the Spent* columns.
func (r *Redemption) SnapshotCosts(item *RedeemableItem) {
	r.SpentCoins = item.CostCoins
	r.SpentSilverGems = item.CostSilverGems
	r.SpentGoldCoins = item.CostGoldCoins
	r.SpentRubies = item.CostRubies
	r.SpentSapphires = item.CostSapphires
	r.SpentDiamonds = item.CostDiamonds
}

// TotalSpentInCoins values the frozen costs in base coins.
func (r *Redemption) TotalSpentInCoins() int64 {
	var total int64
	for _, c := range domain.Currencies {
		total += r.SpentCost(c) * domain.ValueInCoins[c]
	}
	return total
}
