package models

import (
	"time"

	"kidquiz/internal/domain"

	"gorm.io/gorm"
)

// Wallet holds a kid's reward balances and progression. One per kid, created
// lazily on first access. Balances never go negative.
type Wallet struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	KidID              uint           `gorm:"uniqueIndex;not null" json:"kid_id"`
	Coins              int64          `gorm:"not null;default:0" json:"coins"`
	SilverGems         int64          `gorm:"not null;default:0" json:"silver_gems"`
	GoldCoins          int64          `gorm:"not null;default:0" json:"gold_coins"`
	Rubies             int64          `gorm:"not null;default:0" json:"rubies"`
	Sapphires          int64          `gorm:"not null;default:0" json:"sapphires"`
	Diamonds           int64          `gorm:"not null;default:0" json:"diamonds"`
	TotalLifetimeCoins int64          `gorm:"not null;default:0" json:"total_lifetime_coins"`
	CurrentLevel       int            `gorm:"not null" json:"current_level"`
	ExperiencePoints   int64          `gorm:"not null;default:0" json:"experience_points"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Kid Kid `gorm:"foreignKey:KidID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// Balance returns the balance for one currency.
func (w *Wallet) Balance(c domain.CurrencyType) int64 {
	switch c {
	case domain.CurrencyCoins:
		return w.Coins
	case domain.CurrencySilverGems:
		return w.SilverGems
	case domain.CurrencyGoldCoins:
		return w.GoldCoins
	case domain.CurrencyRubies:
		return w.Rubies
	case domain.CurrencySapphires:
		return w.Sapphires
	case domain.CurrencyDiamonds:
		return w.Diamonds
	}
	return 0
}

// AddBalance applies a signed delta to one currency. Callers must have
// checked that the result cannot go negative.
func (w *Wallet) AddBalance(c domain.CurrencyType, delta int64) {
	switch c {
	case domain.CurrencyCoins:
		w.Coins += delta
	case domain.CurrencySilverGems:
		w.SilverGems += delta
	case domain.CurrencyGoldCoins:
		w.GoldCoins += delta
	case domain.CurrencyRubies:
		w.Rubies += delta
	case domain.CurrencySapphires:
		w.Sapphires += delta
	case domain.CurrencyDiamonds:
		w.Diamonds += delta
	}
}

// TotalValueInCoins is the wallet's net worth in base coins.
func (w *Wallet) TotalValueInCoins() int64 {
	var total int64
	for _, c := range domain.Currencies {
		total += w.Balance(c) * domain.ValueInCoins[c]
	}
	return total
}

// ExperienceToNextLevel is the remaining experience before the next level-up.
func (w *Wallet) ExperienceToNextLevel() int64 {
	need := domain.ExperienceForLevel(w.CurrentLevel+1) - w.ExperiencePoints
	if need < 0 {
		return 0
	}
	return need
}
