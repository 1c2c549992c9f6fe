package models

import (
	"time"

	"kidquiz/internal/domain"

	"gorm.io/gorm"
)

// WalletTransaction is an immutable ledger row for one balance-affecting event.
// BalanceAfter snapshots the wallet's balance for Currency immediately after
// the event was applied; it is the ledger's audit anchor. Rows are only ever
// created by the reward engine, never updated or deleted.
type WalletTransaction struct {
	ID              uint                   `gorm:"primaryKey" json:"id"`
	WalletID        uint                   `gorm:"not null;index" json:"wallet_id"`
	KidID           uint                   `gorm:"not null;index" json:"kid_id"`
	Currency        domain.CurrencyType    `gorm:"size:20;not null;index" json:"currency"`
	Amount          int64                  `gorm:"not null" json:"amount"` // positive = credit, negative = debit
	Type            domain.TransactionType `gorm:"size:20;not null;index" json:"type"`
	Activity        domain.ActivityType    `gorm:"size:30;not null;index" json:"activity"`
	Description     string                 `gorm:"size:255" json:"description"`
	RelatedEntityID *uint                  `json:"related_entity_id"` // quiz, redemption, linked conversion row...
	BalanceAfter    int64                  `gorm:"not null" json:"balance_after"`
	CreatedAt       time.Time              `gorm:"index" json:"created_at"`
	DeletedAt       gorm.DeletedAt         `gorm:"index" json:"-"`

	Wallet Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
