package repository

import (
	"errors"
	"time"

	"kidquiz/internal/domain"
	"kidquiz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Transaction runs fn against a repository bound to a database transaction.
// The reward engine wraps every read-modify-write in one of these.
func (r *WalletRepository) Transaction(fn func(tx *WalletRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&WalletRepository{db: tx})
	})
}

func (r *WalletRepository) GetByKidID(kidID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.Where("kid_id = ?", kidID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// GetOrCreateByKidID lazily creates the wallet on first access.
func (r *WalletRepository) GetOrCreateByKidID(kidID uint) (*models.Wallet, error) {
	w, err := r.GetByKidID(kidID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = &models.Wallet{KidID: kidID, CurrentLevel: 1}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// GetForUpdate loads the wallet under a row lock, creating it if absent.
// Must be called inside Transaction. sqlite has no FOR UPDATE; its writes are
// serialized by the database itself.
func (r *WalletRepository) GetForUpdate(kidID uint) (*models.Wallet, error) {
	q := r.db
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var w models.Wallet
	err := q.Where("kid_id = ?", kidID).First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = models.Wallet{KidID: kidID, CurrentLevel: 1}
	if err := r.db.Create(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) Save(w *models.Wallet) error {
	return r.db.Save(w).Error
}

// RecordTransaction appends a ledger row. Ledger rows are never updated.
func (r *WalletRepository) RecordTransaction(t *models.WalletTransaction) error {
	return r.db.Create(t).Error
}

// HasActivityOn reports whether the kid already has a transaction for the
// given activity within the UTC calendar day containing t. Backs the
// once-per-day guard on the daily login reward.
func (r *WalletRepository) HasActivityOn(kidID uint, activity domain.ActivityType, t time.Time) (bool, error) {
	dayStart := time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	var n int64
	err := r.db.Model(&models.WalletTransaction{}).
		Where("kid_id = ? AND activity = ? AND created_at >= ? AND created_at < ?", kidID, activity, dayStart, dayEnd).
		Count(&n).Error
	return n > 0, err
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	Currency domain.CurrencyType
	Type     domain.TransactionType
	Limit    int
	Offset   int
}

func (r *WalletRepository) ListTransactions(kidID uint, f TransactionFilter) ([]models.WalletTransaction, error) {
	q := r.db.Where("kid_id = ?", kidID)
	if f.Currency != "" {
		q = q.Where("currency = ?", f.Currency)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []models.WalletTransaction
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(f.Offset).Find(&list).Error
	return list, err
}
