package service

import (
	"testing"

	"kidquiz/internal/database"
	"kidquiz/internal/models"
	"kidquiz/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema. The pool
// is pinned to one connection so every query sees the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createKid(t *testing.T, db *gorm.DB, name string) *models.Kid {
	t.Helper()
	kid := &models.Kid{Name: name, GradeLevel: 2, Active: true}
	require.NoError(t, db.Create(kid).Error)
	return kid
}

func newRewardService(db *gorm.DB) *RewardService {
	return NewRewardService(repository.NewWalletRepository(db), repository.NewKidRepository(db), nil, nil)
}

func ledgerFor(t *testing.T, db *gorm.DB, kidID uint) []models.WalletTransaction {
	t.Helper()
	var rows []models.WalletTransaction
	require.NoError(t, db.Where("kid_id = ?", kidID).Order("id ASC").Find(&rows).Error)
	return rows
}
