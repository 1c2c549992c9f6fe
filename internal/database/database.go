package database

import (
	"log"

	"kidquiz/config"
	"kidquiz/internal/domain"
	"kidquiz/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Guardian{},
		&models.Kid{},
		&models.GuardianKid{},
		&models.KidSettings{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.RedeemableItem{},
		&models.Redemption{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizAttempt{},
		&models.Notification{},
	)
}

// SeedCatalog inserts a small starter catalog on an empty items table so a
// fresh install has something to redeem.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.RedeemableItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	items := []models.RedeemableItem{
		{
			Name:        "30 minutes of screen time",
			Description: "Half an hour of tablet or console time.",
			Category:    domain.ItemCategoryScreenTime,
			CostCoins:   50,
			MinLevel:    1,
			Quantity:    domain.ItemQuantityUnlimited,
			Active:      true,
		},
		{
			Name:           "Pick tonight's dessert",
			Description:    "You choose what's for dessert.",
			Category:       domain.ItemCategoryTreat,
			CostSilverGems: 10,
			MinLevel:       1,
			Quantity:       domain.ItemQuantityUnlimited,
			Active:         true,
		},
		{
			Name:          "Trip to the playground",
			Description:   "An afternoon at the playground of your choice.",
			Category:      domain.ItemCategoryActivity,
			CostGoldCoins: 5,
			MinLevel:      2,
			Quantity:      domain.ItemQuantityUnlimited,
			Active:        true,
		},
		{
			Name:        "Small toy",
			Description: "A small toy picked together at the store.",
			Category:    domain.ItemCategoryToy,
			CostRubies:  3,
			MinLevel:    3,
			Quantity:    domain.ItemQuantityUnlimited,
			Active:      true,
		},
		{
			Name:         "Stay up 30 minutes late",
			Description:  "Push bedtime back half an hour on a weekend.",
			Category:     domain.ItemCategoryPrivilege,
			CostDiamonds: 1,
			MinLevel:     5,
			Quantity:     domain.ItemQuantityUnlimited,
			Active:       true,
		},
	}
	if err := db.Create(&items).Error; err != nil {
		return err
	}
	log.Printf("[database] seeded %d catalog items", len(items))
	return nil
}
