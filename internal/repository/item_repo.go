package repository

import (
	"kidquiz/internal/models"

	"gorm.io/gorm"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(i *models.RedeemableItem) error {
	return r.db.Create(i).Error
}

func (r *ItemRepository) GetByID(id uint) (*models.RedeemableItem, error) {
	var i models.RedeemableItem
	if err := r.db.First(&i, id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *ItemRepository) Update(i *models.RedeemableItem) error {
	return r.db.Save(i).Error
}

func (r *ItemRepository) Delete(id uint) error {
	return r.db.Delete(&models.RedeemableItem{}, id).Error
}

// List returns catalog items; activeOnly hides deactivated entries.
func (r *ItemRepository) List(category string, activeOnly bool) ([]models.RedeemableItem, error) {
	q := r.db.Order("min_level ASC, id ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var items []models.RedeemableItem
	err := q.Find(&items).Error
	return items, err
}
