package repository

import (
	"kidquiz/internal/models"

	"gorm.io/gorm"
)

type GuardianRepository struct {
	db *gorm.DB
}

func NewGuardianRepository(db *gorm.DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

func (r *GuardianRepository) Create(g *models.Guardian) error {
	return r.db.Create(g).Error
}

func (r *GuardianRepository) GetByID(id uint) (*models.Guardian, error) {
	var g models.Guardian
	if err := r.db.First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GuardianRepository) GetByEmail(email string) (*models.Guardian, error) {
	var g models.Guardian
	if err := r.db.Where("email = ?", email).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GuardianRepository) Update(g *models.Guardian) error {
	return r.db.Save(g).Error
}

func (r *GuardianRepository) UpdateFCMToken(id uint, token string) error {
	return r.db.Model(&models.Guardian{}).Where("id = ?", id).Update("fcm_token", token).Error
}
