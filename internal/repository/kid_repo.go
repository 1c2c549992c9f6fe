package repository

import (
	"errors"

	"kidquiz/internal/models"

	"gorm.io/gorm"
)

type KidRepository struct {
	db *gorm.DB
}

func NewKidRepository(db *gorm.DB) *KidRepository {
	return &KidRepository{db: db}
}

func (r *KidRepository) Create(k *models.Kid) error {
	return r.db.Create(k).Error
}

func (r *KidRepository) GetByID(id uint) (*models.Kid, error) {
	var k models.Kid
	if err := r.db.Preload("Settings").First(&k, id).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *KidRepository) Update(k *models.Kid) error {
	return r.db.Save(k).Error
}

func (r *KidRepository) Delete(id uint) error {
	return r.db.Delete(&models.Kid{}, id).Error
}

// ListByGuardian returns all kids linked to a guardian.
func (r *KidRepository) ListByGuardian(guardianID uint) ([]models.Kid, error) {
	var kids []models.Kid
	err := r.db.
		Joins("JOIN guardian_kids ON guardian_kids.kid_id = kids.id AND guardian_kids.deleted_at IS NULL").
		Where("guardian_kids.guardian_id = ?", guardianID).
		Preload("Settings").
		Find(&kids).Error
	return kids, err
}

// GetLink returns the guardian-kid link, or gorm.ErrRecordNotFound.
func (r *KidRepository) GetLink(guardianID, kidID uint) (*models.GuardianKid, error) {
	var l models.GuardianKid
	err := r.db.Where("guardian_id = ? AND kid_id = ?", guardianID, kidID).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// HasLink reports whether any link exists between guardian and kid.
func (r *KidRepository) HasLink(guardianID, kidID uint) (bool, error) {
	_, err := r.GetLink(guardianID, kidID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (r *KidRepository) CreateLink(l *models.GuardianKid) error {
	return r.db.Create(l).Error
}

func (r *KidRepository) DeleteLink(guardianID, kidID uint) error {
	return r.db.Where("guardian_id = ? AND kid_id = ?", guardianID, kidID).Delete(&models.GuardianKid{}).Error
}

func (r *KidRepository) CountGuardians(kidID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.GuardianKid{}).Where("kid_id = ?", kidID).Count(&n).Error
	return n, err
}

func (r *KidRepository) ListLinks(kidID uint) ([]models.GuardianKid, error) {
	var links []models.GuardianKid
	err := r.db.Where("kid_id = ?", kidID).Preload("Guardian").Find(&links).Error
	return links, err
}

// GetOrCreateSettings returns the kid's settings row, creating defaults if absent.
func (r *KidRepository) GetOrCreateSettings(kidID uint) (*models.KidSettings, error) {
	var s models.KidSettings
	err := r.db.Where("kid_id = ?", kidID).First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	s = models.KidSettings{KidID: kidID, DailyScreenTimeMinutes: 60, NotificationsEnabled: true}
	if err := r.db.Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *KidRepository) UpdateSettings(s *models.KidSettings) error {
	return r.db.Save(s).Error
}
