package repository

import (
	"kidquiz/internal/domain"
	"kidquiz/internal/models"

	"gorm.io/gorm"
)

type RedemptionRepository struct {
	db *gorm.DB
}

func NewRedemptionRepository(db *gorm.DB) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

func (r *RedemptionRepository) Create(red *models.Redemption) error {
	return r.db.Create(red).Error
}

func (r *RedemptionRepository) GetByID(id uint) (*models.Redemption, error) {
	var red models.Redemption
	if err := r.db.Preload("Item").First(&red, id).Error; err != nil {
		return nil, err
	}
	return &red, nil
}

func (r *RedemptionRepository) Update(red *models.Redemption) error {
	return r.db.Save(red).Error
}

func (r *RedemptionRepository) ListByKid(kidID uint, status string, limit, offset int) ([]models.Redemption, error) {
	q := r.db.Where("kid_id = ?", kidID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []models.Redemption
	err := q.Preload("Item").Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ListPendingForGuardian returns pending redemptions across all kids a
// guardian manages.
func (r *RedemptionRepository) ListPendingForGuardian(guardianID uint) ([]models.Redemption, error) {
	var list []models.Redemption
	err := r.db.
		Joins("JOIN guardian_kids ON guardian_kids.kid_id = redemptions.kid_id AND guardian_kids.deleted_at IS NULL").
		Where("guardian_kids.guardian_id = ? AND redemptions.status = ?", guardianID, domain.RedemptionPendingApproval).
		Preload("Item").
		Order("redemptions.created_at ASC").
		Find(&list).Error
	return list, err
}

// Stats aggregates a kid's redemption history.
type RedemptionStats struct {
	TotalRequests     int64 `json:"total_requests"`
	Pending           int64 `json:"pending"`
	Approved          int64 `json:"approved"`
	Fulfilled         int64 `json:"fulfilled"`
	Rejected          int64 `json:"rejected"`
	Cancelled         int64 `json:"cancelled"`
	TotalSpentInCoins int64 `json:"total_spent_in_coins"`
}

func (r *RedemptionRepository) StatsByKid(kidID uint) (*RedemptionStats, error) {
	var list []models.Redemption
	if err := r.db.Where("kid_id = ?", kidID).Find(&list).Error; err != nil {
		return nil, err
	}
	stats := &RedemptionStats{TotalRequests: int64(len(list))}
	for i := range list {
		switch list[i].Status {
		case domain.RedemptionPendingApproval:
			stats.Pending++
		case domain.RedemptionApproved:
			stats.Approved++
		case domain.RedemptionFulfilled:
			stats.Fulfilled++
		case domain.RedemptionRejected:
			stats.Rejected++
		case domain.RedemptionCancelled:
			stats.Cancelled++
		}
		// Approved and fulfilled redemptions actually debited the wallet.
		if list[i].Status == domain.RedemptionApproved || list[i].Status == domain.RedemptionFulfilled {
			stats.TotalSpentInCoins += list[i].TotalSpentInCoins()
		}
	}
	return stats, nil
}
