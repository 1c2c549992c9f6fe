package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"kidquiz/internal/domain"
	"kidquiz/internal/models"
	"kidquiz/internal/repository"
	"kidquiz/internal/ws"

	"gorm.io/gorm"
)

var (
	ErrItemNotFound       = errors.New("redeemable item not found")
	ErrItemInactive       = errors.New("item is not active")
	ErrItemExpired        = errors.New("item has expired")
	ErrItemOutOfStock     = errors.New("item is out of stock")
	ErrItemHasNoCost      = errors.New("item must have at least one currency cost")
	ErrLevelTooLow        = errors.New("kid level too low for this item")
	ErrRedemptionNotFound = errors.New("redemption not found")
	ErrInvalidTransition  = errors.New("invalid redemption state transition")
)

// RedemptionService drives the catalog and the redemption state machine:
// PENDING_APPROVAL -> APPROVED -> FULFILLED, PENDING_APPROVAL -> REJECTED,
// {PENDING_APPROVAL, APPROVED} -> CANCELLED. The wallet is debited only at
// approval; the request freezes the item costs so later price changes never
// affect it.
type RedemptionService struct {
	db    *gorm.DB
	items *repository.ItemRepository
	reds  *repository.RedemptionRepository
	kids  *repository.KidRepository
	notif *NotificationService
	feed  *ws.FeedHub
}

func NewRedemptionService(db *gorm.DB, items *repository.ItemRepository, reds *repository.RedemptionRepository, kids *repository.KidRepository, notif *NotificationService, feed *ws.FeedHub) *RedemptionService {
	return &RedemptionService{db: db, items: items, reds: reds, kids: kids, notif: notif, feed: feed}
}

// CreateItem validates and persists a catalog entry.
func (s *RedemptionService) CreateItem(item *models.RedeemableItem) error {
	if !item.HasCost() {
		return ErrItemHasNoCost
	}
	return s.items.Create(item)
}

// UpdateItem persists catalog changes. In-flight redemptions keep their
// frozen costs regardless.
func (s *RedemptionService) UpdateItem(item *models.RedeemableItem) error {
	if !item.HasCost() {
		return ErrItemHasNoCost
	}
	return s.items.Update(item)
}

func (s *RedemptionService) DeleteItem(id uint) error {
	return s.items.Delete(id)
}

func (s *RedemptionService) GetItem(id uint) (*models.RedeemableItem, error) {
	item, err := s.items.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *RedemptionService) ListItems(category string, activeOnly bool) ([]models.RedeemableItem, error) {
	return s.items.List(category, activeOnly)
}

// Request creates a pending redemption after the affordability and level
// guards pass. Nothing is debited yet.
func (s *RedemptionService) Request(kidID, itemID uint) (*models.Redemption, error) {
	var red *models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		wallets := repository.NewWalletRepository(tx)
		w, err := wallets.GetForUpdate(kidID)
		if err != nil {
			return err
		}
		item, err := repository.NewItemRepository(tx).GetByID(itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if err := checkItemAvailable(item, w); err != nil {
			return err
		}
		red = &models.Redemption{
			WalletID: w.ID,
			KidID:    kidID,
			ItemID:   item.ID,
			Status:   domain.RedemptionPendingApproval,
		}
		red.SnapshotCosts(item)
		return repository.NewRedemptionRepository(tx).Create(red)
	})
	if err != nil {
		return nil, err
	}
	s.notifyGuardians(kidID, domain.NotifRedemptionRequested, "Redemption requested",
		fmt.Sprintf("A redemption of item %d is waiting for approval", red.ItemID),
		map[string]interface{}{"redemption_id": red.ID, "kid_id": kidID})
	return red, nil
}

// checkItemAvailable enforces the request guards: active, unexpired, in
// stock, level gate, and full per-currency affordability.
func checkItemAvailable(item *models.RedeemableItem, w *models.Wallet) error {
	if !item.Active {
		return ErrItemInactive
	}
	if item.Expired(time.Now()) {
		return ErrItemExpired
	}
	if !item.InStock() {
		return ErrItemOutOfStock
	}
	if w.CurrentLevel < item.MinLevel {
		return ErrLevelTooLow
	}
	for _, c := range domain.Currencies {
		if cost := item.Cost(c); cost > 0 && w.Balance(c) < cost {
			return ErrInsufficientFunds
		}
	}
	return nil
}

// Approve debits the frozen costs from the wallet, appends Spent ledger rows,
// and decrements finite stock, all in one transaction. Fails without side
// effects if any charged currency is no longer affordable.
func (s *RedemptionService) Approve(redemptionID, guardianID uint, note string) (*models.Redemption, error) {
	var red *models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		red, err = s.loadForTransition(tx, redemptionID, domain.RedemptionPendingApproval)
		if err != nil {
			return err
		}
		wallets := repository.NewWalletRepository(tx)
		w, err := wallets.GetForUpdate(red.KidID)
		if err != nil {
			return err
		}
		for _, c := range domain.Currencies {
			if cost := red.SpentCost(c); cost > 0 && w.Balance(c) < cost {
				return ErrInsufficientFunds
			}
		}
		for _, c := range domain.Currencies {
			cost := red.SpentCost(c)
			if cost == 0 {
				continue
			}
			w.AddBalance(c, -cost)
			if err := wallets.RecordTransaction(&models.WalletTransaction{
				WalletID:        w.ID,
				KidID:           w.KidID,
				Currency:        c,
				Amount:          -cost,
				Type:            domain.TxSpent,
				Activity:        domain.ActivityRedemption,
				Description:     fmt.Sprintf("Redeemed item %d", red.ItemID),
				RelatedEntityID: &red.ID,
				BalanceAfter:    w.Balance(c),
			}); err != nil {
				return err
			}
		}
		if err := wallets.Save(w); err != nil {
			return err
		}
		itemRepo := repository.NewItemRepository(tx)
		item, err := itemRepo.GetByID(red.ItemID)
		if err != nil {
			return err
		}
		if item.Quantity != domain.ItemQuantityUnlimited {
			if item.Quantity <= 0 {
				return ErrItemOutOfStock
			}
			item.Quantity--
			if err := itemRepo.Update(item); err != nil {
				return err
			}
		}
		now := time.Now()
		red.Status = domain.RedemptionApproved
		red.DecidedByGuardianID = &guardianID
		red.DecidedAt = &now
		red.GuardianNote = note
		return repository.NewRedemptionRepository(tx).Update(red)
	})
	if err != nil {
		return nil, err
	}
	s.announceDecision(red)
	return red, nil
}

// Reject is terminal and leaves balances untouched.
func (s *RedemptionService) Reject(redemptionID, guardianID uint, note string) (*models.Redemption, error) {
	var red *models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		red, err = s.loadForTransition(tx, redemptionID, domain.RedemptionPendingApproval)
		if err != nil {
			return err
		}
		now := time.Now()
		red.Status = domain.RedemptionRejected
		red.DecidedByGuardianID = &guardianID
		red.DecidedAt = &now
		red.GuardianNote = note
		return repository.NewRedemptionRepository(tx).Update(red)
	})
	if err != nil {
		return nil, err
	}
	s.announceDecision(red)
	return red, nil
}

// Fulfill marks an approved redemption as handed over.
func (s *RedemptionService) Fulfill(redemptionID, guardianID uint) (*models.Redemption, error) {
	var red *models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		red, err = s.loadForTransition(tx, redemptionID, domain.RedemptionApproved)
		if err != nil {
			return err
		}
		now := time.Now()
		red.Status = domain.RedemptionFulfilled
		red.FulfilledAt = &now
		return repository.NewRedemptionRepository(tx).Update(red)
	})
	if err != nil {
		return nil, err
	}
	return red, nil
}

// Cancel is allowed from PENDING_APPROVAL (nothing to refund) or APPROVED
// (refund the frozen costs and restock finite quantity).
func (s *RedemptionService) Cancel(redemptionID uint) (*models.Redemption, error) {
	var red *models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		red, err = s.load(tx, redemptionID)
		if err != nil {
			return err
		}
		switch red.Status {
		case domain.RedemptionPendingApproval:
			// no funds moved yet
		case domain.RedemptionApproved:
			if err := s.refund(tx, red); err != nil {
				return err
			}
		default:
			return ErrInvalidTransition
		}
		red.Status = domain.RedemptionCancelled
		return repository.NewRedemptionRepository(tx).Update(red)
	})
	if err != nil {
		return nil, err
	}
	return red, nil
}

// refund returns the frozen costs as Bonus ledger rows and restocks the item.
// Refunds restore balances only; experience and lifetime coins are untouched.
func (s *RedemptionService) refund(tx *gorm.DB, red *models.Redemption) error {
	wallets := repository.NewWalletRepository(tx)
	w, err := wallets.GetForUpdate(red.KidID)
	if err != nil {
		return err
	}
	for _, c := range domain.Currencies {
		cost := red.SpentCost(c)
		if cost == 0 {
			continue
		}
		w.AddBalance(c, cost)
		if err := wallets.RecordTransaction(&models.WalletTransaction{
			WalletID:        w.ID,
			KidID:           w.KidID,
			Currency:        c,
			Amount:          cost,
			Type:            domain.TxBonus,
			Activity:        domain.ActivityRedemption,
			Description:     fmt.Sprintf("Refund for cancelled redemption %d", red.ID),
			RelatedEntityID: &red.ID,
			BalanceAfter:    w.Balance(c),
		}); err != nil {
			return err
		}
	}
	if err := wallets.Save(w); err != nil {
		return err
	}
	itemRepo := repository.NewItemRepository(tx)
	item, err := itemRepo.GetByID(red.ItemID)
	if err != nil {
		return err
	}
	if item.Quantity != domain.ItemQuantityUnlimited {
		item.Quantity++
		return itemRepo.Update(item)
	}
	return nil
}

func (s *RedemptionService) load(tx *gorm.DB, id uint) (*models.Redemption, error) {
	red, err := repository.NewRedemptionRepository(tx).GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRedemptionNotFound
		}
		return nil, err
	}
	return red, nil
}

func (s *RedemptionService) loadForTransition(tx *gorm.DB, id uint, wantStatus string) (*models.Redemption, error) {
	red, err := s.load(tx, id)
	if err != nil {
		return nil, err
	}
	if red.Status != wantStatus {
		return nil, ErrInvalidTransition
	}
	return red, nil
}

func (s *RedemptionService) GetByID(id uint) (*models.Redemption, error) {
	red, err := s.reds.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRedemptionNotFound
		}
		return nil, err
	}
	return red, nil
}

func (s *RedemptionService) ListByKid(kidID uint, status string, limit, offset int) ([]models.Redemption, error) {
	return s.reds.ListByKid(kidID, status, limit, offset)
}

func (s *RedemptionService) StatsByKid(kidID uint) (*repository.RedemptionStats, error) {
	return s.reds.StatsByKid(kidID)
}

// ListPendingForGuardian returns pending requests across every kid the
// guardian is linked to.
func (s *RedemptionService) ListPendingForGuardian(guardianID uint) ([]models.Redemption, error) {
	return s.reds.ListPendingForGuardian(guardianID)
}

func (s *RedemptionService) announceDecision(red *models.Redemption) {
	if s.feed != nil {
		s.feed.BroadcastToKid(red.KidID, map[string]interface{}{
			"type":          "redemption",
			"redemption_id": red.ID,
			"status":        red.Status,
		})
	}
	s.notifyGuardians(red.KidID, domain.NotifRedemptionDecided, "Redemption "+red.Status,
		fmt.Sprintf("Redemption %d is now %s", red.ID, red.Status),
		map[string]interface{}{"redemption_id": red.ID, "kid_id": red.KidID})
}

func (s *RedemptionService) notifyGuardians(kidID uint, notifType, title, body string, data map[string]interface{}) {
	if s.notif == nil || s.kids == nil {
		return
	}
	links, err := s.kids.ListLinks(kidID)
	if err != nil {
		log.Printf("[redemptions] notify: list links kid=%d: %v", kidID, err)
		return
	}
	for _, l := range links {
		if err := s.notif.Notify(l.GuardianID, notifType, title, body, data); err != nil {
			log.Printf("[redemptions] notify guardian=%d: %v", l.GuardianID, err)
		}
	}
}
