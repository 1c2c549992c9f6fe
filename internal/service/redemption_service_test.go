package service

import (
	"testing"
	"time"

	"kidquiz/internal/domain"
	"kidquiz/internal/models"
	"kidquiz/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRedemptionService(db *gorm.DB) *RedemptionService {
	return NewRedemptionService(db,
		repository.NewItemRepository(db),
		repository.NewRedemptionRepository(db),
		repository.NewKidRepository(db),
		nil, nil)
}

func createItem(t *testing.T, svc *RedemptionService, mutate func(*models.RedeemableItem)) *models.RedeemableItem {
	t.Helper()
	item := &models.RedeemableItem{
		Name:      "Screen time",
		Category:  domain.ItemCategoryScreenTime,
		CostCoins: 60,
		MinLevel:  1,
		Quantity:  domain.ItemQuantityUnlimited,
		Active:    true,
	}
	if mutate != nil {
		mutate(item)
	}
	require.NoError(t, svc.CreateItem(item))
	return item
}

func fundKid(t *testing.T, db *gorm.DB, kidID uint, currency domain.CurrencyType, amount int64) {
	t.Helper()
	_, err := newRewardService(db).Earn(kidID, currency, amount, domain.ActivityParentBonus, "funding", nil)
	require.NoError(t, err)
}

func TestCreateItemRequiresCost(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)

	err := svc.CreateItem(&models.RedeemableItem{Name: "Free hug", Category: domain.ItemCategoryOther, Active: true})
	assert.ErrorIs(t, err, ErrItemHasNoCost)
}

func TestRequestFreezesCostsWithoutDebiting(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)
	kid := createKid(t, db, "Ada")
	fundKid(t, db, kid.ID, domain.CurrencyCoins, 100)
	item := createItem(t, svc, nil)

	red, err := svc.Request(kid.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RedemptionPendingApproval, red.Status)
	assert.Equal(t, int64(60), red.SpentCoins)

	// Raising the price later must not affect the in-flight request.
	item.CostCoins = 500
	require.NoError(t, svc.UpdateItem(item))

	snap, err := newRewardService(db).GetWallet(kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), snap.Coins, "nothing debited before approval")

	guardian := uint(7)
	red, err = svc.Approve(red.ID, guardian, "enjoy")
	require.NoError(t, err)
	assert.Equal(t, domain.RedemptionApproved, red.Status)
	require.NotNil(t, red.DecidedByGuardianID)
	assert.Equal(t, guardian, *red.DecidedByGuardianID)

	snap, err = newRewardService(db).GetWallet(kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), snap.Coins, "frozen cost debited, not the new price")

	rows := ledgerFor(t, db, kid.ID)
	require.Len(t, rows, 2)
	spent := rows[1]
	assert.Equal(t, domain.TxSpent, spent.Type)
	assert.Equal(t, domain.ActivityRedemption, spent.Activity)
	assert.Equal(t, int64(-60), spent.Amount)
	assert.Equal(t, int64(40), spent.BalanceAfter)
}

func TestRequestGuards(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)
	kid := createKid(t, db, "Ben")
	fundKid(t, db, kid.ID, domain.CurrencyCoins, 10)

	t.Run("unaffordable", func(t *testing.T) {
		item := createItem(t, svc, nil)
		_, err := svc.Request(kid.ID, item.ID)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("inactive", func(t *testing.T) {
		item := createItem(t, svc, func(i *models.RedeemableItem) { i.Active = false; i.CostCoins = 1 })
		_, err := svc.Request(kid.ID, item.ID)
		assert.ErrorIs(t, err, ErrItemInactive)
	})

	t.Run("expired", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		item := createItem(t, svc, func(i *models.RedeemableItem) { i.ExpiresAt = &past; i.CostCoins = 1 })
		_, err := svc.Request(kid.ID, item.ID)
		assert.ErrorIs(t, err, ErrItemExpired)
	})

	t.Run("out of stock", func(t *testing.T) {
		item := createItem(t, svc, func(i *models.RedeemableItem) { i.Quantity = 0; i.CostCoins = 1 })
		_, err := svc.Request(kid.ID, item.ID)
		assert.ErrorIs(t, err, ErrItemOutOfStock)
	})

	t.Run("level gate", func(t *testing.T) {
		item := createItem(t, svc, func(i *models.RedeemableItem) { i.MinLevel = 4; i.CostCoins = 1 })
		_, err := svc.Request(kid.ID, item.ID)
		assert.ErrorIs(t, err, ErrLevelTooLow)
	})

	t.Run("missing item", func(t *testing.T) {
		_, err := svc.Request(kid.ID, 9999)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestApproveFailsWhenFundsSpentMeanwhile(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)
	rewards := newRewardService(db)
	kid := createKid(t, db, "Cleo")
	fundKid(t, db, kid.ID, domain.CurrencyCoins, 100)
	item := createItem(t, svc, nil)

	red, err := svc.Request(kid.ID, item.ID)
	require.NoError(t, err)

	// The kid converts most coins away before the guardian decides.
	_, err = rewards.Convert(kid.ID, domain.CurrencyCoins, domain.CurrencySilverGems, 9)
	require.NoError(t, err)

	_, err = svc.Approve(red.ID, 1, "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	got, err := svc.GetByID(red.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RedemptionPendingApproval, got.Status, "failed approval leaves the request pending")
}

func TestApproveDecrementsFiniteStock(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)
	kid := createKid(t, db, "Dina")
	fundKid(t, db, kid.ID, domain.CurrencyCoins, 200)
	item := createItem(t, svc, func(i *models.RedeemableItem) { i.Quantity = 1 })

	red, err := svc.Request(kid.ID, item.ID)
	require.NoError(t, err)
	_, err = svc.Approve(red.ID, 1, "")
	require.NoError(t, err)

	got, err := svc.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	// Sold out now.
	_, err = svc.Request(kid.ID, item.ID)
	assert.ErrorIs(t, err, ErrItemOutOfStock)
}

func TestRejectIsTerminalAndFree(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)
	kid := createKid(t, db, "Ege")
	fundKid(t, db, kid.ID, domain.CurrencyCoins, 100)
	item := createItem(t, svc, nil)

	red, err := svc.Request(kid.ID, item.ID)
	require.NoError(t, err)

	red, err = svc.Reject(red.ID, 3, "not this week")
	require.NoError(t, err)
	assert.Equal(t, domain.RedemptionRejected, red.Status)
	assert.Equal(t, "not this week", red.GuardianNote)

	snap, err := newRewardService(db).GetWallet(kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), snap.Coins)

	_, err = svc.Approve(red.ID, 3, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Cancel(red.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFulfillRequiresApproved(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)
	kid := createKid(t, db, "Fay")
	fundKid(t, db, kid.ID, domain.CurrencyCoins, 100)
	item := createItem(t, svc, nil)

	red, err := svc.Request(kid.ID, item.ID)
	require.NoError(t, err)

	_, err = svc.Fulfill(red.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Approve(red.ID, 1, "")
	require.NoError(t, err)

	red, err = svc.Fulfill(red.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RedemptionFulfilled, red.Status)
	assert.NotNil(t, red.FulfilledAt)

	_, err = svc.Fulfill(red.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelApprovedRefundsWithoutExperience(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)
	kid := createKid(t, db, "Gus")
	fundKid(t, db, kid.ID, domain.CurrencyCoins, 100)
	item := createItem(t, svc, func(i *models.RedeemableItem) { i.Quantity = 3 })

	red, err := svc.Request(kid.ID, item.ID)
	require.NoError(t, err)
	_, err = svc.Approve(red.ID, 1, "")
	require.NoError(t, err)

	red, err = svc.Cancel(red.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RedemptionCancelled, red.Status)

	snap, err := newRewardService(db).GetWallet(kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), snap.Coins, "refunded in full")
	assert.Equal(t, int64(100), snap.ExperiencePoints, "refunds grant no experience")
	assert.Equal(t, int64(100), snap.TotalLifetimeCoins)

	got, err := svc.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity, "stock restored")

	rows := ledgerFor(t, db, kid.ID)
	require.Len(t, rows, 3)
	refund := rows[2]
	assert.Equal(t, domain.TxBonus, refund.Type)
	assert.Equal(t, int64(60), refund.Amount)
	assert.Equal(t, int64(100), refund.BalanceAfter)
}

func TestCancelPendingMovesNoFunds(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)
	kid := createKid(t, db, "Hana")
	fundKid(t, db, kid.ID, domain.CurrencyCoins, 100)
	item := createItem(t, svc, nil)

	red, err := svc.Request(kid.ID, item.ID)
	require.NoError(t, err)
	red, err = svc.Cancel(red.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RedemptionCancelled, red.Status)
	assert.Len(t, ledgerFor(t, db, kid.ID), 1)
}

func TestMultiCurrencyAffordabilityIsPerCurrency(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)
	kid := createKid(t, db, "Iris")
	fundKid(t, db, kid.ID, domain.CurrencyCoins, 300)
	item := createItem(t, svc, func(i *models.RedeemableItem) {
		i.CostCoins = 10
		i.CostSilverGems = 2
	})

	// Plenty of total value, but no silver gems at all.
	_, err := svc.Request(kid.ID, item.ID)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	fundKid(t, db, kid.ID, domain.CurrencySilverGems, 2)
	red, err := svc.Request(kid.ID, item.ID)
	require.NoError(t, err)
	_, err = svc.Approve(red.ID, 1, "")
	require.NoError(t, err)

	snap, err := newRewardService(db).GetWallet(kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(290), snap.Coins)
	assert.Equal(t, int64(0), snap.SilverGems)
}

func TestCreateItemPersistsInactiveAndZeroStock(t *testing.T) {
	db := newTestDB(t)
	svc := newRedemptionService(db)

	item := createItem(t, svc, func(i *models.RedeemableItem) {
		i.Active = false
		i.Quantity = 0
	})

	stored, err := svc.GetItem(item.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active, "inactive item must stay inactive after create")
	assert.Equal(t, 0, stored.Quantity, "zero stock must not become unlimited")
}
