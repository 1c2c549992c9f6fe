package service

import (
	"math"
	"testing"

	"kidquiz/internal/domain"
	"kidquiz/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarnCreditsWalletAndLedger(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Ada")
	svc := newRewardService(db)

	snap, err := svc.Earn(kid.ID, domain.CurrencyCoins, 50, domain.ActivityParentBonus, "chores", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(50), snap.Coins)
	assert.Equal(t, int64(50), snap.ExperiencePoints)
	assert.Equal(t, int64(50), snap.TotalLifetimeCoins)
	assert.Equal(t, 1, snap.CurrentLevel)
	assert.Equal(t, int64(350), snap.ExperienceToNextLevel)

	rows := ledgerFor(t, db, kid.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.TxEarned, rows[0].Type)
	assert.Equal(t, domain.ActivityParentBonus, rows[0].Activity)
	assert.Equal(t, int64(50), rows[0].Amount)
	assert.Equal(t, int64(50), rows[0].BalanceAfter)
}

func TestEarnExperienceUsesCurrencyValuation(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Ben")
	svc := newRewardService(db)

	// 3 silver gems are worth 30 coins of experience. Not enough for level 2.
	snap, err := svc.Earn(kid.ID, domain.CurrencySilverGems, 3, domain.ActivityAchievement, "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.SilverGems)
	assert.Equal(t, int64(30), snap.ExperiencePoints)
	assert.Equal(t, int64(30), snap.TotalValueInCoins)
	assert.Equal(t, 1, snap.CurrentLevel)
}

func TestEarnRejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Cleo")
	svc := newRewardService(db)

	_, err := svc.Earn(kid.ID, domain.CurrencyCoins, 0, domain.ActivityParentBonus, "", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Earn(kid.ID, domain.CurrencyCoins, -5, domain.ActivityParentBonus, "", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Earn(kid.ID, "BRONZE", 5, domain.ActivityParentBonus, "", nil)
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = svc.Earn(kid.ID, domain.CurrencyCoins, 5, "GARDENING", "", nil)
	assert.ErrorIs(t, err, ErrInvalidActivity)

	assert.Empty(t, ledgerFor(t, db, kid.ID))
}

func TestLevelUpAtQuadraticThreshold(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Dina")
	svc := newRewardService(db)

	// Level 2 needs 400 experience. Three earns of 100 coins stay at level 1.
	for i := 0; i < 3; i++ {
		snap, err := svc.Earn(kid.ID, domain.CurrencyCoins, 100, domain.ActivityHomeworkCompleted, "", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, snap.CurrentLevel)
	}

	snap, err := svc.Earn(kid.ID, domain.CurrencyCoins, 100, domain.ActivityHomeworkCompleted, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.CurrentLevel)
	// Level-up bonus: level 2 x 10 silver gems, which itself grants 200 xp.
	assert.Equal(t, int64(20), snap.SilverGems)
	assert.Equal(t, int64(600), snap.ExperiencePoints)
	assert.Equal(t, int64(400), snap.Coins)

	rows := ledgerFor(t, db, kid.ID)
	require.Len(t, rows, 5)
	bonus := rows[4]
	assert.Equal(t, domain.TxBonus, bonus.Type)
	assert.Equal(t, domain.ActivityLevelUp, bonus.Activity)
	assert.Equal(t, int64(20), bonus.Amount)
	assert.Equal(t, domain.CurrencySilverGems, bonus.Currency)
}

func TestLevelUpIsOnePerOperation(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Ege")
	svc := newRewardService(db)

	// One sapphire is 1000 xp, past the level 2 and level 3 thresholds, but a
	// single operation promotes a single level.
	snap, err := svc.Earn(kid.ID, domain.CurrencySapphires, 1, domain.ActivitySpecialEvent, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.CurrentLevel)
	assert.Equal(t, int64(20), snap.SilverGems)
	assert.Equal(t, int64(1200), snap.ExperiencePoints)

	// The next earn picks up the pending promotion.
	snap, err = svc.Earn(kid.ID, domain.CurrencyCoins, 1, domain.ActivityParentBonus, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.CurrentLevel)
	assert.Equal(t, int64(50), snap.SilverGems)
}

func TestConvertDebitsAtFixedRate(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Fay")
	svc := newRewardService(db)

	_, err := svc.Earn(kid.ID, domain.CurrencyCoins, 100, domain.ActivityParentBonus, "", nil)
	require.NoError(t, err)

	snap, err := svc.Convert(kid.ID, domain.CurrencyCoins, domain.CurrencySilverGems, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(50), snap.Coins)
	assert.Equal(t, int64(5), snap.SilverGems)
	// Conversion moves value sideways: no new experience or lifetime coins.
	assert.Equal(t, int64(100), snap.ExperiencePoints)
	assert.Equal(t, int64(100), snap.TotalLifetimeCoins)
	assert.Equal(t, int64(100), snap.TotalValueInCoins)

	rows := ledgerFor(t, db, kid.ID)
	require.Len(t, rows, 3)
	debit, credit := rows[1], rows[2]
	assert.Equal(t, domain.TxConverted, debit.Type)
	assert.Equal(t, int64(-50), debit.Amount)
	assert.Equal(t, int64(50), debit.BalanceAfter)
	assert.Equal(t, domain.TxConverted, credit.Type)
	assert.Equal(t, int64(5), credit.Amount)
	require.NotNil(t, credit.RelatedEntityID)
	assert.Equal(t, debit.ID, *credit.RelatedEntityID)
}

func TestConvertInsufficientFundsLeavesWalletUntouched(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Gus")
	svc := newRewardService(db)

	_, err := svc.Earn(kid.ID, domain.CurrencyCoins, 30, domain.ActivityParentBonus, "", nil)
	require.NoError(t, err)

	_, err = svc.Convert(kid.ID, domain.CurrencyCoins, domain.CurrencySilverGems, 5)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	snap, err := svc.GetWallet(kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), snap.Coins)
	assert.Equal(t, int64(0), snap.SilverGems)
	assert.Len(t, ledgerFor(t, db, kid.ID), 1)
}

func TestConvertUnsupportedPair(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Hana")
	svc := newRewardService(db)

	_, err := svc.Convert(kid.ID, domain.CurrencySilverGems, domain.CurrencyCoins, 1)
	assert.ErrorIs(t, err, ErrUnsupportedConversion)

	_, err = svc.Convert(kid.ID, domain.CurrencyCoins, domain.CurrencyGoldCoins, 1)
	assert.ErrorIs(t, err, ErrUnsupportedConversion)

	_, err = svc.Convert(kid.ID, domain.CurrencyCoins, domain.CurrencySilverGems, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestConvertGoldBranchesToRubiesAndSapphires(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Iris")
	svc := newRewardService(db)

	_, err := svc.Earn(kid.ID, domain.CurrencyGoldCoins, 20, domain.ActivitySpecialEvent, "", nil)
	require.NoError(t, err)

	snap, err := svc.Convert(kid.ID, domain.CurrencyGoldCoins, domain.CurrencyRubies, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(10), snap.GoldCoins)
	assert.Equal(t, int64(2), snap.Rubies)

	snap, err = svc.Convert(kid.ID, domain.CurrencyGoldCoins, domain.CurrencySapphires, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.GoldCoins)
	assert.Equal(t, int64(1), snap.Sapphires)
}

func TestDailyLoginPaysOncePerDay(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Juno")
	svc := newRewardService(db)

	snap, err := svc.ProcessDailyLogin(kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(domain.DailyLoginCoins), snap.Coins)

	snap, err = svc.ProcessDailyLogin(kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(domain.DailyLoginCoins), snap.Coins)

	rows, err := svc.ListTransactions(kid.ID, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStreakMilestones(t *testing.T) {
	db := newTestDB(t)
	svc := newRewardService(db)

	kid := createKid(t, db, "Kai")
	snap, err := svc.ProcessStreak(kid.ID, 7)
	require.NoError(t, err)
	// 50 gems = 500 xp, which also triggers the level 2 bonus of 20 gems.
	assert.Equal(t, int64(70), snap.SilverGems)
	assert.Equal(t, 2, snap.CurrentLevel)
	assert.Equal(t, int64(700), snap.ExperiencePoints)

	other := createKid(t, db, "Lou")
	snap, err = svc.ProcessStreak(other.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.GoldCoins)

	// Non-milestone day counts are a no-op.
	plain := createKid(t, db, "Mia")
	snap, err = svc.ProcessStreak(plain.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.SilverGems)
	assert.Empty(t, ledgerFor(t, db, plain.ID))
}

func TestQuizRewardAccuracyTiers(t *testing.T) {
	db := newTestDB(t)
	svc := newRewardService(db)

	cases := []struct {
		accuracy float64
		coins    int64
		activity domain.ActivityType
	}{
		{100, 30, domain.ActivityQuizPerfectScore},
		{92, 20, domain.ActivityQuizCompleted},
		{85, 15, domain.ActivityQuizCompleted},
		{66.67, 10, domain.ActivityQuizCompleted},
		{0, 10, domain.ActivityQuizCompleted},
	}
	for _, tc := range cases {
		kid := createKid(t, db, "quiz-kid")
		coins, snap, err := svc.ProcessQuizReward(kid.ID, 1, tc.accuracy)
		require.NoError(t, err)
		assert.Equal(t, tc.coins, coins, "accuracy %.2f", tc.accuracy)
		assert.Equal(t, tc.coins, snap.Coins)

		rows := ledgerFor(t, db, kid.ID)
		require.Len(t, rows, 1)
		assert.Equal(t, tc.activity, rows[0].Activity)
	}
}

func TestAchievementReward(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Nia")
	svc := newRewardService(db)

	snap, err := svc.ProcessAchievement(kid.ID, "First perfect week", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(domain.AchievementGems), snap.SilverGems)

	rows := ledgerFor(t, db, kid.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.ActivityAchievement, rows[0].Activity)
	assert.Contains(t, rows[0].Description, "First perfect week")
}

func TestConvertOverflowAmountRejected(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Nia")
	svc := newRewardService(db)

	_, err := svc.Earn(kid.ID, domain.CurrencyCoins, 10, domain.ActivityParentBonus, "", nil)
	require.NoError(t, err)

	// amount*rate wraps around int64; the debit must be rejected, not minted.
	_, err = svc.Convert(kid.ID, domain.CurrencyCoins, domain.CurrencySilverGems, math.MaxInt64/10+1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	snap, err := svc.GetWallet(kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), snap.Coins)
	assert.Equal(t, int64(0), snap.SilverGems)
	assert.Len(t, ledgerFor(t, db, kid.ID), 1)
}

func TestEarnOverflowAmountRejected(t *testing.T) {
	db := newTestDB(t)
	kid := createKid(t, db, "Omar")
	svc := newRewardService(db)

	_, err := svc.Earn(kid.ID, domain.CurrencyDiamonds, math.MaxInt64/10000+1, domain.ActivityParentBonus, "", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Empty(t, ledgerFor(t, db, kid.ID))
}
