package service

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"kidquiz/internal/domain"
	"kidquiz/internal/models"
	"kidquiz/internal/repository"
	"kidquiz/internal/ws"
)

var (
	ErrInvalidAmount         = errors.New("amount must be a positive integer")
	ErrInvalidCurrency       = errors.New("unknown currency type")
	ErrInvalidActivity       = errors.New("unknown activity type")
	ErrUnsupportedConversion = errors.New("unsupported conversion pair")
	ErrInsufficientFunds     = errors.New("insufficient balance")
)

// WalletSnapshot is the wallet view returned to callers after every reward
// operation.
type WalletSnapshot struct {
	ID                    uint      `json:"id"`
	KidID                 uint      `json:"kidId"`
	Coins                 int64     `json:"coins"`
	SilverGems            int64     `json:"silverGems"`
	GoldCoins             int64     `json:"goldCoins"`
	Rubies                int64     `json:"rubies"`
	Sapphires             int64     `json:"sapphires"`
	Diamonds              int64     `json:"diamonds"`
	TotalLifetimeCoins    int64     `json:"totalLifetimeCoins"`
	CurrentLevel          int       `json:"currentLevel"`
	ExperiencePoints      int64     `json:"experiencePoints"`
	ExperienceToNextLevel int64     `json:"experienceToNextLevel"`
	TotalValueInCoins     int64     `json:"totalValueInCoins"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func newWalletSnapshot(w *models.Wallet) *WalletSnapshot {
	return &WalletSnapshot{
		ID:                    w.ID,
		KidID:                 w.KidID,
		Coins:                 w.Coins,
		SilverGems:            w.SilverGems,
		GoldCoins:             w.GoldCoins,
		Rubies:                w.Rubies,
		Sapphires:             w.Sapphires,
		Diamonds:              w.Diamonds,
		TotalLifetimeCoins:    w.TotalLifetimeCoins,
		CurrentLevel:          w.CurrentLevel,
		ExperiencePoints:      w.ExperiencePoints,
		ExperienceToNextLevel: w.ExperienceToNextLevel(),
		TotalValueInCoins:     w.TotalValueInCoins(),
		UpdatedAt:             w.UpdatedAt,
	}
}

// RewardService is the reward engine: earning, converting, and leveling.
// Every operation validates first, then applies its arithmetic inside one
// database transaction holding the wallet row lock, appending ledger rows
// whose BalanceAfter always matches the wallet.
type RewardService struct {
	wallets *repository.WalletRepository
	kids    *repository.KidRepository
	notif   *NotificationService
	feed    *ws.FeedHub
}

func NewRewardService(wallets *repository.WalletRepository, kids *repository.KidRepository, notif *NotificationService, feed *ws.FeedHub) *RewardService {
	return &RewardService{wallets: wallets, kids: kids, notif: notif, feed: feed}
}

// GetWallet returns the kid's wallet snapshot, creating the wallet lazily.
func (s *RewardService) GetWallet(kidID uint) (*WalletSnapshot, error) {
	w, err := s.wallets.GetOrCreateByKidID(kidID)
	if err != nil {
		return nil, err
	}
	return newWalletSnapshot(w), nil
}

// Earn credits amount of one currency to the kid's wallet. Experience and
// lifetime coins grow by amount times the currency's coin valuation, and the
// level-up check runs within the same operation.
func (s *RewardService) Earn(kidID uint, currency domain.CurrencyType, amount int64, activity domain.ActivityType, description string, relatedID *uint) (*WalletSnapshot, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !currency.Valid() {
		return nil, ErrInvalidCurrency
	}
	if !activity.Valid() {
		return nil, ErrInvalidActivity
	}
	var snap *WalletSnapshot
	var leveledUp bool
	var newLevel int
	err := s.wallets.Transaction(func(tx *repository.WalletRepository) error {
		w, err := tx.GetForUpdate(kidID)
		if err != nil {
			return err
		}
		if err := creditEarn(tx, w, currency, amount, domain.TxEarned, activity, description, relatedID); err != nil {
			return err
		}
		leveledUp, newLevel, err = runLevelCheck(tx, w)
		if err != nil {
			return err
		}
		if err := tx.Save(w); err != nil {
			return err
		}
		snap = newWalletSnapshot(w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishWallet(kidID, "earn", snap)
	if leveledUp {
		s.announceLevelUp(kidID, newLevel)
	}
	return snap, nil
}

// creditEarn applies an earning credit to the in-memory wallet and appends
// its ledger row. The caller saves the wallet.
func creditEarn(tx *repository.WalletRepository, w *models.Wallet, currency domain.CurrencyType, amount int64, txType domain.TransactionType, activity domain.ActivityType, description string, relatedID *uint) error {
	unit := domain.ValueInCoins[currency]
	if amount > math.MaxInt64/unit {
		return ErrInvalidAmount
	}
	value := amount * unit
	w.AddBalance(currency, amount)
	w.ExperiencePoints += value
	w.TotalLifetimeCoins += value
	return tx.RecordTransaction(&models.WalletTransaction{
		WalletID:        w.ID,
		KidID:           w.KidID,
		Currency:        currency,
		Amount:          amount,
		Type:            txType,
		Activity:        activity,
		Description:     description,
		RelatedEntityID: relatedID,
		BalanceAfter:    w.Balance(currency),
	})
}

// runLevelCheck promotes the wallet by at most one level when its experience
// meets the next level's quadratic requirement, crediting the level-up bonus.
// It is idempotent for unchanged experience.
func runLevelCheck(tx *repository.WalletRepository, w *models.Wallet) (bool, int, error) {
	if w.ExperiencePoints < domain.ExperienceForLevel(w.CurrentLevel+1) {
		return false, w.CurrentLevel, nil
	}
	w.CurrentLevel++
	bonus := int64(w.CurrentLevel) * domain.LevelUpGemsPerLevel
	desc := fmt.Sprintf("Level up! Reached level %d", w.CurrentLevel)
	if err := creditEarn(tx, w, domain.CurrencySilverGems, bonus, domain.TxBonus, domain.ActivityLevelUp, desc, nil); err != nil {
		return false, 0, err
	}
	return true, w.CurrentLevel, nil
}

// Convert exchanges amount units of the target currency's worth from the
// source currency. Only the five fixed pairs are convertible; the debit and
// credit are recorded as two linked ledger rows.
func (s *RewardService) Convert(kidID uint, from, to domain.CurrencyType, amount int64) (*WalletSnapshot, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !from.Valid() || !to.Valid() {
		return nil, ErrInvalidCurrency
	}
	rate, ok := domain.ConversionRate(from, to)
	if !ok {
		return nil, ErrUnsupportedConversion
	}
	if amount > math.MaxInt64/rate {
		return nil, ErrInvalidAmount
	}
	required := amount * rate
	var snap *WalletSnapshot
	err := s.wallets.Transaction(func(tx *repository.WalletRepository) error {
		w, err := tx.GetForUpdate(kidID)
		if err != nil {
			return err
		}
		if w.Balance(from) < required {
			return ErrInsufficientFunds
		}
		w.AddBalance(from, -required)
		debit := &models.WalletTransaction{
			WalletID:     w.ID,
			KidID:        w.KidID,
			Currency:     from,
			Amount:       -required,
			Type:         domain.TxConverted,
			Description:  fmt.Sprintf("Converted %d %s to %d %s", required, from, amount, to),
			BalanceAfter: w.Balance(from),
		}
		if err := tx.RecordTransaction(debit); err != nil {
			return err
		}
		w.AddBalance(to, amount)
		credit := &models.WalletTransaction{
			WalletID:        w.ID,
			KidID:           w.KidID,
			Currency:        to,
			Amount:          amount,
			Type:            domain.TxConverted,
			Description:     debit.Description,
			RelatedEntityID: &debit.ID,
			BalanceAfter:    w.Balance(to),
		}
		if err := tx.RecordTransaction(credit); err != nil {
			return err
		}
		if err := tx.Save(w); err != nil {
			return err
		}
		snap = newWalletSnapshot(w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishWallet(kidID, "convert", snap)
	return snap, nil
}

// ProcessQuizReward pays the quiz-completion reward: 10 base coins plus an
// accuracy bonus (+20 at 100, +10 at >=90, +5 at >=80). A perfect score is
// classified as QUIZ_PERFECT_SCORE.
func (s *RewardService) ProcessQuizReward(kidID, quizID uint, accuracy float64) (int64, *WalletSnapshot, error) {
	amount := int64(domain.QuizBaseCoins)
	switch {
	case accuracy >= 100:
		amount += 20
	case accuracy >= 90:
		amount += 10
	case accuracy >= 80:
		amount += 5
	}
	activity := domain.ActivityQuizCompleted
	if accuracy >= 100 {
		activity = domain.ActivityQuizPerfectScore
	}
	snap, err := s.Earn(kidID, domain.CurrencyCoins, amount, activity, fmt.Sprintf("Completed quiz %d (%.0f%%)", quizID, accuracy), &quizID)
	if err != nil {
		return 0, nil, err
	}
	return amount, snap, nil
}

// ProcessDailyLogin pays the flat daily login reward, once per UTC calendar
// day. A repeat call the same day is a no-op returning the wallet unchanged.
func (s *RewardService) ProcessDailyLogin(kidID uint) (*WalletSnapshot, error) {
	var snap *WalletSnapshot
	var leveledUp bool
	var newLevel int
	var rewarded bool
	err := s.wallets.Transaction(func(tx *repository.WalletRepository) error {
		w, err := tx.GetForUpdate(kidID)
		if err != nil {
			return err
		}
		already, err := tx.HasActivityOn(kidID, domain.ActivityDailyLogin, time.Now())
		if err != nil {
			return err
		}
		if already {
			snap = newWalletSnapshot(w)
			return nil
		}
		if err := creditEarn(tx, w, domain.CurrencyCoins, domain.DailyLoginCoins, domain.TxEarned, domain.ActivityDailyLogin, "Daily login reward", nil); err != nil {
			return err
		}
		leveledUp, newLevel, err = runLevelCheck(tx, w)
		if err != nil {
			return err
		}
		if err := tx.Save(w); err != nil {
			return err
		}
		rewarded = true
		snap = newWalletSnapshot(w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rewarded {
		s.publishWallet(kidID, "daily_login", snap)
		if leveledUp {
			s.announceLevelUp(kidID, newLevel)
		}
	}
	return snap, nil
}

// ProcessStreak pays the streak milestone reward: 50 silver gems at 7 days,
// 100 at 14, one gold coin at 30. Any other day count leaves the wallet
// untouched.
func (s *RewardService) ProcessStreak(kidID uint, days int) (*WalletSnapshot, error) {
	var currency domain.CurrencyType
	var amount int64
	switch days {
	case 7:
		currency, amount = domain.CurrencySilverGems, 50
	case 14:
		currency, amount = domain.CurrencySilverGems, 100
	case 30:
		currency, amount = domain.CurrencyGoldCoins, 1
	default:
		return s.GetWallet(kidID)
	}
	return s.Earn(kidID, currency, amount, domain.ActivityWeeklyStreak, fmt.Sprintf("%d-day streak", days), nil)
}

// ProcessAchievement pays the flat achievement reward.
func (s *RewardService) ProcessAchievement(kidID uint, name string, relatedID *uint) (*WalletSnapshot, error) {
	return s.Earn(kidID, domain.CurrencySilverGems, domain.AchievementGems, domain.ActivityAchievement, "Achievement: "+name, relatedID)
}

// ListTransactions returns the kid's ledger, newest first.
func (s *RewardService) ListTransactions(kidID uint, f repository.TransactionFilter) ([]models.WalletTransaction, error) {
	return s.wallets.ListTransactions(kidID, f)
}

func (s *RewardService) publishWallet(kidID uint, event string, snap *WalletSnapshot) {
	if s.feed == nil || snap == nil {
		return
	}
	s.feed.BroadcastToKid(kidID, map[string]interface{}{"type": "wallet", "event": event, "wallet": snap})
}

// announceLevelUp pushes the level-up to the kid's feed and notifies every
// linked guardian. Best effort; reward state is already committed.
func (s *RewardService) announceLevelUp(kidID uint, level int) {
	if s.feed != nil {
		s.feed.BroadcastToKid(kidID, map[string]interface{}{"type": "level_up", "kid_id": kidID, "level": level})
	}
	if s.notif == nil || s.kids == nil {
		return
	}
	links, err := s.kids.ListLinks(kidID)
	if err != nil {
		log.Printf("[rewards] level-up notify: list links kid=%d: %v", kidID, err)
		return
	}
	for _, l := range links {
		if err := s.notif.NotifyLevelUp(l.GuardianID, kidID, level); err != nil {
			log.Printf("[rewards] level-up notify guardian=%d: %v", l.GuardianID, err)
		}
	}
}
