package handler

import (
	"log"
	"net/http"
	"strconv"

	"kidquiz/internal/domain"
	"kidquiz/internal/middleware"
	"kidquiz/internal/repository"
	"kidquiz/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	rewards *service.RewardService
	kids    *service.KidService
}

func NewWalletHandler(rewards *service.RewardService, kids *service.KidService) *WalletHandler {
	return &WalletHandler{rewards: rewards, kids: kids}
}

// GetWallet returns the kid's wallet snapshot, creating the wallet lazily.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	snap, err := h.rewards.GetWallet(kidID)
	if err != nil {
		log.Printf("[wallet] get failed: kid=%d err=%v", kidID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *WalletHandler) ListTransactions(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	f := repository.TransactionFilter{
		Currency: domain.CurrencyType(c.Query("currency")),
		Type:     domain.TransactionType(c.Query("type")),
		Limit:    limit,
		Offset:   offset,
	}
	list, err := h.rewards.ListTransactions(kidID, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

type EarnRequest struct {
	RewardType          string `json:"reward_type" binding:"required"`
	Amount              int64  `json:"amount" binding:"required,min=1"`
	ActivityType        string `json:"activity_type" binding:"required"`
	ActivityDescription string `json:"activity_description"`
	RelatedActivityID   *uint  `json:"related_activity_id"`
}

// Earn lets a managing guardian credit a reward (parent bonus, homework,
// reading time...).
func (h *WalletHandler) Earn(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !guardianAccess(c, h.kids, kidID, true) {
		return
	}
	var req EarnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currency, err := domain.ParseCurrency(req.RewardType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	activity, err := domain.ParseActivity(req.ActivityType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := h.rewards.Earn(kidID, currency, req.Amount, activity, req.ActivityDescription, req.RelatedActivityID)
	if err != nil {
		h.writeRewardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type ConvertRequest struct {
	FromCurrency string `json:"from_currency" binding:"required"`
	ToCurrency   string `json:"to_currency" binding:"required"`
	Amount       int64  `json:"amount" binding:"required,min=1"`
}

func (h *WalletHandler) Convert(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, err := domain.ParseCurrency(req.FromCurrency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := domain.ParseCurrency(req.ToCurrency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := h.rewards.Convert(kidID, from, to, req.Amount)
	if err != nil {
		h.writeRewardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DailyLogin pays the once-per-UTC-day login reward; a repeat call returns
// the wallet unchanged.
func (h *WalletHandler) DailyLogin(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	snap, err := h.rewards.ProcessDailyLogin(kidID)
	if err != nil {
		h.writeRewardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type StreakRequest struct {
	Days int `json:"days" binding:"required,min=1"`
}

func (h *WalletHandler) Streak(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !guardianAccess(c, h.kids, kidID, true) {
		return
	}
	var req StreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := h.rewards.ProcessStreak(kidID, req.Days)
	if err != nil {
		h.writeRewardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type AchievementRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=128"`
	RelatedID *uint  `json:"related_id"`
}

func (h *WalletHandler) Achievement(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !guardianAccess(c, h.kids, kidID, true) {
		return
	}
	var req AchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := h.rewards.ProcessAchievement(kidID, req.Name, req.RelatedID)
	if err != nil {
		h.writeRewardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ConversionRates exposes the fixed "{From}_{To}" -> rate table.
func (h *WalletHandler) ConversionRates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rates": domain.ConversionRateTable()})
}

func (h *WalletHandler) writeRewardError(c *gin.Context, err error) {
	switch err {
	case service.ErrInvalidAmount, service.ErrInvalidCurrency, service.ErrInvalidActivity, service.ErrUnsupportedConversion:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.ErrInsufficientFunds:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[wallet] operation failed: guardian=%d err=%v", middleware.GetAccountID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet operation failed"})
	}
}
