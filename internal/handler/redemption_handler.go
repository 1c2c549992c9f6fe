package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"kidquiz/internal/middleware"
	"kidquiz/internal/models"
	"kidquiz/internal/service"

	"github.com/gin-gonic/gin"
)

type RedemptionHandler struct {
	redemptions *service.RedemptionService
	kids        *service.KidService
}

func NewRedemptionHandler(redemptions *service.RedemptionService, kids *service.KidService) *RedemptionHandler {
	return &RedemptionHandler{redemptions: redemptions, kids: kids}
}

type RedemptionRequest struct {
	ItemID uint `json:"item_id" binding:"required"`
}

// Request creates a PENDING_APPROVAL redemption for the kid. Affordability is
// checked now but nothing is debited until a guardian approves.
func (h *RedemptionHandler) Request(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	var req RedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	red, err := h.redemptions.Request(kidID, req.ItemID)
	if err != nil {
		h.writeRedemptionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, red)
}

func (h *RedemptionHandler) ListByKid(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.redemptions.ListByKid(kidID, c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list redemptions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redemptions": list})
}

func (h *RedemptionHandler) Stats(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	stats, err := h.redemptions.StatsByKid(kidID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListPending returns every pending request across the guardian's kids.
func (h *RedemptionHandler) ListPending(c *gin.Context) {
	list, err := h.redemptions.ListPendingForGuardian(middleware.GetAccountID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list pending redemptions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redemptions": list})
}

type DecisionRequest struct {
	Note string `json:"note" binding:"max=512"`
}

func (h *RedemptionHandler) Approve(c *gin.Context) {
	h.decide(c, h.redemptions.Approve)
}

func (h *RedemptionHandler) Reject(c *gin.Context) {
	h.decide(c, h.redemptions.Reject)
}

func (h *RedemptionHandler) decide(c *gin.Context, fn func(uint, uint, string) (*models.Redemption, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.canDecide(c, id) {
		return
	}
	red, err := fn(id, middleware.GetAccountID(c), req.Note)
	if err != nil {
		h.writeRedemptionError(c, err)
		return
	}
	c.JSON(http.StatusOK, red)
}

func (h *RedemptionHandler) Fulfill(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.canDecide(c, id) {
		return
	}
	red, err := h.redemptions.Fulfill(id, middleware.GetAccountID(c))
	if err != nil {
		h.writeRedemptionError(c, err)
		return
	}
	c.JSON(http.StatusOK, red)
}

// Cancel may be called by the kid or any linked guardian while the request is
// still PENDING_APPROVAL or APPROVED. Approved cancellations refund the kid.
func (h *RedemptionHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	red, err := h.redemptions.GetByID(id)
	if err != nil {
		h.writeRedemptionError(c, err)
		return
	}
	if !kidAccess(c, h.kids, red.KidID, false) {
		return
	}
	red, err = h.redemptions.Cancel(id)
	if err != nil {
		h.writeRedemptionError(c, err)
		return
	}
	c.JSON(http.StatusOK, red)
}

// canDecide checks the caller is a guardian with manage rights over the kid
// that owns the redemption.
func (h *RedemptionHandler) canDecide(c *gin.Context, redemptionID uint) bool {
	red, err := h.redemptions.GetByID(redemptionID)
	if err != nil {
		h.writeRedemptionError(c, err)
		return false
	}
	return guardianAccess(c, h.kids, red.KidID, true)
}

func (h *RedemptionHandler) writeRedemptionError(c *gin.Context, err error) {
	switch err {
	case service.ErrItemNotFound, service.ErrRedemptionNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case service.ErrItemInactive, service.ErrItemExpired, service.ErrItemOutOfStock, service.ErrLevelTooLow,
		service.ErrInsufficientFunds, service.ErrInvalidTransition:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[redemptions] operation failed: err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "redemption error"})
	}
}
