package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"kidquiz/internal/models"
	"kidquiz/internal/service"
	"kidquiz/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	redemptions *service.RedemptionService
	uploads     cloudinary.Client
}

func NewItemHandler(redemptions *service.RedemptionService, uploads cloudinary.Client) *ItemHandler {
	return &ItemHandler{redemptions: redemptions, uploads: uploads}
}

type ItemRequest struct {
	Name           string     `json:"name" binding:"required,min=1,max=128"`
	Description    string     `json:"description"`
	ImageURL       string     `json:"image_url"`
	Category       string     `json:"category" binding:"required,oneof=TOY TREAT ACTIVITY SCREEN_TIME PRIVILEGE OTHER"`
	CostCoins      int64      `json:"cost_coins" binding:"min=0"`
	CostSilverGems int64      `json:"cost_silver_gems" binding:"min=0"`
	CostGoldCoins  int64      `json:"cost_gold_coins" binding:"min=0"`
	CostRubies     int64      `json:"cost_rubies" binding:"min=0"`
	CostSapphires  int64      `json:"cost_sapphires" binding:"min=0"`
	CostDiamonds   int64      `json:"cost_diamonds" binding:"min=0"`
	MinLevel       int        `json:"min_level"`
	Quantity       *int       `json:"quantity"`
	Active         *bool      `json:"active"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

func (r *ItemRequest) apply(item *models.RedeemableItem) {
	item.Name = r.Name
	item.Description = r.Description
	item.ImageURL = r.ImageURL
	item.Category = r.Category
	item.CostCoins = r.CostCoins
	item.CostSilverGems = r.CostSilverGems
	item.CostGoldCoins = r.CostGoldCoins
	item.CostRubies = r.CostRubies
	item.CostSapphires = r.CostSapphires
	item.CostDiamonds = r.CostDiamonds
	item.MinLevel = r.MinLevel
	if item.MinLevel < 1 {
		item.MinLevel = 1
	}
	if r.Quantity != nil {
		item.Quantity = *r.Quantity
	}
	if r.Active != nil {
		item.Active = *r.Active
	}
	item.ExpiresAt = r.ExpiresAt
}

func (h *ItemHandler) Create(c *gin.Context) {
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item := &models.RedeemableItem{Quantity: -1, Active: true}
	req.apply(item)
	if err := h.redemptions.CreateItem(item); err != nil {
		h.writeItemError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.redemptions.GetItem(id)
	if err != nil {
		h.writeItemError(c, err)
		return
	}
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.apply(item)
	if err := h.redemptions.UpdateItem(item); err != nil {
		h.writeItemError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.redemptions.DeleteItem(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
}

func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.redemptions.GetItem(id)
	if err != nil {
		h.writeItemError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// List returns catalog items. Kids only ever see active items; guardians may
// pass active=false to include disabled ones.
func (h *ItemHandler) List(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "true") != "false"
	items, err := h.redemptions.ListItems(c.Query("category"), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UploadImage attaches a catalog image via Cloudinary. Returns 503 when no
// upload backend is configured.
func (h *ItemHandler) UploadImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if h.uploads == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads not configured"})
		return
	}
	item, err := h.redemptions.GetItem(id)
	if err != nil {
		h.writeItemError(c, err)
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	defer file.Close()

	url, _, err := h.uploads.UploadImage(c.Request.Context(), file, "catalog", fmt.Sprintf("item_%d", item.ID))
	if err != nil {
		log.Printf("[items] image upload failed: item=%d err=%v", item.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}
	item.ImageURL = url
	if err := h.redemptions.UpdateItem(item); err != nil {
		h.writeItemError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

func (h *ItemHandler) writeItemError(c *gin.Context, err error) {
	switch err {
	case service.ErrItemNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case service.ErrItemHasNoCost:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog error"})
	}
}
