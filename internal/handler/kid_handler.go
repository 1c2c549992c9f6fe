package handler

import (
	"log"
	"net/http"
	"time"

	"kidquiz/config"
	"kidquiz/internal/auth"
	"kidquiz/internal/domain"
	"kidquiz/internal/middleware"
	"kidquiz/internal/models"
	"kidquiz/internal/service"

	"github.com/gin-gonic/gin"
)

type KidHandler struct {
	cfg  *config.Config
	kids *service.KidService
}

func NewKidHandler(cfg *config.Config, kids *service.KidService) *KidHandler {
	return &KidHandler{cfg: cfg, kids: kids}
}

type CreateKidRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=64"`
	BirthDate   string `json:"birth_date"` // ISO date, optional
	GradeLevel  int    `json:"grade_level" binding:"omitempty,min=1,max=12"`
	AvatarColor string `json:"avatar_color"`
}

func (h *KidHandler) Create(c *gin.Context) {
	var req CreateKidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kid := &models.Kid{
		Name:        req.Name,
		GradeLevel:  req.GradeLevel,
		AvatarColor: req.AvatarColor,
		Active:      true,
	}
	if kid.GradeLevel == 0 {
		kid.GradeLevel = 1
	}
	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid birth_date format (use YYYY-MM-DD)"})
			return
		}
		kid.BirthDate = &bd
	}
	if err := h.kids.CreateKid(middleware.GetAccountID(c), kid); err != nil {
		log.Printf("[kids] create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create kid"})
		return
	}
	c.JSON(http.StatusCreated, kid)
}

func (h *KidHandler) List(c *gin.Context) {
	kids, err := h.kids.ListKids(middleware.GetAccountID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list kids"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kids": kids})
}

func (h *KidHandler) Get(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	kid, err := h.kids.GetKid(kidID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "kid not found"})
		return
	}
	c.JSON(http.StatusOK, kid)
}

type UpdateKidRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=64"`
	GradeLevel  *int    `json:"grade_level" binding:"omitempty,min=1,max=12"`
	AvatarColor *string `json:"avatar_color"`
	Active      *bool   `json:"active"`
}

func (h *KidHandler) Update(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !guardianAccess(c, h.kids, kidID, true) {
		return
	}
	var req UpdateKidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kid, err := h.kids.GetKid(kidID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "kid not found"})
		return
	}
	if req.Name != nil {
		kid.Name = *req.Name
	}
	if req.GradeLevel != nil {
		kid.GradeLevel = *req.GradeLevel
	}
	if req.AvatarColor != nil {
		kid.AvatarColor = *req.AvatarColor
	}
	if req.Active != nil {
		kid.Active = *req.Active
	}
	if err := h.kids.UpdateKid(kid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update kid"})
		return
	}
	c.JSON(http.StatusOK, kid)
}

func (h *KidHandler) Delete(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	link, err := h.kids.LinkFor(middleware.GetAccountID(c), kidID)
	if err != nil || link.Role != domain.LinkRoleOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner may delete a kid"})
		return
	}
	if err := h.kids.DeleteKid(kidID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete kid"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type InviteGuardianRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=GUARDIAN VIEWER"`
}

func (h *KidHandler) InviteGuardian(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req InviteGuardianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	link, err := h.kids.InviteGuardian(middleware.GetAccountID(c), kidID, req.Email, req.Role)
	if err != nil {
		switch err {
		case service.ErrNotLinked, service.ErrGuardianNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrNotOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case service.ErrMaxGuardians, service.ErrAlreadyLinked:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case service.ErrInvalidLinkRole:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[kids] invite failed: kid=%d err=%v", kidID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "invite failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *KidHandler) RemoveGuardian(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	guardianID, ok := paramID(c, "gid")
	if !ok {
		return
	}
	err := h.kids.RemoveGuardian(middleware.GetAccountID(c), kidID, guardianID)
	if err != nil {
		switch err {
		case service.ErrNotLinked:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrNotOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "remove failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *KidHandler) ListGuardians(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	links, err := h.kids.ListGuardians(kidID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list guardians"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"guardians": links})
}

// IssueKidToken mints a scoped token for the kid's own device.
func (h *KidHandler) IssueKidToken(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !guardianAccess(c, h.kids, kidID, true) {
		return
	}
	token, err := auth.GenerateKidToken(&h.cfg.JWT, kidID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kid_token": token})
}

type UpdateSettingsRequest struct {
	DailyScreenTimeMinutes *int    `json:"daily_screen_time_minutes" binding:"omitempty,min=0,max=1440"`
	AllowedQuizCategories  *string `json:"allowed_quiz_categories"`
	NotificationsEnabled   *bool   `json:"notifications_enabled"`
}

func (h *KidHandler) GetSettings(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	settings, err := h.kids.GetSettings(kidID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *KidHandler) UpdateSettings(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !guardianAccess(c, h.kids, kidID, true) {
		return
	}
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, err := h.kids.GetSettings(kidID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load settings"})
		return
	}
	if req.DailyScreenTimeMinutes != nil {
		settings.DailyScreenTimeMinutes = *req.DailyScreenTimeMinutes
	}
	if req.AllowedQuizCategories != nil {
		settings.AllowedQuizCategories = *req.AllowedQuizCategories
	}
	if req.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *req.NotificationsEnabled
	}
	if err := h.kids.UpdateSettings(settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}
