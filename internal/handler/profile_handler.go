package handler

import (
	"errors"
	"net/http"

	"spotmate/internal/domain"
	"spotmate/internal/middleware"
	"spotmate/internal/models"
	"spotmate/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	profiles *repository.ProfileRepository
}

func NewProfileHandler(profiles *repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	p, err := h.profiles.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":   p,
		"interests": p.InterestList(),
	})
}

// Save handles PUT /profile: create-or-update including onboarding. Saving
// exactly three interests from the fixed vocabulary completes onboarding.
func (h *ProfileHandler) Save(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Name                  string   `json:"name"`
		Interests             []string `json:"interests"`
		EmojiSignature        string   `json:"emoji_signature"`
		AvatarURL             string   `json:"avatar_url"`
		IsVisible             *bool    `json:"is_visible"`
		AutoAcceptConnections *bool    `json:"auto_accept_connections"`
		AvailabilityStatus    string   `json:"availability_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.profiles.GetByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = &models.Profile{ID: userID}
		if err := h.profiles.Create(p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create profile"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.EmojiSignature != "" {
		p.EmojiSignature = req.EmojiSignature
	}
	if req.AvatarURL != "" {
		p.AvatarURL = req.AvatarURL
	}
	if req.AvailabilityStatus != "" {
		p.AvailabilityStatus = req.AvailabilityStatus
	}
	if req.IsVisible != nil {
		p.IsVisible = *req.IsVisible
	}
	if req.AutoAcceptConnections != nil {
		p.AutoAcceptConnections = *req.AutoAcceptConnections
	}
	if req.Interests != nil {
		if err := domain.ValidateInterests(req.Interests); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p.SetInterests(req.Interests)
		p.Onboarded = true
	}

	if err := h.profiles.Save(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":   p,
		"interests": p.InterestList(),
	})
}
