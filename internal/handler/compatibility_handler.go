package handler

import (
	"net/http"

	"spotmate/internal/middleware"
	"spotmate/internal/service"

	"github.com/gin-gonic/gin"
)

type CompatibilityHandler struct {
	scorer *service.CompatibilityService
}

func NewCompatibilityHandler(scorer *service.CompatibilityService) *CompatibilityHandler {
	return &CompatibilityHandler{scorer: scorer}
}

// Score handles POST /compatibility: a single pairwise score between the
// caller and a target user.
func (h *CompatibilityHandler) Score(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		TargetUserID string `json:"target_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TargetUserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot score yourself"})
		return
	}

	result, err := h.scorer.Score(userID, req.TargetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to calculate compatibility"})
		return
	}
	c.JSON(http.StatusOK, result)
}
