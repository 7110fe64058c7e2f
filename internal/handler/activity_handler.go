package handler

import (
	"net/http"

	"spotmate/internal/middleware"
	"spotmate/internal/models"
	"spotmate/internal/service"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	recorder *service.ActivityRecorder
}

func NewActivityHandler(recorder *service.ActivityRecorder) *ActivityHandler {
	return &ActivityHandler{recorder: recorder}
}

// Stats handles GET /activity/stats: the caller's aggregated visit behavior.
func (h *ActivityHandler) Stats(c *gin.Context) {
	userID := middleware.GetUserID(c)
	stats, err := h.recorder.Stats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load activity stats"})
		return
	}
	if stats.Patterns == nil {
		stats.Patterns = []models.ActivityPattern{}
	}
	c.JSON(http.StatusOK, stats)
}
