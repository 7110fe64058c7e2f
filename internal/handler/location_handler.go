package handler

import (
	"net/http"

	"spotmate/internal/middleware"
	"spotmate/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LocationHandler struct {
	publisher *service.PresencePublisher
	recorder  *service.ActivityRecorder
	log       *zap.Logger
}

func NewLocationHandler(publisher *service.PresencePublisher, recorder *service.ActivityRecorder, log *zap.Logger) *LocationHandler {
	return &LocationHandler{publisher: publisher, recorder: recorder, log: log}
}

// Ping handles POST /location/ping: one raw GPS fix from the client. The
// publisher decides whether anything is stored; ingestion always succeeds.
func (h *LocationHandler) Ping(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Lat      *float64 `json:"lat" binding:"required"`
		Lng      *float64 `json:"lng" binding:"required"`
		Accuracy float64  `json:"accuracy"`
		Speed    float64  `json:"speed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
		return
	}

	sample := service.Sample{
		Lat:            *req.Lat,
		Lng:            *req.Lng,
		AccuracyMeters: req.Accuracy,
		SpeedMPS:       req.Speed,
	}
	h.publisher.Track(userID, sample)
	if err := h.recorder.Record(c.Request.Context(), userID, sample); err != nil {
		// Activity recording is best-effort; the ping itself succeeded.
		h.log.Debug("activity record skipped", zap.String("user_id", userID), zap.Error(err))
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// SetTracking handles POST /location/tracking: enables or disables sharing.
// Disabling flushes anything buffered and tears down the session state.
func (h *LocationHandler) SetTracking(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !*req.Enabled {
		h.publisher.Disable(userID)
	}
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}

// Status handles GET /presence/me: the caller's publish state.
func (h *LocationHandler) Status(c *gin.Context) {
	userID := middleware.GetUserID(c)
	c.JSON(http.StatusOK, h.publisher.Status(userID))
}
