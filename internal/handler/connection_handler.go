package handler

import (
	"net/http"
	"strconv"

	"spotmate/internal/middleware"
	"spotmate/internal/repository"
	"spotmate/internal/service"

	"github.com/gin-gonic/gin"
)

const incomingFeedLimit = 50

type ConnectionHandler struct {
	connections *service.ConnectionService
	matches     *repository.MatchRepository
	profiles    *repository.ProfileRepository
}

func NewConnectionHandler(
	connections *service.ConnectionService,
	matches *repository.MatchRepository,
	profiles *repository.ProfileRepository,
) *ConnectionHandler {
	return &ConnectionHandler{connections: connections, matches: matches, profiles: profiles}
}

// Send handles POST /connections: ask another user to connect. Auto-accept
// receivers connect immediately; everyone else gets a pending request.
func (h *ConnectionHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res := h.connections.SendRequest(c.Request.Context(), userID, req.ReceiverID)
	if !res.Success {
		c.JSON(http.StatusBadRequest, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Incoming handles GET /connections/incoming: the caller's pending requests,
// enriched with each sender's display info.
func (h *ConnectionHandler) Incoming(c *gin.Context) {
	userID := middleware.GetUserID(c)
	requests, err := h.matches.ListPendingForReceiver(userID, incomingFeedLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}

	out := make([]gin.H, 0, len(requests))
	for _, req := range requests {
		item := gin.H{
			"id":         req.ID,
			"sender_id":  req.SenderID,
			"created_at": req.CreatedAt,
		}
		if sender, err := h.profiles.GetByID(req.SenderID); err == nil {
			item["sender_name"] = sender.Name
			item["sender_emoji"] = sender.EmojiSignature
			item["sender_avatar_url"] = sender.AvatarURL
			item["sender_interests"] = sender.InterestList()
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"requests": out, "count": len(out)})
}

// Accept handles POST /connections/:id/accept.
func (h *ConnectionHandler) Accept(c *gin.Context) {
	userID := middleware.GetUserID(c)
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	res := h.connections.Accept(c.Request.Context(), userID, uint(requestID))
	if !res.Success {
		c.JSON(http.StatusBadRequest, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Reject handles POST /connections/:id/reject.
func (h *ConnectionHandler) Reject(c *gin.Context) {
	userID := middleware.GetUserID(c)
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	res := h.connections.Reject(userID, uint(requestID))
	if !res.Success {
		c.JSON(http.StatusBadRequest, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListMatches handles GET /matches: every match involving the caller, with
// the other participant's display info and the meeting details.
func (h *ConnectionHandler) ListMatches(c *gin.Context) {
	userID := middleware.GetUserID(c)
	matches, err := h.matches.ListMatchesForUser(userID, incomingFeedLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list matches"})
		return
	}

	out := make([]gin.H, 0, len(matches))
	for _, m := range matches {
		otherID := m.OtherUser(userID)
		item := gin.H{
			"id":                m.ID,
			"status":            m.Status,
			"other_user_id":     otherID,
			"shared_interests":  m.SharedInterestList(),
			"venue_name":        m.VenueName,
			"venue_lat":         m.VenueLat,
			"venue_lng":         m.VenueLng,
			"landmark":          m.Landmark,
			"meet_code":         m.MeetCode,
			"shared_emoji_code": m.SharedEmojiCode,
			"created_at":        m.CreatedAt,
		}
		if other, err := h.profiles.GetByID(otherID); err == nil {
			item["other_user_name"] = other.Name
			item["other_user_emoji"] = other.EmojiSignature
			item["other_user_avatar_url"] = other.AvatarURL
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"matches": out, "count": len(out)})
}

// Feedback handles POST /matches/:id/feedback: a 1-5 meetup rating that
// feeds future compatibility scores for the pair.
func (h *ConnectionHandler) Feedback(c *gin.Context) {
	userID := middleware.GetUserID(c)
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}
	var req struct {
		Rating   int    `json:"rating" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.connections.SubmitFeedback(userID, uint(matchID), req.Rating, req.Feedback); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "feedback recorded"})
}
