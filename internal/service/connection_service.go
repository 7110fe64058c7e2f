package service

import (
	"context"
	"errors"
	"fmt"

	"spotmate/internal/domain"
	"spotmate/internal/models"
	"spotmate/internal/repository"
	"spotmate/pkg/geo"
	"spotmate/pkg/meeting"
	"spotmate/pkg/places"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// venueSearchRadiusMeters bounds the meeting-venue lookup around the pair's
// midpoint.
const venueSearchRadiusMeters = 100

// ConnectionResult is what command-style connection operations hand back to
// the UI layer.
type ConnectionResult struct {
	Success      bool   `json:"success"`
	AutoAccepted bool   `json:"auto_accepted,omitempty"`
	Message      string `json:"message"`
}

// RequestNotifier pushes an incoming-request event to the receiver.
// Implemented by the ws hub; nil disables notifications.
type RequestNotifier interface {
	RequestReceived(receiverID, senderID string, requestID uint)
}

// ConnectionService governs the request -> accept/reject -> connected state
// machine, including the auto-accept short circuit. Every transition is
// idempotent against retries: pending requests are keyed by their directional
// pending_key, match creation by the deterministic pair id, and duplicate-key
// conflicts translate to "already sent" / "already connected".
type ConnectionService struct {
	profiles *repository.ProfileRepository
	matches  *repository.MatchRepository
	places   places.Resolver
	notifier RequestNotifier
	log      *zap.Logger
}

func NewConnectionService(
	profiles *repository.ProfileRepository,
	matches *repository.MatchRepository,
	placeResolver places.Resolver,
	notifier RequestNotifier,
	log *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		profiles: profiles,
		matches:  matches,
		places:   placeResolver,
		notifier: notifier,
		log:      log,
	}
}

// SendRequest starts (or short-circuits) a connection between sender and
// receiver.
func (s *ConnectionService) SendRequest(ctx context.Context, senderID, receiverID string) ConnectionResult {
	if senderID == receiverID {
		return ConnectionResult{Message: "you cannot connect with yourself"}
	}

	pairID := geo.PairID(senderID, receiverID)
	if existing, err := s.matches.GetMatchByPairID(pairID); err == nil &&
		existing.Status == domain.MatchStatusConnected {
		return ConnectionResult{Message: "you're already connected with this person"}
	}

	receiver, err := s.profiles.GetByID(receiverID)
	if err != nil {
		s.log.Error("receiver profile lookup failed",
			zap.String("receiver_id", receiverID), zap.Error(err))
		return ConnectionResult{Message: "failed to check receiver preferences"}
	}

	if receiver.AutoAcceptConnections {
		res := s.connectPair(ctx, senderID, receiverID)
		if res.Success {
			res.AutoAccepted = true
			res.Message = "you're now connected"
		}
		return res
	}

	req := models.ConnectionRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     domain.RequestStatusPending,
	}
	if err := s.matches.CreateRequest(&req); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// The pending_key constraint caught a duplicate send, racing or
			// not.
			return ConnectionResult{Message: "connection request already sent"}
		}
		s.log.Error("create connection request failed", zap.Error(err))
		return ConnectionResult{Message: "failed to send connection request"}
	}

	if s.notifier != nil {
		s.notifier.RequestReceived(receiverID, senderID, req.ID)
	}
	return ConnectionResult{Success: true, Message: "connection request sent"}
}

// Accept is receiver-initiated: generate meeting details, connect the pair,
// and mark the originating request accepted.
func (s *ConnectionService) Accept(ctx context.Context, receiverID string, requestID uint) ConnectionResult {
	req, err := s.matches.GetRequestByID(requestID)
	if err != nil {
		return ConnectionResult{Message: "connection request not found"}
	}
	if req.ReceiverID != receiverID {
		return ConnectionResult{Message: "connection request not found"}
	}

	res := s.connectPair(ctx, req.SenderID, receiverID)
	if !res.Success {
		return res
	}

	if err := s.matches.UpdateRequestStatus(requestID, domain.RequestStatusAccepted); err != nil {
		// The match exists either way; the stale pending row is harmless
		// and the next accept attempt is a no-op.
		s.log.Warn("mark request accepted failed",
			zap.Uint("request_id", requestID), zap.Error(err))
	}
	res.Message = "connection accepted"
	return res
}

// Reject marks the request rejected. No match is created or altered.
func (s *ConnectionService) Reject(receiverID string, requestID uint) ConnectionResult {
	req, err := s.matches.GetRequestByID(requestID)
	if err != nil || req.ReceiverID != receiverID {
		return ConnectionResult{Message: "connection request not found"}
	}
	if err := s.matches.UpdateRequestStatus(requestID, domain.RequestStatusRejected); err != nil {
		s.log.Error("reject request failed", zap.Uint("request_id", requestID), zap.Error(err))
		return ConnectionResult{Message: "failed to reject connection"}
	}
	return ConnectionResult{Success: true, Message: "connection request rejected"}
}

// connectPair creates or updates the pair's match in connected status with
// meeting details. Concurrent accepts are resolved by the unique pair_id
// constraint, never by locks.
func (s *ConnectionService) connectPair(ctx context.Context, userA, userB string) ConnectionResult {
	a, b, err := s.profiles.GetPair(userA, userB)
	if err != nil {
		s.log.Error("load pair profiles failed", zap.Error(err))
		return ConnectionResult{Message: "failed to fetch user locations"}
	}
	if !a.HasLocation() || !b.HasLocation() {
		return ConnectionResult{Message: "user locations not available"}
	}

	mid := geo.Midpoint(
		geo.Coordinate{Lat: *a.Lat, Lng: *a.Lng},
		geo.Coordinate{Lat: *b.Lat, Lng: *b.Lng},
	)

	venueName := meeting.DefaultVenueName
	landmark := meeting.DefaultLandmark
	venueLat, venueLng := mid.Lat, mid.Lng
	if venue, err := s.places.Nearby(ctx, mid.Lat, mid.Lng, venueSearchRadiusMeters); err != nil {
		// Geocoding never blocks the connection itself.
		s.log.Warn("venue geocode failed", zap.Error(err))
	} else if venue != nil && venue.Name != "" {
		venueName = venue.Name
		landmark = meeting.ContextualLandmark(venue.Name, venue.Types)
		if venue.Lat != 0 || venue.Lng != 0 {
			venueLat, venueLng = venue.Lat, venue.Lng
		}
	}

	uidA, uidB := geo.OrderPair(userA, userB)
	pairID := geo.PairID(userA, userB)
	shared := domain.CommonInterests(a.InterestList(), b.InterestList())

	match := models.Match{
		PairID:          pairID,
		UIDA:            uidA,
		UIDB:            uidB,
		Status:          domain.MatchStatusConnected,
		VenueName:       venueName,
		VenueLat:        &venueLat,
		VenueLng:        &venueLng,
		Landmark:        landmark,
		MeetCode:        meeting.MeetCode(),
		SharedEmojiCode: meeting.EmojiCode(),
	}
	match.SetSharedInterests(shared)

	existing, err := s.matches.GetMatchByPairID(pairID)
	switch {
	case err == nil:
		if existing.Status == domain.MatchStatusConnected {
			return ConnectionResult{Success: true, Message: "already connected"}
		}
		existing.Status = domain.MatchStatusConnected
		existing.VenueName = match.VenueName
		existing.VenueLat = match.VenueLat
		existing.VenueLng = match.VenueLng
		existing.Landmark = match.Landmark
		existing.MeetCode = match.MeetCode
		existing.SharedEmojiCode = match.SharedEmojiCode
		existing.SharedInterests = match.SharedInterests
		if err := s.matches.SaveMatch(existing); err != nil {
			s.log.Error("update match failed", zap.String("pair_id", pairID), zap.Error(err))
			return ConnectionResult{Message: "failed to update connection"}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.matches.CreateMatch(&match); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost the race to a concurrent accept; the pair is
				// connected, which is what the caller wanted.
				return ConnectionResult{Success: true, Message: "already connected"}
			}
			s.log.Error("create match failed", zap.String("pair_id", pairID), zap.Error(err))
			return ConnectionResult{Message: "failed to create connection"}
		}
	default:
		s.log.Error("match lookup failed", zap.String("pair_id", pairID), zap.Error(err))
		return ConnectionResult{Message: "failed to create connection"}
	}

	return ConnectionResult{Success: true, Message: "connected"}
}

// SubmitFeedback records a 1-5 meetup rating on one of the caller's matches.
func (s *ConnectionService) SubmitFeedback(userID string, matchID uint, rating int, text string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	match, err := s.matches.GetMatchByID(matchID)
	if err != nil {
		return fmt.Errorf("match not found")
	}
	if !match.Involves(userID) {
		return fmt.Errorf("match not found")
	}
	return s.matches.CreateFeedback(&models.MeetupFeedback{
		MatchID:      matchID,
		UserID:       userID,
		Rating:       rating,
		FeedbackText: text,
	})
}
