package service

import (
	"context"
	"testing"

	"spotmate/internal/domain"
	"spotmate/internal/models"
	"spotmate/internal/repository"
	"spotmate/pkg/geo"
	"spotmate/pkg/places"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestConnections(t *testing.T, resolver places.Resolver) (*ConnectionService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewConnectionService(
		repository.NewProfileRepository(db),
		repository.NewMatchRepository(db),
		resolver,
		nil,
		zap.NewNop(),
	)
	return svc, db
}

func seedPair(t *testing.T, db *gorm.DB, autoAccept bool) {
	t.Helper()
	seedProfile(t, db, "user-a", "A", []string{"Coffee", "Gym", "Books"}, baseLat, baseLng)
	receiver := seedProfile(t, db, "user-b", "B", []string{"Coffee", "Art", "Music"}, 35.9941, -78.8991)
	if autoAccept {
		receiver.AutoAcceptConnections = true
		require.NoError(t, db.Save(receiver).Error)
	}
}

func TestSendRequestToSelfRejected(t *testing.T) {
	svc, db := newTestConnections(t, &stubPlaceResolver{})
	seedPair(t, db, false)

	res := svc.SendRequest(context.Background(), "user-a", "user-a")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "yourself")
}

func TestSendRequestCreatesPending(t *testing.T) {
	svc, db := newTestConnections(t, &stubPlaceResolver{})
	seedPair(t, db, false)

	res := svc.SendRequest(context.Background(), "user-a", "user-b")
	assert.True(t, res.Success)
	assert.False(t, res.AutoAccepted)

	var reqs []models.ConnectionRequest
	require.NoError(t, db.Find(&reqs).Error)
	require.Len(t, reqs, 1)
	assert.Equal(t, "user-a", reqs[0].SenderID)
	assert.Equal(t, "user-b", reqs[0].ReceiverID)
	assert.Equal(t, domain.RequestStatusPending, reqs[0].Status)
}

func TestSendRequestDuplicatePendingRejected(t *testing.T) {
	svc, db := newTestConnections(t, &stubPlaceResolver{})
	seedPair(t, db, false)

	first := svc.SendRequest(context.Background(), "user-a", "user-b")
	require.True(t, first.Success)

	second := svc.SendRequest(context.Background(), "user-a", "user-b")
	assert.False(t, second.Success)
	assert.Contains(t, second.Message, "already sent")

	var count int64
	require.NoError(t, db.Model(&models.ConnectionRequest{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSendRequestAutoAcceptConnectsImmediately(t *testing.T) {
	resolver := &stubPlaceResolver{place: &places.Place{
		ID: "pl-1", Name: "Bean Traders Coffee", Type: "cafe", Types: []string{"cafe"},
		Lat: 35.99405, Lng: -78.89905,
	}}
	svc, db := newTestConnections(t, resolver)
	seedPair(t, db, true)

	res := svc.SendRequest(context.Background(), "user-a", "user-b")
	assert.True(t, res.Success)
	assert.True(t, res.AutoAccepted)

	var match models.Match
	require.NoError(t, db.First(&match, "pair_id = ?", geo.PairID("user-a", "user-b")).Error)
	assert.Equal(t, domain.MatchStatusConnected, match.Status)
	assert.Equal(t, "user-a", match.UIDA)
	assert.Equal(t, "user-b", match.UIDB)
	assert.Equal(t, "Bean Traders Coffee", match.VenueName)
	assert.Equal(t, "Front entrance", match.Landmark)
	assert.Regexp(t, `^MEET\d{4}$`, match.MeetCode)
	assert.NotEmpty(t, match.SharedEmojiCode)
	assert.Equal(t, []string{"Coffee"}, match.SharedInterestList())

	// No pending row is left behind on the auto-accept path.
	var count int64
	require.NoError(t, db.Model(&models.ConnectionRequest{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSendRequestAlreadyConnectedRejected(t *testing.T) {
	svc, db := newTestConnections(t, &stubPlaceResolver{})
	seedPair(t, db, true)

	require.True(t, svc.SendRequest(context.Background(), "user-a", "user-b").Success)

	res := svc.SendRequest(context.Background(), "user-b", "user-a")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "already connected")
}

func TestAcceptConnectsAndMarksRequest(t *testing.T) {
	resolver := &stubPlaceResolver{}
	svc, db := newTestConnections(t, resolver)
	seedPair(t, db, false)

	require.True(t, svc.SendRequest(context.Background(), "user-a", "user-b").Success)
	var req models.ConnectionRequest
	require.NoError(t, db.First(&req).Error)

	res := svc.Accept(context.Background(), "user-b", req.ID)
	assert.True(t, res.Success)

	var match models.Match
	require.NoError(t, db.First(&match, "pair_id = ?", geo.PairID("user-a", "user-b")).Error)
	assert.Equal(t, domain.MatchStatusConnected, match.Status)
	// Geocoding found nothing, so the meeting card falls back to defaults.
	assert.Equal(t, "Current location", match.VenueName)
	assert.Equal(t, "Main entrance", match.Landmark)

	require.NoError(t, db.First(&req, req.ID).Error)
	assert.Equal(t, domain.RequestStatusAccepted, req.Status)
}

func TestAcceptIsIdempotent(t *testing.T) {
	svc, db := newTestConnections(t, &stubPlaceResolver{})
	seedPair(t, db, false)

	require.True(t, svc.SendRequest(context.Background(), "user-a", "user-b").Success)
	var req models.ConnectionRequest
	require.NoError(t, db.First(&req).Error)

	first := svc.Accept(context.Background(), "user-b", req.ID)
	second := svc.Accept(context.Background(), "user-b", req.ID)
	assert.True(t, first.Success)
	assert.True(t, second.Success)

	var count int64
	require.NoError(t, db.Model(&models.Match{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "re-accepting must not create a second match")
}

func TestAcceptByWrongUserRejected(t *testing.T) {
	svc, db := newTestConnections(t, &stubPlaceResolver{})
	seedPair(t, db, false)
	seedProfile(t, db, "user-c", "C", []string{"Coffee", "Gym", "Books"}, baseLat, baseLng)

	require.True(t, svc.SendRequest(context.Background(), "user-a", "user-b").Success)
	var req models.ConnectionRequest
	require.NoError(t, db.First(&req).Error)

	res := svc.Accept(context.Background(), "user-c", req.ID)
	assert.False(t, res.Success)

	var count int64
	require.NoError(t, db.Model(&models.Match{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRejectMarksRequestWithoutMatch(t *testing.T) {
	svc, db := newTestConnections(t, &stubPlaceResolver{})
	seedPair(t, db, false)

	require.True(t, svc.SendRequest(context.Background(), "user-a", "user-b").Success)
	var req models.ConnectionRequest
	require.NoError(t, db.First(&req).Error)

	res := svc.Reject("user-b", req.ID)
	assert.True(t, res.Success)

	require.NoError(t, db.First(&req, req.ID).Error)
	assert.Equal(t, domain.RequestStatusRejected, req.Status)

	var count int64
	require.NoError(t, db.Model(&models.Match{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConnectRequiresBothLocations(t *testing.T) {
	svc, db := newTestConnections(t, &stubPlaceResolver{})
	seedProfile(t, db, "user-a", "A", []string{"Coffee", "Gym", "Books"}, baseLat, baseLng)
	noLoc := &models.Profile{ID: "user-b", Name: "B", IsVisible: true, Onboarded: true, AutoAcceptConnections: true}
	noLoc.SetInterests([]string{"Coffee", "Art", "Music"})
	require.NoError(t, db.Create(noLoc).Error)

	res := svc.SendRequest(context.Background(), "user-a", "user-b")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "locations not available")
}

func TestSubmitFeedback(t *testing.T) {
	svc, db := newTestConnections(t, &stubPlaceResolver{})
	seedPair(t, db, true)
	require.True(t, svc.SendRequest(context.Background(), "user-a", "user-b").Success)

	var match models.Match
	require.NoError(t, db.First(&match).Error)

	require.NoError(t, svc.SubmitFeedback("user-a", match.ID, 4, "great spot"))
	assert.Error(t, svc.SubmitFeedback("user-a", match.ID, 6, ""), "rating out of range")
	assert.Error(t, svc.SubmitFeedback("user-a", match.ID, 0, ""), "rating out of range")
	assert.Error(t, svc.SubmitFeedback("user-z", match.ID, 4, ""), "outsider cannot rate")

	var fb models.MeetupFeedback
	require.NoError(t, db.First(&fb).Error)
	assert.Equal(t, 4, fb.Rating)
	assert.Equal(t, "great spot", fb.FeedbackText)
}
