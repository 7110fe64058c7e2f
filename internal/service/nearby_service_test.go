package service

import (
	"testing"

	"spotmate/config"
	"spotmate/internal/repository"
	"spotmate/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestNearby(t *testing.T) (*NearbyService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	scorer := NewCompatibilityService(
		repository.NewProfileRepository(db),
		repository.NewVisitRepository(db),
		repository.NewMatchRepository(db),
		repository.NewWeightsRepository(db),
		zap.NewNop(),
	)
	svc := NewNearbyService(config.Load().Matching, repository.NewProfileRepository(db), scorer, zap.NewNop())
	return svc, db
}

func TestQueryFindsUserWithinRangeSharingInterests(t *testing.T) {
	svc, db := newTestNearby(t)
	seedProfile(t, db, "user-u", "U", []string{"Coffee", "Gym", "Books"}, baseLat, baseLng)
	// ~14m away, one shared interest.
	seedProfile(t, db, "user-v", "V", []string{"Coffee", "Art", "Music"}, 35.9941, -78.8991)

	users, err := svc.Query("user-u", geo.Coordinate{Lat: baseLat, Lng: baseLng})
	require.NoError(t, err)
	require.Len(t, users, 1)

	v := users[0]
	assert.Equal(t, "user-v", v.ID)
	assert.Equal(t, []string{"Coffee"}, v.SharedInterests)
	assert.Less(t, v.DistanceMeters, 100.0)
	assert.Equal(t, "Very Close", v.ProximityLabel)
	require.NotNil(t, v.CompatibilityScore)
	assert.Equal(t, 29, *v.CompatibilityScore)
}

func TestQueryExcludesUsersBeyondMatchRange(t *testing.T) {
	svc, db := newTestNearby(t)
	seedProfile(t, db, "user-u", "U", []string{"Coffee", "Gym", "Books"}, baseLat, baseLng)
	// ~110m north: inside the geohash neighborhood, outside match range.
	seedProfile(t, db, "user-w", "W", []string{"Coffee", "Gym", "Books"}, baseLat+110.0/111195, baseLng)

	users, err := svc.Query("user-u", geo.Coordinate{Lat: baseLat, Lng: baseLng})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestQueryRequiresSharedInterest(t *testing.T) {
	svc, db := newTestNearby(t)
	seedProfile(t, db, "user-u", "U", []string{"Coffee", "Gym", "Books"}, baseLat, baseLng)
	// 40m away but zero interest overlap: hard gated out.
	seedProfile(t, db, "user-x", "X", []string{"Running", "Science", "Art"}, baseLat+40.0/111195, baseLng)

	users, err := svc.Query("user-u", geo.Coordinate{Lat: baseLat, Lng: baseLng})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestQueryExcludesHiddenAndUnonboarded(t *testing.T) {
	svc, db := newTestNearby(t)
	seedProfile(t, db, "user-u", "U", []string{"Coffee", "Gym", "Books"}, baseLat, baseLng)

	hidden := seedProfile(t, db, "user-h", "H", []string{"Coffee", "Gym", "Books"}, 35.9941, baseLng)
	hidden.IsVisible = false
	require.NoError(t, db.Save(hidden).Error)

	raw := seedProfile(t, db, "user-r", "R", []string{"Coffee", "Gym", "Books"}, 35.9941, -78.8991)
	raw.Onboarded = false
	require.NoError(t, db.Save(raw).Error)

	users, err := svc.Query("user-u", geo.Coordinate{Lat: baseLat, Lng: baseLng})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestQueryRanksHigherScoreFirst(t *testing.T) {
	svc, db := newTestNearby(t)
	seedProfile(t, db, "user-u", "U", []string{"Coffee", "Gym", "Books"}, baseLat, baseLng)
	// Closer but only one shared interest.
	seedProfile(t, db, "user-one", "One", []string{"Coffee", "Art", "Music"}, baseLat+10.0/111195, baseLng)
	// Farther with all three shared: higher score wins over distance.
	seedProfile(t, db, "user-three", "Three", []string{"Coffee", "Gym", "Books"}, baseLat+40.0/111195, baseLng)

	users, err := svc.Query("user-u", geo.Coordinate{Lat: baseLat, Lng: baseLng})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user-three", users[0].ID)
	assert.Equal(t, "user-one", users[1].ID)
}

func TestQueryBreaksScoreTiesByDistance(t *testing.T) {
	svc, db := newTestNearby(t)
	seedProfile(t, db, "user-u", "U", []string{"Coffee", "Gym", "Books"}, baseLat, baseLng)
	seedProfile(t, db, "user-far", "Far", []string{"Coffee", "Art", "Music"}, baseLat+60.0/111195, baseLng)
	seedProfile(t, db, "user-near", "Near", []string{"Coffee", "Art", "Music"}, baseLat+10.0/111195, baseLng)

	users, err := svc.Query("user-u", geo.Coordinate{Lat: baseLat, Lng: baseLng})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user-near", users[0].ID)
	assert.Equal(t, "user-far", users[1].ID)
}

func TestQueryWithoutInterestsReturnsEmpty(t *testing.T) {
	svc, db := newTestNearby(t)
	seedProfile(t, db, "user-u", "U", nil, baseLat, baseLng)
	seedProfile(t, db, "user-v", "V", []string{"Coffee", "Art", "Music"}, 35.9941, -78.8991)

	users, err := svc.Query("user-u", geo.Coordinate{Lat: baseLat, Lng: baseLng})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestQueryRejectsInvalidCoordinate(t *testing.T) {
	svc, db := newTestNearby(t)
	seedProfile(t, db, "user-u", "U", []string{"Coffee", "Gym", "Books"}, baseLat, baseLng)

	_, err := svc.Query("user-u", geo.Coordinate{Lat: 91, Lng: 0})
	assert.Error(t, err)
}
