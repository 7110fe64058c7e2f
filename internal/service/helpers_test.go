package service

import (
	"context"
	"sync"
	"testing"

	"spotmate/config"
	"spotmate/internal/database"
	"spotmate/internal/models"
	"spotmate/pkg/geo"
	"spotmate/pkg/places"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, id, name string, interests []string, lat, lng float64) *models.Profile {
	t.Helper()
	p := &models.Profile{
		ID:        id,
		Name:      name,
		IsVisible: true,
		Onboarded: true,
		Lat:       &lat,
		Lng:       &lng,
		Geohash:   geo.Encode(lat, lng, 6),
	}
	p.SetInterests(interests)
	require.NoError(t, db.Create(p).Error)
	return p
}

func testLocationConfig() config.LocationConfig {
	return config.Load().Location
}

// stubPlaceResolver returns a fixed venue (or nothing) for every lookup.
type stubPlaceResolver struct {
	place *places.Place
	err   error

	mu    sync.Mutex
	calls int
}

func (s *stubPlaceResolver) Nearby(context.Context, float64, float64, float64) (*places.Place, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.place, s.err
}

// stubTimezoneResolver always answers with a fixed zone.
type stubTimezoneResolver struct {
	tz string
}

func (s stubTimezoneResolver) Resolve(context.Context, float64, float64) (string, error) {
	return s.tz, nil
}

// recordingNotifier captures presence-change notifications.
type recordingNotifier struct {
	mu      sync.Mutex
	changed []string
}

func (n *recordingNotifier) PresenceChanged(userID string) {
	n.mu.Lock()
	n.changed = append(n.changed, userID)
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changed)
}
