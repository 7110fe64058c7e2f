package service

import (
	"context"
	"sync"
	"time"

	"spotmate/config"
	"spotmate/internal/domain"
	"spotmate/internal/models"
	"spotmate/internal/repository"
	"spotmate/pkg/places"
	"spotmate/pkg/timezone"

	"go.uber.org/zap"
)

// placeSearchRadiusMeters bounds the venue lookup around a visit coordinate.
const placeSearchRadiusMeters = 50

// ActivityRecorder persists location visits for later behavioral aggregation,
// at most once per recording interval per user.
type ActivityRecorder struct {
	cfg    config.RecordingConfig
	visits *repository.VisitRepository
	places places.Resolver
	tz     timezone.Resolver
	log    *zap.Logger
	now    func() time.Time

	mu           sync.Mutex
	lastRecorded map[string]time.Time
	inFlight     map[string]bool
}

func NewActivityRecorder(
	cfg config.RecordingConfig,
	visits *repository.VisitRepository,
	placeResolver places.Resolver,
	tzResolver timezone.Resolver,
	log *zap.Logger,
) *ActivityRecorder {
	return &ActivityRecorder{
		cfg:          cfg,
		visits:       visits,
		places:       placeResolver,
		tz:           tzResolver,
		log:          log,
		now:          time.Now,
		lastRecorded: make(map[string]time.Time),
		inFlight:     make(map[string]bool),
	}
}

// ActivityStats summarizes a user's aggregated visit behavior for the stats
// read surface.
type ActivityStats struct {
	TotalVisits  int64                    `json:"total_visits"`
	TopPlaceType string                   `json:"top_place_type"`
	TopTimeOfDay string                   `json:"top_time_of_day"`
	WeekdayShare float64                  `json:"weekday_share"`
	Patterns     []models.ActivityPattern `json:"patterns"`
}

// Stats aggregates the user's activity patterns into headline figures. A user
// with no visits gets zero values, not an error.
func (r *ActivityRecorder) Stats(userID string) (*ActivityStats, error) {
	total, err := r.visits.CountByUserID(userID)
	if err != nil {
		return nil, err
	}
	patterns, err := r.visits.GetPatternsByUserID(userID)
	if err != nil {
		return nil, err
	}

	stats := &ActivityStats{TotalVisits: total, Patterns: patterns}
	placeCounts := make(map[string]int)
	timeCounts := make(map[string]int)
	weekday, counted := 0, 0
	for _, p := range patterns {
		placeCounts[p.PlaceType] += p.VisitCount
		timeCounts[p.TimeOfDay] += p.VisitCount
		if p.DayType == domain.DayTypeWeekday {
			weekday += p.VisitCount
		}
		counted += p.VisitCount
	}
	stats.TopPlaceType = topBucket(placeCounts)
	stats.TopTimeOfDay = topBucket(timeCounts)
	if counted > 0 {
		stats.WeekdayShare = float64(weekday) / float64(counted)
	}
	return stats, nil
}

// topBucket picks the bucket with the most visits; ties break alphabetically
// so the answer is stable.
func topBucket(counts map[string]int) string {
	best, bestCount := "", 0
	for k, n := range counts {
		if n > bestCount || (n == bestCount && best != "" && k < best) {
			best, bestCount = k, n
		}
	}
	return best
}

// Record writes a LocationVisit for the sample if the user's recording
// interval has elapsed, then folds it into the activity-pattern aggregates.
// Overlapping calls for the same user are dropped, not queued.
func (r *ActivityRecorder) Record(ctx context.Context, userID string, s Sample) error {
	now := r.now()

	r.mu.Lock()
	if r.inFlight[userID] {
		r.mu.Unlock()
		return nil
	}
	if last, ok := r.lastRecorded[userID]; ok && now.Sub(last) < r.cfg.MinInterval {
		r.mu.Unlock()
		return nil
	}
	r.inFlight[userID] = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.inFlight, userID)
		r.mu.Unlock()
	}()

	tz, err := r.tz.Resolve(ctx, s.Lat, s.Lng)
	if err != nil {
		r.log.Warn("timezone resolve failed, using UTC",
			zap.String("user_id", userID), zap.Error(err))
		tz = "UTC"
	}

	// Venue lookup is best-effort; a visit with place type "general" still
	// feeds the time-of-day buckets.
	placeID, placeName, placeType := "", "", "general"
	var placeTypes []string
	if place, err := r.places.Nearby(ctx, s.Lat, s.Lng, placeSearchRadiusMeters); err != nil {
		r.log.Warn("place lookup failed",
			zap.String("user_id", userID), zap.Error(err))
	} else if place != nil {
		placeID = place.ID
		placeName = place.Name
		if place.Type != "" {
			placeType = place.Type
		}
		placeTypes = place.Types
	}

	local := domain.LocalTime(now.UTC(), tz)
	visit := models.LocationVisit{
		UserID:       userID,
		Lat:          s.Lat,
		Lng:          s.Lng,
		PlaceID:      placeID,
		PlaceName:    placeName,
		PlaceType:    placeType,
		TimeOfDay:    domain.TimeOfDay(local),
		DayType:      domain.DayType(local),
		DayOfWeek:    local.Weekday().String(),
		Confidence:   Confidence(s.AccuracyMeters, s.SpeedMPS),
		TimestampUTC: now.UTC(),
		Timezone:     tz,
	}
	visit.SetTypes(placeTypes)

	if err := r.visits.Create(&visit); err != nil {
		r.log.Error("record visit failed",
			zap.String("user_id", userID), zap.Error(err))
		return err
	}

	if err := r.visits.RecordPattern(userID, visit.PlaceType, visit.TimeOfDay, visit.DayType, now.UTC()); err != nil {
		r.log.Warn("pattern aggregate update failed",
			zap.String("user_id", userID), zap.Error(err))
	}

	r.mu.Lock()
	r.lastRecorded[userID] = now
	r.mu.Unlock()

	r.log.Debug("location visit recorded",
		zap.String("user_id", userID),
		zap.String("place_type", visit.PlaceType),
		zap.String("timezone", tz),
		zap.Float64("confidence", visit.Confidence))
	return nil
}
