package service

import (
	"sync"
	"time"

	"spotmate/config"
	"spotmate/internal/models"
	"spotmate/internal/repository"
	"spotmate/pkg/geo"

	"go.uber.org/zap"
)

// Sample is one raw location ping from a client.
type Sample struct {
	Lat            float64
	Lng            float64
	AccuracyMeters float64
	SpeedMPS       float64
}

// Confidence grades a GPS fix in [0.1, 1.0]: full confidence at <=20m
// accuracy, degraded in tiers above that, and reduced while moving fast
// because readings are less stable.
func Confidence(accuracyMeters, speedMPS float64) float64 {
	c := 1.0
	switch {
	case accuracyMeters > 100:
		c *= 0.5
	case accuracyMeters > 50:
		c *= 0.7
	case accuracyMeters > 20:
		c *= 0.9
	}
	if speedMPS > 5 {
		c *= 0.8
	}
	if c < 0.1 {
		c = 0.1
	}
	return c
}

type bufferedPing struct {
	sample     Sample
	confidence float64
	at         time.Time
}

type publishedPoint struct {
	lat float64
	lng float64
	at  time.Time
}

// publisherState is the explicit per-user throttle state: last published
// point, a bounded ping buffer, and at most one pending deferred publish.
type publisherState struct {
	lastPublished *publishedPoint
	buffer        []bufferedPing
	timer         *time.Timer
}

// ChangeNotifier is told after every successful publish so watchers can
// invalidate and re-query. Implemented by the ws presence feed.
type ChangeNotifier interface {
	PresenceChanged(userID string)
}

// PresencePublisher decides which raw location samples become published
// presence rows, balancing freshness against write volume and GPS noise.
// Publishing is best-effort: a failed write is logged and retried from the
// old baseline on the next sample.
type PresencePublisher struct {
	cfg       config.LocationConfig
	precision uint
	presence  *repository.PresenceRepository
	profiles  *repository.ProfileRepository
	feed      ChangeNotifier
	log       *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	states map[string]*publisherState
}

func NewPresencePublisher(
	cfg config.LocationConfig,
	precision uint,
	presence *repository.PresenceRepository,
	profiles *repository.ProfileRepository,
	feed ChangeNotifier,
	log *zap.Logger,
) *PresencePublisher {
	return &PresencePublisher{
		cfg:       cfg,
		precision: precision,
		presence:  presence,
		profiles:  profiles,
		feed:      feed,
		log:       log,
		now:       time.Now,
		states:    make(map[string]*publisherState),
	}
}

// Track processes one incoming sample: grade it, drop GPS noise, buffer it,
// then either publish immediately or (re)arm the 30s deferred publish so
// staleness stays bounded even with zero displacement.
func (p *PresencePublisher) Track(userID string, s Sample) {
	now := p.now()
	conf := Confidence(s.AccuracyMeters, s.SpeedMPS)

	p.mu.Lock()
	st := p.states[userID]
	if st == nil {
		st = &publisherState{}
		p.states[userID] = st
	}

	if p.isDuplicate(st, s, now) {
		p.mu.Unlock()
		return
	}

	st.buffer = append(st.buffer, bufferedPing{sample: s, confidence: conf, at: now})
	if len(st.buffer) > p.cfg.PingBufferSize {
		st.buffer = st.buffer[1:]
	}

	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}

	if p.shouldPublish(st, s, now) {
		p.mu.Unlock()
		p.publish(userID)
		return
	}

	st.timer = time.AfterFunc(p.cfg.BatchDelay, func() {
		p.publish(userID)
	})
	p.mu.Unlock()
}

// isDuplicate drops a sample when any of the last 3 buffered pings is within
// 10m and 30s: jitter, not movement.
func (p *PresencePublisher) isDuplicate(st *publisherState, s Sample, now time.Time) bool {
	recent := st.buffer
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	for _, ping := range recent {
		dist := geo.DistanceMeters(ping.sample.Lat, ping.sample.Lng, s.Lat, s.Lng)
		if dist < p.cfg.DedupDistanceMeters && now.Sub(ping.at) < p.cfg.DedupWindow {
			return true
		}
	}
	return false
}

func (p *PresencePublisher) shouldPublish(st *publisherState, s Sample, now time.Time) bool {
	if st.lastPublished == nil {
		return true
	}
	displacement := geo.DistanceMeters(st.lastPublished.lat, st.lastPublished.lng, s.Lat, s.Lng)
	if displacement >= p.cfg.MinDisplacementMeters {
		return true
	}
	minInterval := p.cfg.MinIntervalMoving
	if s.SpeedMPS < p.cfg.StationarySpeedThreshold {
		minInterval = p.cfg.MinIntervalStationary
	}
	return now.Sub(st.lastPublished.at) >= minInterval
}

// publish writes the newest buffered sample as the authoritative presence row
// and mirrors it onto the profile.
func (p *PresencePublisher) publish(userID string) {
	p.mu.Lock()
	st := p.states[userID]
	if st == nil || len(st.buffer) == 0 {
		p.mu.Unlock()
		return
	}
	latest := st.buffer[len(st.buffer)-1]
	batchSize := len(st.buffer)
	st.buffer = nil
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	p.mu.Unlock()

	now := p.now()
	hash := geo.Encode(latest.sample.Lat, latest.sample.Lng, p.precision)
	err := p.presence.Upsert(&models.Presence{
		UserID:    userID,
		Lat:       latest.sample.Lat,
		Lng:       latest.sample.Lng,
		Geohash:   hash,
		UpdatedAt: now,
	})
	if err != nil {
		p.log.Warn("presence publish failed",
			zap.String("user_id", userID), zap.Error(err))
		return
	}

	if err := p.profiles.UpdateLocation(userID, latest.sample.Lat, latest.sample.Lng,
		hash, latest.sample.AccuracyMeters, now); err != nil {
		p.log.Warn("profile location mirror failed",
			zap.String("user_id", userID), zap.Error(err))
	}

	p.mu.Lock()
	st.lastPublished = &publishedPoint{lat: latest.sample.Lat, lng: latest.sample.Lng, at: now}
	p.mu.Unlock()

	p.log.Debug("presence published",
		zap.String("user_id", userID),
		zap.String("geohash", hash),
		zap.Int("batch_size", batchSize),
		zap.Float64("confidence", latest.confidence))

	if p.feed != nil {
		p.feed.PresenceChanged(userID)
	}
}

// Flush publishes any buffered-but-unpublished sample immediately and cancels
// the pending deferred publish. Called when tracking is disabled so nothing
// is silently lost.
func (p *PresencePublisher) Flush(userID string) {
	p.mu.Lock()
	st := p.states[userID]
	if st == nil {
		p.mu.Unlock()
		return
	}
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	pending := len(st.buffer) > 0
	p.mu.Unlock()

	if pending {
		p.publish(userID)
	}
}

// Disable flushes and forgets the user's throttle state.
func (p *PresencePublisher) Disable(userID string) {
	p.Flush(userID)
	p.mu.Lock()
	delete(p.states, userID)
	p.mu.Unlock()
}

// PublishStatus is the "current presence publish status" observable.
type PublishStatus struct {
	LastPublishedAt *time.Time `json:"last_published_at"`
	Lat             *float64   `json:"lat"`
	Lng             *float64   `json:"lng"`
	BufferedPings   int        `json:"buffered_pings"`
	PublishPending  bool       `json:"publish_pending"`
}

func (p *PresencePublisher) Status(userID string) PublishStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.states[userID]
	if st == nil {
		return PublishStatus{}
	}
	status := PublishStatus{
		BufferedPings:  len(st.buffer),
		PublishPending: st.timer != nil,
	}
	if st.lastPublished != nil {
		at := st.lastPublished.at
		lat := st.lastPublished.lat
		lng := st.lastPublished.lng
		status.LastPublishedAt = &at
		status.Lat = &lat
		status.Lng = &lng
	}
	return status
}
