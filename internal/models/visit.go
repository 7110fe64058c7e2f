package models

import (
	"strings"
	"time"
)

// LocationVisit is an append-only record of a user being somewhere at some
// time, written by the activity recorder. Never mutated after insert.
type LocationVisit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"type:char(36);not null;index" json:"user_id"`
	Lat         float64   `gorm:"type:decimal(10,8);not null" json:"lat"`
	Lng         float64   `gorm:"type:decimal(11,8);not null" json:"lng"`
	PlaceID     string    `gorm:"size:128" json:"place_id"`
	PlaceName   string    `gorm:"size:255" json:"place_name"`
	PlaceType   string    `gorm:"size:64;not null" json:"place_type"`
	Types       string    `gorm:"size:512" json:"-"` // comma-separated raw venue tags
	TimeOfDay   string    `gorm:"size:16;not null" json:"time_of_day"`
	DayType     string    `gorm:"size:16;not null" json:"day_type"`
	DayOfWeek   string    `gorm:"size:16" json:"day_of_week"`
	Confidence  float64   `gorm:"type:decimal(3,2);not null" json:"confidence"`
	TimestampUTC time.Time `gorm:"not null;index" json:"timestamp_utc"`
	Timezone    string    `gorm:"size:64" json:"user_timezone_at_event"`
	CreatedAt   time.Time `json:"created_at"`
}

func (LocationVisit) TableName() string {
	return "location_visits"
}

func (v *LocationVisit) TypeList() []string {
	if v.Types == "" {
		return nil
	}
	return strings.Split(v.Types, ",")
}

func (v *LocationVisit) SetTypes(types []string) {
	v.Types = strings.Join(types, ",")
}

// ActivityPattern is the aggregate behavioral fingerprint: how often a user
// shows up at a kind of place in a time bucket. One row per
// (user, place type, time of day, day type); recomputed as visits accrue.
type ActivityPattern struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"type:char(36);not null;uniqueIndex:idx_pattern_key" json:"user_id"`
	PlaceType      string    `gorm:"size:64;not null;uniqueIndex:idx_pattern_key" json:"place_type"`
	TimeOfDay      string    `gorm:"size:16;not null;uniqueIndex:idx_pattern_key" json:"time_of_day"`
	DayType        string    `gorm:"size:16;not null;uniqueIndex:idx_pattern_key" json:"day_type"`
	VisitCount     int       `gorm:"not null;default:0" json:"visit_count"`
	FrequencyScore float64   `gorm:"type:decimal(4,3);not null;default:0" json:"frequency_score"`
	LastVisitAt    time.Time `json:"last_visit_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ActivityPattern) TableName() string {
	return "activity_patterns"
}

// Key identifies the pattern bucket for overlap comparisons.
func (p *ActivityPattern) Key() string {
	return p.PlaceType + "_" + p.TimeOfDay + "_" + p.DayType
}

// PlaceCache stores resolved venues so repeat visits to the same spot do not
// re-hit the geocoding API.
type PlaceCache struct {
	PlaceID     string    `gorm:"size:128;primaryKey" json:"place_id"`
	PlaceName   string    `gorm:"size:255" json:"place_name"`
	PlaceType   string    `gorm:"size:64;not null;default:general" json:"place_type"`
	Types       string    `gorm:"size:512" json:"-"`
	Lat         float64   `gorm:"type:decimal(10,8);not null;index:idx_place_cache_lat_lng" json:"lat"`
	Lng         float64   `gorm:"type:decimal(11,8);not null;index:idx_place_cache_lat_lng" json:"lng"`
	UseCount    int       `gorm:"not null;default:1" json:"use_count"`
	FirstSeenAt time.Time `gorm:"autoCreateTime" json:"first_seen_at"`
	LastUsedAt  time.Time `json:"last_used_at"`
}

func (PlaceCache) TableName() string {
	return "place_cache"
}

func (p *PlaceCache) TypeList() []string {
	if p.Types == "" {
		return nil
	}
	return strings.Split(p.Types, ",")
}
