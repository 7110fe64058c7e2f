package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is a user's matching profile. Location fields mirror the most
// recent presence publish so historical queries don't need a join.
type Profile struct {
	ID                  string     `gorm:"type:char(36);primaryKey" json:"id"`
	Name                string     `gorm:"size:120" json:"name"`
	Interests           string     `gorm:"size:255" json:"-"` // comma-separated, exactly 3 once onboarded
	EmojiSignature      string     `gorm:"size:16" json:"emoji_signature"`
	AvatarURL           string     `gorm:"size:512" json:"avatar_url"`
	IsVisible           bool       `gorm:"default:false;index" json:"is_visible"`
	Onboarded           bool       `gorm:"default:false;index" json:"onboarded"`
	AutoAcceptConnections bool     `gorm:"default:false" json:"auto_accept_connections"`
	AvailabilityStatus  string     `gorm:"size:32" json:"availability_status"`
	Lat                 *float64   `gorm:"type:decimal(10,8)" json:"-"`
	Lng                 *float64   `gorm:"type:decimal(11,8)" json:"-"`
	Geohash             string     `gorm:"size:12;index" json:"-"`
	LocationAccuracy    float64    `gorm:"type:decimal(8,2)" json:"location_accuracy"`
	LocationUpdatedAt   *time.Time `json:"location_updated_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// InterestList splits the stored comma-separated interests.
func (p *Profile) InterestList() []string {
	if p.Interests == "" {
		return nil
	}
	return strings.Split(p.Interests, ",")
}

// SetInterests stores the interests as a comma-separated list.
func (p *Profile) SetInterests(interests []string) {
	p.Interests = strings.Join(interests, ",")
}

// HasLocation reports whether the profile carries published coordinates.
func (p *Profile) HasLocation() bool {
	return p.Lat != nil && p.Lng != nil
}
