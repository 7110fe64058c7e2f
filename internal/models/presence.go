package models

import "time"

// Presence is a user's most recently published approximate location; one row
// per user, overwritten on each publish. The geohash is an index key only,
// never the source of truth for exact distance.
type Presence struct {
	UserID    string    `gorm:"type:char(36);primaryKey" json:"user_id"`
	Lat       float64   `gorm:"type:decimal(10,8);not null" json:"lat"`
	Lng       float64   `gorm:"type:decimal(11,8);not null" json:"lng"`
	Geohash   string    `gorm:"size:12;not null;index" json:"geohash"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Presence) TableName() string {
	return "presence"
}
