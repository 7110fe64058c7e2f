package models

import "time"

// CompatibilityWeights holds a user's adaptive scoring weights. The three
// weights always sum to 1 and shift with DataPointsCount on a fixed schedule;
// only the compatibility scorer mutates them.
type CompatibilityWeights struct {
	UserID          string    `gorm:"type:char(36);primaryKey" json:"user_id"`
	InterestWeight  float64   `gorm:"type:decimal(4,3);not null;default:0.8" json:"interest_weight"`
	BehaviorWeight  float64   `gorm:"type:decimal(4,3);not null;default:0.15" json:"behavior_weight"`
	FeedbackWeight  float64   `gorm:"type:decimal(4,3);not null;default:0.05" json:"feedback_weight"`
	DataPointsCount int       `gorm:"not null;default:0" json:"data_points_count"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (CompatibilityWeights) TableName() string {
	return "compatibility_weights"
}
