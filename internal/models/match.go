package models

import (
	"strings"
	"time"
)

// ConnectionRequest is a pending ask from one user to another. Terminal once
// accepted or rejected; at most one pending row per (sender, receiver).
// PendingKey carries that invariant into the schema: it is sender:receiver
// while the row is pending and NULL once terminal, so the unique index blocks
// a second pending insert but never a re-send after rejection.
type ConnectionRequest struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   string    `gorm:"type:char(36);not null;index:idx_request_pair" json:"sender_id"`
	ReceiverID string    `gorm:"type:char(36);not null;index:idx_request_pair;index" json:"receiver_id"`
	Status     string    `gorm:"size:16;not null;default:pending;index" json:"status"`
	PendingKey *string   `gorm:"size:80;uniqueIndex" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (ConnectionRequest) TableName() string {
	return "connection_requests"
}

// PendingRequestKey is the PendingKey value for a live (sender, receiver)
// request. Directional: a -> b and b -> a are distinct asks.
func PendingRequestKey(senderID, receiverID string) string {
	return senderID + ":" + receiverID
}

// Match is the relationship record for an unordered user pair. PairID is the
// deterministic order-independent key; creation is idempotent against it.
// UIDA sorts lexicographically before UIDB.
type Match struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	PairID             string     `gorm:"size:80;not null;uniqueIndex" json:"pair_id"`
	UIDA               string     `gorm:"column:uid_a;type:char(36);not null;index" json:"uid_a"`
	UIDB               string     `gorm:"column:uid_b;type:char(36);not null;index" json:"uid_b"`
	Status             string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	SharedInterests    string     `gorm:"size:255" json:"-"`
	VenueName          string     `gorm:"size:255" json:"venue_name"`
	VenueLat           *float64   `gorm:"type:decimal(10,8)" json:"venue_lat"`
	VenueLng           *float64   `gorm:"type:decimal(11,8)" json:"venue_lng"`
	Landmark           string     `gorm:"size:255" json:"landmark"`
	MeetCode           string     `gorm:"size:16" json:"meet_code"`
	SharedEmojiCode    string     `gorm:"size:16" json:"shared_emoji_code"`
	LastSeenTogetherAt *time.Time `json:"last_seen_together_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (Match) TableName() string {
	return "matches"
}

// Involves reports whether the user is one of the pair.
func (m *Match) Involves(userID string) bool {
	return m.UIDA == userID || m.UIDB == userID
}

// OtherUser returns the other participant's id.
func (m *Match) OtherUser(userID string) string {
	if m.UIDA == userID {
		return m.UIDB
	}
	return m.UIDA
}

func (m *Match) SharedInterestList() []string {
	if m.SharedInterests == "" {
		return nil
	}
	return strings.Split(m.SharedInterests, ",")
}

func (m *Match) SetSharedInterests(interests []string) {
	m.SharedInterests = strings.Join(interests, ",")
}

// MeetupFeedback is a 1-5 rating a participant leaves after meeting, read by
// the compatibility scorer's feedback sub-score.
type MeetupFeedback struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MatchID      uint      `gorm:"not null;index" json:"match_id"`
	UserID       string    `gorm:"type:char(36);not null;index" json:"user_id"`
	Rating       int       `gorm:"not null" json:"rating"`
	FeedbackText string    `gorm:"type:text" json:"feedback_text"`
	CreatedAt    time.Time `json:"created_at"`

	Match Match `gorm:"foreignKey:MatchID" json:"-"`
}

func (MeetupFeedback) TableName() string {
	return "meetup_feedback"
}
