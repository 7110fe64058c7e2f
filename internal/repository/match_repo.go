package repository

import (
	"spotmate/internal/domain"
	"spotmate/internal/models"

	"gorm.io/gorm"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Connection requests

// CreateRequest inserts a request row. For pending requests the unique
// pending_key index is the duplicate guard: a gorm.ErrDuplicatedKey return
// means the sender already has a live request to this receiver, and callers
// translate it to "already sent" the way CreateMatch conflicts translate to
// "already connected".
func (r *MatchRepository) CreateRequest(req *models.ConnectionRequest) error {
	if req.Status == domain.RequestStatusPending {
		key := models.PendingRequestKey(req.SenderID, req.ReceiverID)
		req.PendingKey = &key
	}
	return r.db.Create(req).Error
}

func (r *MatchRepository) GetRequestByID(id uint) (*models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	err := r.db.First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateRequestStatus moves a request to a terminal status and releases its
// pending_key so the pair can be asked again later.
func (r *MatchRepository) UpdateRequestStatus(id uint, status string) error {
	return r.db.Model(&models.ConnectionRequest{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "pending_key": nil}).Error
}

func (r *MatchRepository) ListPendingForReceiver(receiverID string, limit int) ([]models.ConnectionRequest, error) {
	var list []models.ConnectionRequest
	err := r.db.Where("receiver_id = ? AND status = ?", receiverID, domain.RequestStatusPending).
		Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// Matches

func (r *MatchRepository) GetMatchByID(id uint) (*models.Match, error) {
	var m models.Match
	err := r.db.First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepository) GetMatchByPairID(pairID string) (*models.Match, error) {
	var m models.Match
	err := r.db.Where("pair_id = ?", pairID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMatch inserts a match row. A gorm.ErrDuplicatedKey return means the
// pair already has a row; callers translate that to "already connected"
// instead of an error. This is the insert-or-get-existing primitive: the
// unique pair_id constraint is the only guard against concurrent accepts.
func (r *MatchRepository) CreateMatch(m *models.Match) error {
	return r.db.Create(m).Error
}

func (r *MatchRepository) SaveMatch(m *models.Match) error {
	return r.db.Save(m).Error
}

func (r *MatchRepository) ListMatchesForUser(userID string, limit int) ([]models.Match, error) {
	var list []models.Match
	err := r.db.Where("uid_a = ? OR uid_b = ?", userID, userID).
		Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// Feedback

func (r *MatchRepository) CreateFeedback(f *models.MeetupFeedback) error {
	return r.db.Create(f).Error
}

// RatingsForPair returns every feedback rating left on the pair's own match
// rows, regardless of which participant left it.
func (r *MatchRepository) RatingsForPair(pairID string) ([]int, error) {
	var ratings []int
	err := r.db.Model(&models.MeetupFeedback{}).
		Joins("INNER JOIN matches ON matches.id = meetup_feedback.match_id").
		Where("matches.pair_id = ?", pairID).
		Pluck("meetup_feedback.rating", &ratings).Error
	return ratings, err
}
