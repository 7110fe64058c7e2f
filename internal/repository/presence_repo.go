package repository

import (
	"spotmate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PresenceRepository struct {
	db *gorm.DB
}

func NewPresenceRepository(db *gorm.DB) *PresenceRepository {
	return &PresenceRepository{db: db}
}

// Upsert overwrites the user's single presence row.
func (r *PresenceRepository) Upsert(p *models.Presence) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(p).Error
}

func (r *PresenceRepository) GetByUserID(userID string) (*models.Presence, error) {
	var p models.Presence
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PresenceRepository) Delete(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Presence{}).Error
}
