package repository

import (
	"errors"

	"spotmate/internal/models"

	"gorm.io/gorm"
)

type WeightsRepository struct {
	db *gorm.DB
}

func NewWeightsRepository(db *gorm.DB) *WeightsRepository {
	return &WeightsRepository{db: db}
}

// GetOrCreate returns the user's weights row, initializing the early-stage
// defaults on first use.
func (r *WeightsRepository) GetOrCreate(userID string) (*models.CompatibilityWeights, error) {
	var w models.CompatibilityWeights
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = models.CompatibilityWeights{
			UserID:         userID,
			InterestWeight: 0.8,
			BehaviorWeight: 0.15,
			FeedbackWeight: 0.05,
		}
		if err := r.db.Create(&w).Error; err != nil {
			return nil, err
		}
		return &w, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WeightsRepository) Save(w *models.CompatibilityWeights) error {
	return r.db.Save(w).Error
}
