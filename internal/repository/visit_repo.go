package repository

import (
	"errors"
	"time"

	"spotmate/internal/models"

	"gorm.io/gorm"
)

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func (r *VisitRepository) Create(v *models.LocationVisit) error {
	return r.db.Create(v).Error
}

func (r *VisitRepository) CountByUserID(userID string) (int64, error) {
	var c int64
	err := r.db.Model(&models.LocationVisit{}).Where("user_id = ?", userID).Count(&c).Error
	return c, err
}

func (r *VisitRepository) GetPatternsByUserID(userID string) ([]models.ActivityPattern, error) {
	var list []models.ActivityPattern
	err := r.db.Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

// RecordPattern bumps the aggregate for the visit's bucket and rebalances
// frequency scores so each pattern holds its share of the user's total visits.
// Runs in one transaction so concurrent recorders cannot skew the totals.
func (r *VisitRepository) RecordPattern(userID, placeType, timeOfDay, dayType string, visitedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var pattern models.ActivityPattern
		err := tx.Where("user_id = ? AND place_type = ? AND time_of_day = ? AND day_type = ?",
			userID, placeType, timeOfDay, dayType).First(&pattern).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			pattern = models.ActivityPattern{
				UserID:    userID,
				PlaceType: placeType,
				TimeOfDay: timeOfDay,
				DayType:   dayType,
			}
		case err != nil:
			return err
		}
		pattern.VisitCount++
		pattern.LastVisitAt = visitedAt
		if err := tx.Save(&pattern).Error; err != nil {
			return err
		}

		var patterns []models.ActivityPattern
		if err := tx.Where("user_id = ?", userID).Find(&patterns).Error; err != nil {
			return err
		}
		total := 0
		for _, p := range patterns {
			total += p.VisitCount
		}
		if total == 0 {
			return nil
		}
		for _, p := range patterns {
			score := float64(p.VisitCount) / float64(total)
			if err := tx.Model(&models.ActivityPattern{}).Where("id = ?", p.ID).
				Update("frequency_score", score).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
