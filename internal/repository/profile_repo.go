package repository

import (
	"time"

	"spotmate/internal/models"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(p *models.Profile) error {
	return r.db.Create(p).Error
}

func (r *ProfileRepository) GetByID(id string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPair loads both profiles of a pair in one query.
func (r *ProfileRepository) GetPair(idA, idB string) (*models.Profile, *models.Profile, error) {
	var list []models.Profile
	if err := r.db.Where("id IN ?", []string{idA, idB}).Find(&list).Error; err != nil {
		return nil, nil, err
	}
	var a, b *models.Profile
	for i := range list {
		switch list[i].ID {
		case idA:
			a = &list[i]
		case idB:
			b = &list[i]
		}
	}
	if a == nil || b == nil {
		return nil, nil, gorm.ErrRecordNotFound
	}
	return a, b, nil
}

func (r *ProfileRepository) Save(p *models.Profile) error {
	return r.db.Save(p).Error
}

// UpdateLocation mirrors a presence publish onto the profile row.
func (r *ProfileRepository) UpdateLocation(userID string, lat, lng float64, geohash string, accuracy float64, at time.Time) error {
	return r.db.Model(&models.Profile{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"lat":                 lat,
		"lng":                 lng,
		"geohash":             geohash,
		"location_accuracy":   accuracy,
		"location_updated_at": at,
	}).Error
}

// FindNearbyCandidates returns visible, onboarded profiles whose geohash sits
// in the given neighborhood, excluding the requester. Exact distance is
// filtered in the service layer; the geohash is only a coarse index.
func (r *ProfileRepository) FindNearbyCandidates(excludeID string, geohashes []string) ([]models.Profile, error) {
	var list []models.Profile
	err := r.db.
		Where("id != ?", excludeID).
		Where("is_visible = ?", true).
		Where("onboarded = ?", true).
		Where("geohash IN ?", geohashes).
		Find(&list).Error
	return list, err
}
