package repository

import (
	"context"
	"strings"
	"time"

	"spotmate/internal/models"
	"spotmate/pkg/geo"
	"spotmate/pkg/places"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaceCacheRepository persists resolved venues. It implements places.Cache so
// the resolver chain can consult the database before the Places API.
type PlaceCacheRepository struct {
	db *gorm.DB
}

func NewPlaceCacheRepository(db *gorm.DB) *PlaceCacheRepository {
	return &PlaceCacheRepository{db: db}
}

// Closest returns the nearest cached place within radiusMeters of the
// coordinate, bumping its usage counters on a hit.
func (r *PlaceCacheRepository) Closest(ctx context.Context, lat, lng, radiusMeters float64) (*places.Place, error) {
	b := geo.BoundsAround(geo.Coordinate{Lat: lat, Lng: lng}, radiusMeters)
	var rows []models.PlaceCache
	err := r.db.WithContext(ctx).
		Where("lat BETWEEN ? AND ?", b.MinLat, b.MaxLat).
		Where("lng BETWEEN ? AND ?", b.MinLng, b.MaxLng).
		Limit(5).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	closest := &rows[0]
	minDist := geo.DistanceMeters(lat, lng, closest.Lat, closest.Lng)
	for i := 1; i < len(rows); i++ {
		if d := geo.DistanceMeters(lat, lng, rows[i].Lat, rows[i].Lng); d < minDist {
			minDist = d
			closest = &rows[i]
		}
	}
	if minDist > radiusMeters {
		return nil, nil
	}

	if err := r.db.WithContext(ctx).Model(&models.PlaceCache{}).
		Where("place_id = ?", closest.PlaceID).
		Updates(map[string]interface{}{
			"use_count":    gorm.Expr("use_count + 1"),
			"last_used_at": time.Now().UTC(),
		}).Error; err != nil {
		return nil, err
	}
	return &places.Place{
		ID:    closest.PlaceID,
		Name:  closest.PlaceName,
		Type:  closest.PlaceType,
		Types: closest.TypeList(),
		Lat:   closest.Lat,
		Lng:   closest.Lng,
	}, nil
}

func (r *PlaceCacheRepository) Save(ctx context.Context, p *places.Place) error {
	row := models.PlaceCache{
		PlaceID:    p.ID,
		PlaceName:  p.Name,
		PlaceType:  p.Type,
		Types:      strings.Join(p.Types, ","),
		Lat:        p.Lat,
		Lng:        p.Lng,
		UseCount:   1,
		LastUsedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "place_id"}},
		UpdateAll: true,
	}).Create(&row).Error
}
