package repository

import (
	"context"
	"testing"

	"spotmate/internal/database"
	"spotmate/pkg/places"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestPlaceCacheClosestHit(t *testing.T) {
	repo := NewPlaceCacheRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &places.Place{
		ID: "pl-near", Name: "Bean Traders", Type: "cafe", Types: []string{"cafe", "food"},
		Lat: 35.9940, Lng: -78.8990,
	}))
	require.NoError(t, repo.Save(ctx, &places.Place{
		ID: "pl-far", Name: "Wilson Gym", Type: "gym",
		Lat: 35.9947, Lng: -78.8990,
	}))

	got, err := repo.Closest(ctx, 35.99402, -78.89901, 50)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "pl-near", got.ID)
	assert.Equal(t, "cafe", got.Type)
	assert.Equal(t, []string{"cafe", "food"}, got.Types)
}

func TestPlaceCacheClosestMissOutsideRadius(t *testing.T) {
	repo := NewPlaceCacheRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &places.Place{
		ID: "pl-1", Name: "Bean Traders", Type: "cafe",
		Lat: 35.9940, Lng: -78.8990,
	}))

	// ~110m north of the cached place.
	got, err := repo.Closest(ctx, 35.9940+110.0/111195, -78.8990, 50)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPlaceCacheClosestBumpsUseCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaceCacheRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &places.Place{
		ID: "pl-1", Name: "Bean Traders", Type: "cafe",
		Lat: 35.9940, Lng: -78.8990,
	}))

	_, err := repo.Closest(ctx, 35.9940, -78.8990, 50)
	require.NoError(t, err)
	_, err = repo.Closest(ctx, 35.9940, -78.8990, 50)
	require.NoError(t, err)

	var useCount int
	require.NoError(t, db.Table("place_cache").
		Where("place_id = ?", "pl-1").
		Pluck("use_count", &useCount).Error)
	assert.Equal(t, 3, useCount)
}

func TestPlaceCacheSaveIsUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaceCacheRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &places.Place{ID: "pl-1", Name: "Old Name", Type: "cafe", Lat: 35.994, Lng: -78.899}))
	require.NoError(t, repo.Save(ctx, &places.Place{ID: "pl-1", Name: "New Name", Type: "cafe", Lat: 35.994, Lng: -78.899}))

	var count int64
	require.NoError(t, db.Table("place_cache").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var name string
	require.NoError(t, db.Table("place_cache").Where("place_id = ?", "pl-1").Pluck("place_name", &name).Error)
	assert.Equal(t, "New Name", name)
}
