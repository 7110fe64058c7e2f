package geo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mmcloughlin/geohash"
)

// EarthRadiusMeters is the Earth radius used for Haversine.
const EarthRadiusMeters = 6371000.0

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is within WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Encode returns the base-32 geohash of a point at the given precision.
// Precision 6 cells are ~1.2km on a side, which keeps any two points within
// 100m of each other inside the same 9-cell neighborhood.
func Encode(lat, lng float64, precision uint) string {
	return geohash.EncodeWithPrecision(lat, lng, precision)
}

// Decode returns the center of a geohash cell.
func Decode(hash string) Coordinate {
	lat, lng := geohash.DecodeCenter(hash)
	return Coordinate{Lat: lat, Lng: lng}
}

// Neighbors returns the cell itself plus its 8 adjacent cells at the same
// precision. Querying all 9 avoids misses when a user sits near a cell border.
func Neighbors(hash string) []string {
	return append([]string{hash}, geohash.Neighbors(hash)...)
}

// DistanceMeters returns the Haversine great-circle distance in meters.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	φ1, φ2 := rad(lat1), rad(lat2)
	Δφ := rad(lat2 - lat1)
	Δλ := rad(lng2 - lng1)
	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// IsWithinDistance reports whether two coordinates are at most maxMeters apart.
func IsWithinDistance(a, b Coordinate, maxMeters float64) bool {
	return DistanceMeters(a.Lat, a.Lng, b.Lat, b.Lng) <= maxMeters
}

// Bounds is a lat/lng bounding box around a center point.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoundsAround returns the bounding box covering radiusMeters around center.
// 1 degree of latitude ≈ 111,320 meters.
func BoundsAround(center Coordinate, radiusMeters float64) Bounds {
	latDelta := radiusMeters / 111320
	lngDelta := radiusMeters / (111320 * math.Cos(center.Lat*math.Pi/180))
	return Bounds{
		MinLat: center.Lat - latDelta,
		MaxLat: center.Lat + latDelta,
		MinLng: center.Lng - lngDelta,
		MaxLng: center.Lng + lngDelta,
	}
}

// Midpoint returns the arithmetic midpoint of two coordinates. Fine for the
// sub-kilometer distances this app deals with.
func Midpoint(a, b Coordinate) Coordinate {
	return Coordinate{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}
}

// PairID returns a deterministic, order-independent identifier for an
// unordered user pair. Used as the idempotency key for match rows.
func PairID(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// OrderPair returns the two user ids in lexicographic order.
func OrderPair(userA, userB string) (string, string) {
	if userA < userB {
		return userA, userB
	}
	return userB, userA
}

// FormatDistance renders a distance for display ("42m", "1.3km").
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}
