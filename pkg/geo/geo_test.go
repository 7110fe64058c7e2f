package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 35.994, lng1: -78.899, lat2: 35.994, lng2: -78.899,
			want: 0, tolerance: 0.001,
		},
		{
			name: "about fifteen meters apart",
			lat1: 35.994, lng1: -78.899, lat2: 35.994135, lng2: -78.899,
			want: 15, tolerance: 0.5,
		},
		{
			name: "durham to raleigh",
			lat1: 35.994, lng1: -78.8986, lat2: 35.7796, lng2: -78.6382,
			want: 33000, tolerance: 1500,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.want, got, tt.tolerance)
		})
	}
}

func TestDistanceMetersSymmetry(t *testing.T) {
	d1 := DistanceMeters(35.994, -78.899, 35.9941, -78.8991)
	d2 := DistanceMeters(35.9941, -78.8991, 35.994, -78.899)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, Coordinate{Lat: 35.994, Lng: -78.899}.Valid())
	assert.True(t, Coordinate{Lat: -90, Lng: 180}.Valid())
	assert.False(t, Coordinate{Lat: 91, Lng: 0}.Valid())
	assert.False(t, Coordinate{Lat: 0, Lng: -181}.Valid())
}

func TestNeighborsIncludesOwnCell(t *testing.T) {
	hash := Encode(35.994, -78.899, 6)
	neighbors := Neighbors(hash)
	assert.Len(t, neighbors, 9)
	assert.Contains(t, neighbors, hash)
}

// Two points within match range must land inside the same 9-cell
// neighborhood at precision 6, even right on a cell border.
func TestNeighborsCoverNearbyPoints(t *testing.T) {
	points := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
	}{
		{"fifty meters apart", 35.994, -78.899, 35.99445, -78.899},
		{"hundred meters apart", 35.994, -78.899, 35.9949, -78.899},
		{"near a cell border", 35.9999, -78.8999, 36.0001, -78.9001},
	}
	for _, tt := range points {
		t.Run(tt.name, func(t *testing.T) {
			h1 := Encode(tt.lat1, tt.lng1, 6)
			h2 := Encode(tt.lat2, tt.lng2, 6)
			assert.Contains(t, Neighbors(h1), h2)
		})
	}
}

func TestPairIDOrderIndependent(t *testing.T) {
	assert.Equal(t, PairID("alice", "bob"), PairID("bob", "alice"))
	assert.Equal(t, "alice_bob", PairID("bob", "alice"))
}

func TestOrderPair(t *testing.T) {
	a, b := OrderPair("zed", "amy")
	assert.Equal(t, "amy", a)
	assert.Equal(t, "zed", b)
	a, b = OrderPair("amy", "zed")
	assert.Equal(t, "amy", a)
	assert.Equal(t, "zed", b)
}

func TestMidpoint(t *testing.T) {
	mid := Midpoint(Coordinate{Lat: 35.994, Lng: -78.899}, Coordinate{Lat: 35.996, Lng: -78.897})
	assert.InDelta(t, 35.995, mid.Lat, 1e-9)
	assert.InDelta(t, -78.898, mid.Lng, 1e-9)
}

func TestBoundsAroundContainsCenter(t *testing.T) {
	center := Coordinate{Lat: 35.994, Lng: -78.899}
	b := BoundsAround(center, 50)
	assert.Less(t, b.MinLat, center.Lat)
	assert.Greater(t, b.MaxLat, center.Lat)
	assert.Less(t, b.MinLng, center.Lng)
	assert.Greater(t, b.MaxLng, center.Lng)
	// A point 40m north stays inside a 50m box.
	assert.Less(t, 35.994+40.0/111320, b.MaxLat)
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{0, "0m"},
		{42.4, "42m"},
		{999, "999m"},
		{1000, "1.0km"},
		{1340, "1.3km"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDistance(tt.meters))
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	hash := Encode(35.994, -78.899, 6)
	center := Decode(hash)
	// Precision 6 cells are ~1.2km; the center must be within one cell.
	assert.Less(t, DistanceMeters(35.994, -78.899, center.Lat, center.Lng), 1200.0)
}
