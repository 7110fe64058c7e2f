package proximity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		max      float64
		want     float64
	}{
		{"at the same spot", 0, 100, 100},
		{"quarter of range", 25, 100, 75},
		{"three quarters of range", 75, 100, 25},
		{"at max range", 100, 100, 0},
		{"beyond range", 150, 100, 0},
		{"zero max", 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Progress(tt.distance, tt.max), 1e-9)
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Very Close", Label(90))
	assert.Equal(t, "Very Close", Label(75))
	assert.Equal(t, "Nearby", Label(60))
	assert.Equal(t, "Within Area", Label(30))
	assert.Equal(t, "Far (within range)", Label(5))
	assert.Equal(t, "", Label(0))
}
