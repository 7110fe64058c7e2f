package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateInterests(t *testing.T) {
	tests := []struct {
		name      string
		interests []string
		wantErr   bool
	}{
		{"exactly three valid", []string{"Coffee", "Gym", "Books"}, false},
		{"too few", []string{"Coffee", "Gym"}, true},
		{"too many", []string{"Coffee", "Gym", "Books", "Art"}, true},
		{"none", nil, true},
		{"unknown option", []string{"Coffee", "Gym", "Skydiving"}, true},
		{"case sensitive", []string{"coffee", "Gym", "Books"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterests(tt.interests)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommonInterests(t *testing.T) {
	common := CommonInterests(
		[]string{"Coffee", "Gym", "Books"},
		[]string{"Books", "Art", "Coffee"},
	)
	// Order follows the first list.
	assert.Equal(t, []string{"Coffee", "Books"}, common)

	assert.Empty(t, CommonInterests([]string{"Coffee"}, []string{"Art"}))
	assert.Empty(t, CommonInterests(nil, []string{"Art"}))
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{4, TimeOfDayEvening},
		{5, TimeOfDayMorning},
		{11, TimeOfDayMorning},
		{12, TimeOfDayAfternoon},
		{16, TimeOfDayAfternoon},
		{17, TimeOfDayEvening},
		{23, TimeOfDayEvening},
	}
	for _, tt := range tests {
		at := time.Date(2026, 3, 2, tt.hour, 30, 0, 0, time.UTC)
		assert.Equal(t, tt.want, TimeOfDay(at), "hour %d", tt.hour)
	}
}

func TestDayType(t *testing.T) {
	// 2026-03-02 is a Monday, 2026-03-07 a Saturday.
	assert.Equal(t, DayTypeWeekday, DayType(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, DayTypeWeekend, DayType(time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, DayTypeWeekend, DayType(time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)))
}

func TestLocalTime(t *testing.T) {
	utc := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	local := LocalTime(utc, "America/New_York")
	assert.Equal(t, 10, local.Hour())

	// Unknown zones fall back to UTC rather than erroring.
	assert.Equal(t, 15, LocalTime(utc, "Not/AZone").Hour())
}
