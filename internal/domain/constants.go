package domain

import (
	"fmt"
	"time"
)

// InterestOptions is the fixed vocabulary users pick from during onboarding.
// Every profile selects exactly InterestCount of these.
var InterestOptions = []string{
	"Coffee",
	"Gym",
	"Books",
	"Running",
	"Science",
	"Social Science",
	"Art",
	"Music",
	"Movies",
	"Outdoors",
}

const InterestCount = 3

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

const (
	MatchStatusPending   = "pending"
	MatchStatusConnected = "connected"
	MatchStatusTalking   = "talking"
)

const (
	TimeOfDayMorning   = "morning"
	TimeOfDayAfternoon = "afternoon"
	TimeOfDayEvening   = "evening"
)

const (
	DayTypeWeekday = "weekday"
	DayTypeWeekend = "weekend"
)

// ValidateInterests checks that exactly InterestCount interests were selected
// and that each is part of the fixed vocabulary.
func ValidateInterests(interests []string) error {
	if len(interests) != InterestCount {
		return fmt.Errorf("please select exactly %d interests (you have %d)", InterestCount, len(interests))
	}
	for _, i := range interests {
		if !validInterest(i) {
			return fmt.Errorf("invalid interest %q", i)
		}
	}
	return nil
}

func validInterest(interest string) bool {
	for _, opt := range InterestOptions {
		if opt == interest {
			return true
		}
	}
	return false
}

// CommonInterests returns the interests present in both lists, preserving the
// order of the first.
func CommonInterests(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, i := range b {
		set[i] = true
	}
	var common []string
	for _, i := range a {
		if set[i] {
			common = append(common, i)
		}
	}
	return common
}

// TimeOfDay buckets a local time: morning until noon, afternoon until 5pm,
// evening otherwise.
func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return TimeOfDayMorning
	case h >= 12 && h < 17:
		return TimeOfDayAfternoon
	default:
		return TimeOfDayEvening
	}
}

// DayType buckets a local time into weekday or weekend.
func DayType(t time.Time) string {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return DayTypeWeekend
	default:
		return DayTypeWeekday
	}
}

// LocalTime converts a UTC instant into the named IANA zone, falling back to
// UTC when the zone is unknown.
func LocalTime(utc time.Time, tz string) time.Time {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return utc.UTC()
	}
	return utc.In(loc)
}
