package meeting

import (
	"fmt"
	"math/rand"
	"strings"
)

// Defaults used when geocoding fails or returns nothing.
const (
	DefaultVenueName = "Current location"
	DefaultLandmark  = "Main entrance"
)

var emojis = []string{"🐱", "☕", "🌿", "🪩", "🎨", "📚", "🎵", "🏃", "🧘", "🍕", "🌟", "🎯", "🌈", "⚡", "🔥"}

// EmojiCode returns a random two-emoji code both parties can show each other
// to confirm they found the right person.
func EmojiCode() string {
	return emojis[rand.Intn(len(emojis))] + emojis[rand.Intn(len(emojis))]
}

// MeetCode returns a short human-readable code like "MEET4821".
func MeetCode() string {
	return fmt.Sprintf("MEET%d", 1000+rand.Intn(9000))
}

// ContextualLandmark picks a meeting landmark suited to the venue type, so the
// match card reads "Check-in desk" at a gym rather than a generic entrance.
func ContextualLandmark(venueName string, venueTypes []string) string {
	name := strings.ToLower(venueName)
	types := make(map[string]bool, len(venueTypes))
	for _, t := range venueTypes {
		types[strings.ToLower(t)] = true
	}

	contains := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(name, s) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("dorm", "residence") || types["lodging"] || types["housing"]:
		return "Main lobby entrance"
	case contains("coffee", "cafe", "espresso") || types["cafe"] || types["coffee_shop"]:
		return "Front entrance"
	case contains("gym", "fitness", "recreation") || types["gym"] || types["health"]:
		return "Check-in desk"
	case contains("library") || types["library"]:
		return "Main entrance"
	case contains("restaurant", "dining", "grill") || types["restaurant"] || types["food"]:
		return "Host stand"
	case contains("bar", "pub", "lounge") || types["bar"] || types["night_club"]:
		return "Bar entrance"
	case contains("park", "garden", "quad") || types["park"]:
		return "Main path entrance"
	case contains("building", "center", "hall") || types["university"] || types["school"]:
		return "Main entrance lobby"
	}
	return DefaultLandmark
}
