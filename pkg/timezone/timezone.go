package timezone

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"
)

// Resolver maps a coordinate to an IANA timezone identifier. Answers may be
// approximate; callers tolerate a fallback of "UTC".
type Resolver interface {
	Resolve(ctx context.Context, lat, lng float64) (string, error)
}

// GoogleResolver resolves timezones via the Google TimeZone API.
type GoogleResolver struct {
	APIKey string
	Client *http.Client
}

func NewGoogleResolver(apiKey string) *GoogleResolver {
	return &GoogleResolver{
		APIKey: apiKey,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (g *GoogleResolver) Resolve(ctx context.Context, lat, lng float64) (string, error) {
	if g.APIKey == "" {
		return estimateFromLongitude(lng), nil
	}
	url := fmt.Sprintf("https://maps.googleapis.com/maps/api/timezone/json?location=%f,%f&timestamp=%d&key=%s",
		lat, lng, time.Now().Unix(), g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "UTC", err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return "UTC", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "UTC", fmt.Errorf("timezone api status %d", resp.StatusCode)
	}
	var body struct {
		Status     string `json:"status"`
		TimeZoneID string `json:"timeZoneId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "UTC", err
	}
	if body.Status != "OK" || body.TimeZoneID == "" {
		return "UTC", fmt.Errorf("timezone api status %q", body.Status)
	}
	return body.TimeZoneID, nil
}

// estimateFromLongitude is a rough US-centric fallback used without an API key.
func estimateFromLongitude(lng float64) string {
	switch {
	case lng >= -75:
		return "America/New_York"
	case lng >= -90:
		return "America/Chicago"
	case lng >= -115:
		return "America/Denver"
	case lng >= -125:
		return "America/Los_Angeles"
	}
	return "UTC"
}

// cacheMaxEntries bounds the cell cache; the map resets rather than evicting.
const cacheMaxEntries = 4096

// CachedResolver memoizes answers per coordinate cell of MoveDegrees on a
// side. Timezones span whole regions, so anyone inside the same cell shares
// one API answer; moving to a new cell triggers a fresh lookup.
type CachedResolver struct {
	Inner       Resolver
	MoveDegrees float64

	mu    sync.Mutex
	cells map[string]string
}

func NewCachedResolver(inner Resolver, moveDegrees float64) *CachedResolver {
	return &CachedResolver{
		Inner:       inner,
		MoveDegrees: moveDegrees,
		cells:       make(map[string]string),
	}
}

func (c *CachedResolver) cellKey(lat, lng float64) string {
	return fmt.Sprintf("%.0f:%.0f",
		math.Floor(lat/c.MoveDegrees), math.Floor(lng/c.MoveDegrees))
}

func (c *CachedResolver) Resolve(ctx context.Context, lat, lng float64) (string, error) {
	key := c.cellKey(lat, lng)
	c.mu.Lock()
	if tz, ok := c.cells[key]; ok {
		c.mu.Unlock()
		return tz, nil
	}
	c.mu.Unlock()

	tz, err := c.Inner.Resolve(ctx, lat, lng)
	if err != nil {
		return "UTC", err
	}
	c.mu.Lock()
	if len(c.cells) >= cacheMaxEntries {
		c.cells = make(map[string]string)
	}
	c.cells[key] = tz
	c.mu.Unlock()
	return tz, nil
}
