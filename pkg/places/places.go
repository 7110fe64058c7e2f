package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Place is a best-effort venue near a coordinate.
type Place struct {
	ID    string
	Name  string
	Type  string
	Types []string
	Lat   float64
	Lng   float64
}

// Resolver finds the most relevant venue near a coordinate. A nil Place with a
// nil error means "nothing there"; callers substitute defaults.
type Resolver interface {
	Nearby(ctx context.Context, lat, lng, radiusMeters float64) (*Place, error)
}

// priorityTypes are preferred over whatever Google lists first when the place
// has no primary type.
var priorityTypes = []string{"cafe", "restaurant", "gym", "library", "bar", "park", "shopping_mall"}

// GoogleResolver calls the Google Places searchNearby API.
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

func (g *GoogleResolver) Nearby(ctx context.Context, lat, lng, radiusMeters float64) (*Place, error) {
	if g.APIKey == "" {
		return nil, nil
	}
	payload := map[string]interface{}{
		"locationRestriction": map[string]interface{}{
			"circle": map[string]interface{}{
				"center": map[string]float64{"latitude": lat, "longitude": lng},
				"radius": radiusMeters,
			},
		},
		"maxResultCount": 1,
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://places.googleapis.com/v1/places:searchNearby", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", g.APIKey)
	req.Header.Set("X-Goog-FieldMask", "places.id,places.displayName,places.types,places.primaryType,places.location")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places api status %d", resp.StatusCode)
	}

	var out struct {
		Places []struct {
			ID          string `json:"id"`
			DisplayName struct {
				Text string `json:"text"`
			} `json:"displayName"`
			Types       []string `json:"types"`
			PrimaryType string   `json:"primaryType"`
			Location    struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"location"`
		} `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Places) == 0 {
		return nil, nil
	}

	p := out.Places[0]
	placeType := p.PrimaryType
	if placeType == "" {
		placeType = pickType(p.Types)
	}
	return &Place{
		ID:    p.ID,
		Name:  p.DisplayName.Text,
		Type:  placeType,
		Types: p.Types,
		Lat:   p.Location.Latitude,
		Lng:   p.Location.Longitude,
	}, nil
}

func pickType(types []string) string {
	for _, want := range priorityTypes {
		for _, t := range types {
			if t == want {
				return want
			}
		}
	}
	if len(types) > 0 {
		return types[0]
	}
	return "general"
}

// Cache stores resolved places near a coordinate so repeated visits to the
// same spot do not re-hit the API. Implemented by the place_cache repository.
type Cache interface {
	Closest(ctx context.Context, lat, lng, radiusMeters float64) (*Place, error)
	Save(ctx context.Context, p *Place) error
}

// CachedResolver checks the cache before falling through to the inner
// resolver, and writes fresh answers back.
type CachedResolver struct {
	Inner Resolver
	Cache Cache
}

func (c *CachedResolver) Nearby(ctx context.Context, lat, lng, radiusMeters float64) (*Place, error) {
	if cached, err := c.Cache.Closest(ctx, lat, lng, radiusMeters); err == nil && cached != nil {
		return cached, nil
	}
	p, err := c.Inner.Nearby(ctx, lat, lng, radiusMeters)
	if err != nil || p == nil {
		return p, err
	}
	if p.ID != "" {
		_ = c.Cache.Save(ctx, p)
	}
	return p, nil
}
