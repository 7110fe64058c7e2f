package service

import (
	"fmt"
	"sort"

	"spotmate/config"
	"spotmate/internal/domain"
	"spotmate/internal/repository"
	"spotmate/pkg/geo"
	"spotmate/pkg/proximity"

	"go.uber.org/zap"
)

// NearbyUser is one ranked entry of the nearby list.
type NearbyUser struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Interests          []string `json:"interests"`
	Lat                float64  `json:"lat"`
	Lng                float64  `json:"lng"`
	DistanceMeters     float64  `json:"distance_meters"`
	Distance           string   `json:"distance"`
	ProximityLabel     string   `json:"proximity_label"`
	SharedInterests    []string `json:"shared_interests"`
	EmojiSignature     string   `json:"emoji_signature,omitempty"`
	AvatarURL          string   `json:"avatar_url,omitempty"`
	CompatibilityScore *int     `json:"compatibility_score,omitempty"`
}

// NearbyService produces the ranked list of currently-matchable users around
// a requester: geohash neighborhood prefilter, exact-distance cut, shared
// interest hard gate, compatibility ranking.
type NearbyService struct {
	cfg      config.MatchingConfig
	profiles *repository.ProfileRepository
	scorer   *CompatibilityService
	log      *zap.Logger
}

func NewNearbyService(
	cfg config.MatchingConfig,
	profiles *repository.ProfileRepository,
	scorer *CompatibilityService,
	log *zap.Logger,
) *NearbyService {
	return &NearbyService{cfg: cfg, profiles: profiles, scorer: scorer, log: log}
}

// Query returns the ranked nearby list for the requester at coord. An
// un-onboarded requester or one with no interests gets an empty list, not an
// error.
func (s *NearbyService) Query(userID string, coord geo.Coordinate) ([]NearbyUser, error) {
	if !coord.Valid() {
		return nil, fmt.Errorf("coordinate out of range")
	}

	me, err := s.profiles.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load requester: %w", err)
	}
	myInterests := me.InterestList()
	if len(myInterests) == 0 {
		return []NearbyUser{}, nil
	}

	hash := geo.Encode(coord.Lat, coord.Lng, s.cfg.GeohashPrecision)
	candidates, err := s.profiles.FindNearbyCandidates(userID, geo.Neighbors(hash))
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []NearbyUser{}, nil
	}

	// One scorer pass per query; the requester's patterns and weights are
	// loaded once and reused across every candidate. Scoring failures leave
	// the candidate unscored rather than failing the whole query.
	pass, passErr := s.scorer.BeginPass(userID)
	if passErr != nil {
		s.log.Warn("compatibility pass unavailable",
			zap.String("user_id", userID), zap.Error(passErr))
	}

	nearby := make([]NearbyUser, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if !c.HasLocation() {
			continue
		}
		dist := geo.DistanceMeters(coord.Lat, coord.Lng, *c.Lat, *c.Lng)
		if dist > s.cfg.MaxMatchDistanceMeters {
			continue
		}
		// Shared interests are a hard gate, not just a scoring input.
		shared := domain.CommonInterests(myInterests, c.InterestList())
		if len(shared) == 0 {
			continue
		}

		var score *int
		if pass != nil {
			if result, err := pass.Score(c.ID); err != nil {
				s.log.Warn("compatibility score failed",
					zap.String("user_id", userID),
					zap.String("target_id", c.ID),
					zap.Error(err))
			} else {
				score = &result.Score
			}
		}

		nearby = append(nearby, NearbyUser{
			ID:                 c.ID,
			Name:               c.Name,
			Interests:          c.InterestList(),
			Lat:                *c.Lat,
			Lng:                *c.Lng,
			DistanceMeters:     dist,
			Distance:           geo.FormatDistance(dist),
			ProximityLabel:     proximity.Label(proximity.Progress(dist, s.cfg.MaxMatchDistanceMeters)),
			SharedInterests:    shared,
			EmojiSignature:     c.EmojiSignature,
			AvatarURL:          c.AvatarURL,
			CompatibilityScore: score,
		})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		a, b := nearby[i], nearby[j]
		if a.CompatibilityScore != nil && b.CompatibilityScore != nil &&
			*a.CompatibilityScore != *b.CompatibilityScore {
			return *a.CompatibilityScore > *b.CompatibilityScore
		}
		return a.DistanceMeters < b.DistanceMeters
	})

	return nearby, nil
}
