package service

import (
	"fmt"
	"math"

	"spotmate/internal/domain"
	"spotmate/internal/models"
	"spotmate/internal/repository"
	"spotmate/pkg/geo"

	"go.uber.org/zap"
)

// Weights is the three-way split applied to the sub-scores. Always sums to 1.
type Weights struct {
	Interest float64 `json:"interest"`
	Behavior float64 `json:"behavior"`
	Feedback float64 `json:"feedback"`
}

// ScoreBreakdown carries the sub-scores scaled to 0-100 for display.
type ScoreBreakdown struct {
	InterestScore int `json:"interestScore"`
	BehaviorScore int `json:"behaviorScore"`
	FeedbackScore int `json:"feedbackScore"`
}

// ScoreResult is the remote compatibility boundary payload.
type ScoreResult struct {
	TargetUserID string         `json:"targetUserId"`
	Score        int            `json:"score"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
	Weights      Weights        `json:"weights"`
	DataPoints   int            `json:"dataPoints"`
}

// CompatibilityService computes the adaptive 0-100 affinity score between two
// users from interest overlap, activity-pattern similarity, and meetup
// feedback history.
type CompatibilityService struct {
	profiles *repository.ProfileRepository
	visits   *repository.VisitRepository
	matches  *repository.MatchRepository
	weights  *repository.WeightsRepository
	log      *zap.Logger
}

func NewCompatibilityService(
	profiles *repository.ProfileRepository,
	visits *repository.VisitRepository,
	matches *repository.MatchRepository,
	weights *repository.WeightsRepository,
	log *zap.Logger,
) *CompatibilityService {
	return &CompatibilityService{
		profiles: profiles,
		visits:   visits,
		matches:  matches,
		weights:  weights,
		log:      log,
	}
}

// adaptWeights shifts the blend with accumulated data volume: interests
// dominate for new users, behavior and feedback take over as location history
// builds up.
func adaptWeights(dataPoints int) Weights {
	switch {
	case dataPoints < 10:
		return Weights{Interest: 0.8, Behavior: 0.15, Feedback: 0.05}
	case dataPoints < 50:
		return Weights{Interest: 0.6, Behavior: 0.3, Feedback: 0.1}
	case dataPoints < 100:
		return Weights{Interest: 0.4, Behavior: 0.4, Feedback: 0.2}
	default:
		return Weights{Interest: 0.3, Behavior: 0.4, Feedback: 0.3}
	}
}

// interestScore normalizes shared-interest count against the fixed 3-interest
// selection size.
func interestScore(userInterests, targetInterests []string) float64 {
	if len(userInterests) == 0 || len(targetInterests) == 0 {
		return 0
	}
	shared := len(domain.CommonInterests(userInterests, targetInterests))
	return math.Min(float64(shared)/float64(domain.InterestCount), 1)
}

// behaviorScore averages pattern-wise similarity (1 - |freqA - freqB|) across
// the bucket keys both users have. No overlap means no behavioral signal.
func behaviorScore(userPatterns, targetPatterns []models.ActivityPattern) float64 {
	if len(userPatterns) == 0 || len(targetPatterns) == 0 {
		return 0
	}
	targetByKey := make(map[string]float64, len(targetPatterns))
	for i := range targetPatterns {
		targetByKey[targetPatterns[i].Key()] = targetPatterns[i].FrequencyScore
	}
	total := 0.0
	count := 0
	for i := range userPatterns {
		targetFreq, ok := targetByKey[userPatterns[i].Key()]
		if !ok {
			continue
		}
		total += 1 - math.Abs(userPatterns[i].FrequencyScore-targetFreq)
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// feedbackScore averages past meetup ratings for this specific pair,
// normalized from the 1-5 scale to [0,1]. New pairs score a neutral 0.5.
func (s *CompatibilityService) feedbackScore(userID, targetID string) (float64, error) {
	ratings, err := s.matches.RatingsForPair(geo.PairID(userID, targetID))
	if err != nil {
		return 0, err
	}
	if len(ratings) == 0 {
		return 0.5, nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return (avg - 1) / 4, nil
}

// ScorePass caches the requester's side of the computation so one nearby
// query can score many candidates without re-reading the requester's profile,
// patterns, or weights. Weights are per requesting user, not per pair: the
// same calibration applies to every candidate in the pass.
type ScorePass struct {
	svc        *CompatibilityService
	userID     string
	interests  []string
	patterns   []models.ActivityPattern
	weights    Weights
	dataPoints int
}

// BeginPass loads and calibrates the requester's scoring context, persisting
// the adapted weights and data-point count as a side effect.
func (s *CompatibilityService) BeginPass(userID string) (*ScorePass, error) {
	profile, err := s.profiles.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	patterns, err := s.visits.GetPatternsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	stored, err := s.weights.GetOrCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}

	dataPoints := len(patterns) + stored.DataPointsCount
	w := adaptWeights(dataPoints)

	stored.InterestWeight = w.Interest
	stored.BehaviorWeight = w.Behavior
	stored.FeedbackWeight = w.Feedback
	stored.DataPointsCount = dataPoints
	if err := s.weights.Save(stored); err != nil {
		// Calibration persistence is best-effort; the score itself is
		// computed from the in-memory weights either way.
		s.log.Warn("persist compatibility weights failed",
			zap.String("user_id", userID), zap.Error(err))
	}

	return &ScorePass{
		svc:        s,
		userID:     userID,
		interests:  profile.InterestList(),
		patterns:   patterns,
		weights:    w,
		dataPoints: dataPoints,
	}, nil
}

// Score computes the blended 0-100 score against one target.
func (p *ScorePass) Score(targetID string) (*ScoreResult, error) {
	target, err := p.svc.profiles.GetByID(targetID)
	if err != nil {
		return nil, fmt.Errorf("load target profile: %w", err)
	}
	targetPatterns, err := p.svc.visits.GetPatternsByUserID(targetID)
	if err != nil {
		return nil, fmt.Errorf("load target patterns: %w", err)
	}

	iScore := interestScore(p.interests, target.InterestList())
	bScore := behaviorScore(p.patterns, targetPatterns)
	fScore, err := p.svc.feedbackScore(p.userID, targetID)
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}

	final := int(math.Round((iScore*p.weights.Interest +
		bScore*p.weights.Behavior +
		fScore*p.weights.Feedback) * 100))

	return &ScoreResult{
		TargetUserID: targetID,
		Score:        final,
		Breakdown: ScoreBreakdown{
			InterestScore: int(math.Round(iScore * 100)),
			BehaviorScore: int(math.Round(bScore * 100)),
			FeedbackScore: int(math.Round(fScore * 100)),
		},
		Weights:    p.weights,
		DataPoints: p.dataPoints,
	}, nil
}

// Score is the single-target entry point used by the compatibility endpoint.
func (s *CompatibilityService) Score(userID, targetID string) (*ScoreResult, error) {
	pass, err := s.BeginPass(userID)
	if err != nil {
		return nil, err
	}
	return pass.Score(targetID)
}
