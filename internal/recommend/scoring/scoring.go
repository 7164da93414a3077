// Package scoring ranks candidates from rating, distance and the user's
// learned preferences. The score is a deterministic heuristic.
package scoring

import (
	"strings"

	"reco-workers/internal/common/config"
	"reco-workers/internal/models"
)

const (
	ReasonSignupCategory     = "회원가입에서 선택한 선호 카테고리와 일치해요."
	ReasonCategoryLoved      = "이 시간대에 자주 높게 평가한 음식 종류예요."
	ReasonCategoryLiked      = "이 시간대에 만족도가 높은 카테고리예요."
	ReasonCategoryMeh        = "예전에 살짝 아쉬웠던 카테고리지만, 근처라 후보에 포함했어요."
	ReasonCategoryDisliked   = "평균 만족도가 낮았던 카테고리라 점수를 낮췄어요."
	ReasonRestaurantLiked    = "이전에 이 가게에 높은 점수를 주신 적이 있어요."
	ReasonRestaurantDisliked = "예전에 별로라고 평가하신 가게라 점수를 크게 낮췄어요."
)

// Weights holds the tunable constants.
type Weights struct {
	DefaultRating   float64
	RatingScale     float64
	DistancePenalty float64
	SignupBonus     float64
	DislikeFactor   float64
}

func DefaultWeights() Weights {
	return Weights{
		DefaultRating:   3.0,
		RatingScale:     10,
		DistancePenalty: 1,
		SignupBonus:     5,
		DislikeFactor:   0.2,
	}
}

// WeightsFromConfig applies non-zero overrides to the defaults.
func WeightsFromConfig(cfg config.ScoringConfig) Weights {
	w := DefaultWeights()
	if cfg.DefaultRating > 0 {
		w.DefaultRating = cfg.DefaultRating
	}
	if cfg.RatingScale > 0 {
		w.RatingScale = cfg.RatingScale
	}
	if cfg.DistancePenalty > 0 {
		w.DistancePenalty = cfg.DistancePenalty
	}
	if cfg.SignupBonus > 0 {
		w.SignupBonus = cfg.SignupBonus
	}
	if cfg.DislikeFactor > 0 {
		w.DislikeFactor = cfg.DislikeFactor
	}
	return w
}

type Result struct {
	Score     float64
	Preferred bool
	Reasons   []string
}

type Engine struct {
	w Weights
}

func NewEngine(w Weights) *Engine {
	return &Engine{w: w}
}

// ReviewFactor discounts ratings backed by few reviews.
func ReviewFactor(reviews int) float64 {
	switch {
	case reviews >= 50:
		return 1.2
	case reviews >= 20:
		return 1.1
	case reviews >= 5:
		return 1.0
	default:
		return 0.9
	}
}

// Score applies, in order: base score, signup bonus, category affinity
// factor, restaurant affinity factor.
func (e *Engine) Score(c *models.PlaceCandidate, p models.UserPreferenceProfile) Result {
	rating := e.w.DefaultRating
	if c.Rating != nil {
		rating = *c.Rating
	}

	var r Result
	r.Score = rating*e.w.RatingScale*ReviewFactor(c.ReviewCount) - c.DistanceKm*e.w.DistancePenalty

	if c.Category != "" {
		for _, sc := range p.SignupCategories {
			if sc != "" && strings.Contains(c.Category, sc) {
				r.Score += e.w.SignupBonus
				r.Preferred = true
				r.addReason(ReasonSignupCategory)
				break
			}
		}
	}

	if avg, ok := p.CategoryAffinity[c.Category]; ok {
		switch {
		case avg >= 4.5:
			r.Score *= 1.3
			r.Preferred = true
			r.addReason(ReasonCategoryLoved)
		case avg >= 4.0:
			r.Score *= 1.15
			r.addReason(ReasonCategoryLiked)
		case avg >= 3.0:
		case avg >= 2.0:
			r.Score *= 0.7
			r.addReason(ReasonCategoryMeh)
		default:
			r.Score *= 0.4
			r.addReason(ReasonCategoryDisliked)
		}
	}

	if avg, ok := p.RestaurantAffinity[c.Name()]; ok {
		switch {
		case avg >= 4.0:
			r.Score *= 1.3
			r.Preferred = true
			r.addReason(ReasonRestaurantLiked)
		case avg <= 2.5:
			r.Score *= e.w.DislikeFactor
			r.addReason(ReasonRestaurantDisliked)
		}
	}
	return r
}

// Apply scores every candidate in place.
func (e *Engine) Apply(cands []models.PlaceCandidate, p models.UserPreferenceProfile) {
	for i := range cands {
		r := e.Score(&cands[i], p)
		cands[i].Score = r.Score
		cands[i].Preferred = r.Preferred
		cands[i].Reasons = r.Reasons
	}
}

func (r *Result) addReason(reason string) {
	for _, existing := range r.Reasons {
		if existing == reason {
			return
		}
	}
	r.Reasons = append(r.Reasons, reason)
}

// Explanation joins reasons with a space.
func Explanation(reasons []string) string {
	return strings.Join(reasons, " ")
}
