// Package matcher links a primary-provider candidate to a durable
// secondary-provider place by trying an ordered list of lookup strategies.
package matcher

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"reco-workers/internal/common/logger"
	"reco-workers/internal/common/metrics"
	"reco-workers/internal/models"
)

const maxQueryRunes = 40

// Query is what strategies search with.
type Query struct {
	Name string
	Lat  float64
	Lon  float64
}

type Match struct {
	PlaceID   string `json:"placeId"`
	PlaceName string `json:"placeName"`
	Address   string `json:"address"`
	Strategy  string `json:"strategy"`
}

// Strategy returns nil, nil when it finds nothing.
type Strategy struct {
	Name string
	Find func(ctx context.Context, q Query) (*Match, error)
}

// SecondaryProvider is the search surface strategies need.
type SecondaryProvider interface {
	SearchKeyword(ctx context.Context, query string, lat, lon float64, radius int) ([]models.SecondaryPlace, error)
	SearchCategory(ctx context.Context, code string, lat, lon float64, radius, size int) ([]models.SecondaryPlace, error)
}

type Config struct {
	RadiusMeters        int
	CategoryRadiusFloor int
	CategoryResultSize  int
	CategoryCodes       []string
}

type Matcher struct {
	strategies []Strategy
	cache      Cache
	logger     logger.Logger
}

// New builds the keyword strategy followed by one category strategy per code.
// cache may be nil.
func New(p SecondaryProvider, cfg Config, cache Cache, log logger.Logger) *Matcher {
	strategies := []Strategy{KeywordStrategy(p, cfg.RadiusMeters)}
	radius := cfg.RadiusMeters
	if cfg.CategoryRadiusFloor > radius {
		radius = cfg.CategoryRadiusFloor
	}
	for _, code := range cfg.CategoryCodes {
		strategies = append(strategies, CategoryStrategy(p, code, radius, cfg.CategoryResultSize))
	}
	return NewWithStrategies(strategies, cache, log)
}

func NewWithStrategies(strategies []Strategy, cache Cache, log logger.Logger) *Matcher {
	return &Matcher{strategies: strategies, cache: cache, logger: log}
}

// Match resolves the candidate's secondary place. A nil match with a nil
// error is a normal outcome. Strategy failures fall through to the next
// strategy; only a done context is returned as an error.
func (m *Matcher) Match(ctx context.Context, c *models.PlaceCandidate) (*Match, error) {
	q := Query{Name: CleanName(c.PrimaryName), Lat: c.Lat, Lon: c.Lon}
	key := cacheKey(q)

	if m.cache != nil {
		hit, err := m.cache.Get(ctx, key)
		switch {
		case err == nil && hit != nil:
			metrics.MatchCacheLookups.WithLabelValues("hit").Inc()
			return hit, nil
		case err != nil && !errors.Is(err, ErrCacheMiss):
			metrics.MatchCacheLookups.WithLabelValues("error").Inc()
			m.logger.Warn("match cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		default:
			metrics.MatchCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	for _, s := range m.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.Name == StrategyKeyword && q.Name == "" {
			continue
		}
		match, err := s.Find(ctx, q)
		if err != nil {
			m.logger.Warn("match strategy failed", map[string]interface{}{
				"strategy": s.Name,
				"name":     q.Name,
				"error":    err.Error(),
			})
			continue
		}
		if match == nil || match.PlaceID == "" {
			continue
		}
		match.Strategy = s.Name
		if m.cache != nil {
			if err := m.cache.Set(ctx, key, match); err != nil {
				m.logger.Warn("match cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
			}
		}
		return match, nil
	}
	return nil, nil
}

var nameSeparators = regexp.MustCompile(`[|ㆍ·\-]`)

// CleanName keeps the first segment of a composite name such as
// "Venue | English subtitle" and truncates it to 40 runes.
func CleanName(name string) string {
	first := strings.TrimSpace(nameSeparators.Split(name, 2)[0])
	if r := []rune(first); len(r) > maxQueryRunes {
		first = string(r[:maxQueryRunes])
	}
	return first
}
