package matcher

import (
	"context"

	"reco-workers/internal/models"
)

const (
	StrategyKeyword  = "keyword"
	StrategyCategory = "category"
)

// KeywordStrategy searches by cleaned name near the candidate and accepts the
// nearest hit within radius.
func KeywordStrategy(p SecondaryProvider, radius int) Strategy {
	return Strategy{
		Name: StrategyKeyword,
		Find: func(ctx context.Context, q Query) (*Match, error) {
			places, err := p.SearchKeyword(ctx, q.Name, q.Lat, q.Lon, radius)
			if err != nil {
				return nil, err
			}
			return nearest(places, radius), nil
		},
	}
}

// CategoryStrategy takes the nearest place of a category group.
func CategoryStrategy(p SecondaryProvider, code string, radius, size int) Strategy {
	return Strategy{
		Name: StrategyCategory + ":" + code,
		Find: func(ctx context.Context, q Query) (*Match, error) {
			places, err := p.SearchCategory(ctx, code, q.Lat, q.Lon, radius, size)
			if err != nil {
				return nil, err
			}
			return nearest(places, radius), nil
		},
	}
}

// nearest picks the first result, which the provider sorts by distance.
func nearest(places []models.SecondaryPlace, radius int) *Match {
	if len(places) == 0 {
		return nil
	}
	p := places[0]
	if p.ID == "" || (radius > 0 && p.DistanceMeters > radius) {
		return nil
	}
	return &Match{PlaceID: p.ID, PlaceName: p.Name, Address: p.Address}
}
