package storage

import (
	"context"
	"fmt"

	"reco-workers/internal/common/database"
	"reco-workers/internal/models"
)

const upsertRestaurant = `INSERT INTO restaurants (name, category, address, lat, lon, rating, num_reviews, place_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (name, address) DO UPDATE SET
		category = EXCLUDED.category,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		rating = EXCLUDED.rating,
		num_reviews = EXCLUDED.num_reviews,
		place_id = COALESCE(EXCLUDED.place_id, restaurants.place_id)
	RETURNING id`

// CatalogStore keeps one row per (name, address).
type CatalogStore struct {
	pg *database.PostgresClient
}

func NewCatalogStore(pg *database.PostgresClient) *CatalogStore {
	return &CatalogStore{pg: pg}
}

// Upsert inserts or refreshes the place and returns its internal id.
func (s *CatalogStore) Upsert(ctx context.Context, e models.CatalogEntry) (int64, error) {
	var id int64
	err := s.pg.DB.QueryRowContext(ctx, upsertRestaurant,
		e.Name, e.Category, e.Address, e.Lat, e.Lon, e.Rating, e.ReviewCount, nullString(e.PlaceID),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert restaurant %q: %w", e.Name, err)
	}
	return id, nil
}
