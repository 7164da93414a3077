package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reco-workers/internal/common/database"
	"reco-workers/internal/models"
)

const (
	queryRecentlyShown = `SELECT restaurant_name, place_id FROM recommendation_logs
		WHERE phone_number = $1 AND created_at >= $2`

	insertLedgerEntry = `INSERT INTO recommendation_logs
		(phone_number, restaurant_name, time_of_day, restaurant_id, place_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
)

// LedgerStore is the append-only record of what was shown to whom.
type LedgerStore struct {
	pg  *database.PostgresClient
	now func() time.Time
}

func NewLedgerStore(pg *database.PostgresClient) *LedgerStore {
	return &LedgerStore{pg: pg, now: time.Now}
}

// GetRecentlyShown returns places shown to userID within window.
func (s *LedgerStore) GetRecentlyShown(ctx context.Context, userID string, window time.Duration) (models.RecentlyShown, error) {
	recent := models.NewRecentlyShown()

	rows, err := s.pg.DB.QueryContext(ctx, queryRecentlyShown, userID, s.now().Add(-window))
	if err != nil {
		return recent, fmt.Errorf("recently shown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, placeID sql.NullString
		if err := rows.Scan(&name, &placeID); err != nil {
			return recent, fmt.Errorf("scan recently shown: %w", err)
		}
		recent.Add(placeID.String, name.String)
	}
	if err := rows.Err(); err != nil {
		return recent, fmt.Errorf("recently shown: %w", err)
	}
	return recent, nil
}

// Append writes all entries in one transaction.
func (s *LedgerStore) Append(ctx context.Context, entries []models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.pg.WithTx(ctx, func(tx *sql.Tx) error {
		for _, e := range entries {
			shownAt := e.ShownAt
			if shownAt.IsZero() {
				shownAt = s.now()
			}
			_, err := tx.ExecContext(ctx, insertLedgerEntry,
				e.UserID, e.PlaceName, nullString(string(e.TimeSlot)), e.InternalPlaceID, nullString(e.PlaceID), shownAt)
			if err != nil {
				return fmt.Errorf("append ledger entry %q: %w", e.PlaceName, err)
			}
		}
		return nil
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
