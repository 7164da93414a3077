package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"reco-workers/internal/common/database"
	"reco-workers/internal/common/metrics"
	"reco-workers/internal/models"
)

const (
	querySignupCategories = `SELECT preferences_categories FROM users WHERE phone_number = $1`

	queryCategoryAffinity = `SELECT category, AVG(rating) FROM user_feedback
		WHERE phone_number = $1 GROUP BY category`

	queryCategoryAffinityBySlot = `SELECT category, AVG(rating) FROM user_feedback
		WHERE phone_number = $1 AND time_of_day = $2 GROUP BY category`

	queryRestaurantAffinity = `SELECT restaurant_name, AVG(rating) FROM user_feedback
		WHERE phone_number = $1 GROUP BY restaurant_name`
)

// PreferenceStore reads the signals the scorer uses from the users and
// user_feedback tables.
type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(pg *database.PostgresClient) *PreferenceStore {
	return &PreferenceStore{db: pg.DB}
}

// GetSignupCategories returns the categories picked at signup. An unknown
// user has none.
func (s *PreferenceStore) GetSignupCategories(ctx context.Context, userID string) ([]string, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, querySignupCategories, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("signup categories: %w", err)
	}

	var out []string
	for _, part := range strings.Split(raw.String, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

// GetCategoryAffinity averages feedback ratings per category within slot.
// When the slot has no feedback, or no slot is given, all feedback is used.
func (s *PreferenceStore) GetCategoryAffinity(ctx context.Context, userID string, slot models.TimeSlot) (map[string]float64, error) {
	if slot != models.TimeSlotAny {
		scoped, err := s.averages(ctx, queryCategoryAffinityBySlot, userID, string(slot))
		if err != nil {
			return nil, fmt.Errorf("category affinity for %s: %w", slot, err)
		}
		if len(scoped) > 0 {
			return scoped, nil
		}
	}

	all, err := s.averages(ctx, queryCategoryAffinity, userID)
	if err != nil {
		return nil, fmt.Errorf("category affinity: %w", err)
	}
	return all, nil
}

// GetRestaurantAffinity averages feedback ratings per restaurant name.
func (s *PreferenceStore) GetRestaurantAffinity(ctx context.Context, userID string) (map[string]float64, error) {
	out, err := s.averages(ctx, queryRestaurantAffinity, userID)
	if err != nil {
		return nil, fmt.Errorf("restaurant affinity: %w", err)
	}
	return out, nil
}

func (s *PreferenceStore) averages(ctx context.Context, query string, args ...interface{}) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var key sql.NullString
		var avg sql.NullFloat64
		if err := rows.Scan(&key, &avg); err != nil {
			return nil, err
		}
		if key.String == "" || !avg.Valid {
			continue
		}
		out[key.String] = avg.Float64
	}
	return out, rows.Err()
}

// Load assembles a profile. Each part degrades to empty on its own; the
// returned error joins whatever failed so callers can log it and skip
// caching a partial profile.
func (s *PreferenceStore) Load(ctx context.Context, userID string, slot models.TimeSlot) (models.UserPreferenceProfile, error) {
	profile := models.EmptyProfile()
	var errs []error

	signup, err := s.GetSignupCategories(ctx, userID)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("postgres", "signup_categories").Inc()
		errs = append(errs, err)
	}
	profile.SignupCategories = signup

	if byCategory, err := s.GetCategoryAffinity(ctx, userID, slot); err != nil {
		metrics.StoreErrors.WithLabelValues("postgres", "category_affinity").Inc()
		errs = append(errs, err)
	} else {
		profile.CategoryAffinity = byCategory
	}

	if byName, err := s.GetRestaurantAffinity(ctx, userID); err != nil {
		metrics.StoreErrors.WithLabelValues("postgres", "restaurant_affinity").Inc()
		errs = append(errs, err)
	} else {
		profile.RestaurantAffinity = byName
	}

	return profile, errors.Join(errs...)
}
