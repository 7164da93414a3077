package storage

import (
	"context"
	"fmt"

	"reco-workers/internal/common/database"
	"reco-workers/internal/models"
)

const insertFeedback = `INSERT INTO user_feedback
	(phone_number, restaurant_name, category, rating, source, time_of_day, restaurant_id, comment)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

type FeedbackStore struct {
	pg *database.PostgresClient
}

func NewFeedbackStore(pg *database.PostgresClient) *FeedbackStore {
	return &FeedbackStore{pg: pg}
}

func (s *FeedbackStore) Insert(ctx context.Context, f models.Feedback) error {
	_, err := s.pg.DB.ExecContext(ctx, insertFeedback,
		f.UserID, f.RestaurantName, nullString(f.Category), f.Rating, string(f.Source),
		nullString(string(f.TimeSlot)), f.InternalPlaceID, nullString(f.Comment))
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}
