package recordfeedback

import (
	"context"
	"fmt"
	"strings"

	"reco-workers/internal/common/errors"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/common/metrics"
	"reco-workers/internal/models"
)

type Service struct {
	config *Config
	deps   ServiceDependencies
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	return &Service{config: config, deps: deps, logger: deps.Logger}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	fb, err := toFeedback(input)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Store.Insert(ctx, fb); err != nil {
		metrics.StoreErrors.WithLabelValues("postgres", "feedback_insert").Inc()
		return nil, errors.NewFeedbackWriteFailedError(err)
	}
	metrics.FeedbackRecorded.WithLabelValues(string(fb.Source)).Inc()

	if s.deps.Profiles != nil {
		if err := s.deps.Profiles.Invalidate(ctx, fb.UserID); err != nil {
			s.logger.Warn("profile cache invalidation failed", map[string]interface{}{
				"userId": fb.UserID,
				"error":  err.Error(),
			})
		}
	}

	s.logger.Info("feedback recorded", map[string]interface{}{
		"userId":     fb.UserID,
		"restaurant": fb.RestaurantName,
		"source":     string(fb.Source),
		"rating":     fb.Rating,
	})
	return &Output{Recorded: true, Rating: fb.Rating}, nil
}

// toFeedback resolves the stored rating: a quick like is 5, a dislike 1,
// and a form rating must lie in 1..5.
func toFeedback(input *Input) (models.Feedback, error) {
	if input == nil {
		return models.Feedback{}, errors.NewInputValidationError("input cannot be nil")
	}
	userID := strings.TrimSpace(input.UserID)
	name := strings.TrimSpace(input.RestaurantName)
	if userID == "" || name == "" {
		return models.Feedback{}, errors.NewInputValidationError("userId and restaurantName are required")
	}
	if !input.TimeSlot.Valid() {
		return models.Feedback{}, errors.NewInvalidTimeSlotError(string(input.TimeSlot))
	}

	fb := models.Feedback{
		UserID:          userID,
		RestaurantName:  name,
		Category:        strings.TrimSpace(input.Category),
		TimeSlot:        input.TimeSlot,
		InternalPlaceID: input.InternalPlaceID,
		Source:          input.Source,
		Comment:         strings.TrimSpace(input.Comment),
	}

	switch input.Source {
	case models.FeedbackSourceQuick:
		if input.Liked == nil {
			return models.Feedback{}, errors.NewInputValidationError("liked is required for quick feedback")
		}
		fb.Rating = models.QuickDislikeRating
		if *input.Liked {
			fb.Rating = models.QuickLikeRating
		}
	case models.FeedbackSourceForm:
		if input.Rating < 1 || input.Rating > 5 {
			return models.Feedback{}, errors.NewInvalidRatingError(input.Rating)
		}
		fb.Rating = input.Rating
	default:
		return models.Feedback{}, errors.NewInputValidationError(fmt.Sprintf("unknown feedback source %q", input.Source))
	}
	return fb, nil
}
