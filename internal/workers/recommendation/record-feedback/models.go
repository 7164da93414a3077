package recordfeedback

import (
	"context"

	"reco-workers/internal/common/logger"
	"reco-workers/internal/models"
)

// Input carries either a quick reaction (Liked) or a form rating.
type Input struct {
	UserID          string                `json:"userId"`
	RestaurantName  string                `json:"restaurantName"`
	Category        string                `json:"category"`
	TimeSlot        models.TimeSlot       `json:"timeSlot"`
	InternalPlaceID *int64                `json:"internalPlaceId,omitempty"`
	Source          models.FeedbackSource `json:"source"`
	Liked           *bool                 `json:"liked,omitempty"`
	Rating          int                   `json:"rating,omitempty"`
	Comment         string                `json:"comment,omitempty"`
}

type Output struct {
	Recorded bool `json:"feedbackRecorded"`
	Rating   int  `json:"feedbackRating"`
}

type FeedbackWriter interface {
	Insert(ctx context.Context, f models.Feedback) error
}

type ProfileInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// ServiceDependencies wires the recorder. Profiles is optional.
type ServiceDependencies struct {
	Store    FeedbackWriter
	Profiles ProfileInvalidator
	Logger   logger.Logger
}
