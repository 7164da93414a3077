// internal/models/feedback.go
package models

type FeedbackSource string

const (
	FeedbackSourceQuick FeedbackSource = "quick"
	FeedbackSourceForm  FeedbackSource = "form"
)

const (
	QuickLikeRating    = 5
	QuickDislikeRating = 1
)

type Feedback struct {
	UserID          string         `json:"userId"`
	RestaurantName  string         `json:"restaurantName"`
	Category        string         `json:"category"`
	Rating          int            `json:"rating"`
	TimeSlot        TimeSlot       `json:"timeSlot"`
	InternalPlaceID *int64         `json:"internalPlaceId,omitempty"`
	Source          FeedbackSource `json:"source"`
	Comment         string         `json:"comment,omitempty"`
}
