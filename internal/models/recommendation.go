// internal/models/recommendation.go
package models

// Recommendation is one item of the job result. It never carries the score.
type Recommendation struct {
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	Rating              *float64 `json:"rating"`
	OneLineSummary      string   `json:"oneLineSummary"`
	RecommendedMenuText string   `json:"recommendedMenuText"`
	SecondaryProviderID string   `json:"secondaryProviderId"`
	PrimaryImageURL     string   `json:"primaryImageUrl,omitempty"`
	ImageURLList        []string `json:"imageUrlList"`
	DistanceKm          float64  `json:"distanceKm"`
	TagList             []string `json:"tagList"`
	Address             string   `json:"address"`
	HoursText           string   `json:"hoursText"`
	InternalPlaceID     *int64   `json:"internalPlaceId"`
	IsPreferred         bool     `json:"isPreferred"`
	ExplanationText     string   `json:"explanationText"`
}
