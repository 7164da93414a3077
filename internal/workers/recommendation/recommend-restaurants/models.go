package recommendrestaurants

import (
	"context"
	"time"

	"reco-workers/internal/common/googleplaces"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/common/observability"
	"reco-workers/internal/models"
	"reco-workers/internal/recommend/matcher"
	"reco-workers/internal/recommend/normalize"
	"reco-workers/internal/recommend/schedule"
	"reco-workers/internal/recommend/scoring"
	"reco-workers/internal/recommend/selector"
)

type Input struct {
	UserID   string          `json:"userId"`
	TimeSlot models.TimeSlot `json:"timeSlot"`
	Lat      float64         `json:"lat"`
	Lon      float64         `json:"lon"`
}

type Output struct {
	Recommendations     []models.Recommendation `json:"recommendations"`
	RecommendationCount int                     `json:"recommendationCount"`
	RequestID           string                  `json:"requestId"`
}

type PrimarySearcher interface {
	SearchNearby(ctx context.Context, req googleplaces.NearbyRequest) ([]models.ProviderPlace, error)
}

type CandidateMatcher interface {
	Match(ctx context.Context, c *models.PlaceCandidate) (*matcher.Match, error)
}

type DetailProvider interface {
	PlaceDetail(ctx context.Context, id string) (*models.SecondaryDetail, error)
}

// ProfileSource never fails; read errors degrade to an empty profile.
type ProfileSource interface {
	Profile(ctx context.Context, userID string, slot models.TimeSlot) models.UserPreferenceProfile
}

type RecencyLedger interface {
	GetRecentlyShown(ctx context.Context, userID string, window time.Duration) (models.RecentlyShown, error)
	Append(ctx context.Context, entries []models.LedgerEntry) error
}

type PlaceCatalog interface {
	Upsert(ctx context.Context, e models.CatalogEntry) (int64, error)
}

type CatalogIndexer interface {
	Index(ctx context.Context, internalID int64, e models.CatalogEntry) error
}

// ServiceDependencies wires the engine. Details, Catalog, Index and
// Observability are optional.
type ServiceDependencies struct {
	Primary       PrimarySearcher
	Matcher       CandidateMatcher
	Details       DetailProvider
	Profiles      ProfileSource
	Ledger        RecencyLedger
	Catalog       PlaceCatalog
	Index         CatalogIndexer
	Normalizer    *normalize.Normalizer
	Evaluator     *schedule.Evaluator
	Scorer        *scoring.Engine
	Selector      *selector.Selector
	Observability *observability.Observability
	Logger        logger.Logger
}
