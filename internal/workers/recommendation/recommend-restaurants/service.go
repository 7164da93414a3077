package recommendrestaurants

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"reco-workers/internal/common/errors"
	"reco-workers/internal/common/googleplaces"
	xhttp "reco-workers/internal/common/http"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/common/metrics"
	"reco-workers/internal/models"
	"reco-workers/internal/recommend/normalize"
	"reco-workers/internal/recommend/schedule"
	"reco-workers/internal/recommend/scoring"
	"reco-workers/internal/recommend/selector"
)

const (
	dropNoCoordinates = "no_coordinates"
	dropDuplicateRaw  = "duplicate_raw"
	dropClosed        = "closed_in_one_hour"
	dropUnmatched     = "unmatched"
	dropDuplicateID   = "duplicate_id"
	dropOverCap       = "over_cap"
)

// persistTimeout bounds the catalog and ledger writes that follow selection.
const persistTimeout = 5 * time.Second

type Service struct {
	config *Config
	deps   ServiceDependencies
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if deps.Normalizer == nil {
		deps.Normalizer = normalize.New(config.Recommendation.MaxReviews)
	}
	if deps.Evaluator == nil {
		deps.Evaluator = schedule.NewEvaluator(schedule.LoadLocation(config.Recommendation.Timezone))
	}
	if deps.Scorer == nil {
		deps.Scorer = scoring.NewEngine(scoring.WeightsFromConfig(config.Recommendation.Scoring))
	}
	if deps.Selector == nil {
		deps.Selector = selector.New(config.Recommendation.TopN, nil)
	}
	return &Service{config: config, deps: deps, logger: deps.Logger}
}

// Execute runs one recommendation request. Only invalid input is an error;
// provider and storage failures degrade to fewer or no recommendations.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateRequest(input); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	log := s.logger.WithFields(map[string]interface{}{
		"requestId": requestID,
		"userId":    input.UserID,
		"timeSlot":  string(input.TimeSlot),
	})

	ctx, span := s.deps.Observability.StartSpan(ctx, "recommend",
		attribute.String("requestId", requestID),
		attribute.String("timeSlot", string(input.TimeSlot)),
	)
	defer span.End()

	start := time.Now()
	places, candidates, profile, recent := s.gather(ctx, input, log)
	accepted := s.acceptCandidates(candidates)
	s.deps.Observability.RecordCandidates(ctx, len(accepted))

	// The request deadline may already have fired; the writes get their own.
	writeCtx, cancelWrites := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancelWrites()

	s.persistCatalog(writeCtx, accepted, log)

	s.deps.Scorer.Apply(accepted, profile)
	picks := s.deps.Selector.Select(accepted, recent, s.config.Recommendation.PickCount)

	s.appendLedger(writeCtx, input, picks, log)

	recs := make([]models.Recommendation, 0, len(picks))
	for i := range picks {
		recs = append(recs, toRecommendation(&picks[i]))
	}
	metrics.RecommendationsReturned.Observe(float64(len(recs)))

	log.Info("recommendation completed", map[string]interface{}{
		"primaryResults": len(places),
		"accepted":       len(accepted),
		"recentlyShown":  recent.Len(),
		"returned":       len(recs),
		"durationMs":     time.Since(start).Milliseconds(),
	})

	return &Output{
		Recommendations:     recs,
		RecommendationCount: len(recs),
		RequestID:           requestID,
	}, nil
}

// gather loads user state, runs the primary search and the per-candidate
// pipeline under the request deadline.
func (s *Service) gather(ctx context.Context, input *Input, log logger.Logger) ([]models.ProviderPlace, []*models.PlaceCandidate, models.UserPreferenceProfile, models.RecentlyShown) {
	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout())
	defer cancel()

	profile, recent := s.loadUserState(ctx, input, log)

	places := s.searchPrimary(ctx, input, log)
	places = dedupeRaw(places)

	return places, s.buildCandidates(ctx, places, input), profile, recent
}

func validateRequest(input *Input) error {
	if input == nil {
		return errors.NewInputValidationError("input cannot be nil")
	}
	if math.IsNaN(input.Lat) || math.IsInf(input.Lat, 0) || input.Lat < -90 || input.Lat > 90 ||
		math.IsNaN(input.Lon) || math.IsInf(input.Lon, 0) || input.Lon < -180 || input.Lon > 180 {
		return errors.NewInvalidCoordinatesError(input.Lat, input.Lon)
	}
	if !input.TimeSlot.Valid() {
		return errors.NewInvalidTimeSlotError(string(input.TimeSlot))
	}
	return nil
}

func (s *Service) loadUserState(ctx context.Context, input *Input, log logger.Logger) (models.UserPreferenceProfile, models.RecentlyShown) {
	profile := models.EmptyProfile()
	recent := models.NewRecentlyShown()
	if input.UserID == "" {
		return profile, recent
	}

	if s.deps.Profiles != nil {
		profile = s.deps.Profiles.Profile(ctx, input.UserID, input.TimeSlot)
	}
	if s.deps.Ledger != nil {
		shown, err := s.deps.Ledger.GetRecentlyShown(ctx, input.UserID, s.config.RecencyWindow())
		if err != nil {
			log.Warn("recency lookup failed, continuing without exclusions", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			recent = shown
		}
	}
	return profile, recent
}

func (s *Service) searchPrimary(ctx context.Context, input *Input, log logger.Logger) []models.ProviderPlace {
	ctx, span := s.deps.Observability.StartSpan(ctx, "recommend.primary_search")
	defer span.End()

	places, err := s.deps.Primary.SearchNearby(ctx, googleplaces.NearbyRequest{
		Lat:          input.Lat,
		Lon:          input.Lon,
		RadiusMeters: s.config.Recommendation.SearchRadiusMeters,
		MaxResults:   s.config.Recommendation.MaxResults,
	})
	if err != nil {
		span.RecordError(err)
		stdErr := providerFailure("google", err)
		log.Warn("primary search failed, returning no candidates", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
		return nil
	}
	return places
}

// providerFailure classifies a provider error for logs. Provider failures
// never fail the job; the code only tells timeouts from outages.
func providerFailure(provider string, err error) *errors.StandardError {
	if xhttp.IsTimeout(err) {
		return errors.NewProviderTimeoutError(provider)
	}
	return errors.NewProviderUnavailableError(provider, err)
}

// dedupeRaw drops repeated (name, address) records, keeping the first.
func dedupeRaw(places []models.ProviderPlace) []models.ProviderPlace {
	seen := make(map[string]struct{}, len(places))
	out := make([]models.ProviderPlace, 0, len(places))
	for _, p := range places {
		key := strings.TrimSpace(p.Name) + "\x00" + strings.TrimSpace(p.ShortAddress)
		if _, ok := seen[key]; ok {
			metrics.CandidatesDropped.WithLabelValues(dropDuplicateRaw).Inc()
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// buildCandidates runs the per-candidate pipeline with bounded concurrency.
// Result order follows provider order; skipped records leave a nil slot.
func (s *Service) buildCandidates(ctx context.Context, places []models.ProviderPlace, input *Input) []*models.PlaceCandidate {
	results := make([]*models.PlaceCandidate, len(places))

	var g errgroup.Group
	g.SetLimit(s.config.Recommendation.Concurrency)
	for i := range places {
		g.Go(func() error {
			results[i] = s.processCandidate(ctx, places[i], input)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Service) processCandidate(ctx context.Context, p models.ProviderPlace, input *Input) *models.PlaceCandidate {
	if ctx.Err() != nil {
		return nil
	}
	ctx, span := s.deps.Observability.StartSpan(ctx, "recommend.candidate", attribute.String("place", p.Name))
	defer span.End()

	c, ok := s.deps.Normalizer.Normalize(p, input.Lat, input.Lon)
	if !ok {
		metrics.CandidatesDropped.WithLabelValues(dropNoCoordinates).Inc()
		return nil
	}

	now, inOneHour := s.deps.Evaluator.Evaluate(c.Schedule)
	if now != schedule.Unknown {
		c.OpenNow = now.Ptr()
	}
	c.OpenInOneHour = inOneHour.Ptr()
	if c.ExplicitlyClosedInOneHour() {
		metrics.CandidatesDropped.WithLabelValues(dropClosed).Inc()
		return nil
	}

	m, err := s.deps.Matcher.Match(ctx, &c)
	if err != nil || m == nil || m.PlaceID == "" {
		metrics.CandidatesDropped.WithLabelValues(dropUnmatched).Inc()
		return nil
	}
	c.SecondaryProviderID = m.PlaceID
	if name := strings.TrimSpace(m.PlaceName); name != "" {
		c.CanonicalName = name
	}
	if m.Address != "" {
		c.Address = m.Address
	}

	if s.config.DetailLookup && s.deps.Details != nil {
		s.applyDetail(ctx, &c)
	}
	return &c
}

// applyDetail overlays the secondary detail page: its open flag takes
// precedence over the schedule, its address and open-info text over the
// primary provider's.
func (s *Service) applyDetail(ctx context.Context, c *models.PlaceCandidate) {
	d, err := s.deps.Details.PlaceDetail(ctx, c.SecondaryProviderID)
	if err != nil || d == nil {
		if err != nil {
			s.logger.Debug("detail lookup failed", map[string]interface{}{
				"placeId": c.SecondaryProviderID,
				"error":   err.Error(),
			})
		}
		return
	}
	if d.Address != "" {
		c.Address = d.Address
	}
	if d.OpenInfo != "" {
		c.HoursText = d.OpenInfo
	}
	if d.OpenNow != nil {
		c.OpenNow = d.OpenNow
	}
}

// acceptCandidates keeps matched candidates in provider order, first-seen
// wins per secondary identifier, capped at MaxCandidates.
func (s *Service) acceptCandidates(results []*models.PlaceCandidate) []models.PlaceCandidate {
	limit := s.config.Recommendation.MaxCandidates
	seen := make(map[string]struct{}, len(results))
	accepted := make([]models.PlaceCandidate, 0, limit)

	for _, c := range results {
		if c == nil {
			continue
		}
		if _, dup := seen[c.SecondaryProviderID]; dup {
			metrics.CandidatesDropped.WithLabelValues(dropDuplicateID).Inc()
			continue
		}
		if len(accepted) >= limit {
			metrics.CandidatesDropped.WithLabelValues(dropOverCap).Inc()
			continue
		}
		seen[c.SecondaryProviderID] = struct{}{}
		accepted = append(accepted, *c)
	}
	return accepted
}

func (s *Service) persistCatalog(ctx context.Context, cands []models.PlaceCandidate, log logger.Logger) {
	if s.deps.Catalog == nil {
		return
	}
	for i := range cands {
		entry := models.CatalogEntryFrom(&cands[i])
		id, err := s.deps.Catalog.Upsert(ctx, entry)
		if err != nil {
			metrics.StoreErrors.WithLabelValues("postgres", "catalog_upsert").Inc()
			log.Warn("catalog upsert failed", map[string]interface{}{
				"place": entry.Name,
				"error": err.Error(),
			})
			continue
		}
		cands[i].InternalPlaceID = &id

		if s.deps.Index != nil {
			if err := s.deps.Index.Index(ctx, id, entry); err != nil {
				metrics.StoreErrors.WithLabelValues("elasticsearch", "catalog_index").Inc()
				log.Warn("catalog mirror failed", map[string]interface{}{
					"internalPlaceId": id,
					"error":           err.Error(),
				})
			}
		}
	}
}

func (s *Service) appendLedger(ctx context.Context, input *Input, picks []models.PlaceCandidate, log logger.Logger) {
	if input.UserID == "" || s.deps.Ledger == nil || len(picks) == 0 {
		return
	}
	shownAt := s.deps.Evaluator.Now()
	entries := make([]models.LedgerEntry, 0, len(picks))
	for _, c := range picks {
		entries = append(entries, models.LedgerEntry{
			UserID:          input.UserID,
			PlaceID:         c.SecondaryProviderID,
			PlaceName:       c.Name(),
			InternalPlaceID: c.InternalPlaceID,
			TimeSlot:        input.TimeSlot,
			ShownAt:         shownAt,
		})
	}
	if err := s.deps.Ledger.Append(ctx, entries); err != nil {
		metrics.StoreErrors.WithLabelValues("postgres", "ledger_append").Inc()
		log.Warn("ledger append failed", map[string]interface{}{"error": err.Error()})
	}
}

func toRecommendation(c *models.PlaceCandidate) models.Recommendation {
	name := c.Name()
	summary := normalize.Summary(name, c.Category, c.Rating, c.DistanceKm, c.ReviewSnippets)

	photos := append([]string{}, c.Photos...)
	rec := models.Recommendation{
		Name:                name,
		Category:            c.Category,
		Rating:              c.Rating,
		OneLineSummary:      summary,
		RecommendedMenuText: normalize.MenuText(name, c.Category, c.ReviewSnippets),
		SecondaryProviderID: c.SecondaryProviderID,
		ImageURLList:        photos,
		DistanceKm:          c.DistanceKm,
		TagList:             normalize.Tags(c.Category, c.Rating, c.DistanceKm, c.Preferred, summary),
		Address:             c.Address,
		HoursText:           c.HoursText,
		InternalPlaceID:     c.InternalPlaceID,
		IsPreferred:         c.Preferred,
		ExplanationText:     scoring.Explanation(c.Reasons),
	}
	if len(photos) > 0 {
		rec.PrimaryImageURL = photos[0]
	}
	if rec.TagList == nil {
		rec.TagList = []string{}
	}
	return rec
}
