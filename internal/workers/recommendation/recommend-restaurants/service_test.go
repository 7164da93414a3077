package recommendrestaurants

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reco-workers/internal/common/errors"
	"reco-workers/internal/common/googleplaces"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/models"
	"reco-workers/internal/recommend/matcher"
	"reco-workers/internal/recommend/schedule"
	"reco-workers/internal/recommend/selector"
)

const (
	originLat = 37.5665
	originLon = 126.9780
)

type MockPrimary struct {
	mock.Mock
}

func (m *MockPrimary) SearchNearby(ctx context.Context, req googleplaces.NearbyRequest) ([]models.ProviderPlace, error) {
	args := m.Called(ctx, req)
	places, _ := args.Get(0).([]models.ProviderPlace)
	return places, args.Error(1)
}

// nameMatcher resolves a primary name to a fixed secondary identifier.
type nameMatcher struct {
	ids map[string]string
}

func (m *nameMatcher) Match(_ context.Context, c *models.PlaceCandidate) (*matcher.Match, error) {
	id, ok := m.ids[c.PrimaryName]
	if !ok {
		return nil, nil
	}
	return &matcher.Match{PlaceID: id, PlaceName: c.PrimaryName, Strategy: "keyword"}, nil
}

type fakeProfiles struct {
	profile models.UserPreferenceProfile
}

func (f *fakeProfiles) Profile(context.Context, string, models.TimeSlot) models.UserPreferenceProfile {
	return f.profile
}

// blockingMatcher never answers for one name until the context is done.
type blockingMatcher struct {
	nameMatcher
	block string
}

func (m *blockingMatcher) Match(ctx context.Context, c *models.PlaceCandidate) (*matcher.Match, error) {
	if c.PrimaryName == m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.nameMatcher.Match(ctx, c)
}

type fakeLedger struct {
	mu        sync.Mutex
	recent    models.RecentlyShown
	err       error
	appendErr error
	appended  []models.LedgerEntry
}

func (f *fakeLedger) GetRecentlyShown(context.Context, string, time.Duration) (models.RecentlyShown, error) {
	if f.err != nil {
		return models.RecentlyShown{}, f.err
	}
	return f.recent, nil
}

func (f *fakeLedger) Append(ctx context.Context, entries []models.LedgerEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, entries...)
	return nil
}

type fakeCatalog struct {
	mu     sync.Mutex
	err    error
	nextID int64
	ids    map[string]int64
}

func (f *fakeCatalog) Upsert(ctx context.Context, e models.CatalogEntry) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ids == nil {
		f.ids = map[string]int64{}
	}
	if id, ok := f.ids[e.Name]; ok {
		return id, nil
	}
	f.nextID++
	f.ids[e.Name] = f.nextID
	return f.nextID, nil
}

type fakeDetails struct {
	detail *models.SecondaryDetail
}

func (f *fakeDetails) PlaceDetail(context.Context, string) (*models.SecondaryDetail, error) {
	return f.detail, nil
}

type keepOrder struct{}

func (keepOrder) Shuffle(int, func(i, j int)) {}

func ptr[T any](v T) *T { return &v }

// place builds a primary record roughly distKm north of the origin.
func place(name, label string, rating float64, reviews int, distKm float64) models.ProviderPlace {
	return models.ProviderPlace{
		ID:              "g-" + name,
		Name:            name,
		Lat:             ptr(originLat + distKm/111.195),
		Lon:             ptr(originLon),
		Rating:          ptr(rating),
		UserRatingCount: reviews,
		ShortAddress:    name + " 주소",
		CategoryLabel:   label,
		PhotoURLs:       []string{"https://img.example/" + name + ".jpg"},
	}
}

func scenarioPlaces() []models.ProviderPlace {
	return []models.ProviderPlace{
		place("A", "Korean Restaurant", 4.6, 60, 0.2),
		place("B", "Italian Restaurant", 4.8, 3, 0.1),
		place("C", "Korean Restaurant", 3.0, 200, 2.9),
	}
}

// monday noon in Seoul
var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("KST", 9*3600))

type fixture struct {
	primary *MockPrimary
	ledger  *fakeLedger
	catalog *fakeCatalog
	deps    ServiceDependencies
	config  *Config
}

func newFixture(t *testing.T, places []models.ProviderPlace, ids map[string]string) *fixture {
	t.Helper()
	primary := new(MockPrimary)
	primary.On("SearchNearby", mock.Anything, mock.Anything).Return(places, nil)

	f := &fixture{
		primary: primary,
		ledger:  &fakeLedger{recent: models.NewRecentlyShown()},
		catalog: &fakeCatalog{},
		config:  DefaultConfig(),
	}
	f.deps = ServiceDependencies{
		Primary:   primary,
		Matcher:   &nameMatcher{ids: ids},
		Profiles:  &fakeProfiles{profile: models.UserPreferenceProfile{SignupCategories: []string{"한식"}}},
		Ledger:    f.ledger,
		Catalog:   f.catalog,
		Evaluator: schedule.NewEvaluator(fixedNow.Location()).WithClock(func() time.Time { return fixedNow }),
		Selector:  selector.New(10, keepOrder{}),
		Logger:    logger.NewNoOpLogger(),
	}
	return f
}

func (f *fixture) service() *Service {
	return NewService(f.deps, f.config)
}

func names(recs []models.Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

var scenarioIDs = map[string]string{"A": "k-a", "B": "k-b", "C": "k-c"}

func TestExecute_SignupCategoryRanksHighest(t *testing.T) {
	f := newFixture(t, scenarioPlaces(), scenarioIDs)

	out, err := f.service().Execute(context.Background(), &Input{UserID: "01012345678", TimeSlot: models.TimeSlotLunch, Lat: originLat, Lon: originLon})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, names(out.Recommendations))
	assert.Equal(t, 3, out.RecommendationCount)
	assert.NotEmpty(t, out.RequestID)

	a := out.Recommendations[0]
	assert.Equal(t, "k-a", a.SecondaryProviderID)
	assert.Equal(t, "한식당", a.Category)
	assert.True(t, a.IsPreferred)
	assert.Equal(t, 0.2, a.DistanceKm)
	assert.Equal(t, "https://img.example/A.jpg", a.PrimaryImageURL)
	assert.NotEmpty(t, a.ExplanationText)
	require.NotNil(t, a.InternalPlaceID)
	assert.Equal(t, f.catalog.ids["A"], *a.InternalPlaceID)
	assert.False(t, out.Recommendations[1].IsPreferred)
}

func TestExecute_RecentlyShownIsBackfilledLast(t *testing.T) {
	f := newFixture(t, scenarioPlaces(), scenarioIDs)
	f.ledger.recent.Add("k-a", "A")

	out, err := f.service().Execute(context.Background(), &Input{UserID: "01012345678", Lat: originLat, Lon: originLon})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A"}, names(out.Recommendations))
}

func TestExecute_AppendsLedger(t *testing.T) {
	f := newFixture(t, scenarioPlaces(), scenarioIDs)

	out, err := f.service().Execute(context.Background(), &Input{UserID: "01012345678", TimeSlot: models.TimeSlotDinner, Lat: originLat, Lon: originLon})
	require.NoError(t, err)

	require.Len(t, f.ledger.appended, out.RecommendationCount)
	for i, e := range f.ledger.appended {
		assert.Equal(t, "01012345678", e.UserID)
		assert.Equal(t, out.Recommendations[i].SecondaryProviderID, e.PlaceID)
		assert.Equal(t, models.TimeSlotDinner, e.TimeSlot)
		assert.True(t, e.ShownAt.Equal(fixedNow))
		require.NotNil(t, e.InternalPlaceID)
	}
}

func TestExecute_AnonymousSkipsLedger(t *testing.T) {
	f := newFixture(t, scenarioPlaces(), scenarioIDs)

	out, err := f.service().Execute(context.Background(), &Input{Lat: originLat, Lon: originLon})
	require.NoError(t, err)

	assert.Equal(t, 3, out.RecommendationCount)
	assert.Empty(t, f.ledger.appended)
	for _, r := range out.Recommendations {
		assert.False(t, r.IsPreferred, r.Name)
	}
}

func TestExecute_DeduplicatesSecondaryIDs(t *testing.T) {
	places := []models.ProviderPlace{
		place("본점", "Korean Restaurant", 4.5, 100, 0.3),
		place("본점 2층", "Korean Restaurant", 4.9, 100, 0.3),
		place("B", "Italian Restaurant", 4.0, 10, 0.5),
	}
	f := newFixture(t, places, map[string]string{"본점": "k-1", "본점 2층": "k-1", "B": "k-b"})

	out, err := f.service().Execute(context.Background(), &Input{Lat: originLat, Lon: originLon})
	require.NoError(t, err)

	assert.Equal(t, 2, out.RecommendationCount)
	assert.ElementsMatch(t, []string{"본점", "B"}, names(out.Recommendations))
}

func TestExecute_DropsRepeatedRawRecords(t *testing.T) {
	a := place("A", "Korean Restaurant", 4.6, 60, 0.2)
	f := newFixture(t, []models.ProviderPlace{a, a}, map[string]string{"A": "k-a"})

	out, err := f.service().Execute(context.Background(), &Input{Lat: originLat, Lon: originLon})
	require.NoError(t, err)
	assert.Equal(t, 1, out.RecommendationCount)
}

func TestExecute_CapsCandidates(t *testing.T) {
	var places []models.ProviderPlace
	ids := map[string]string{}
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("P%02d", i)
		places = append(places, place(name, "Restaurant", 4.0, 10, 0.1*float64(i+1)))
		ids[name] = "k-" + name
	}
	f := newFixture(t, places, ids)
	f.config.Recommendation.PickCount = 10

	out, err := f.service().Execute(context.Background(), &Input{Lat: originLat, Lon: originLon})
	require.NoError(t, err)

	assert.Equal(t, 10, out.RecommendationCount)
	assert.Len(t, f.catalog.ids, 12)
	for _, r := range out.Recommendations {
		assert.Less(t, r.Name, "P12")
	}
}

func TestExecute_ExcludesPlacesClosingWithinAnHour(t *testing.T) {
	closing := place("closing", "Korean Restaurant", 5.0, 500, 0.1)
	closing.Periods = []models.Period{{Open: models.At(0, 9, 0), Close: models.ClosesAt(0, 12, 30)}}
	open := place("open", "Korean Restaurant", 3.5, 10, 0.1)
	open.Periods = []models.Period{{Open: models.At(0, 9, 0), Close: models.ClosesAt(0, 22, 0)}}
	unknown := place("unknown", "Korean Restaurant", 3.5, 10, 0.1)

	f := newFixture(t, []models.ProviderPlace{closing, open, unknown},
		map[string]string{"closing": "k-1", "open": "k-2", "unknown": "k-3"})

	out, err := f.service().Execute(context.Background(), &Input{Lat: originLat, Lon: originLon})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"open", "unknown"}, names(out.Recommendations))
}

func TestExecute_UnmatchedAndUnlocatedAreDropped(t *testing.T) {
	noCoords := place("nowhere", "Korean Restaurant", 4.0, 10, 0.1)
	noCoords.Lat = nil
	places := []models.ProviderPlace{noCoords, place("unmatched", "Cafe", 4.0, 10, 0.1), place("A", "Cafe", 4.0, 10, 0.1)}
	f := newFixture(t, places, map[string]string{"nowhere": "k-0", "A": "k-a"})

	out, err := f.service().Execute(context.Background(), &Input{Lat: originLat, Lon: originLon})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(out.Recommendations))
}

func TestExecute_PrimaryFailureDegradesToEmpty(t *testing.T) {
	f := newFixture(t, nil, scenarioIDs)
	f.primary.ExpectedCalls = nil
	f.primary.On("SearchNearby", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("503"))

	out, err := f.service().Execute(context.Background(), &Input{UserID: "u", Lat: originLat, Lon: originLon})
	require.NoError(t, err)
	assert.Equal(t, 0, out.RecommendationCount)
	assert.NotNil(t, out.Recommendations)
	assert.Empty(t, f.ledger.appended)
}

func TestExecute_LedgerReadFailureKeepsGoing(t *testing.T) {
	f := newFixture(t, scenarioPlaces(), scenarioIDs)
	f.ledger.err = fmt.Errorf("connection refused")

	out, err := f.service().Execute(context.Background(), &Input{UserID: "u", Lat: originLat, Lon: originLon})
	require.NoError(t, err)
	assert.Equal(t, 3, out.RecommendationCount)
}

func TestExecute_LedgerWriteFailureStillReturns(t *testing.T) {
	f := newFixture(t, scenarioPlaces(), scenarioIDs)
	f.ledger.appendErr = fmt.Errorf("connection reset")

	out, err := f.service().Execute(context.Background(), &Input{UserID: "u", Lat: originLat, Lon: originLon})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(out.Recommendations))
	for _, r := range out.Recommendations {
		assert.NotNil(t, r.InternalPlaceID, r.Name)
	}
	assert.Empty(t, f.ledger.appended)
}

func TestExecute_CatalogUpsertFailureStillReturns(t *testing.T) {
	f := newFixture(t, scenarioPlaces(), scenarioIDs)
	f.catalog.err = fmt.Errorf("relation \"places\" does not exist")

	out, err := f.service().Execute(context.Background(), &Input{UserID: "u", Lat: originLat, Lon: originLon})
	require.NoError(t, err)
	require.Equal(t, 3, out.RecommendationCount)
	for _, r := range out.Recommendations {
		assert.Nil(t, r.InternalPlaceID, r.Name)
	}

	require.Len(t, f.ledger.appended, 3)
	for _, e := range f.ledger.appended {
		assert.Nil(t, e.InternalPlaceID)
	}
}

func TestExecute_WritesSurviveRequestDeadline(t *testing.T) {
	f := newFixture(t, scenarioPlaces(), scenarioIDs)
	f.deps.Matcher = &blockingMatcher{nameMatcher: nameMatcher{ids: scenarioIDs}, block: "C"}
	f.config.Recommendation.RequestTimeout = 200

	out, err := f.service().Execute(context.Background(), &Input{UserID: "u", Lat: originLat, Lon: originLon})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, names(out.Recommendations))
	for _, r := range out.Recommendations {
		assert.NotNil(t, r.InternalPlaceID, r.Name)
	}
	require.Len(t, f.ledger.appended, 2)
	assert.Equal(t, "k-a", f.ledger.appended[0].PlaceID)
	assert.Equal(t, "k-b", f.ledger.appended[1].PlaceID)
}

func TestProviderFailure(t *testing.T) {
	timeout := providerFailure("google", fmt.Errorf("search: %w", context.DeadlineExceeded))
	assert.Equal(t, errors.ErrCodeProviderTimeout, timeout.Code)
	assert.True(t, timeout.Retryable)

	down := providerFailure("google", fmt.Errorf("status 503"))
	assert.Equal(t, errors.ErrCodeProviderUnavailable, down.Code)
	assert.Contains(t, down.Details, "503")
}

func TestExecute_DetailOverlay(t *testing.T) {
	f := newFixture(t, []models.ProviderPlace{place("A", "Korean Restaurant", 4.6, 60, 0.2)}, scenarioIDs)
	f.config.DetailLookup = true
	f.deps.Details = &fakeDetails{detail: &models.SecondaryDetail{Address: "서울 중구 세종대로 110", OpenInfo: "매일 10:00 ~ 22:00", OpenNow: ptr(true)}}

	out, err := f.service().Execute(context.Background(), &Input{Lat: originLat, Lon: originLon})
	require.NoError(t, err)
	require.Len(t, out.Recommendations, 1)
	assert.Equal(t, "서울 중구 세종대로 110", out.Recommendations[0].Address)
	assert.Equal(t, "매일 10:00 ~ 22:00", out.Recommendations[0].HoursText)
}

func TestExecute_PassesSearchParameters(t *testing.T) {
	f := newFixture(t, nil, scenarioIDs)
	f.primary.ExpectedCalls = nil
	f.primary.On("SearchNearby", mock.Anything, googleplaces.NearbyRequest{
		Lat: originLat, Lon: originLon, RadiusMeters: 1500, MaxResults: 20,
	}).Return([]models.ProviderPlace{}, nil).Once()

	_, err := f.service().Execute(context.Background(), &Input{Lat: originLat, Lon: originLon})
	require.NoError(t, err)
	f.primary.AssertExpectations(t)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(t, scenarioPlaces(), scenarioIDs)
	svc := f.service()

	tests := []struct {
		name  string
		input *Input
		code  errors.ErrorCode
	}{
		{"nil input", nil, errors.ErrCodeInputValidationFailed},
		{"latitude out of range", &Input{Lat: 91, Lon: 0}, errors.ErrCodeInvalidCoordinates},
		{"longitude out of range", &Input{Lat: 0, Lon: -181}, errors.ErrCodeInvalidCoordinates},
		{"unknown slot", &Input{Lat: 0, Lon: 0, TimeSlot: "brunch"}, errors.ErrCodeInvalidTimeSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.code, errors.AsStandardError(err).Code)
		})
	}
	f.primary.AssertNotCalled(t, "SearchNearby", mock.Anything, mock.Anything)
}
