// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"reco-workers/internal/common/config"
	"reco-workers/internal/common/database"
	"reco-workers/internal/common/googleplaces"
	"reco-workers/internal/common/kakaolocal"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/models"
	"reco-workers/internal/recommend/matcher"
	"reco-workers/internal/storage"
	recordfeedback "reco-workers/internal/workers/recommendation/record-feedback"
	recommendrestaurants "reco-workers/internal/workers/recommendation/recommend-restaurants"
)

// These tests run against real PostgreSQL and Redis instances (see
// docker-compose) with both places providers served by local fakes.
// Set RECO_E2E=1 to enable them.

const (
	testUser  = "e2e-01000000000"
	originLat = 37.5665
	originLon = 126.9780
)

func requireE2E(t *testing.T) {
	t.Helper()
	if os.Getenv("RECO_E2E") != "1" {
		t.Skip("set RECO_E2E=1 to run end-to-end tests")
	}
}

type env struct {
	cfg *config.Config
	pg  *database.PostgresClient
	rdb *database.RedisClient
	log logger.Logger
}

func setup(t *testing.T) *env {
	t.Helper()
	requireE2E(t)
	ctx := context.Background()

	for key, value := range map[string]string{
		"ZEEBE_ADDRESS": "localhost:26500",
		"DB_HOST":       "localhost",
		"DB_NAME":       "reco",
		"DB_USER":       "reco",
		"DB_PASSWORD":   "reco",
		"REDIS_ADDRESS": "localhost:6379",
	} {
		if os.Getenv(key) == "" {
			t.Setenv(key, value)
		}
	}
	t.Setenv("GOOGLE_PLACES_API_KEY", "e2e-google")
	t.Setenv("KAKAO_REST_API_KEY", "e2e-kakao")
	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.NewZapAdapter(zaptest.NewLogger(t))

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	t.Cleanup(func() { _ = pg.Close() })

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, storage.Migrate(ctx, pg, log))
	// migrations are idempotent
	require.NoError(t, storage.Migrate(ctx, pg, log))

	for _, q := range []string{
		`DELETE FROM recommendation_logs WHERE phone_number = $1`,
		`DELETE FROM user_feedback WHERE phone_number = $1`,
		`DELETE FROM users WHERE phone_number = $1`,
	} {
		_, err := pg.DB.ExecContext(ctx, q, testUser)
		require.NoError(t, err)
	}
	_, err = pg.DB.ExecContext(ctx,
		`INSERT INTO users (phone_number, preferences_categories) VALUES ($1, $2)`, testUser, "한식, 카페")
	require.NoError(t, err)

	return &env{cfg: cfg, pg: pg, rdb: rdb, log: log}
}

func googleFake(t *testing.T) *httptest.Server {
	t.Helper()
	places := []map[string]interface{}{
		googlePlace("g-a", "을지면옥", "Korean Restaurant", 4.6, 60, 0.002),
		googlePlace("g-b", "트라토리아", "Italian Restaurant", 4.8, 3, 0.001),
		googlePlace("g-c", "광장시장 빈대떡", "Korean Restaurant", 3.0, 200, 0.026),
		googlePlace("g-d", "Mystery", "Restaurant", 4.0, 10, 0.003),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places:searchNearby", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"places": places})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func googlePlace(id, name, label string, rating float64, reviews int, dLat float64) map[string]interface{} {
	return map[string]interface{}{
		"id":                     id,
		"displayName":            map[string]string{"text": name},
		"location":               map[string]float64{"latitude": originLat + dLat, "longitude": originLon},
		"rating":                 rating,
		"userRatingCount":        reviews,
		"shortFormattedAddress":  "서울 중구 " + name,
		"primaryTypeDisplayName": map[string]string{"text": label},
	}
}

// kakaoFake matches every place except "Mystery" by keyword.
func kakaoFake(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		docs := []map[string]string{}
		if q := r.URL.Query().Get("query"); r.URL.Path == "/v2/local/search/keyword.json" && !strings.Contains(q, "Mystery") {
			docs = append(docs, map[string]string{
				"id":                "k-" + q,
				"place_name":        q,
				"road_address_name": "서울 중구 " + q,
				"distance":          "12",
				"x":                 fmt.Sprint(originLon),
				"y":                 fmt.Sprint(originLat),
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"documents": docs})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRecommendHandler(t *testing.T, e *env) *recommendrestaurants.Handler {
	t.Helper()
	cfg := e.cfg
	cfg.Providers.Google.BaseURL = googleFake(t).URL
	cfg.Providers.Kakao.BaseURL = kakaoFake(t).URL
	cfg.Providers.Kakao.DetailLookup = false

	kakao := kakaolocal.NewClient(cfg.Providers.Kakao, cfg.Providers.Breaker, e.log)
	h, err := recommendrestaurants.NewHandler(recommendrestaurants.HandlerOptions{
		AppConfig: cfg,
		Logger:    e.log,
		Dependencies: recommendrestaurants.ServiceDependencies{
			Primary: googleplaces.NewClient(cfg.Providers.Google, cfg.Providers.Breaker, cfg.Recommendation.MaxReviews, e.log),
			Matcher: matcher.New(kakao, matcher.Config{
				RadiusMeters:        cfg.Recommendation.MatchRadiusMeters,
				CategoryRadiusFloor: cfg.Recommendation.CategoryRadiusFloor,
				CategoryResultSize:  cfg.Recommendation.CategoryResultSize,
				CategoryCodes:       []string{kakaolocal.CategoryRestaurant, kakaolocal.CategoryCafe},
			}, matcher.NewRedisCache(e.rdb, time.Minute), e.log),
			Profiles: storage.NewProfileCache(storage.NewPreferenceStore(e.pg), e.rdb, time.Minute, e.log),
			Ledger:   storage.NewLedgerStore(e.pg),
			Catalog:  storage.NewCatalogStore(e.pg),
		},
	})
	require.NoError(t, err)
	return h
}

func TestRecommendRestaurantsE2E(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	h := newRecommendHandler(t, e)

	out, err := h.Execute(ctx, &recommendrestaurants.Input{
		UserID:   testUser,
		TimeSlot: models.TimeSlotLunch,
		Lat:      originLat,
		Lon:      originLon,
	})
	require.NoError(t, err)
	require.Equal(t, 3, out.RecommendationCount)

	first := map[string]bool{}
	for _, rec := range out.Recommendations {
		assert.NotEqual(t, "Mystery", rec.Name, "unmatched places are never returned")
		assert.True(t, strings.HasPrefix(rec.SecondaryProviderID, "k-"))
		require.NotNil(t, rec.InternalPlaceID)
		first[rec.SecondaryProviderID] = true
	}

	var logged int
	require.NoError(t, e.pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recommendation_logs WHERE phone_number = $1`, testUser).Scan(&logged))
	assert.Equal(t, 3, logged)

	// everything was just shown, so a second run backfills from the same pool
	out2, err := h.Execute(ctx, &recommendrestaurants.Input{UserID: testUser, Lat: originLat, Lon: originLon})
	require.NoError(t, err)
	assert.Equal(t, 3, out2.RecommendationCount)
}

func TestRecordFeedbackE2E(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	profiles := storage.NewProfileCache(storage.NewPreferenceStore(e.pg), e.rdb, time.Minute, e.log)
	before := profiles.Profile(ctx, testUser, models.TimeSlotDinner)
	assert.Empty(t, before.RestaurantAffinity)

	h, err := recordfeedback.NewHandler(recordfeedback.HandlerOptions{
		AppConfig: e.cfg,
		Logger:    e.log,
		Dependencies: recordfeedback.ServiceDependencies{
			Store:    storage.NewFeedbackStore(e.pg),
			Profiles: profiles,
		},
	})
	require.NoError(t, err)

	liked := true
	out, err := h.Execute(ctx, &recordfeedback.Input{
		UserID:         testUser,
		RestaurantName: "을지면옥",
		Category:       "한식당",
		TimeSlot:       models.TimeSlotDinner,
		Source:         models.FeedbackSourceQuick,
		Liked:          &liked,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, out.Rating)

	after := profiles.Profile(ctx, testUser, models.TimeSlotDinner)
	assert.Equal(t, 5.0, after.RestaurantAffinity["을지면옥"])
	assert.Equal(t, 5.0, after.CategoryAffinity["한식당"])
	assert.Equal(t, []string{"한식", "카페"}, after.SignupCategories)
}
