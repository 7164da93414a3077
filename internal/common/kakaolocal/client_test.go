package kakaolocal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reco-workers/internal/common/config"
	"reco-workers/internal/common/logger"
)

func newClient(t *testing.T, url string) *Client {
	return NewClient(config.KakaoConfig{
		BaseURL:         url,
		PlaceBaseURL:    url,
		APIKey:          "kakao-key",
		KeywordTimeout:  2000,
		CategoryTimeout: 5000,
		DetailTimeout:   2000,
	}, config.BreakerConfig{MinRequests: 10, FailureRatio: 0.6}, logger.NewTestLogger(t))
}

func TestSearchKeyword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/local/search/keyword.json", r.URL.Path)
		assert.Equal(t, "KakaoAK kakao-key", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "을지로 스시", q.Get("query"))
		assert.Equal(t, "126.978", q.Get("x"))
		assert.Equal(t, "37.5665", q.Get("y"))
		assert.Equal(t, "300", q.Get("radius"))
		assert.Equal(t, "distance", q.Get("sort"))
		assert.Empty(t, q.Get("category_group_code"))
		_, _ = w.Write([]byte(`{"documents":[
			{"id":"111","place_name":"을지로스시","road_address_name":"서울 중구 을지로 1","address_name":"서울 중구 을지로동 1","distance":"42","x":"126.9781","y":"37.5664"},
			{"id":"222","place_name":"스시 2호점","road_address_name":"","address_name":"서울 중구 2","distance":"250","x":"126.97","y":"37.56"}
		]}`))
	}))
	defer server.Close()

	places, err := newClient(t, server.URL).SearchKeyword(context.Background(), "을지로 스시", 37.5665, 126.978, 300)
	require.NoError(t, err)
	require.Len(t, places, 2)

	assert.Equal(t, "111", places[0].ID)
	assert.Equal(t, "서울 중구 을지로 1", places[0].Address)
	assert.Equal(t, 42, places[0].DistanceMeters)
	assert.InDelta(t, 37.5664, places[0].Lat, 1e-9)
	assert.Equal(t, "서울 중구 2", places[1].Address, "falls back to the lot address")
}

func TestSearchCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/local/search/category.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, CategoryCafe, q.Get("category_group_code"))
		assert.Equal(t, "3", q.Get("size"))
		_, _ = w.Write([]byte(`{"documents":[{"id":"333","place_name":"카페","address_name":"주소","distance":"10","x":"1","y":"2"}]}`))
	}))
	defer server.Close()

	places, err := newClient(t, server.URL).SearchCategory(context.Background(), CategoryCafe, 2, 1, 300, 3)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "333", places[0].ID)
}

func TestSearch_Errors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()
		_, err := newClient(t, server.URL).SearchKeyword(context.Background(), "x", 1, 1, 300)
		require.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer server.Close()
		c := newClient(t, server.URL)
		c.keywordTimeout = 30 * time.Millisecond
		_, err := c.SearchKeyword(context.Background(), "x", 1, 1, 300)
		require.Error(t, err)
	})
}

func TestPlaceDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/main/v/111", r.URL.Path)
		assert.Equal(t, "https://map.kakao.com/", r.Header.Get("Referer"))
		_, _ = w.Write([]byte(`{"basicInfo":{"address":{"newAddr":"을지로 1"},"openInfo":{"openInfo":"매일 11:00 ~ 22:00","openFlag":"Y"}}}`))
	}))
	defer server.Close()

	d, err := newClient(t, server.URL).PlaceDetail(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, "을지로 1", d.Address)
	assert.Equal(t, "매일 11:00 ~ 22:00", d.OpenInfo)
	require.NotNil(t, d.OpenNow)
	assert.True(t, *d.OpenNow)
}

func TestParseOpenFlag(t *testing.T) {
	tests := []struct {
		in   string
		want *bool
	}{
		{"Y", boolPtr(true)},
		{"open", boolPtr(true)},
		{"1", boolPtr(true)},
		{"N", boolPtr(false)},
		{"closed", boolPtr(false)},
		{"0", boolPtr(false)},
		{"", nil},
		{"maybe", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOpenFlag(tt.in))
		})
	}
}

func boolPtr(b bool) *bool { return &b }
