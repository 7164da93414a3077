// Package googleplaces is the client for the primary places provider
// (Places API v1 nearby search).
package googleplaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"reco-workers/internal/common/config"
	xhttp "reco-workers/internal/common/http"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/models"
)

const (
	ProviderName = "google"
	maxPhotos    = 5
)

var fieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.location",
	"places.rating",
	"places.userRatingCount",
	"places.shortFormattedAddress",
	"places.currentOpeningHours",
	"places.regularOpeningHours",
	"places.primaryTypeDisplayName",
	"places.photos",
	"places.reviews",
}, ",")

type Client struct {
	http       *xhttp.Client
	baseURL    string
	apiKey     string
	language   string
	maxReviews int
	logger     logger.Logger
}

func NewClient(cfg config.GoogleConfig, breaker config.BreakerConfig, maxReviews int, log logger.Logger) *Client {
	return &Client{
		http: xhttp.NewClient(xhttp.Options{
			Name:      ProviderName,
			Timeout:   config.GetDuration(cfg.Timeout),
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
			Breaker:   breaker,
			Logger:    log,
		}),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		language:   cfg.LanguageCode,
		maxReviews: maxReviews,
		logger:     log.WithFields(map[string]interface{}{"provider": ProviderName}),
	}
}

// NearbyRequest is a circle search for restaurants.
type NearbyRequest struct {
	Lat          float64
	Lon          float64
	RadiusMeters int
	MaxResults   int
}

// SearchNearby returns restaurants around the request center. A non-2xx
// response is logged and yields an empty result; transport failures are
// returned.
func (c *Client) SearchNearby(ctx context.Context, req NearbyRequest) ([]models.ProviderPlace, error) {
	payload := searchNearbyRequest{
		IncludedTypes:  []string{"restaurant"},
		MaxResultCount: req.MaxResults,
		LanguageCode:   c.language,
	}
	payload.LocationRestriction.Circle.Center.Latitude = req.Lat
	payload.LocationRestriction.Circle.Center.Longitude = req.Lon
	payload.LocationRestriction.Circle.Radius = float64(req.RadiusMeters)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode nearby request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/places:searchNearby", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build nearby request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", fieldMask)

	raw, err := c.http.Do(ctx, "search_nearby", httpReq)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			c.logger.Warn("nearby search returned non-OK status", map[string]interface{}{
				"status": se.StatusCode,
				"body":   se.Body,
			})
			return []models.ProviderPlace{}, nil
		}
		return nil, fmt.Errorf("nearby search: %w", err)
	}

	var resp searchNearbyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode nearby response: %w", err)
	}

	places := make([]models.ProviderPlace, 0, len(resp.Places))
	for _, p := range resp.Places {
		places = append(places, c.toProviderPlace(p))
	}
	return places, nil
}

func (c *Client) toProviderPlace(p place) models.ProviderPlace {
	out := models.ProviderPlace{
		ID:              p.ID,
		Name:            p.DisplayName.Text,
		Rating:          p.Rating,
		UserRatingCount: p.UserRatingCount,
		ShortAddress:    p.ShortFormattedAddress,
		CategoryLabel:   p.PrimaryTypeDisplayName.Text,
	}
	if p.Location != nil {
		lat, lon := p.Location.Latitude, p.Location.Longitude
		out.Lat, out.Lon = &lat, &lon
	}

	hours := p.CurrentOpeningHours
	if hours == nil {
		hours = p.RegularOpeningHours
	}
	if hours != nil {
		out.WeekdayDescriptions = hours.WeekdayDescriptions
		out.OpenNow = hours.OpenNow
		out.Periods = toPeriods(hours.Periods)
	}

	for _, ph := range p.Photos {
		if len(out.PhotoURLs) >= maxPhotos {
			break
		}
		if ph.Name != "" {
			out.PhotoURLs = append(out.PhotoURLs, c.PhotoURL(ph.Name))
		}
	}

	for _, r := range p.Reviews {
		if c.maxReviews > 0 && len(out.Reviews) >= c.maxReviews {
			break
		}
		if text := strings.TrimSpace(r.Text.Text); text != "" {
			out.Reviews = append(out.Reviews, text)
		}
	}
	return out
}

// PhotoURL builds the media URL for a photo resource name.
func (c *Client) PhotoURL(name string) string {
	q := url.Values{}
	q.Set("maxWidthPx", "400")
	q.Set("maxHeightPx", "300")
	q.Set("key", c.apiKey)
	return fmt.Sprintf("%s/%s/media?%s", c.baseURL, name, q.Encode())
}

// toPeriods converts provider periods, whose days start on Sunday, to the
// Monday-based week used by the schedule evaluator.
func toPeriods(in []period) []models.Period {
	out := make([]models.Period, 0, len(in))
	for _, p := range in {
		if p.Open == nil {
			continue
		}
		mp := models.Period{Open: p.Open.toPoint()}
		if p.Close != nil {
			cp := p.Close.toPoint()
			mp.Close = &cp
		}
		out = append(out, mp)
	}
	return out
}

func (p point) toPoint() models.PeriodPoint {
	out := models.PeriodPoint{Hour: p.Hour, Minute: p.Minute}
	if p.Day != nil {
		d := (*p.Day + 6) % 7
		out.Day = &d
	}
	return out
}
