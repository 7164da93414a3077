// Package kakaolocal is the client for the secondary places provider
// (Kakao Local keyword and category search, plus the place basic-info page).
package kakaolocal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reco-workers/internal/common/config"
	xhttp "reco-workers/internal/common/http"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/models"
)

const ProviderName = "kakao"

// Category group codes.
const (
	CategoryRestaurant = "FD6"
	CategoryCafe       = "CE7"
)

type Client struct {
	http            *xhttp.Client
	baseURL         string
	placeBaseURL    string
	apiKey          string
	keywordTimeout  time.Duration
	categoryTimeout time.Duration
	detailTimeout   time.Duration
}

func NewClient(cfg config.KakaoConfig, breaker config.BreakerConfig, log logger.Logger) *Client {
	return &Client{
		http: xhttp.NewClient(xhttp.Options{
			Name:      ProviderName,
			Timeout:   config.GetDuration(maxInt(cfg.KeywordTimeout, cfg.CategoryTimeout, cfg.DetailTimeout)),
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
			Breaker:   breaker,
			Logger:    log,
		}),
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		placeBaseURL:    strings.TrimRight(cfg.PlaceBaseURL, "/"),
		apiKey:          cfg.APIKey,
		keywordTimeout:  config.GetDuration(cfg.KeywordTimeout),
		categoryTimeout: config.GetDuration(cfg.CategoryTimeout),
		detailTimeout:   config.GetDuration(cfg.DetailTimeout),
	}
}

// SearchKeyword finds places named like query around (lat, lon), nearest first.
func (c *Client) SearchKeyword(ctx context.Context, query string, lat, lon float64, radius int) ([]models.SecondaryPlace, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("x", formatCoord(lon))
	q.Set("y", formatCoord(lat))
	q.Set("radius", strconv.Itoa(radius))
	q.Set("sort", "distance")
	return c.search(ctx, "keyword", "/v2/local/search/keyword.json", q, c.keywordTimeout)
}

// SearchCategory lists places of a category group around (lat, lon), nearest first.
func (c *Client) SearchCategory(ctx context.Context, code string, lat, lon float64, radius, size int) ([]models.SecondaryPlace, error) {
	q := url.Values{}
	q.Set("category_group_code", code)
	q.Set("x", formatCoord(lon))
	q.Set("y", formatCoord(lat))
	q.Set("radius", strconv.Itoa(radius))
	q.Set("sort", "distance")
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	return c.search(ctx, "category", "/v2/local/search/category.json", q, c.categoryTimeout)
}

func (c *Client) search(ctx context.Context, op, path string, q url.Values, timeout time.Duration) ([]models.SecondaryPlace, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	raw, err := c.http.Do(ctx, op, req)
	if err != nil {
		return nil, fmt.Errorf("kakao %s search: %w", op, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode kakao %s response: %w", op, err)
	}

	out := make([]models.SecondaryPlace, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		out = append(out, d.toPlace())
	}
	return out, nil
}

// PlaceDetail fetches the basic-info page for a place id.
func (c *Client) PlaceDetail(ctx context.Context, id string) (*models.SecondaryDetail, error) {
	if c.detailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.detailTimeout)
		defer cancel()
	}

	req, err := http.NewRequest(http.MethodGet, c.placeBaseURL+"/main/v/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("build detail request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://map.kakao.com/")

	raw, err := c.http.Do(ctx, "detail", req)
	if err != nil {
		return nil, fmt.Errorf("kakao place detail: %w", err)
	}

	var resp detailResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode kakao detail: %w", err)
	}

	info := resp.BasicInfo.OpenInfo
	return &models.SecondaryDetail{
		Address:  strings.TrimSpace(resp.BasicInfo.Address.NewAddr),
		OpenInfo: strings.TrimSpace(info.OpenInfo),
		OpenNow:  ParseOpenFlag(string(info.OpenFlag)),
	}, nil
}

// ParseOpenFlag maps the detail page's open flag to a tri-state value.
func ParseOpenFlag(flag string) *bool {
	t, f := true, false
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "y", "1", "true", "open", "o":
		return &t
	case "n", "0", "false", "closed", "c":
		return &f
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func maxInt(vals ...int) int {
	m := 0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}
