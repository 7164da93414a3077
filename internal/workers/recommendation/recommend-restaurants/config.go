package recommendrestaurants

import (
	"fmt"
	"time"

	"reco-workers/internal/common/config"
)

type Config struct {
	Enabled        bool
	MaxJobsActive  int
	Timeout        time.Duration
	DetailLookup   bool
	Recommendation config.RecommendationConfig
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		Recommendation: config.RecommendationConfig{
			Timezone:            "Asia/Seoul",
			SearchRadiusMeters:  1500,
			MaxResults:          20,
			MatchRadiusMeters:   300,
			CategoryRadiusFloor: 300,
			CategoryResultSize:  3,
			MaxCandidates:       12,
			MaxReviews:          5,
			TopN:                10,
			PickCount:           3,
			RecencyWindowHours:  48,
			Concurrency:         6,
			RequestTimeout:      15000,
		},
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	r := c.Recommendation
	if r.PickCount <= 0 {
		return fmt.Errorf("pick_count must be positive")
	}
	if r.TopN < r.PickCount {
		return fmt.Errorf("top_n (%d) must be at least pick_count (%d)", r.TopN, r.PickCount)
	}
	if r.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if r.MaxCandidates <= 0 {
		return fmt.Errorf("max_candidates must be positive")
	}
	return nil
}

// RequestTimeout bounds one recommendation run; it never exceeds the job timeout.
func (c *Config) RequestTimeout() time.Duration {
	d := config.GetDuration(c.Recommendation.RequestTimeout)
	if d <= 0 || d > c.Timeout {
		return c.Timeout
	}
	return d
}

func (c *Config) RecencyWindow() time.Duration {
	return time.Duration(c.Recommendation.RecencyWindowHours) * time.Hour
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	if workerCfg, exists := appConfig.Workers[TaskType]; exists {
		cfg.Enabled = workerCfg.Enabled
		if workerCfg.MaxJobsActive > 0 {
			cfg.MaxJobsActive = workerCfg.MaxJobsActive
		}
		if workerCfg.Timeout > 0 {
			cfg.Timeout = config.GetDuration(workerCfg.Timeout)
		}
	}
	cfg.DetailLookup = appConfig.Providers.Kakao.DetailLookup
	cfg.Recommendation = appConfig.Recommendation
	return cfg
}
