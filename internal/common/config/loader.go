// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const recommendWorkerName = "recommend-restaurants"

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// on top, expands ${VAR} placeholders and applies defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName("config." + env)
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if godotenv.Load(p) == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		s, ok := v.Get(key).(string)
		if !ok || !strings.Contains(s, "$") {
			continue
		}
		if expanded := os.ExpandEnv(s); expanded != s {
			v.Set(key, expanded)
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional env names.
func overrideEmptyConfig(cfg *Config) {
	fill := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	fill(&cfg.Providers.Google.APIKey, "GOOGLE_PLACES_API_KEY")
	fill(&cfg.Providers.Kakao.APIKey, "KAKAO_REST_API_KEY")
	fill(&cfg.Database.Postgres.User, "DB_USER")
	fill(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	fill(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "reco-workers"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	pg := &cfg.Database.Postgres
	if pg.Port == 0 {
		pg.Port = 5432
	}
	if pg.MaxConnections == 0 {
		pg.MaxConnections = 25
	}
	if pg.MaxIdle == 0 {
		pg.MaxIdle = 5
	}
	if pg.SSLMode == "" {
		pg.SSLMode = "disable"
	}

	if cfg.Database.Elasticsearch.CatalogIndex == "" {
		cfg.Database.Elasticsearch.CatalogIndex = "restaurants"
	}
	if cfg.Database.Redis.ProfileCacheTTL == 0 {
		cfg.Database.Redis.ProfileCacheTTL = 5 * 60 * 1000
	}
	if cfg.Database.Redis.MatchCacheTTL == 0 {
		cfg.Database.Redis.MatchCacheTTL = 24 * 60 * 60 * 1000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for key, w := range cfg.Workers {
		if w.MaxJobsActive == 0 {
			w.MaxJobsActive = 5
		}
		if w.Timeout == 0 {
			w.Timeout = 30000
		}
		if w.MaxRetries == 0 {
			w.MaxRetries = 3
		}
		cfg.Workers[key] = w
	}

	applyProviderDefaults(&cfg.Providers)
	applyRecommendationDefaults(&cfg.Recommendation)

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
}

func applyProviderDefaults(p *ProvidersConfig) {
	g := &p.Google
	if g.BaseURL == "" {
		g.BaseURL = "https://places.googleapis.com/v1"
	}
	if g.LanguageCode == "" {
		g.LanguageCode = "ko"
	}
	if g.Timeout == 0 {
		g.Timeout = 5000
	}
	if g.RateLimit == 0 {
		g.RateLimit = 5
	}
	if g.RateBurst == 0 {
		g.RateBurst = 5
	}

	k := &p.Kakao
	if k.BaseURL == "" {
		k.BaseURL = "https://dapi.kakao.com"
	}
	if k.PlaceBaseURL == "" {
		k.PlaceBaseURL = "https://place.map.kakao.com"
	}
	if k.KeywordTimeout == 0 {
		k.KeywordTimeout = 2000
	}
	if k.CategoryTimeout == 0 {
		k.CategoryTimeout = 5000
	}
	if k.DetailTimeout == 0 {
		k.DetailTimeout = 2000
	}
	if k.RateLimit == 0 {
		k.RateLimit = 10
	}
	if k.RateBurst == 0 {
		k.RateBurst = 10
	}

	b := &p.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = 3
	}
	if b.Interval == 0 {
		b.Interval = 60000
	}
	if b.Timeout == 0 {
		b.Timeout = 30000
	}
	if b.MinRequests == 0 {
		b.MinRequests = 10
	}
	if b.FailureRatio == 0 {
		b.FailureRatio = 0.6
	}
}

func applyRecommendationDefaults(r *RecommendationConfig) {
	if r.Timezone == "" {
		r.Timezone = "Asia/Seoul"
	}
	if r.SearchRadiusMeters == 0 {
		r.SearchRadiusMeters = 1500
	}
	if r.MaxResults == 0 {
		r.MaxResults = 20
	}
	if r.MatchRadiusMeters == 0 {
		r.MatchRadiusMeters = 300
	}
	if r.CategoryRadiusFloor == 0 {
		r.CategoryRadiusFloor = 300
	}
	if r.CategoryResultSize == 0 {
		r.CategoryResultSize = 3
	}
	if r.MaxCandidates == 0 {
		r.MaxCandidates = 12
	}
	if r.MaxReviews == 0 {
		r.MaxReviews = 5
	}
	if r.TopN == 0 {
		r.TopN = 10
	}
	if r.PickCount == 0 {
		r.PickCount = 3
	}
	if r.RecencyWindowHours == 0 {
		r.RecencyWindowHours = 48
	}
	if r.Concurrency == 0 {
		r.Concurrency = 6
	}
	if r.RequestTimeout == 0 {
		r.RequestTimeout = 15000
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if IsWorkerEnabled(cfg, recommendWorkerName) {
		if cfg.Providers.Google.APIKey == "" {
			return fmt.Errorf("providers.google.api_key is required when %s is enabled", recommendWorkerName)
		}
		if cfg.Providers.Kakao.APIKey == "" {
			return fmt.Errorf("providers.kakao.api_key is required when %s is enabled", recommendWorkerName)
		}
	}

	if cfg.Recommendation.PickCount > cfg.Recommendation.TopN {
		return fmt.Errorf("recommendation.pick_count (%d) must not exceed recommendation.top_n (%d)",
			cfg.Recommendation.PickCount, cfg.Recommendation.TopN)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if w, ok := cfg.Workers[workerName]; ok {
		return w
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if w, ok := cfg.Workers[workerName]; ok {
		return w.Enabled
	}
	return true
}
