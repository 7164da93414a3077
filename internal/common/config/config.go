// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig               `mapstructure:"app"`
	Camunda        CamundaConfig           `mapstructure:"camunda"`
	Database       DatabaseConfig          `mapstructure:"database"`
	Workers        map[string]WorkerConfig `mapstructure:"workers"`
	Providers      ProvidersConfig         `mapstructure:"providers"`
	Recommendation RecommendationConfig    `mapstructure:"recommendation"`
	Logging        LoggingConfig           `mapstructure:"logging"`
	Server         ServerConfig            `mapstructure:"server"`
	Observability  ObservabilityConfig     `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	SkipMigrations bool   `mapstructure:"skip_migrations"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticsearchConfig is optional. With no addresses the catalog mirror is off.
type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	CatalogIndex string   `mapstructure:"catalog_index"`
}

func (e ElasticsearchConfig) Enabled() bool {
	return len(e.Addresses) > 0
}

type RedisConfig struct {
	Address         string `mapstructure:"address"`
	Password        string `mapstructure:"password"`
	DB              int    `mapstructure:"db"`
	ProfileCacheTTL int    `mapstructure:"profile_cache_ttl"` // milliseconds
	MatchCacheTTL   int    `mapstructure:"match_cache_ttl"`   // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Places providers ---

type ProvidersConfig struct {
	Google  GoogleConfig  `mapstructure:"google"`
	Kakao   KakaoConfig   `mapstructure:"kakao"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

type GoogleConfig struct {
	BaseURL      string  `mapstructure:"base_url"`
	APIKey       string  `mapstructure:"api_key"`
	LanguageCode string  `mapstructure:"language_code"`
	Timeout      int     `mapstructure:"timeout"` // milliseconds
	RateLimit    float64 `mapstructure:"rate_limit"`
	RateBurst    int     `mapstructure:"rate_burst"`
}

type KakaoConfig struct {
	BaseURL         string  `mapstructure:"base_url"`
	PlaceBaseURL    string  `mapstructure:"place_base_url"`
	APIKey          string  `mapstructure:"api_key"`
	KeywordTimeout  int     `mapstructure:"keyword_timeout"`  // milliseconds
	CategoryTimeout int     `mapstructure:"category_timeout"` // milliseconds
	DetailTimeout   int     `mapstructure:"detail_timeout"`   // milliseconds
	DetailLookup    bool    `mapstructure:"detail_lookup"`
	RateLimit       float64 `mapstructure:"rate_limit"`
	RateBurst       int     `mapstructure:"rate_burst"`
}

// BreakerConfig tunes the per-provider circuit breaker.
type BreakerConfig struct {
	MaxRequests  uint32  `mapstructure:"max_requests"`
	Interval     int     `mapstructure:"interval"` // milliseconds
	Timeout      int     `mapstructure:"timeout"`  // milliseconds
	MinRequests  uint32  `mapstructure:"min_requests"`
	FailureRatio float64 `mapstructure:"failure_ratio"`
}

// --- Recommendation engine ---

type RecommendationConfig struct {
	Timezone            string        `mapstructure:"timezone"`
	SearchRadiusMeters  int           `mapstructure:"search_radius_m"`
	MaxResults          int           `mapstructure:"max_results"`
	MatchRadiusMeters   int           `mapstructure:"match_radius_m"`
	CategoryRadiusFloor int           `mapstructure:"category_radius_floor_m"`
	CategoryResultSize  int           `mapstructure:"category_result_size"`
	MaxCandidates       int           `mapstructure:"max_candidates"`
	MaxReviews          int           `mapstructure:"max_reviews"`
	TopN                int           `mapstructure:"top_n"`
	PickCount           int           `mapstructure:"pick_count"`
	RecencyWindowHours  int           `mapstructure:"recency_window_hours"`
	Concurrency         int           `mapstructure:"concurrency"`
	RequestTimeout      int           `mapstructure:"request_timeout"` // milliseconds
	Scoring             ScoringConfig `mapstructure:"scoring"`
}

// ScoringConfig overrides scoring constants. Zero values keep the defaults.
type ScoringConfig struct {
	DefaultRating   float64 `mapstructure:"default_rating"`
	RatingScale     float64 `mapstructure:"rating_scale"`
	DistancePenalty float64 `mapstructure:"distance_penalty"`
	SignupBonus     float64 `mapstructure:"signup_bonus"`
	DislikeFactor   float64 `mapstructure:"dislike_factor"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}
