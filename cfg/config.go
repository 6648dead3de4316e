package cfg

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type DuffelConfig struct {
	BaseURL        string
	AccessToken    string
	APIVersion     string
	Timeout        time.Duration
	RPS            float64
	Burst          int
	CorporateCodes map[string]string
}

type CacheConfig struct {
	Backend      string
	SearchTTL    time.Duration
	ReferenceTTL time.Duration
	OfferTTL     time.Duration
}

type SearchConfig struct {
	RateLimit      int
	RateWindow     time.Duration
	Debounce       time.Duration
	HTTPRatePerMin int
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type Config struct {
	AppEnv          string
	AppPort         string
	Duffel          DuffelConfig
	Cache           CacheConfig
	RedisConfig     RedisConfig
	Search          SearchConfig
	PrefsDBPath     string
	SnowflakeNodeID int64
	Otel            OtelConfig
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func Load() (*Config, error) {
	var errs []error

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.New("failed load cfg: " + err.Error())
	}

	appEnv := mustEnv("APP_ENV", &errs)
	appPort := mustEnv("APP_PORT", &errs)
	duffelBaseURL := mustEnv("DUFFEL_BASE_URL", &errs)
	duffelToken := mustEnv("DUFFEL_ACCESS_TOKEN", &errs)

	cfg := &Config{
		AppEnv:  appEnv,
		AppPort: appPort,
		Duffel: DuffelConfig{
			BaseURL:        duffelBaseURL,
			AccessToken:    duffelToken,
			APIVersion:     envOr("DUFFEL_API_VERSION", "v2"),
			Timeout:        durationEnv("PROVIDER_TIMEOUT", 30*time.Second, &errs),
			RPS:            floatEnv("PROVIDER_RPS", 5, &errs),
			Burst:          intEnv("PROVIDER_BURST", 10, &errs),
			CorporateCodes: pairsEnv("DUFFEL_CORPORATE_CODES", &errs),
		},
		Cache: CacheConfig{
			Backend:      strings.ToLower(envOr("CACHE_BACKEND", CacheBackendMemory)),
			SearchTTL:    durationEnv("CACHE_SEARCH_TTL", 5*time.Minute, &errs),
			ReferenceTTL: durationEnv("CACHE_REFERENCE_TTL", 24*time.Hour, &errs),
			OfferTTL:     durationEnv("CACHE_OFFER_TTL", 2*time.Minute, &errs),
		},
		Search: SearchConfig{
			RateLimit:      intEnv("SEARCH_RATE_LIMIT", 10, &errs),
			RateWindow:     durationEnv("SEARCH_RATE_WINDOW", time.Minute, &errs),
			Debounce:       durationEnv("SEARCH_DEBOUNCE", 300*time.Millisecond, &errs),
			HTTPRatePerMin: intEnv("HTTP_RATE_PER_MINUTE", 120, &errs),
		},
		PrefsDBPath:     envOr("PREFS_DB_PATH", "data/prefs.db"),
		SnowflakeNodeID: int64(intEnv("SNOWFLAKE_NODE_ID", 1, &errs)),
		Otel: OtelConfig{
			Enabled:     boolEnv("OTEL_ENABLED", false, &errs),
			Endpoint:    envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: envOr("OTEL_SERVICE_NAME", "corptravel"),
		},
	}

	switch cfg.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		cfg.RedisConfig = RedisConfig{
			Host:     mustEnv("REDIS_HOST", &errs),
			Port:     mustEnv("REDIS_PORT", &errs),
			Password: os.Getenv("REDIS_PASSWORD"),
		}
	default:
		errs = append(errs, errors.New("invalid env: CACHE_BACKEND must be memory or redis"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64, errs *[]error) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return f
}

func boolEnv(key string, fallback bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return b
}

func durationEnv(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return d
}

// pairsEnv reads "BA:CODE1,IB:CODE2" into a map keyed by upper-cased airline code.
func pairsEnv(key string, errs *[]error) map[string]string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || k == "" || v == "" {
			*errs = append(*errs, errors.New("invalid env: "+key))
			return nil
		}
		out[strings.ToUpper(k)] = v
	}
	return out
}
