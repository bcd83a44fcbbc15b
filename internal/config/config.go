package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Map providers supported by the browser map adapter.
const (
	ProviderGoogle = "google"
	ProviderMapbox = "mapbox"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int

	MetricInterval time.Duration
	MapProvider    string
	SettingsPath   string

	// Geolocation acquisition: initial fix, then continuous watch.
	GeolocationTimeout time.Duration
	GeolocationMaxAge  time.Duration
	WatchTimeout       time.Duration
	WatchMaxAge        time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Activity publishing to Kafka.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaActivityTopic string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	metricInterval, err := parsePositiveDuration("METRIC_INTERVAL", "10s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	geoTimeout, err := parsePositiveDuration("GEOLOCATION_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geoMaxAge, err := parsePositiveDuration("GEOLOCATION_MAX_AGE", "5m")
	if err != nil {
		return nil, err
	}
	watchTimeout, err := parsePositiveDuration("WATCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	watchMaxAge, err := parsePositiveDuration("WATCH_MAX_AGE", "60s")
	if err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("RATE_LIMIT_RPS", "20"), 64)
	if err != nil || rps <= 0 {
		return nil, errors.New("invalid RATE_LIMIT_RPS")
	}
	burst, err := strconv.Atoi(sharedcfg.EnvOrDefault("RATE_LIMIT_BURST", "40"))
	if err != nil || burst <= 0 {
		return nil, errors.New("invalid RATE_LIMIT_BURST")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     splitList(sharedcfg.EnvOrDefault("CORS_ORIGINS", "http://localhost:5173")),
		RateLimitRPS:    rps,
		RateLimitBurst:  burst,

		MetricInterval: metricInterval,
		MapProvider:    strings.ToLower(sharedcfg.EnvOrDefault("MAP_PROVIDER", ProviderGoogle)),
		SettingsPath:   sharedcfg.EnvOrDefault("SETTINGS_PATH", "resqwatch-settings.yaml"),

		GeolocationTimeout: geoTimeout,
		GeolocationMaxAge:  geoMaxAge,
		WatchTimeout:       watchTimeout,
		WatchMaxAge:        watchMaxAge,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaActivityTopic: sharedcfg.EnvOrDefault("KAFKA_ACTIVITY_TOPIC", "resqwatch-activity"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.MapProvider != ProviderGoogle && cfg.MapProvider != ProviderMapbox {
		return nil, fmt.Errorf("invalid MAP_PROVIDER %q: want google or mapbox", cfg.MapProvider)
	}
	if cfg.SettingsPath == "" {
		return nil, errors.New("SETTINGS_PATH is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaActivityTopic == "" {
			return nil, errors.New("KAFKA_ACTIVITY_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
