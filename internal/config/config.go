package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendKafka     = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	StoreBackend string

	FirestoreProjectID  string
	FirestoreCollection string

	KafkaBrokers []string
	KafkaTopic   string

	CachePath string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Initial map view, used until geolocation succeeds.
	DefaultLat  float64
	DefaultLng  float64
	DefaultZoom int

	GeoIPEnabled bool
	GeoIPTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	geoipTimeout, err := parseDuration("GEOIP_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	defaultLat, err := parseFloat("DEFAULT_LAT", 33.6846)
	if err != nil {
		return nil, err
	}
	defaultLng, err := parseFloat("DEFAULT_LNG", -117.8265)
	if err != nil {
		return nil, err
	}
	defaultZoom, err := parseInt("DEFAULT_ZOOM", 13)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StoreBackend:        envOrDefault("STORE_BACKEND", BackendFirestore),
		FirestoreProjectID:  os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCollection: envOrDefault("FIRESTORE_COLLECTION", "reports"),
		KafkaBrokers:        parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:          envOrDefault("KAFKA_TOPIC", "hazard-reports"),
		CachePath:           envOrDefault("CACHE_PATH", "safespot-cache.db"),
		HTTPAddr:            envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
		DefaultLat:          defaultLat,
		DefaultLng:          defaultLng,
		DefaultZoom:         defaultZoom,
		GeoIPEnabled:        envOrDefault("GEOIP_ENABLED", "true") == "true",
		GeoIPTimeout:        geoipTimeout,
	}

	switch cfg.StoreBackend {
	case BackendFirestore:
		if cfg.FirestoreProjectID == "" {
			return nil, errors.New("FIRESTORE_PROJECT_ID is required for the firestore backend")
		}
		if cfg.FirestoreCollection == "" {
			return nil, errors.New("FIRESTORE_COLLECTION is required")
		}
	case BackendKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required for the kafka backend")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.CachePath == "" {
		return nil, errors.New("CACHE_PATH is required")
	}
	if cfg.DefaultLat < -90 || cfg.DefaultLat > 90 || cfg.DefaultLng < -180 || cfg.DefaultLng > 180 {
		return nil, errors.New("default map center out of range")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}
