package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "safespot-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendFirestore, cfg.StoreBackend)
	assert.Equal(t, "safespot-test", cfg.FirestoreProjectID)
	assert.Equal(t, "reports", cfg.FirestoreCollection)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "hazard-reports", cfg.KafkaTopic)
	assert.Equal(t, "safespot-cache.db", cfg.CachePath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.InDelta(t, 33.6846, cfg.DefaultLat, 1e-9)
	assert.InDelta(t, -117.8265, cfg.DefaultLng, 1e-9)
	assert.Equal(t, 13, cfg.DefaultZoom)
	assert.True(t, cfg.GeoIPEnabled)
	assert.Equal(t, 5*time.Second, cfg.GeoIPTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-reports")
	t.Setenv("CACHE_PATH", "/var/lib/safespot/cache.db")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DEFAULT_LAT", "40.7128")
	t.Setenv("DEFAULT_LNG", "-74.0060")
	t.Setenv("DEFAULT_ZOOM", "11")
	t.Setenv("GEOIP_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendKafka, cfg.StoreBackend)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-reports", cfg.KafkaTopic)
	assert.Equal(t, "/var/lib/safespot/cache.db", cfg.CachePath)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.InDelta(t, 40.7128, cfg.DefaultLat, 1e-9)
	assert.Equal(t, 11, cfg.DefaultZoom)
	assert.False(t, cfg.GeoIPEnabled)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("firestore backend requires project id", func(t *testing.T) {
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FIRESTORE_PROJECT_ID")
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "dynamo")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STORE_BACKEND")
	})

	t.Run("invalid shutdown timeout", func(t *testing.T) {
		t.Setenv("FIRESTORE_PROJECT_ID", "p")
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("center out of range", func(t *testing.T) {
		t.Setenv("FIRESTORE_PROJECT_ID", "p")
		t.Setenv("DEFAULT_LAT", "91")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("kafka backend with empty brokers", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "kafka")
		t.Setenv("KAFKA_BROKERS", " , ")
		_, err := Load()
		require.Error(t, err)
	})
}
