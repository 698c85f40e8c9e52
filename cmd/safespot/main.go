package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/safespot-sync/internal/adapter/httpapi"
	"github.com/couchcryptid/safespot-sync/internal/cache"
	"github.com/couchcryptid/safespot-sync/internal/config"
	"github.com/couchcryptid/safespot-sync/internal/domain"
	"github.com/couchcryptid/safespot-sync/internal/geoip"
	"github.com/couchcryptid/safespot-sync/internal/mapwidget"
	"github.com/couchcryptid/safespot-sync/internal/mapwidget/memwidget"
	"github.com/couchcryptid/safespot-sync/internal/observability"
	"github.com/couchcryptid/safespot-sync/internal/render"
	"github.com/couchcryptid/safespot-sync/internal/store"
	firestorestore "github.com/couchcryptid/safespot-sync/internal/store/firestore"
	kafkastore "github.com/couchcryptid/safespot-sync/internal/store/kafka"
	"github.com/couchcryptid/safespot-sync/internal/syncer"
)

const (
	tileURL         = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	tileAttribution = "© OpenStreetMap contributors"
	tileMaxZoom     = 19
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Pick the report store backend.
	var (
		st         store.Client
		closeStore func() error
	)
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		client, err := firestorestore.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCollection, logger)
		if err != nil {
			logger.Error("failed to create firestore client", "error", err)
			os.Exit(1)
		}
		st = client
		closeStore = client.Close
		logger.Info("using firestore backend", "project", cfg.FirestoreProjectID, "collection", cfg.FirestoreCollection)
	case config.BackendKafka:
		ks := kafkastore.NewStore(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		st = ks
		closeStore = ks.Close
		logger.Info("using kafka backend", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	snapshotCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		logger.Error("failed to open snapshot cache", "path", cfg.CachePath, "error", err)
		os.Exit(1)
	}

	widget := memwidget.New(mapwidget.LatLng{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng}, cfg.DefaultZoom)
	widget.AddTileLayer(tileURL, tileAttribution, tileMaxZoom)

	// Headless deployment: UI hooks surface through the log. The HTTP API
	// carries the same notices to clients in its responses.
	renderer := render.New(widget, render.Hooks{
		Notify: func(msg string) { logger.Info("notice", "message", msg) },
		OpenDetail: func(r domain.Report) {
			logger.Info("detail opened", "id", r.ID, "category", r.Category)
		},
		OpenForm: func(pos mapwidget.LatLng) {
			logger.Info("report form opened", "lat", pos.Lat, "lng", pos.Lng)
		},
		CloseForm: func() { logger.Debug("report form closed") },
	}, logger, metrics)

	sy := syncer.New(st, snapshotCache, logger, metrics)
	unregister := sy.AddListener(renderer.Refresh)
	defer unregister()

	if err := sy.Start(ctx); err != nil {
		logger.Warn("subscription failed, serving cached reports", "error", err)
	}

	// Best-effort geolocation, mirroring the browser prompt. Falls back to
	// the default center when lookup fails or is disabled.
	if cfg.GeoIPEnabled {
		go func() {
			locator := geoip.NewClient(cfg.GeoIPTimeout, logger)
			pos, err := locator.Locate(ctx)
			if err != nil {
				logger.Info("geolocation unavailable, keeping default center", "error", err)
				return
			}
			renderer.SetUserLocation(mapwidget.LatLng{Lat: pos.Lat, Lng: pos.Lng})
			logger.Info("map centered on user location", "lat", pos.Lat, "lng", pos.Lng)
		}()
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, sy, renderer, widget, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	sy.Close()
	if err := closeStore(); err != nil {
		logger.Error("store close error", "error", err)
	}
	if err := snapshotCache.Close(); err != nil {
		logger.Error("cache close error", "error", err)
	}

	logger.Info("shutdown complete")
}
