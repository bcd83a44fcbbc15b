package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	httpadapter "github.com/couchcryptid/resqwatch-dashboard-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/resqwatch-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/adapter/mapbox"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/checklist"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/config"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/history"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/mapview"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/pipeline"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/reports"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/safety"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/settings"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/simulator"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

// Bengaluru city centre, used to bias forward geocoding.
var searchProximity = domain.Coordinates{Lat: 12.9716, Lng: 77.5946}

func main() {
	// Local overrides are optional.
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	store, err := settings.Open(cfg.SettingsPath, logger)
	if err != nil {
		logger.Error("failed to open settings", "error", err, "path", cfg.SettingsPath)
		os.Exit(1)
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics, mapbox.WithProximity(searchProximity))
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocoder cache", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	historyLog := history.NewLog(clock, logger, metrics)
	sim := simulator.New(cfg.MetricInterval, logger, metrics, simulator.WithClock(clock))
	geo := mapview.NewClientGeolocator(clock)
	mapAdapter := mapview.NewAdapter(geo, mapview.Provider(cfg.MapProvider), logger, metrics,
		mapview.WithInitialOptions(mapview.PositionOptions{
			EnableHighAccuracy: true,
			Timeout:            cfg.GeolocationTimeout,
			MaximumAge:         cfg.GeolocationMaxAge,
		}),
		mapview.WithWatchOptions(mapview.PositionOptions{
			EnableHighAccuracy: true,
			Timeout:            cfg.WatchTimeout,
			MaximumAge:         cfg.WatchMaxAge,
		}),
	)

	// Activity publishing (feature-flagged via KAFKA_ENABLED).
	var (
		publisher *pipeline.Publisher
		writer    *kafkaadapter.Writer
		readiness []dashboard.ReadinessChecker
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = pipeline.New(writer, pipeline.Options{
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.BatchFlushInterval,
		}, clock, logger, metrics)
		historyLog.Subscribe(publisher.Enqueue)
		readiness = append(readiness, publisher)
		logger.Info("activity publishing enabled", "topic", cfg.KafkaActivityTopic, "brokers", cfg.KafkaBrokers)
	}

	shell := dashboard.New(dashboard.Deps{
		Simulator: sim,
		Reports:   reports.NewStore(clock, logger, metrics),
		Checklist: checklist.NewStore(logger, metrics),
		History:   historyLog,
		Directory: safety.NewDirectory(),
		Map:       mapAdapter,
		Settings:  store,
		Geocoder:  geocoder,
		Clock:     clock,
		Readiness: readiness,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg, shell, geo, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := sim.Run(ctx); err != nil {
			logger.Error("metric simulator error", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := mapAdapter.Start(ctx); err != nil {
			logger.Error("map adapter error", "error", err)
		}
	}()
	if publisher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := publisher.Run(ctx); err != nil {
				logger.Error("activity publisher error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	// The publisher drains its queue before returning, so the writer is
	// closed only after every worker has stopped.
	wg.Wait()
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
