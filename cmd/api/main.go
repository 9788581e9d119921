package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"

	"github.com/wanderguide/wanderguide/internal/adapters/http"
	natsadapter "github.com/wanderguide/wanderguide/internal/adapters/nats"
	"github.com/wanderguide/wanderguide/internal/adapters/osrm"
	"github.com/wanderguide/wanderguide/internal/adapters/postgres"
	"github.com/wanderguide/wanderguide/internal/adapters/restcountries"
	"github.com/wanderguide/wanderguide/internal/adapters/s3"
	"github.com/wanderguide/wanderguide/internal/adapters/valkey"
	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/ports"
	"github.com/wanderguide/wanderguide/internal/core/usecases"
	"github.com/wanderguide/wanderguide/internal/pkg/config"
	"github.com/wanderguide/wanderguide/internal/pkg/errtrack"
	"github.com/wanderguide/wanderguide/internal/pkg/logging"
	"github.com/wanderguide/wanderguide/internal/pkg/metrics"
	"github.com/wanderguide/wanderguide/internal/pkg/telemetry"
	"github.com/wanderguide/wanderguide/internal/workflows"
)

var version = "dev"

func main() {
	cfg, err := config.Load("wanderguide-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	if err := errtrack.Init(errtrack.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     release(cfg.Sentry.Release),
		ServerName:  cfg.Telemetry.ServiceName,
	}); err != nil {
		slog.Warn("error tracking disabled", "error", err)
	}
	defer errtrack.Flush(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	deps := &http.Dependencies{
		DB:           db,
		FallbackPath: cfg.UI.FallbackPath,
		Version:      version,
	}

	// Cache and preference store. Optional: without it every read goes to
	// the database and preferences fall back to the default theme.
	var (
		cache ports.CacheService
		store ports.KeyValueStore
	)
	if vc, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache, store, deps.Cache = vc, vc, vc
	}

	// Itinerary events
	var events ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
		deps.NATS = pub.Conn()
	}

	// Media host and attach workflow
	var (
		storage ports.MediaStorage
		starter ports.MediaWorkflowStarter
	)
	if cfg.Media.Enabled() {
		storage = s3.New(s3.Config{
			Endpoint:        cfg.Media.Endpoint,
			Region:          cfg.Media.Region,
			Bucket:          cfg.Media.Bucket,
			AccessKeyID:     cfg.Media.AccessKeyID,
			SecretAccessKey: cfg.Media.SecretAccessKey,
			PublicURL:       cfg.Media.PublicURL,
		})
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			slog.Warn("temporal unavailable, uploads cannot be attached", "error", err)
		} else {
			defer tc.Close()
			starter = workflows.NewStarter(tc, cfg.Temporal.TaskQueue)
		}
	} else {
		slog.Info("media host not configured, uploads disabled")
	}

	engine := osrm.New(map[domain.TravelProfile]string{
		domain.ProfileFoot: cfg.Routing.FootURL,
		domain.ProfileBike: cfg.Routing.BikeURL,
		domain.ProfileCar:  cfg.Routing.CarURL,
	}, time.Duration(cfg.Routing.TimeoutSeconds)*time.Second)
	flags := restcountries.New(cfg.Flags.BaseURL, 5*time.Second)

	// Repos
	countryRepo := postgres.NewCountryRepo(db)
	cityRepo := postgres.NewCityRepo(db)
	poiRepo := postgres.NewPoiRepo(db)
	itineraryRepo := postgres.NewItineraryRepo(db)

	// Use cases
	itinerarySvc := usecases.NewItineraryService(itineraryRepo, cache, events, cfg.Cache.ItineraryTTL)
	deps.Countries = usecases.NewCountryService(countryRepo, cityRepo, cache, cfg.Cache.PlacesTTL)
	deps.Cities = usecases.NewCityService(cityRepo, poiRepo, cache, cfg.Cache.PlacesTTL)
	deps.Pois = usecases.NewPoiService(poiRepo, cache, cfg.Cache.PlacesTTL)
	deps.Itineraries = itinerarySvc
	deps.Routes = usecases.NewRouteService(itinerarySvc, engine, cache, cfg.Cache.RouteTTL)
	deps.Flags = usecases.NewFlagService(flags, cache, cfg.Flags.CacheTTLSeconds)
	deps.Media = usecases.NewMediaService(storage, starter, cityRepo, poiRepo,
		cfg.Media.MaxUploadBytes, time.Duration(cfg.Media.PresignTTLSeconds)*time.Second)
	theme, err := domain.ParseTheme(cfg.UI.DefaultTheme)
	if err != nil {
		slog.Warn("unknown default theme, using light", "theme", cfg.UI.DefaultTheme)
		theme = domain.ThemeLight
	}
	deps.Preferences = usecases.NewPreferenceService(store, theme)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024,
		AppName:      "Wanderguide API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats copies connection pool statistics into Prometheus every
// 15 seconds until ctx is done.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		case <-ctx.Done():
			return
		}
	}
}

func release(configured string) string {
	if configured != "" {
		return configured
	}
	return "wanderguide@" + version
}
