package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/wanderguide/wanderguide/internal/adapters/nats"
	"github.com/wanderguide/wanderguide/internal/adapters/osrm"
	"github.com/wanderguide/wanderguide/internal/adapters/postgres"
	"github.com/wanderguide/wanderguide/internal/adapters/s3"
	"github.com/wanderguide/wanderguide/internal/adapters/valkey"
	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/ports"
	"github.com/wanderguide/wanderguide/internal/core/usecases"
	"github.com/wanderguide/wanderguide/internal/pkg/config"
	"github.com/wanderguide/wanderguide/internal/pkg/errtrack"
	"github.com/wanderguide/wanderguide/internal/pkg/logging"
	"github.com/wanderguide/wanderguide/internal/workflows"
)

// The media worker runs the upload attach workflow and, alongside it, warms
// the route cache whenever an itinerary changes.
func main() {
	cfg, err := config.Load("wanderguide-mediaworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("wanderguide-mediaworker", cfg.Log.Level, cfg.Log.Format)

	if err := errtrack.Init(errtrack.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     cfg.Sentry.Release,
		ServerName:  "wanderguide-mediaworker",
	}); err != nil {
		slog.Warn("error tracking disabled", "error", err)
	}
	defer errtrack.Flush(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, route warming disabled", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	cityRepo := postgres.NewCityRepo(db)
	poiRepo := postgres.NewPoiRepo(db)
	itinerarySvc := usecases.NewItineraryService(postgres.NewItineraryRepo(db), cache, nil, cfg.Cache.ItineraryTTL)

	// Route warming only pays off with a shared cache to fill.
	if cache != nil {
		engine := osrm.New(map[domain.TravelProfile]string{
			domain.ProfileFoot: cfg.Routing.FootURL,
			domain.ProfileBike: cfg.Routing.BikeURL,
			domain.ProfileCar:  cfg.Routing.CarURL,
		}, time.Duration(cfg.Routing.TimeoutSeconds)*time.Second)
		routes := usecases.NewRouteService(itinerarySvc, engine, cache, cfg.Cache.RouteTTL)
		warmer := usecases.NewRouteWarmer(itinerarySvc, routes)

		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "route-warmer")
		if err != nil {
			slog.Warn("nats unavailable, route warming disabled", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribeItineraryEvents(ctx, func(ctx context.Context, ev *domain.ItineraryEvent) error {
				ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()
				return warmer.Handle(ctx, ev)
			}); err != nil {
				log.Fatalf("subscribe itinerary events: %v", err)
			}
			slog.Info("route warmer subscribed", "profiles", len(usecases.WarmedProfiles))
		}
	}

	if !cfg.Media.Enabled() {
		log.Fatal("media host not configured: set WANDERGUIDE_MEDIA_BUCKET and credentials")
	}
	storage := s3.New(s3.Config{
		Endpoint:        cfg.Media.Endpoint,
		Region:          cfg.Media.Region,
		Bucket:          cfg.Media.Bucket,
		AccessKeyID:     cfg.Media.AccessKeyID,
		SecretAccessKey: cfg.Media.SecretAccessKey,
		PublicURL:       cfg.Media.PublicURL,
	})
	mediaSvc := usecases.NewMediaService(storage, nil, cityRepo, poiRepo,
		cfg.Media.MaxUploadBytes, time.Duration(cfg.Media.PresignTTLSeconds)*time.Second)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.MediaAttachWorkflow)
	w.RegisterActivity(&workflows.MediaActivities{Media: mediaSvc})

	slog.Info("media worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
