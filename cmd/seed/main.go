package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/wanderguide/wanderguide/internal/adapters/postgres"
	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/pkg/config"
	"github.com/wanderguide/wanderguide/internal/pkg/logging"
)

func main() {
	path := flag.String("file", "configs/seed.example.yaml", "seed manifest")
	flag.Parse()

	cfg, err := config.Load("wanderguide-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("wanderguide-seed", cfg.Log.Level, cfg.Log.Format)

	manifest, err := LoadManifest(*path)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	start := time.Now()
	stats, err := seed(ctx, db, manifest)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	slog.Info("seed complete",
		"countries", stats.countries,
		"cities", stats.cities,
		"pois", stats.pois,
		"duration", time.Since(start).String(),
	)
}

type seedStats struct {
	countries, cities, pois int
}

// seed upserts everything by slug, so running it twice is harmless.
func seed(ctx context.Context, db *postgres.DB, m *Manifest) (seedStats, error) {
	var stats seedStats
	countries := postgres.NewCountryRepo(db)
	cities := postgres.NewCityRepo(db)
	pois := postgres.NewPoiRepo(db)

	for _, co := range m.Countries {
		country := &domain.Country{
			Slug:       co.Slug,
			Name:       co.Name,
			Code:       co.Code,
			GeoJSONURL: co.GeoJSONURL,
			Color:      co.Color,
		}
		if err := countries.Upsert(ctx, country); err != nil {
			return stats, fmt.Errorf("country %s: %w", co.Slug, err)
		}
		stats.countries++

		for _, ci := range co.Cities {
			city := &domain.City{
				Slug:        ci.Slug,
				Name:        ci.Name,
				Description: ci.Description,
				CountryID:   country.ID,
				Location:    domain.GeoPoint{Lat: ci.Lat, Lon: ci.Lon},
				Pictures:    ci.Pictures,
			}
			if err := cities.Upsert(ctx, city); err != nil {
				return stats, fmt.Errorf("city %s: %w", ci.Slug, err)
			}
			stats.cities++

			for _, p := range ci.Pois {
				if err := pois.Upsert(ctx, p.Poi(city.ID)); err != nil {
					return stats, fmt.Errorf("poi %s: %w", p.Slug, err)
				}
				stats.pois++
			}
			slog.Debug("city seeded", "city", ci.Slug, "pois", len(ci.Pois))
		}
	}
	return stats, nil
}
