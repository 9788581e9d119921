package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/wanderguide/wanderguide/internal/core/usecases"
)

// Pinger is a backing service the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Countries   *usecases.CountryService
	Cities      *usecases.CityService
	Pois        *usecases.PoiService
	Itineraries *usecases.ItineraryService
	Routes      *usecases.RouteService
	Flags       *usecases.FlagService
	Media       *usecases.MediaService
	Preferences *usecases.PreferenceService
	NATS        *nats.Conn
	DB          Pinger
	Cache       Pinger

	// FallbackPath is where the itinerary page sends clients when the
	// itinerary does not exist.
	FallbackPath string
	// DocsPath is the OpenAPI document served under /docs.
	DocsPath string
	// Version is reported by the health endpoint.
	Version string
}

func (d *Dependencies) fallbackPath() string {
	if d.FallbackPath == "" {
		return "/home"
	}
	return d.FallbackPath
}
