package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/wanderguide/wanderguide/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// legacyIDRoutes stay until clients have moved to slug lookups.
var legacyIDRoutes = []DeprecatedRoute{
	{Path: "/v1/cities/id/:id", SunsetDate: time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/cities/{slug}"},
	{Path: "/v1/pois/id/:id", SunsetDate: time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/pois/{slug}"},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(legacyIDRoutes))

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	get := func(path string, h fiber.Handler) { v1.Get(path, timeout.NewWithContext(h, requestTimeout)) }

	get("/countries", ListCountriesHandler(deps))
	get("/countries/:slug", GetCountryHandler(deps))

	// Static segments before :slug.
	get("/cities", ListCitiesHandler(deps))
	get("/cities/map", CitiesMapHandler(deps))
	get("/cities/id/:id", GetCityByIDHandler(deps))
	get("/cities/:slug", GetCityHandler(deps))
	get("/cities/:slug/map", CityMapHandler(deps))

	get("/pois", ListPoisHandler(deps))
	get("/pois/id/:id", GetPoiByIDHandler(deps))
	get("/pois/:slug", GetPoiHandler(deps))

	get("/itineraries", ListItinerariesHandler(deps))
	v1.Post("/itineraries", timeout.NewWithContext(CreateItineraryHandler(deps), requestTimeout))
	get("/itineraries/:id", GetItineraryHandler(deps))
	v1.Put("/itineraries/:id/entries", timeout.NewWithContext(ReplaceEntriesHandler(deps), requestTimeout))
	get("/itineraries/:id/waypoints", ItineraryWaypointsHandler(deps))
	get("/itineraries/:id/map", ItineraryMapHandler(deps))
	get("/itineraries/:id/route", ItineraryRouteHandler(deps))

	get("/flags", FlagHandler(deps))

	v1.Post("/uploads/presign", timeout.NewWithContext(PresignUploadHandler(deps), requestTimeout))
	v1.Post("/uploads/attach", timeout.NewWithContext(AttachUploadHandler(deps), requestTimeout))

	get("/preferences/:client_id", GetPreferencesHandler(deps))
	v1.Put("/preferences/:client_id", timeout.NewWithContext(PutPreferencesHandler(deps), requestTimeout))

	// Page model for the itinerary view
	app.Get("/itinerary/:id", timeout.NewWithContext(ItineraryPageHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, deps.DocsPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/itineraries/:id/route", websocket.New(RouteSocketHandler(deps)))
}
