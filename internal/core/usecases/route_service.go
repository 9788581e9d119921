package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/ports"
	"github.com/wanderguide/wanderguide/internal/pkg/metrics"
)

// WaypointSource yields the ordered waypoints of an itinerary.
type WaypointSource interface {
	Waypoints(ctx context.Context, itineraryID string) ([]domain.Waypoint, error)
}

// RouteService relays ordered waypoints to the routing engine and converts
// its answer to kilometres and minutes.
type RouteService struct {
	waypoints WaypointSource
	engine    ports.RoutingEngine
	cache     ports.CacheService
	ttl       int
}

// NewRouteService creates a new RouteService. cache may be nil.
func NewRouteService(waypoints WaypointSource, engine ports.RoutingEngine, cache ports.CacheService, ttlSeconds int) *RouteService {
	return &RouteService{waypoints: waypoints, engine: engine, cache: cache, ttl: ttlSeconds}
}

// Plan routes an itinerary's waypoints for the given profile.
func (s *RouteService) Plan(ctx context.Context, itineraryID string, profile domain.TravelProfile) (*domain.RoutePlan, error) {
	wps, err := s.waypoints.Waypoints(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	plan, err := s.PlanWaypoints(ctx, profile, wps)
	if err != nil {
		return nil, err
	}
	plan.ItineraryID = itineraryID
	return plan, nil
}

// PlanWaypoints routes already ordered waypoints. Fewer than two waypoints
// need no route and return an empty plan without calling the engine.
func (s *RouteService) PlanWaypoints(ctx context.Context, profile domain.TravelProfile, wps []domain.Waypoint) (*domain.RoutePlan, error) {
	if _, err := domain.ParseProfile(string(profile)); err != nil || profile == "" {
		return nil, domain.ErrInvalidProfile
	}

	plan := &domain.RoutePlan{Profile: profile, Waypoints: wps, Path: []domain.GeoPoint{}}
	if len(wps) < 2 {
		return plan, nil
	}

	ctx, span := tracer.Start(ctx, "RouteService.PlanWaypoints")
	defer span.End()
	span.SetAttributes(
		attribute.String("route.profile", string(profile)),
		attribute.Int("route.waypoints", len(wps)),
	)

	points := Positions(wps)
	summary, err := readThrough(ctx, s.cache, "route", routeKey(profile, points), s.ttl, func() (*domain.RouteSummary, error) {
		start := time.Now()
		sum, err := s.engine.Route(ctx, profile, points)
		metrics.RoutingDuration.WithLabelValues(string(profile)).Observe(time.Since(start).Seconds())
		return sum, err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reason := "unavailable"
		if errors.Is(err, domain.ErrNoRoute) {
			reason = "no_route"
		}
		metrics.RoutingFailures.WithLabelValues(string(profile), reason).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		return nil, fmt.Errorf("%s route: %w", profile, err)
	}

	metrics.RoutesComputed.WithLabelValues(string(profile)).Inc()
	plan.DistanceKm = summary.DistanceMeters / 1000
	plan.DurationMin = summary.DurationSeconds / 60
	if summary.Path != nil {
		plan.Path = summary.Path
	}
	return plan, nil
}

func routeKey(profile domain.TravelProfile, points []domain.GeoPoint) string {
	h := sha256.New()
	for _, p := range points {
		h.Write([]byte(strconv.FormatFloat(p.Lat, 'f', 6, 64)))
		h.Write([]byte{','})
		h.Write([]byte(strconv.FormatFloat(p.Lon, 'f', 6, 64)))
		h.Write([]byte{';'})
	}
	return "route:" + string(profile) + ":" + hex.EncodeToString(h.Sum(nil)[:12])
}
