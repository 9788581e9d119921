package usecases

import (
	"context"
	"errors"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/pkg/logging"
)

// WarmedProfiles are planned whenever an itinerary changes.
var WarmedProfiles = []domain.TravelProfile{domain.ProfileFoot, domain.ProfileBike, domain.ProfileCar}

// RouteWarmer precomputes routes after itinerary events so the first map
// view after an edit is served from the route cache.
type RouteWarmer struct {
	waypoints WaypointSource
	planner   RoutePlanner
}

// NewRouteWarmer creates a RouteWarmer.
func NewRouteWarmer(waypoints WaypointSource, planner RoutePlanner) *RouteWarmer {
	return &RouteWarmer{waypoints: waypoints, planner: planner}
}

// Handle plans every warmed profile for the event's itinerary. A deleted
// itinerary and unroutable profiles are not failures. Any other error is
// returned so the event is redelivered.
func (w *RouteWarmer) Handle(ctx context.Context, ev *domain.ItineraryEvent) error {
	wps, err := w.waypoints.Waypoints(ctx, ev.ItineraryID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(wps) < 2 {
		return nil
	}

	var firstErr error
	for _, profile := range WarmedProfiles {
		_, err := w.planner.PlanWaypoints(ctx, profile, wps)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrNoRoute):
			logging.FromContext(ctx).Debug("no route to warm", "itinerary_id", ev.ItineraryID, "profile", profile)
		default:
			logging.FromContext(ctx).Warn("route warm failed", "itinerary_id", ev.ItineraryID, "profile", profile, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
