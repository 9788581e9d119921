package usecases

import (
	"context"
	"errors"
	"sync"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/pkg/metrics"
)

// RoutePlanner computes a plan for ordered waypoints.
type RoutePlanner interface {
	PlanWaypoints(ctx context.Context, profile domain.TravelProfile, wps []domain.Waypoint) (*domain.RoutePlan, error)
}

// RouteUpdate is delivered to a session's listener when a request completes.
// Exactly one of Plan or Error is set.
type RouteUpdate struct {
	Generation uint64            `json:"generation"`
	Plan       *domain.RoutePlan `json:"plan,omitempty"`
	Code       string            `json:"code,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// RouteSession keeps one client's route up to date as its profile and
// waypoints change. Only the most recent request may deliver a result: each
// request bumps the generation and cancels the one in flight, and results
// carrying an older generation are dropped.
type RouteSession struct {
	planner RoutePlanner
	emit    func(RouteUpdate)
	parent  context.Context

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	profile   domain.TravelProfile
	waypoints []domain.Waypoint
	closed    bool
	wg        sync.WaitGroup
}

// NewRouteSession creates a session starting on the foot profile. emit is
// called with the session lock held, so updates arrive in generation order.
func NewRouteSession(ctx context.Context, planner RoutePlanner, emit func(RouteUpdate)) *RouteSession {
	return &RouteSession{planner: planner, emit: emit, parent: ctx, profile: domain.ProfileFoot}
}

// SetProfile switches the travel profile and re-plans the same waypoints.
func (s *RouteSession) SetProfile(profile domain.TravelProfile) (uint64, error) {
	if _, err := domain.ParseProfile(string(profile)); err != nil || profile == "" {
		return 0, domain.ErrInvalidProfile
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
	return s.requestLocked(), nil
}

// SetWaypoints replaces the waypoints and re-plans with the current profile.
func (s *RouteSession) SetWaypoints(wps []domain.Waypoint) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waypoints = wps
	return s.requestLocked()
}

// Profile returns the current travel profile.
func (s *RouteSession) Profile() domain.TravelProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *RouteSession) requestLocked() uint64 {
	if s.closed {
		return s.gen
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen

	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	profile, wps := s.profile, s.waypoints

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		plan, err := s.planner.PlanWaypoints(ctx, profile, wps)
		s.deliver(gen, plan, err)
	}()
	return gen
}

func (s *RouteSession) deliver(gen uint64, plan *domain.RoutePlan, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen {
		metrics.StaleRouteResults.Inc()
		return
	}

	u := RouteUpdate{Generation: gen, Plan: plan}
	if err != nil {
		u.Plan = nil
		u.Code = RoutingErrorCode(err)
		u.Error = err.Error()
	}
	s.emit(u)
}

// Close cancels the request in flight and waits for pending goroutines.
func (s *RouteSession) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// RoutingErrorCode classifies a routing error for clients.
func RoutingErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoRoute):
		return "routing_failed"
	case errors.Is(err, domain.ErrInvalidProfile):
		return "bad_request"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "routing_unavailable"
	}
}
