package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/ports"
	"github.com/wanderguide/wanderguide/internal/pkg/geospatial"
	"github.com/wanderguide/wanderguide/internal/pkg/logging"
	"github.com/wanderguide/wanderguide/internal/pkg/metrics"
)

var tracer = otel.Tracer("wanderguide/usecases")

// ItineraryService loads itineraries and turns their entries into ordered
// waypoints.
type ItineraryService struct {
	itineraries ports.ItineraryRepository
	cache       ports.CacheService
	events      ports.EventPublisher
	ttl         int
}

// NewItineraryService creates a new ItineraryService. cache and events may be nil.
func NewItineraryService(itineraries ports.ItineraryRepository, cache ports.CacheService, events ports.EventPublisher, ttlSeconds int) *ItineraryService {
	return &ItineraryService{itineraries: itineraries, cache: cache, events: events, ttl: ttlSeconds}
}

func itineraryKey(id string) string { return "itineraries:id:" + id }

// List returns itineraries newest first, with their entries.
func (s *ItineraryService) List(ctx context.Context, offset, limit int) ([]domain.Itinerary, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.itineraries.List(ctx, offset, limit)
}

// Get returns an itinerary with its entries in visit order.
// An unknown or malformed id yields domain.ErrNotFound.
func (s *ItineraryService) Get(ctx context.Context, id string) (*domain.Itinerary, error) {
	ctx, span := tracer.Start(ctx, "ItineraryService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("itinerary.id", id))

	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	it, err := readThrough(ctx, s.cache, "itinerary_id", itineraryKey(id), s.ttl, func() (*domain.Itinerary, error) {
		return s.itineraries.GetWithEntries(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load itinerary")
			return nil, fmt.Errorf("load itinerary %s: %w", id, err)
		}
		return nil, err
	}

	it.Entries = SortEntries(it.Entries)
	span.SetAttributes(attribute.Int("itinerary.entries", len(it.Entries)))
	return it, nil
}

// Waypoints returns the itinerary's stops ordered by visit order.
func (s *ItineraryService) Waypoints(ctx context.Context, id string) ([]domain.Waypoint, error) {
	it, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return AssembleWaypoints(it.Entries), nil
}

// Map returns the itinerary, its waypoints, the viewport that frames them and
// the straight-line length of the polyline joining them.
func (s *ItineraryService) Map(ctx context.Context, id string) (*domain.ItineraryMap, error) {
	it, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	wps := AssembleWaypoints(it.Entries)
	coords := Positions(wps)
	return &domain.ItineraryMap{
		Itinerary:      it,
		Waypoints:      wps,
		Viewport:       geospatial.FitViewport(coords, geospatial.OverviewFit()),
		StraightLineKm: geospatial.PathLength(coords),
	}, nil
}

// Create stores a new itinerary and its entries.
func (s *ItineraryService) Create(ctx context.Context, it *domain.Itinerary) error {
	if err := ValidateEntries(it.Entries); err != nil {
		return err
	}

	it.ID = uuid.NewString()
	it.CreatedAt = time.Now().UTC()
	for i := range it.Entries {
		it.Entries[i].ID = uuid.NewString()
		it.Entries[i].ItineraryID = it.ID
	}

	if err := s.itineraries.Create(ctx, it); err != nil {
		return fmt.Errorf("create itinerary: %w", err)
	}
	s.publish(ctx, it.ID, "created")
	return nil
}

// ReplaceEntries swaps the itinerary's entries for a new ordered set.
func (s *ItineraryService) ReplaceEntries(ctx context.Context, id string, entries []domain.ItineraryEntry) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	if err := ValidateEntries(entries); err != nil {
		return err
	}

	for i := range entries {
		entries[i].ID = uuid.NewString()
		entries[i].ItineraryID = id
	}
	if err := s.itineraries.ReplaceEntries(ctx, id, entries); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("replace entries of %s: %w", id, err)
	}

	invalidate(ctx, s.cache, itineraryKey(id))
	s.publish(ctx, id, "updated")
	return nil
}

func (s *ItineraryService) publish(ctx context.Context, id, kind string) {
	if s.events == nil {
		return
	}
	ev := &domain.ItineraryEvent{ItineraryID: id, Kind: kind, OccurredAt: time.Now().UTC()}
	if err := s.events.PublishItineraryEvent(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish itinerary event", "itinerary_id", id, "error", err)
		return
	}
	metrics.ItineraryEvents.WithLabelValues(kind).Inc()
}

// ValidateEntries checks that every entry references a POI and that visit
// orders are unique.
func ValidateEntries(entries []domain.ItineraryEntry) error {
	seen := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		if _, err := uuid.Parse(e.PoiID); err != nil {
			return fmt.Errorf("%w: poi_id %q is not a valid id", domain.ErrInvalidInput, e.PoiID)
		}
		if _, dup := seen[e.VisitOrder]; dup {
			return fmt.Errorf("%w: visit_order %d is used more than once", domain.ErrInvalidInput, e.VisitOrder)
		}
		seen[e.VisitOrder] = struct{}{}
	}
	return nil
}

// SortEntries returns a copy of entries ordered by visit order. Equal visit
// orders, which storage should never hold, fall back to entry id.
func SortEntries(entries []domain.ItineraryEntry) []domain.ItineraryEntry {
	sorted := make([]domain.ItineraryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].VisitOrder != sorted[j].VisitOrder {
			return sorted[i].VisitOrder < sorted[j].VisitOrder
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// AssembleWaypoints projects entries onto waypoints in visit order. Entries
// whose POI was not loaded are skipped.
func AssembleWaypoints(entries []domain.ItineraryEntry) []domain.Waypoint {
	wps := make([]domain.Waypoint, 0, len(entries))
	for _, e := range SortEntries(entries) {
		if e.Poi == nil {
			continue
		}
		wps = append(wps, domain.Waypoint{
			Order:    len(wps) + 1,
			Position: e.Poi.Location,
			Label:    e.Poi.Name,
			Address:  e.Poi.Address,
			Website:  e.Poi.Website,
			PoiID:    e.Poi.ID,
		})
	}
	return wps
}

// Positions returns the coordinates of waypoints, in order.
func Positions(wps []domain.Waypoint) []domain.GeoPoint {
	pts := make([]domain.GeoPoint, len(wps))
	for i, w := range wps {
		pts[i] = w.Position
	}
	return pts
}
