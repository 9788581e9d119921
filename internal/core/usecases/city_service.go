package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/ports"
	"github.com/wanderguide/wanderguide/internal/pkg/geospatial"
)

// CityService handles city listings and city maps.
type CityService struct {
	cities ports.CityRepository
	pois   ports.PoiRepository
	cache  ports.CacheService
	ttl    int
}

// NewCityService creates a new CityService. cache may be nil.
func NewCityService(cities ports.CityRepository, pois ports.PoiRepository, cache ports.CacheService, ttlSeconds int) *CityService {
	return &CityService{cities: cities, pois: pois, cache: cache, ttl: ttlSeconds}
}

// List returns every city, most POIs first. Cities with the same POI count
// keep their alphabetical order.
func (s *CityService) List(ctx context.Context) ([]domain.City, error) {
	return readThrough(ctx, s.cache, "cities_list", "cities:popular", s.ttl, func() ([]domain.City, error) {
		cities, err := s.cities.List(ctx)
		if err != nil {
			return nil, err
		}
		SortByPopularity(cities)
		return cities, nil
	})
}

// SortByPopularity orders cities by POI count descending, stably.
func SortByPopularity(cities []domain.City) {
	sort.SliceStable(cities, func(i, j int) bool {
		return cities[i].PoiCount > cities[j].PoiCount
	})
}

// GetBySlug returns a city with its country and POIs.
func (s *CityService) GetBySlug(ctx context.Context, slug string) (*domain.City, error) {
	return readThrough(ctx, s.cache, "city_slug", "cities:slug:"+slug, s.ttl, func() (*domain.City, error) {
		city, err := s.cities.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		return s.withPois(ctx, city)
	})
}

// GetByID returns a city by its UUID.
func (s *CityService) GetByID(ctx context.Context, id string) (*domain.City, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	city, err := s.cities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withPois(ctx, city)
}

func (s *CityService) withPois(ctx context.Context, city *domain.City) (*domain.City, error) {
	pois, err := s.pois.ListByCity(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("pois of city %s: %w", city.Slug, err)
	}
	city.Pois = pois
	city.PoiCount = len(pois)
	return city, nil
}

// Overview returns a marker per city framed with a 10% margin.
func (s *CityService) Overview(ctx context.Context) (*domain.MapPoints, error) {
	cities, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]domain.MapPoint, 0, len(cities))
	for _, c := range cities {
		points = append(points, domain.MapPoint{Position: c.Location, Label: c.Name, Slug: c.Slug})
	}
	return framePoints(points, geospatial.OverviewFit()), nil
}

// MapPoints returns the markers of a city: its POIs, or the city itself when
// it has none.
func (s *CityService) MapPoints(ctx context.Context, slug string) (*domain.MapPoints, error) {
	city, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var points []domain.MapPoint
	for _, p := range city.Pois {
		points = append(points, domain.MapPoint{Position: p.Location, Label: p.Name, Slug: p.Slug})
	}
	if len(points) == 0 {
		points = []domain.MapPoint{{Position: city.Location, Label: city.Name, Slug: city.Slug}}
	}
	return framePoints(points, geospatial.MarkerFit()), nil
}

func framePoints(points []domain.MapPoint, opts geospatial.FitOptions) *domain.MapPoints {
	coords := make([]domain.GeoPoint, len(points))
	for i, p := range points {
		coords[i] = p.Position
	}
	return &domain.MapPoints{Points: points, Viewport: geospatial.FitViewport(coords, opts)}
}
