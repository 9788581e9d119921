package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/ports"
	"github.com/wanderguide/wanderguide/internal/pkg/geospatial"
)

// PoiPage is one page of a filtered POI listing and the viewport framing it.
type PoiPage struct {
	Pois     []domain.Poi    `json:"pois"`
	Total    int             `json:"total"`
	Viewport domain.Viewport `json:"viewport"`
}

// PoiService handles point-of-interest lookups.
type PoiService struct {
	pois  ports.PoiRepository
	cache ports.CacheService
	ttl   int
}

// NewPoiService creates a new PoiService. cache may be nil.
func NewPoiService(pois ports.PoiRepository, cache ports.CacheService, ttlSeconds int) *PoiService {
	return &PoiService{pois: pois, cache: cache, ttl: ttlSeconds}
}

// List returns a filtered page of POIs. The viewport is refitted for every
// filter so the map follows the visible set.
func (s *PoiService) List(ctx context.Context, f domain.PoiFilter) (*PoiPage, error) {
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}

	key := fmt.Sprintf("pois:list:%s:%s:%d:%d", f.CitySlug, f.Category, f.Offset, f.Limit)
	return readThrough(ctx, s.cache, "pois_list", key, s.ttl, func() (*PoiPage, error) {
		pois, total, err := s.pois.List(ctx, f)
		if err != nil {
			return nil, err
		}
		coords := make([]domain.GeoPoint, len(pois))
		for i, p := range pois {
			coords[i] = p.Location
		}
		return &PoiPage{
			Pois:     pois,
			Total:    total,
			Viewport: geospatial.FitViewport(coords, geospatial.MarkerFit()),
		}, nil
	})
}

// GetBySlug returns a POI with its category, tags, city and country.
func (s *PoiService) GetBySlug(ctx context.Context, slug string) (*domain.Poi, error) {
	return readThrough(ctx, s.cache, "poi_slug", "pois:slug:"+slug, s.ttl, func() (*domain.Poi, error) {
		return s.pois.GetBySlug(ctx, slug)
	})
}

// GetByID returns a POI by its UUID.
func (s *PoiService) GetByID(ctx context.Context, id string) (*domain.Poi, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.pois.GetByID(ctx, id)
}
