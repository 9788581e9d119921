package ports

import (
	"context"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// CountryRepository defines persistence operations for countries.
type CountryRepository interface {
	Upsert(ctx context.Context, c *domain.Country) error
	List(ctx context.Context) ([]domain.Country, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Country, error)
}

// CityRepository defines persistence operations for cities.
type CityRepository interface {
	Upsert(ctx context.Context, c *domain.City) error
	List(ctx context.Context) ([]domain.City, error)
	ListByCountry(ctx context.Context, countryID string) ([]domain.City, error)
	GetBySlug(ctx context.Context, slug string) (*domain.City, error)
	GetByID(ctx context.Context, id string) (*domain.City, error)
	AddPicture(ctx context.Context, cityID, url string) error
}

// PoiRepository defines persistence operations for points of interest.
type PoiRepository interface {
	Upsert(ctx context.Context, p *domain.Poi) error
	List(ctx context.Context, f domain.PoiFilter) ([]domain.Poi, int, error)
	ListByCity(ctx context.Context, cityID string) ([]domain.Poi, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Poi, error)
	GetByID(ctx context.Context, id string) (*domain.Poi, error)
	SetImage(ctx context.Context, poiID, url string) error
}

// ItineraryRepository defines persistence operations for itineraries.
// GetWithEntries returns entries joined with their POIs.
type ItineraryRepository interface {
	Create(ctx context.Context, it *domain.Itinerary) error
	List(ctx context.Context, offset, limit int) ([]domain.Itinerary, int, error)
	GetWithEntries(ctx context.Context, id string) (*domain.Itinerary, error)
	ReplaceEntries(ctx context.Context, itineraryID string, entries []domain.ItineraryEntry) error
}
