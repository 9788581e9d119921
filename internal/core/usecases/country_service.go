package usecases

import (
	"context"
	"fmt"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/ports"
)

// CountryService handles country listings.
type CountryService struct {
	countries ports.CountryRepository
	cities    ports.CityRepository
	cache     ports.CacheService
	ttl       int
}

// NewCountryService creates a new CountryService. cache may be nil.
func NewCountryService(countries ports.CountryRepository, cities ports.CityRepository, cache ports.CacheService, ttlSeconds int) *CountryService {
	return &CountryService{countries: countries, cities: cities, cache: cache, ttl: ttlSeconds}
}

// List returns all countries ordered by name.
func (s *CountryService) List(ctx context.Context) ([]domain.Country, error) {
	return readThrough(ctx, s.cache, "countries_list", "countries:all", s.ttl, func() ([]domain.Country, error) {
		return s.countries.List(ctx)
	})
}

// GetBySlug returns a country together with its cities.
func (s *CountryService) GetBySlug(ctx context.Context, slug string) (*domain.Country, error) {
	return readThrough(ctx, s.cache, "country_slug", "countries:slug:"+slug, s.ttl, func() (*domain.Country, error) {
		country, err := s.countries.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		cities, err := s.cities.ListByCountry(ctx, country.ID)
		if err != nil {
			return nil, fmt.Errorf("cities of %s: %w", slug, err)
		}
		country.Cities = cities
		return country, nil
	})
}
