package http_test

import (
	"context"
	"time"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// ---- Mock repositories ----

type mockCountryRepo struct {
	listFn      func(ctx context.Context) ([]domain.Country, error)
	getBySlugFn func(ctx context.Context, slug string) (*domain.Country, error)
}

func (m *mockCountryRepo) Upsert(ctx context.Context, c *domain.Country) error { return nil }
func (m *mockCountryRepo) List(ctx context.Context) ([]domain.Country, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockCountryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Country, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, domain.ErrNotFound
}

type mockCityRepo struct {
	listFn      func(ctx context.Context) ([]domain.City, error)
	getBySlugFn func(ctx context.Context, slug string) (*domain.City, error)
	getByIDFn   func(ctx context.Context, id string) (*domain.City, error)
}

func (m *mockCityRepo) Upsert(ctx context.Context, c *domain.City) error { return nil }
func (m *mockCityRepo) List(ctx context.Context) ([]domain.City, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockCityRepo) ListByCountry(ctx context.Context, countryID string) ([]domain.City, error) {
	return nil, nil
}
func (m *mockCityRepo) GetBySlug(ctx context.Context, slug string) (*domain.City, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, domain.ErrNotFound
}
func (m *mockCityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockCityRepo) AddPicture(ctx context.Context, cityID, url string) error { return nil }

type mockPoiRepo struct {
	listFn       func(ctx context.Context, f domain.PoiFilter) ([]domain.Poi, int, error)
	listByCityFn func(ctx context.Context, cityID string) ([]domain.Poi, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.Poi, error)
}

func (m *mockPoiRepo) Upsert(ctx context.Context, p *domain.Poi) error { return nil }
func (m *mockPoiRepo) List(ctx context.Context, f domain.PoiFilter) ([]domain.Poi, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, 0, nil
}
func (m *mockPoiRepo) ListByCity(ctx context.Context, cityID string) ([]domain.Poi, error) {
	if m.listByCityFn != nil {
		return m.listByCityFn(ctx, cityID)
	}
	return nil, nil
}
func (m *mockPoiRepo) GetBySlug(ctx context.Context, slug string) (*domain.Poi, error) {
	return nil, domain.ErrNotFound
}
func (m *mockPoiRepo) GetByID(ctx context.Context, id string) (*domain.Poi, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockPoiRepo) SetImage(ctx context.Context, poiID, url string) error { return nil }

type mockItineraryRepo struct {
	createFn  func(ctx context.Context, it *domain.Itinerary) error
	listFn    func(ctx context.Context, offset, limit int) ([]domain.Itinerary, int, error)
	getFn     func(ctx context.Context, id string) (*domain.Itinerary, error)
	replaceFn func(ctx context.Context, id string, entries []domain.ItineraryEntry) error
}

func (m *mockItineraryRepo) Create(ctx context.Context, it *domain.Itinerary) error {
	if m.createFn != nil {
		return m.createFn(ctx, it)
	}
	return nil
}
func (m *mockItineraryRepo) List(ctx context.Context, offset, limit int) ([]domain.Itinerary, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, 0, nil
}
func (m *mockItineraryRepo) GetWithEntries(ctx context.Context, id string) (*domain.Itinerary, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockItineraryRepo) ReplaceEntries(ctx context.Context, id string, entries []domain.ItineraryEntry) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, id, entries)
	}
	return nil
}

// ---- Mock collaborators ----

type mockEngine struct {
	routeFn func(ctx context.Context, profile domain.TravelProfile, points []domain.GeoPoint) (*domain.RouteSummary, error)
}

func (m *mockEngine) Route(ctx context.Context, profile domain.TravelProfile, points []domain.GeoPoint) (*domain.RouteSummary, error) {
	if m.routeFn != nil {
		return m.routeFn(ctx, profile, points)
	}
	return &domain.RouteSummary{DistanceMeters: 1000, DurationSeconds: 600, Path: points}, nil
}

type mockFlags struct {
	flagFn func(ctx context.Context, name string) (string, error)
}

func (m *mockFlags) FlagURL(ctx context.Context, name string) (string, error) {
	if m.flagFn != nil {
		return m.flagFn(ctx, name)
	}
	return "https://flagcdn.com/es.svg", nil
}

type memStore struct {
	data map[string][]byte
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	s.data[key] = value
	return nil
}

type mockStorage struct{}

func (mockStorage) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "https://s3.example.com/guide-media/" + key + "?X-Amz-Signature=abc", nil
}
func (mockStorage) Head(ctx context.Context, key string) (int64, error) { return 1024, nil }
func (mockStorage) Delete(ctx context.Context, key string) error       { return nil }
func (mockStorage) PublicURL(key string) string                        { return "https://media.example.com/" + key }

type mockStarter struct {
	started []domain.AttachRequest
}

func (m *mockStarter) StartAttach(ctx context.Context, req domain.AttachRequest) (string, error) {
	m.started = append(m.started, req)
	return "run-1", nil
}

type failingPinger struct{ err error }

func (p failingPinger) Ping(ctx context.Context) error { return p.err }
