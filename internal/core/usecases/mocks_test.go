package usecases_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// --- Mock CountryRepository ---

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

// --- Mock CityRepository ---

type mockCityRepo struct {
	listFn          func(ctx context.Context) ([]domain.City, error)
	listByCountryFn func(ctx context.Context, countryID string) ([]domain.City, error)
	getBySlugFn     func(ctx context.Context, slug string) (*domain.City, error)
	getByIDFn       func(ctx context.Context, id string) (*domain.City, error)
	addPictureFn    func(ctx context.Context, cityID, url string) error
}

func (m *mockCityRepo) Upsert(ctx context.Context, c *domain.City) error { return nil }
func (m *mockCityRepo) List(ctx context.Context) ([]domain.City, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockCityRepo) ListByCountry(ctx context.Context, countryID string) ([]domain.City, error) {
	if m.listByCountryFn != nil {
		return m.listByCountryFn(ctx, countryID)
	}
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
func (m *mockCityRepo) AddPicture(ctx context.Context, cityID, url string) error {
	if m.addPictureFn != nil {
		return m.addPictureFn(ctx, cityID, url)
	}
	return nil
}

// --- Mock PoiRepository ---

type mockPoiRepo struct {
	listFn       func(ctx context.Context, f domain.PoiFilter) ([]domain.Poi, int, error)
	listByCityFn func(ctx context.Context, cityID string) ([]domain.Poi, error)
	getBySlugFn  func(ctx context.Context, slug string) (*domain.Poi, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.Poi, error)
	setImageFn   func(ctx context.Context, poiID, url string) error
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
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, domain.ErrNotFound
}
func (m *mockPoiRepo) GetByID(ctx context.Context, id string) (*domain.Poi, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockPoiRepo) SetImage(ctx context.Context, poiID, url string) error {
	if m.setImageFn != nil {
		return m.setImageFn(ctx, poiID, url)
	}
	return nil
}

// --- Mock ItineraryRepository ---

type mockItineraryRepo struct {
	createFn         func(ctx context.Context, it *domain.Itinerary) error
	listFn           func(ctx context.Context, offset, limit int) ([]domain.Itinerary, int, error)
	getWithEntriesFn func(ctx context.Context, id string) (*domain.Itinerary, error)
	replaceFn        func(ctx context.Context, id string, entries []domain.ItineraryEntry) error
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
	if m.getWithEntriesFn != nil {
		return m.getWithEntriesFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockItineraryRepo) ReplaceEntries(ctx context.Context, id string, entries []domain.ItineraryEntry) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, id, entries)
	}
	return nil
}

// --- Mock RoutingEngine ---

type engineCall struct {
	profile domain.TravelProfile
	points  []domain.GeoPoint
}

type mockEngine struct {
	mu     sync.Mutex
	calls  []engineCall
	routeFn func(ctx context.Context, profile domain.TravelProfile, points []domain.GeoPoint) (*domain.RouteSummary, error)
}

func (m *mockEngine) Route(ctx context.Context, profile domain.TravelProfile, points []domain.GeoPoint) (*domain.RouteSummary, error) {
	m.mu.Lock()
	m.calls = append(m.calls, engineCall{profile: profile, points: append([]domain.GeoPoint(nil), points...)})
	m.mu.Unlock()
	if m.routeFn != nil {
		return m.routeFn(ctx, profile, points)
	}
	return &domain.RouteSummary{DistanceMeters: 1500, DurationSeconds: 1200}, nil
}

// --- Mock CacheService / KeyValueStore ---

var errCacheMiss = errors.New("cache miss")

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttlSeconds
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.ItineraryEvent
}

func (m *mockPublisher) PublishItineraryEvent(ctx context.Context, ev *domain.ItineraryEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return nil
}

// --- Mock FlagDirectory ---

type mockFlags struct {
	calls  int
	flagFn func(ctx context.Context, name string) (string, error)
}

func (m *mockFlags) FlagURL(ctx context.Context, name string) (string, error) {
	m.calls++
	if m.flagFn != nil {
		return m.flagFn(ctx, name)
	}
	return "https://flagcdn.com/" + name + ".svg", nil
}

// --- Mock MediaStorage / MediaWorkflowStarter ---

type mockStorage struct {
	presignFn func(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	headFn    func(ctx context.Context, key string) (int64, error)
	deleted   []string
}

func (m *mockStorage) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	if m.presignFn != nil {
		return m.presignFn(ctx, key, contentType, expires)
	}
	return "https://bucket.example.com/" + key + "?X-Amz-Signature=abc", nil
}
func (m *mockStorage) Head(ctx context.Context, key string) (int64, error) {
	if m.headFn != nil {
		return m.headFn(ctx, key)
	}
	return 1024, nil
}
func (m *mockStorage) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}
func (m *mockStorage) PublicURL(key string) string { return "https://media.example.com/" + key }

type mockStarter struct {
	started []domain.AttachRequest
}

func (m *mockStarter) StartAttach(ctx context.Context, req domain.AttachRequest) (string, error) {
	m.started = append(m.started, req)
	return "run-1", nil
}
