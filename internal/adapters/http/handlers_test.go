package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/wanderguide/wanderguide/internal/adapters/http"
	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/usecases"
)

const (
	itineraryID = "6f1c2a8e-3b4d-4e5f-9a6b-7c8d9e0f1a2b"
	poiGugg     = "0b7e1c44-5a0e-4d7c-9f57-2f6f3a1d9e10"
	poiCasco    = "2c9d3e55-6b1f-4e8d-8a68-3a7a4b2eaf21"
)

// bilbaoItinerary has its entries stored out of visit order.
func bilbaoItinerary() *domain.Itinerary {
	return &domain.Itinerary{
		ID:   itineraryID,
		Name: "Bilbao in a day",
		Entries: []domain.ItineraryEntry{
			{ID: "e2", PoiID: poiGugg, VisitOrder: 2, Poi: &domain.Poi{
				ID: poiGugg, Name: "Guggenheim", Location: domain.GeoPoint{Lat: 43.2687, Lon: -2.9340},
			}},
			{ID: "e1", PoiID: poiCasco, VisitOrder: 1, Poi: &domain.Poi{
				ID: poiCasco, Name: "Casco Viejo", Location: domain.GeoPoint{Lat: 43.2590, Lon: -2.9236},
			}},
		},
	}
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

type depsOpts struct {
	countries   *mockCountryRepo
	cities      *mockCityRepo
	pois        *mockPoiRepo
	itineraries *mockItineraryRepo
	engine      *mockEngine
	flags       *mockFlags
	store       *memStore
}

func makeDeps(opts ...func(*depsOpts)) *handler.Dependencies {
	o := &depsOpts{
		countries:   &mockCountryRepo{},
		cities:      &mockCityRepo{},
		pois:        &mockPoiRepo{},
		itineraries: &mockItineraryRepo{},
		engine:      &mockEngine{},
		flags:       &mockFlags{},
		store:       &memStore{},
	}
	for _, fn := range opts {
		fn(o)
	}

	itineraries := usecases.NewItineraryService(o.itineraries, nil, nil, 0)
	return &handler.Dependencies{
		Countries:   usecases.NewCountryService(o.countries, o.cities, nil, 0),
		Cities:      usecases.NewCityService(o.cities, o.pois, nil, 0),
		Pois:        usecases.NewPoiService(o.pois, nil, 0),
		Itineraries: itineraries,
		Routes:      usecases.NewRouteService(itineraries, o.engine, nil, 0),
		Flags:       usecases.NewFlagService(o.flags, nil, 0),
		Media:       usecases.NewMediaService(nil, nil, o.cities, o.pois, 500000, 15*time.Minute),
		Preferences: usecases.NewPreferenceService(o.store, domain.ThemeLight),
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func decodeError(t *testing.T, body io.Reader) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(readBody(t, body), &apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return apiErr
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ---- Places ----

func TestListCountries_Pagination(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.countries.listFn = func(ctx context.Context) ([]domain.Country, error) {
			countries := make([]domain.Country, 5)
			for i := range countries {
				countries[i] = domain.Country{ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("Country %d", i)}
			}
			return countries, nil
		}
	})
	app := setupApp(deps)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/countries?offset=2&limit=2", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Country `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 5 || result.Pagination.Offset != 2 {
		t.Errorf("unexpected pagination %+v", result.Pagination)
	}
	if len(result.Data) != 2 || result.Data[0].Name != "Country 2" {
		t.Errorf("unexpected page %+v", result.Data)
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected next link, got %q", link)
	}
}

func TestGetCountry_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/countries/atlantis", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %s", apiErr.Code)
	}
}

func TestListCities_MostPoisFirst(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.cities.listFn = func(ctx context.Context) ([]domain.City, error) {
			return []domain.City{
				{Slug: "bilbao", Name: "Bilbao", PoiCount: 3},
				{Slug: "madrid", Name: "Madrid", PoiCount: 12},
				{Slug: "sevilla", Name: "Sevilla", PoiCount: 3},
			}, nil
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/cities", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data []domain.City `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	var got []string
	for _, c := range result.Data {
		got = append(got, c.Slug)
	}
	if strings.Join(got, ",") != "madrid,bilbao,sevilla" {
		t.Errorf("unexpected order %v", got)
	}
}

func TestCityMap_FallsBackToCity(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.cities.getBySlugFn = func(ctx context.Context, slug string) (*domain.City, error) {
			return &domain.City{ID: "c1", Slug: slug, Name: "Getxo", Location: domain.GeoPoint{Lat: 43.35, Lon: -3.01}}, nil
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/cities/getxo/map", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var mp domain.MapPoints
	json.NewDecoder(resp.Body).Decode(&mp)
	if len(mp.Points) != 1 || mp.Points[0].Label != "Getxo" {
		t.Fatalf("expected the city itself as the only point, got %+v", mp.Points)
	}
	if mp.Viewport.Zoom != 15 || mp.Viewport.Center != (domain.GeoPoint{Lat: 43.35, Lon: -3.01}) {
		t.Errorf("unexpected viewport %+v", mp.Viewport)
	}
}

func TestGetCityByID_Deprecated(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.cities.getByIDFn = func(ctx context.Context, id string) (*domain.City, error) {
			return &domain.City{ID: id, Slug: "bilbao", Name: "Bilbao"}, nil
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/cities/id/"+itineraryID, nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if resp.Header.Get("Sunset") == "" {
		t.Error("expected Sunset header")
	}
	if !strings.Contains(resp.Header.Get("Link"), "successor-version") {
		t.Errorf("expected successor link, got %q", resp.Header.Get("Link"))
	}
}

func TestGetCityBySlug_NotDeprecated(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.cities.getBySlugFn = func(ctx context.Context, slug string) (*domain.City, error) {
			return &domain.City{ID: "c1", Slug: slug, Name: "Bilbao"}, nil
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/cities/bilbao", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "" {
		t.Error("slug route must not be marked deprecated")
	}
}

func TestListPois_Viewport(t *testing.T) {
	var gotFilter domain.PoiFilter
	deps := makeDeps(func(o *depsOpts) {
		o.pois.listFn = func(ctx context.Context, f domain.PoiFilter) ([]domain.Poi, int, error) {
			gotFilter = f
			return []domain.Poi{
				{Slug: "guggenheim", Location: domain.GeoPoint{Lat: 43.2687, Lon: -2.9340}},
				{Slug: "casco-viejo", Location: domain.GeoPoint{Lat: 43.2590, Lon: -2.9236}},
			}, 2, nil
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/pois?city=bilbao&category=Museum", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotFilter.CitySlug != "bilbao" || gotFilter.Category != "Museum" || gotFilter.Limit != 50 {
		t.Errorf("unexpected filter %+v", gotFilter)
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, "city=bilbao") || !strings.Contains(link, "offset=0") {
		t.Errorf("expected filters kept in Link header, got %q", link)
	}

	var result struct {
		Data     []domain.Poi    `json:"data"`
		Viewport domain.Viewport `json:"viewport"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 pois, got %d", len(result.Data))
	}
	if result.Viewport.Bounds == nil || result.Viewport.Padding == nil {
		t.Fatalf("expected bounds and pixel padding, got %+v", result.Viewport)
	}
	if result.Viewport.Padding.Top != 100 {
		t.Errorf("expected 100px padding, got %d", result.Viewport.Padding.Top)
	}
}

// ---- Itineraries ----

func TestItineraryWaypoints_VisitOrder(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.itineraries.getFn = func(ctx context.Context, id string) (*domain.Itinerary, error) {
			return bilbaoItinerary(), nil
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/itineraries/"+itineraryID+"/waypoints", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var wps []domain.Waypoint
	json.NewDecoder(resp.Body).Decode(&wps)
	if len(wps) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(wps))
	}
	if wps[0].Label != "Casco Viejo" || wps[1].Label != "Guggenheim" {
		t.Errorf("expected Casco Viejo then Guggenheim, got %s then %s", wps[0].Label, wps[1].Label)
	}
}

func TestGetItinerary_Errors(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.itineraries.getFn = func(ctx context.Context, id string) (*domain.Itinerary, error) {
			return nil, errors.New("connection reset")
		}
	})
	app := setupApp(deps)

	tests := []struct {
		path string
		want int
	}{
		{"/v1/itineraries/not-a-uuid", 404},
		{"/v1/itineraries/" + itineraryID, 500},
	}
	for _, tt := range tests {
		resp, _ := app.Test(httptest.NewRequest("GET", tt.path, nil), -1)
		if resp.StatusCode != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, resp.StatusCode)
		}
	}
}

func TestItineraryMap_Viewport(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.itineraries.getFn = func(ctx context.Context, id string) (*domain.Itinerary, error) {
			return bilbaoItinerary(), nil
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/itineraries/"+itineraryID+"/map", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var m domain.ItineraryMap
	json.NewDecoder(resp.Body).Decode(&m)
	if m.Viewport.Bounds == nil {
		t.Fatal("expected bounds for two distinct points")
	}
	if m.StraightLineKm <= 0 {
		t.Errorf("expected a positive straight-line distance, got %f", m.StraightLineKm)
	}
}

func TestCreateItinerary(t *testing.T) {
	var stored *domain.Itinerary
	deps := makeDeps(func(o *depsOpts) {
		o.itineraries.createFn = func(ctx context.Context, it *domain.Itinerary) error {
			stored = it
			return nil
		}
	})
	app := setupApp(deps)

	body := fmt.Sprintf(`{"name":"Bilbao in a day","entries":[{"poi_id":%q,"visit_order":1},{"poi_id":%q,"visit_order":2}]}`, poiCasco, poiGugg)
	resp, _ := app.Test(jsonRequest("POST", "/v1/itineraries", body), -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	if stored == nil || len(stored.Entries) != 2 {
		t.Fatalf("expected itinerary with 2 entries to be stored, got %+v", stored)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/itineraries/"+stored.ID {
		t.Errorf("unexpected Location %q", loc)
	}
}

func TestCreateItinerary_Invalid(t *testing.T) {
	app := setupApp(makeDeps())

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing name", `{"entries":[]}`},
		{"bad poi id", `{"name":"x","entries":[{"poi_id":"nope","visit_order":1}]}`},
		{"duplicate visit order", fmt.Sprintf(`{"name":"x","entries":[{"poi_id":%q,"visit_order":1},{"poi_id":%q,"visit_order":1}]}`, poiCasco, poiGugg)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := app.Test(jsonRequest("POST", "/v1/itineraries", tt.body), -1)
			if resp.StatusCode != 400 {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if apiErr := decodeError(t, resp.Body); apiErr.Code != "bad_request" {
				t.Errorf("expected bad_request, got %s", apiErr.Code)
			}
		})
	}
}

func TestReplaceEntries_NotFound(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.itineraries.replaceFn = func(ctx context.Context, id string, entries []domain.ItineraryEntry) error {
			return domain.ErrNotFound
		}
	})
	app := setupApp(deps)

	body := fmt.Sprintf(`{"entries":[{"poi_id":%q,"visit_order":1}]}`, poiCasco)
	resp, _ := app.Test(jsonRequest("PUT", "/v1/itineraries/"+itineraryID+"/entries", body), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestItineraryRoute(t *testing.T) {
	var gotProfile domain.TravelProfile
	var gotPoints []domain.GeoPoint
	deps := makeDeps(func(o *depsOpts) {
		o.itineraries.getFn = func(ctx context.Context, id string) (*domain.Itinerary, error) {
			return bilbaoItinerary(), nil
		}
		o.engine.routeFn = func(ctx context.Context, profile domain.TravelProfile, points []domain.GeoPoint) (*domain.RouteSummary, error) {
			gotProfile, gotPoints = profile, points
			return &domain.RouteSummary{DistanceMeters: 4250, DurationSeconds: 3000, Path: points}, nil
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/itineraries/"+itineraryID+"/route?profile=car", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var plan domain.RoutePlan
	json.NewDecoder(resp.Body).Decode(&plan)
	if plan.DistanceKm != 4.25 || plan.DurationMin != 50 {
		t.Errorf("expected 4.25 km / 50 min, got %v km / %v min", plan.DistanceKm, plan.DurationMin)
	}
	if gotProfile != domain.ProfileCar {
		t.Errorf("expected car profile, got %s", gotProfile)
	}
	if len(gotPoints) != 2 || gotPoints[0].Lat != 43.2590 {
		t.Errorf("expected waypoints in visit order, got %+v", gotPoints)
	}
}

func TestItineraryRoute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		engine   error
		wantCode int
		wantErr  string
	}{
		{"invalid profile", "?profile=plane", nil, 400, "bad_request"},
		{"no route", "", domain.ErrNoRoute, 422, "routing_failed"},
		{"engine down", "?profile=bike", domain.ErrRoutingUnavailable, 502, "routing_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := makeDeps(func(o *depsOpts) {
				o.itineraries.getFn = func(ctx context.Context, id string) (*domain.Itinerary, error) {
					return bilbaoItinerary(), nil
				}
				o.engine.routeFn = func(ctx context.Context, profile domain.TravelProfile, points []domain.GeoPoint) (*domain.RouteSummary, error) {
					return nil, tt.engine
				}
			})
			app := setupApp(deps)

			resp, _ := app.Test(httptest.NewRequest("GET", "/v1/itineraries/"+itineraryID+"/route"+tt.query, nil), -1)
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, resp.StatusCode)
			}
			if apiErr := decodeError(t, resp.Body); apiErr.Code != tt.wantErr {
				t.Errorf("expected %s, got %s", tt.wantErr, apiErr.Code)
			}
		})
	}
}

func TestItineraryPage(t *testing.T) {
	t.Run("not found redirects to fallback", func(t *testing.T) {
		app := setupApp(makeDeps())
		resp, _ := app.Test(httptest.NewRequest("GET", "/itinerary/"+itineraryID, nil), -1)
		if resp.StatusCode != 302 {
			t.Fatalf("expected 302, got %d", resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/home" {
			t.Errorf("expected redirect to /home, got %q", loc)
		}
	})

	t.Run("custom fallback", func(t *testing.T) {
		deps := makeDeps()
		deps.FallbackPath = "/explore"
		app := setupApp(deps)
		resp, _ := app.Test(httptest.NewRequest("GET", "/itinerary/garbage", nil), -1)
		if loc := resp.Header.Get("Location"); resp.StatusCode != 302 || loc != "/explore" {
			t.Errorf("expected 302 to /explore, got %d %q", resp.StatusCode, loc)
		}
	})

	t.Run("fetch failure shows error", func(t *testing.T) {
		deps := makeDeps(func(o *depsOpts) {
			o.itineraries.getFn = func(ctx context.Context, id string) (*domain.Itinerary, error) {
				return nil, errors.New("timeout")
			}
		})
		app := setupApp(deps)
		resp, _ := app.Test(httptest.NewRequest("GET", "/itinerary/"+itineraryID, nil), -1)
		if resp.StatusCode != 500 {
			t.Fatalf("expected 500, got %d", resp.StatusCode)
		}
		if apiErr := decodeError(t, resp.Body); !strings.Contains(apiErr.Message, "Error loading itinerary") {
			t.Errorf("unexpected message %q", apiErr.Message)
		}
	})

	t.Run("renders with client theme", func(t *testing.T) {
		store := &memStore{data: map[string][]byte{"prefs:client-1:theme": []byte("dark")}}
		deps := makeDeps(func(o *depsOpts) {
			o.store = store
			o.itineraries.getFn = func(ctx context.Context, id string) (*domain.Itinerary, error) {
				return bilbaoItinerary(), nil
			}
		})
		app := setupApp(deps)
		resp, _ := app.Test(httptest.NewRequest("GET", "/itinerary/"+itineraryID+"?client_id=client-1", nil), -1)
		if resp.StatusCode != 200 {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var page struct {
			Waypoints []domain.Waypoint `json:"waypoints"`
			Theme     string            `json:"theme"`
		}
		json.NewDecoder(resp.Body).Decode(&page)
		if page.Theme != "dark" {
			t.Errorf("expected dark theme, got %q", page.Theme)
		}
		if len(page.Waypoints) != 2 || page.Waypoints[0].Label != "Casco Viejo" {
			t.Errorf("unexpected waypoints %+v", page.Waypoints)
		}
	})
}

// ---- Flags ----

func TestFlag(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		lookup   error
		wantCode int
	}{
		{"missing name", "", nil, 400},
		{"found", "?countryName=Spain", nil, 302},
		{"unknown", "?countryName=Atlantis", domain.ErrNotFound, 404},
		{"upstream failure", "?countryName=Spain", errors.New("boom"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := makeDeps(func(o *depsOpts) {
				o.flags.flagFn = func(ctx context.Context, name string) (string, error) {
					if tt.lookup != nil {
						return "", tt.lookup
					}
					return "https://flagcdn.com/es.svg", nil
				}
			})
			app := setupApp(deps)

			resp, _ := app.Test(httptest.NewRequest("GET", "/v1/flags"+tt.query, nil), -1)
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, resp.StatusCode)
			}
			if tt.wantCode == 302 && resp.Header.Get("Location") != "https://flagcdn.com/es.svg" {
				t.Errorf("unexpected Location %q", resp.Header.Get("Location"))
			}
		})
	}
}

// ---- Media ----

func TestPresign_Unavailable(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(jsonRequest("POST", "/v1/uploads/presign", `{"file_name":"a.jpg","content_type":"image/jpeg","size":1000}`), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestPresign(t *testing.T) {
	deps := makeDeps()
	deps.Media = usecases.NewMediaService(mockStorage{}, nil, &mockCityRepo{}, &mockPoiRepo{}, 500000, 15*time.Minute)
	app := setupApp(deps)

	resp, _ := app.Test(jsonRequest("POST", "/v1/uploads/presign", `{"file_name":"bilbao.png","content_type":"image/png","size":2048}`), -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	var ticket domain.UploadTicket
	json.NewDecoder(resp.Body).Decode(&ticket)
	if !strings.HasPrefix(ticket.Key, "uploads/") || !strings.HasSuffix(ticket.Key, ".png") {
		t.Errorf("unexpected key %q", ticket.Key)
	}
	if ticket.FileURL != "https://media.example.com/"+ticket.Key {
		t.Errorf("unexpected file url %q", ticket.FileURL)
	}

	resp, _ = app.Test(jsonRequest("POST", "/v1/uploads/presign", `{"file_name":"notes.pdf","content_type":"application/pdf","size":2048}`), -1)
	if resp.StatusCode != 400 {
		t.Errorf("expected 400 for pdf, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(jsonRequest("POST", "/v1/uploads/presign", `{"file_name":"huge.jpg","content_type":"image/jpeg","size":600000}`), -1)
	if resp.StatusCode != 400 {
		t.Errorf("expected 400 for oversize file, got %d", resp.StatusCode)
	}
}

func TestAttach(t *testing.T) {
	starter := &mockStarter{}
	cities := &mockCityRepo{getByIDFn: func(ctx context.Context, id string) (*domain.City, error) {
		return &domain.City{ID: id}, nil
	}}
	deps := makeDeps()
	deps.Media = usecases.NewMediaService(mockStorage{}, starter, cities, &mockPoiRepo{}, 500000, 15*time.Minute)
	app := setupApp(deps)

	body := fmt.Sprintf(`{"key":"uploads/2026/10/a.jpg","target":"city","target_id":%q}`, itineraryID)
	resp, _ := app.Test(jsonRequest("POST", "/v1/uploads/attach", body), -1)
	if resp.StatusCode != 202 {
		t.Fatalf("expected 202, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	if len(starter.started) != 1 || starter.started[0].Target != domain.MediaTargetCity {
		t.Errorf("expected one city attach to start, got %+v", starter.started)
	}

	body = fmt.Sprintf(`{"key":"uploads/2026/10/a.jpg","target":"country","target_id":%q}`, itineraryID)
	resp, _ = app.Test(jsonRequest("POST", "/v1/uploads/attach", body), -1)
	if resp.StatusCode != 400 {
		t.Errorf("expected 400 for unknown target, got %d", resp.StatusCode)
	}
}

func TestAttach_Unavailable(t *testing.T) {
	app := setupApp(makeDeps())

	body := fmt.Sprintf(`{"key":"uploads/a.jpg","target":"poi","target_id":%q}`, poiGugg)
	resp, _ := app.Test(jsonRequest("POST", "/v1/uploads/attach", body), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- Preferences ----

func TestPreferences_RoundTrip(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/preferences/client-1", nil), -1)
	var prefs domain.Preferences
	json.NewDecoder(resp.Body).Decode(&prefs)
	if prefs.Theme != domain.ThemeLight {
		t.Fatalf("expected default light theme, got %q", prefs.Theme)
	}

	resp, _ = app.Test(jsonRequest("PUT", "/v1/preferences/client-1", `{"theme":"dark"}`), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/preferences/client-1", nil), -1)
	json.NewDecoder(resp.Body).Decode(&prefs)
	if prefs.Theme != domain.ThemeDark {
		t.Errorf("expected dark theme after update, got %q", prefs.Theme)
	}
}

func TestPreferences_InvalidTheme(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(jsonRequest("PUT", "/v1/preferences/client-1", `{"theme":"sepia"}`), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- GraphQL ----

func TestGraphQL_ItineraryMap(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.itineraries.getFn = func(ctx context.Context, id string) (*domain.Itinerary, error) {
			return bilbaoItinerary(), nil
		}
	})
	app := setupApp(deps)

	query := fmt.Sprintf(`{"query":"{ itineraryMap(id: \"%s\") { waypoints { label order } viewport { zoom } } }"}`, itineraryID)
	resp, _ := app.Test(jsonRequest("POST", "/graphql", query), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			ItineraryMap struct {
				Waypoints []struct {
					Label string `json:"label"`
					Order int    `json:"order"`
				} `json:"waypoints"`
			} `json:"itineraryMap"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	wps := result.Data.ItineraryMap.Waypoints
	if len(wps) != 2 || wps[0].Label != "Casco Viejo" {
		t.Errorf("unexpected waypoints %+v", wps)
	}
}

func TestGraphQL_EmptyQuery(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(jsonRequest("POST", "/graphql", `{}`), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Ops ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=10" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
}

func TestReady(t *testing.T) {
	deps := makeDeps()
	deps.DB = failingPinger{}
	deps.Cache = failingPinger{err: errors.New("connection refused")}
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	var body struct {
		Checks map[string]string `json:"checks"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Checks["database"] != "ok" {
		t.Errorf("expected database ok, got %q", body.Checks["database"])
	}
	if !strings.HasPrefix(body.Checks["cache"], "error") {
		t.Errorf("expected cache error, got %q", body.Checks["cache"])
	}
}

func TestETag_NotModified(t *testing.T) {
	deps := makeDeps(func(o *depsOpts) {
		o.countries.listFn = func(ctx context.Context) ([]domain.Country, error) {
			return []domain.Country{{ID: "c1", Slug: "spain", Name: "Spain"}}, nil
		}
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/countries", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag")
	}

	for _, header := range []string{etag, `"stale", ` + etag, strings.TrimPrefix(etag, "W/")} {
		req := httptest.NewRequest("GET", "/v1/countries", nil)
		req.Header.Set("If-None-Match", header)
		resp, _ = app.Test(req, -1)
		if resp.StatusCode != 304 {
			t.Errorf("If-None-Match %s: expected 304, got %d", header, resp.StatusCode)
		}
	}

	req := httptest.NewRequest("GET", "/v1/countries", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Errorf("expected 200 for a stale tag, got %d", resp.StatusCode)
	}
}
