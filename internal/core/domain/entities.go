package domain

import (
	"time"
)

// Country is a destination country with its map overlay.
type Country struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	Code       string    `json:"code,omitempty"` // ISO 3166-1 alpha-2
	GeoJSONURL string    `json:"geojson_url,omitempty"`
	Color      string    `json:"color,omitempty"`
	Cities     []City    `json:"cities,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// City is a destination city. PoiCount is filled by listing queries.
type City struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CountryID   string    `json:"country_id"`
	Location    GeoPoint  `json:"location"`
	Pictures    []string  `json:"pictures,omitempty"`
	PoiCount    int       `json:"poi_count"`
	Country     *Country  `json:"country,omitempty"`
	Pois        []Poi     `json:"pois,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Category groups POIs (museum, restaurant, viewpoint...).
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag is a free-form POI label.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DayHours holds the split opening times of a single day, "HH:MM" or empty.
type DayHours struct {
	MorningOpen    string `json:"morning_open,omitempty"`
	MorningClose   string `json:"morning_close,omitempty"`
	AfternoonOpen  string `json:"afternoon_open,omitempty"`
	AfternoonClose string `json:"afternoon_close,omitempty"`
}

// OpeningHours maps a lowercase weekday name to its hours.
type OpeningHours map[string]DayHours

// Poi is a named, geolocated point of interest.
type Poi struct {
	ID           string       `json:"id"`
	Slug         string       `json:"slug"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Address      string       `json:"address"`
	Website      string       `json:"website,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Location     GeoPoint     `json:"location"`
	CityID       string       `json:"city_id"`
	CategoryID   string       `json:"category_id,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	OpeningHours OpeningHours `json:"opening_hours,omitempty"`
	Category     *Category    `json:"category,omitempty"`
	Tags         []Tag        `json:"tags,omitempty"`
	City         *City        `json:"city,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// PoiFilter narrows a POI listing.
type PoiFilter struct {
	CitySlug string
	Category string
	Offset   int
	Limit    int
}

// Itinerary is a user-curated, ordered list of POIs.
type Itinerary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	UserID      string           `json:"user_id"`
	Entries     []ItineraryEntry `json:"entries,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ItineraryEntry places one POI in an itinerary. VisitOrder values are
// unique within an itinerary but need not be contiguous.
type ItineraryEntry struct {
	ID          string `json:"id"`
	ItineraryID string `json:"itinerary_id"`
	PoiID       string `json:"poi_id"`
	VisitOrder  int    `json:"visit_order"`
	Poi         *Poi   `json:"poi,omitempty"`
}

// Waypoint is an ordered stop derived from an entry and its POI.
type Waypoint struct {
	Order    int      `json:"order"`
	Position GeoPoint `json:"position"`
	Label    string   `json:"label"`
	Address  string   `json:"address,omitempty"`
	Website  string   `json:"website,omitempty"`
	PoiID    string   `json:"poi_id"`
}

// ItineraryMap is everything a map view needs to display an itinerary.
type ItineraryMap struct {
	Itinerary      *Itinerary `json:"itinerary"`
	Waypoints      []Waypoint `json:"waypoints"`
	Viewport       Viewport   `json:"viewport"`
	StraightLineKm float64    `json:"straight_line_km"`
}

// MapPoints is a set of markers plus the viewport that frames them.
type MapPoints struct {
	Points   []MapPoint `json:"points"`
	Viewport Viewport   `json:"viewport"`
}

// MapPoint is a labelled marker.
type MapPoint struct {
	Position GeoPoint `json:"position"`
	Label    string   `json:"label"`
	Slug     string   `json:"slug,omitempty"`
}

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", ErrInvalidInput
}

// Preferences are the persisted per-client UI settings.
type Preferences struct {
	ClientID string `json:"client_id"`
	Theme    Theme  `json:"theme"`
}

// MediaTarget is the kind of record an uploaded picture is attached to.
type MediaTarget string

const (
	MediaTargetCity MediaTarget = "city"
	MediaTargetPoi  MediaTarget = "poi"
)

// UploadTicket is a presigned upload slot on the media host.
type UploadTicket struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	FileURL   string    `json:"file_url"`
	ExpiresAt time.Time `json:"expires_at"`
	MaxBytes  int64     `json:"max_bytes"`
}

// AttachRequest links an uploaded object to a city or POI.
type AttachRequest struct {
	Key      string      `json:"key"`
	Target   MediaTarget `json:"target"`
	TargetID string      `json:"target_id"`
}

// ItineraryEvent is published when an itinerary's entries change.
type ItineraryEvent struct {
	ItineraryID string    `json:"itinerary_id"`
	Kind        string    `json:"kind"` // "created" | "updated"
	OccurredAt  time.Time `json:"occurred_at"`
}
