package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within WGS 84 ranges.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// GeoLineString represents an ordered sequence of geographic coordinates.
type GeoLineString struct {
	Coordinates []GeoPoint `json:"coordinates"`
}

// Bounds is an axis-aligned geographic box.
type Bounds struct {
	SouthWest GeoPoint `json:"south_west"`
	NorthEast GeoPoint `json:"north_east"`
}

// Height is the latitude extent in degrees.
func (b Bounds) Height() float64 { return b.NorthEast.Lat - b.SouthWest.Lat }

// Width is the longitude extent in degrees.
func (b Bounds) Width() float64 { return b.NorthEast.Lon - b.SouthWest.Lon }

// Center returns the midpoint of the box.
func (b Bounds) Center() GeoPoint {
	return GeoPoint{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lon: (b.SouthWest.Lon + b.NorthEast.Lon) / 2,
	}
}

// PixelPadding is a screen-space inset applied by the map engine.
type PixelPadding struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Viewport positions a map camera. Bounds is nil when the view is a fixed
// center and zoom (no points, or a single distinct point).
type Viewport struct {
	Center  GeoPoint      `json:"center"`
	Zoom    int           `json:"zoom"`
	Bounds  *Bounds       `json:"bounds,omitempty"`
	Padding *PixelPadding `json:"padding,omitempty"`
}

// TravelProfile selects the routing mode.
type TravelProfile string

const (
	ProfileFoot TravelProfile = "foot"
	ProfileBike TravelProfile = "bike"
	ProfileCar  TravelProfile = "car"
)

// ParseProfile validates a profile name. Empty means foot.
func ParseProfile(s string) (TravelProfile, error) {
	switch TravelProfile(s) {
	case "":
		return ProfileFoot, nil
	case ProfileFoot, ProfileBike, ProfileCar:
		return TravelProfile(s), nil
	}
	return "", ErrInvalidProfile
}

// RouteSummary is what a routing engine returns for an ordered set of points.
type RouteSummary struct {
	DistanceMeters  float64    `json:"distance_meters"`
	DurationSeconds float64    `json:"duration_seconds"`
	Path            []GeoPoint `json:"path"`
}

// RoutePlan is a route for one profile over ordered waypoints, in display units.
type RoutePlan struct {
	ItineraryID string        `json:"itinerary_id,omitempty"`
	Profile     TravelProfile `json:"profile"`
	Waypoints   []Waypoint    `json:"waypoints"`
	DistanceKm  float64       `json:"distance_km"`
	DurationMin float64       `json:"duration_min"`
	Path        []GeoPoint    `json:"path"`
}
