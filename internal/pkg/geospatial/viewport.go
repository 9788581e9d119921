package geospatial

import (
	"math"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

const (
	// WorldZoom frames the whole map when there is nothing to show.
	WorldZoom = 5
	// PointZoom is the close-up zoom used for a single location.
	PointZoom = 15
	// DefaultMaxZoom is the deepest zoom a fitted box may use.
	DefaultMaxZoom = 18
	// DefaultPadding is the fractional margin added around fitted boxes.
	DefaultPadding = 0.1

	defaultWidth  = 1024
	defaultHeight = 768
	tileSize      = 256
	maxMercLat    = 85.0511287798
)

// FitOptions control how a set of points is framed.
type FitOptions struct {
	// PaddingFraction extends the box by this share of its height and width
	// on every side.
	PaddingFraction float64
	// Pixel is a screen-space inset handed to the map engine. It only
	// shrinks the usable area when choosing a zoom.
	Pixel *domain.PixelPadding
	// Width and Height are the map size in pixels.
	Width, Height int
	MaxZoom       int
}

// OverviewFit frames many places with a 10% margin.
func OverviewFit() FitOptions {
	return FitOptions{PaddingFraction: DefaultPadding}
}

// MarkerFit keeps markers 100px away from every edge.
func MarkerFit() FitOptions {
	return FitOptions{Pixel: &domain.PixelPadding{Top: 100, Right: 100, Bottom: 100, Left: 100}}
}

// FitViewport computes a camera position showing every point.
//
// No points gives the world view at (0,0). One distinct location gives a
// close-up centered on it. Otherwise the minimal box is padded and the
// deepest zoom that still contains it is chosen.
func FitViewport(points []domain.GeoPoint, opts FitOptions) domain.Viewport {
	var padding *domain.PixelPadding
	if opts.Pixel != nil {
		p := *opts.Pixel
		padding = &p
	}

	box, ok := BoundsOf(points)
	if !ok {
		return domain.Viewport{Center: domain.GeoPoint{}, Zoom: WorldZoom, Padding: padding}
	}
	if box.Height() == 0 && box.Width() == 0 {
		return domain.Viewport{Center: box.SouthWest, Zoom: PointZoom, Padding: padding}
	}

	center := box.Center()
	if opts.PaddingFraction > 0 {
		box = PadBounds(box, opts.PaddingFraction)
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	if padding != nil {
		width -= padding.Left + padding.Right
		height -= padding.Top + padding.Bottom
	}
	maxZoom := opts.MaxZoom
	if maxZoom <= 0 {
		maxZoom = DefaultMaxZoom
	}

	return domain.Viewport{
		Center:  center,
		Zoom:    BoundsZoom(box, width, height, maxZoom),
		Bounds:  &box,
		Padding: padding,
	}
}

// BoundsOf returns the minimal box containing every valid point.
// ok is false when there are no valid points.
func BoundsOf(points []domain.GeoPoint) (b domain.Bounds, ok bool) {
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		if !ok {
			b = domain.Bounds{SouthWest: p, NorthEast: p}
			ok = true
			continue
		}
		b.SouthWest.Lat = math.Min(b.SouthWest.Lat, p.Lat)
		b.SouthWest.Lon = math.Min(b.SouthWest.Lon, p.Lon)
		b.NorthEast.Lat = math.Max(b.NorthEast.Lat, p.Lat)
		b.NorthEast.Lon = math.Max(b.NorthEast.Lon, p.Lon)
	}
	return b, ok
}

// PadBounds extends each side by ratio times the box height (latitude) or
// width (longitude), clamped to valid coordinates.
func PadBounds(b domain.Bounds, ratio float64) domain.Bounds {
	dLat := math.Abs(b.Height()) * ratio
	dLon := math.Abs(b.Width()) * ratio
	return domain.Bounds{
		SouthWest: domain.GeoPoint{
			Lat: math.Max(b.SouthWest.Lat-dLat, -90),
			Lon: math.Max(b.SouthWest.Lon-dLon, -180),
		},
		NorthEast: domain.GeoPoint{
			Lat: math.Min(b.NorthEast.Lat+dLat, 90),
			Lon: math.Min(b.NorthEast.Lon+dLon, 180),
		},
	}
}

// BoundsZoom returns the deepest Web Mercator zoom at which b fits in a
// width x height pixel map, limited to [0, maxZoom].
func BoundsZoom(b domain.Bounds, width, height, maxZoom int) int {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	zoom := math.Inf(1)
	if xFrac := b.Width() / 360; xFrac > 0 {
		zoom = math.Min(zoom, math.Log2(float64(width)/(tileSize*xFrac)))
	}
	if yFrac := (mercatorY(b.NorthEast.Lat) - mercatorY(b.SouthWest.Lat)) / (2 * math.Pi); yFrac > 0 {
		zoom = math.Min(zoom, math.Log2(float64(height)/(tileSize*yFrac)))
	}

	if math.IsInf(zoom, 1) {
		return maxZoom
	}
	z := int(math.Floor(zoom))
	if z < 0 {
		return 0
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}

func mercatorY(lat float64) float64 {
	lat = math.Max(-maxMercLat, math.Min(maxMercLat, lat))
	return math.Log(math.Tan(math.Pi/4 + toRad(lat)/2))
}
