// Package osrm calls OSRM-compatible HTTP routing services.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// Client implements ports.RoutingEngine. Each travel profile has its own
// service URL, following the routing.openstreetmap.de layout.
type Client struct {
	http     *fasthttp.Client
	services map[domain.TravelProfile]string
	timeout  time.Duration
}

// New creates a routing client. services maps each profile to the base URL
// of its route service, e.g. https://routing.openstreetmap.de/routed-foot/route/v1.
func New(services map[domain.TravelProfile]string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "wanderguide",
			MaxConnsPerHost:     64,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		services: services,
		timeout:  timeout,
	}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// RouteURL builds the request URL for points in order.
func (c *Client) RouteURL(profile domain.TravelProfile, points []domain.GeoPoint) (string, error) {
	base, ok := c.services[profile]
	if !ok || base == "" {
		return "", domain.ErrInvalidProfile
	}

	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = strconv.FormatFloat(p.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
	}
	return fmt.Sprintf("%s/%s/%s?overview=full&geometries=geojson&steps=false",
		strings.TrimRight(base, "/"), profile, strings.Join(coords, ";")), nil
}

// Route asks the profile's service for a route through points, in order.
func (c *Client) Route(ctx context.Context, profile domain.TravelProfile, points []domain.GeoPoint) (*domain.RouteSummary, error) {
	url, err := c.RouteURL(profile, points)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRoutingUnavailable, err)
	}

	status := resp.StatusCode()
	var body routeResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		if status >= 500 || status == fasthttp.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: status %d", domain.ErrRoutingUnavailable, status)
		}
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrRoutingUnavailable, err)
	}

	switch {
	case body.Code == "Ok" && len(body.Routes) > 0:
	case body.Code == "NoRoute" || body.Code == "NoSegment" || (body.Code == "Ok" && len(body.Routes) == 0):
		return nil, fmt.Errorf("%w: %s", domain.ErrNoRoute, body.Code)
	case status >= 500 || status == fasthttp.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d %s", domain.ErrRoutingUnavailable, status, body.Message)
	default:
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNoRoute, body.Code, body.Message)
	}

	r := body.Routes[0]
	path := make([]domain.GeoPoint, len(r.Geometry.Coordinates))
	for i, c := range r.Geometry.Coordinates {
		path[i] = domain.GeoPoint{Lat: c[1], Lon: c[0]}
	}
	return &domain.RouteSummary{
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
		Path:            path,
	}, nil
}

// do runs the request, bounded by the context deadline when one is set.
func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.http.DoDeadline(req, resp, deadline)
}
