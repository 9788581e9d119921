// Package restcountries resolves country flags through the REST Countries API.
package restcountries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// Client implements ports.FlagDirectory.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
}

// New creates a client for the API at baseURL, e.g. https://restcountries.com.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			Name:         "wanderguide",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

type country struct {
	Flags struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
}

// FlagURL returns the SVG flag of the first country matching name.
func (c *Client) FlagURL(ctx context.Context, name string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/v3.1/name/" + url.PathEscape(name) + "?fields=flags")
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return "", fmt.Errorf("fetch country %s: %w", name, err)
	}

	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusNotFound:
		return "", domain.ErrNotFound
	case status != fasthttp.StatusOK:
		return "", fmt.Errorf("fetch country %s: status %d", name, status)
	}

	var countries []country
	if err := json.Unmarshal(resp.Body(), &countries); err != nil {
		return "", fmt.Errorf("decode country %s: %w", name, err)
	}
	if len(countries) == 0 || countries[0].Flags.SVG == "" {
		return "", domain.ErrNotFound
	}
	return countries[0].Flags.SVG, nil
}
