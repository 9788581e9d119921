package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/graphql":
			ttl = "private, max-age=0"

		// Itineraries are edited by their owners; always revalidate.
		case strings.HasPrefix(path, "/v1/itineraries"):
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/countries"):
			ttl = "public, max-age=3600" // reference data

		case strings.HasSuffix(path, "/map"):
			ttl = "public, max-age=600"

		case strings.HasPrefix(path, "/v1/cities/"), strings.HasPrefix(path, "/v1/pois/"):
			ttl = "public, max-age=600"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
