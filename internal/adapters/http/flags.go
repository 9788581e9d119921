package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// FlagHandler redirects to the SVG flag of ?countryName=.
func FlagHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Query("countryName")
		if name == "" {
			return errBadRequest(c, "country name is required")
		}

		url, err := deps.Flags.FlagURL(c.UserContext(), name)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return errNotFound(c, "country not found")
		case err != nil:
			LoggerFromCtx(c.UserContext()).Error("flag lookup", "country", name, "error", err)
			return errInternal(c, "failed to fetch flag")
		}

		c.Set("Cache-Control", "public, max-age=86400")
		return c.Redirect(url, fiber.StatusFound)
	}
}
