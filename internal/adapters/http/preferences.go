package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// GetPreferencesHandler returns a client's display preferences.
func GetPreferencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		prefs, err := deps.Preferences.Get(c.UserContext(), c.Params("client_id"))
		if err != nil {
			return mapError(c, err, "client not found")
		}
		c.Set("Cache-Control", "private, no-cache")
		return c.JSON(prefs)
	}
}

// PutPreferencesHandler stores a client's theme.
func PutPreferencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req themeRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}

		prefs, err := deps.Preferences.SetTheme(c.UserContext(), c.Params("client_id"), domain.Theme(req.Theme))
		if err != nil {
			return mapError(c, err, "client not found")
		}
		return c.JSON(prefs)
	}
}
