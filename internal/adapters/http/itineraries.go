package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// ListItinerariesHandler returns itineraries newest first.
func ListItinerariesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 20, 100)
		its, total, err := deps.Itineraries.List(c.UserContext(), offset, limit)
		if err != nil {
			return mapError(c, err, "itineraries not found")
		}
		return paginated(c, its, offset, limit, total)
	}
}

// GetItineraryHandler returns an itinerary with its entries in visit order.
func GetItineraryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		it, err := deps.Itineraries.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err, "itinerary not found")
		}
		return c.JSON(it)
	}
}

// CreateItineraryHandler stores a new itinerary.
func CreateItineraryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createItineraryRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}

		it := &domain.Itinerary{
			Name:        req.Name,
			Description: req.Description,
			UserID:      req.UserID,
			Entries:     toEntries(req.Entries),
		}
		if err := deps.Itineraries.Create(c.UserContext(), it); err != nil {
			return mapError(c, err, "poi not found")
		}

		c.Location("/v1/itineraries/" + it.ID)
		return c.Status(fiber.StatusCreated).JSON(it)
	}
}

// ReplaceEntriesHandler swaps an itinerary's ordered entries.
func ReplaceEntriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req replaceEntriesRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}

		id := c.Params("id")
		if err := deps.Itineraries.ReplaceEntries(c.UserContext(), id, toEntries(req.Entries)); err != nil {
			return mapError(c, err, "itinerary not found")
		}

		it, err := deps.Itineraries.Get(c.UserContext(), id)
		if err != nil {
			return mapError(c, err, "itinerary not found")
		}
		return c.JSON(it)
	}
}

// ItineraryWaypointsHandler returns the ordered waypoints of an itinerary.
func ItineraryWaypointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		wps, err := deps.Itineraries.Waypoints(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err, "itinerary not found")
		}
		return c.JSON(wps)
	}
}

// ItineraryMapHandler returns the itinerary, its waypoints and the viewport
// framing them.
func ItineraryMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := deps.Itineraries.Map(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err, "itinerary not found")
		}
		return c.JSON(m)
	}
}

// ItineraryRouteHandler routes the itinerary's waypoints for ?profile=
// (foot, bike or car; foot by default).
func ItineraryRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := domain.ParseProfile(c.Query("profile"))
		if err != nil {
			return errBadRequest(c, "profile must be foot, bike or car")
		}

		plan, err := deps.Routes.Plan(c.UserContext(), c.Params("id"), profile)
		if err != nil {
			return mapError(c, err, "itinerary not found")
		}
		return c.JSON(plan)
	}
}

// itineraryPage is everything the itinerary page needs to draw its map.
type itineraryPage struct {
	*domain.ItineraryMap
	Theme domain.Theme `json:"theme"`
}

// ItineraryPageHandler serves the itinerary page model. Unknown itineraries
// redirect to the fallback view; any other failure is reported as an error
// the page shows.
func ItineraryPageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		m, err := deps.Itineraries.Map(ctx, c.Params("id"))
		if errors.Is(err, domain.ErrNotFound) {
			return c.Redirect(deps.fallbackPath(), fiber.StatusFound)
		}
		if err != nil {
			LoggerFromCtx(ctx).Error("itinerary page", "id", c.Params("id"), "error", err)
			return errInternal(c, "Error loading itinerary. Please try again later.")
		}

		page := itineraryPage{ItineraryMap: m, Theme: domain.ThemeLight}
		if deps.Preferences != nil {
			if prefs, err := deps.Preferences.Get(ctx, c.Query("client_id", "anonymous")); err == nil {
				page.Theme = prefs.Theme
			}
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(page)
	}
}
