package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// ListCountriesHandler returns countries ordered by name.
func ListCountriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		countries, err := deps.Countries.List(c.UserContext())
		if err != nil {
			return mapError(c, err, "countries not found")
		}
		offset, limit := pageParams(c, 100, 500)
		return paginated(c, pageOf(countries, offset, limit), offset, limit, len(countries))
	}
}

// GetCountryHandler returns a country with its cities.
func GetCountryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		country, err := deps.Countries.GetBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return mapError(c, err, "country not found")
		}
		return c.JSON(country)
	}
}

// ListCitiesHandler returns cities, most visited first.
func ListCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cities, err := deps.Cities.List(c.UserContext())
		if err != nil {
			return mapError(c, err, "cities not found")
		}
		offset, limit := pageParams(c, 100, 500)
		return paginated(c, pageOf(cities, offset, limit), offset, limit, len(cities))
	}
}

// GetCityHandler returns a city with its country and POIs.
func GetCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		city, err := deps.Cities.GetBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return mapError(c, err, "city not found")
		}
		return c.JSON(city)
	}
}

// GetCityByIDHandler looks a city up by UUID. Kept for older clients.
func GetCityByIDHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		city, err := deps.Cities.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err, "city not found")
		}
		return c.JSON(city)
	}
}

// CitiesMapHandler returns every city as a map point, framed together.
func CitiesMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		points, err := deps.Cities.Overview(c.UserContext())
		if err != nil {
			return mapError(c, err, "cities not found")
		}
		return c.JSON(points)
	}
}

// CityMapHandler returns a city's POIs as map points, or the city itself
// when it has none.
func CityMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		points, err := deps.Cities.MapPoints(c.UserContext(), c.Params("slug"))
		if err != nil {
			return mapError(c, err, "city not found")
		}
		return c.JSON(points)
	}
}

// ListPoisHandler returns a filtered page of POIs and the viewport that
// frames the page.
func ListPoisHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 50, 200)
		page, err := deps.Pois.List(c.UserContext(), domain.PoiFilter{
			CitySlug: c.Query("city"),
			Category: c.Query("category"),
			Offset:   offset,
			Limit:    limit,
		})
		if err != nil {
			return mapError(c, err, "pois not found")
		}

		p := Pagination{Offset: offset, Limit: limit, Total: page.Total}
		SetLinkHeaders(c, p)
		return c.JSON(fiber.Map{
			"data":       page.Pois,
			"viewport":   page.Viewport,
			"pagination": p,
		})
	}
}

// GetPoiHandler returns a POI with its category, tags and city.
func GetPoiHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		poi, err := deps.Pois.GetBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return mapError(c, err, "poi not found")
		}
		return c.JSON(poi)
	}
}

// GetPoiByIDHandler looks a POI up by UUID. Kept for older clients.
func GetPoiByIDHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		poi, err := deps.Pois.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err, "poi not found")
		}
		return c.JSON(poi)
	}
}
