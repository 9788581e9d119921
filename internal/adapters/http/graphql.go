package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services. Fields
// resolve from the domain structs through their json tags.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"south_west": &graphql.Field{Type: geoPointType},
			"north_east": &graphql.Field{Type: geoPointType},
		},
	})

	paddingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PixelPadding",
		Fields: graphql.Fields{
			"top":    &graphql.Field{Type: graphql.Int},
			"right":  &graphql.Field{Type: graphql.Int},
			"bottom": &graphql.Field{Type: graphql.Int},
			"left":   &graphql.Field{Type: graphql.Int},
		},
	})

	viewportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Viewport",
		Fields: graphql.Fields{
			"center":  &graphql.Field{Type: geoPointType},
			"zoom":    &graphql.Field{Type: graphql.Int},
			"bounds":  &graphql.Field{Type: boundsType},
			"padding": &graphql.Field{Type: paddingType},
		},
	})

	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	tagType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Tag",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	// Country and City refer to each other, so their fields are thunks.
	var countryType, cityType *graphql.Object

	poiType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Poi",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: graphql.String},
				"slug":        &graphql.Field{Type: graphql.String},
				"name":        &graphql.Field{Type: graphql.String},
				"description": &graphql.Field{Type: graphql.String},
				"address":     &graphql.Field{Type: graphql.String},
				"website":     &graphql.Field{Type: graphql.String},
				"phone":       &graphql.Field{Type: graphql.String},
				"location":    &graphql.Field{Type: geoPointType},
				"image_url":   &graphql.Field{Type: graphql.String},
				"category":    &graphql.Field{Type: categoryType},
				"tags":        &graphql.Field{Type: graphql.NewList(tagType)},
				"city":        &graphql.Field{Type: cityType},
			}
		}),
	})

	cityType = graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: graphql.String},
				"slug":        &graphql.Field{Type: graphql.String},
				"name":        &graphql.Field{Type: graphql.String},
				"description": &graphql.Field{Type: graphql.String},
				"location":    &graphql.Field{Type: geoPointType},
				"pictures":    &graphql.Field{Type: graphql.NewList(graphql.String)},
				"poi_count":   &graphql.Field{Type: graphql.Int},
				"country":     &graphql.Field{Type: countryType},
				"pois":        &graphql.Field{Type: graphql.NewList(poiType)},
			}
		}),
	})

	countryType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Country",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: graphql.String},
				"slug":        &graphql.Field{Type: graphql.String},
				"name":        &graphql.Field{Type: graphql.String},
				"code":        &graphql.Field{Type: graphql.String},
				"geojson_url": &graphql.Field{Type: graphql.String},
				"color":       &graphql.Field{Type: graphql.String},
				"cities":      &graphql.Field{Type: graphql.NewList(cityType)},
			}
		}),
	})

	entryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ItineraryEntry",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"poi_id":      &graphql.Field{Type: graphql.String},
			"visit_order": &graphql.Field{Type: graphql.Int},
			"poi":         &graphql.Field{Type: poiType},
		},
	})

	itineraryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Itinerary",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"user_id":     &graphql.Field{Type: graphql.String},
			"entries":     &graphql.Field{Type: graphql.NewList(entryType)},
		},
	})

	waypointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Waypoint",
		Fields: graphql.Fields{
			"order":    &graphql.Field{Type: graphql.Int},
			"position": &graphql.Field{Type: geoPointType},
			"label":    &graphql.Field{Type: graphql.String},
			"address":  &graphql.Field{Type: graphql.String},
			"website":  &graphql.Field{Type: graphql.String},
			"poi_id":   &graphql.Field{Type: graphql.String},
		},
	})

	itineraryMapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ItineraryMap",
		Fields: graphql.Fields{
			"itinerary":        &graphql.Field{Type: itineraryType},
			"waypoints":        &graphql.Field{Type: graphql.NewList(waypointType)},
			"viewport":         &graphql.Field{Type: viewportType},
			"straight_line_km": &graphql.Field{Type: graphql.Float},
		},
	})

	routePlanType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RoutePlan",
		Fields: graphql.Fields{
			"itinerary_id": &graphql.Field{Type: graphql.String},
			"profile":      &graphql.Field{Type: graphql.String},
			"waypoints":    &graphql.Field{Type: graphql.NewList(waypointType)},
			"distance_km":  &graphql.Field{Type: graphql.Float},
			"duration_min": &graphql.Field{Type: graphql.Float},
			"path":         &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"countries": &graphql.Field{
				Type:        graphql.NewList(countryType),
				Description: "All countries, by name",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Countries.List(p.Context)
				},
			},
			"cities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "All cities, most points of interest first",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.List(p.Context)
				},
			},
			"city": &graphql.Field{
				Type:        cityType,
				Description: "A city with its country and points of interest",
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.GetBySlug(p.Context, p.Args["slug"].(string))
				},
			},
			"poi": &graphql.Field{
				Type:        poiType,
				Description: "A point of interest by slug",
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Pois.GetBySlug(p.Context, p.Args["slug"].(string))
				},
			},
			"itineraries": &graphql.Field{
				Type:        graphql.NewList(itineraryType),
				Description: "Itineraries, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					its, _, err := deps.Itineraries.List(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					return its, err
				},
			},
			"itinerary": &graphql.Field{
				Type:        itineraryType,
				Description: "An itinerary with its entries in visit order",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Itineraries.Get(p.Context, p.Args["id"].(string))
				},
			},
			"itineraryMap": &graphql.Field{
				Type:        itineraryMapType,
				Description: "Waypoints and viewport of an itinerary",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Itineraries.Map(p.Context, p.Args["id"].(string))
				},
			},
			"route": &graphql.Field{
				Type:        routePlanType,
				Description: "Road route through an itinerary for a travel profile",
				Args: graphql.FieldConfigArgument{
					"itinerary_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"profile":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.ProfileFoot)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					profile, err := domain.ParseProfile(p.Args["profile"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Routes.Plan(p.Context, p.Args["itinerary_id"].(string), profile)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
			return errBadRequest(c, "body must be a JSON object with a query")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
