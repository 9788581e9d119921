package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// CityRepo implements ports.CityRepository with pgx.
type CityRepo struct {
	db *DB
}

// NewCityRepo creates a new CityRepo.
func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

const citySelect = `
	SELECT c.id, c.slug, c.name, COALESCE(c.description, ''), c.country_id,
	       ST_Y(c.location::geometry) as lat,
	       ST_X(c.location::geometry) as lon,
	       c.pictures,
	       (SELECT count(*) FROM pois p WHERE p.city_id = c.id) as poi_count,
	       c.created_at,
	       co.slug, co.name, COALESCE(co.code, ''), COALESCE(co.geojson_url, ''), COALESCE(co.color, '')
	FROM cities c
	JOIN countries co ON co.id = c.country_id`

func scanCity(row pgx.Row) (*domain.City, error) {
	var c domain.City
	var co domain.Country
	if err := row.Scan(
		&c.ID, &c.Slug, &c.Name, &c.Description, &c.CountryID,
		&c.Location.Lat, &c.Location.Lon,
		&c.Pictures, &c.PoiCount, &c.CreatedAt,
		&co.Slug, &co.Name, &co.Code, &co.GeoJSONURL, &co.Color,
	); err != nil {
		return nil, err
	}
	co.ID = c.CountryID
	c.Country = &co
	return &c, nil
}

func (r *CityRepo) query(ctx context.Context, sql string, args ...any) ([]domain.City, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, *c)
	}
	return cities, rows.Err()
}

// Upsert inserts or updates a city by slug and fills its ID. Pictures are
// only written on insert.
func (r *CityRepo) Upsert(ctx context.Context, c *domain.City) error {
	pictures := c.Pictures
	if pictures == nil {
		pictures = []string{}
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO cities (slug, name, description, country_id, location, pictures)
		VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography, $7)
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description,
		    country_id = EXCLUDED.country_id, location = EXCLUDED.location
		RETURNING id, created_at
	`, c.Slug, c.Name, c.Description, c.CountryID, c.Location.Lon, c.Location.Lat, pictures).
		Scan(&c.ID, &c.CreatedAt)
}

// List returns all cities ordered by name, with POI counts.
func (r *CityRepo) List(ctx context.Context) ([]domain.City, error) {
	return r.query(ctx, citySelect+` ORDER BY c.name`)
}

// ListByCountry returns a country's cities ordered by name.
func (r *CityRepo) ListByCountry(ctx context.Context, countryID string) ([]domain.City, error) {
	return r.query(ctx, citySelect+` WHERE c.country_id = $1 ORDER BY c.name`, countryID)
}

// GetBySlug returns a city with its country.
func (r *CityRepo) GetBySlug(ctx context.Context, slug string) (*domain.City, error) {
	c, err := scanCity(r.db.Pool.QueryRow(ctx, citySelect+` WHERE c.slug = $1`, slug))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// GetByID returns a city by UUID.
func (r *CityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	c, err := scanCity(r.db.Pool.QueryRow(ctx, citySelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// AddPicture appends a picture URL unless the city already has it.
func (r *CityRepo) AddPicture(ctx context.Context, cityID, url string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE cities
		SET pictures = CASE WHEN $2 = ANY(pictures) THEN pictures ELSE array_append(pictures, $2) END
		WHERE id = $1
	`, cityID, url)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
