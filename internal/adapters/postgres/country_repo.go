package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// CountryRepo implements ports.CountryRepository with pgx.
type CountryRepo struct {
	db *DB
}

// NewCountryRepo creates a new CountryRepo.
func NewCountryRepo(db *DB) *CountryRepo {
	return &CountryRepo{db: db}
}

const countryColumns = `id, slug, name, COALESCE(code, ''), COALESCE(geojson_url, ''), COALESCE(color, ''), created_at`

func scanCountry(row pgx.Row) (*domain.Country, error) {
	var c domain.Country
	if err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.Code, &c.GeoJSONURL, &c.Color, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert inserts or updates a country by slug and fills its ID.
func (r *CountryRepo) Upsert(ctx context.Context, c *domain.Country) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO countries (slug, name, code, geojson_url, color)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name, code = EXCLUDED.code,
		    geojson_url = EXCLUDED.geojson_url, color = EXCLUDED.color
		RETURNING id, created_at
	`, c.Slug, c.Name, c.Code, c.GeoJSONURL, c.Color).Scan(&c.ID, &c.CreatedAt)
}

// List returns all countries ordered by name.
func (r *CountryRepo) List(ctx context.Context) ([]domain.Country, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+countryColumns+` FROM countries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []domain.Country
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, err
		}
		countries = append(countries, *c)
	}
	return countries, rows.Err()
}

// GetBySlug returns a country by slug.
func (r *CountryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Country, error) {
	c, err := scanCountry(r.db.Pool.QueryRow(ctx, `SELECT `+countryColumns+` FROM countries WHERE slug = $1`, slug))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}
