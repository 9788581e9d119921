package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// PoiRepo implements ports.PoiRepository with pgx.
type PoiRepo struct {
	db *DB
}

// NewPoiRepo creates a new PoiRepo.
func NewPoiRepo(db *DB) *PoiRepo {
	return &PoiRepo{db: db}
}

const poiSelect = `
	SELECT p.id, p.slug, p.name, COALESCE(p.description, ''), COALESCE(p.address, ''),
	       COALESCE(p.website, ''), COALESCE(p.phone, ''),
	       ST_Y(p.location::geometry) as lat,
	       ST_X(p.location::geometry) as lon,
	       p.city_id, COALESCE(p.category_id::text, ''), COALESCE(cat.name, ''),
	       COALESCE(p.image_url, ''), p.opening_hours, p.created_at
	FROM pois p
	LEFT JOIN categories cat ON cat.id = p.category_id`

func scanPoi(row pgx.Row) (*domain.Poi, error) {
	var p domain.Poi
	var catName string
	if err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Address,
		&p.Website, &p.Phone,
		&p.Location.Lat, &p.Location.Lon,
		&p.CityID, &p.CategoryID, &catName,
		&p.ImageURL, &p.OpeningHours, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if p.CategoryID != "" {
		p.Category = &domain.Category{ID: p.CategoryID, Name: catName}
	}
	return &p, nil
}

func (r *PoiRepo) query(ctx context.Context, sql string, args ...any) ([]domain.Poi, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pois []domain.Poi
	for rows.Next() {
		p, err := scanPoi(rows)
		if err != nil {
			return nil, err
		}
		pois = append(pois, *p)
	}
	return pois, rows.Err()
}

// Upsert inserts or updates a POI by slug, creating its category and tags
// by name as needed, and fills its ID.
func (r *PoiRepo) Upsert(ctx context.Context, p *domain.Poi) error {
	hours := p.OpeningHours
	if hours == nil {
		hours = domain.OpeningHours{}
	}

	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		var categoryID *string
		if p.Category != nil && p.Category.Name != "" {
			if err := tx.QueryRow(ctx, `
				INSERT INTO categories (name) VALUES ($1)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id
			`, p.Category.Name).Scan(&p.Category.ID); err != nil {
				return fmt.Errorf("upsert category %s: %w", p.Category.Name, err)
			}
			categoryID = &p.Category.ID
			p.CategoryID = p.Category.ID
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO pois (slug, name, description, address, website, phone, location,
			                  city_id, category_id, image_url, opening_hours)
			VALUES ($1, $2, $3, $4, $5, $6, ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography,
			        $9, $10, NULLIF($11, ''), $12)
			ON CONFLICT (slug) DO UPDATE
			SET name = EXCLUDED.name, description = EXCLUDED.description,
			    address = EXCLUDED.address, website = EXCLUDED.website, phone = EXCLUDED.phone,
			    location = EXCLUDED.location, city_id = EXCLUDED.city_id,
			    category_id = EXCLUDED.category_id, opening_hours = EXCLUDED.opening_hours,
			    image_url = COALESCE(EXCLUDED.image_url, pois.image_url)
			RETURNING id, created_at
		`, p.Slug, p.Name, p.Description, p.Address, p.Website, p.Phone,
			p.Location.Lon, p.Location.Lat, p.CityID, categoryID, p.ImageURL, hours,
		).Scan(&p.ID, &p.CreatedAt); err != nil {
			return mapErr(err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM poi_tags WHERE poi_id = $1`, p.ID); err != nil {
			return err
		}
		if len(p.Tags) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, t := range p.Tags {
			batch.Queue(`
				WITH t AS (
					INSERT INTO tags (name) VALUES ($2)
					ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
					RETURNING id
				)
				INSERT INTO poi_tags (poi_id, tag_id) SELECT $1, id FROM t
				ON CONFLICT DO NOTHING
			`, p.ID, t.Name)
		}
		br := tx.SendBatch(ctx, batch)
		defer br.Close()
		for range p.Tags {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("batch exec: %w", err)
			}
		}
		return nil
	})
}

// List returns a filtered page of POIs ordered by name, with the total
// number of matches.
func (r *PoiRepo) List(ctx context.Context, f domain.PoiFilter) ([]domain.Poi, int, error) {
	const where = `
		WHERE ($1 = '' OR p.city_id = (SELECT id FROM cities WHERE slug = $1))
		  AND ($2 = '' OR cat.name = $2)`

	var total int
	if err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM pois p
		LEFT JOIN categories cat ON cat.id = p.category_id`+where,
		f.CitySlug, f.Category,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Poi{}, 0, nil
	}

	pois, err := r.query(ctx, poiSelect+where+` ORDER BY p.name, p.id LIMIT $3 OFFSET $4`,
		f.CitySlug, f.Category, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	return pois, total, nil
}

// ListByCity returns a city's POIs ordered by name.
func (r *PoiRepo) ListByCity(ctx context.Context, cityID string) ([]domain.Poi, error) {
	return r.query(ctx, poiSelect+` WHERE p.city_id = $1 ORDER BY p.name, p.id`, cityID)
}

// GetBySlug returns a POI with its category, tags, city and country.
func (r *PoiRepo) GetBySlug(ctx context.Context, slug string) (*domain.Poi, error) {
	p, err := scanPoi(r.db.Pool.QueryRow(ctx, poiSelect+` WHERE p.slug = $1`, slug))
	if err != nil {
		return nil, mapErr(err)
	}
	return r.withDetails(ctx, p)
}

// GetByID returns a POI by UUID.
func (r *PoiRepo) GetByID(ctx context.Context, id string) (*domain.Poi, error) {
	p, err := scanPoi(r.db.Pool.QueryRow(ctx, poiSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return r.withDetails(ctx, p)
}

func (r *PoiRepo) withDetails(ctx context.Context, p *domain.Poi) (*domain.Poi, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT t.id, t.name FROM tags t
		JOIN poi_tags pt ON pt.tag_id = t.id
		WHERE pt.poi_id = $1
		ORDER BY t.name
	`, p.ID)
	if err != nil {
		return nil, err
	}
	tags, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Tag, error) {
		var t domain.Tag
		err := row.Scan(&t.ID, &t.Name)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("tags of %s: %w", p.Slug, err)
	}
	p.Tags = tags

	city, err := NewCityRepo(r.db).GetByID(ctx, p.CityID)
	if err != nil {
		return nil, fmt.Errorf("city of %s: %w", p.Slug, err)
	}
	p.City = city
	return p, nil
}

// SetImage replaces the POI's image URL.
func (r *PoiRepo) SetImage(ctx context.Context, poiID, url string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE pois SET image_url = $2 WHERE id = $1`, poiID, url)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
