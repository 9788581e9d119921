package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// ItineraryRepo implements ports.ItineraryRepository with pgx.
type ItineraryRepo struct {
	db *DB
}

// NewItineraryRepo creates a new ItineraryRepo.
func NewItineraryRepo(db *DB) *ItineraryRepo {
	return &ItineraryRepo{db: db}
}

// Create inserts an itinerary and its entries in one transaction.
func (r *ItineraryRepo) Create(ctx context.Context, it *domain.Itinerary) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO itineraries (id, name, description, user_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, it.ID, it.Name, it.Description, it.UserID, it.CreatedAt); err != nil {
			return mapErr(err)
		}
		return insertEntries(ctx, tx, it.Entries)
	})
}

func insertEntries(ctx context.Context, tx pgx.Tx, entries []domain.ItineraryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO itinerary_pois (id, itinerary_id, poi_id, visit_order)
			VALUES ($1, $2, $3, $4)
		`, e.ID, e.ItineraryID, e.PoiID, e.VisitOrder)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range entries {
		if _, err := br.Exec(); err != nil {
			return mapErr(err)
		}
	}
	return nil
}

// List returns a page of itineraries, newest first, with their entries.
func (r *ItineraryRepo) List(ctx context.Context, offset, limit int) ([]domain.Itinerary, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM itineraries`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), user_id, created_at
		FROM itineraries
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	its, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Itinerary, error) {
		var it domain.Itinerary
		err := row.Scan(&it.ID, &it.Name, &it.Description, &it.UserID, &it.CreatedAt)
		return it, err
	})
	if err != nil {
		return nil, 0, err
	}
	if len(its) == 0 {
		return []domain.Itinerary{}, total, nil
	}

	ids := make([]string, len(its))
	for i, it := range its {
		ids[i] = it.ID
	}
	entries, err := r.entries(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range its {
		its[i].Entries = entries[its[i].ID]
	}
	return its, total, nil
}

// GetWithEntries returns an itinerary with its entries joined to their POIs,
// in visit order.
func (r *ItineraryRepo) GetWithEntries(ctx context.Context, id string) (*domain.Itinerary, error) {
	var it domain.Itinerary
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), user_id, created_at
		FROM itineraries WHERE id = $1
	`, id).Scan(&it.ID, &it.Name, &it.Description, &it.UserID, &it.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}

	entries, err := r.entries(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("entries of %s: %w", id, err)
	}
	it.Entries = entries[id]
	return &it, nil
}

// entries loads the entries of the given itineraries, grouped by itinerary.
func (r *ItineraryRepo) entries(ctx context.Context, itineraryIDs []string) (map[string][]domain.ItineraryEntry, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT ip.id, ip.itinerary_id, ip.poi_id, ip.visit_order,
		       p.slug, p.name, COALESCE(p.address, ''), COALESCE(p.website, ''),
		       ST_Y(p.location::geometry) as lat,
		       ST_X(p.location::geometry) as lon,
		       p.city_id, COALESCE(p.image_url, '')
		FROM itinerary_pois ip
		JOIN pois p ON p.id = ip.poi_id
		WHERE ip.itinerary_id = ANY($1)
		ORDER BY ip.itinerary_id, ip.visit_order, ip.id
	`, itineraryIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.ItineraryEntry, len(itineraryIDs))
	for rows.Next() {
		var e domain.ItineraryEntry
		p := &domain.Poi{}
		if err := rows.Scan(
			&e.ID, &e.ItineraryID, &e.PoiID, &e.VisitOrder,
			&p.Slug, &p.Name, &p.Address, &p.Website,
			&p.Location.Lat, &p.Location.Lon,
			&p.CityID, &p.ImageURL,
		); err != nil {
			return nil, err
		}
		p.ID = e.PoiID
		e.Poi = p
		out[e.ItineraryID] = append(out[e.ItineraryID], e)
	}
	return out, rows.Err()
}

// ReplaceEntries swaps all entries of an itinerary atomically.
func (r *ItineraryRepo) ReplaceEntries(ctx context.Context, itineraryID string, entries []domain.ItineraryEntry) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, `SELECT id FROM itineraries WHERE id = $1 FOR UPDATE`, itineraryID).Scan(&id); err != nil {
			return mapErr(err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM itinerary_pois WHERE itinerary_id = $1`, itineraryID); err != nil {
			return err
		}
		return insertEntries(ctx, tx, entries)
	})
}
