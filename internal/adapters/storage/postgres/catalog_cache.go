package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"pet-food-advisor/internal/domain/catalog"
)

// CatalogCache persiste el snapshot del catálogo por especie.
//
// Esquema esperado:
//
//	CREATE TABLE product_cache (
//	    species    TEXT PRIMARY KEY,
//	    payload    JSONB NOT NULL,
//	    fetched_at TIMESTAMPTZ NOT NULL
//	);
type CatalogCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewCatalogCache(db *sql.DB, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = catalog.DefaultTTL
	}
	return &CatalogCache{db: db, ttl: ttl, now: time.Now}
}

func (c *CatalogCache) Get(ctx context.Context, species catalog.Species) ([]catalog.Product, bool, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT payload, fetched_at
		FROM product_cache
		WHERE species = $1
	`, string(species))

	var payload []byte
	var fetchedAt time.Time
	if err := row.Scan(&payload, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	if c.now().Sub(fetchedAt) > c.ttl {
		// Vencida: se desaloja y se reporta miss.
		_, err := c.db.ExecContext(ctx, `DELETE FROM product_cache WHERE species = $1`, string(species))
		return nil, false, err
	}

	var products []catalog.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (c *CatalogCache) Put(ctx context.Context, species catalog.Species, products []catalog.Product) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO product_cache (species, payload, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (species) DO UPDATE
		SET payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at
	`, string(species), payload, c.now())
	return err
}
