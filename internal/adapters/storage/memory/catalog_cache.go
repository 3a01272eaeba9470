package memory

import (
	"context"
	"sync"
	"time"

	"pet-food-advisor/internal/domain/catalog"
)

type cacheEntry struct {
	products  []catalog.Product
	fetchedAt time.Time
}

type catalogCache struct {
	mu        sync.Mutex
	bySpecies map[catalog.Species]cacheEntry
	ttl       time.Duration
	now       func() time.Time
}

// NewCatalogCache crea el cache de catálogo en memoria con el TTL dado
// (<=0 usa catalog.DefaultTTL).
func NewCatalogCache(ttl time.Duration) catalog.Store {
	if ttl <= 0 {
		ttl = catalog.DefaultTTL
	}
	return &catalogCache{
		bySpecies: make(map[catalog.Species]cacheEntry),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (c *catalogCache) Get(ctx context.Context, species catalog.Species) ([]catalog.Product, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.bySpecies[species]
	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(e.fetchedAt) > c.ttl {
		// Entrada vencida: se desaloja al leer.
		delete(c.bySpecies, species)
		return nil, false, nil
	}

	out := make([]catalog.Product, len(e.products))
	copy(out, e.products)
	return out, true, nil
}

func (c *catalogCache) Put(ctx context.Context, species catalog.Species, products []catalog.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := make([]catalog.Product, len(products))
	copy(cp, products)
	c.bySpecies[species] = cacheEntry{products: cp, fetchedAt: c.now()}
	return nil
}
