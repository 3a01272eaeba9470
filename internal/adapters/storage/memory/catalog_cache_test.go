package memory

import (
	"context"
	"testing"
	"time"

	"pet-food-advisor/internal/domain/catalog"
)

func sample(ids ...string) []catalog.Product {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.Product{ID: id, Name: "p-" + id, Species: catalog.SpeciesCat})
	}
	return out
}

func TestCatalogCache_GetMissThenHit(t *testing.T) {
	c := NewCatalogCache(time.Hour).(*catalogCache)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, catalog.SpeciesCat); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Put(ctx, catalog.SpeciesCat, sample("1", "2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := c.Get(ctx, catalog.SpeciesCat)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0].ID != "1" {
		t.Fatalf("unexpected products: %+v", got)
	}

	// Otra especie sigue vacía
	if _, ok, _ := c.Get(ctx, catalog.SpeciesDog); ok {
		t.Fatalf("expected miss for other species")
	}
}

func TestCatalogCache_ExpiryEvicts(t *testing.T) {
	c := NewCatalogCache(time.Hour).(*catalogCache)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	if err := c.Put(ctx, catalog.SpeciesCat, sample("1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Justo dentro del TTL: hit
	c.now = func() time.Time { return base.Add(time.Hour) }
	if _, ok, _ := c.Get(ctx, catalog.SpeciesCat); !ok {
		t.Fatalf("expected hit within ttl")
	}

	// Pasado el TTL: miss y la entrada se desaloja
	c.now = func() time.Time { return base.Add(time.Hour + time.Second) }
	if _, ok, _ := c.Get(ctx, catalog.SpeciesCat); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if _, exists := c.bySpecies[catalog.SpeciesCat]; exists {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestCatalogCache_ReturnsCopies(t *testing.T) {
	c := NewCatalogCache(0)
	ctx := context.Background()

	src := sample("1")
	if err := c.Put(ctx, catalog.SpeciesCat, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src[0].Name = "mutated"

	got, _, _ := c.Get(ctx, catalog.SpeciesCat)
	if got[0].Name != "p-1" {
		t.Fatalf("cache should not alias caller slice, got %q", got[0].Name)
	}

	got[0].Name = "mutated-read"
	again, _, _ := c.Get(ctx, catalog.SpeciesCat)
	if again[0].Name != "p-1" {
		t.Fatalf("reads should not alias cached slice, got %q", again[0].Name)
	}
}
