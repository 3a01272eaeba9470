package catalog

import (
	"context"
	"errors"
	"testing"
)

// -------------------------
// Test backend + store
// -------------------------

type testBackend struct {
	products map[Species][]Product
	listErr  error

	listCalls   int
	createCalls int
	nextID      string
}

func newTestBackend() *testBackend {
	return &testBackend{products: map[Species][]Product{}}
}

func (b *testBackend) ListProducts(ctx context.Context, species Species, limit int) ([]Product, error) {
	b.listCalls++
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.products[species], nil
}

func (b *testBackend) CreateManualProduct(ctx context.Context, in ManualProductInput) (string, error) {
	b.createCalls++
	id := b.nextID
	if id == "" {
		id = "manual-1"
	}
	b.products[in.Species] = append(b.products[in.Species], Product{
		ID: id, Brand: in.Brand, Name: in.Name, Species: in.Species, Type: in.Type, Manual: true,
	})
	return id, nil
}

type testStore struct {
	data map[Species][]Product

	getErr error
	putErr error
	puts   int
}

func newTestStore() *testStore {
	return &testStore{data: map[Species][]Product{}}
}

func (s *testStore) Get(ctx context.Context, species Species) ([]Product, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	ps, ok := s.data[species]
	return ps, ok, nil
}

func (s *testStore) Put(ctx context.Context, species Species, products []Product) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.data[species] = products
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_List_CacheMissThenHit(t *testing.T) {
	backend := newTestBackend()
	backend.products[SpeciesCat] = []Product{{ID: "p1", Name: "猫粮"}}
	store := newTestStore()
	svc := NewService(backend, store, nil)

	got, err := svc.List(context.Background(), SpeciesCat)
	if err != nil {
		t.Fatalf("List #1 error: %v", err)
	}
	if len(got) != 1 || backend.listCalls != 1 {
		t.Fatalf("expected one backend fetch, got calls=%d", backend.listCalls)
	}

	// Segunda lectura sale del cache.
	got, err = svc.List(context.Background(), SpeciesCat)
	if err != nil {
		t.Fatalf("List #2 error: %v", err)
	}
	if len(got) != 1 || backend.listCalls != 1 {
		t.Fatalf("expected cache hit, backend calls=%d", backend.listCalls)
	}
}

func TestService_List_StoreErrorsAreNonFatal(t *testing.T) {
	backend := newTestBackend()
	backend.products[SpeciesDog] = []Product{{ID: "p1"}}

	store := newTestStore()
	store.getErr = errors.New("storage down")
	store.putErr = errors.New("storage down")

	svc := NewService(backend, store, nil)
	got, err := svc.List(context.Background(), SpeciesDog)
	if err != nil {
		t.Fatalf("expected list to survive store failure, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 product, got %d", len(got))
	}
}

func TestService_List_RejectsUnknownSpecies(t *testing.T) {
	svc := NewService(newTestBackend(), newTestStore(), nil)
	if _, err := svc.List(context.Background(), Species("bird")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_CreateManual_RefreshesCacheAndReturnsProduct(t *testing.T) {
	backend := newTestBackend()
	backend.products[SpeciesCat] = []Product{{ID: "p1"}}
	backend.nextID = "manual-9"

	store := newTestStore()
	store.data[SpeciesCat] = []Product{{ID: "p1"}} // cache vieja sin el manual

	svc := NewService(backend, store, nil)
	p, err := svc.CreateManual(context.Background(), ManualProductInput{
		Name: "自制冻干", Species: SpeciesCat,
	})
	if err != nil {
		t.Fatalf("CreateManual error: %v", err)
	}
	if p.ID != "manual-9" || !p.Manual {
		t.Fatalf("expected created manual product, got %#v", p)
	}

	// El cache quedó con el listado fresco (incluye el manual).
	cached, ok, _ := store.Get(context.Background(), SpeciesCat)
	if !ok || len(cached) != 2 {
		t.Fatalf("expected refreshed cache with 2 products, got ok=%v len=%d", ok, len(cached))
	}
}

func TestService_CreateManual_ValidatesInput(t *testing.T) {
	svc := NewService(newTestBackend(), newTestStore(), nil)

	cases := []ManualProductInput{
		{Species: SpeciesCat},                                // sin nombre
		{Name: "x", Species: Species("bird")},                // especie inválida
		{Name: "x", Species: SpeciesCat, Price: "abc"},       // precio no decimal
		{Name: "x", Species: SpeciesCat, WeightJin: "1.2.3"}, // peso no decimal
	}
	for i, in := range cases {
		if _, err := svc.CreateManual(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}
