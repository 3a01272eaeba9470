package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-food-advisor/internal/platform/logger"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// DefaultListLimit es cuántos productos pedimos al backend por especie.
const DefaultListLimit = 100

// Service expone el catálogo con cache-through sobre el Store.
// El Store es best-effort: si falla, se loguea y se sigue contra el backend.
type Service struct {
	backend Backend
	store   Store
	log     logger.Logger
}

func NewService(backend Backend, store Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{backend: backend, store: store, log: log}
}

// List retorna el catálogo de una especie, sirviendo del cache si la entrada
// sigue vigente y refrescando del backend si no.
func (s *Service) List(ctx context.Context, species Species) ([]Product, error) {
	if species != SpeciesDog && species != SpeciesCat {
		return nil, fmt.Errorf("%w: unknown species %q", ErrInvalidInput, species)
	}

	if s.store != nil {
		cached, ok, err := s.store.Get(ctx, species)
		if err != nil {
			s.log.Warn("catalog cache read failed", map[string]any{"species": species, "err": err.Error()})
		} else if ok {
			return cached, nil
		}
	}

	fresh, err := s.backend.ListProducts(ctx, species, DefaultListLimit)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Put(ctx, species, fresh); err != nil {
			s.log.Warn("catalog cache write failed", map[string]any{"species": species, "err": err.Error()})
		}
	}
	return fresh, nil
}

// CreateManual crea un producto manual en el backend y refresca el cache de la
// especie para que el producto nuevo aparezca en el próximo listado.
func (s *Service) CreateManual(ctx context.Context, in ManualProductInput) (Product, error) {
	in.Brand = strings.TrimSpace(in.Brand)
	in.Name = strings.TrimSpace(in.Name)
	in.Price = strings.TrimSpace(in.Price)
	in.WeightJin = strings.TrimSpace(in.WeightJin)

	if in.Name == "" {
		return Product{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if in.Species != SpeciesDog && in.Species != SpeciesCat {
		return Product{}, fmt.Errorf("%w: unknown species %q", ErrInvalidInput, in.Species)
	}
	if in.Type == "" {
		in.Type = TypeMainFood
	}
	if in.Price != "" {
		if _, err := decimal.NewFromString(in.Price); err != nil {
			return Product{}, fmt.Errorf("%w: price must be decimal", ErrInvalidInput)
		}
	}
	if in.WeightJin != "" {
		if _, err := decimal.NewFromString(in.WeightJin); err != nil {
			return Product{}, fmt.Errorf("%w: weight must be decimal", ErrInvalidInput)
		}
	}

	id, err := s.backend.CreateManualProduct(ctx, in)
	if err != nil {
		return Product{}, err
	}

	// Refrescar directo del backend: el cache viejo no conoce el producto.
	fresh, err := s.backend.ListProducts(ctx, in.Species, DefaultListLimit)
	if err != nil {
		return Product{}, err
	}
	if s.store != nil {
		if err := s.store.Put(ctx, in.Species, fresh); err != nil {
			s.log.Warn("catalog cache write failed", map[string]any{"species": in.Species, "err": err.Error()})
		}
	}

	for _, p := range fresh {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: created product %s missing from catalog", ErrNotFound, id)
}

// Find busca un producto por id dentro de un listado ya cargado.
func Find(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
