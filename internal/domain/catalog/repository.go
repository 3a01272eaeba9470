package catalog

import (
	"context"
	"time"
)

// DefaultTTL es la vigencia del catálogo cacheado por especie.
const DefaultTTL = 24 * time.Hour

// Store cachea el catálogo por especie con TTL.
// Get retorna ok=false si no hay entrada o si expiró (la implementación
// debe desalojar entradas vencidas al leerlas).
type Store interface {
	Get(ctx context.Context, species Species) ([]Product, bool, error)
	Put(ctx context.Context, species Species, products []Product) error
}

// Backend es el proveedor remoto del catálogo.
type Backend interface {
	ListProducts(ctx context.Context, species Species, limit int) ([]Product, error)
	CreateManualProduct(ctx context.Context, in ManualProductInput) (string, error)
}

// ManualProductInput describe un producto agregado a mano por el usuario.
type ManualProductInput struct {
	Brand       string
	Name        string
	Species     Species
	Type        ProductType
	Description string
	Ingredients string
	Price       string // decimal opcional, como texto
	WeightJin   string // decimal opcional, como texto
}
