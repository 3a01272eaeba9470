package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Species define las especies soportadas.
// @Enum dog, cat
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

func ParseSpecies(s string) (Species, bool) {
	switch Species(strings.ToLower(strings.TrimSpace(s))) {
	case SpeciesDog:
		return SpeciesDog, true
	case SpeciesCat:
		return SpeciesCat, true
	default:
		return "", false
	}
}

// ProductType clasifica el producto a grandes rasgos.
// @Enum main_food, treat, other
type ProductType string

const (
	TypeMainFood ProductType = "main_food"
	TypeTreat    ProductType = "treat"
	TypeOther    ProductType = "other"
)

// CategoryFilter son los filtros de categoría que entiende el listado.
// @Enum all, main-food-cat, main-food-dog, treat, prescription
type CategoryFilter string

const (
	CategoryAll          CategoryFilter = "all"
	CategoryMainFoodCat  CategoryFilter = "main-food-cat"
	CategoryMainFoodDog  CategoryFilter = "main-food-dog"
	CategoryTreat        CategoryFilter = "treat"
	CategoryPrescription CategoryFilter = "prescription"
)

func ParseCategoryFilter(s string) CategoryFilter {
	switch CategoryFilter(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryMainFoodCat, CategoryMainFoodDog, CategoryTreat, CategoryPrescription:
		return CategoryFilter(strings.ToLower(strings.TrimSpace(s)))
	default:
		return CategoryAll
	}
}

// Product es una entrada del catálogo tal como la entrega el backend.
// Price/WeightJin pueden faltar (catálogo con datos incompletos).
type Product struct {
	ID    string
	Brand string
	Name  string

	Species Species
	Type    ProductType

	// Category es la etiqueta libre del backend ("主粮", "处方粮", ...).
	Category string

	Description string
	Ingredients string
	Nutrition   string

	// Price en yuanes por paquete. nil = sin precio.
	Price *decimal.Decimal

	// WeightJin es el peso del paquete en jin (500g). nil = desconocido.
	WeightJin *decimal.Decimal

	IsPrescription bool
	Manual         bool
}

// PricePerJin deriva el precio por jin del paquete.
// - Sin precio => nil.
// - Sin peso (o peso 0) => el precio del paquete tal cual.
func (p Product) PricePerJin() *decimal.Decimal {
	if p.Price == nil {
		return nil
	}
	if p.WeightJin == nil || p.WeightJin.IsZero() {
		v := *p.Price
		return &v
	}
	v := p.Price.DivRound(*p.WeightJin, 2)
	return &v
}

// MatchesCategory aplica el filtro de categoría del listado.
func (p Product) MatchesCategory(f CategoryFilter) bool {
	switch f {
	case CategoryMainFoodCat:
		return p.Type == TypeMainFood && p.Species == SpeciesCat
	case CategoryMainFoodDog:
		return p.Type == TypeMainFood && p.Species == SpeciesDog
	case CategoryTreat:
		return p.Type == TypeTreat
	case CategoryPrescription:
		return p.IsPrescription
	default:
		return true
	}
}

// searchText concatena los campos sobre los que busca el filtro de texto.
func (p Product) searchText() string {
	return strings.ToLower(strings.Join([]string{
		p.Brand, p.Name, p.Category, p.Description, p.Ingredients, p.Nutrition,
	}, " "))
}

// MatchesQuery hace substring match case-insensitive sobre todos los campos
// de texto del producto. Query vacío matchea todo.
func (p Product) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(p.searchText(), q)
}
