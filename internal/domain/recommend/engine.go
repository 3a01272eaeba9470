package recommend

import (
	"errors"
	"sort"
	"strings"

	"pet-food-advisor/internal/domain/catalog"
	"pet-food-advisor/internal/domain/profile"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCatalog = errors.New("empty catalog")
	ErrNoMatch      = errors.New("no products match filters")
)

// DefaultLimit es el tamaño de la recomendación final.
const DefaultLimit = 10

// priceBuckets para la diversificación por rango de precio.
const priceBuckets = 3

// Filter son los filtros que el usuario aplica desde la UI.
type Filter struct {
	Category catalog.CategoryFilter
	Query    string

	// Ventana de precio por jin; se intersecta con el presupuesto
	// del perfil. nil = sin tope.
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

type Input struct {
	Profile  profile.PetProfile
	Products []catalog.Product
	Filter   Filter
	Limit    int // <=0 usa DefaultLimit
}

// Candidate es un producto recomendado con su puntaje de salud.
type Candidate struct {
	Product     catalog.Product
	HealthScore int
}

// Recommend corre el pipeline completo:
// filtro de categoría → filtro de texto → exclusión por alérgenos →
// ventana de precio → puntaje de salud → ranking → truncado diversificado.
//
// El pipeline falla abierto ante datos incompletos: un producto sin
// ingredientes no se excluye por alérgenos, uno sin precio no se excluye
// por la ventana de precio.
func Recommend(in Input) ([]Candidate, error) {
	if len(in.Products) == 0 {
		return nil, ErrEmptyCatalog
	}

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	lo, hi := priceWindow(in.Filter, in.Profile)

	filtered := make([]catalog.Product, 0, len(in.Products))
	for _, p := range in.Products {
		if !p.MatchesCategory(in.Filter.Category) {
			continue
		}
		if !p.MatchesQuery(in.Filter.Query) {
			continue
		}
		if excludedByAllergens(p, in.Profile.Allergens) {
			continue
		}
		if !inPriceWindow(p, lo, hi) {
			continue
		}
		filtered = append(filtered, p)
	}
	if len(filtered) == 0 {
		return nil, ErrNoMatch
	}

	healthText := in.Profile.HealthText()
	ranked := make([]Candidate, 0, len(filtered))
	for _, p := range filtered {
		ranked = append(ranked, Candidate{Product: p, HealthScore: healthScore(healthText, p)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.HealthScore != b.HealthScore {
			return a.HealthScore > b.HealthScore
		}
		pa, pb := rankPrice(a.Product), rankPrice(b.Product)
		if cmp := pa.Cmp(pb); cmp != 0 {
			return cmp < 0
		}
		return a.Product.ID < b.Product.ID
	})

	return diversify(ranked, limit), nil
}

// priceWindow intersecta la ventana del filtro con el presupuesto del perfil.
func priceWindow(f Filter, p profile.PetProfile) (lo, hi *decimal.Decimal) {
	lo = maxDec(f.PriceMin, p.BudgetMin)
	hi = minDec(f.PriceMax, p.BudgetMax)
	return lo, hi
}

func maxDec(a, b *decimal.Decimal) *decimal.Decimal {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.GreaterThan(*b):
		return a
	default:
		return b
	}
}

func minDec(a, b *decimal.Decimal) *decimal.Decimal {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.LessThan(*b):
		return a
	default:
		return b
	}
}

// excludedByAllergens excluye si algún alérgeno aparece en los ingredientes.
// Sin texto de ingredientes no hay evidencia: el producto pasa.
func excludedByAllergens(p catalog.Product, allergens []string) bool {
	ingredients := strings.ToLower(strings.TrimSpace(p.Ingredients))
	if ingredients == "" {
		return false
	}
	for _, a := range allergens {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" && strings.Contains(ingredients, a) {
			return true
		}
	}
	return false
}

// inPriceWindow compara el precio por jin contra la ventana.
// Producto sin precio pasa siempre.
func inPriceWindow(p catalog.Product, lo, hi *decimal.Decimal) bool {
	ppj := p.PricePerJin()
	if ppj == nil {
		return true
	}
	if lo != nil && ppj.LessThan(*lo) {
		return false
	}
	if hi != nil && ppj.GreaterThan(*hi) {
		return false
	}
	return true
}

// unpricedSentinel manda los productos sin precio al final del ranking.
var unpricedSentinel = decimal.NewFromInt(999999)

func rankPrice(p catalog.Product) decimal.Decimal {
	if ppj := p.PricePerJin(); ppj != nil {
		return *ppj
	}
	return unpricedSentinel
}

// diversify trunca a limit repartiendo entre tres bandas de precio de igual
// ancho, para que la lista final no quede concentrada en una sola banda.
//   - Productos sin precio no entran a las bandas; solo por backfill.
//   - Si el spread de precios es menor a 1, no hay bandas que repartir:
//     top-limit directo.
//   - Se respeta el orden de ranking dentro y fuera de las bandas.
func diversify(ranked []Candidate, limit int) []Candidate {
	if len(ranked) <= limit {
		return ranked
	}

	var minP, maxP *decimal.Decimal
	for _, c := range ranked {
		ppj := c.Product.PricePerJin()
		if ppj == nil {
			continue
		}
		if minP == nil || ppj.LessThan(*minP) {
			v := *ppj
			minP = &v
		}
		if maxP == nil || ppj.GreaterThan(*maxP) {
			v := *ppj
			maxP = &v
		}
	}

	if minP == nil || maxP.Sub(*minP).LessThan(decimal.NewFromInt(1)) {
		return ranked[:limit]
	}

	spread := maxP.Sub(*minP)
	width := spread.Div(decimal.NewFromInt(priceBuckets))
	perBucket := (limit + priceBuckets - 1) / priceBuckets

	picked := make(map[string]struct{}, limit)
	bucketCount := [priceBuckets]int{}
	total := 0

	for _, c := range ranked {
		if total >= limit {
			break
		}
		ppj := c.Product.PricePerJin()
		if ppj == nil {
			continue
		}
		b := bucketIndex(*ppj, *minP, width)
		if bucketCount[b] >= perBucket {
			continue
		}
		bucketCount[b]++
		picked[c.Product.ID] = struct{}{}
		total++
	}

	// Backfill en orden de ranking hasta completar limit.
	for _, c := range ranked {
		if total >= limit {
			break
		}
		if _, ok := picked[c.Product.ID]; ok {
			continue
		}
		picked[c.Product.ID] = struct{}{}
		total++
	}

	out := make([]Candidate, 0, limit)
	for _, c := range ranked {
		if _, ok := picked[c.Product.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

func bucketIndex(ppj, min, width decimal.Decimal) int {
	if width.IsZero() {
		return 0
	}
	idx := int(ppj.Sub(min).Div(width).IntPart())
	if idx >= priceBuckets {
		idx = priceBuckets - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
