package nutriapi

import (
	"encoding/json"
	"strings"

	"pet-food-advisor/internal/domain/analysis"
	"pet-food-advisor/internal/domain/catalog"

	"github.com/shopspring/decimal"
)

// flexibleID acepta ids numéricos o string (el backend histórico manda
// enteros; los manuales pueden venir como string).
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

func (f flexibleID) String() string { return string(f) }

type wireProduct struct {
	ID             flexibleID  `json:"id"`
	Brand          string      `json:"brand"`
	Name           string      `json:"name"`
	Species        string      `json:"species"`
	Category       string      `json:"category"`
	Description    string      `json:"description"`
	Ingredients    string      `json:"ingredients"`
	Nutrition      string      `json:"nutrition"`
	Price          json.Number `json:"price"`
	WeightJin      json.Number `json:"weight_jin"`
	IsPrescription bool        `json:"is_prescription"`
	IsManual       bool        `json:"is_manual"`
}

func (w wireProduct) toDomain() catalog.Product {
	p := catalog.Product{
		ID:             w.ID.String(),
		Brand:          w.Brand,
		Name:           w.Name,
		Species:        catalog.Species(strings.ToLower(w.Species)),
		Type:           inferType(w.Category),
		Category:       w.Category,
		Description:    w.Description,
		Ingredients:    w.Ingredients,
		Nutrition:      w.Nutrition,
		IsPrescription: w.IsPrescription || strings.Contains(w.Category, "处方"),
		Manual:         w.IsManual,
	}
	p.Price = parseWireDecimal(w.Price)
	p.WeightJin = parseWireDecimal(w.WeightJin)
	return p
}

// inferType deduce el tipo desde la etiqueta libre de categoría del backend.
func inferType(category string) catalog.ProductType {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "零食") || strings.Contains(c, "treat") || strings.Contains(c, "snack"):
		return catalog.TypeTreat
	case strings.Contains(c, "主粮") || strings.Contains(c, "粮") || strings.Contains(c, "food"):
		return catalog.TypeMainFood
	default:
		return catalog.TypeOther
	}
}

func parseWireDecimal(n json.Number) *decimal.Decimal {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

type wireScored struct {
	ProductID flexibleID `json:"product_id"`
	Brand     string     `json:"brand"`
	Name      string     `json:"name"`

	NutritionScore float64 `json:"nutrition_score"`
	FitScore       float64 `json:"fit_score"`
	SafetyScore    float64 `json:"safety_score"`
	ValueScore     float64 `json:"value_score"`
	FinalScore     float64 `json:"final_score"`
	IdealScore     float64 `json:"ideal_score"`
	BudgetScore    float64 `json:"budget_score"`

	Reasons    []string `json:"reasons"`
	Highlights []string `json:"highlights"`
	Risks      []string `json:"risks"`

	PricePerJin json.Number `json:"price_per_jin"`
}

type wireResult struct {
	Results          []wireScored      `json:"results"`
	IdealRanking     []flexibleID      `json:"ideal_ranking"`
	BudgetRanking    []flexibleID      `json:"budget_ranking"`
	AnonymousMapping map[string]string `json:"anonymous_mapping"`
}

func (w *wireResult) toDomain() *analysis.Result {
	if w == nil {
		return nil
	}
	res := &analysis.Result{
		Results:       make([]analysis.Scored, 0, len(w.Results)),
		IdealRanking:  idsToStrings(w.IdealRanking),
		BudgetRanking: idsToStrings(w.BudgetRanking),
		AnonMapping:   w.AnonymousMapping,
	}
	for _, sc := range w.Results {
		res.Results = append(res.Results, analysis.Scored{
			ProductID:   sc.ProductID.String(),
			Brand:       sc.Brand,
			Name:        sc.Name,
			Nutrition:   sc.NutritionScore,
			Fit:         sc.FitScore,
			Safety:      sc.SafetyScore,
			Value:       sc.ValueScore,
			Final:       sc.FinalScore,
			Ideal:       sc.IdealScore,
			Budget:      sc.BudgetScore,
			Reasons:     sc.Reasons,
			Highlights:  sc.Highlights,
			Risks:       sc.Risks,
			PricePerJin: parseWireDecimal(sc.PricePerJin),
		})
	}
	return res
}

func idsToStrings(ids []flexibleID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
