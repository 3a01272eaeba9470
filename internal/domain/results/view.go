package results

import (
	"errors"
	"sort"
	"strings"

	"pet-food-advisor/internal/domain/analysis"

	"github.com/shopspring/decimal"
)

var ErrNoResult = errors.New("no analysis result")

// Ranking elige con qué criterio se ordena la vista.
// @Enum final, ideal, budget
type Ranking string

const (
	RankingFinal  Ranking = "final"
	RankingIdeal  Ranking = "ideal"
	RankingBudget Ranking = "budget"
)

func ParseRanking(s string) Ranking {
	switch Ranking(strings.ToLower(strings.TrimSpace(s))) {
	case RankingIdeal:
		return RankingIdeal
	case RankingBudget:
		return RankingBudget
	default:
		return RankingFinal
	}
}

// Entry es una fila de la vista de resultados. Marca y nombre solo se
// completan si el producto fue revelado; hasta entonces solo el código.
type Entry struct {
	Code      string
	Revealed  bool
	ProductID string

	Brand string
	Name  string

	Nutrition float64
	Fit       float64
	Safety    float64
	Value     float64
	Final     float64
	Ideal     float64
	Budget    float64

	Reasons    []string
	Highlights []string
	Risks      []string

	PricePerJin *decimal.Decimal
}

// Render arma la vista anonimizada de un resultado terminado, en el orden
// del ranking pedido. El ranking del backend manda; si no vino, se ordena
// localmente por el puntaje correspondiente.
func Render(res *analysis.Result, ranking Ranking, mapper *Mapper) ([]Entry, error) {
	if res == nil || len(res.Results) == 0 {
		return nil, ErrNoResult
	}

	ordered := orderResults(res, ranking)

	out := make([]Entry, 0, len(ordered))
	for i, sc := range ordered {
		e := Entry{
			Code:        mapper.CodeFor(sc.ProductID, i),
			Revealed:    mapper.Revealed(sc.ProductID),
			ProductID:   sc.ProductID,
			Nutrition:   sc.Nutrition,
			Fit:         sc.Fit,
			Safety:      sc.Safety,
			Value:       sc.Value,
			Final:       sc.Final,
			Ideal:       sc.Ideal,
			Budget:      sc.Budget,
			Reasons:     sc.Reasons,
			Highlights:  sc.Highlights,
			Risks:       sc.Risks,
			PricePerJin: sc.PricePerJin,
		}
		if e.Revealed {
			e.Brand = sc.Brand
			e.Name = sc.Name
		}
		out = append(out, e)
	}
	return out, nil
}

func orderResults(res *analysis.Result, ranking Ranking) []analysis.Scored {
	byID := make(map[string]analysis.Scored, len(res.Results))
	for _, sc := range res.Results {
		byID[sc.ProductID] = sc
	}

	var ids []string
	switch ranking {
	case RankingIdeal:
		ids = res.IdealRanking
	case RankingBudget:
		ids = res.BudgetRanking
	}

	if len(ids) > 0 {
		out := make([]analysis.Scored, 0, len(ids))
		seen := map[string]struct{}{}
		for _, id := range ids {
			if sc, ok := byID[id]; ok {
				out = append(out, sc)
				seen[id] = struct{}{}
			}
		}
		// Productos fuera del ranking del backend van al final, en el
		// orden original.
		for _, sc := range res.Results {
			if _, ok := seen[sc.ProductID]; !ok {
				out = append(out, sc)
			}
		}
		return out
	}

	out := make([]analysis.Scored, len(res.Results))
	copy(out, res.Results)
	sort.SliceStable(out, func(i, j int) bool {
		return scoreFor(out[i], ranking) > scoreFor(out[j], ranking)
	})
	return out
}

func scoreFor(sc analysis.Scored, ranking Ranking) float64 {
	switch ranking {
	case RankingIdeal:
		return sc.Ideal
	case RankingBudget:
		return sc.Budget
	default:
		return sc.Final
	}
}
