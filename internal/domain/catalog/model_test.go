package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestProduct_PricePerJin(t *testing.T) {
	p := Product{Price: dec("90"), WeightJin: dec("3")}
	got := p.PricePerJin()
	if got == nil || !got.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("expected 30 per jin, got %v", got)
	}

	// Sin peso: precio del paquete tal cual.
	p = Product{Price: dec("45.5")}
	got = p.PricePerJin()
	if got == nil || !got.Equal(decimal.RequireFromString("45.5")) {
		t.Fatalf("expected package price fallback, got %v", got)
	}

	// Sin precio: nil.
	p = Product{WeightJin: dec("2")}
	if p.PricePerJin() != nil {
		t.Fatalf("expected nil for unpriced product")
	}
}

func TestProduct_PricePerJin_RoundsToCents(t *testing.T) {
	p := Product{Price: dec("100"), WeightJin: dec("3")}
	got := p.PricePerJin()
	if got == nil || got.String() != "33.33" {
		t.Fatalf("expected 33.33, got %v", got)
	}
}

func TestProduct_MatchesCategory(t *testing.T) {
	catFood := Product{Species: SpeciesCat, Type: TypeMainFood}
	dogFood := Product{Species: SpeciesDog, Type: TypeMainFood}
	treat := Product{Species: SpeciesCat, Type: TypeTreat}
	rx := Product{Species: SpeciesDog, Type: TypeMainFood, IsPrescription: true}

	if !catFood.MatchesCategory(CategoryAll) || !rx.MatchesCategory(CategoryAll) {
		t.Fatalf("all must match everything")
	}
	if !catFood.MatchesCategory(CategoryMainFoodCat) || dogFood.MatchesCategory(CategoryMainFoodCat) {
		t.Fatalf("main-food-cat filter wrong")
	}
	if !dogFood.MatchesCategory(CategoryMainFoodDog) || treat.MatchesCategory(CategoryMainFoodDog) {
		t.Fatalf("main-food-dog filter wrong")
	}
	if !treat.MatchesCategory(CategoryTreat) || catFood.MatchesCategory(CategoryTreat) {
		t.Fatalf("treat filter wrong")
	}
	if !rx.MatchesCategory(CategoryPrescription) || dogFood.MatchesCategory(CategoryPrescription) {
		t.Fatalf("prescription filter wrong")
	}
}

func TestProduct_MatchesQuery(t *testing.T) {
	p := Product{
		Brand:       "Hills",
		Name:        "k/d 肾脏处方粮",
		Description: "肾脏护理配方",
		Ingredients: "鸡肉, 大米",
	}

	cases := []struct {
		q    string
		want bool
	}{
		{"", true},
		{"hills", true},
		{"HILLS", true},
		{"肾脏", true},
		{"鸡肉", true},
		{"beef", false},
	}
	for _, c := range cases {
		if got := p.MatchesQuery(c.q); got != c.want {
			t.Fatalf("MatchesQuery(%q) = %v, want %v", c.q, got, c.want)
		}
	}
}
