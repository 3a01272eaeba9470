package results

import (
	"errors"
	"testing"

	"pet-food-advisor/internal/domain/analysis"
)

func TestMapper_BackendMappingWins(t *testing.T) {
	res := &analysis.Result{AnonMapping: map[string]string{"p1": "K"}}
	m := NewMapper(res)

	if got := m.CodeFor("p1", 0); got != "K" {
		t.Fatalf("expected backend code K, got %q", got)
	}
	// Sin entrada del backend: fallback por posición.
	if got := m.CodeFor("p2", 1); got != "B" {
		t.Fatalf("expected fallback B, got %q", got)
	}
}

func TestMapper_CodesAreStable(t *testing.T) {
	m := NewMapper(nil)

	first := m.CodeFor("p1", 0)
	// Mismo producto en otra posición (otro ranking): mismo código.
	if got := m.CodeFor("p1", 7); got != first {
		t.Fatalf("expected stable code %q, got %q", first, got)
	}
}

func TestMapper_FallbackSaturatesAtZ(t *testing.T) {
	m := NewMapper(nil)
	if got := m.CodeFor("p25", 25); got != "Z" {
		t.Fatalf("expected Z, got %q", got)
	}
	if got := m.CodeFor("p30", 30); got != "Z" {
		t.Fatalf("expected saturation at Z, got %q", got)
	}
	if got := m.CodeFor("neg", -3); got != "A" {
		t.Fatalf("expected A for negative index, got %q", got)
	}
}

func TestMapper_RevealIsIdempotentAndIsolated(t *testing.T) {
	m := NewMapper(nil)

	if m.Revealed("p1") {
		t.Fatalf("nothing revealed yet")
	}
	m.Reveal("p1")
	m.Reveal("p1")
	if !m.Revealed("p1") {
		t.Fatalf("expected p1 revealed")
	}
	if m.Revealed("p2") {
		t.Fatalf("reveal must not leak to other products")
	}
}

func TestRender_AnonymizedUntilRevealed(t *testing.T) {
	res := &analysis.Result{
		Results: []analysis.Scored{
			{ProductID: "p1", Brand: "Hills", Name: "k/d", Final: 90},
			{ProductID: "p2", Brand: "Royal", Name: "RF23", Final: 80},
		},
	}
	m := NewMapper(res)

	entries, err := Render(res, RankingFinal, m)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if entries[0].Code != "A" || entries[1].Code != "B" {
		t.Fatalf("expected codes A,B got %q,%q", entries[0].Code, entries[1].Code)
	}
	if entries[0].Brand != "" || entries[0].Name != "" {
		t.Fatalf("brand/name must be hidden before reveal")
	}

	m.Reveal("p1")
	entries, _ = Render(res, RankingFinal, m)
	if !entries[0].Revealed || entries[0].Brand != "Hills" {
		t.Fatalf("expected p1 revealed with brand, got %+v", entries[0])
	}
	if entries[1].Revealed || entries[1].Brand != "" {
		t.Fatalf("p2 must stay anonymous")
	}
}

func TestRender_RankingsUseBackendSnapshots(t *testing.T) {
	res := &analysis.Result{
		Results: []analysis.Scored{
			{ProductID: "p1", Final: 90, Ideal: 70, Budget: 50},
			{ProductID: "p2", Final: 80, Ideal: 95, Budget: 60},
			{ProductID: "p3", Final: 70, Ideal: 60, Budget: 99},
		},
		IdealRanking:  []string{"p2", "p1", "p3"},
		BudgetRanking: []string{"p3", "p2", "p1"},
	}
	m := NewMapper(res)

	ideal, err := Render(res, RankingIdeal, m)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if ideal[0].ProductID != "p2" || ideal[1].ProductID != "p1" || ideal[2].ProductID != "p3" {
		t.Fatalf("ideal ranking not honored: %+v", ideal)
	}

	budget, _ := Render(res, RankingBudget, m)
	if budget[0].ProductID != "p3" {
		t.Fatalf("budget ranking not honored: %+v", budget)
	}

	// El código por producto es el mismo en ambas vistas.
	codeByID := map[string]string{}
	for _, e := range ideal {
		codeByID[e.ProductID] = e.Code
	}
	for _, e := range budget {
		if codeByID[e.ProductID] != e.Code {
			t.Fatalf("code for %s differs across views", e.ProductID)
		}
	}
}

func TestRender_FallsBackToLocalSortWithoutSnapshot(t *testing.T) {
	res := &analysis.Result{
		Results: []analysis.Scored{
			{ProductID: "low", Ideal: 10},
			{ProductID: "high", Ideal: 99},
		},
	}
	entries, err := Render(res, RankingIdeal, NewMapper(res))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if entries[0].ProductID != "high" {
		t.Fatalf("expected local sort by ideal score, got %+v", entries)
	}
}

func TestRender_NoResult(t *testing.T) {
	if _, err := Render(nil, RankingFinal, NewMapper(nil)); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if _, err := Render(&analysis.Result{}, RankingFinal, NewMapper(nil)); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult for empty result, got %v", err)
	}
}

func TestParseRanking(t *testing.T) {
	if ParseRanking(" Ideal ") != RankingIdeal {
		t.Fatalf("expected ideal")
	}
	if ParseRanking("budget") != RankingBudget {
		t.Fatalf("expected budget")
	}
	if ParseRanking("whatever") != RankingFinal {
		t.Fatalf("expected final default")
	}
}
