package nutriapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pet-food-advisor/internal/domain/analysis"
	"pet-food-advisor/internal/domain/catalog"
	"pet-food-advisor/internal/domain/profile"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return c, srv
}

func TestClient_NotConfigured(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := c.CreateProfile(context.Background(), profile.PetProfile{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestClient_CreateProfile(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/pet/create" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "pet_id": 42}`))
	}))

	id, err := c.CreateProfile(context.Background(), profile.PetProfile{Name: "球球", Species: catalog.SpeciesCat})
	if err != nil {
		t.Fatalf("CreateProfile error: %v", err)
	}
	if id != "42" {
		t.Fatalf("expected id 42, got %q", id)
	}
}

func TestClient_CreateProfile_UpstreamDetail(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "species is required"}`))
	}))

	_, err := c.CreateProfile(context.Background(), profile.PetProfile{})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "species is required") {
		t.Fatalf("expected backend detail surfaced, got %q", got)
	}
}

func TestClient_ListProducts_MapsWireFormat(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("species") != "cat" || r.URL.Query().Get("limit") != "100" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "products": [
			{"id": 7, "brand": "Hills", "name": "k/d", "species": "cat",
			 "category": "处方粮", "description": "肾脏护理", "ingredients": "鸡肉",
			 "price": 199.5, "weight_jin": 3, "is_prescription": true},
			{"id": "manual_1", "name": "自制", "species": "cat", "category": "零食", "is_manual": true}
		]}`))
	}))

	products, err := c.ListProducts(context.Background(), catalog.SpeciesCat, 0)
	if err != nil {
		t.Fatalf("ListProducts error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	rx := products[0]
	if rx.ID != "7" || !rx.IsPrescription || rx.Type != catalog.TypeMainFood {
		t.Fatalf("prescription product mapped wrong: %#v", rx)
	}
	if rx.Price == nil || rx.Price.String() != "199.5" || rx.WeightJin == nil {
		t.Fatalf("price/weight mapped wrong: %#v", rx)
	}
	if ppj := rx.PricePerJin(); ppj == nil || ppj.String() != "66.5" {
		t.Fatalf("expected 66.5 per jin, got %v", ppj)
	}

	manual := products[1]
	if manual.ID != "manual_1" || !manual.Manual || manual.Type != catalog.TypeTreat {
		t.Fatalf("manual product mapped wrong: %#v", manual)
	}
	if manual.Price != nil {
		t.Fatalf("absent price must map to nil")
	}
}

func TestClient_CreateManualProduct(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products/manual" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "product_id": "manual_9"}`))
	}))

	id, err := c.CreateManualProduct(context.Background(), catalog.ManualProductInput{
		Name: "自制冻干", Species: catalog.SpeciesCat, Type: catalog.TypeTreat,
	})
	if err != nil {
		t.Fatalf("CreateManualProduct error: %v", err)
	}
	if id != "manual_9" {
		t.Fatalf("expected manual_9, got %q", id)
	}
}

func TestClient_StartAnalysis_FastPathInlineResult(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "result": {
			"results": [{"product_id": 7, "final_score": 88.5, "reasons": ["高蛋白"]}],
			"ideal_ranking": [7],
			"budget_ranking": [7],
			"anonymous_mapping": {"7": "A"}
		}}`))
	}))

	resp, err := c.StartAnalysis(context.Background(), analysis.StartRequest{
		PetID: "42", ProductIDs: []string{"7"}, Mode: analysis.ModeFast,
	})
	if err != nil {
		t.Fatalf("StartAnalysis error: %v", err)
	}
	if resp.Result == nil || len(resp.Result.Results) != 1 {
		t.Fatalf("expected inline result")
	}
	if resp.Result.Results[0].ProductID != "7" || resp.Result.Results[0].Final != 88.5 {
		t.Fatalf("scored mapped wrong: %#v", resp.Result.Results[0])
	}
	if resp.Result.IdealRanking[0] != "7" || resp.Result.AnonMapping["7"] != "A" {
		t.Fatalf("rankings/mapping mapped wrong: %#v", resp.Result)
	}
}

func TestClient_AnalysisProgress_NotFoundIsNotReady(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.AnalysisProgress(context.Background(), "sess-1")
	if !errors.Is(err, analysis.ErrNotReady) {
		t.Fatalf("expected ErrNotReady for 404, got %v", err)
	}
}

func TestClient_AnalysisProgress_And_Result(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analysis/progress/sess-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "status": "running", "completed": 3, "total": 10, "message": "scoring"}`))
	})
	mux.HandleFunc("/api/analysis/result/sess-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "status": "completed", "result": {"results": [{"product_id": 1}]}}`))
	})
	c, _ := newTestClient(t, mux)

	p, err := c.AnalysisProgress(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("AnalysisProgress error: %v", err)
	}
	if p.Status != "running" || p.Completed != 3 || p.Total != 10 || p.Message != "scoring" {
		t.Fatalf("progress mapped wrong: %+v", p)
	}

	res, err := c.AnalysisResult(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("AnalysisResult error: %v", err)
	}
	if len(res.Results) != 1 || res.Results[0].ProductID != "1" {
		t.Fatalf("result mapped wrong: %+v", res)
	}
}
