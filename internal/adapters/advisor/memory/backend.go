// Package memory implementa el backend de asesoría en proceso, para
// desarrollo sin backend real y para tests end-to-end del facade.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pet-food-advisor/internal/domain/analysis"
	"pet-food-advisor/internal/domain/catalog"
	"pet-food-advisor/internal/domain/profile"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrUnknownSession = errors.New("unknown analysis session")

type session struct {
	products []catalog.Product
	total    int
	polls    int
	executed bool
}

// Backend guarda todo en memoria y resuelve análisis con un puntaje
// sintético pero determinístico.
type Backend struct {
	mu       sync.Mutex
	profiles map[string]profile.PetProfile
	products map[catalog.Species][]catalog.Product
	sessions map[string]*session
	seq      int

	// PollsToComplete: cuántos polls de progreso tarda una sesión "full"
	// en completarse. Default 3.
	PollsToComplete int
}

func New() *Backend {
	b := &Backend{
		profiles:        map[string]profile.PetProfile{},
		products:        map[catalog.Species][]catalog.Product{},
		sessions:        map[string]*session{},
		PollsToComplete: 3,
	}
	b.seed()
	return b
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// seed carga un catálogo chico pero representativo por especie.
func (b *Backend) seed() {
	b.products[catalog.SpeciesCat] = []catalog.Product{
		{ID: "cat-1", Brand: "Hills", Name: "k/d 肾脏处方粮", Species: catalog.SpeciesCat, Type: catalog.TypeMainFood,
			Category: "处方粮", Description: "肾脏护理配方", Ingredients: "鸡肉, 大米", Price: dec("199"), WeightJin: dec("3"), IsPrescription: true},
		{ID: "cat-2", Brand: "Royal Canin", Name: "室内成猫粮", Species: catalog.SpeciesCat, Type: catalog.TypeMainFood,
			Category: "主粮", Description: "室内猫日常主粮", Ingredients: "鸡肉, 玉米", Price: dec("120"), WeightJin: dec("4")},
		{ID: "cat-3", Brand: "Orijen", Name: "六种鱼猫粮", Species: catalog.SpeciesCat, Type: catalog.TypeMainFood,
			Category: "主粮", Description: "高蛋白无谷", Ingredients: "三文鱼, 鲱鱼", Price: dec("420"), WeightJin: dec("4")},
		{ID: "cat-4", Brand: "Wellness", Name: "冻干鸡肉零食", Species: catalog.SpeciesCat, Type: catalog.TypeTreat,
			Category: "零食", Description: "纯肉冻干", Ingredients: "鸡肉", Price: dec("45"), WeightJin: dec("0.2")},
	}
	b.products[catalog.SpeciesDog] = []catalog.Product{
		{ID: "dog-1", Brand: "Hills", Name: "w/d 体重管理处方粮", Species: catalog.SpeciesDog, Type: catalog.TypeMainFood,
			Category: "处方粮", Description: "体重控制配方", Ingredients: "鸡肉, 燕麦", Price: dec("260"), WeightJin: dec("6"), IsPrescription: true},
		{ID: "dog-2", Brand: "Pedigree", Name: "成犬粮", Species: catalog.SpeciesDog, Type: catalog.TypeMainFood,
			Category: "主粮", Description: "日常主粮", Ingredients: "牛肉, 玉米", Price: dec("90"), WeightJin: dec("6")},
		{ID: "dog-3", Brand: "Greenies", Name: "洁齿骨", Species: catalog.SpeciesDog, Type: catalog.TypeTreat,
			Category: "零食", Description: "磨牙零食", Ingredients: "小麦", Price: dec("60"), WeightJin: dec("1")},
	}
}

func (b *Backend) CreateProfile(ctx context.Context, p profile.PetProfile) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	id := fmt.Sprintf("%d", b.seq)
	b.profiles[id] = p
	return id, nil
}

func (b *Backend) ListProducts(ctx context.Context, species catalog.Species, limit int) ([]catalog.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ps := b.products[species]
	if limit > 0 && limit < len(ps) {
		ps = ps[:limit]
	}
	out := make([]catalog.Product, len(ps))
	copy(out, ps)
	return out, nil
}

func (b *Backend) CreateManualProduct(ctx context.Context, in catalog.ManualProductInput) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := "manual_" + uuid.NewString()[:8]
	p := catalog.Product{
		ID:          id,
		Brand:       in.Brand,
		Name:        in.Name,
		Species:     in.Species,
		Type:        in.Type,
		Category:    "手动添加",
		Description: in.Description,
		Ingredients: in.Ingredients,
		Manual:      true,
	}
	if in.Price != "" {
		if d, err := decimal.NewFromString(in.Price); err == nil {
			p.Price = &d
		}
	}
	if in.WeightJin != "" {
		if d, err := decimal.NewFromString(in.WeightJin); err == nil {
			p.WeightJin = &d
		}
	}
	b.products[in.Species] = append(b.products[in.Species], p)
	return id, nil
}

func (b *Backend) StartAnalysis(ctx context.Context, req analysis.StartRequest) (analysis.StartResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prof, ok := b.profiles[req.PetID]
	if !ok {
		return analysis.StartResponse{}, fmt.Errorf("unknown pet %s", req.PetID)
	}

	selected := make([]catalog.Product, 0, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		if p, found := catalog.Find(b.products[prof.Species], id); found {
			selected = append(selected, p)
		}
	}

	// Modo fast: todo inline, sin sesión.
	if req.Mode == analysis.ModeFast {
		return analysis.StartResponse{Result: b.score(selected)}, nil
	}

	sid := uuid.NewString()
	b.sessions[sid] = &session{products: selected, total: len(selected)}
	return analysis.StartResponse{SessionID: sid, Total: len(selected)}, nil
}

func (b *Backend) ExecuteAnalysis(ctx context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	s.executed = true
	return nil
}

func (b *Backend) AnalysisProgress(ctx context.Context, sessionID string) (analysis.ProgressResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[sessionID]
	if !ok {
		return analysis.ProgressResponse{}, fmt.Errorf("%w: %s", analysis.ErrNotReady, sessionID)
	}
	if !s.executed {
		return analysis.ProgressResponse{Status: "pending", Total: s.total}, nil
	}

	s.polls++
	if s.polls >= b.PollsToComplete {
		return analysis.ProgressResponse{
			Status: "completed", Completed: s.total, Total: s.total,
			Result: b.score(s.products),
		}, nil
	}

	done := s.total * s.polls / b.PollsToComplete
	return analysis.ProgressResponse{
		Status: "running", Completed: done, Total: s.total,
		Message: fmt.Sprintf("analyzing %d/%d", done, s.total),
	}, nil
}

func (b *Backend) AnalysisResult(ctx context.Context, sessionID string) (*analysis.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[sessionID]
	if !ok {
		return nil, ErrUnknownSession
	}
	if s.polls < b.PollsToComplete {
		return nil, errors.New("analysis not completed")
	}
	return b.score(s.products), nil
}

// score arma un resultado sintético determinístico: nutrición fija por tipo,
// valor inverso al precio por jin, prescripción suma seguridad.
func (b *Backend) score(products []catalog.Product) *analysis.Result {
	res := &analysis.Result{AnonMapping: map[string]string{}}

	for _, p := range products {
		nutrition := 70.0
		if p.Type == catalog.TypeMainFood {
			nutrition = 85
		}
		safety := 75.0
		if p.IsPrescription {
			safety = 90
		}
		value := 60.0
		ppj := p.PricePerJin()
		if ppj != nil {
			v, _ := ppj.Float64()
			value = 100 - v
			if value < 10 {
				value = 10
			}
		}
		fit := 80.0
		if strings.Contains(p.Category, "零食") {
			fit = 55
		}

		final := nutrition*0.35 + fit*0.25 + safety*0.2 + value*0.2
		sc := analysis.Scored{
			ProductID:   p.ID,
			Brand:       p.Brand,
			Name:        p.Name,
			Nutrition:   nutrition,
			Fit:         fit,
			Safety:      safety,
			Value:       value,
			Final:       final,
			Ideal:       nutrition*0.5 + fit*0.3 + safety*0.2,
			Budget:      value*0.6 + nutrition*0.4,
			Reasons:     []string{fmt.Sprintf("综合评分 %.1f", final)},
			PricePerJin: ppj,
		}
		if p.IsPrescription {
			sc.Highlights = append(sc.Highlights, "处方配方")
		}
		if p.Type == catalog.TypeTreat {
			sc.Risks = append(sc.Risks, "零食不能替代主粮")
		}
		res.Results = append(res.Results, sc)
	}

	res.IdealRanking = rankBy(res.Results, func(s analysis.Scored) float64 { return s.Ideal })
	res.BudgetRanking = rankBy(res.Results, func(s analysis.Scored) float64 { return s.Budget })

	for i, id := range rankBy(res.Results, func(s analysis.Scored) float64 { return s.Final }) {
		if i > 25 {
			break
		}
		res.AnonMapping[id] = string(rune('A' + i))
	}
	return res
}

func rankBy(scored []analysis.Scored, key func(analysis.Scored) float64) []string {
	idx := make([]int, len(scored))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return key(scored[idx[a]]) > key(scored[idx[b]])
	})
	out := make([]string, 0, len(scored))
	for _, i := range idx {
		out = append(out, scored[i].ProductID)
	}
	return out
}
