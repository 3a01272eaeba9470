package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pet-food-advisor/internal/domain/analysis"
	"pet-food-advisor/internal/domain/catalog"
	"pet-food-advisor/internal/domain/profile"
	"pet-food-advisor/internal/domain/recommend"
	"pet-food-advisor/internal/domain/results"
	"pet-food-advisor/internal/platform/logger"
)

// Stage es la etapa del flujo de asesoría.
// @Enum pet_info, product_selection, analyzing, results
type Stage string

const (
	StagePetInfo   Stage = "pet_info"
	StageProducts  Stage = "product_selection"
	StageAnalyzing Stage = "analyzing"
	StageResults   Stage = "results"
)

var stageOrder = map[Stage]int{
	StagePetInfo:   0,
	StageProducts:  1,
	StageAnalyzing: 2,
	StageResults:   3,
}

func ParseStage(s string) (Stage, bool) {
	st := Stage(s)
	_, ok := stageOrder[st]
	return st, ok
}

var (
	ErrInvalidStage = errors.New("invalid stage")

	// ErrPrecondition: la transición pedida no cumple sus requisitos
	// (perfil sin registrar, selección vacía, análisis sin terminar...).
	ErrPrecondition = errors.New("stage precondition not met")

	// ErrNoSession: no hay análisis en curso ni terminado.
	ErrNoSession = errors.New("no analysis session")
)

// Deps son los servicios que el workflow orquesta.
type Deps struct {
	Profiles *profile.Service
	Catalog  *catalog.Service
	Analysis *analysis.Manager
	Log      logger.Logger
}

// Workflow es el estado canónico de una sesión de asesoría. Una instancia
// por browsing session; el mutex serializa todo acceso.
type Workflow struct {
	id   string
	deps Deps

	mu        sync.Mutex
	stage     Stage
	profile   *profile.PetProfile
	selection *catalog.Selection
	session   *analysis.Session
	result    *analysis.Result
	mapper    *results.Mapper
}

func New(id string, deps Deps) *Workflow {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Workflow{
		id:        id,
		deps:      deps,
		stage:     StagePetInfo,
		selection: catalog.NewSelection(),
	}
}

func (w *Workflow) ID() string { return w.id }

func (w *Workflow) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// SubmitProfile registra el perfil contra el backend y avanza a la
// selección de productos. Solo válido en la etapa inicial; para corregir
// el perfil más adelante hay que retroceder primero.
func (w *Workflow) SubmitProfile(ctx context.Context, in profile.SubmitInput) (profile.PetProfile, error) {
	w.mu.Lock()
	if w.stage != StagePetInfo {
		w.mu.Unlock()
		return profile.PetProfile{}, fmt.Errorf("%w: profile can only be submitted at %s", ErrPrecondition, StagePetInfo)
	}
	w.mu.Unlock()

	p, err := w.deps.Profiles.Submit(ctx, in)
	if err != nil {
		return profile.PetProfile{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StagePetInfo {
		// Otro request movió el flujo mientras registrábamos: no pisar.
		return profile.PetProfile{}, fmt.Errorf("%w: stage changed during submit", ErrPrecondition)
	}
	w.profile = &p
	w.stage = StageProducts
	return p, nil
}

// Profile retorna el perfil registrado, si existe.
func (w *Workflow) Profile() (profile.PetProfile, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.profile == nil {
		return profile.PetProfile{}, false
	}
	return *w.profile, true
}

// ListProducts lista el catálogo para la especie del perfil.
func (w *Workflow) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	p, err := w.requireProfile()
	if err != nil {
		return nil, err
	}
	return w.deps.Catalog.List(ctx, p.Species)
}

// CreateManualProduct agrega un producto a mano y lo deja seleccionado.
func (w *Workflow) CreateManualProduct(ctx context.Context, in catalog.ManualProductInput) (catalog.Product, error) {
	p, err := w.requireProfile()
	if err != nil {
		return catalog.Product{}, err
	}
	in.Species = p.Species

	created, err := w.deps.Catalog.CreateManual(ctx, in)
	if err != nil {
		return catalog.Product{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.selection.AddManual(created.ID); err != nil {
		return created, err
	}
	return created, nil
}

func (w *Workflow) Select(productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.Add(productID)
}

func (w *Workflow) Deselect(productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.Remove(productID)
}

func (w *Workflow) ClearSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selection.Clear()
}

func (w *Workflow) SelectionIDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.IDs()
}

// Recommend corre el motor sobre el catálogo y reemplaza la selección con
// el resultado.
func (w *Workflow) Recommend(ctx context.Context, f recommend.Filter) ([]recommend.Candidate, error) {
	p, err := w.requireProfile()
	if err != nil {
		return nil, err
	}

	products, err := w.deps.Catalog.List(ctx, p.Species)
	if err != nil {
		return nil, err
	}

	picks, err := recommend.Recommend(recommend.Input{
		Profile:  p,
		Products: products,
		Filter:   f,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(picks))
	for _, c := range picks {
		ids = append(ids, c.Product.ID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.selection.Replace(ids); err != nil {
		return nil, err
	}
	return picks, nil
}

// StartAnalysis arranca una sesión nueva. Cualquier sesión anterior se
// cancela y el resultado previo (con su anonimización) se descarta.
func (w *Workflow) StartAnalysis(ctx context.Context, mode analysis.Mode) (*analysis.Session, error) {
	w.mu.Lock()
	if w.stage != StageProducts {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: analysis starts from %s", ErrPrecondition, StageProducts)
	}
	if w.profile == nil || w.profile.ID == "" {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: profile not registered", ErrPrecondition)
	}
	if w.selection.Len() == 0 {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: empty selection", ErrPrecondition)
	}
	petID := w.profile.ID
	ids := w.selection.IDs()
	manual := w.selection.ManualIDs()
	old := w.session
	w.mu.Unlock()

	if old != nil {
		old.Cancel()
	}

	s, err := w.deps.Analysis.Start(ctx, analysis.StartRequest{
		PetID:            petID,
		ProductIDs:       ids,
		ManualProductIDs: manual,
		Mode:             mode,
	}, analysis.Hooks{OnDone: w.onSessionDone})
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.session = s
	w.result = nil
	w.mapper = nil
	w.stage = StageAnalyzing
	w.mu.Unlock()

	// Camino rápido: la sesión pudo terminar antes de quedar registrada,
	// con el hook cayendo en el guard de sesión vieja. Reaplicar acá.
	if s.Status().Terminal() {
		w.onSessionDone(s)
	}
	return s, nil
}

// onSessionDone corre desde la goroutine de polling. Callbacks de sesiones
// reemplazadas no tocan el estado actual.
func (w *Workflow) onSessionDone(s *analysis.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if s != w.session {
		return
	}
	res, ok := s.Result()
	if !ok || w.result != nil {
		return
	}
	w.result = res
	w.mapper = results.NewMapper(res)
	w.stage = StageResults
	w.deps.Log.Info("analysis completed", map[string]any{"workflow": w.id, "session": s.ID})
}

// AnalysisProgress retorna el snapshot de avance de la sesión actual.
func (w *Workflow) AnalysisProgress() (analysis.Progress, error) {
	w.mu.Lock()
	s := w.session
	w.mu.Unlock()
	if s == nil {
		return analysis.Progress{}, ErrNoSession
	}
	return s.Progress(), nil
}

// CancelAnalysis cancela la sesión en curso. Idempotente.
func (w *Workflow) CancelAnalysis() error {
	w.mu.Lock()
	s := w.session
	w.mu.Unlock()
	if s == nil {
		return ErrNoSession
	}
	s.Cancel()
	return nil
}

// Results renderiza la vista anonimizada del resultado.
func (w *Workflow) Results(ranking results.Ranking) ([]results.Entry, error) {
	w.mu.Lock()
	res, mapper := w.result, w.mapper
	w.mu.Unlock()
	if res == nil {
		return nil, results.ErrNoResult
	}
	return results.Render(res, ranking, mapper)
}

// Reveal destapa un producto del resultado. Presentación pura: los
// rankings no cambian.
func (w *Workflow) Reveal(productID string) error {
	w.mu.Lock()
	res, mapper := w.result, w.mapper
	w.mu.Unlock()
	if res == nil {
		return results.ErrNoResult
	}
	for _, sc := range res.Results {
		if sc.ProductID == productID {
			mapper.Reveal(productID)
			return nil
		}
	}
	return fmt.Errorf("%w: product %s not in result", catalog.ErrNotFound, productID)
}

// Retreat vuelve a una etapa anterior sin perder datos. Si deja atrás un
// análisis en curso, lo cancela.
func (w *Workflow) Retreat(to Stage) error {
	if _, ok := stageOrder[to]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStage, to)
	}

	w.mu.Lock()
	if stageOrder[to] >= stageOrder[w.stage] {
		cur := w.stage
		w.mu.Unlock()
		return fmt.Errorf("%w: cannot retreat from %s to %s", ErrInvalidStage, cur, to)
	}
	s := w.session
	w.stage = to
	w.mu.Unlock()

	if s != nil && !s.Status().Terminal() {
		s.Cancel()
	}
	return nil
}

// Restart cancela lo que haya en vuelo y deja el flujo como recién creado.
func (w *Workflow) Restart() {
	w.mu.Lock()
	s := w.session
	w.mu.Unlock()
	if s != nil {
		s.Cancel()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stage = StagePetInfo
	w.profile = nil
	w.selection = catalog.NewSelection()
	w.session = nil
	w.result = nil
	w.mapper = nil
}

func (w *Workflow) requireProfile() (profile.PetProfile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.profile == nil {
		return profile.PetProfile{}, fmt.Errorf("%w: profile not registered", ErrPrecondition)
	}
	return *w.profile, nil
}
