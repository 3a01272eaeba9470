package workflow

import (
	"encoding/json"
	"errors"
	"net/http"

	"pet-food-advisor/internal/domain/analysis"
	"pet-food-advisor/internal/domain/catalog"
	"pet-food-advisor/internal/domain/profile"
	"pet-food-advisor/internal/domain/recommend"
	"pet-food-advisor/internal/domain/results"
	"pet-food-advisor/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, reg *Registry) {
	r.Route("/workflow", func(wr chi.Router) {
		wr.Post("/profile", submitProfileHandler(reg))
		wr.Get("/stage", stageHandler(reg))
		wr.Post("/retreat", retreatHandler(reg))
		wr.Post("/restart", restartHandler(reg))

		wr.Get("/products", listProductsHandler(reg))
		wr.Post("/products/manual", createManualProductHandler(reg))

		wr.Get("/selection", listSelectionHandler(reg))
		wr.Post("/selection", selectHandler(reg))
		wr.Delete("/selection", clearSelectionHandler(reg))
		wr.Delete("/selection/{productID}", deselectHandler(reg))

		wr.Post("/recommend", recommendHandler(reg))

		wr.Post("/analyze", analyzeHandler(reg))
		wr.Get("/analysis/progress", progressHandler(reg))
		wr.Post("/analysis/cancel", cancelHandler(reg))

		wr.Get("/results", resultsHandler(reg))
		wr.Post("/results/reveal", revealHandler(reg))
	})
}

// -------------------------
// Requests / responses
// -------------------------

type submitProfileRequest struct {
	Name             string   `json:"name"`
	Species          string   `json:"species"`
	Breed            string   `json:"breed"`
	AgeMonths        int      `json:"age_months"`
	WeightKg         float64  `json:"weight_kg"`
	HealthConditions []string `json:"health_conditions"`
	Allergens        []string `json:"allergens"`
	BudgetMin        string   `json:"budget_min"` // decimal opcional
	BudgetMax        string   `json:"budget_max"` // decimal opcional
	MonthlyBudget    string   `json:"monthly_budget"`
}

type profileResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Species          string   `json:"species"`
	Breed            string   `json:"breed,omitempty"`
	AgeMonths        int      `json:"age_months"`
	WeightKg         float64  `json:"weight_kg"`
	HealthConditions []string `json:"health_conditions"`
	Allergens        []string `json:"allergens"`
	BudgetMin        string   `json:"budget_min,omitempty"`
	BudgetMax        string   `json:"budget_max,omitempty"`
	MonthlyBudget    string   `json:"monthly_budget,omitempty"`
	Stage            string   `json:"stage"`
}

type stageResponse struct {
	Stage Stage `json:"stage"`
}

type retreatRequest struct {
	Stage string `json:"stage"`
}

type productResponse struct {
	ID             string `json:"id"`
	Brand          string `json:"brand"`
	Name           string `json:"name"`
	Species        string `json:"species"`
	Type           string `json:"type"`
	Category       string `json:"category,omitempty"`
	Description    string `json:"description,omitempty"`
	Ingredients    string `json:"ingredients,omitempty"`
	Nutrition      string `json:"nutrition,omitempty"`
	Price          string `json:"price,omitempty"`
	PricePerJin    string `json:"price_per_jin,omitempty"`
	IsPrescription bool   `json:"is_prescription"`
	Manual         bool   `json:"manual"`
	Selected       bool   `json:"selected"`
}

type manualProductRequest struct {
	Brand       string `json:"brand"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Ingredients string `json:"ingredients"`
	Price       string `json:"price"`
	WeightJin   string `json:"weight_jin"`
}

type selectRequest struct {
	ProductID string `json:"product_id"`
}

type selectionResponse struct {
	ProductIDs []string `json:"product_ids"`
	Count      int      `json:"count"`
	Max        int      `json:"max"`
}

type recommendRequest struct {
	Category string `json:"category"`
	Query    string `json:"query"`
	PriceMin string `json:"price_min"`
	PriceMax string `json:"price_max"`
}

type recommendedResponse struct {
	Product     productResponse `json:"product"`
	HealthScore int             `json:"health_score"`
}

type analyzeRequest struct {
	Mode string `json:"mode"` // full | fast
}

type analyzeResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Stage     Stage  `json:"stage"`
}

type progressResponse struct {
	Status    string `json:"status"`
	Percent   int    `json:"percent"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Message   string `json:"message,omitempty"`
	Stage     Stage  `json:"stage"`
}

type resultEntryResponse struct {
	Code        string   `json:"code"`
	Revealed    bool     `json:"revealed"`
	ProductID   string   `json:"product_id"`
	Brand       string   `json:"brand,omitempty"`
	Name        string   `json:"name,omitempty"`
	Nutrition   float64  `json:"nutrition_score"`
	Fit         float64  `json:"fit_score"`
	Safety      float64  `json:"safety_score"`
	Value       float64  `json:"value_score"`
	Final       float64  `json:"final_score"`
	Ideal       float64  `json:"ideal_score"`
	Budget      float64  `json:"budget_score"`
	Reasons     []string `json:"reasons,omitempty"`
	Highlights  []string `json:"highlights,omitempty"`
	Risks       []string `json:"risks,omitempty"`
	PricePerJin string   `json:"price_per_jin,omitempty"`
}

type revealRequest struct {
	ProductID string `json:"product_id"`
}

// -------------------------
// Handlers
// -------------------------

func submitProfileHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}

		var req submitProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := wf.SubmitProfile(r.Context(), profile.SubmitInput{
			Name:             req.Name,
			Species:          req.Species,
			Breed:            req.Breed,
			AgeMonths:        req.AgeMonths,
			WeightKg:         req.WeightKg,
			HealthConditions: req.HealthConditions,
			Allergens:        req.Allergens,
			BudgetMin:        req.BudgetMin,
			BudgetMax:        req.BudgetMax,
			MonthlyBudget:    req.MonthlyBudget,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toProfileResponse(p, wf.Stage()))
	}
}

func stageHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, stageResponse{Stage: wf.Stage()})
	}
}

func retreatHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}

		var req retreatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		st, ok2 := ParseStage(req.Stage)
		if !ok2 {
			http.Error(w, "unknown stage", http.StatusBadRequest)
			return
		}
		if err := wf.Retreat(st); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stageResponse{Stage: wf.Stage()})
	}
}

func restartHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}
		wf.Restart()
		writeJSON(w, http.StatusOK, stageResponse{Stage: wf.Stage()})
	}
}

// listProductsHandler godoc
// @Summary Listar catálogo para la especie del perfil
// @Description Lista el catálogo cacheado (TTL 24h) para la especie de la mascota registrada. Filtros opcionales por categoría, texto y ventana de precio.
// @Tags workflow
// @Produce json
// @Param X-Session-ID header string false "Browsing session; se emite una nueva si falta"
// @Param category query string false "all | main-food-cat | main-food-dog | treat | prescription"
// @Param q query string false "Búsqueda por substring en marca/nombre/descripción/ingredientes"
// @Param price_min query string false "Precio mínimo por paquete"
// @Param price_max query string false "Precio máximo por paquete"
// @Success 200 {array} productResponse
// @Failure 409 {string} string "perfil sin registrar"
// @Router /workflow/products [get]
func listProductsHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}

		products, err := wf.ListProducts(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		category := catalog.ParseCategoryFilter(r.URL.Query().Get("category"))
		q := r.URL.Query().Get("q")
		priceMin := parseQueryDecimal(r.URL.Query().Get("price_min"))
		priceMax := parseQueryDecimal(r.URL.Query().Get("price_max"))

		selected := map[string]struct{}{}
		for _, id := range wf.SelectionIDs() {
			selected[id] = struct{}{}
		}

		out := make([]productResponse, 0, len(products))
		for _, p := range products {
			if !p.MatchesCategory(category) || !p.MatchesQuery(q) {
				continue
			}
			if p.Price != nil {
				if priceMin != nil && p.Price.LessThan(*priceMin) {
					continue
				}
				if priceMax != nil && p.Price.GreaterThan(*priceMax) {
					continue
				}
			}
			_, isSel := selected[p.ID]
			out = append(out, toProductResponse(p, isSel))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createManualProductHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}

		var req manualProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := wf.CreateManualProduct(r.Context(), catalog.ManualProductInput{
			Brand:       req.Brand,
			Name:        req.Name,
			Type:        catalog.ProductType(req.Type),
			Description: req.Description,
			Ingredients: req.Ingredients,
			Price:       req.Price,
			WeightJin:   req.WeightJin,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		// El producto manual queda auto-seleccionado.
		writeJSON(w, http.StatusCreated, toProductResponse(p, true))
	}
}

func listSelectionHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toSelectionResponse(wf))
	}
}

func selectHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}

		var req selectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
			http.Error(w, "product_id required", http.StatusBadRequest)
			return
		}
		if err := wf.Select(req.ProductID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSelectionResponse(wf))
	}
}

func deselectHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}
		if err := wf.Deselect(chi.URLParam(r, "productID")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSelectionResponse(wf))
	}
}

func clearSelectionHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}
		wf.ClearSelection()
		writeJSON(w, http.StatusOK, toSelectionResponse(wf))
	}
}

// recommendHandler godoc
// @Summary Recomendar productos y reemplazar la selección
// @Description Corre el motor de recomendación (filtros → alérgenos → precio → salud → diversificación de precio) y deja la selección con el top resultante.
// @Tags workflow
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Browsing session"
// @Param payload body recommendRequest true "Filtros de la UI"
// @Success 200 {array} recommendedResponse
// @Failure 404 {string} string "catálogo vacío / sin coincidencias"
// @Failure 409 {string} string "perfil sin registrar"
// @Router /workflow/recommend [post]
func recommendHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}

		var req recommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		picks, err := wf.Recommend(r.Context(), recommend.Filter{
			Category: catalog.ParseCategoryFilter(req.Category),
			Query:    req.Query,
			PriceMin: parseQueryDecimal(req.PriceMin),
			PriceMax: parseQueryDecimal(req.PriceMax),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]recommendedResponse, 0, len(picks))
		for _, c := range picks {
			out = append(out, recommendedResponse{
				Product:     toProductResponse(c.Product, true),
				HealthScore: c.HealthScore,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// analyzeHandler godoc
// @Summary Arrancar el análisis de la selección
// @Description Crea la sesión de análisis en el backend y dispara la ejecución. Si el backend resuelve inline (modo fast), la sesión nace completada. El avance se consulta por /workflow/analysis/progress.
// @Tags workflow
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Browsing session"
// @Param payload body analyzeRequest true "Modo: full | fast"
// @Success 202 {object} analyzeResponse
// @Failure 409 {string} string "precondición: perfil registrado y selección no vacía"
// @Router /workflow/analyze [post]
func analyzeHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		s, err := wf.StartAnalysis(r.Context(), analysis.Mode(req.Mode))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, analyzeResponse{
			SessionID: s.ID,
			Status:    string(s.Status()),
			Stage:     wf.Stage(),
		})
	}
}

// progressHandler godoc
// @Summary Progreso del análisis en curso
// @Tags workflow
// @Produce json
// @Param X-Session-ID header string false "Browsing session"
// @Success 200 {object} progressResponse
// @Failure 404 {string} string "sin sesión de análisis"
// @Router /workflow/analysis/progress [get]
func progressHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}

		p, err := wf.AnalysisProgress()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, progressResponse{
			Status:    string(p.Status),
			Percent:   p.Percent,
			Completed: p.Completed,
			Total:     p.Total,
			Message:   p.Message,
			Stage:     wf.Stage(),
		})
	}
}

func cancelHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}
		if err := wf.CancelAnalysis(); err != nil {
			writeError(w, err)
			return
		}
		p, _ := wf.AnalysisProgress()
		writeJSON(w, http.StatusOK, progressResponse{
			Status:  string(p.Status),
			Percent: p.Percent,
			Stage:   wf.Stage(),
		})
	}
}

// resultsHandler godoc
// @Summary Resultados anonimizados del análisis
// @Description Entrega los resultados como código A/B/C... sin marca ni nombre hasta que cada producto se revele. ranking=ideal|budget usa los snapshots del backend.
// @Tags workflow
// @Produce json
// @Param X-Session-ID header string false "Browsing session"
// @Param ranking query string false "final (default) | ideal | budget"
// @Success 200 {array} resultEntryResponse
// @Failure 404 {string} string "sin resultado de análisis"
// @Router /workflow/results [get]
func resultsHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}

		entries, err := wf.Results(results.ParseRanking(r.URL.Query().Get("ranking")))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]resultEntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toResultEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func revealHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf, ok := getWorkflow(w, r, reg)
		if !ok {
			return
		}

		var req revealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
			http.Error(w, "product_id required", http.StatusBadRequest)
			return
		}
		if err := wf.Reveal(req.ProductID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// -------------------------
// Helpers
// -------------------------

func getWorkflow(w http.ResponseWriter, r *http.Request, reg *Registry) (*Workflow, bool) {
	sid, ok := middleware.GetSessionID(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusBadRequest)
		return nil, false
	}
	return reg.Get(sid), true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrInvalidInput),
		errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, analysis.ErrInvalidInput),
		errors.Is(err, ErrInvalidStage):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPrecondition),
		errors.Is(err, catalog.ErrSelectionFull):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, catalog.ErrNotSelected),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, recommend.ErrEmptyCatalog),
		errors.Is(err, recommend.ErrNoMatch),
		errors.Is(err, results.ErrNoResult),
		errors.Is(err, ErrNoSession):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseQueryDecimal(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

func toProfileResponse(p profile.PetProfile, stage Stage) profileResponse {
	out := profileResponse{
		ID:               p.ID,
		Name:             p.Name,
		Species:          string(p.Species),
		Breed:            p.Breed,
		AgeMonths:        p.AgeMonths,
		WeightKg:         p.WeightKg,
		HealthConditions: p.HealthConditions,
		Allergens:        p.Allergens,
		Stage:            string(stage),
	}
	if p.BudgetMin != nil {
		out.BudgetMin = p.BudgetMin.String()
	}
	if p.BudgetMax != nil {
		out.BudgetMax = p.BudgetMax.String()
	}
	if p.MonthlyBudget != nil {
		out.MonthlyBudget = p.MonthlyBudget.String()
	}
	return out
}

func toProductResponse(p catalog.Product, selected bool) productResponse {
	out := productResponse{
		ID:             p.ID,
		Brand:          p.Brand,
		Name:           p.Name,
		Species:        string(p.Species),
		Type:           string(p.Type),
		Category:       p.Category,
		Description:    p.Description,
		Ingredients:    p.Ingredients,
		Nutrition:      p.Nutrition,
		IsPrescription: p.IsPrescription,
		Manual:         p.Manual,
		Selected:       selected,
	}
	if p.Price != nil {
		out.Price = p.Price.String()
	}
	if ppj := p.PricePerJin(); ppj != nil {
		out.PricePerJin = ppj.String()
	}
	return out
}

func toSelectionResponse(wf *Workflow) selectionResponse {
	ids := wf.SelectionIDs()
	return selectionResponse{
		ProductIDs: ids,
		Count:      len(ids),
		Max:        catalog.MaxSelection,
	}
}

func toResultEntryResponse(e results.Entry) resultEntryResponse {
	out := resultEntryResponse{
		Code:       e.Code,
		Revealed:   e.Revealed,
		ProductID:  e.ProductID,
		Brand:      e.Brand,
		Name:       e.Name,
		Nutrition:  e.Nutrition,
		Fit:        e.Fit,
		Safety:     e.Safety,
		Value:      e.Value,
		Final:      e.Final,
		Ideal:      e.Ideal,
		Budget:     e.Budget,
		Reasons:    e.Reasons,
		Highlights: e.Highlights,
		Risks:      e.Risks,
	}
	if e.PricePerJin != nil {
		out.PricePerJin = e.PricePerJin.String()
	}
	return out
}

// writeJSON: helper local del módulo (mismo criterio que en otros handlers,
// sin paquete compartido prematuro).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
