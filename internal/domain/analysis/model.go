package analysis

import (
	"context"

	"github.com/shopspring/decimal"
)

// Status es el estado de una sesión de análisis.
// Exactamente uno de los estados terminales gana; después de eso la sesión
// no cambia más.
// @Enum pending, running, completed, failed, timed_out, cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
	StatusCancelled Status = "cancelled"
)

// Terminal reporta si el estado es final.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimedOut, StatusCancelled:
		return true
	default:
		return false
	}
}

// Mode del análisis.
// @Enum full, fast
type Mode string

const (
	ModeFull Mode = "full"
	ModeFast Mode = "fast"
)

// Scored es el resultado por producto que entrega el backend.
type Scored struct {
	ProductID string
	Brand     string
	Name      string

	Nutrition float64
	Fit       float64
	Safety    float64
	Value     float64

	Final  float64
	Ideal  float64
	Budget float64

	Reasons    []string
	Highlights []string
	Risks      []string

	PricePerJin *decimal.Decimal
}

// Result es el resultado completo de un análisis terminado.
// Los rankings son snapshots inmutables de ids en orden.
type Result struct {
	Results []Scored

	IdealRanking  []string
	BudgetRanking []string

	// AnonMapping: id de producto -> código anónimo provisto por el backend.
	// Puede venir incompleto o vacío; el mapper local completa el resto.
	AnonMapping map[string]string
}

// Progress es el snapshot de avance que ve la capa de presentación.
type Progress struct {
	Status    Status
	Percent   int
	Completed int
	Total     int
	Message   string
}

// StartRequest arma el pedido de análisis al backend. ManualProductIDs es
// el subconjunto de ProductIDs que el usuario cargó a mano.
type StartRequest struct {
	PetID            string
	ProductIDs       []string
	ManualProductIDs []string
	Mode             Mode
}

// StartResponse: o bien una sesión a pollear, o un resultado inline
// (camino rápido, sin polling).
type StartResponse struct {
	SessionID string
	Total     int
	Result    *Result
}

// ProgressResponse es la respuesta cruda del endpoint de progreso.
type ProgressResponse struct {
	Status    string
	Completed int
	Total     int
	Message   string
	Result    *Result
}

// Backend es el motor remoto de análisis.
type Backend interface {
	StartAnalysis(ctx context.Context, req StartRequest) (StartResponse, error)
	ExecuteAnalysis(ctx context.Context, sessionID string) error
	AnalysisProgress(ctx context.Context, sessionID string) (ProgressResponse, error)
	AnalysisResult(ctx context.Context, sessionID string) (*Result, error)
}
