package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pet-food-advisor/internal/platform/logger"
)

const (
	// DefaultPollInterval entre consultas de progreso.
	DefaultPollInterval = 1 * time.Second

	// DefaultTimeout absoluto desde que arranca el polling.
	DefaultTimeout = 5 * time.Minute

	// DefaultMaxPollFailures consecutivas antes de dar el análisis por caído.
	DefaultMaxPollFailures = 5
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotReady la retorna el backend cuando la sesión todavía no existe
	// (404 en los primeros polls, mientras el motor la crea).
	ErrNotReady = errors.New("analysis session not ready")

	// ErrConnectivity: demasiados polls fallidos seguidos.
	ErrConnectivity = errors.New("analysis backend unreachable")
)

// Hooks notifican a quien arrancó la sesión. Se invocan desde la goroutine
// de polling, fuera de los locks de la sesión.
type Hooks struct {
	OnProgress func(s *Session, p Progress)
	OnDone     func(s *Session)
}

// Manager arranca sesiones de análisis y las pollea hasta un estado terminal.
type Manager struct {
	backend Backend
	log     logger.Logger

	interval    time.Duration
	timeout     time.Duration
	maxFailures int
}

func NewManager(backend Backend, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		backend:     backend,
		log:         log,
		interval:    DefaultPollInterval,
		timeout:     DefaultTimeout,
		maxFailures: DefaultMaxPollFailures,
	}
}

// Session es una corrida de análisis en curso o terminada.
// Todo acceso al estado pasa por el mutex; los snapshots que salen son copias.
type Session struct {
	ID   string
	Mode Mode

	mu        sync.Mutex
	status    Status
	completed int
	total     int
	percent   int
	message   string
	result    *Result

	pollFailures int
	polledOK     bool

	done   chan struct{}
	cancel context.CancelFunc
	hooks  Hooks
}

// Start crea la sesión en el backend y lanza el polling.
//   - Resultado inline en la respuesta de start = camino rápido: la sesión
//     nace completada, sin polling.
//   - Si el trigger de ejecución falla, la sesión se abandona (no hay nada
//     que pollear).
func (m *Manager) Start(ctx context.Context, req StartRequest, hooks Hooks) (*Session, error) {
	if strings.TrimSpace(req.PetID) == "" {
		return nil, fmt.Errorf("%w: pet id required", ErrInvalidInput)
	}
	if len(req.ProductIDs) == 0 {
		return nil, fmt.Errorf("%w: no products to analyze", ErrInvalidInput)
	}
	if req.Mode != ModeFast {
		req.Mode = ModeFull
	}

	resp, err := m.backend.StartAnalysis(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("start analysis: %w", err)
	}

	s := &Session{
		ID:     resp.SessionID,
		Mode:   req.Mode,
		status: StatusPending,
		total:  resp.Total,
		done:   make(chan struct{}),
		hooks:  hooks,
	}

	// Camino rápido: el backend resolvió todo en el start.
	if resp.Result != nil {
		s.resolve(StatusCompleted, "", resp.Result)
		return s, nil
	}

	if err := m.backend.ExecuteAnalysis(ctx, s.ID); err != nil {
		return nil, fmt.Errorf("execute analysis: %w", err)
	}

	// El polling sobrevive al request HTTP que lo originó.
	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.setRunning()

	go m.poll(pollCtx, s)

	m.log.Info("analysis started", map[string]any{"session": s.ID, "mode": string(s.Mode), "total": resp.Total})
	return s, nil
}

// poll es la única goroutine que consulta progreso para la sesión: el tick
// siguiente no arranca hasta que el poll anterior terminó, así no hay
// consultas solapadas.
func (m *Manager) poll(ctx context.Context, s *Session) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	deadline := time.NewTimer(m.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			s.resolve(StatusCancelled, "analysis cancelled", nil)
			return
		case <-deadline.C:
			m.log.Warn("analysis timed out", map[string]any{"session": s.ID})
			s.resolve(StatusTimedOut, "analysis timed out", nil)
			return
		case <-ticker.C:
			if m.pollOnce(ctx, s) {
				return
			}
		}
	}
}

// pollOnce retorna true cuando la sesión quedó en estado terminal.
func (m *Manager) pollOnce(ctx context.Context, s *Session) bool {
	resp, err := m.backend.AnalysisProgress(ctx, s.ID)
	if err != nil {
		if ctx.Err() != nil {
			// La cancelación la maneja el select principal.
			return false
		}

		// Sesión todavía no creada en el motor: gracia en los primeros
		// polls, hasta el primer progreso exitoso.
		if errors.Is(err, ErrNotReady) && !s.hasPolledOK() {
			return false
		}

		failures := s.noteFailure()
		m.log.Warn("analysis poll failed", map[string]any{
			"session": s.ID, "failures": failures, "err": err.Error(),
		})
		if failures >= m.maxFailures {
			return s.resolve(StatusFailed, fmt.Sprintf("%v: %d consecutive poll failures", ErrConnectivity, failures), nil)
		}
		return false
	}

	s.noteSuccess()

	switch strings.ToLower(strings.TrimSpace(resp.Status)) {
	case "completed":
		res := resp.Result
		if res == nil {
			res, err = m.backend.AnalysisResult(ctx, s.ID)
			if err != nil {
				// Completado pero sin resultado todavía: cuenta como
				// falla y se reintenta en el próximo tick.
				failures := s.noteFailure()
				if failures >= m.maxFailures {
					return s.resolve(StatusFailed, fmt.Sprintf("%v: result unavailable", ErrConnectivity), nil)
				}
				return false
			}
		}
		return s.resolve(StatusCompleted, resp.Message, res)

	case "failed":
		msg := resp.Message
		if msg == "" {
			msg = "analysis failed"
		}
		return s.resolve(StatusFailed, msg, nil)

	default:
		p, changed := s.applyProgress(resp)
		if changed && s.hooks.OnProgress != nil {
			s.hooks.OnProgress(s, p)
		}
		return false
	}
}

// Cancel pide la cancelación. Idempotente; si otro estado terminal ya ganó,
// es un no-op.
func (s *Session) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
	s.resolve(StatusCancelled, "analysis cancelled", nil)
}

// Done se cierra cuando la sesión llega a un estado terminal.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Result retorna el resultado si la sesión completó.
func (s *Session) Result() (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusCompleted || s.result == nil {
		return nil, false
	}
	return s.result, true
}

// Progress retorna un snapshot del avance.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{
		Status:    s.status,
		Percent:   s.percent,
		Completed: s.completed,
		Total:     s.total,
		Message:   s.message,
	}
}

func (s *Session) setRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.Terminal() {
		s.status = StatusRunning
	}
}

func (s *Session) hasPolledOK() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polledOK
}

func (s *Session) noteFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollFailures++
	return s.pollFailures
}

func (s *Session) noteSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollFailures = 0
	s.polledOK = true
}

// applyProgress actualiza el avance. El porcentaje nunca retrocede, salvo
// que el servidor revise el total (ahí se recalcula desde cero).
func (s *Session) applyProgress(resp ProgressResponse) (Progress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return s.snapshotLocked(), false
	}

	totalRevised := resp.Total > 0 && resp.Total != s.total
	if resp.Total > 0 {
		s.total = resp.Total
	}
	s.completed = resp.Completed
	if resp.Message != "" {
		s.message = resp.Message
	}

	pct := computePercent(s.completed, s.total)
	if totalRevised || pct > s.percent {
		s.percent = pct
	}

	return s.snapshotLocked(), true
}

// resolve es el CAS terminal: el primer estado terminal gana, los demás
// llegan tarde y no tocan nada.
func (s *Session) resolve(st Status, msg string, res *Result) bool {
	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return true
	}

	s.status = st
	if msg != "" {
		s.message = msg
	}
	if st == StatusCompleted {
		s.result = res
		s.percent = 100
		if s.total > 0 {
			s.completed = s.total
		}
	}
	hooks := s.hooks
	close(s.done)
	s.mu.Unlock()

	if hooks.OnDone != nil {
		hooks.OnDone(s)
	}
	return true
}

func (s *Session) snapshotLocked() Progress {
	return Progress{
		Status:    s.status,
		Percent:   s.percent,
		Completed: s.completed,
		Total:     s.total,
		Message:   s.message,
	}
}

func computePercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := completed * 100 / total
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
