package workflow

import "sync"

// Registry mantiene un workflow por browsing session.
type Registry struct {
	mu   sync.Mutex
	byID map[string]*Workflow
	deps Deps
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		byID: map[string]*Workflow{},
		deps: deps,
	}
}

// Get retorna el workflow de la sesión, creándolo si no existe.
func (r *Registry) Get(sessionID string) *Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.byID[sessionID]; ok {
		return w
	}
	w := New(sessionID, r.deps)
	r.byID[sessionID] = w
	return w
}
