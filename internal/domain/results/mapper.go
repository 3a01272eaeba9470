package results

import (
	"sync"

	"pet-food-advisor/internal/domain/analysis"
)

// Mapper asigna códigos anónimos (A, B, C...) a los productos de un
// resultado y lleva qué productos fueron revelados.
//
// Los códigos que manda el backend en el resultado tienen prioridad; para el
// resto se asigna por posición en el ranking, saturando en Z. El mapping es
// estable mientras viva el resultado renderizado: se descarta entero cuando
// arranca un análisis nuevo.
type Mapper struct {
	mu       sync.Mutex
	codes    map[string]string
	revealed map[string]struct{}
}

func NewMapper(res *analysis.Result) *Mapper {
	m := &Mapper{
		codes:    map[string]string{},
		revealed: map[string]struct{}{},
	}
	if res != nil {
		for id, code := range res.AnonMapping {
			if id != "" && code != "" {
				m.codes[id] = code
			}
		}
	}
	return m
}

// CodeFor retorna el código del producto, asignando uno por rankIndex si el
// backend no mandó ninguno. Llamadas repetidas retornan siempre lo mismo.
func (m *Mapper) CodeFor(productID string, rankIndex int) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if code, ok := m.codes[productID]; ok {
		return code
	}
	code := fallbackCode(rankIndex)
	m.codes[productID] = code
	return code
}

// Reveal marca el producto como revelado. Idempotente y monótono: no hay
// vuelta atrás hasta que el mapper se descarte.
func (m *Mapper) Reveal(productID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revealed[productID] = struct{}{}
}

func (m *Mapper) Revealed(productID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revealed[productID]
	return ok
}

// fallbackCode: 'A' + rankIndex, saturando en 'Z'.
func fallbackCode(rankIndex int) string {
	if rankIndex < 0 {
		rankIndex = 0
	}
	if rankIndex > 25 {
		rankIndex = 25
	}
	return string(rune('A' + rankIndex))
}
