package catalog

import "errors"

// MaxSelection es el tope de productos seleccionables para un análisis.
const MaxSelection = 20

var (
	ErrSelectionFull = errors.New("selection full")
	ErrNotSelected   = errors.New("product not selected")
)

// Selection es el conjunto ordenado de productos elegidos por el usuario.
// Mantiene orden de inserción y no admite duplicados; los agregados a mano
// quedan además marcados como manuales. No es thread-safe: el workflow que
// la contiene serializa el acceso.
type Selection struct {
	ids    []string
	set    map[string]struct{}
	manual map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{set: map[string]struct{}{}, manual: map[string]struct{}{}}
}

// Add agrega un producto. Duplicados son no-ops silenciosos.
func (s *Selection) Add(productID string) error {
	if _, ok := s.set[productID]; ok {
		return nil
	}
	if len(s.ids) >= MaxSelection {
		return ErrSelectionFull
	}
	s.ids = append(s.ids, productID)
	s.set[productID] = struct{}{}
	return nil
}

// AddManual agrega un producto creado a mano, marcándolo como manual.
func (s *Selection) AddManual(productID string) error {
	if err := s.Add(productID); err != nil {
		return err
	}
	s.manual[productID] = struct{}{}
	return nil
}

func (s *Selection) Remove(productID string) error {
	if _, ok := s.set[productID]; !ok {
		return ErrNotSelected
	}
	delete(s.set, productID)
	delete(s.manual, productID)
	for i, id := range s.ids {
		if id == productID {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Selection) Clear() {
	s.ids = nil
	s.set = map[string]struct{}{}
	s.manual = map[string]struct{}{}
}

// Replace reemplaza todo el contenido (p.ej. con el resultado del motor de
// recomendación), respetando orden y tope.
func (s *Selection) Replace(productIDs []string) error {
	next := NewSelection()
	for _, id := range productIDs {
		if err := next.Add(id); err != nil {
			return err
		}
	}
	*s = *next
	return nil
}

func (s *Selection) Has(productID string) bool {
	_, ok := s.set[productID]
	return ok
}

func (s *Selection) Len() int { return len(s.ids) }

// IDs retorna una copia en orden de inserción.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// ManualIDs retorna los ids agregados a mano, en orden de inserción.
func (s *Selection) ManualIDs() []string {
	out := make([]string, 0, len(s.manual))
	for _, id := range s.ids {
		if _, ok := s.manual[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
