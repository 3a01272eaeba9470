package advisor

import (
	"pet-food-advisor/internal/domain/analysis"
	"pet-food-advisor/internal/domain/catalog"
	"pet-food-advisor/internal/domain/profile"
)

// Backend es el backend de asesoría completo visto como caja negra:
// registro de perfiles, catálogo y motor de análisis. Los adapters
// (HTTP real o in-memory para dev) implementan las tres caras.
type Backend interface {
	profile.Creator
	catalog.Backend
	analysis.Backend
}
