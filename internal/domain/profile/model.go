package profile

import (
	"github.com/shopspring/decimal"

	"pet-food-advisor/internal/domain/catalog"
)

// PetProfile es el perfil que alimenta la recomendación y el análisis.
// ID lo asigna el backend al crearlo; vacío = todavía no registrado.
type PetProfile struct {
	ID string

	Name    string
	Species catalog.Species
	Breed   string

	AgeMonths int
	WeightKg  float64

	// HealthConditions son condiciones en texto libre ("肾病", "overweight"...).
	// Máximo MaxHealthConditions; el resto se descarta al registrar.
	HealthConditions []string

	// Allergens son ingredientes a excluir ("鸡肉", "beef"...).
	Allergens []string

	// Presupuesto en yuanes por jin. nil = sin tope.
	BudgetMin *decimal.Decimal
	BudgetMax *decimal.Decimal

	// MonthlyBudget es informativo; ninguna operación lo consume todavía.
	MonthlyBudget *decimal.Decimal
}

// HealthText concatena las condiciones para matching por keywords.
func (p PetProfile) HealthText() string {
	out := ""
	for i, c := range p.HealthConditions {
		if i > 0 {
			out += " "
		}
		out += c
	}
	return out
}
