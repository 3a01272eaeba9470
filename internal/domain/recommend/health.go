package recommend

import (
	"strings"

	"pet-food-advisor/internal/domain/catalog"
)

// healthRule puntúa productos contra una condición de salud del perfil.
// Las keywords mezclan chino e inglés porque el catálogo viene en ambos.
//
// Para condiciones serias (renal, urinario) la comida común resta puntos:
// solo una dieta de prescripción es apropiada. Para manejo de peso o piel
// la comida común es neutra.
type healthRule struct {
	condition string

	// conditionKeys activan la regla si aparecen en las condiciones del perfil.
	conditionKeys []string

	// matchTerms marcan un producto como específico para la condición.
	matchTerms []string

	// matchName: buscar matchTerms también en el nombre (además de descripción).
	matchName bool

	rxSpecific   int // prescripción + match
	rxGeneric    int // prescripción sin match
	nonRxPenalty int // no prescripción
}

var healthRules = []healthRule{
	{
		condition:     "renal",
		conditionKeys: []string{"肾", "kidney"},
		matchTerms:    []string{"肾", "kidney"},
		rxSpecific:    3, rxGeneric: 2, nonRxPenalty: -1,
	},
	{
		condition:     "urinary",
		conditionKeys: []string{"泌尿", "尿路", "urinary"},
		matchTerms:    []string{"泌尿", "尿路", "urinary"},
		rxSpecific:    3, rxGeneric: 2, nonRxPenalty: -1,
	},
	{
		condition:     "weight",
		conditionKeys: []string{"肥胖", "减重", "体重", "overweight", "obese"},
		matchTerms:    []string{"减重", "体重管理", "weight", "w/d", "r/d", "体重控制"},
		matchName:     true,
		rxSpecific:    3, rxGeneric: 1, nonRxPenalty: 0,
	},
	{
		condition:     "derma",
		conditionKeys: []string{"皮肤", "过敏", "敏感", "allergy", "derma"},
		matchTerms:    []string{"皮肤", "低敏", "allergy", "s/d", "z/d"},
		matchName:     true,
		rxSpecific:    3, rxGeneric: 1, nonRxPenalty: 0,
	},
}

// healthScore suma la puntuación de todas las reglas activadas por el perfil.
func healthScore(healthText string, p catalog.Product) int {
	healthText = strings.ToLower(healthText)
	if strings.TrimSpace(healthText) == "" {
		return 0
	}

	desc := strings.ToLower(p.Description)
	name := strings.ToLower(p.Name)

	score := 0
	for _, rule := range healthRules {
		if !containsAny(healthText, rule.conditionKeys) {
			continue
		}

		if !p.IsPrescription {
			score += rule.nonRxPenalty
			continue
		}

		matchText := desc
		if rule.matchName {
			matchText = name + " " + desc
		}
		if containsAny(matchText, rule.matchTerms) {
			score += rule.rxSpecific
		} else {
			score += rule.rxGeneric
		}
	}
	return score
}

func containsAny(haystack string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(haystack, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
