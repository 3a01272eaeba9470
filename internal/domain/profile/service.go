package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-food-advisor/internal/domain/catalog"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// MaxHealthConditions que el perfil acepta; las demás se descartan.
const MaxHealthConditions = 2

func parseOptionalDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Creator registra el perfil en el backend y retorna el id asignado.
type Creator interface {
	CreateProfile(ctx context.Context, p PetProfile) (string, error)
}

type Service struct {
	creator Creator
}

func NewService(creator Creator) *Service {
	return &Service{creator: creator}
}

type SubmitInput struct {
	Name             string
	Species          string
	Breed            string
	AgeMonths        int
	WeightKg         float64
	HealthConditions []string
	Allergens        []string
	BudgetMin        string // decimal opcional, yuanes por jin
	BudgetMax        string // decimal opcional, yuanes por jin
	MonthlyBudget    string // decimal opcional
}

// Submit valida, normaliza y registra el perfil contra el backend.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (PetProfile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return PetProfile{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}

	species, ok := catalog.ParseSpecies(in.Species)
	if !ok {
		return PetProfile{}, fmt.Errorf("%w: species must be dog or cat", ErrInvalidInput)
	}

	if in.AgeMonths < 1 {
		return PetProfile{}, fmt.Errorf("%w: age must be at least 1 month", ErrInvalidInput)
	}
	// Peso opcional: 0 = no informado.
	if in.WeightKg < 0 || in.WeightKg > 120 {
		return PetProfile{}, fmt.Errorf("%w: weight out of range", ErrInvalidInput)
	}

	budgetMin, err := parseOptionalDecimal(in.BudgetMin)
	if err != nil {
		return PetProfile{}, fmt.Errorf("%w: budget min must be decimal", ErrInvalidInput)
	}
	budgetMax, err := parseOptionalDecimal(in.BudgetMax)
	if err != nil {
		return PetProfile{}, fmt.Errorf("%w: budget max must be decimal", ErrInvalidInput)
	}
	if budgetMin != nil && budgetMax != nil && budgetMin.GreaterThan(*budgetMax) {
		return PetProfile{}, fmt.Errorf("%w: budget min greater than max", ErrInvalidInput)
	}
	monthly, err := parseOptionalDecimal(in.MonthlyBudget)
	if err != nil {
		return PetProfile{}, fmt.Errorf("%w: monthly budget must be decimal", ErrInvalidInput)
	}
	if monthly != nil && monthly.IsNegative() {
		return PetProfile{}, fmt.Errorf("%w: monthly budget must not be negative", ErrInvalidInput)
	}

	p := PetProfile{
		Name:             name,
		Species:          species,
		Breed:            strings.TrimSpace(in.Breed),
		AgeMonths:        in.AgeMonths,
		WeightKg:         in.WeightKg,
		HealthConditions: capN(trimAll(in.HealthConditions), MaxHealthConditions),
		Allergens:        trimAll(in.Allergens),
		BudgetMin:        budgetMin,
		BudgetMax:        budgetMax,
		MonthlyBudget:    monthly,
	}

	id, err := s.creator.CreateProfile(ctx, p)
	if err != nil {
		return PetProfile{}, err
	}
	p.ID = id
	return p, nil
}

func capN(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if v := strings.TrimSpace(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}
