package nutriapi

import (
	"context"
	"fmt"
	"net/http"

	"pet-food-advisor/internal/domain/profile"
)

type createPetRequest struct {
	Name             string   `json:"name"`
	Species          string   `json:"species"`
	Breed            string   `json:"breed,omitempty"`
	AgeMonths        int      `json:"age_months"`
	WeightKg         float64  `json:"weight_kg"`
	HealthConditions []string `json:"health_conditions,omitempty"`
	Allergens        []string `json:"allergens,omitempty"`
	PriceRangeMin    string   `json:"price_range_min,omitempty"`
	PriceRangeMax    string   `json:"price_range_max,omitempty"`
	MonthlyBudget    string   `json:"monthly_budget,omitempty"`
}

type createPetResponse struct {
	Success bool       `json:"success"`
	PetID   flexibleID `json:"pet_id"`
}

// CreateProfile registra el perfil y retorna el id asignado por el backend.
func (c *Client) CreateProfile(ctx context.Context, p profile.PetProfile) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	req := createPetRequest{
		Name:             p.Name,
		Species:          string(p.Species),
		Breed:            p.Breed,
		AgeMonths:        p.AgeMonths,
		WeightKg:         p.WeightKg,
		HealthConditions: p.HealthConditions,
		Allergens:        p.Allergens,
	}
	if p.BudgetMin != nil {
		req.PriceRangeMin = p.BudgetMin.String()
	}
	if p.BudgetMax != nil {
		req.PriceRangeMax = p.BudgetMax.String()
	}
	if p.MonthlyBudget != nil {
		req.MonthlyBudget = p.MonthlyBudget.String()
	}

	var resp createPetResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, "/api/pet/create", c.headers(), req, &resp); err != nil {
		return "", upstreamErr("create pet", err)
	}
	if !resp.Success || resp.PetID.String() == "" {
		return "", fmt.Errorf("%w: create pet: backend rejected the profile", ErrUpstream)
	}
	return resp.PetID.String(), nil
}
