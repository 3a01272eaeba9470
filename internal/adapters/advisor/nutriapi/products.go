package nutriapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"pet-food-advisor/internal/domain/catalog"
)

type listProductsResponse struct {
	Success  bool          `json:"success"`
	Products []wireProduct `json:"products"`
}

// ListProducts trae el catálogo de una especie.
func (c *Client) ListProducts(ctx context.Context, species catalog.Species, limit int) ([]catalog.Product, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = catalog.DefaultListLimit
	}

	q := url.Values{}
	q.Set("species", string(species))
	q.Set("limit", fmt.Sprintf("%d", limit))

	var resp listProductsResponse
	if err := c.http.DoJSON(ctx, http.MethodGet, "/api/products?"+q.Encode(), c.headers(), nil, &resp); err != nil {
		return nil, upstreamErr("list products", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: list products: backend reported failure", ErrUpstream)
	}

	out := make([]catalog.Product, 0, len(resp.Products))
	for _, wp := range resp.Products {
		out = append(out, wp.toDomain())
	}
	return out, nil
}

type createManualRequest struct {
	Brand       string `json:"brand,omitempty"`
	Name        string `json:"name"`
	Species     string `json:"species"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Ingredients string `json:"ingredients,omitempty"`
	Price       string `json:"price,omitempty"`
	WeightJin   string `json:"weight_jin,omitempty"`
}

type createManualResponse struct {
	Success   bool       `json:"success"`
	ProductID flexibleID `json:"product_id"`
}

// CreateManualProduct da de alta un producto manual y retorna su id.
func (c *Client) CreateManualProduct(ctx context.Context, in catalog.ManualProductInput) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	req := createManualRequest{
		Brand:       in.Brand,
		Name:        in.Name,
		Species:     string(in.Species),
		Category:    categoryLabel(in.Type),
		Description: in.Description,
		Ingredients: in.Ingredients,
		Price:       in.Price,
		WeightJin:   in.WeightJin,
	}

	var resp createManualResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, "/api/products/manual", c.headers(), req, &resp); err != nil {
		return "", upstreamErr("create manual product", err)
	}
	if !resp.Success || resp.ProductID.String() == "" {
		return "", fmt.Errorf("%w: create manual product: backend rejected it", ErrUpstream)
	}
	return resp.ProductID.String(), nil
}

// categoryLabel es el inverso de inferType para el alta manual.
func categoryLabel(t catalog.ProductType) string {
	switch t {
	case catalog.TypeTreat:
		return "零食"
	case catalog.TypeMainFood:
		return "主粮"
	default:
		return "其他"
	}
}
