package nutriapi

import (
	"context"
	"fmt"
	"net/http"

	"pet-food-advisor/internal/domain/analysis"
	"pet-food-advisor/internal/platform/httpclient"
)

type startAnalysisRequest struct {
	PetID            string   `json:"pet_id"`
	ProductIDs       []string `json:"product_ids"`
	ManualProductIDs []string `json:"manual_product_ids,omitempty"`
	Mode             string   `json:"mode"`
}

type startAnalysisResponse struct {
	Success   bool        `json:"success"`
	SessionID flexibleID  `json:"session_id"`
	Total     int         `json:"total"`
	Result    *wireResult `json:"result"`
}

// StartAnalysis crea la sesión. Si el backend resuelve inline (modo fast),
// la respuesta trae el resultado directamente y no hay nada que pollear.
func (c *Client) StartAnalysis(ctx context.Context, req analysis.StartRequest) (analysis.StartResponse, error) {
	if !c.IsConfigured() {
		return analysis.StartResponse{}, ErrNotConfigured
	}

	var resp startAnalysisResponse
	err := c.http.DoJSON(ctx, http.MethodPost, "/api/analysis/start", c.headers(), startAnalysisRequest{
		PetID:            req.PetID,
		ProductIDs:       req.ProductIDs,
		ManualProductIDs: req.ManualProductIDs,
		Mode:             string(req.Mode),
	}, &resp)
	if err != nil {
		return analysis.StartResponse{}, upstreamErr("start analysis", err)
	}
	if !resp.Success {
		return analysis.StartResponse{}, fmt.Errorf("%w: start analysis: backend reported failure", ErrUpstream)
	}

	out := analysis.StartResponse{
		SessionID: resp.SessionID.String(),
		Total:     resp.Total,
		Result:    resp.Result.toDomain(),
	}
	if out.Result == nil && out.SessionID == "" {
		return analysis.StartResponse{}, fmt.Errorf("%w: start analysis: no session id", ErrUpstream)
	}
	return out, nil
}

type ackResponse struct {
	Success bool `json:"success"`
}

// ExecuteAnalysis dispara la ejecución de una sesión creada.
func (c *Client) ExecuteAnalysis(ctx context.Context, sessionID string) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	var resp ackResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, "/api/analysis/execute/"+sessionID, c.headers(), nil, &resp); err != nil {
		return upstreamErr("execute analysis", err)
	}
	if !resp.Success {
		return fmt.Errorf("%w: execute analysis: backend reported failure", ErrUpstream)
	}
	return nil
}

type progressWireResponse struct {
	Success   bool        `json:"success"`
	Status    string      `json:"status"`
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
	Message   string      `json:"message"`
	Result    *wireResult `json:"result"`
}

// AnalysisProgress consulta el avance. Un 404 significa que el motor
// todavía no materializó la sesión: se traduce a analysis.ErrNotReady para
// que el manager lo tolere en los primeros polls.
func (c *Client) AnalysisProgress(ctx context.Context, sessionID string) (analysis.ProgressResponse, error) {
	if !c.IsConfigured() {
		return analysis.ProgressResponse{}, ErrNotConfigured
	}

	var resp progressWireResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/api/analysis/progress/"+sessionID, c.headers(), nil, &resp)
	if err != nil {
		if httpclient.IsNotFound(err) {
			return analysis.ProgressResponse{}, fmt.Errorf("%w: session %s", analysis.ErrNotReady, sessionID)
		}
		return analysis.ProgressResponse{}, upstreamErr("analysis progress", err)
	}
	if !resp.Success {
		return analysis.ProgressResponse{}, fmt.Errorf("%w: analysis progress: backend reported failure", ErrUpstream)
	}

	return analysis.ProgressResponse{
		Status:    resp.Status,
		Completed: resp.Completed,
		Total:     resp.Total,
		Message:   resp.Message,
		Result:    resp.Result.toDomain(),
	}, nil
}

type resultWireResponse struct {
	Success bool        `json:"success"`
	Status  string      `json:"status"`
	Result  *wireResult `json:"result"`
}

// AnalysisResult trae el resultado final de una sesión completada.
func (c *Client) AnalysisResult(ctx context.Context, sessionID string) (*analysis.Result, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	var resp resultWireResponse
	if err := c.http.DoJSON(ctx, http.MethodGet, "/api/analysis/result/"+sessionID, c.headers(), nil, &resp); err != nil {
		return nil, upstreamErr("analysis result", err)
	}
	if !resp.Success || resp.Result == nil {
		return nil, fmt.Errorf("%w: analysis result: not available", ErrUpstream)
	}
	return resp.Result.toDomain(), nil
}
