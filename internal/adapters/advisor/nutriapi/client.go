// Package nutriapi es el adapter HTTP contra el backend de asesoría
// nutricional (perfiles, catálogo y motor de análisis).
package nutriapi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-food-advisor/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("nutriapi client not configured")

	// ErrUpstream envuelve cualquier falla del backend.
	ErrUpstream = errors.New("nutriapi upstream error")
)

// Config del cliente. BaseURL y APIKey normalmente vienen de env vars
// (ADVISOR_API_URL / ADVISOR_API_KEY).
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header de la API key. Vacío => "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func New(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("nutriapi: %w", err)
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != ""
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{c.apiKeyHeader: c.apiKey}
}

// upstreamErr arma un error envuelto con el detalle del backend si vino.
func upstreamErr(op string, err error) error {
	if detail := httpclient.ErrorDetail(err); detail != "" {
		return fmt.Errorf("%w: %s: %s", ErrUpstream, op, detail)
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}
