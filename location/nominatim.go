package location

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	userAgent      = "MarketGuaira/1.0 (contato@marketguaira.com.br)"
	acceptLanguage = "pt-BR,pt;q=0.9,en;q=0.8"
	maxBodyBytes   = 1 << 20
)

// UpstreamError carries a non-2xx answer from the geocoder.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("nominatim: status %d", e.Status)
}

// Client queries a Nominatim-compatible search endpoint.
type Client struct {
	inner   *http.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		inner:   &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

// Search returns the raw JSON result list for q, restricted to Brazil.
func (c *Client) Search(ctx context.Context, q string) (json.RawMessage, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("nominatim: invalid base URL: %w", err)
	}
	params := u.Query()
	params.Set("format", "json")
	params.Set("q", q)
	params.Set("addressdetails", "1")
	params.Set("countrycodes", "br")
	params.Set("limit", "5")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("nominatim: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Accept", "application/json")

	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("nominatim: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("nominatim: invalid JSON response")
	}
	return json.RawMessage(body), nil
}

func cacheKey(q string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(q))))
	return fmt.Sprintf("location:%x", hash[:8])
}
