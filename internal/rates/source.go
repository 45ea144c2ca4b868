package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Source fetches a raw exchange rate for a currency pair. Implementations are
// expected to respond within a few hundred milliseconds; the engine bounds
// every call with a deadline regardless.
type Source interface {
	FetchRate(ctx context.Context, from, to string) (float64, error)
}

// HTTPSource queries the primary exchange-rate provider over HTTP
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a rate source backed by the given provider endpoint
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchRate fetches the rate for one currency pair from the provider
func (s *HTTPSource) FetchRate(ctx context.Context, from, to string) (float64, error) {
	url := fmt.Sprintf("%s?base=%s&symbols=%s", s.baseURL, from, to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rate provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode rate response: %w", err)
	}

	rate, ok := payload.Rates[strings.ToUpper(to)]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate provider returned no usable rate for %s/%s", from, to)
	}

	return rate, nil
}
