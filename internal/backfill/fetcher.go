// Package backfill seeds instrument charts with historical closes from an
// external quote service, falling back to synthetic series when the service
// is unreachable.
package backfill

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nowmarket/internal/market"
)

// Fetcher returns historical closes in micros, oldest first.
type Fetcher interface {
	Closes(ctx context.Context, symbol string, days int) ([]int64, error)
}

// HTTPFetcher pulls closes from a quote service speaking JSON.
type HTTPFetcher struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPFetcher builds a fetcher with a bounded request timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

type closesResponse struct {
	Symbol string    `json:"symbol"`
	Closes []float64 `json:"closes"`
}

// Closes requests up to days daily closes for symbol.
func (f *HTTPFetcher) Closes(ctx context.Context, symbol string, days int) ([]int64, error) {
	if days <= 0 {
		days = 30
	}
	path := fmt.Sprintf("%s/v1/history/%s?days=%d", f.BaseURL, url.PathEscape(symbol), days)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("quote service status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var body closesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	if len(body.Closes) == 0 {
		return nil, fmt.Errorf("quote service returned no closes for %s", symbol)
	}
	out := make([]int64, 0, len(body.Closes))
	for _, c := range body.Closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("quote service returned invalid close for %s", symbol)
		}
		micros := market.NowToMicros(c)
		if micros < market.MinPriceMicros {
			micros = market.MinPriceMicros
		}
		out = append(out, micros)
	}
	return out, nil
}
