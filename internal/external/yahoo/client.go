package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mourafe/radarb3/pkg/config"
	"github.com/mourafe/radarb3/pkg/httputil"
	"github.com/mourafe/radarb3/pkg/logger"
)

// Client handles the bulk daily-history download API
// ⭐ SSOT: 가격 이력 호출은 이 클라이언트에서만
//
// One request covers one whole batch of symbols. The response is a table of
// price columns; its documented quirk is the shape change for single-symbol
// batches (see History).
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new history client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.YahooConfig) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
	}
}

// History is the raw batch response, kept deliberately undecoded per column.
//
// For a multi-symbol batch each column is keyed by symbol then date:
//
//	{"columns": {"adjclose": {"PETR4.SA": {"2026-08-01": 37.1, ...}, ...}}}
//
// For a single-symbol batch the symbol level is flattened away:
//
//	{"columns": {"adjclose": {"2026-08-01": 37.1, ...}}}
//
// Shape discrimination and promotion to the canonical form happen in
// s2_prices, not here; the client only carries the bytes across.
type History struct {
	Columns map[string]json.RawMessage `json:"columns"`
	Err     *APIError                  `json:"error"`
}

// APIError is the upstream error envelope
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchHistory downloads daily history for a batch of symbols over a
// trailing range (e.g. "6mo") at the given interval (e.g. "1d").
// GET /v8/finance/download?symbols=A,B&range=6mo&interval=1d
func (c *Client) FetchHistory(ctx context.Context, symbols []string, rng, interval string) (*History, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("yahoo: empty symbol batch")
	}

	query := url.Values{}
	query.Set("symbols", strings.Join(symbols, ","))
	query.Set("range", rng)
	query.Set("interval", interval)
	fullURL := fmt.Sprintf("%s/v8/finance/download?%s", c.baseURL, query.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("yahoo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("yahoo: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var history History
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("yahoo decode failed: %w", err)
	}
	if history.Err != nil {
		return nil, fmt.Errorf("yahoo api error: %s (%s)", history.Err.Description, history.Err.Code)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"range":   rng,
		"columns": len(history.Columns),
	}).Debug("Fetched price history batch")

	return &history, nil
}
