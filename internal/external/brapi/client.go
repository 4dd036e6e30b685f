package brapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mourafe/radarb3/pkg/config"
	"github.com/mourafe/radarb3/pkg/httputil"
	"github.com/mourafe/radarb3/pkg/logger"
)

// Client handles communication with the brapi.dev listing API
// ⭐ SSOT: brapi 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	token      string
	limit      int
}

// NewClient creates a new brapi client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.BrapiConfig) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		limit:      cfg.Limit,
	}
}

// ListedStock is one listing record of the quote list endpoint.
// Type discriminates the instrument class: "stock" for primary equity
// listings, "fund"/"bdr" etc. for the derivative classes we exclude.
type ListedStock struct {
	Stock string `json:"stock"` // bare B3 code, e.g. "PETR4"
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// listResponse is the /api/quote/list payload
type listResponse struct {
	Stocks []ListedStock `json:"stocks"`
}

// ListQuotes fetches the full B3 listing
// GET /api/quote/list?limit=N
func (c *Client) ListQuotes(ctx context.Context) ([]ListedStock, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.limit))
	if c.token != "" {
		query.Set("token", c.token)
	}
	fullURL := fmt.Sprintf("%s/api/quote/list?%s", c.baseURL, query.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("brapi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("brapi: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("brapi decode failed: %w", err)
	}

	c.logger.WithField("count", len(payload.Stocks)).Debug("Fetched brapi listing")
	return payload.Stocks, nil
}
