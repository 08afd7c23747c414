package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TokenSource provides the bearer token for requests. Credential storage is
// owned by the surrounding app.
type TokenSource interface {
	Token() string
}

// Client is the default HTTP implementation of the Gateway.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewClient returns a Gateway speaking JSON over HTTP against baseURL.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, into any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %s", method, path, resp.Status)
	}

	if into == nil {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(into)
}

func (c *Client) list(ctx context.Context, path string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	err := c.do(ctx, http.MethodGet, path, nil, nil, &items)
	return items, err
}

func (c *Client) ListTags(ctx context.Context) ([]json.RawMessage, error) {
	return c.list(ctx, "/tags")
}

func (c *Client) ListAccounts(ctx context.Context) ([]json.RawMessage, error) {
	return c.list(ctx, "/accounts")
}

func (c *Client) ListUnits(ctx context.Context) ([]json.RawMessage, error) {
	return c.list(ctx, "/units")
}

func (c *Client) ListPrices(ctx context.Context) ([]json.RawMessage, error) {
	return c.list(ctx, "/prices")
}

func (c *Client) ListTransactions(ctx context.Context, limit, offset int) (Page, error) {
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}

	var page Page
	err := c.do(ctx, http.MethodGet, "/transactions", query, nil, &page)
	return page, err
}

func (c *Client) report(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var payload json.RawMessage
	err := c.do(ctx, http.MethodGet, path, query, nil, &payload)
	return payload, err
}

func (c *Client) GetPortfolio(ctx context.Context) (json.RawMessage, error) {
	return c.report(ctx, "/reports/portfolio", nil)
}

func (c *Client) GetNetWorthHistory(ctx context.Context, interval string) (json.RawMessage, error) {
	return c.report(ctx, "/reports/net-worth-history", url.Values{"interval": {interval}})
}

func (c *Client) GetTaxAnalysis(ctx context.Context) (json.RawMessage, error) {
	return c.report(ctx, "/reports/tax-analysis", nil)
}

func (c *Client) GetCapitalGains(ctx context.Context, year int) (json.RawMessage, error) {
	return c.report(ctx, "/reports/capital-gains", url.Values{"year": {strconv.Itoa(year)}})
}

func (c *Client) GetCashFlow(ctx context.Context, interval string) (json.RawMessage, error) {
	return c.report(ctx, "/reports/cash-flow", url.Values{"interval": {interval}})
}

func (c *Client) Submit(ctx context.Context, endpoint, method string, payload json.RawMessage) error {
	var body io.Reader
	if len(payload) > 0 {
		body = bytes.NewReader(payload)
	}

	return c.do(ctx, method, endpoint, nil, body, nil)
}
