// Package scanapi is the REST client for the ArbScanner backend: the /scan
// opportunity feed, the /detail deep-dive endpoint, and the /config key/value
// blob.
package scanapi

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

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

const (
	defaultTimeout = 12 * time.Second
	retryBackoff   = 500 * time.Millisecond
)

// Client talks to the scan backend over HTTP. Requests carry a hard timeout
// and transport failures are retried once after a short backoff, so a hung
// backend cannot pin the scheduler's in-flight flag indefinitely.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client for the given backend root, e.g.
// "https://arbscanner.example.com/api". apiKey is the odds-provider key
// forwarded on scan requests; it may be empty.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// ScanParams tunes a scan request.
type ScanParams struct {
	MinPct float64
	Sports []string
}

// Scan fetches the current opportunity list. A response without the
// opportunities key is fatal for the refresh and reported as
// domain.ErrMalformedResponse.
func (c *Client) Scan(ctx context.Context, p ScanParams) (domain.ScanResult, error) {
	params := url.Values{}
	params.Set("min_pct", strconv.FormatFloat(p.MinPct, 'f', -1, 64))
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	if len(p.Sports) > 0 {
		params.Set("sports", strings.Join(p.Sports, ","))
	}

	body, err := c.get(ctx, "/scan?"+params.Encode())
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("scanapi: scan: %w", err)
	}

	var resp scanResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ScanResult{}, fmt.Errorf("scanapi: decode scan: %w", domain.ErrMalformedResponse)
	}
	if resp.Opportunities == nil {
		return domain.ScanResult{}, fmt.Errorf("scanapi: scan response missing opportunities: %w", domain.ErrMalformedResponse)
	}

	result := domain.ScanResult{
		Opportunities: make([]domain.Opportunity, 0, len(*resp.Opportunities)),
		Meta:          resp.Meta.toDomain(),
	}
	for _, w := range *resp.Opportunities {
		result.Opportunities = append(result.Opportunities, w.toDomain())
	}
	return result, nil
}

// Detail fetches the deep-dive refinement for one opportunity pair.
func (c *Client) Detail(ctx context.Context, p DetailParams) (Detail, error) {
	params := url.Values{}
	params.Set("platform_a", p.PlatformA)
	params.Set("platform_b", p.PlatformB)
	params.Set("market_id_a", p.MarketIDA)
	params.Set("market_id_b", p.MarketIDB)
	params.Set("prob_a", strconv.FormatFloat(p.ProbA, 'f', -1, 64))
	params.Set("prob_b", strconv.FormatFloat(p.ProbB, 'f', -1, 64))
	params.Set("fee_a", strconv.FormatFloat(p.FeeA, 'f', -1, 64))
	params.Set("fee_b", strconv.FormatFloat(p.FeeB, 'f', -1, 64))
	params.Set("bankroll", strconv.FormatFloat(p.Bankroll, 'f', -1, 64))

	body, err := c.get(ctx, "/detail?"+params.Encode())
	if err != nil {
		return Detail{}, fmt.Errorf("scanapi: detail: %w", err)
	}

	var d Detail
	if err := json.Unmarshal(body, &d); err != nil {
		return Detail{}, fmt.Errorf("scanapi: decode detail: %w", domain.ErrMalformedResponse)
	}
	return d, nil
}

// GetConfig fetches the backend's key/value configuration blob. The monitor
// treats it as initial parameter values only.
func (c *Client) GetConfig(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, "/config")
	if err != nil {
		return nil, fmt.Errorf("scanapi: get config: %w", err)
	}

	var resp struct {
		Config map[string]any `json:"config"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("scanapi: decode config: %w", domain.ErrMalformedResponse)
	}
	return resp.Config, nil
}

// SetConfig writes key/value pairs to the backend configuration blob.
func (c *Client) SetConfig(ctx context.Context, values map[string]any) error {
	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("scanapi: marshal config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/config", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("scanapi: create config request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("scanapi: post config: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("scanapi: post config: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// get performs a GET with one retry on transport errors. HTTP error statuses
// are not retried; the backend reports per-source problems in the scan meta
// rather than via status codes.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "arbwatch/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 256))
		}
		return body, nil
	}
	return nil, lastErr
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
