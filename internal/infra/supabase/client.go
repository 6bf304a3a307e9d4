// Package supabase provides the PostgREST-backed persistence adapter.
// It implements every store port over plain HTTP against the Supabase
// REST API, so each read is a single query and therefore a consistent
// snapshot of the ledger.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ekencleng/kencleng-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to the Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	bulkhead       *resilience.Bulkhead
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		bulkhead:       resilience.NewBulkhead(maxConcurrency),
		cfg:            cfg,
		logger:         logger,
	}
}

func (c *Client) setHeaders(req *http.Request, prefer string) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
}

// getJSON executes a GET against PostgREST and decodes the result rows
// into dest. Reads go through the circuit breaker and retry policy;
// writes do not, since ledger inserts must not be replayed blindly.
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
			if err != nil {
				return err
			}
			if body == nil {
				body = []byte("[]")
			}
			if err := json.Unmarshal(body, dest); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			return nil
		})
	})
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte, prefer string) ([]byte, error) {
	// Bound concurrent PostgREST calls; balance fan-out can be wide.
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, prefer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil // no data
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("supabase %s %s returned %d: %s", method, path, resp.StatusCode, string(body))
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return body, nil
}

// insertRow POSTs one row and decodes the representation returned by
// PostgREST into dest (a pointer to a slice of row types).
func (c *Client) insertRow(ctx context.Context, table string, row any, dest any) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return err
	}
	body, err := c.doRequest(ctx, http.MethodPost, table, payload, "return=representation")
	if err != nil {
		return err
	}
	if dest != nil && body != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("decode inserted %s: %w", table, err)
		}
	}
	return nil
}

// patchRows PATCHes rows matching the path filter and decodes the
// returned representation into dest when given.
func (c *Client) patchRows(ctx context.Context, path string, updates map[string]any, dest any) error {
	payload, err := json.Marshal(updates)
	if err != nil {
		return err
	}
	prefer := "return=minimal"
	if dest != nil {
		prefer = "return=representation"
	}
	body, err := c.doRequest(ctx, http.MethodPatch, path, payload, prefer)
	if err != nil {
		return err
	}
	if dest != nil && body != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("decode patched rows: %w", err)
		}
	}
	return nil
}

func (c *Client) deleteRows(ctx context.Context, path string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, "")
	return err
}
