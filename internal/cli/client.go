package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/me/jamsched/internal/workload"
	"github.com/me/jamsched/pkg/model"
)

// Controller API routes used by the CLI.
const (
	pathPlan     = "/api/v1/plan"
	pathWorkload = "/api/v1/workload/"
	pathLatest   = "/api/v1/cycles/latest"
)

// Client talks to a running controller.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a controller API client.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	}
}

// Accepted acknowledges a workload replacement.
type Accepted struct {
	Cycle   int64 `json:"cycle"`
	Workers int   `json:"workers"`
	Tasks   int   `json:"tasks"`
}

// Plan plans w on the controller without touching its running workload.
func (c *Client) Plan(ctx context.Context, w *workload.Workload) (*model.Plan, error) {
	var plan model.Plan
	if err := c.call(ctx, http.MethodPost, pathPlan, w, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// SubmitWorkload replaces the controller's workload from its next cycle.
func (c *Client) SubmitWorkload(ctx context.Context, w *workload.Workload) (*Accepted, error) {
	var a Accepted
	if err := c.call(ctx, http.MethodPut, pathWorkload, w, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Latest returns the controller's most recent broadcast.
func (c *Client) Latest(ctx context.Context) (*model.Broadcast, error) {
	var b model.Broadcast
	if err := c.call(ctx, http.MethodGet, pathLatest, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// envelope is the controller's response wrapper.
type envelope struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Error     *model.APIError `json:"error"`
}

// call sends body as JSON and decodes the envelope's data into out. An error
// envelope is returned as its *model.APIError.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	url := c.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		c.Logger.Debug("HTTP request body", "bytes", len(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Logger.Debug("HTTP request", "method", method, "url", url)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.Logger.Debug("HTTP response", "status", resp.StatusCode, "request_id", resp.Header.Get("X-Request-ID"), "bytes", len(respBody))

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if env.Status == "error" && env.Error != nil {
		return env.Error
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
