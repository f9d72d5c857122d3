package worker

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/me/jamsched/pkg/model"
)

// Client reads broadcasts from the controller API on behalf of a worker.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new controller API client with connection pooling.
// If tlsCfg is nil, the default system TLS configuration is used.
func NewClient(baseURL string, tlsCfg *tls.Config) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig:     tlsCfg,
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Latest fetches the most recent broadcast. Returns nil if the controller
// has not published one yet (404).
func (c *Client) Latest(ctx context.Context) (*model.Broadcast, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/cycles/latest", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("latest broadcast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("latest broadcast: HTTP %d: %s", resp.StatusCode, body)
	}

	var b model.Broadcast
	if err := decodeResponseData(resp.Body, &b); err != nil {
		return nil, fmt.Errorf("latest broadcast: %w", err)
	}
	return &b, nil
}

// decodeResponseData extracts the data field from the API response envelope.
func decodeResponseData(r io.Reader, dest any) error {
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *model.APIError `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}

	return json.Unmarshal(envelope.Data, dest)
}
