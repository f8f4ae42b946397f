package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/rehashkv/internal/infra/buildinfo"
)

// AdminClient talks to the server's admin HTTP endpoint.
type AdminClient struct {
	baseURL string
	client  *http.Client
}

// NewAdminClient creates an admin client for server (host:port or URL).
func NewAdminClient(server string, timeout time.Duration) *AdminClient {
	baseURL := server
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &AdminClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *AdminClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "rehashkv-cli/"+buildinfo.Version)
	return c.client.Do(req)
}

// BaseURL returns the base URL of the client.
func (c *AdminClient) BaseURL() string {
	return c.baseURL
}

// ParseResponse decodes the data field of an admin JSON envelope into
// target.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	var envelope struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)

	if resp.StatusCode >= 400 {
		if decodeErr == nil && envelope.Message != "" {
			return fmt.Errorf("[%s] %s", envelope.Code, envelope.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("parse response: %w", decodeErr)
	}
	if target != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, target); err != nil {
			return fmt.Errorf("parse response data: %w", err)
		}
	}
	return nil
}
