package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wanderlog/backend/internal/config"
)

// DirectionsClient forwards routing requests to the external directions API
// with the server-held credential attached. Single attempt, no caching.
type DirectionsClient struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

func NewDirectionsClient(cfg config.DirectionsConfig) *DirectionsClient {
	return &DirectionsClient{
		URL:    cfg.URL,
		APIKey: cfg.APIKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Route relays the request body verbatim and returns the upstream response
// body with its content type. Non-2xx upstream statuses are errors.
func (d *DirectionsClient) Route(ctx context.Context, body []byte) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.APIKey != "" {
		req.Header.Set("Authorization", d.APIKey)
	}

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, "", fmt.Errorf("directions api returned %d: %s", resp.StatusCode, string(snippet))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return data, contentType, nil
}
