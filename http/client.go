// Package http provides the HTTP implementation of the checkout API
// client used by the order store at the network boundary.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	checkout "github.com/nextcommerce/checkout-go"
)

// APIClientConfig configures the HTTP API client
type APIClientConfig struct {
	// BaseURL is the base URL of the checkout backend
	BaseURL string

	// HTTPClient is the HTTP client to use (optional)
	HTTPClient *http.Client

	// APIKey is sent as the X-Api-Key header on every request (optional)
	APIKey string

	// Timeout for requests (optional, defaults to 30s)
	Timeout time.Duration
}

// defaultTimeout is used when the config specifies none.
const defaultTimeout = 30 * time.Second

// APIClient talks to the checkout backend over HTTP.
// Implements checkout.APIClient.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

var _ checkout.APIClient = (*APIClient)(nil)

// NewAPIClient creates a new HTTP API client.
func NewAPIClient(config *APIClientConfig) *APIClient {
	if config == nil {
		config = &APIClientConfig{}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return &APIClient{
		baseURL:    config.BaseURL,
		httpClient: httpClient,
		apiKey:     config.APIKey,
	}
}

// GetOrder fetches an order by reference id.
func (c *APIClient) GetOrder(ctx context.Context, refID string) (*checkout.Order, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/orders/%s", c.baseURL, refID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}

	return c.do(req, checkout.ErrCodeOrderLoadFailed)
}

// AddUpsell applies an upsell to an order and returns the updated order.
func (c *APIClient) AddUpsell(ctx context.Context, refID string, upsell checkout.UpsellRequest) (*checkout.Order, error) {
	body, err := json.Marshal(upsell)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upsell request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/orders/%s/upsells", c.baseURL, refID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upsell request: %w", err)
	}

	return c.do(req, checkout.ErrCodeUpsellFailed)
}

func (c *APIClient) do(req *http.Request, failureCode string) (*checkout.Order, error) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Non-200 responses carry {"message": ...}; surface it as a typed
	// error so the store can display it verbatim.
	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(responseBody, &errBody); err == nil && errBody.Message != "" {
			return nil, checkout.NewCheckoutError(failureCode, errBody.Message)
		}
		return nil, fmt.Errorf("checkout api returned %d: %s", resp.StatusCode, string(responseBody))
	}

	var order checkout.Order
	if err := json.Unmarshal(responseBody, &order); err != nil {
		return nil, checkout.NewCheckoutError(
			checkout.ErrCodeInvalidResponse,
			fmt.Sprintf("failed to decode order response: %s", err.Error()),
		)
	}

	return &order, nil
}
