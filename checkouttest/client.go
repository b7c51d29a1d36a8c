// Package checkouttest provides test-mode helpers for embedders: a
// scripted API client and an in-process sandbox backend. Nothing in this
// package talks to a real payment provider.
package checkouttest

import (
	"context"
	"sync"

	checkout "github.com/nextcommerce/checkout-go"
)

// Client is a scripted checkout.APIClient for tests. Behavior is set via
// the Func fields; calls are counted. If Gate is non-nil, every call
// blocks on it before returning, which lets tests hold a request in
// flight while asserting on concurrent behavior.
type Client struct {
	mu sync.Mutex

	GetOrderFunc  func(ctx context.Context, refID string) (*checkout.Order, error)
	AddUpsellFunc func(ctx context.Context, refID string, req checkout.UpsellRequest) (*checkout.Order, error)

	Gate chan struct{}

	getOrderCalls  int
	addUpsellCalls int
}

var _ checkout.APIClient = (*Client)(nil)

func (c *Client) GetOrder(ctx context.Context, refID string) (*checkout.Order, error) {
	c.mu.Lock()
	c.getOrderCalls++
	fn := c.GetOrderFunc
	gate := c.Gate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fn == nil {
		return &checkout.Order{RefID: refID}, nil
	}
	return fn(ctx, refID)
}

func (c *Client) AddUpsell(ctx context.Context, refID string, req checkout.UpsellRequest) (*checkout.Order, error) {
	c.mu.Lock()
	c.addUpsellCalls++
	fn := c.AddUpsellFunc
	gate := c.Gate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fn == nil {
		return &checkout.Order{RefID: refID}, nil
	}
	return fn(ctx, refID, req)
}

// GetOrderCalls returns how many times GetOrder was invoked.
func (c *Client) GetOrderCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getOrderCalls
}

// AddUpsellCalls returns how many times AddUpsell was invoked.
func (c *Client) AddUpsellCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addUpsellCalls
}
