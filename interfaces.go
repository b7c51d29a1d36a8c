package checkout

import "context"

// APIClient is the backend capability set the order store requires.
// Implementations live at the network boundary (see the http package);
// tests use the scripted client from the checkouttest package.
type APIClient interface {
	// GetOrder fetches the order identified by refID.
	GetOrder(ctx context.Context, refID string) (*Order, error)

	// AddUpsell applies an accepted upsell to the order identified by
	// refID and returns the updated order.
	AddUpsell(ctx context.Context, refID string, req UpsellRequest) (*Order, error)
}

// SessionStore is a session-scoped key/value store used to persist the
// order state across page loads within one checkout session. The store
// itself has no TTL; staleness is handled by the order expiry policy.
type SessionStore interface {
	// Get returns the value for key, or nil if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
