package checkout

import "time"

// DefaultOrderTTL is how long a loaded order stays usable before a
// reload is forced. 15 minutes, matching the backend's quote validity.
const DefaultOrderTTL = 15 * time.Minute

// orderExpired reports whether an order loaded at loadedAt is stale as
// of now. A nil loadedAt means no order was ever loaded, which counts
// as expired. Pure function; callers must pass a fresh now each time.
func orderExpired(loadedAt *time.Time, now time.Time, ttl time.Duration) bool {
	if loadedAt == nil {
		return true
	}
	return now.Sub(*loadedAt) > ttl
}

// IsOrderExpired reports whether the currently held order is stale and
// would be refetched by the next LoadOrder call.
func (s *OrderStore) IsOrderExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return orderExpired(s.state.OrderLoadedAt, s.now(), s.ttl)
}
