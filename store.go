package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// OrderStore owns the session's order/upsell state. All mutations go
// through its methods; each asynchronous operation guards itself with
// its own in-flight flag (IsLoading for loads, IsProcessingUpsell for
// upsell submissions). The two flags are independent: a load and an
// upsell submission are not mutually exclusive. That matches the
// behavior shipped to merchants today; do not add a cross-lock without
// revisiting the observable timing.
type OrderStore struct {
	mu    sync.Mutex
	state OrderState

	client   APIClient
	sessions SessionStore
	log      logrus.FieldLogger
	hooks    Hooks
	ttl      time.Duration
	now      func() time.Time
}

// StoreOption configures the order store
type StoreOption func(*OrderStore)

// WithSessionStore enables write-through persistence of the order state.
func WithSessionStore(sessions SessionStore) StoreOption {
	return func(s *OrderStore) {
		s.sessions = sessions
	}
}

// WithLogger sets the logger used for operational messages.
func WithLogger(log logrus.FieldLogger) StoreOption {
	return func(s *OrderStore) {
		s.log = log
	}
}

// WithOrderTTL overrides the order staleness window.
func WithOrderTTL(ttl time.Duration) StoreOption {
	return func(s *OrderStore) {
		s.ttl = ttl
	}
}

// WithHooks registers operation hooks.
func WithHooks(hooks Hooks) StoreOption {
	return func(s *OrderStore) {
		s.hooks = hooks
	}
}

// WithClock overrides the time source. Used by tests to simulate expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *OrderStore) {
		s.now = now
	}
}

// NewOrderStore creates an order store backed by the given API client.
// The store starts empty; call Restore to pick up state persisted by a
// previous page load in the same session.
func NewOrderStore(client APIClient, opts ...StoreOption) *OrderStore {
	s := &OrderStore{
		state:  emptyOrderState(),
		client: client,
		log:    logrus.StandardLogger(),
		ttl:    DefaultOrderTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// State returns a deep copy of the current order state.
func (s *OrderStore) State() OrderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Order returns a copy of the currently loaded order, or nil.
func (s *OrderStore) Order() *Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.state.Order)
}

// RefID returns the session's order reference id, or "".
func (s *OrderStore) RefID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RefID
}

// SetRefID establishes the order reference for the session without
// loading the order. Callers must do this (or LoadOrder) before any
// upsell submission.
func (s *OrderStore) SetRefID(ctx context.Context, refID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RefID = refID
	s.persistLocked(ctx)
}

// LoadOrder fetches the order identified by refID and makes it the
// session's current order.
//
// If a fresh order for the same refID is already held, the fetch is
// skipped and the held order is returned. If another load is already in
// flight, the call is a no-op and returns (nil, nil). The requested
// refID is written to state before the fetch resolves so UI can reflect
// the target reference during the fetch.
//
// On failure the held order is discarded, Error is set to a displayable
// message, and a *CheckoutError is returned.
func (s *OrderStore) LoadOrder(ctx context.Context, refID string) (*Order, error) {
	s.mu.Lock()

	now := s.now()
	if s.state.Order != nil && s.state.RefID == refID && !orderExpired(s.state.OrderLoadedAt, now, s.ttl) {
		order := cloneOrder(s.state.Order)
		s.mu.Unlock()
		s.log.WithField("refId", refID).Info("order already loaded and fresh, skipping fetch")
		return order, nil
	}

	if s.state.IsLoading {
		s.mu.Unlock()
		s.log.WithField("refId", refID).Warn("order load already in flight, ignoring")
		return nil, nil
	}

	loadCtx := LoadContext{Ctx: ctx, RefID: refID, Timestamp: now}
	if hook := s.hooks.BeforeLoad; hook != nil {
		if res := hook(loadCtx); res != nil && res.Abort {
			s.state.Error = res.Reason
			s.persistLocked(ctx)
			s.mu.Unlock()
			return nil, NewCheckoutError(ErrCodeOrderLoadFailed, res.Reason)
		}
	}

	s.state.IsLoading = true
	s.state.Error = ""
	s.state.RefID = refID
	s.persistLocked(ctx)
	s.mu.Unlock()

	order, err := s.client.GetOrder(ctx, refID)
	duration := s.now().Sub(now)

	s.mu.Lock()
	if err != nil {
		s.state.IsLoading = false
		s.state.Error = errorMessage(err, MsgOrderLoadFailed)
		s.state.Order = nil
		cerr := NewCheckoutError(ErrCodeOrderLoadFailed, s.state.Error)
		s.persistLocked(ctx)
		s.mu.Unlock()

		s.log.WithField("refId", refID).WithError(err).Error("order load failed")
		if hook := s.hooks.OnLoadFailure; hook != nil {
			hook(LoadFailureContext{LoadContext: loadCtx, Error: err, Duration: duration})
		}
		return nil, cerr
	}

	loadedAt := s.now()
	s.state.Order = cloneOrder(order)
	s.state.IsLoading = false
	// A processing flag left behind by an aborted previous session must
	// not survive a fresh load.
	s.state.IsProcessingUpsell = false
	s.state.Error = ""
	s.state.OrderLoadedAt = &loadedAt
	// The loaded order is authoritative: completed upsells come from its
	// lines, and prior journey/view tracking is discarded.
	s.state.CompletedUpsells = completedUpsellsFromOrder(order)
	s.state.UpsellJourney = []JourneyEntry{}
	s.state.ViewedUpsells = []string{}
	s.state.ViewedUpsellPages = []string{}
	s.persistLocked(ctx)
	result := cloneOrder(s.state.Order)
	s.mu.Unlock()

	if hook := s.hooks.AfterLoad; hook != nil {
		hook(LoadResultContext{LoadContext: loadCtx, Order: cloneOrder(order), Duration: duration})
	}
	return result, nil
}

// AddPendingUpsell queues an upsell intent without submitting it. The
// queue is never drained automatically; callers submit entries via
// AddUpsell and remove them explicitly.
func (s *OrderStore) AddPendingUpsell(ctx context.Context, req UpsellRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PendingUpsells = append(s.state.PendingUpsells, UpsellRequest{
		Lines: append([]UpsellLine(nil), req.Lines...),
	})
	s.persistLocked(ctx)
}

// RemovePendingUpsell removes the queued upsell at index. Reports
// whether an entry was removed.
func (s *OrderStore) RemovePendingUpsell(ctx context.Context, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.state.PendingUpsells) {
		return false
	}
	s.state.PendingUpsells = append(s.state.PendingUpsells[:index], s.state.PendingUpsells[index+1:]...)
	s.persistLocked(ctx)
	return true
}

// ClearPendingUpsells empties the pending upsell queue.
func (s *OrderStore) ClearPendingUpsells(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PendingUpsells = []UpsellRequest{}
	s.persistLocked(ctx)
}

// Reset returns the store to its initial empty state and persists the
// cleared state. Used at session end and by test harnesses.
func (s *OrderStore) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = emptyOrderState()
	s.persistLocked(ctx)
}

func cloneOrder(order *Order) *Order {
	if order == nil {
		return nil
	}
	out := *order
	out.Lines = append([]OrderLine(nil), order.Lines...)
	return &out
}
