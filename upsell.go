package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddUpsell submits an accepted post-purchase offer against the current
// order reference and returns the updated order. pagePath is the path of
// the upsell page the customer accepted from; it tags the journey
// entries and the completed-pages set.
//
// A reference id must be established first (LoadOrder or SetRefID); if
// it is absent the call fails fast without touching the network. If
// another submission is already in flight the call is a no-op and
// returns (nil, nil) — this is what absorbs a double-click.
//
// On failure the held order is left untouched (a failed upsell must not
// erase a valid order), UpsellError is set, and a *CheckoutError is
// returned.
func (s *OrderStore) AddUpsell(ctx context.Context, pagePath string, req UpsellRequest) (*Order, error) {
	s.mu.Lock()

	if s.state.RefID == "" {
		s.state.UpsellError = "No order reference set; load an order before adding upsells"
		cerr := NewCheckoutError(ErrCodeMissingOrderRef, s.state.UpsellError)
		s.persistLocked(ctx)
		s.mu.Unlock()
		return nil, cerr
	}

	if s.state.IsProcessingUpsell {
		s.mu.Unlock()
		s.log.WithField("refId", s.RefID()).Warn("upsell submission already in flight, ignoring")
		return nil, nil
	}

	refID := s.state.RefID
	upsellCtx := UpsellContext{Ctx: ctx, RefID: refID, PagePath: pagePath, Request: req, Timestamp: s.now()}
	if hook := s.hooks.BeforeUpsell; hook != nil {
		if res := hook(upsellCtx); res != nil && res.Abort {
			s.state.UpsellError = res.Reason
			s.persistLocked(ctx)
			s.mu.Unlock()
			return nil, NewCheckoutError(ErrCodeUpsellFailed, res.Reason)
		}
	}

	s.state.IsProcessingUpsell = true
	s.state.UpsellError = ""
	s.persistLocked(ctx)
	s.mu.Unlock()

	order, err := s.client.AddUpsell(ctx, refID, req)
	duration := s.now().Sub(upsellCtx.Timestamp)

	s.mu.Lock()
	if err != nil {
		s.state.IsProcessingUpsell = false
		s.state.UpsellError = errorMessage(err, MsgUpsellFailed)
		cerr := NewCheckoutError(ErrCodeUpsellFailed, s.state.UpsellError)
		s.persistLocked(ctx)
		s.mu.Unlock()

		s.log.WithField("refId", refID).WithError(err).Error("upsell submission failed")
		if hook := s.hooks.OnUpsellFailure; hook != nil {
			hook(UpsellFailureContext{UpsellContext: upsellCtx, Error: err, Duration: duration})
		}
		return nil, cerr
	}

	now := s.now()
	packageIDs := packageIDsFromRequest(req)
	// All entries from one acceptance share a single timestamp.
	entries := make([]JourneyEntry, 0, len(packageIDs))
	for _, id := range packageIDs {
		entries = append(entries, JourneyEntry{
			ID:        uuid.NewString(),
			PackageID: id,
			PagePath:  pagePath,
			Action:    JourneyAccepted,
			Timestamp: now,
		})
	}

	s.state.Order = cloneOrder(order)
	s.state.IsProcessingUpsell = false
	s.state.UpsellError = ""
	s.state.OrderLoadedAt = &now
	// Accepted ids are appended, never deduplicated: the same package can
	// legitimately be purchased again on a later offer page.
	s.state.CompletedUpsells = append(s.state.CompletedUpsells, packageIDs...)
	if pagePath != "" && !contains(s.state.CompletedUpsellPages, pagePath) {
		s.state.CompletedUpsellPages = append(s.state.CompletedUpsellPages, pagePath)
	}
	s.state.UpsellJourney = append(s.state.UpsellJourney, entries...)
	s.persistLocked(ctx)
	result := cloneOrder(s.state.Order)
	s.mu.Unlock()

	if hook := s.hooks.AfterUpsell; hook != nil {
		hook(UpsellResultContext{UpsellContext: upsellCtx, Order: cloneOrder(order), PackageIDs: packageIDs, Duration: duration})
	}
	return result, nil
}

// CanAddUpsells reports whether an upsell submission would be accepted
// right now: an order is loaded, it supports post-purchase upsells, and
// no submission is in flight.
func (s *OrderStore) CanAddUpsells() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Order != nil &&
		s.state.Order.SupportsPostPurchaseUpsells &&
		!s.state.IsProcessingUpsell
}

// OrderTotal returns the loaded order's total including tax. Returns
// zero when no order is loaded or the total does not parse.
func (s *OrderStore) OrderTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Order == nil {
		return decimal.Zero
	}
	total, err := decimal.NewFromString(s.state.Order.TotalInclTax)
	if err != nil {
		return decimal.Zero
	}
	return total
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
