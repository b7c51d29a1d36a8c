package checkout

import (
	"context"

	"github.com/google/uuid"
)

// MarkUpsellViewed records that the customer has seen the offer for
// packageID. Idempotent: a package already in the viewed set is not
// recorded again.
func (s *OrderStore) MarkUpsellViewed(ctx context.Context, packageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contains(s.state.ViewedUpsells, packageID) {
		return
	}
	s.state.ViewedUpsells = append(s.state.ViewedUpsells, packageID)
	s.state.UpsellJourney = append(s.state.UpsellJourney, JourneyEntry{
		ID:        uuid.NewString(),
		PackageID: packageID,
		Action:    JourneyViewed,
		Timestamp: s.now(),
	})
	s.persistLocked(ctx)
}

// MarkUpsellPageViewed records that the customer has navigated to an
// upsell page. Idempotent per page. Arriving on a new page also clears a
// stuck processing flag and upsell error: it is the manual recovery
// valve for a submission whose response never came back.
func (s *OrderStore) MarkUpsellPageViewed(ctx context.Context, pagePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsProcessingUpsell = false
	s.state.UpsellError = ""

	if !contains(s.state.ViewedUpsellPages, pagePath) {
		s.state.ViewedUpsellPages = append(s.state.ViewedUpsellPages, pagePath)
		s.state.UpsellJourney = append(s.state.UpsellJourney, JourneyEntry{
			ID:        uuid.NewString(),
			PagePath:  pagePath,
			Action:    JourneyViewed,
			Timestamp: s.now(),
		})
	}
	s.persistLocked(ctx)
}

// MarkUpsellSkipped records that the customer declined an offer. Never
// deduplicated: skipping the same offer twice records twice. Like
// MarkUpsellPageViewed, this clears a stuck processing flag.
func (s *OrderStore) MarkUpsellSkipped(ctx context.Context, packageID, pagePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsProcessingUpsell = false
	s.state.UpsellError = ""

	s.state.UpsellJourney = append(s.state.UpsellJourney, JourneyEntry{
		ID:        uuid.NewString(),
		PackageID: packageID,
		PagePath:  pagePath,
		Action:    JourneySkipped,
		Timestamp: s.now(),
	})
	s.persistLocked(ctx)
}

// MarkUpsellCompleted marks a package as completed outside the normal
// accept path. Unlike AddUpsell's append, this is dedup-checked.
func (s *OrderStore) MarkUpsellCompleted(ctx context.Context, packageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contains(s.state.CompletedUpsells, packageID) {
		return
	}
	s.state.CompletedUpsells = append(s.state.CompletedUpsells, packageID)
	s.persistLocked(ctx)
}

// HasPageCompleted reports whether an upsell was accepted on pagePath.
func (s *OrderStore) HasPageCompleted(pagePath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.state.CompletedUpsellPages, pagePath)
}

// HasBeenViewed reports whether the offer for packageID was seen.
func (s *OrderStore) HasBeenViewed(packageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.state.ViewedUpsells, packageID)
}

// HasPageBeenViewed reports whether the customer reached pagePath.
func (s *OrderStore) HasPageBeenViewed(pagePath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.state.ViewedUpsellPages, pagePath)
}

// Journey returns a copy of the append-only upsell journey log.
func (s *OrderStore) Journey() []JourneyEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]JourneyEntry{}, s.state.UpsellJourney...)
}
