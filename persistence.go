package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// SessionStateKey is the session-store key the order state is persisted
// under. The value is a JSON blob of OrderState.
const SessionStateKey = "next-order"

// orderStateSchema defensively validates a persisted blob before it is
// trusted. The layout carries no version field, so a shape check is the
// only guard against a stale or foreign write under our key.
const orderStateSchema = `{
	"type": "object",
	"properties": {
		"order": {"type": "object"},
		"refId": {"type": "string"},
		"orderLoadedAt": {"type": "string"},
		"isLoading": {"type": "boolean"},
		"isProcessingUpsell": {"type": "boolean"},
		"error": {"type": "string"},
		"upsellError": {"type": "string"},
		"pendingUpsells": {"type": "array", "items": {"type": "object"}},
		"completedUpsells": {"type": "array", "items": {"type": "string"}},
		"completedUpsellPages": {"type": "array", "items": {"type": "string"}},
		"viewedUpsells": {"type": "array", "items": {"type": "string"}},
		"viewedUpsellPages": {"type": "array", "items": {"type": "string"}},
		"upsellJourney": {"type": "array", "items": {"type": "object"}}
	},
	"required": ["isLoading", "isProcessingUpsell"]
}`

var orderStateSchemaLoader = gojsonschema.NewStringLoader(orderStateSchema)

// persistLocked writes the current state through to the session store.
// Must be called with the store lock held. Persistence failures are
// logged but never fail the mutation that triggered them.
func (s *OrderStore) persistLocked(ctx context.Context) {
	if s.sessions == nil {
		return
	}

	blob, err := json.Marshal(s.state)
	if err != nil {
		s.log.WithError(err).Warn("failed to serialize order state, skipping persist")
		return
	}

	if err := s.sessions.Set(ctx, SessionStateKey, blob); err != nil {
		s.log.WithError(err).Warn("failed to persist order state")
		return
	}
	s.log.Debug("order state persisted")
}

// Restore loads previously persisted state from the session store.
// Should be called once after construction, before the store is shared.
//
// A missing blob is not an error. A blob that fails shape validation is
// discarded and reported; the store stays in its empty initial state and
// remains usable. In-flight flags are never restored: a fetch that was
// running when the previous page unloaded is gone.
func (s *OrderStore) Restore(ctx context.Context) error {
	if s.sessions == nil {
		return nil
	}

	blob, err := s.sessions.Get(ctx, SessionStateKey)
	if err != nil {
		return fmt.Errorf("failed to read persisted order state: %w", err)
	}
	if blob == nil {
		return nil
	}

	result, err := gojsonschema.Validate(orderStateSchemaLoader, gojsonschema.NewBytesLoader(blob))
	if err != nil {
		s.log.WithError(err).Warn("persisted order state is not valid JSON, discarding")
		return NewCheckoutError(ErrCodeSessionRestore, "persisted order state is not valid JSON")
	}
	if !result.Valid() {
		s.log.WithField("errors", result.Errors()).Warn("persisted order state failed validation, discarding")
		return NewCheckoutError(ErrCodeSessionRestore, "persisted order state has an unexpected shape")
	}

	var restored OrderState
	if err := json.Unmarshal(blob, &restored); err != nil {
		return NewCheckoutError(ErrCodeSessionRestore, fmt.Sprintf("failed to decode persisted order state: %v", err))
	}

	normalizeState(&restored)
	restored.IsLoading = false
	restored.IsProcessingUpsell = false

	s.mu.Lock()
	s.state = restored
	s.mu.Unlock()
	return nil
}

// normalizeState replaces nil slices with empty ones so restored state
// behaves identically to freshly built state.
func normalizeState(state *OrderState) {
	if state.PendingUpsells == nil {
		state.PendingUpsells = []UpsellRequest{}
	}
	if state.CompletedUpsells == nil {
		state.CompletedUpsells = []string{}
	}
	if state.CompletedUpsellPages == nil {
		state.CompletedUpsellPages = []string{}
	}
	if state.ViewedUpsells == nil {
		state.ViewedUpsells = []string{}
	}
	if state.ViewedUpsellPages == nil {
		state.ViewedUpsellPages = []string{}
	}
	if state.UpsellJourney == nil {
		state.UpsellJourney = []JourneyEntry{}
	}
}
