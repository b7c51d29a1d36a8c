package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

// memSession is an inline SessionStore for tests.
type memSession struct {
	values map[string][]byte
}

func newMemSession() *memSession {
	return &memSession{values: make(map[string][]byte)}
}

func (m *memSession) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (m *memSession) Set(ctx context.Context, key string, value []byte) error {
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *memSession) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func TestPersistence_WriteThroughOnMutation(t *testing.T) {
	sessions := newMemSession()
	client := &stubClient{
		getOrder: func(ctx context.Context, refID string) (*Order, error) {
			return testOrder(refID), nil
		},
	}
	store := NewOrderStore(client, WithSessionStore(sessions))

	if _, err := store.LoadOrder(context.Background(), "ref-1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	blob, ok := sessions.values[SessionStateKey]
	if !ok {
		t.Fatal("Expected state to be persisted under the session key")
	}

	var persisted OrderState
	if err := json.Unmarshal(blob, &persisted); err != nil {
		t.Fatalf("Persisted blob is not valid state JSON: %v", err)
	}
	if persisted.RefID != "ref-1" || persisted.Order == nil {
		t.Errorf("Persisted state incomplete: %+v", persisted)
	}
}

func TestPersistence_RestoreRoundTrip(t *testing.T) {
	sessions := newMemSession()
	client := &stubClient{
		getOrder: func(ctx context.Context, refID string) (*Order, error) {
			return testOrder(refID), nil
		},
	}
	ctx := context.Background()

	first := NewOrderStore(client, WithSessionStore(sessions))
	if _, err := first.LoadOrder(ctx, "ref-1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	first.MarkUpsellViewed(ctx, "5")
	first.MarkUpsellPageViewed(ctx, "/upsell-1")

	second := NewOrderStore(client, WithSessionStore(sessions))
	if err := second.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	want := first.State()
	got := second.State()
	if !reflect.DeepEqual(normalizedForCompare(want), normalizedForCompare(got)) {
		t.Errorf("Restored state differs.\nwant %+v\ngot  %+v", want, got)
	}
}

// normalizedForCompare converts timestamps to UTC and drops monotonic
// readings, neither of which survive a JSON round trip.
func normalizedForCompare(state OrderState) OrderState {
	out := state.clone()
	if out.OrderLoadedAt != nil {
		t := out.OrderLoadedAt.UTC()
		out.OrderLoadedAt = &t
	}
	for i := range out.UpsellJourney {
		out.UpsellJourney[i].Timestamp = out.UpsellJourney[i].Timestamp.UTC()
	}
	return out
}

func TestPersistence_RestoreClearsInFlightFlags(t *testing.T) {
	sessions := newMemSession()
	ctx := context.Background()

	stale := emptyOrderState()
	stale.RefID = "ref-1"
	stale.IsLoading = true
	stale.IsProcessingUpsell = true
	blob, err := json.Marshal(stale)
	if err != nil {
		t.Fatal(err)
	}
	sessions.values[SessionStateKey] = blob

	store := NewOrderStore(&stubClient{}, WithSessionStore(sessions))
	if err := store.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	state := store.State()
	if state.IsLoading || state.IsProcessingUpsell {
		t.Error("Expected in-flight flags to be dropped on restore")
	}
	if state.RefID != "ref-1" {
		t.Errorf("Expected refId to be restored, got %q", state.RefID)
	}
}

func TestPersistence_RestoreRejectsMalformedBlob(t *testing.T) {
	cases := []struct {
		name string
		blob string
	}{
		{"not json", `{{{`},
		{"wrong shape", `{"isLoading": "yes", "isProcessingUpsell": false}`},
		{"missing required", `{"refId": "ref-1"}`},
		{"wrong collection type", `{"isLoading": false, "isProcessingUpsell": false, "completedUpsells": [1, 2]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := newMemSession()
			sessions.values[SessionStateKey] = []byte(tc.blob)

			store := NewOrderStore(&stubClient{}, WithSessionStore(sessions))
			err := store.Restore(context.Background())
			if err == nil {
				t.Fatal("Expected restore to reject the blob")
			}
			var cerr *CheckoutError
			if !errors.As(err, &cerr) || cerr.Code != ErrCodeSessionRestore {
				t.Errorf("Expected session_restore_failed, got %v", err)
			}
			if !reflect.DeepEqual(store.State(), emptyOrderState()) {
				t.Error("Expected the store to stay in its initial state")
			}
		})
	}
}

func TestPersistence_RestoreMissingBlobIsFine(t *testing.T) {
	store := NewOrderStore(&stubClient{}, WithSessionStore(newMemSession()))
	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("Expected missing blob to be fine, got %v", err)
	}
	if !reflect.DeepEqual(store.State(), emptyOrderState()) {
		t.Error("Expected the store to stay in its initial state")
	}
}

func TestPersistence_ResetPersistsClearedState(t *testing.T) {
	sessions := newMemSession()
	client := &stubClient{
		getOrder: func(ctx context.Context, refID string) (*Order, error) {
			return testOrder(refID), nil
		},
	}
	ctx := context.Background()

	store := NewOrderStore(client, WithSessionStore(sessions))
	if _, err := store.LoadOrder(ctx, "ref-1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	store.Reset(ctx)

	var persisted OrderState
	if err := json.Unmarshal(sessions.values[SessionStateKey], &persisted); err != nil {
		t.Fatalf("Persisted blob is not valid state JSON: %v", err)
	}
	if persisted.Order != nil || persisted.RefID != "" {
		t.Errorf("Expected cleared state to be persisted, got %+v", persisted)
	}
}
