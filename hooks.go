package checkout

import (
	"context"
	"time"
)

// ============================================================================
// Hook Context Types
// ============================================================================

// LoadContext contains information passed to load hooks
type LoadContext struct {
	Ctx       context.Context
	RefID     string
	Timestamp time.Time
}

// LoadResultContext contains the load result and context
type LoadResultContext struct {
	LoadContext
	Order    *Order
	Duration time.Duration
}

// LoadFailureContext contains the load failure and context
type LoadFailureContext struct {
	LoadContext
	Error    error
	Duration time.Duration
}

// UpsellContext contains information passed to upsell hooks
type UpsellContext struct {
	Ctx       context.Context
	RefID     string
	PagePath  string
	Request   UpsellRequest
	Timestamp time.Time
}

// UpsellResultContext contains the upsell result and context
type UpsellResultContext struct {
	UpsellContext
	Order      *Order
	PackageIDs []string
	Duration   time.Duration
}

// UpsellFailureContext contains the upsell failure and context
type UpsellFailureContext struct {
	UpsellContext
	Error    error
	Duration time.Duration
}

// ============================================================================
// Hook Function Types
// ============================================================================

// BeforeHookResult represents the result of a "before" hook.
// If Abort is true, the operation is skipped and the given Reason is
// surfaced through the corresponding state error field.
type BeforeHookResult struct {
	Abort  bool
	Reason string
}

// BeforeLoadHook runs before an order fetch is attempted.
type BeforeLoadHook func(LoadContext) *BeforeHookResult

// AfterLoadHook runs after a successful order fetch.
type AfterLoadHook func(LoadResultContext)

// LoadFailureHook runs after a failed order fetch.
type LoadFailureHook func(LoadFailureContext)

// BeforeUpsellHook runs before an upsell submission.
type BeforeUpsellHook func(UpsellContext) *BeforeHookResult

// AfterUpsellHook runs after a successful upsell submission.
type AfterUpsellHook func(UpsellResultContext)

// UpsellFailureHook runs after a failed upsell submission.
type UpsellFailureHook func(UpsellFailureContext)

// Hooks lets embedders observe (and in the before-phase, veto) the two
// asynchronous operations of the store. The core raises no events of its
// own; any eventing is layered on top via these hooks.
//
// Hooks run synchronously on the calling goroutine. Before-hooks are
// invoked with the store lock held and must not call back into the store.
type Hooks struct {
	BeforeLoad    BeforeLoadHook
	AfterLoad     AfterLoadHook
	OnLoadFailure LoadFailureHook

	BeforeUpsell    BeforeUpsellHook
	AfterUpsell     AfterUpsellHook
	OnUpsellFailure UpsellFailureHook
}
