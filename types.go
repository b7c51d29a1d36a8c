package checkout

import (
	"time"
)

// OrderLine is a single line item on an order.
// Price fields are decimal strings as returned by the backend.
type OrderLine struct {
	IsUpsell         bool   `json:"is_upsell"`
	ProductSKU       string `json:"product_sku"`
	ProductTitle     string `json:"product_title"`
	Quantity         int    `json:"quantity,omitempty"`
	PriceInclTax     string `json:"price_incl_tax,omitempty"`
	PriceExclTax     string `json:"price_excl_tax,omitempty"`
	LineTotalInclTax string `json:"line_total_incl_tax,omitempty"`
}

// Order is the authoritative purchase record returned by the backend.
// The SDK treats it as opaque apart from the fields below; it is replaced
// wholesale on every successful load or upsell application, never patched.
type Order struct {
	RefID                       string      `json:"ref_id,omitempty"`
	Number                      string      `json:"number,omitempty"`
	Lines                       []OrderLine `json:"lines"`
	TotalInclTax                string      `json:"total_incl_tax"`
	Currency                    string      `json:"currency,omitempty"`
	SupportsPostPurchaseUpsells bool        `json:"supports_post_purchase_upsells"`
}

// UpsellLine identifies one package being accepted in an upsell request.
// PackageID accepts both numeric and string ids from callers; it is
// stringified before being recorded.
type UpsellLine struct {
	PackageID interface{} `json:"package_id"`
	Quantity  int         `json:"quantity,omitempty"`
}

// UpsellRequest is the payload submitted when a customer accepts a
// post-purchase offer.
type UpsellRequest struct {
	Lines []UpsellLine `json:"lines"`
}

// JourneyAction classifies a customer's interaction with an upsell offer.
type JourneyAction string

const (
	JourneyAccepted JourneyAction = "accepted"
	JourneyViewed   JourneyAction = "viewed"
	JourneySkipped  JourneyAction = "skipped"
)

// JourneyEntry is one immutable record of a customer interacting with an
// upsell offer. Entries are only ever appended; the log is cleared as a
// whole on reset or when a fresh order load makes it stale.
type JourneyEntry struct {
	ID        string        `json:"id"`
	PackageID string        `json:"package_id,omitempty"`
	PagePath  string        `json:"page_path,omitempty"`
	Action    JourneyAction `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
}

// OrderState is the aggregate session state owned by OrderStore.
// This is also the shape persisted to the session store under
// SessionStateKey, so the field tags are part of the storage contract.
type OrderState struct {
	Order                *Order          `json:"order,omitempty"`
	RefID                string          `json:"refId,omitempty"`
	OrderLoadedAt        *time.Time      `json:"orderLoadedAt,omitempty"`
	IsLoading            bool            `json:"isLoading"`
	IsProcessingUpsell   bool            `json:"isProcessingUpsell"`
	Error                string          `json:"error,omitempty"`
	UpsellError          string          `json:"upsellError,omitempty"`
	PendingUpsells       []UpsellRequest `json:"pendingUpsells"`
	CompletedUpsells     []string        `json:"completedUpsells"`
	CompletedUpsellPages []string        `json:"completedUpsellPages"`
	ViewedUpsells        []string        `json:"viewedUpsells"`
	ViewedUpsellPages    []string        `json:"viewedUpsellPages"`
	UpsellJourney        []JourneyEntry  `json:"upsellJourney"`
}

// emptyOrderState returns the documented initial state.
func emptyOrderState() OrderState {
	return OrderState{
		PendingUpsells:       []UpsellRequest{},
		CompletedUpsells:     []string{},
		CompletedUpsellPages: []string{},
		ViewedUpsells:        []string{},
		ViewedUpsellPages:    []string{},
		UpsellJourney:        []JourneyEntry{},
	}
}

// clone returns a deep copy of the state so callers can never alias the
// store's internal slices or order.
func (s OrderState) clone() OrderState {
	out := s
	if s.Order != nil {
		order := *s.Order
		order.Lines = append([]OrderLine(nil), s.Order.Lines...)
		out.Order = &order
	}
	if s.OrderLoadedAt != nil {
		t := *s.OrderLoadedAt
		out.OrderLoadedAt = &t
	}
	out.PendingUpsells = clonePendingUpsells(s.PendingUpsells)
	out.CompletedUpsells = append([]string{}, s.CompletedUpsells...)
	out.CompletedUpsellPages = append([]string{}, s.CompletedUpsellPages...)
	out.ViewedUpsells = append([]string{}, s.ViewedUpsells...)
	out.ViewedUpsellPages = append([]string{}, s.ViewedUpsellPages...)
	out.UpsellJourney = append([]JourneyEntry{}, s.UpsellJourney...)
	return out
}

func clonePendingUpsells(in []UpsellRequest) []UpsellRequest {
	out := make([]UpsellRequest, len(in))
	for i, req := range in {
		out[i] = UpsellRequest{Lines: append([]UpsellLine(nil), req.Lines...)}
	}
	return out
}
