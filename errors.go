package checkout

import "fmt"

// CheckoutError represents a checkout-specific error with a stable code
// and a human-readable message suitable for direct display.
type CheckoutError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeOrderLoadFailed = "order_load_failed"
	ErrCodeUpsellFailed    = "upsell_failed"
	ErrCodeMissingOrderRef = "missing_order_ref"
	ErrCodeInvalidResponse = "invalid_response"
	ErrCodeSessionRestore  = "session_restore_failed"
)

// Fallback messages used when the underlying failure carries no
// descriptive message of its own. These strings are user-facing.
const (
	MsgOrderLoadFailed = "Failed to load order"
	MsgUpsellFailed    = "Failed to add upsell"
)

// NewCheckoutError creates a new checkout error.
func NewCheckoutError(code, message string) *CheckoutError {
	return &CheckoutError{
		Code:    code,
		Message: message,
	}
}

// errorMessage extracts a display message from err, falling back to the
// given default when the error is nil or carries no message.
func errorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if ce, ok := err.(*CheckoutError); ok && ce.Message != "" {
		return ce.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
