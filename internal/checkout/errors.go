package checkout

import (
	"errors"
	"fmt"
)

// ErrCheckoutInFlight is returned when a second attempt starts while one is
// still between CreatingOrder and ClearingCart. It is the double-submission
// guard, not a lock: the caller disables confirm and retries later.
var ErrCheckoutInFlight = errors.New("a checkout attempt is already in flight")

// ValidationError means the attempt's preconditions were unmet. It is raised
// before any network call, and the cart is untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "checkout validation failed: " + e.Reason
}

// OrderCreationError means the order service was unreachable or rejected the
// request. The cart is preserved so the user can retry.
type OrderCreationError struct {
	Err error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("order creation failed: %v", e.Err)
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

// PaymentError means the payment was declined (Declined=true) or the payment
// service was unreachable. The order stays PENDING server-side and the cart
// is preserved.
type PaymentError struct {
	OrderID  string
	Declined bool
	Reason   string
	Err      error
}

func (e *PaymentError) Error() string {
	if e.Declined {
		return "payment declined: " + e.Reason
	}
	return fmt.Sprintf("payment failed: %v", e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }
