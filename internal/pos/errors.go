package pos

import "errors"

// Errors returned by the point-of-sale rules. All of them are raised before
// any value is modified.
var (
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrInvalidQuantity      = errors.New("quantity must be >= 0")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrLineNotFound         = errors.New("item not in cart")
	ErrInvalidChoice        = errors.New("action not offered for this table")
	ErrPaymentClosed        = errors.New("payment not allowed on cancelled order")
	ErrAlreadyPaid          = errors.New("order is already paid")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrTicketExists         = errors.New("kitchen ticket already generated")
	ErrOrderClosed          = errors.New("order is no longer active")
	ErrTotalMismatch        = errors.New("order total does not match its items")
)
