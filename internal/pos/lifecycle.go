package pos

import "fmt"

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
// ready -> cancelled is deliberately absent: the food is already plated.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusCooking, StatusCancelled},
	StatusCooking: {StatusReady, StatusCancelled},
	StatusReady:   {StatusServed},
}

// CanTransition reports whether an order in current may move to target.
func CanTransition(current, target OrderStatus) bool {
	for _, s := range allowedTransitions[current] {
		if s == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses an order in s may move to, in the order
// the actions are offered. Terminal statuses return nil.
func NextStatuses(s OrderStatus) []OrderStatus {
	next := allowedTransitions[s]
	if len(next) == 0 {
		return nil
	}
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// ApplyTransition returns a copy of o moved to target.
// The lines are left untouched so a cancelled order can still print a refund receipt.
func ApplyTransition(o Order, target OrderStatus) (Order, error) {
	if !CanTransition(o.Status, target) {
		return o, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}
	next := o.clone()
	next.Status = target
	return next, nil
}

// PaymentAllowed reports whether o can be marked paid.
func PaymentAllowed(o Order) error {
	if o.Status == StatusCancelled {
		return ErrPaymentClosed
	}
	if o.PaymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}
	return nil
}

// MarkPaid returns a copy of o settled with method.
// Payment is independent of the kitchen status; there is no way back to pending.
func MarkPaid(o Order, method PaymentMethod) (Order, error) {
	if err := PaymentAllowed(o); err != nil {
		return o, err
	}
	if !method.Valid() {
		return o, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
	next := o.clone()
	next.PaymentStatus = PaymentPaid
	next.PaymentMethod = method
	return next, nil
}

// ApplyPatch validates p against o and returns the patched order.
// A status change is checked before the payment change; both must be valid.
func ApplyPatch(o Order, p OrderPatch) (Order, error) {
	next := o
	var err error
	if p.Status != nil {
		if next, err = ApplyTransition(next, *p.Status); err != nil {
			return o, err
		}
	}
	if p.PaymentStatus != nil {
		if *p.PaymentStatus != PaymentPaid {
			return o, fmt.Errorf("%w: payment_status %s", ErrInvalidTransition, *p.PaymentStatus)
		}
		var method PaymentMethod
		if p.PaymentMethod != nil {
			method = *p.PaymentMethod
		}
		if next, err = MarkPaid(next, method); err != nil {
			return o, err
		}
	} else if p.PaymentMethod != nil {
		return o, fmt.Errorf("%w: payment_method without payment_status", ErrInvalidPaymentMethod)
	}
	return next, nil
}
