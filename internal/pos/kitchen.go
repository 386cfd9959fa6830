package pos

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// minPrepMinutes is the floor for an order's estimated completion.
	minPrepMinutes = 30

	// DefaultPrepMinutes applies to menu items created without a preparation time.
	DefaultPrepMinutes = 15

	// busyCookingThreshold is the number of cooking orders above which the kitchen is busy.
	busyCookingThreshold = 5
)

// CanGenerateTicket reports whether a kitchen ticket may be created for o.
func CanGenerateTicket(o Order) error {
	if !IsActive(o) {
		return fmt.Errorf("%w: status %s", ErrOrderClosed, o.Status)
	}
	if o.KOTGenerated {
		return ErrTicketExists
	}
	return nil
}

// NeedsTicket returns the active orders that have no kitchen ticket yet,
// in the order given.
func NeedsTicket(orders []Order) []Order {
	var out []Order
	for _, o := range orders {
		if CanGenerateTicket(o) == nil {
			out = append(out, o)
		}
	}
	return out
}

// TicketNumber formats the sequential ticket label, e.g. ORD-0007.
func TicketNumber(seq int) string {
	return fmt.Sprintf("ORD-%04d", seq)
}

// NewTicket builds the kitchen copy of o.
func NewTicket(o Order, seq int, now time.Time) KitchenTicket {
	items := make([]TicketItem, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = TicketItem{Name: l.Name, Quantity: l.Quantity}
	}
	return KitchenTicket{
		ID:          uuid.New(),
		OrderID:     o.ID,
		OrderNumber: TicketNumber(seq),
		TableNumber: o.TableNumber,
		Items:       items,
		Status:      StatusPending,
		CreatedAt:   now,
	}
}

// EstimateCompletion returns when an order placed at placed should be ready:
// the slowest dish, but never sooner than minPrepMinutes.
func EstimateCompletion(placed time.Time, prepMinutes []int) time.Time {
	longest := minPrepMinutes
	for _, m := range prepMinutes {
		longest = max(longest, m)
	}
	return placed.Truncate(time.Second).Add(time.Duration(longest) * time.Minute)
}

// KitchenLoad derives the kitchen indicator from the order queue.
func KitchenLoad(cooking, pending int) KitchenStatus {
	switch {
	case cooking > busyCookingThreshold:
		return KitchenBusy
	case cooking == 0 && pending == 0:
		return KitchenOffline
	}
	return KitchenActive
}
