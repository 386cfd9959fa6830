package pos

import (
	"slices"
	"strings"
)

// Action is what the operator can do after selecting a table.
type Action int

const (
	ActionStartNewOrder Action = iota + 1
	ActionGenerateBillForLatest
	ActionViewOrders
)

func (a Action) String() string {
	switch a {
	case ActionStartNewOrder:
		return "start-new-order"
	case ActionGenerateBillForLatest:
		return "generate-bill"
	case ActionViewOrders:
		return "view-orders"
	}
	return "unknown"
}

// Decision is the outcome of selecting a table. It never picks an action on
// its own: the caller presents Choices and calls Resolve with the operator's pick.
type Decision struct {
	Table   Table
	Active  []Order // newest first
	Latest  *Order
	Choices []Action

	// Inconsistent is set when the table is marked occupied but no active
	// order references it. The table is still usable; the UI should flag it.
	Inconsistent bool
}

// Resolve checks that choice is one of the offered actions.
func (d Decision) Resolve(choice Action) (Action, error) {
	if slices.Contains(d.Choices, choice) {
		return choice, nil
	}
	return 0, ErrInvalidChoice
}

// IsActive reports whether o still occupies the kitchen or the table.
func IsActive(o Order) bool {
	switch o.Status {
	case StatusPending, StatusCooking, StatusReady:
		return true
	}
	return false
}

// ActiveOrdersForTable returns the active orders placed on tableNumber,
// newest first.
func ActiveOrdersForTable(tableNumber string, orders []Order) []Order {
	if tableNumber == "" {
		return nil
	}
	var active []Order
	for _, o := range orders {
		if o.TableNumber == tableNumber && IsActive(o) {
			active = append(active, o)
		}
	}
	slices.SortStableFunc(active, func(a, b Order) int { return compareRecency(b, a) })
	return active
}

// LatestOrder returns the most recently created order, breaking timestamp
// ties by the higher ID. It returns nil for an empty slice.
func LatestOrder(orders []Order) *Order {
	if len(orders) == 0 {
		return nil
	}
	latest := orders[0]
	for _, o := range orders[1:] {
		if compareRecency(o, latest) > 0 {
			latest = o
		}
	}
	return &latest
}

// compareRecency orders by CreatedAt, then by ID.
func compareRecency(a, b Order) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

// DecideAction derives what selecting table should offer from the live order
// list. The stored table status is only used to detect inconsistency; it is
// never rewritten here.
func DecideAction(table Table, orders []Order) Decision {
	active := ActiveOrdersForTable(table.Number, orders)
	d := Decision{
		Table:        table,
		Active:       active,
		Inconsistent: table.Status == TableOccupied && len(active) == 0,
	}
	if len(active) == 0 {
		d.Choices = []Action{ActionStartNewOrder}
		return d
	}
	d.Latest = LatestOrder(active)
	d.Choices = []Action{ActionGenerateBillForLatest, ActionViewOrders}
	return d
}
