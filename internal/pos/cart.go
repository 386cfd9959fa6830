package pos

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart collects lines before an order is submitted. A Cart is a value:
// every method returns a new Cart and leaves the receiver unchanged.
type Cart struct {
	lines []OrderLine
}

// NewCart returns a cart holding a copy of lines.
func NewCart(lines ...OrderLine) Cart {
	return Cart{lines: slices.Clone(lines)}
}

// Lines returns a copy of the cart lines in insertion order.
func (c Cart) Lines() []OrderLine {
	return slices.Clone(c.lines)
}

// Len returns the number of distinct lines.
func (c Cart) Len() int {
	return len(c.lines)
}

// Quantity returns the quantity of menuItemID in the cart, 0 when absent.
func (c Cart) Quantity(menuItemID uuid.UUID) int {
	if i := c.index(menuItemID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c Cart) index(menuItemID uuid.UUID) int {
	return slices.IndexFunc(c.lines, func(l OrderLine) bool { return l.MenuItemID == menuItemID })
}

// Add puts one more of item in the cart. A repeated item bumps the existing
// line; a new item is appended with a snapshot of its current name and price.
func (c Cart) Add(item MenuItem) Cart {
	lines := slices.Clone(c.lines)
	if i := c.index(item.ID); i >= 0 {
		lines[i].Quantity++
		return Cart{lines: lines}
	}
	lines = append(lines, OrderLine{
		MenuItemID: item.ID,
		Name:       item.Name,
		Quantity:   1,
		Price:      item.Price,
	})
	return Cart{lines: lines}
}

// SetQuantity sets the quantity of an existing line; 0 removes it.
func (c Cart) SetQuantity(menuItemID uuid.UUID, n int) (Cart, error) {
	if n < 0 {
		return c, fmt.Errorf("%w: got %d", ErrInvalidQuantity, n)
	}
	i := c.index(menuItemID)
	if i < 0 {
		return c, fmt.Errorf("%w: %s", ErrLineNotFound, menuItemID)
	}
	if n == 0 {
		return Cart{lines: slices.Delete(slices.Clone(c.lines), i, i+1)}, nil
	}
	lines := slices.Clone(c.lines)
	lines[i].Quantity = n
	return Cart{lines: lines}, nil
}

// SetNote sets the preparation note of an existing line.
func (c Cart) SetNote(menuItemID uuid.UUID, note string) (Cart, error) {
	i := c.index(menuItemID)
	if i < 0 {
		return c, fmt.Errorf("%w: %s", ErrLineNotFound, menuItemID)
	}
	lines := slices.Clone(c.lines)
	lines[i].Note = note
	return Cart{lines: lines}, nil
}

// Total returns the running total of the cart, before tax.
func (c Cart) Total() decimal.Decimal {
	return Subtotal(c.lines)
}

// Checkout builds the order-creation payload. Customer name and table number
// are optional and forwarded as given.
func (c Cart) Checkout(customerName, tableNumber string) (OrderDraft, error) {
	if len(c.lines) == 0 {
		return OrderDraft{}, ErrEmptyCart
	}
	return OrderDraft{
		CustomerName: customerName,
		TableNumber:  tableNumber,
		Lines:        slices.Clone(c.lines),
	}, nil
}
