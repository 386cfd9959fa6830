package pos

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func menuItem(name, price string) MenuItem {
	return MenuItem{ID: uuid.New(), Name: name, Price: dec(price), IsAvailable: true}
}

func TestCart_AddMergesRepeats(t *testing.T) {
	paneer := menuItem("Paneer Tikka", "180.00")
	naan := menuItem("Naan", "40.00")

	c := NewCart().Add(paneer).Add(naan).Add(paneer)

	if c.Len() != 2 {
		t.Fatalf("lines: got %d, want 2", c.Len())
	}
	if got := c.Quantity(paneer.ID); got != 2 {
		t.Errorf("paneer quantity: got %d, want 2", got)
	}
	if got := c.Quantity(naan.ID); got != 1 {
		t.Errorf("naan quantity: got %d, want 1", got)
	}
	lines := c.Lines()
	if lines[0].MenuItemID != paneer.ID || lines[1].MenuItemID != naan.ID {
		t.Error("insertion order not preserved")
	}
}

func TestCart_AddSnapshotsPrice(t *testing.T) {
	item := menuItem("Dal Makhani", "220.00")
	c := NewCart().Add(item)

	item.Price = dec("999.00")
	item.Name = "Renamed"
	c = c.Add(item)

	l := c.Lines()[0]
	if l.Name != "Dal Makhani" || !l.Price.Equal(dec("220.00")) {
		t.Errorf("line followed menu edit: %+v", l)
	}
	if l.Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", l.Quantity)
	}
}

func TestCart_IsValue(t *testing.T) {
	item := menuItem("Naan", "40.00")
	empty := NewCart()
	one := empty.Add(item)
	_ = one.Add(item)

	if empty.Len() != 0 {
		t.Error("Add mutated the receiver")
	}
	if one.Quantity(item.ID) != 1 {
		t.Error("second Add mutated the first result")
	}
}

func TestCart_SetQuantity(t *testing.T) {
	paneer := menuItem("Paneer Tikka", "180.00")
	naan := menuItem("Naan", "40.00")
	c := NewCart().Add(paneer).Add(naan)

	c, err := c.SetQuantity(naan.ID, 3)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if got := c.Quantity(naan.ID); got != 3 {
		t.Errorf("naan quantity: got %d, want 3", got)
	}

	c, err = c.SetQuantity(paneer.ID, 0)
	if err != nil {
		t.Fatalf("set quantity 0: %v", err)
	}
	if c.Len() != 1 || c.Quantity(paneer.ID) != 0 {
		t.Errorf("zero quantity did not remove the line: %+v", c.Lines())
	}

	for _, l := range c.Lines() {
		if l.Quantity < 1 {
			t.Errorf("line %s has quantity %d", l.Name, l.Quantity)
		}
	}
}

func TestCart_SetQuantityErrors(t *testing.T) {
	item := menuItem("Naan", "40.00")
	c := NewCart().Add(item)

	same, err := c.SetQuantity(item.ID, -1)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if same.Quantity(item.ID) != 1 {
		t.Error("rejected update changed the cart")
	}

	if _, err := c.SetQuantity(uuid.New(), 2); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestCart_SetNote(t *testing.T) {
	item := menuItem("Biryani", "260.00")
	c, err := NewCart().Add(item).SetNote(item.ID, "extra spicy")
	if err != nil {
		t.Fatalf("set note: %v", err)
	}
	if got := c.Lines()[0].Note; got != "extra spicy" {
		t.Errorf("note: got %q", got)
	}
	if _, err := c.SetNote(uuid.New(), "x"); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("expected ErrLineNotFound, got %v", err)
	}
}

func TestCart_Total(t *testing.T) {
	paneer := menuItem("Paneer Tikka", "180.00")
	naan := menuItem("Naan", "40.00")
	c := NewCart().Add(paneer).Add(paneer).Add(naan).Add(naan).Add(naan)

	if got := FormatAmount(c.Total()); got != "480.00" {
		t.Errorf("total: got %s, want 480.00", got)
	}
	if !NewCart().Total().IsZero() {
		t.Error("empty cart total should be zero")
	}
}

func TestCart_Checkout(t *testing.T) {
	if _, err := NewCart().Checkout("Asha", "T1"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	item := menuItem("Naan", "40.00")
	draft, err := NewCart().Add(item).Checkout("", "")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if draft.CustomerName != "" || draft.TableNumber != "" {
		t.Errorf("optional fields were filled in: %+v", draft)
	}
	if len(draft.Lines) != 1 || draft.Lines[0].MenuItemID != item.ID {
		t.Errorf("lines: got %+v", draft.Lines)
	}
}
