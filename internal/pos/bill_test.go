package pos

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func paneerAndNaan() []OrderLine {
	return []OrderLine{
		{MenuItemID: uuid.New(), Name: "Paneer Tikka", Quantity: 2, Price: dec("180.00")},
		{MenuItemID: uuid.New(), Name: "Naan", Quantity: 3, Price: dec("40.00")},
	}
}

func TestCalculateBill_Scenario(t *testing.T) {
	b := CalculateBill(paneerAndNaan(), StatusServed, DefaultTaxRate)

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"subtotal", b.Subtotal, "480.00"},
		{"tax", b.Tax, "24.00"},
		{"gross", b.Gross, "504.00"},
		{"payable", b.Payable, "504.00"},
		{"refunded", b.Refunded, "0.00"},
	}
	for _, c := range checks {
		if FormatAmount(c.got) != c.want {
			t.Errorf("%s: got %s, want %s", c.name, FormatAmount(c.got), c.want)
		}
	}
}

func TestCalculateBill_Cancelled(t *testing.T) {
	b := CalculateBill(paneerAndNaan(), StatusCancelled, DefaultTaxRate)

	if !b.Payable.IsZero() {
		t.Errorf("payable: got %s, want 0.00", FormatAmount(b.Payable))
	}
	if FormatAmount(b.Refunded) != "504.00" {
		t.Errorf("refunded: got %s, want 504.00", FormatAmount(b.Refunded))
	}
	if !b.Refunded.Equal(b.Gross) {
		t.Errorf("refunded %s should equal gross %s", b.Refunded, b.Gross)
	}
}

func TestCalculateBill_CancelledAlwaysZero(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		lines := randomLines(rng)
		b := CalculateBill(lines, StatusCancelled, DefaultTaxRate)
		if !b.Payable.IsZero() {
			t.Fatalf("run %d: payable %s, want 0", i, b.Payable)
		}
		gross := CalculateBill(lines, StatusPending, DefaultTaxRate).Gross
		if !b.Refunded.Equal(gross) {
			t.Fatalf("run %d: refunded %s, want %s", i, b.Refunded, gross)
		}
		if gross.IsPositive() && b.Refunded.IsZero() {
			t.Fatalf("run %d: refunded is zero for positive gross", i)
		}
	}
}

func TestSubtotal_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		lines := randomLines(rng)

		want := decimal.Zero
		for _, l := range lines {
			want = want.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		shuffled := append([]OrderLine(nil), lines...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		if got := Subtotal(lines); !got.Equal(want) {
			t.Fatalf("run %d: subtotal %s, want %s", i, got, want)
		}
		if got := Subtotal(shuffled); !got.Equal(want) {
			t.Fatalf("run %d: shuffled subtotal %s, want %s", i, got, want)
		}
	}
}

func TestCalculateBill_NoDriftAcrossRepeats(t *testing.T) {
	lines := []OrderLine{{MenuItemID: uuid.New(), Name: "Chai", Quantity: 3, Price: dec("0.10")}}
	first := CalculateBill(lines, StatusPending, DefaultTaxRate)
	for i := 0; i < 1000; i++ {
		if b := CalculateBill(lines, StatusPending, DefaultTaxRate); !b.Gross.Equal(first.Gross) {
			t.Fatalf("iteration %d: gross drifted from %s to %s", i, first.Gross, b.Gross)
		}
	}
	if first.Subtotal.String() != "0.3" {
		t.Errorf("subtotal: got %s, want 0.3", first.Subtotal)
	}
}

func TestBill_RoundedOnlyAtDisplay(t *testing.T) {
	lines := []OrderLine{{MenuItemID: uuid.New(), Name: "Lassi", Quantity: 1, Price: dec("33.33")}}
	b := CalculateBill(lines, StatusPending, DefaultTaxRate)

	if b.Tax.String() != "1.6665" {
		t.Errorf("unrounded tax: got %s, want 1.6665", b.Tax)
	}
	r := b.Rounded()
	if r.Tax.String() != "1.67" {
		t.Errorf("rounded tax: got %s, want 1.67", r.Tax)
	}
	if FormatAmount(b.Gross) != "35.00" {
		t.Errorf("gross display: got %s, want 35.00", FormatAmount(b.Gross))
	}
}

func TestInMinorUnits(t *testing.T) {
	tests := []struct {
		price string
		want  bool
	}{
		{"180", true},
		{"40.5", true},
		{"10.05", true},
		{"10.000", true},
		{"10.005", false},
		{"0.001", false},
	}
	for _, tt := range tests {
		if got := InMinorUnits(dec(tt.price)); got != tt.want {
			t.Errorf("InMinorUnits(%s): got %v, want %v", tt.price, got, tt.want)
		}
	}
}

func TestVerifyTotal(t *testing.T) {
	o := Order{Lines: paneerAndNaan(), TotalAmount: dec("480")}
	if err := VerifyTotal(o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o.TotalAmount = dec("500")
	if err := VerifyTotal(o); !errors.Is(err, ErrTotalMismatch) {
		t.Fatalf("expected ErrTotalMismatch, got %v", err)
	}
}

func randomLines(rng *rand.Rand) []OrderLine {
	n := rng.Intn(8)
	lines := make([]OrderLine, n)
	for i := range lines {
		lines[i] = OrderLine{
			MenuItemID: uuid.New(),
			Name:       "item",
			Quantity:   1 + rng.Intn(9),
			Price:      decimal.New(int64(rng.Intn(100000)), -2),
		}
	}
	return lines
}
