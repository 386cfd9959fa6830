package pos

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the GST applied to every bill unless configured otherwise.
var DefaultTaxRate = decimal.RequireFromString("0.05")

// displayPlaces is the number of currency minor-unit digits shown on bills.
const displayPlaces = 2

// Bill is the money breakdown of an order. Values are exact and unrounded;
// use Rounded or FormatAmount when showing them.
type Bill struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Gross    decimal.Decimal `json:"gross_total"`
	Payable  decimal.Decimal `json:"payable_total"`
	Refunded decimal.Decimal `json:"refunded_amount"`
}

// Subtotal returns Σ quantity × price over lines.
func Subtotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount())
	}
	return total
}

// CalculateBill computes the bill of an order with the given lines and
// status. A cancelled order pays nothing and reports what would have been
// charged as Refunded.
func CalculateBill(lines []OrderLine, status OrderStatus, taxRate decimal.Decimal) Bill {
	subtotal := Subtotal(lines)
	tax := subtotal.Mul(taxRate)
	gross := subtotal.Add(tax)

	b := Bill{
		Subtotal: subtotal,
		Tax:      tax,
		Gross:    gross,
		Payable:  gross,
		Refunded: decimal.Zero,
	}
	if status == StatusCancelled {
		b.Payable = decimal.Zero
		b.Refunded = gross
	}
	return b
}

// BillFor is CalculateBill over an order value.
func BillFor(o Order, taxRate decimal.Decimal) Bill {
	return CalculateBill(o.Lines, o.Status, taxRate)
}

// Rounded returns b with every amount rounded to minor units.
func (b Bill) Rounded() Bill {
	return Bill{
		Subtotal: b.Subtotal.Round(displayPlaces),
		Tax:      b.Tax.Round(displayPlaces),
		Gross:    b.Gross.Round(displayPlaces),
		Payable:  b.Payable.Round(displayPlaces),
		Refunded: b.Refunded.Round(displayPlaces),
	}
}

// InMinorUnits reports whether d has no digits below the minor unit, so it
// can be stored as a price without rounding.
func InMinorUnits(d decimal.Decimal) bool {
	return d.Equal(d.Round(displayPlaces))
}

// FormatAmount renders d with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(displayPlaces)
}

// VerifyTotal checks the cached total of o against its lines.
func VerifyTotal(o Order) error {
	want := Subtotal(o.Lines)
	if !o.TotalAmount.Equal(want) {
		return fmt.Errorf("%w: cached %s, items %s", ErrTotalMismatch, FormatAmount(o.TotalAmount), FormatAmount(want))
	}
	return nil
}
