package terminal

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/tasteparadise/pos/internal/pos"
)

const restaurantName = "Taste Paradise"

// Invoice is an order with its computed bill.
type Invoice struct {
	Order   pos.Order
	Bill    pos.Bill
	TaxRate decimal.Decimal
}

// Number is the short invoice reference printed on the receipt.
func (inv Invoice) Number() string {
	id := inv.Order.ID.String()
	return strings.ToUpper(id[len(id)-8:])
}

// Render writes the printable invoice to w. Amounts are rounded here and
// nowhere earlier.
func (inv Invoice) Render(w io.Writer) error {
	o := inv.Order
	b := inv.Bill.Rounded()

	customer := o.CustomerName
	if customer == "" {
		customer = "Walk-in Customer"
	}
	table := o.TableNumber
	if table == "" {
		table = "-"
	}
	method := string(o.PaymentMethod)
	if method == "" {
		method = "-"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", restaurantName)
	fmt.Fprintf(tw, "INVOICE #%s\n", inv.Number())
	fmt.Fprintf(tw, "Date:\t%s\n", o.CreatedAt.Format("02 Jan 2006 15:04"))
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Bill To:\t%s\n", customer)
	fmt.Fprintf(tw, "Table:\t%s\n", table)
	fmt.Fprintf(tw, "Status:\t%s\n", strings.ToUpper(string(o.Status)))
	fmt.Fprintf(tw, "Payment:\t%s\n", strings.ToUpper(string(o.PaymentStatus)))
	fmt.Fprintf(tw, "Method:\t%s\n", strings.ToUpper(method))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Item\tQty\tRate\tAmount")
	for _, l := range o.Lines {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", l.Name, l.Quantity, pos.FormatAmount(l.Price), pos.FormatAmount(l.Amount()))
		if l.Note != "" {
			fmt.Fprintf(tw, "  Note: %s\t\t\t\n", l.Note)
		}
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Subtotal:\t\t\t%s\n", pos.FormatAmount(b.Subtotal))
	fmt.Fprintf(tw, "GST (%s%%):\t\t\t%s\n", inv.TaxRate.Shift(2).String(), pos.FormatAmount(b.Tax))
	if o.Status == pos.StatusCancelled {
		fmt.Fprintf(tw, "Cancellation:\t\t\t-%s\n", pos.FormatAmount(b.Refunded))
		fmt.Fprintf(tw, "Total Amount:\t\t\t%s (REFUNDED)\n", pos.FormatAmount(b.Payable))
	} else {
		fmt.Fprintf(tw, "Total Amount:\t\t\t%s\n", pos.FormatAmount(b.Payable))
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Thank you for dining with us at %s!\n", restaurantName)
	return tw.Flush()
}

func (inv Invoice) String() string {
	var sb strings.Builder
	inv.Render(&sb)
	return sb.String()
}
