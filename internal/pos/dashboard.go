package pos

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats is the summary shown on the dashboard.
type DashboardStats struct {
	TodayOrders     int             `json:"today_orders"`
	TodayRevenue    decimal.Decimal `json:"today_revenue"`
	PendingOrders   int             `json:"pending_orders"`
	CookingOrders   int             `json:"cooking_orders"`
	ReadyOrders     int             `json:"ready_orders"`
	ServedOrders    int             `json:"served_orders"`
	KitchenStatus   KitchenStatus   `json:"kitchen_status"`
	PendingPayments int             `json:"pending_payments"`
}

// Summarize computes dashboard figures from the full order list. "Today" is
// the calendar day of now in now's location. Revenue counts paid orders
// placed today, at their pre-tax total.
func Summarize(orders []Order, now time.Time) DashboardStats {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)
	today := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	s := DashboardStats{TodayRevenue: decimal.Zero}
	for _, o := range orders {
		placedToday := today(o.CreatedAt)
		if placedToday {
			s.TodayOrders++
			if o.PaymentStatus == PaymentPaid {
				s.TodayRevenue = s.TodayRevenue.Add(Subtotal(o.Lines))
			}
		}
		switch o.Status {
		case StatusPending:
			s.PendingOrders++
		case StatusCooking:
			s.CookingOrders++
		case StatusReady:
			s.ReadyOrders++
		case StatusServed:
			if placedToday {
				s.ServedOrders++
			}
		}
		if o.PaymentDue() {
			s.PendingPayments++
		}
	}
	s.KitchenStatus = KitchenLoad(s.CookingOrders, s.PendingOrders)
	return s
}
