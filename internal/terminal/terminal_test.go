package terminal_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tasteparadise/pos/internal/client"
	"github.com/tasteparadise/pos/internal/pos"
	"github.com/tasteparadise/pos/internal/store"
	"github.com/tasteparadise/pos/internal/store/storetest"
	"github.com/tasteparadise/pos/internal/terminal"
)

func setup(t *testing.T) (*terminal.Service, *storetest.Fake) {
	t.Helper()
	api := storetest.New()
	api.AddMenuItem("Paneer Tikka", "180.00")
	api.AddMenuItem("Naan", "40.00")
	api.AddTable("T1", pos.TableAvailable)
	api.AddTable("T2", pos.TableAvailable)
	return terminal.New(store.New(api, store.NewMemoryCache()), pos.DefaultTaxRate), api
}

// placeOrder submits Paneer Tikka ×2 and Naan ×3 (480.00 before tax) on table.
func placeOrder(t *testing.T, svc *terminal.Service, table string) pos.Order {
	t.Helper()
	ctx := context.Background()
	cart, err := svc.BuildCart(ctx, []terminal.Pick{
		{Item: "Paneer Tikka", Quantity: 2, Note: "extra spicy"},
		{Item: "naan", Quantity: 3},
	})
	if err != nil {
		t.Fatalf("build cart: %v", err)
	}
	order, err := svc.SubmitCart(ctx, cart, "", table)
	if err != nil {
		t.Fatalf("submit cart: %v", err)
	}
	return order
}

func assertAmount(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: got %s, want %s", name, got, want)
	}
}

func TestSelectTable_NoActiveOrders(t *testing.T) {
	svc, _ := setup(t)

	d, err := svc.SelectTable(context.Background(), "T1")
	if err != nil {
		t.Fatalf("select table: %v", err)
	}
	if len(d.Choices) != 1 || d.Choices[0] != pos.ActionStartNewOrder {
		t.Fatalf("choices: got %v, want [start-new-order]", d.Choices)
	}
	if d.Latest != nil {
		t.Errorf("latest: got %+v, want nil", d.Latest)
	}
	if _, err := d.Resolve(pos.ActionGenerateBillForLatest); !errors.Is(err, pos.ErrInvalidChoice) {
		t.Errorf("resolve generate-bill: got %v, want ErrInvalidChoice", err)
	}
}

func TestSelectTable_SeesOwnWrite(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	// Warm the cache before the write.
	if _, err := svc.SelectTable(ctx, "T1"); err != nil {
		t.Fatalf("select table: %v", err)
	}
	first := placeOrder(t, svc, "T1")
	second := placeOrder(t, svc, "T1")

	d, err := svc.SelectTable(ctx, "t1")
	if err != nil {
		t.Fatalf("select table: %v", err)
	}
	if len(d.Choices) != 2 || d.Choices[0] != pos.ActionGenerateBillForLatest || d.Choices[1] != pos.ActionViewOrders {
		t.Fatalf("choices: got %v", d.Choices)
	}
	if d.Latest == nil || d.Latest.ID != second.ID {
		t.Fatalf("latest: got %v, want %s", d.Latest, second.ID)
	}
	if len(d.Active) != 2 || d.Active[1].ID != first.ID {
		t.Errorf("active: got %d orders, want both newest first", len(d.Active))
	}

	// The table status is an operator setting and stays untouched.
	if d.Table.Status != pos.TableAvailable {
		t.Errorf("table status: got %s, want available", d.Table.Status)
	}
	if d.Inconsistent {
		t.Error("decision flagged inconsistent")
	}
}

func TestSelectTable_OccupiedWithoutOrders(t *testing.T) {
	svc, api := setup(t)
	api.AddTable("T9", pos.TableOccupied)

	d, err := svc.SelectTable(context.Background(), "T9")
	if err != nil {
		t.Fatalf("select table: %v", err)
	}
	if !d.Inconsistent {
		t.Error("expected inconsistent decision")
	}
	if len(d.Choices) != 1 || d.Choices[0] != pos.ActionStartNewOrder {
		t.Errorf("choices: got %v, want [start-new-order]", d.Choices)
	}
}

func TestSelectTable_UnknownTable(t *testing.T) {
	svc, _ := setup(t)

	if _, err := svc.SelectTable(context.Background(), "T42"); !errors.Is(err, terminal.ErrTableNotFound) {
		t.Errorf("unknown table: got %v, want ErrTableNotFound", err)
	}
}

func TestSelectTable_TransportError(t *testing.T) {
	svc, api := setup(t)

	api.FailNext("ListOrders", &client.TransportError{Op: "list orders", Err: errors.New("connection refused")})
	_, err := svc.SelectTable(context.Background(), "T1")
	var te *client.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("transport failure: got %v, want TransportError", err)
	}

	// The failure is not cached: the next selection fetches again.
	if _, err := svc.SelectTable(context.Background(), "T1"); err != nil {
		t.Fatalf("select after failure: %v", err)
	}
	if n := api.Calls("ListOrders"); n != 2 {
		t.Errorf("ListOrders calls: got %d, want 2", n)
	}
}

func TestSelectTable_ServedFromCache(t *testing.T) {
	svc, api := setup(t)
	ctx := context.Background()

	if _, err := svc.SelectTable(ctx, "T1"); err != nil {
		t.Fatalf("select table: %v", err)
	}

	// With a warm snapshot and no write since, the API is not asked again,
	// so a failure armed now stays pending.
	api.FailNext("ListOrders", &client.TransportError{Op: "list orders", Err: errors.New("connection refused")})
	if _, err := svc.SelectTable(ctx, "T1"); err != nil {
		t.Fatalf("cached select: %v", err)
	}
	if n := api.Calls("ListOrders"); n != 1 {
		t.Errorf("ListOrders calls: got %d, want 1", n)
	}

	// After a write the snapshot is gone and the failure reaches the caller.
	placeOrder(t, svc, "T2")
	_, err := svc.SelectTable(ctx, "T1")
	var te *client.TransportError
	if !errors.As(err, &te) {
		t.Errorf("after write: got %v, want TransportError", err)
	}
}

func TestSubmitCart_EmptyCartSendsNothing(t *testing.T) {
	svc, api := setup(t)

	_, err := svc.SubmitCart(context.Background(), pos.NewCart(), "Asha", "T1")
	if !errors.Is(err, pos.ErrEmptyCart) {
		t.Fatalf("got %v, want ErrEmptyCart", err)
	}
	if n := api.Calls("CreateOrder"); n != 0 {
		t.Errorf("CreateOrder calls: got %d, want 0", n)
	}
}

func TestBuildCart(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	unavailable := false
	soup, err := svc.AddMenuItem(ctx, pos.MenuItemDraft{Name: "Soup", Price: decimal.NewFromInt(90), IsAvailable: &unavailable})
	if err != nil {
		t.Fatalf("add menu item: %v", err)
	}

	tests := []struct {
		name  string
		picks []terminal.Pick
		want  error
	}{
		{"unknown item", []terminal.Pick{{Item: "Biryani", Quantity: 1}}, terminal.ErrMenuItemNotFound},
		{"unavailable by id", []terminal.Pick{{Item: soup.ID.String(), Quantity: 1}}, terminal.ErrItemUnavailable},
		{"negative quantity", []terminal.Pick{{Item: "Naan", Quantity: -1}}, pos.ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.BuildCart(ctx, tt.picks); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	cart, err := svc.BuildCart(ctx, []terminal.Pick{
		{Item: "Naan", Quantity: 1},
		{Item: "Paneer Tikka", Quantity: 2},
		{Item: "Naan", Quantity: 3},
	})
	if err != nil {
		t.Fatalf("build cart: %v", err)
	}
	if cart.Len() != 2 {
		t.Fatalf("lines: got %d, want 2", cart.Len())
	}
	assertAmount(t, "total", cart.Total(), "480")
}

func TestAdvance_FullLifecycle(t *testing.T) {
	svc, api := setup(t)
	ctx := context.Background()
	order := placeOrder(t, svc, "T1")

	for _, next := range []pos.OrderStatus{pos.StatusCooking, pos.StatusReady, pos.StatusServed} {
		updated, err := svc.Advance(ctx, order.ID, next)
		if err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("status: got %s, want %s", updated.Status, next)
		}
	}

	_, err := svc.Advance(ctx, order.ID, pos.StatusPending)
	if !errors.Is(err, pos.ErrInvalidTransition) {
		t.Fatalf("served -> pending: got %v, want ErrInvalidTransition", err)
	}
	if n := api.Calls("UpdateOrder"); n != 3 {
		t.Errorf("UpdateOrder calls: got %d, want 3", n)
	}

	got, err := svc.Order(ctx, order.ID)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if got.Status != pos.StatusServed {
		t.Errorf("status after rejected transition: got %s, want served", got.Status)
	}
}

func TestCancel(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	ready := placeOrder(t, svc, "T1")
	svc.Advance(ctx, ready.ID, pos.StatusCooking)
	svc.Advance(ctx, ready.ID, pos.StatusReady)
	if _, err := svc.Cancel(ctx, ready.ID); !errors.Is(err, pos.ErrInvalidTransition) {
		t.Errorf("cancel ready order: got %v, want ErrInvalidTransition", err)
	}

	order := placeOrder(t, svc, "T2")
	cancelled, err := svc.Cancel(ctx, order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != pos.StatusCancelled || len(cancelled.Lines) != 2 {
		t.Fatalf("cancelled order: got status %s with %d lines", cancelled.Status, len(cancelled.Lines))
	}

	inv, err := svc.Bill(ctx, order.ID)
	if err != nil {
		t.Fatalf("bill: %v", err)
	}
	assertAmount(t, "payable", inv.Bill.Payable, "0")
	assertAmount(t, "refunded", inv.Bill.Refunded, "504")

	text := inv.String()
	for _, want := range []string{"CANCELLED", "-504.00", "0.00 (REFUNDED)"} {
		if !strings.Contains(text, want) {
			t.Errorf("invoice missing %q:\n%s", want, text)
		}
	}
}

func TestMarkPaid(t *testing.T) {
	svc, api := setup(t)
	ctx := context.Background()
	order := placeOrder(t, svc, "T1")

	if _, err := svc.MarkPaid(ctx, order.ID, pos.PaymentMethod("card")); !errors.Is(err, pos.ErrInvalidPaymentMethod) {
		t.Errorf("card: got %v, want ErrInvalidPaymentMethod", err)
	}

	paid, err := svc.MarkPaid(ctx, order.ID, pos.MethodCash)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.PaymentStatus != pos.PaymentPaid || paid.PaymentMethod != pos.MethodCash {
		t.Errorf("payment: got %s/%s", paid.PaymentStatus, paid.PaymentMethod)
	}
	if paid.Status != pos.StatusPending {
		t.Errorf("kitchen status changed by payment: got %s", paid.Status)
	}

	if _, err := svc.MarkPaid(ctx, order.ID, pos.MethodOnline); !errors.Is(err, pos.ErrAlreadyPaid) {
		t.Errorf("second payment: got %v, want ErrAlreadyPaid", err)
	}

	other := placeOrder(t, svc, "T2")
	svc.Cancel(ctx, other.ID)
	if _, err := svc.MarkPaid(ctx, other.ID, pos.MethodCash); !errors.Is(err, pos.ErrPaymentClosed) {
		t.Errorf("cancelled order: got %v, want ErrPaymentClosed", err)
	}
	if n := api.Calls("UpdateOrder"); n != 2 {
		t.Errorf("UpdateOrder calls: got %d, want 2 (payment + cancel)", n)
	}
}

func TestBill(t *testing.T) {
	svc, _ := setup(t)
	order := placeOrder(t, svc, "T1")

	inv, err := svc.Bill(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("bill: %v", err)
	}
	assertAmount(t, "subtotal", inv.Bill.Subtotal, "480")
	assertAmount(t, "tax", inv.Bill.Tax, "24")
	assertAmount(t, "payable", inv.Bill.Payable, "504")
	assertAmount(t, "refunded", inv.Bill.Refunded, "0")

	text := inv.String()
	for _, want := range []string{
		"Taste Paradise",
		"INVOICE #" + inv.Number(),
		"Walk-in Customer",
		"Note: extra spicy",
		"GST (5%)",
		"504.00",
		"Thank you for dining with us at Taste Paradise!",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("invoice missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "REFUNDED") {
		t.Errorf("active order invoice shows a refund:\n%s", text)
	}

	if _, err := svc.Bill(context.Background(), uuid.New()); !errors.Is(err, terminal.ErrOrderNotFound) {
		t.Errorf("unknown order: got %v, want ErrOrderNotFound", err)
	}
}

func TestGenerateTicket(t *testing.T) {
	svc, api := setup(t)
	ctx := context.Background()
	order := placeOrder(t, svc, "T1")

	pending, err := svc.PendingTickets(ctx)
	if err != nil {
		t.Fatalf("pending tickets: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != order.ID {
		t.Fatalf("pending: got %d orders, want the new order", len(pending))
	}

	ticket, err := svc.GenerateTicket(ctx, order.ID)
	if err != nil {
		t.Fatalf("generate ticket: %v", err)
	}
	if ticket.OrderNumber != "ORD-0001" || len(ticket.Items) != 2 {
		t.Errorf("ticket: got %s with %d items", ticket.OrderNumber, len(ticket.Items))
	}

	if _, err := svc.GenerateTicket(ctx, order.ID); !errors.Is(err, pos.ErrTicketExists) {
		t.Errorf("second ticket: got %v, want ErrTicketExists", err)
	}
	if n := api.Calls("CreateKitchenTicket"); n != 1 {
		t.Errorf("CreateKitchenTicket calls: got %d, want 1", n)
	}

	pending, _ = svc.PendingTickets(ctx)
	if len(pending) != 0 {
		t.Errorf("pending after ticket: got %d, want 0", len(pending))
	}
	tickets, _ := svc.KitchenTickets(ctx)
	if len(tickets) != 1 {
		t.Errorf("tickets: got %d, want 1", len(tickets))
	}
}

func TestSetTableStatus(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.SetTableStatus(ctx, "T1", pos.TableStatus("dirty")); !errors.Is(err, terminal.ErrInvalidTableStatus) {
		t.Errorf("invalid status: got %v, want ErrInvalidTableStatus", err)
	}
	if _, err := svc.SetTableStatus(ctx, "T7", pos.TableCleaning); !errors.Is(err, terminal.ErrTableNotFound) {
		t.Errorf("unknown table: got %v, want ErrTableNotFound", err)
	}

	if _, err := svc.SetTableStatus(ctx, "T1", pos.TableCleaning); err != nil {
		t.Fatalf("set status: %v", err)
	}
	d, _ := svc.SelectTable(ctx, "T1")
	if d.Table.Status != pos.TableCleaning {
		t.Errorf("status: got %s, want cleaning", d.Table.Status)
	}

	placeOrder(t, svc, "T1")
	cleared, err := svc.ClearTable(ctx, "T1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.Status != pos.TableAvailable || cleared.CurrentOrderID != nil {
		t.Errorf("cleared: got %s with order %v", cleared.Status, cleared.CurrentOrderID)
	}
}

func TestMenu(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	item, err := svc.AddMenuItem(ctx, pos.MenuItemDraft{Name: "Lassi", Price: decimal.RequireFromString("60"), Category: "Drinks"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !item.IsAvailable || item.PreparationTime != pos.DefaultPrepMinutes {
		t.Errorf("defaults: available=%v prep=%d", item.IsAvailable, item.PreparationTime)
	}

	updated, err := svc.UpdateMenuItem(ctx, item.ID, pos.MenuItemDraft{Name: "Mango Lassi", Price: decimal.RequireFromString("70"), Category: "Drinks"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertAmount(t, "price", updated.Price, "70")

	if err := svc.RemoveMenuItem(ctx, item.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	menu, _ := svc.Menu(ctx)
	for _, m := range menu {
		if m.ID == item.ID {
			t.Error("removed item still listed")
		}
	}
}

func TestDashboard(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	order := placeOrder(t, svc, "T1")
	svc.MarkPaid(ctx, order.ID, pos.MethodOnline)
	placeOrder(t, svc, "T2")

	stats, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.TodayOrders != 2 || stats.PendingOrders != 2 || stats.PendingPayments != 1 {
		t.Errorf("stats: got %+v", stats)
	}
	assertAmount(t, "revenue", stats.TodayRevenue, "480")
	if stats.KitchenStatus != pos.KitchenActive {
		t.Errorf("kitchen: got %s, want active", stats.KitchenStatus)
	}
}

func TestInitializeTables(t *testing.T) {
	api := storetest.New()
	svc := terminal.New(store.New(api, store.NewMemoryCache()), pos.DefaultTaxRate)
	ctx := context.Background()

	created, err := svc.InitializeTables(ctx)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if len(created) != 6 {
		t.Fatalf("created: got %d, want 6", len(created))
	}
	again, _ := svc.InitializeTables(ctx)
	if len(again) != 0 {
		t.Errorf("second initialize: got %d, want 0", len(again))
	}
	tables, _ := svc.Tables(ctx)
	if len(tables) != 6 {
		t.Errorf("tables: got %d, want 6", len(tables))
	}
}

func TestFindOrder(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	order := placeOrder(t, svc, "T1")
	inv, _ := svc.Bill(ctx, order.ID)

	for _, ref := range []string{order.ID.String(), inv.Number(), "#" + strings.ToLower(inv.Number())} {
		got, err := svc.FindOrder(ctx, ref)
		if err != nil {
			t.Fatalf("find %q: %v", ref, err)
		}
		if got.ID != order.ID {
			t.Errorf("find %q: got %s, want %s", ref, got.ID, order.ID)
		}
	}
	if _, err := svc.FindOrder(ctx, "NOPE1234"); !errors.Is(err, terminal.ErrOrderNotFound) {
		t.Errorf("unknown ref: got %v, want ErrOrderNotFound", err)
	}
}

func TestFindOrder_SharedInvoiceNumber(t *testing.T) {
	svc, api := setup(t)
	ctx := context.Background()
	first := api.AddOrder(pos.Order{ID: uuid.MustParse("0b7e5a10-0000-4000-8000-00003f9a21c0")})
	second := api.AddOrder(pos.Order{ID: uuid.MustParse("9d41c2e7-1111-4000-8000-00003f9a21c0")})

	_, err := svc.FindOrder(ctx, "#3f9a21c0")
	if !errors.Is(err, terminal.ErrAmbiguousOrder) {
		t.Fatalf("shared number: got %v, want ErrAmbiguousOrder", err)
	}
	for _, o := range []pos.Order{first, second} {
		if !strings.Contains(err.Error(), o.ID.String()) {
			t.Errorf("error %q does not list %s", err, o.ID)
		}
		got, err := svc.FindOrder(ctx, o.ID.String())
		if err != nil || got.ID != o.ID {
			t.Errorf("find by id %s: got %s, %v", o.ID, got.ID, err)
		}
	}
}
