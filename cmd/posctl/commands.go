package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tasteparadise/pos/internal/pos"
	"github.com/tasteparadise/pos/internal/terminal"
	"github.com/tasteparadise/pos/internal/ws"
)

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func short(id uuid.UUID) string {
	return (terminal.Invoice{Order: pos.Order{ID: id}}).Number()
}

func printOrders(orders []pos.Order) error {
	tw := newTable()
	fmt.Fprintln(tw, "ORDER\tTABLE\tCUSTOMER\tSTATUS\tPAYMENT\tKOT\tTOTAL\tPLACED")
	for _, o := range orders {
		kot := "no"
		if o.KOTGenerated {
			kot = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			short(o.ID), dash(o.TableNumber), dash(o.CustomerName), o.Status, o.PaymentStatus, kot,
			pos.FormatAmount(o.TotalAmount), o.CreatedAt.Local().Format("15:04"))
	}
	return tw.Flush()
}

func printOrder(o pos.Order) {
	fmt.Printf("Order %s  %s  %s/%s\n", short(o.ID), o.ID, o.Status, o.PaymentStatus)
	if next := pos.NextStatuses(o.Status); len(next) > 0 {
		fmt.Printf("Next: %v\n", next)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// --- Tables ---

func runTables(ctx context.Context, a *app, args []string) error {
	tables, err := a.svc.Tables(ctx)
	if err != nil {
		return err
	}
	tw := newTable()
	fmt.Fprintln(tw, "TABLE\tCAPACITY\tSTATUS\tCURRENT ORDER")
	for _, t := range tables {
		current := "-"
		if t.CurrentOrderID != nil {
			current = short(*t.CurrentOrderID)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", t.Number, t.Capacity, t.Status, current)
	}
	return tw.Flush()
}

var choiceNames = map[string]pos.Action{
	"start": pos.ActionStartNewOrder,
	"bill":  pos.ActionGenerateBillForLatest,
	"view":  pos.ActionViewOrders,
}

func runTable(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("table", flag.ExitOnError)
	choose := fs.String("choose", "", "Action to take: start, bill or view")
	if len(args) == 0 {
		return wantArgs(args, 1, commands["table"].usage)
	}
	number := args[0]
	fs.Parse(args[1:])

	d, err := a.svc.SelectTable(ctx, number)
	if err != nil {
		return err
	}
	fmt.Printf("Table %s (%s), %d active order(s)\n", d.Table.Number, d.Table.Status, len(d.Active))
	if d.Inconsistent {
		fmt.Println("Marked occupied but no active order references it.")
	}
	if *choose == "" {
		names := make([]string, len(d.Choices))
		for i, c := range d.Choices {
			names[i] = c.String()
		}
		fmt.Printf("Choose one of: %s\n", strings.Join(names, ", "))
		return nil
	}

	choice, ok := choiceNames[*choose]
	if !ok {
		return fmt.Errorf("unknown action %q", *choose)
	}
	action, err := d.Resolve(choice)
	if err != nil {
		return err
	}
	switch action {
	case pos.ActionGenerateBillForLatest:
		inv, err := a.svc.Bill(ctx, d.Latest.ID)
		if err != nil {
			return err
		}
		return inv.Render(os.Stdout)
	case pos.ActionViewOrders:
		return printOrders(d.Active)
	default:
		fmt.Printf("Start a new order with: posctl order -table %s item[:qty[:note]]...\n", d.Table.Number)
		return nil
	}
}

func runTableStatus(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 2, commands["table-status"].usage); err != nil {
		return err
	}
	t, err := a.svc.SetTableStatus(ctx, args[0], pos.TableStatus(args[1]))
	if err != nil {
		return err
	}
	fmt.Printf("Table %s is now %s\n", t.Number, t.Status)
	return nil
}

func runTableAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("table-add", flag.ExitOnError)
	number := fs.String("number", "", "Table number, e.g. T7")
	capacity := fs.Int("capacity", 4, "Seats")
	x := fs.Int("x", 0, "Floor plan X position")
	y := fs.Int("y", 0, "Floor plan Y position")
	fs.Parse(args)
	if *number == "" {
		return fmt.Errorf("usage: posctl %s", commands["table-add"].usage)
	}
	t, err := a.svc.AddTable(ctx, pos.TableDraft{Number: *number, Capacity: *capacity, PositionX: *x, PositionY: *y})
	if err != nil {
		return err
	}
	fmt.Printf("Added table %s (%d seats)\n", t.Number, t.Capacity)
	return nil
}

func runClear(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, commands["clear"].usage); err != nil {
		return err
	}
	t, err := a.svc.ClearTable(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Table %s cleared\n", t.Number)
	return nil
}

func runInitTables(ctx context.Context, a *app, args []string) error {
	created, err := a.svc.InitializeTables(ctx)
	if err != nil {
		return err
	}
	if len(created) == 0 {
		fmt.Println("Tables already exist")
		return nil
	}
	fmt.Printf("Created %d tables\n", len(created))
	return nil
}

// --- Orders ---

func runOrder(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	table := fs.String("table", "", "Table number")
	customer := fs.String("customer", "", "Customer name")
	fs.Parse(args)

	picks := make([]terminal.Pick, 0, fs.NArg())
	for _, arg := range fs.Args() {
		p, err := parsePick(arg)
		if err != nil {
			return err
		}
		picks = append(picks, p)
	}
	cart, err := a.svc.BuildCart(ctx, picks)
	if err != nil {
		return err
	}
	order, err := a.svc.SubmitCart(ctx, cart, *customer, *table)
	if err != nil {
		return err
	}
	printOrder(order)
	fmt.Printf("Total %s before tax\n", pos.FormatAmount(order.TotalAmount))
	return nil
}

func runOrders(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	status := fs.String("status", "", "Only orders in this status")
	fs.Parse(args)
	if *status != "" && !pos.OrderStatus(*status).Valid() {
		return fmt.Errorf("invalid status %q", *status)
	}
	orders, err := a.svc.Orders(ctx, pos.OrderStatus(*status))
	if err != nil {
		return err
	}
	return printOrders(orders)
}

func runAdvance(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 2, commands["advance"].usage); err != nil {
		return err
	}
	o, err := a.svc.FindOrder(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := a.svc.Advance(ctx, o.ID, pos.OrderStatus(args[1]))
	if err != nil {
		return err
	}
	printOrder(updated)
	return nil
}

func runCancel(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, commands["cancel"].usage); err != nil {
		return err
	}
	o, err := a.svc.FindOrder(ctx, args[0])
	if err != nil {
		return err
	}
	cancelled, err := a.svc.Cancel(ctx, o.ID)
	if err != nil {
		return err
	}
	printOrder(cancelled)
	return nil
}

func runPay(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 2, commands["pay"].usage); err != nil {
		return err
	}
	o, err := a.svc.FindOrder(ctx, args[0])
	if err != nil {
		return err
	}
	paid, err := a.svc.MarkPaid(ctx, o.ID, pos.PaymentMethod(args[1]))
	if err != nil {
		return err
	}
	printOrder(paid)
	return nil
}

func runBill(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, commands["bill"].usage); err != nil {
		return err
	}
	o, err := a.svc.FindOrder(ctx, args[0])
	if err != nil {
		return err
	}
	inv, err := a.svc.Bill(ctx, o.ID)
	if err != nil {
		return err
	}
	return inv.Render(os.Stdout)
}

// --- Kitchen ---

func runKOT(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, commands["kot"].usage); err != nil {
		return err
	}
	o, err := a.svc.FindOrder(ctx, args[0])
	if err != nil {
		return err
	}
	ticket, err := a.svc.GenerateTicket(ctx, o.ID)
	if err != nil {
		return err
	}
	fmt.Printf("%s  table %s\n", ticket.OrderNumber, dash(ticket.TableNumber))
	for _, item := range ticket.Items {
		fmt.Printf("  %d x %s\n", item.Quantity, item.Name)
	}
	return nil
}

func runKOTs(ctx context.Context, a *app, args []string) error {
	tickets, err := a.svc.KitchenTickets(ctx)
	if err != nil {
		return err
	}
	tw := newTable()
	fmt.Fprintln(tw, "KOT\tTABLE\tITEMS\tCREATED")
	for _, t := range tickets {
		items := make([]string, len(t.Items))
		for i, item := range t.Items {
			items[i] = fmt.Sprintf("%d x %s", item.Quantity, item.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.OrderNumber, dash(t.TableNumber), strings.Join(items, ", "), t.CreatedAt.Local().Format("15:04"))
	}
	return tw.Flush()
}

func runPending(ctx context.Context, a *app, args []string) error {
	orders, err := a.svc.PendingTickets(ctx)
	if err != nil {
		return err
	}
	return printOrders(orders)
}

// --- Menu ---

func runMenu(ctx context.Context, a *app, args []string) error {
	items, err := a.svc.Menu(ctx)
	if err != nil {
		return err
	}
	tw := newTable()
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tPREP\tAVAILABLE")
	for _, m := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%dm\t%v\n", m.ID, m.Name, m.Category, pos.FormatAmount(m.Price), m.PreparationTime, m.IsAvailable)
	}
	return tw.Flush()
}

func runMenuAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("menu-add", flag.ExitOnError)
	name := fs.String("name", "", "Dish name")
	price := fs.String("price", "", "Price, e.g. 180.00")
	category := fs.String("category", "Mains", "Menu category")
	description := fs.String("description", "", "Short description")
	prep := fs.Int("prep", pos.DefaultPrepMinutes, "Preparation time in minutes")
	fs.Parse(args)
	if *name == "" || *price == "" {
		return fmt.Errorf("usage: posctl %s", commands["menu-add"].usage)
	}
	p, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("invalid price %q", *price)
	}
	item, err := a.svc.AddMenuItem(ctx, pos.MenuItemDraft{
		Name:            *name,
		Description:     *description,
		Price:           p,
		Category:        *category,
		PreparationTime: *prep,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added %s (%s)\n", item.Name, item.ID)
	return nil
}

func runMenuRemove(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, commands["menu-rm"].usage); err != nil {
		return err
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid menu item id %q", args[0])
	}
	if err := a.svc.RemoveMenuItem(ctx, id); err != nil {
		return err
	}
	fmt.Println("Menu item removed")
	return nil
}

// --- Dashboard ---

func runDashboard(ctx context.Context, a *app, args []string) error {
	s, err := a.svc.Dashboard(ctx)
	if err != nil {
		return err
	}
	tw := newTable()
	fmt.Fprintf(tw, "Today's orders\t%d\n", s.TodayOrders)
	fmt.Fprintf(tw, "Today's revenue\t%s\n", pos.FormatAmount(s.TodayRevenue))
	fmt.Fprintf(tw, "Pending\t%d\n", s.PendingOrders)
	fmt.Fprintf(tw, "Cooking\t%d\n", s.CookingOrders)
	fmt.Fprintf(tw, "Ready\t%d\n", s.ReadyOrders)
	fmt.Fprintf(tw, "Served today\t%d\n", s.ServedOrders)
	fmt.Fprintf(tw, "Pending payments\t%d\n", s.PendingPayments)
	fmt.Fprintf(tw, "Kitchen\t%s\n", s.KitchenStatus)
	return tw.Flush()
}

// runWatch prints live events until interrupted.
func runWatch(ctx context.Context, a *app, args []string) error {
	fmt.Println("Watching for updates, Ctrl-C to stop")
	return a.svc.Watch(ctx, a.api, func(ev ws.Event) {
		fmt.Printf("%s  %s  %s\n", time.Now().Format("15:04:05"), ev.Type, ev.Payload)
	})
}
