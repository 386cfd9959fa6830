// Package terminal implements the order-taking workflow of a POS terminal on
// top of the read model. Local rules from package pos are checked before any
// call leaves the terminal; the API re-checks them on its side.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tasteparadise/pos/internal/pos"
	"github.com/tasteparadise/pos/internal/store"
	"github.com/tasteparadise/pos/internal/ws"
)

var (
	ErrTableNotFound      = errors.New("table not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrAmbiguousOrder     = errors.New("invoice number matches more than one order")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrItemUnavailable    = errors.New("menu item is not available")
	ErrInvalidTableStatus = errors.New("invalid table status")
)

// Service runs terminal workflows. Every mutation goes through the store, so
// the next read after a write sees it.
type Service struct {
	store   *store.Store
	taxRate decimal.Decimal
}

// New creates a Service that bills at taxRate.
func New(st *store.Store, taxRate decimal.Decimal) *Service {
	return &Service{store: st, taxRate: taxRate}
}

// Watch keeps the read model in step with other terminals and reports every
// event to handle. It blocks until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, sub store.Subscriber, handle func(ws.Event)) error {
	return s.store.Watch(ctx, sub, handle)
}

// --- Tables ---

// SelectTable loads the live table and order lists and decides what the
// operator may do at table number. The choice is left to the caller.
func (s *Service) SelectTable(ctx context.Context, number string) (pos.Decision, error) {
	var (
		tables []pos.Table
		orders []pos.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tables, err = s.store.Tables(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.store.Orders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return pos.Decision{}, err
	}

	table, err := findTable(tables, number)
	if err != nil {
		return pos.Decision{}, err
	}
	d := pos.DecideAction(table, orders)
	if d.Inconsistent {
		log.Printf("WARNING: table %s is marked occupied but has no active order", table.Number)
	}
	return d, nil
}

func (s *Service) Tables(ctx context.Context) ([]pos.Table, error) {
	return s.store.Tables(ctx)
}

// SetTableStatus overrides the housekeeping status of a table.
func (s *Service) SetTableStatus(ctx context.Context, number string, status pos.TableStatus) (pos.Table, error) {
	if !status.Valid() {
		return pos.Table{}, fmt.Errorf("%w: %q", ErrInvalidTableStatus, status)
	}
	tables, err := s.store.Tables(ctx)
	if err != nil {
		return pos.Table{}, err
	}
	table, err := findTable(tables, number)
	if err != nil {
		return pos.Table{}, err
	}
	return s.store.UpdateTable(ctx, table.ID, pos.TablePatch{Status: &status})
}

func (s *Service) AddTable(ctx context.Context, draft pos.TableDraft) (pos.Table, error) {
	return s.store.CreateTable(ctx, draft)
}

// ClearTable frees a table for the next guests.
func (s *Service) ClearTable(ctx context.Context, number string) (pos.Table, error) {
	return s.store.ClearTable(ctx, number)
}

// InitializeTables creates the default floor plan when there is none.
func (s *Service) InitializeTables(ctx context.Context) ([]pos.Table, error) {
	return s.store.InitializeTables(ctx)
}

func findTable(tables []pos.Table, number string) (pos.Table, error) {
	for _, t := range tables {
		if strings.EqualFold(t.Number, number) {
			return t, nil
		}
	}
	return pos.Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, number)
}

// --- Cart ---

// Pick is one menu selection, by name or id.
type Pick struct {
	Item     string
	Quantity int
	Note     string
}

// BuildCart resolves picks against the current menu. Repeated picks of the
// same item are merged, the last quantity and note winning.
func (s *Service) BuildCart(ctx context.Context, picks []Pick) (pos.Cart, error) {
	menu, err := s.store.MenuItems(ctx)
	if err != nil {
		return pos.Cart{}, err
	}

	cart := pos.NewCart()
	for _, p := range picks {
		item, err := findMenuItem(menu, p.Item)
		if err != nil {
			return pos.Cart{}, err
		}
		if !item.IsAvailable {
			return pos.Cart{}, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
		}
		cart = cart.Add(item)
		if cart, err = cart.SetQuantity(item.ID, p.Quantity); err != nil {
			return pos.Cart{}, err
		}
		if p.Note != "" && p.Quantity > 0 {
			if cart, err = cart.SetNote(item.ID, p.Note); err != nil {
				return pos.Cart{}, err
			}
		}
	}
	return cart, nil
}

func findMenuItem(menu []pos.MenuItem, ref string) (pos.MenuItem, error) {
	if id, err := uuid.Parse(ref); err == nil {
		for _, m := range menu {
			if m.ID == id {
				return m, nil
			}
		}
	}
	for _, m := range menu {
		if strings.EqualFold(m.Name, ref) {
			return m, nil
		}
	}
	return pos.MenuItem{}, fmt.Errorf("%w: %s", ErrMenuItemNotFound, ref)
}

// SubmitCart checks out cart and creates the order. An empty cart fails
// before anything is sent.
func (s *Service) SubmitCart(ctx context.Context, cart pos.Cart, customerName, tableNumber string) (pos.Order, error) {
	draft, err := cart.Checkout(customerName, tableNumber)
	if err != nil {
		return pos.Order{}, err
	}
	return s.store.CreateOrder(ctx, draft)
}

// --- Orders ---

// Orders lists orders newest first, optionally only those in status.
func (s *Service) Orders(ctx context.Context, status pos.OrderStatus) ([]pos.Order, error) {
	orders, err := s.store.Orders(ctx)
	if err != nil || status == "" {
		return orders, err
	}
	var out []pos.Order
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Service) Order(ctx context.Context, id uuid.UUID) (pos.Order, error) {
	orders, err := s.store.Orders(ctx)
	if err != nil {
		return pos.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return pos.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

// FindOrder resolves ref as an order id or a printed invoice number. An
// invoice number shared by several orders is rejected; use the full id.
func (s *Service) FindOrder(ctx context.Context, ref string) (pos.Order, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.Order(ctx, id)
	}
	orders, err := s.store.Orders(ctx)
	if err != nil {
		return pos.Order{}, err
	}
	ref = strings.ToUpper(strings.TrimPrefix(ref, "#"))
	var matches []pos.Order
	for _, o := range orders {
		if (Invoice{Order: o}).Number() == ref {
			matches = append(matches, o)
		}
	}
	switch len(matches) {
	case 0:
		return pos.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, ref)
	case 1:
		return matches[0], nil
	}
	ids := make([]string, len(matches))
	for i, o := range matches {
		ids[i] = o.ID.String()
	}
	return pos.Order{}, fmt.Errorf("%w: #%s is %s", ErrAmbiguousOrder, ref, strings.Join(ids, ", "))
}

// Advance moves an order to target after checking the transition locally.
func (s *Service) Advance(ctx context.Context, id uuid.UUID, target pos.OrderStatus) (pos.Order, error) {
	o, err := s.Order(ctx, id)
	if err != nil {
		return pos.Order{}, err
	}
	if _, err := pos.ApplyTransition(o, target); err != nil {
		return o, err
	}
	return s.store.UpdateOrder(ctx, id, pos.OrderPatch{Status: &target})
}

// Cancel voids an order that has not reached the pass yet.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (pos.Order, error) {
	return s.Advance(ctx, id, pos.StatusCancelled)
}

// MarkPaid settles an order with method.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, method pos.PaymentMethod) (pos.Order, error) {
	o, err := s.Order(ctx, id)
	if err != nil {
		return pos.Order{}, err
	}
	if _, err := pos.MarkPaid(o, method); err != nil {
		return o, err
	}
	paid := pos.PaymentPaid
	return s.store.UpdateOrder(ctx, id, pos.OrderPatch{PaymentStatus: &paid, PaymentMethod: &method})
}

// Bill computes the invoice of an order from its lines.
func (s *Service) Bill(ctx context.Context, id uuid.UUID) (Invoice, error) {
	o, err := s.Order(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if err := pos.VerifyTotal(o); err != nil {
		log.Printf("WARNING: order %s: %v", o.ID, err)
	}
	return Invoice{Order: o, Bill: pos.BillFor(o, s.taxRate), TaxRate: s.taxRate}, nil
}

// --- Kitchen ---

// GenerateTicket sends an order to the kitchen. Each order gets one ticket.
func (s *Service) GenerateTicket(ctx context.Context, id uuid.UUID) (pos.KitchenTicket, error) {
	o, err := s.Order(ctx, id)
	if err != nil {
		return pos.KitchenTicket{}, err
	}
	if err := pos.CanGenerateTicket(o); err != nil {
		return pos.KitchenTicket{}, err
	}
	return s.store.CreateKitchenTicket(ctx, id)
}

// PendingTickets returns the active orders still waiting for a ticket.
func (s *Service) PendingTickets(ctx context.Context) ([]pos.Order, error) {
	orders, err := s.store.Orders(ctx)
	if err != nil {
		return nil, err
	}
	return pos.NeedsTicket(orders), nil
}

func (s *Service) KitchenTickets(ctx context.Context) ([]pos.KitchenTicket, error) {
	return s.store.KitchenTickets(ctx)
}

// --- Menu ---

func (s *Service) Menu(ctx context.Context) ([]pos.MenuItem, error) {
	return s.store.MenuItems(ctx)
}

func (s *Service) AddMenuItem(ctx context.Context, draft pos.MenuItemDraft) (pos.MenuItem, error) {
	return s.store.CreateMenuItem(ctx, draft)
}

func (s *Service) UpdateMenuItem(ctx context.Context, id uuid.UUID, draft pos.MenuItemDraft) (pos.MenuItem, error) {
	return s.store.UpdateMenuItem(ctx, id, draft)
}

func (s *Service) RemoveMenuItem(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteMenuItem(ctx, id)
}

// Dashboard returns today's figures.
func (s *Service) Dashboard(ctx context.Context) (pos.DashboardStats, error) {
	return s.store.Dashboard(ctx)
}
