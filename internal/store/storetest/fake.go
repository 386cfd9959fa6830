// Package storetest provides an in-memory stand-in for the POS API, applying
// the same order and ticket rules as the server.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tasteparadise/pos/internal/client"
	"github.com/tasteparadise/pos/internal/pos"
)

// Fake implements store.Collaborator in memory. Failures are returned as
// *client.TransportError with the status the API would use.
type Fake struct {
	mu sync.Mutex

	orders  []pos.Order
	tables  []pos.Table
	menu    []pos.MenuItem
	tickets []pos.KitchenTicket

	calls map[string]int
	fail  map[string]error
	clock time.Time
}

// New returns an empty Fake whose clock starts at a fixed instant and ticks
// one second per write.
func New() *Fake {
	return &Fake{
		calls: make(map[string]int),
		fail:  make(map[string]error),
		clock: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

// FailNext makes the next call to op (e.g. "ListOrders") return err.
func (f *Fake) FailNext(op string, err error) {
	f.mu.Lock()
	f.fail[op] = err
	f.mu.Unlock()
}

// Calls returns how many times op was called.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// AddMenuItem seeds a menu item and returns it.
func (f *Fake) AddMenuItem(name, price string) pos.MenuItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft := pos.MenuItemDraft{Name: name, Price: decimal.RequireFromString(price), Category: "Main"}
	item := menuItemFrom(uuid.New(), draft, f.tick())
	f.menu = append(f.menu, item)
	return item
}

// AddTable seeds a table with the given status and returns it.
func (f *Fake) AddTable(number string, status pos.TableStatus) pos.Table {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := pos.Table{ID: uuid.New(), Number: number, Capacity: 4, Status: status, CreatedAt: f.tick()}
	f.tables = append(f.tables, t)
	return t
}

// enter records a call and returns the injected failure, if any. f.mu must be held.
var errPricePrecision = errors.New("price must have at most 2 decimals")

// AddOrder seeds o as stored, filling in missing status fields and
// timestamps. It does not touch any table.
func (f *Fake) AddOrder(o pos.Order) pos.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = pos.StatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = pos.PaymentPending
	}
	o.TotalAmount = pos.Subtotal(o.Lines)
	o.CreatedAt = f.tick()
	o.UpdatedAt = o.CreatedAt
	f.orders = append(f.orders, o)
	return o
}

func (f *Fake) enter(op string) error {
	f.calls[op]++
	if err, ok := f.fail[op]; ok {
		delete(f.fail, op)
		return err
	}
	return nil
}

func (f *Fake) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func apiError(op string, status int, err error) error {
	return &client.TransportError{Op: op, StatusCode: status, Message: err.Error()}
}

// --- Orders ---

func (f *Fake) ListOrders(ctx context.Context) ([]pos.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListOrders"); err != nil {
		return nil, err
	}
	out := slices.Clone(f.orders)
	slices.Reverse(out)
	return out, nil
}

func (f *Fake) CreateOrder(ctx context.Context, draft pos.OrderDraft) (pos.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateOrder"); err != nil {
		return pos.Order{}, err
	}
	if len(draft.Lines) == 0 {
		return pos.Order{}, apiError("create order", http.StatusBadRequest, pos.ErrEmptyCart)
	}
	for _, l := range draft.Lines {
		if !pos.InMinorUnits(l.Price) {
			return pos.Order{}, apiError("create order", http.StatusBadRequest, errPricePrecision)
		}
	}
	now := f.tick()
	o := pos.Order{
		ID:            uuid.New(),
		CustomerName:  draft.CustomerName,
		TableNumber:   draft.TableNumber,
		Lines:         slices.Clone(draft.Lines),
		Status:        pos.StatusPending,
		PaymentStatus: pos.PaymentPending,
		TotalAmount:   pos.Subtotal(draft.Lines),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.orders = append(f.orders, o)
	if i := f.tableIndex(draft.TableNumber); i >= 0 {
		id := o.ID
		f.tables[i].CurrentOrderID = &id
	}
	return o, nil
}

func (f *Fake) UpdateOrder(ctx context.Context, id uuid.UUID, patch pos.OrderPatch) (pos.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateOrder"); err != nil {
		return pos.Order{}, err
	}
	i := slices.IndexFunc(f.orders, func(o pos.Order) bool { return o.ID == id })
	if i < 0 {
		return pos.Order{}, apiError("update order", http.StatusNotFound, errors.New("order not found"))
	}
	next, err := pos.ApplyPatch(f.orders[i], patch)
	if err != nil {
		return pos.Order{}, apiError("update order", http.StatusConflict, err)
	}
	next.UpdatedAt = f.tick()
	f.orders[i] = next
	return next, nil
}

// --- Tables ---

func (f *Fake) tableIndex(number string) int {
	if number == "" {
		return -1
	}
	return slices.IndexFunc(f.tables, func(t pos.Table) bool { return t.Number == number })
}

func (f *Fake) ListTables(ctx context.Context) ([]pos.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListTables"); err != nil {
		return nil, err
	}
	return slices.Clone(f.tables), nil
}

func (f *Fake) CreateTable(ctx context.Context, draft pos.TableDraft) (pos.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateTable"); err != nil {
		return pos.Table{}, err
	}
	if f.tableIndex(draft.Number) >= 0 {
		return pos.Table{}, apiError("create table", http.StatusConflict, errors.New("table number already exists"))
	}
	t := pos.Table{
		ID:        uuid.New(),
		Number:    draft.Number,
		Capacity:  draft.Capacity,
		Status:    pos.TableAvailable,
		PositionX: draft.PositionX,
		PositionY: draft.PositionY,
		CreatedAt: f.tick(),
	}
	f.tables = append(f.tables, t)
	return t, nil
}

func (f *Fake) UpdateTable(ctx context.Context, id uuid.UUID, patch pos.TablePatch) (pos.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateTable"); err != nil {
		return pos.Table{}, err
	}
	i := slices.IndexFunc(f.tables, func(t pos.Table) bool { return t.ID == id })
	if i < 0 {
		return pos.Table{}, apiError("update table", http.StatusNotFound, errors.New("table not found"))
	}
	if patch.Status != nil {
		f.tables[i].Status = *patch.Status
	}
	if patch.CurrentOrderID != nil {
		oid := *patch.CurrentOrderID
		f.tables[i].CurrentOrderID = &oid
	}
	return f.tables[i], nil
}

func (f *Fake) InitializeTables(ctx context.Context) ([]pos.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("InitializeTables"); err != nil {
		return nil, err
	}
	if len(f.tables) > 0 {
		return nil, nil
	}
	for n := 1; n <= 6; n++ {
		f.tables = append(f.tables, pos.Table{
			ID:        uuid.New(),
			Number:    fmt.Sprintf("T%d", n),
			Capacity:  4,
			Status:    pos.TableAvailable,
			CreatedAt: f.tick(),
		})
	}
	return slices.Clone(f.tables), nil
}

func (f *Fake) ClearTable(ctx context.Context, number string) (pos.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ClearTable"); err != nil {
		return pos.Table{}, err
	}
	i := f.tableIndex(number)
	if i < 0 {
		return pos.Table{}, apiError("clear table", http.StatusNotFound, errors.New("table not found"))
	}
	f.tables[i].Status = pos.TableAvailable
	f.tables[i].CurrentOrderID = nil
	return f.tables[i], nil
}

// --- Menu ---

func (f *Fake) ListMenuItems(ctx context.Context) ([]pos.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListMenuItems"); err != nil {
		return nil, err
	}
	return slices.Clone(f.menu), nil
}

func (f *Fake) CreateMenuItem(ctx context.Context, draft pos.MenuItemDraft) (pos.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateMenuItem"); err != nil {
		return pos.MenuItem{}, err
	}
	if !pos.InMinorUnits(draft.Price) {
		return pos.MenuItem{}, apiError("create menu item", http.StatusBadRequest, errPricePrecision)
	}
	item := menuItemFrom(uuid.New(), draft, f.tick())
	f.menu = append(f.menu, item)
	return item, nil
}

func (f *Fake) UpdateMenuItem(ctx context.Context, id uuid.UUID, draft pos.MenuItemDraft) (pos.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateMenuItem"); err != nil {
		return pos.MenuItem{}, err
	}
	if !pos.InMinorUnits(draft.Price) {
		return pos.MenuItem{}, apiError("update menu item", http.StatusBadRequest, errPricePrecision)
	}
	i := slices.IndexFunc(f.menu, func(m pos.MenuItem) bool { return m.ID == id })
	if i < 0 {
		return pos.MenuItem{}, apiError("update menu item", http.StatusNotFound, errors.New("menu item not found"))
	}
	f.menu[i] = menuItemFrom(id, draft, f.menu[i].CreatedAt)
	return f.menu[i], nil
}

func (f *Fake) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteMenuItem"); err != nil {
		return err
	}
	i := slices.IndexFunc(f.menu, func(m pos.MenuItem) bool { return m.ID == id })
	if i < 0 {
		return apiError("delete menu item", http.StatusNotFound, errors.New("menu item not found"))
	}
	f.menu = slices.Delete(f.menu, i, i+1)
	return nil
}

func menuItemFrom(id uuid.UUID, d pos.MenuItemDraft, created time.Time) pos.MenuItem {
	available := true
	if d.IsAvailable != nil {
		available = *d.IsAvailable
	}
	prep := d.PreparationTime
	if prep == 0 {
		prep = pos.DefaultPrepMinutes
	}
	return pos.MenuItem{
		ID:              id,
		Name:            d.Name,
		Description:     d.Description,
		Price:           d.Price,
		Category:        d.Category,
		ImageURL:        d.ImageURL,
		IsAvailable:     available,
		PreparationTime: prep,
		CreatedAt:       created,
	}
}

// --- Kitchen ---

func (f *Fake) ListKitchenTickets(ctx context.Context) ([]pos.KitchenTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListKitchenTickets"); err != nil {
		return nil, err
	}
	out := slices.Clone(f.tickets)
	slices.Reverse(out)
	return out, nil
}

func (f *Fake) CreateKitchenTicket(ctx context.Context, orderID uuid.UUID) (pos.KitchenTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateKitchenTicket"); err != nil {
		return pos.KitchenTicket{}, err
	}
	i := slices.IndexFunc(f.orders, func(o pos.Order) bool { return o.ID == orderID })
	if i < 0 {
		return pos.KitchenTicket{}, apiError("create kitchen ticket", http.StatusNotFound, errors.New("order not found"))
	}
	if err := pos.CanGenerateTicket(f.orders[i]); err != nil {
		return pos.KitchenTicket{}, apiError("create kitchen ticket", http.StatusConflict, err)
	}
	ticket := pos.NewTicket(f.orders[i], len(f.tickets)+1, f.tick())
	f.tickets = append(f.tickets, ticket)
	f.orders[i].KOTGenerated = true
	return ticket, nil
}

func (f *Fake) Dashboard(ctx context.Context) (pos.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Dashboard"); err != nil {
		return pos.DashboardStats{}, err
	}
	return pos.Summarize(f.orders, f.clock), nil
}
