// Package store is the terminal's read model of the POS API. Reads are
// served from a Cache; every successful write clears the whole cache so the
// next read reflects it.
package store

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tasteparadise/pos/internal/pos"
	"github.com/tasteparadise/pos/internal/ws"
)

// Collaborator is the remote API. Every call may fail with a transport
// error. Satisfied by *client.Client.
type Collaborator interface {
	ListOrders(ctx context.Context) ([]pos.Order, error)
	CreateOrder(ctx context.Context, draft pos.OrderDraft) (pos.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, patch pos.OrderPatch) (pos.Order, error)

	ListTables(ctx context.Context) ([]pos.Table, error)
	CreateTable(ctx context.Context, draft pos.TableDraft) (pos.Table, error)
	UpdateTable(ctx context.Context, id uuid.UUID, patch pos.TablePatch) (pos.Table, error)
	InitializeTables(ctx context.Context) ([]pos.Table, error)
	ClearTable(ctx context.Context, number string) (pos.Table, error)

	ListMenuItems(ctx context.Context) ([]pos.MenuItem, error)
	CreateMenuItem(ctx context.Context, draft pos.MenuItemDraft) (pos.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id uuid.UUID, draft pos.MenuItemDraft) (pos.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error

	ListKitchenTickets(ctx context.Context) ([]pos.KitchenTicket, error)
	CreateKitchenTicket(ctx context.Context, orderID uuid.UUID) (pos.KitchenTicket, error)

	Dashboard(ctx context.Context) (pos.DashboardStats, error)
}

// Subscriber delivers server events. Satisfied by *client.Client.
type Subscriber interface {
	Subscribe(ctx context.Context, handle func(ws.Event)) error
}

// Snapshot keys.
const (
	keyOrders  = "orders"
	keyTables  = "tables"
	keyMenu    = "menu"
	keyTickets = "tickets"
)

// Store wraps a Collaborator with a cached read model.
type Store struct {
	api   Collaborator
	cache Cache

	// bypass is set when a Clear failed after a write; reads skip the cache
	// until a later Clear succeeds.
	bypass atomic.Bool
}

// New creates a Store.
func New(api Collaborator, cache Cache) *Store {
	return &Store{api: api, cache: cache}
}

// --- Reads ---

func (s *Store) Orders(ctx context.Context) ([]pos.Order, error) {
	return cached(ctx, s, keyOrders, s.api.ListOrders)
}

func (s *Store) Tables(ctx context.Context) ([]pos.Table, error) {
	return cached(ctx, s, keyTables, s.api.ListTables)
}

func (s *Store) MenuItems(ctx context.Context) ([]pos.MenuItem, error) {
	return cached(ctx, s, keyMenu, s.api.ListMenuItems)
}

func (s *Store) KitchenTickets(ctx context.Context) ([]pos.KitchenTicket, error) {
	return cached(ctx, s, keyTickets, s.api.ListKitchenTickets)
}

// Dashboard is time-dependent and always fetched.
func (s *Store) Dashboard(ctx context.Context) (pos.DashboardStats, error) {
	return s.api.Dashboard(ctx)
}

// --- Writes ---

func (s *Store) CreateOrder(ctx context.Context, draft pos.OrderDraft) (pos.Order, error) {
	return written(ctx, s, func() (pos.Order, error) { return s.api.CreateOrder(ctx, draft) })
}

func (s *Store) UpdateOrder(ctx context.Context, id uuid.UUID, patch pos.OrderPatch) (pos.Order, error) {
	return written(ctx, s, func() (pos.Order, error) { return s.api.UpdateOrder(ctx, id, patch) })
}

func (s *Store) CreateTable(ctx context.Context, draft pos.TableDraft) (pos.Table, error) {
	return written(ctx, s, func() (pos.Table, error) { return s.api.CreateTable(ctx, draft) })
}

func (s *Store) UpdateTable(ctx context.Context, id uuid.UUID, patch pos.TablePatch) (pos.Table, error) {
	return written(ctx, s, func() (pos.Table, error) { return s.api.UpdateTable(ctx, id, patch) })
}

func (s *Store) InitializeTables(ctx context.Context) ([]pos.Table, error) {
	return written(ctx, s, func() ([]pos.Table, error) { return s.api.InitializeTables(ctx) })
}

func (s *Store) ClearTable(ctx context.Context, number string) (pos.Table, error) {
	return written(ctx, s, func() (pos.Table, error) { return s.api.ClearTable(ctx, number) })
}

func (s *Store) CreateMenuItem(ctx context.Context, draft pos.MenuItemDraft) (pos.MenuItem, error) {
	return written(ctx, s, func() (pos.MenuItem, error) { return s.api.CreateMenuItem(ctx, draft) })
}

func (s *Store) UpdateMenuItem(ctx context.Context, id uuid.UUID, draft pos.MenuItemDraft) (pos.MenuItem, error) {
	return written(ctx, s, func() (pos.MenuItem, error) { return s.api.UpdateMenuItem(ctx, id, draft) })
}

func (s *Store) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	_, err := written(ctx, s, func() (struct{}, error) { return struct{}{}, s.api.DeleteMenuItem(ctx, id) })
	return err
}

func (s *Store) CreateKitchenTicket(ctx context.Context, orderID uuid.UUID) (pos.KitchenTicket, error) {
	return written(ctx, s, func() (pos.KitchenTicket, error) { return s.api.CreateKitchenTicket(ctx, orderID) })
}

// Invalidate drops every snapshot. A failed clear switches reads to the API
// until a later Invalidate succeeds.
func (s *Store) Invalidate(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		log.Printf("WARNING: clear cache, reading through until the next clear: %v", err)
		s.bypass.Store(true)
		return
	}
	s.bypass.Store(false)
}

// Watch invalidates the read model on every event another terminal causes,
// then passes the event to then when it is non-nil. It blocks until ctx is
// cancelled or the stream fails.
func (s *Store) Watch(ctx context.Context, sub Subscriber, then func(ws.Event)) error {
	return sub.Subscribe(ctx, func(ev ws.Event) {
		s.Invalidate(ctx)
		if then != nil {
			then(ev)
		}
	})
}

// --- Helpers ---

// cached serves key from the cache, filling it from fetch on a miss. The
// snapshot is only stored if no Invalidate ran while fetch was in flight.
// Cache failures fall back to fetch; fetch failures are returned unchanged.
func cached[T any](ctx context.Context, s *Store, key string, fetch func(context.Context) (T, error)) (T, error) {
	keep := !s.bypass.Load()
	var gen uint64
	if keep {
		data, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("WARNING: cache get %s: %v", key, err)
		}
		if ok {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				return v, nil
			}
			log.Printf("WARNING: discard undecodable %s snapshot", key)
		}
		if gen, err = s.cache.Generation(ctx); err != nil {
			log.Printf("WARNING: cache generation: %v", err)
			keep = false
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}

	if !keep || s.bypass.Load() {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("WARNING: encode %s snapshot: %v", key, err)
		return v, nil
	}
	if _, err := s.cache.Set(ctx, key, data, gen); err != nil {
		log.Printf("WARNING: cache set %s: %v", key, err)
	}
	return v, nil
}

// written runs a write and, when it succeeds, invalidates the read model.
func written[T any](ctx context.Context, s *Store, write func() (T, error)) (T, error) {
	v, err := write()
	if err != nil {
		return v, err
	}
	s.Invalidate(ctx)
	return v, nil
}
