package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tasteparadise/pos/internal/database"
	"github.com/tasteparadise/pos/internal/pos"
)

const maxTicketNumberRetries = 3

// Errors returned by the order service.
var (
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrMenuItemUnavailable = errors.New("menu item is not available")
	ErrInvalidPrice        = errors.New("price must be >= 0")
	ErrPricePrecision      = errors.New("price must have at most 2 decimals")
	ErrTableNotFound       = errors.New("table not found")
	ErrOrderNotFound       = errors.New("order not found")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	SetTableCurrentOrder(ctx context.Context, arg database.SetTableCurrentOrderParams) (int64, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderState(ctx context.Context, arg database.UpdateOrderStateParams) (database.Order, error)
	GetNextTicketSequence(ctx context.Context) (int32, error)
	CreateKitchenTicket(ctx context.Context, arg database.CreateKitchenTicketParams) (database.KitchenTicket, error)
	MarkOrderTicketed(ctx context.Context, id uuid.UUID) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// TicketPublisher forwards a generated kitchen ticket to the kitchen.
// Satisfied by *messaging.AMQPPublisher and messaging.Nop.
type TicketPublisher interface {
	PublishTicket(ctx context.Context, ticket pos.KitchenTicket) error
}

// OrderService handles order business logic.
type OrderService struct {
	pool      TxBeginner
	newStore  NewOrderStore
	publisher TicketPublisher
	now       func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, publisher TicketPublisher) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, publisher: publisher, now: time.Now}
}

// CreateOrder validates the draft, stores the order with its lines and, for a
// dine-in order, records it as the table's current order. The table number is
// free text: when no table carries it the order is still created. The table
// status is left as the operator set it.
func (s *OrderService) CreateOrder(ctx context.Context, draft pos.OrderDraft) (pos.Order, error) {
	// --- Validate lines ---
	if len(draft.Lines) == 0 {
		return pos.Order{}, pos.ErrEmptyCart
	}
	for i, l := range draft.Lines {
		if l.Quantity <= 0 {
			return pos.Order{}, fmt.Errorf("item[%d]: %w", i, pos.ErrInvalidQuantity)
		}
		if l.Price.IsNegative() {
			return pos.Order{}, fmt.Errorf("item[%d]: %w", i, ErrInvalidPrice)
		}
		if !pos.InMinorUnits(l.Price) {
			return pos.Order{}, fmt.Errorf("item[%d]: %w", i, ErrPricePrecision)
		}
	}

	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pos.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Check menu items, collect preparation times ---
	prep := make([]int, 0, len(draft.Lines))
	for i, l := range draft.Lines {
		item, err := store.GetMenuItem(ctx, l.MenuItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pos.Order{}, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return pos.Order{}, fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}
		if !item.IsAvailable {
			return pos.Order{}, fmt.Errorf("item[%d]: %w", i, ErrMenuItemUnavailable)
		}
		prep = append(prep, int(item.PreparationTime))
	}

	// --- Insert order ---
	now := s.now()
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		CustomerName:        draft.CustomerName,
		TableNumber:         textOrNull(draft.TableNumber),
		TotalAmount:         DecimalToNumeric(pos.Subtotal(draft.Lines)),
		EstimatedCompletion: timestamptz(pos.EstimateCompletion(now, prep)),
	})
	if err != nil {
		return pos.Order{}, fmt.Errorf("create order: %w", err)
	}

	// --- Insert items ---
	items := make([]database.OrderItem, 0, len(draft.Lines))
	for i, l := range draft.Lines {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:             order.ID,
			Position:            int32(i),
			MenuItemID:          l.MenuItemID,
			MenuItemName:        l.Name,
			Quantity:            int32(l.Quantity),
			Price:               DecimalToNumeric(l.Price),
			SpecialInstructions: l.Note,
		})
		if err != nil {
			return pos.Order{}, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	// --- Attach to table ---
	if draft.TableNumber != "" {
		n, err := store.SetTableCurrentOrder(ctx, database.SetTableCurrentOrderParams{
			TableNumber:    draft.TableNumber,
			CurrentOrderID: pgtype.UUID{Bytes: order.ID, Valid: true},
		})
		if err != nil {
			return pos.Order{}, fmt.Errorf("set table current order: %w", err)
		}
		if n == 0 {
			log.Printf("WARNING: order %s: no table %q on the floor plan, order not attached", order.ID, draft.TableNumber)
		}
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return pos.Order{}, fmt.Errorf("commit tx: %w", err)
	}

	return ToOrder(order, items), nil
}

// UpdateOrder applies a status and/or payment change under a row lock so two
// terminals cannot race the same order through the lifecycle.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, patch pos.OrderPatch) (pos.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pos.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, items, err := loadOrderForUpdate(ctx, store, id)
	if err != nil {
		return pos.Order{}, err
	}

	next, err := pos.ApplyPatch(ToOrder(current, items), patch)
	if err != nil {
		return pos.Order{}, err
	}

	updated, err := store.UpdateOrderState(ctx, database.UpdateOrderStateParams{
		ID:            id,
		Status:        string(next.Status),
		PaymentStatus: string(next.PaymentStatus),
		PaymentMethod: textOrNull(string(next.PaymentMethod)),
	})
	if err != nil {
		return pos.Order{}, fmt.Errorf("update order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return pos.Order{}, fmt.Errorf("commit tx: %w", err)
	}

	return ToOrder(updated, items), nil
}

// GenerateTicket creates the kitchen ticket of an active order, once.
// Retries up to maxTicketNumberRetries times when two terminals draw the same
// ticket number. The ticket is published to the kitchen after commit; a
// publish failure is logged and does not undo the ticket.
func (s *OrderService) GenerateTicket(ctx context.Context, orderID uuid.UUID) (pos.KitchenTicket, error) {
	var lastErr error
	for attempt := 0; attempt < maxTicketNumberRetries; attempt++ {
		ticket, err := s.generateTicketTx(ctx, orderID)
		if err == nil {
			if s.publisher != nil {
				if perr := s.publisher.PublishTicket(ctx, ticket); perr != nil {
					log.Printf("WARNING: publish kitchen ticket %s: %v", ticket.OrderNumber, perr)
				}
			}
			return ticket, nil
		}
		if isTicketNumberConflict(err) {
			lastErr = err
			continue
		}
		return pos.KitchenTicket{}, err
	}
	return pos.KitchenTicket{}, lastErr
}

// isTicketNumberConflict checks if the error is a unique constraint violation
// on the ticket number (pgconn error code 23505).
func isTicketNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "kitchen_tickets_order_number_key"
	}
	return false
}

func (s *OrderService) generateTicketTx(ctx context.Context, orderID uuid.UUID) (pos.KitchenTicket, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pos.KitchenTicket{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	row, items, err := loadOrderForUpdate(ctx, store, orderID)
	if err != nil {
		return pos.KitchenTicket{}, err
	}
	order := ToOrder(row, items)
	if err := pos.CanGenerateTicket(order); err != nil {
		return pos.KitchenTicket{}, err
	}

	seq, err := store.GetNextTicketSequence(ctx)
	if err != nil {
		return pos.KitchenTicket{}, fmt.Errorf("get next ticket number: %w", err)
	}

	draft := pos.NewTicket(order, int(seq), s.now())
	body, err := json.Marshal(draft.Items)
	if err != nil {
		return pos.KitchenTicket{}, fmt.Errorf("encode ticket items: %w", err)
	}

	created, err := store.CreateKitchenTicket(ctx, database.CreateKitchenTicketParams{
		OrderID:     order.ID,
		OrderNumber: draft.OrderNumber,
		TableNumber: textOrNull(draft.TableNumber),
		Items:       body,
		Status:      string(draft.Status),
	})
	if err != nil {
		return pos.KitchenTicket{}, fmt.Errorf("create kitchen ticket: %w", err)
	}

	if _, err := store.MarkOrderTicketed(ctx, order.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pos.KitchenTicket{}, pos.ErrTicketExists
		}
		return pos.KitchenTicket{}, fmt.Errorf("mark order ticketed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return pos.KitchenTicket{}, fmt.Errorf("commit tx: %w", err)
	}

	return ToTicket(created), nil
}

func loadOrderForUpdate(ctx context.Context, store OrderStore, id uuid.UUID) (database.Order, []database.OrderItem, error) {
	row, err := store.GetOrderForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, nil, ErrOrderNotFound
		}
		return database.Order{}, nil, fmt.Errorf("get order: %w", err)
	}
	items, err := store.ListOrderItemsByOrder(ctx, id)
	if err != nil {
		return database.Order{}, nil, fmt.Errorf("list order items: %w", err)
	}
	return row, items, nil
}
