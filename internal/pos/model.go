// Package pos holds the order, table, bill and cart rules of the point of sale.
// Everything here is a pure function over in-memory values: callers fetch
// state from the API, pass it in, and write the result back themselves.
package pos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tasteparadise/pos/internal/enum"
)

// OrderStatus is the kitchen-facing state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = enum.OrderStatusPending
	StatusCooking   OrderStatus = enum.OrderStatusCooking
	StatusReady     OrderStatus = enum.OrderStatusReady
	StatusServed    OrderStatus = enum.OrderStatusServed
	StatusCancelled OrderStatus = enum.OrderStatusCancelled
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCooking, StatusReady, StatusServed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusServed || s == StatusCancelled
}

// PaymentStatus tracks whether an order has been settled.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = enum.PaymentStatusPending
	PaymentPaid    PaymentStatus = enum.PaymentStatusPaid
)

// PaymentMethod is how a paid order was settled.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = enum.PaymentMethodCash
	MethodOnline PaymentMethod = enum.PaymentMethodOnline
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodOnline
}

// TableStatus is the operator-set housekeeping state of a table.
type TableStatus string

const (
	TableAvailable TableStatus = enum.TableStatusAvailable
	TableOccupied  TableStatus = enum.TableStatusOccupied
	TableReserved  TableStatus = enum.TableStatusReserved
	TableCleaning  TableStatus = enum.TableStatusCleaning
)

// Valid reports whether s is one of the known table statuses.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning:
		return true
	}
	return false
}

// KitchenStatus is the derived load indicator shown on the dashboard.
type KitchenStatus string

const (
	KitchenActive  KitchenStatus = enum.KitchenStatusActive
	KitchenBusy    KitchenStatus = enum.KitchenStatusBusy
	KitchenOffline KitchenStatus = enum.KitchenStatusOffline
)

// MenuItem is a dish that can be ordered.
type MenuItem struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category"`
	ImageURL        *string         `json:"image_url"`
	IsAvailable     bool            `json:"is_available"`
	PreparationTime int             `json:"preparation_time"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderLine is one entry of an order. Name and Price are copied from the
// menu item when the line is created and never follow later menu edits.
type OrderLine struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"menu_item_name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Note       string          `json:"special_instructions"`
}

// Amount returns quantity × price for the line.
func (l OrderLine) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a customer order. Orders are never deleted, only cancelled.
type Order struct {
	ID                  uuid.UUID       `json:"id"`
	CustomerName        string          `json:"customer_name"`
	TableNumber         string          `json:"table_number,omitempty"`
	Lines               []OrderLine     `json:"items"`
	Status              OrderStatus     `json:"status"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
	PaymentMethod       PaymentMethod   `json:"payment_method,omitempty"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	KOTGenerated        bool            `json:"kot_generated"`
	EstimatedCompletion *time.Time      `json:"estimated_completion,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// PaymentDue reports whether the order still expects a payment.
// Cancellation voids the expectation without touching the lines.
func (o Order) PaymentDue() bool {
	return o.Status != StatusCancelled && o.PaymentStatus != PaymentPaid
}

// clone returns a copy of o that shares no line storage with it.
func (o Order) clone() Order {
	c := o
	if o.Lines != nil {
		c.Lines = make([]OrderLine, len(o.Lines))
		copy(c.Lines, o.Lines)
	}
	return c
}

// Table is a physical table on the floor plan.
type Table struct {
	ID             uuid.UUID   `json:"id"`
	Number         string      `json:"table_number"`
	Capacity       int         `json:"capacity"`
	Status         TableStatus `json:"status"`
	CurrentOrderID *uuid.UUID  `json:"current_order_id"`
	PositionX      int         `json:"position_x"`
	PositionY      int         `json:"position_y"`
	CreatedAt      time.Time   `json:"created_at"`
}

// TicketItem is a single dish on a kitchen ticket.
type TicketItem struct {
	Name     string `json:"menu_item_name"`
	Quantity int    `json:"quantity"`
}

// KitchenTicket (KOT) is the kitchen copy of an order, generated once.
type KitchenTicket struct {
	ID          uuid.UUID    `json:"id"`
	OrderID     uuid.UUID    `json:"order_id"`
	OrderNumber string       `json:"order_number"`
	TableNumber string       `json:"table_number,omitempty"`
	Items       []TicketItem `json:"items"`
	Status      OrderStatus  `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

// OrderDraft is the payload sent to create an order.
type OrderDraft struct {
	CustomerName string      `json:"customer_name"`
	TableNumber  string      `json:"table_number,omitempty"`
	Lines        []OrderLine `json:"items"`
}

// OrderPatch is a partial order update. Nil fields are left unchanged.
type OrderPatch struct {
	Status        *OrderStatus   `json:"status,omitempty"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
}

// MenuItemDraft is the payload for creating or replacing a menu item.
type MenuItemDraft struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category"`
	ImageURL        *string         `json:"image_url,omitempty"`
	IsAvailable     *bool           `json:"is_available,omitempty"`
	PreparationTime int             `json:"preparation_time"`
}

// TableDraft is the payload for adding a table.
type TableDraft struct {
	Number    string `json:"table_number"`
	Capacity  int    `json:"capacity"`
	PositionX int    `json:"position_x"`
	PositionY int    `json:"position_y"`
}

// TablePatch is a partial table update.
type TablePatch struct {
	Status         *TableStatus `json:"status,omitempty"`
	CurrentOrderID *uuid.UUID   `json:"current_order_id,omitempty"`
}
