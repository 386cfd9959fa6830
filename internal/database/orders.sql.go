// source: orders.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (customer_name, table_number, total_amount, estimated_completion)
VALUES ($1, $2, $3, $4)
RETURNING id, customer_name, table_number, status, payment_status, payment_method, total_amount, kot_generated, estimated_completion, created_at, updated_at
`

type CreateOrderParams struct {
	CustomerName        string             `json:"customer_name"`
	TableNumber         pgtype.Text        `json:"table_number"`
	TotalAmount         pgtype.Numeric     `json:"total_amount"`
	EstimatedCompletion pgtype.Timestamptz `json:"estimated_completion"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.CustomerName,
		arg.TableNumber,
		arg.TotalAmount,
		arg.EstimatedCompletion,
	)
	return scanOrder(row)
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, position, menu_item_id, menu_item_name, quantity, price, special_instructions)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, position, menu_item_id, menu_item_name, quantity, price, special_instructions
`

type CreateOrderItemParams struct {
	OrderID             uuid.UUID      `json:"order_id"`
	Position            int32          `json:"position"`
	MenuItemID          uuid.UUID      `json:"menu_item_id"`
	MenuItemName        string         `json:"menu_item_name"`
	Quantity            int32          `json:"quantity"`
	Price               pgtype.Numeric `json:"price"`
	SpecialInstructions string         `json:"special_instructions"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.Position,
		arg.MenuItemID,
		arg.MenuItemName,
		arg.Quantity,
		arg.Price,
		arg.SpecialInstructions,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Position,
		&i.MenuItemID,
		&i.MenuItemName,
		&i.Quantity,
		&i.Price,
		&i.SpecialInstructions,
	)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT id, customer_name, table_number, status, payment_status, payment_method, total_amount, kot_generated, estimated_completion, created_at, updated_at FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT id, customer_name, table_number, status, payment_status, payment_method, total_amount, kot_generated, estimated_completion, created_at, updated_at FROM orders
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT id, order_id, position, menu_item_id, menu_item_name, quantity, price, special_instructions FROM order_items
WHERE order_id = $1
ORDER BY position
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.Position,
			&i.MenuItemID,
			&i.MenuItemName,
			&i.Quantity,
			&i.Price,
			&i.SpecialInstructions,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemsByOrders = `-- name: ListOrderItemsByOrders :many
SELECT id, order_id, position, menu_item_id, menu_item_name, quantity, price, special_instructions FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position
`

func (q *Queries) ListOrderItemsByOrders(ctx context.Context, orderIds []uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrders, orderIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.Position,
			&i.MenuItemID,
			&i.MenuItemName,
			&i.Quantity,
			&i.Price,
			&i.SpecialInstructions,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrders = `-- name: ListOrders :many
SELECT id, customer_name, table_number, status, payment_status, payment_method, total_amount, kot_generated, estimated_completion, created_at, updated_at FROM orders
WHERE ($1::text IS NULL OR status = $1::text)
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListOrders(ctx context.Context, status pgtype.Text) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrdersByTable = `-- name: ListOrdersByTable :many
SELECT id, customer_name, table_number, status, payment_status, payment_method, total_amount, kot_generated, estimated_completion, created_at, updated_at FROM orders
WHERE table_number = $1
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListOrdersByTable(ctx context.Context, tableNumber pgtype.Text) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByTable, tableNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markOrderTicketed = `-- name: MarkOrderTicketed :one
UPDATE orders SET kot_generated = true, updated_at = now()
WHERE id = $1 AND kot_generated = false
RETURNING id, customer_name, table_number, status, payment_status, payment_method, total_amount, kot_generated, estimated_completion, created_at, updated_at
`

func (q *Queries) MarkOrderTicketed(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderTicketed, id))
}

const setOrderTable = `-- name: SetOrderTable :one
UPDATE orders SET table_number = $2, updated_at = now()
WHERE id = $1
RETURNING id, customer_name, table_number, status, payment_status, payment_method, total_amount, kot_generated, estimated_completion, created_at, updated_at
`

type SetOrderTableParams struct {
	ID          uuid.UUID   `json:"id"`
	TableNumber pgtype.Text `json:"table_number"`
}

func (q *Queries) SetOrderTable(ctx context.Context, arg SetOrderTableParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, setOrderTable, arg.ID, arg.TableNumber))
}

const updateOrderState = `-- name: UpdateOrderState :one
UPDATE orders
SET status = $2, payment_status = $3, payment_method = $4, updated_at = now()
WHERE id = $1
RETURNING id, customer_name, table_number, status, payment_status, payment_method, total_amount, kot_generated, estimated_completion, created_at, updated_at
`

type UpdateOrderStateParams struct {
	ID            uuid.UUID   `json:"id"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	PaymentMethod pgtype.Text `json:"payment_method"`
}

func (q *Queries) UpdateOrderState(ctx context.Context, arg UpdateOrderStateParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderState,
		arg.ID,
		arg.Status,
		arg.PaymentStatus,
		arg.PaymentMethod,
	)
	return scanOrder(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.CustomerName,
		&i.TableNumber,
		&i.Status,
		&i.PaymentStatus,
		&i.PaymentMethod,
		&i.TotalAmount,
		&i.KotGenerated,
		&i.EstimatedCompletion,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
