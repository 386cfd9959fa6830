// source: tables.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const clearTable = `-- name: ClearTable :one
UPDATE restaurant_tables SET status = 'available', current_order_id = NULL
WHERE table_number = $1
RETURNING id, table_number, capacity, status, current_order_id, position_x, position_y, created_at
`

func (q *Queries) ClearTable(ctx context.Context, tableNumber string) (RestaurantTable, error) {
	return scanTable(q.db.QueryRow(ctx, clearTable, tableNumber))
}

const countTables = `-- name: CountTables :one
SELECT COUNT(*) FROM restaurant_tables
`

func (q *Queries) CountTables(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countTables)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createTable = `-- name: CreateTable :one
INSERT INTO restaurant_tables (table_number, capacity, position_x, position_y)
VALUES ($1, $2, $3, $4)
RETURNING id, table_number, capacity, status, current_order_id, position_x, position_y, created_at
`

type CreateTableParams struct {
	TableNumber string `json:"table_number"`
	Capacity    int32  `json:"capacity"`
	PositionX   int32  `json:"position_x"`
	PositionY   int32  `json:"position_y"`
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, createTable,
		arg.TableNumber,
		arg.Capacity,
		arg.PositionX,
		arg.PositionY,
	)
	return scanTable(row)
}

const getTableByNumber = `-- name: GetTableByNumber :one
SELECT id, table_number, capacity, status, current_order_id, position_x, position_y, created_at FROM restaurant_tables
WHERE table_number = $1
`

func (q *Queries) GetTableByNumber(ctx context.Context, tableNumber string) (RestaurantTable, error) {
	return scanTable(q.db.QueryRow(ctx, getTableByNumber, tableNumber))
}

const listTables = `-- name: ListTables :many
SELECT id, table_number, capacity, status, current_order_id, position_x, position_y, created_at FROM restaurant_tables
ORDER BY table_number
`

func (q *Queries) ListTables(ctx context.Context) ([]RestaurantTable, error) {
	rows, err := q.db.Query(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []RestaurantTable{}
	for rows.Next() {
		i, err := scanTable(rows)
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

const setTableCurrentOrder = `-- name: SetTableCurrentOrder :execrows
UPDATE restaurant_tables SET current_order_id = $2
WHERE table_number = $1
`

type SetTableCurrentOrderParams struct {
	TableNumber    string      `json:"table_number"`
	CurrentOrderID pgtype.UUID `json:"current_order_id"`
}

func (q *Queries) SetTableCurrentOrder(ctx context.Context, arg SetTableCurrentOrderParams) (int64, error) {
	result, err := q.db.Exec(ctx, setTableCurrentOrder, arg.TableNumber, arg.CurrentOrderID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateTable = `-- name: UpdateTable :one
UPDATE restaurant_tables
SET status = COALESCE($2, status),
    current_order_id = COALESCE($3, current_order_id)
WHERE id = $1
RETURNING id, table_number, capacity, status, current_order_id, position_x, position_y, created_at
`

type UpdateTableParams struct {
	ID             uuid.UUID   `json:"id"`
	Status         pgtype.Text `json:"status"`
	CurrentOrderID pgtype.UUID `json:"current_order_id"`
}

func (q *Queries) UpdateTable(ctx context.Context, arg UpdateTableParams) (RestaurantTable, error) {
	return scanTable(q.db.QueryRow(ctx, updateTable, arg.ID, arg.Status, arg.CurrentOrderID))
}

func scanTable(row rowScanner) (RestaurantTable, error) {
	var i RestaurantTable
	err := row.Scan(
		&i.ID,
		&i.TableNumber,
		&i.Capacity,
		&i.Status,
		&i.CurrentOrderID,
		&i.PositionX,
		&i.PositionY,
		&i.CreatedAt,
	)
	return i, err
}
