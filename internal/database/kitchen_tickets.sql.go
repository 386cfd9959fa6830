// source: kitchen_tickets.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createKitchenTicket = `-- name: CreateKitchenTicket :one
INSERT INTO kitchen_tickets (order_id, order_number, table_number, items, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, order_number, table_number, items, status, created_at
`

type CreateKitchenTicketParams struct {
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	TableNumber pgtype.Text `json:"table_number"`
	Items       []byte      `json:"items"`
	Status      string      `json:"status"`
}

func (q *Queries) CreateKitchenTicket(ctx context.Context, arg CreateKitchenTicketParams) (KitchenTicket, error) {
	row := q.db.QueryRow(ctx, createKitchenTicket,
		arg.OrderID,
		arg.OrderNumber,
		arg.TableNumber,
		arg.Items,
		arg.Status,
	)
	return scanKitchenTicket(row)
}

const getNextTicketSequence = `-- name: GetNextTicketSequence :one
SELECT (COUNT(*) + 1)::int AS next_sequence FROM kitchen_tickets
`

func (q *Queries) GetNextTicketSequence(ctx context.Context) (int32, error) {
	row := q.db.QueryRow(ctx, getNextTicketSequence)
	var next_sequence int32
	err := row.Scan(&next_sequence)
	return next_sequence, err
}

const listKitchenTickets = `-- name: ListKitchenTickets :many
SELECT id, order_id, order_number, table_number, items, status, created_at FROM kitchen_tickets
ORDER BY created_at DESC, order_number DESC
`

func (q *Queries) ListKitchenTickets(ctx context.Context) ([]KitchenTicket, error) {
	rows, err := q.db.Query(ctx, listKitchenTickets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []KitchenTicket{}
	for rows.Next() {
		i, err := scanKitchenTicket(rows)
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

func scanKitchenTicket(row rowScanner) (KitchenTicket, error) {
	var i KitchenTicket
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.OrderNumber,
		&i.TableNumber,
		&i.Items,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}
