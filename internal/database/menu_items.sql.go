// source: menu_items.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (name, description, price, category, image_url, is_available, preparation_time)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, name, description, price, category, image_url, is_available, preparation_time, created_at
`

type CreateMenuItemParams struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Price           pgtype.Numeric `json:"price"`
	Category        string         `json:"category"`
	ImageUrl        pgtype.Text    `json:"image_url"`
	IsAvailable     bool           `json:"is_available"`
	PreparationTime int32          `json:"preparation_time"`
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.Category,
		arg.ImageUrl,
		arg.IsAvailable,
		arg.PreparationTime,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.Category,
		&i.ImageUrl,
		&i.IsAvailable,
		&i.PreparationTime,
		&i.CreatedAt,
	)
	return i, err
}

const deleteMenuItem = `-- name: DeleteMenuItem :execrows
DELETE FROM menu_items WHERE id = $1
`

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteMenuItem, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getMenuItem = `-- name: GetMenuItem :one
SELECT id, name, description, price, category, image_url, is_available, preparation_time, created_at FROM menu_items
WHERE id = $1
`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, id)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.Category,
		&i.ImageUrl,
		&i.IsAvailable,
		&i.PreparationTime,
		&i.CreatedAt,
	)
	return i, err
}

const listMenuCategories = `-- name: ListMenuCategories :many
SELECT DISTINCT category FROM menu_items
ORDER BY category
`

func (q *Queries) ListMenuCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listMenuCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		items = append(items, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMenuItems = `-- name: ListMenuItems :many
SELECT id, name, description, price, category, image_url, is_available, preparation_time, created_at FROM menu_items
WHERE ($1::text IS NULL OR category = $1::text)
ORDER BY category, name
`

func (q *Queries) ListMenuItems(ctx context.Context, category pgtype.Text) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		var i MenuItem
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.Category,
			&i.ImageUrl,
			&i.IsAvailable,
			&i.PreparationTime,
			&i.CreatedAt,
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

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET name = $2, description = $3, price = $4, category = $5,
    image_url = $6, is_available = $7, preparation_time = $8
WHERE id = $1
RETURNING id, name, description, price, category, image_url, is_available, preparation_time, created_at
`

type UpdateMenuItemParams struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Price           pgtype.Numeric `json:"price"`
	Category        string         `json:"category"`
	ImageUrl        pgtype.Text    `json:"image_url"`
	IsAvailable     bool           `json:"is_available"`
	PreparationTime int32          `json:"preparation_time"`
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.Category,
		arg.ImageUrl,
		arg.IsAvailable,
		arg.PreparationTime,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.Category,
		&i.ImageUrl,
		&i.IsAvailable,
		&i.PreparationTime,
		&i.CreatedAt,
	)
	return i, err
}
