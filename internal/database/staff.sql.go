// source: staff.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createStaff = `-- name: CreateStaff :one
INSERT INTO staff (name, pin_hash, role)
VALUES ($1, $2, $3)
RETURNING id, name, pin_hash, role, is_active, created_at
`

type CreateStaffParams struct {
	Name    string `json:"name"`
	PinHash string `json:"pin_hash"`
	Role    string `json:"role"`
}

func (q *Queries) CreateStaff(ctx context.Context, arg CreateStaffParams) (Staff, error) {
	row := q.db.QueryRow(ctx, createStaff, arg.Name, arg.PinHash, arg.Role)
	var i Staff
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.PinHash,
		&i.Role,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const getStaffByID = `-- name: GetStaffByID :one
SELECT id, name, pin_hash, role, is_active, created_at FROM staff
WHERE id = $1 AND is_active = true
`

func (q *Queries) GetStaffByID(ctx context.Context, id uuid.UUID) (Staff, error) {
	row := q.db.QueryRow(ctx, getStaffByID, id)
	var i Staff
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.PinHash,
		&i.Role,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const getStaffByName = `-- name: GetStaffByName :one
SELECT id, name, pin_hash, role, is_active, created_at FROM staff
WHERE name = $1 AND is_active = true
`

func (q *Queries) GetStaffByName(ctx context.Context, name string) (Staff, error) {
	row := q.db.QueryRow(ctx, getStaffByName, name)
	var i Staff
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.PinHash,
		&i.Role,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const listStaff = `-- name: ListStaff :many
SELECT id, name, pin_hash, role, is_active, created_at FROM staff
WHERE is_active = true
ORDER BY name
`

func (q *Queries) ListStaff(ctx context.Context) ([]Staff, error) {
	rows, err := q.db.Query(ctx, listStaff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Staff{}
	for rows.Next() {
		var i Staff
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.PinHash,
			&i.Role,
			&i.IsActive,
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

const updateStaff = `-- name: UpdateStaff :one
UPDATE staff
SET name = $1, role = $2, pin_hash = COALESCE($3, pin_hash)
WHERE id = $4 AND is_active = true
RETURNING id, name, pin_hash, role, is_active, created_at
`

type UpdateStaffParams struct {
	Name    string      `json:"name"`
	Role    string      `json:"role"`
	PinHash pgtype.Text `json:"pin_hash"`
	ID      uuid.UUID   `json:"id"`
}

func (q *Queries) UpdateStaff(ctx context.Context, arg UpdateStaffParams) (Staff, error) {
	row := q.db.QueryRow(ctx, updateStaff,
		arg.Name,
		arg.Role,
		arg.PinHash,
		arg.ID,
	)
	var i Staff
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.PinHash,
		&i.Role,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const deactivateStaff = `-- name: DeactivateStaff :one
UPDATE staff SET is_active = false
WHERE id = $1 AND is_active = true
RETURNING id
`

func (q *Queries) DeactivateStaff(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deactivateStaff, id)
	var deletedID uuid.UUID
	err := row.Scan(&deletedID)
	return deletedID, err
}
