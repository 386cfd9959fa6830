package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tasteparadise/pos/internal/database"
	"github.com/tasteparadise/pos/internal/pos"
)

// ErrTableExists is returned when a table number is already taken.
var ErrTableExists = errors.New("table number already exists")

// DefaultTables is the floor layout created on first start.
var DefaultTables = []pos.TableDraft{
	{Number: "T1", Capacity: 4, PositionX: 0, PositionY: 0},
	{Number: "T2", Capacity: 4, PositionX: 1, PositionY: 0},
	{Number: "T3", Capacity: 6, PositionX: 2, PositionY: 0},
	{Number: "T4", Capacity: 4, PositionX: 3, PositionY: 0},
	{Number: "T5", Capacity: 2, PositionX: 0, PositionY: 1},
	{Number: "T6", Capacity: 2, PositionX: 1, PositionY: 1},
}

// TableStore defines the DB methods needed by the table service.
// Satisfied by *database.Queries.
type TableStore interface {
	CountTables(ctx context.Context) (int64, error)
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.RestaurantTable, error)
	GetTableByNumber(ctx context.Context, tableNumber string) (database.RestaurantTable, error)
	SetTableCurrentOrder(ctx context.Context, arg database.SetTableCurrentOrderParams) (int64, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	SetOrderTable(ctx context.Context, arg database.SetOrderTableParams) (database.Order, error)
}

// NewTableStore creates a TableStore from a DBTX (pool or tx).
type NewTableStore func(db database.DBTX) TableStore

// TableService handles multi-row table operations.
type TableService struct {
	pool     TxBeginner
	newStore NewTableStore
}

// NewTableService creates a new TableService.
func NewTableService(pool TxBeginner, newStore NewTableStore) *TableService {
	return &TableService{pool: pool, newStore: newStore}
}

// InitializeDefaults creates DefaultTables when the floor has no table yet.
// It returns the created tables and the number of tables found beforehand;
// when that number is non-zero nothing is created.
func (s *TableService) InitializeDefaults(ctx context.Context) ([]pos.Table, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	existing, err := store.CountTables(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count tables: %w", err)
	}
	if existing > 0 {
		return nil, existing, nil
	}

	created := make([]pos.Table, 0, len(DefaultTables))
	for _, d := range DefaultTables {
		row, err := store.CreateTable(ctx, CreateTableParams(d))
		if err != nil {
			if IsUniqueViolation(err) {
				return nil, 0, fmt.Errorf("table %s: %w", d.Number, ErrTableExists)
			}
			return nil, 0, fmt.Errorf("create table %s: %w", d.Number, err)
		}
		created = append(created, ToTable(row))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit tx: %w", err)
	}
	return created, 0, nil
}

// AssignOrder makes an active order the current order of a table and records
// the table on the order. The table status is left as the operator set it.
func (s *TableService) AssignOrder(ctx context.Context, tableNumber string, orderID uuid.UUID) (pos.Table, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pos.Table{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pos.Table{}, ErrOrderNotFound
		}
		return pos.Table{}, fmt.Errorf("get order: %w", err)
	}
	if !pos.IsActive(pos.Order{Status: pos.OrderStatus(order.Status)}) {
		return pos.Table{}, pos.ErrOrderClosed
	}

	n, err := store.SetTableCurrentOrder(ctx, database.SetTableCurrentOrderParams{
		TableNumber:    tableNumber,
		CurrentOrderID: pgtype.UUID{Bytes: orderID, Valid: true},
	})
	if err != nil {
		return pos.Table{}, fmt.Errorf("set table current order: %w", err)
	}
	if n == 0 {
		return pos.Table{}, ErrTableNotFound
	}

	if _, err := store.SetOrderTable(ctx, database.SetOrderTableParams{
		ID:          orderID,
		TableNumber: textOrNull(tableNumber),
	}); err != nil {
		return pos.Table{}, fmt.Errorf("set order table: %w", err)
	}

	table, err := store.GetTableByNumber(ctx, tableNumber)
	if err != nil {
		return pos.Table{}, fmt.Errorf("get table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return pos.Table{}, fmt.Errorf("commit tx: %w", err)
	}
	return ToTable(table), nil
}

// CreateTableParams maps a table draft to its insert parameters, applying the
// default capacity of 4.
func CreateTableParams(d pos.TableDraft) database.CreateTableParams {
	capacity := d.Capacity
	if capacity <= 0 {
		capacity = 4
	}
	return database.CreateTableParams{
		TableNumber: d.Number,
		Capacity:    int32(capacity),
		PositionX:   int32(d.PositionX),
		PositionY:   int32(d.PositionY),
	}
}

// IsUniqueViolation checks for pgconn error code 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation checks for pgconn error code 23503, a reference to a
// row that does not exist.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
