package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tasteparadise/pos/internal/database"
	"github.com/tasteparadise/pos/internal/enum"
	"github.com/tasteparadise/pos/internal/pos"
	"github.com/tasteparadise/pos/internal/service"
	"github.com/tasteparadise/pos/internal/ws"
)

// TableStore defines the database methods needed by table handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TableStore interface {
	ListTables(ctx context.Context) ([]database.RestaurantTable, error)
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.RestaurantTable, error)
	UpdateTable(ctx context.Context, arg database.UpdateTableParams) (database.RestaurantTable, error)
	ClearTable(ctx context.Context, tableNumber string) (database.RestaurantTable, error)
	ListOrdersByTable(ctx context.Context, tableNumber pgtype.Text) ([]database.Order, error)
	ListOrderItemsByOrders(ctx context.Context, orderIds []uuid.UUID) ([]database.OrderItem, error)
}

// TableServicer defines the transactional table operations.
// Satisfied by *service.TableService.
type TableServicer interface {
	InitializeDefaults(ctx context.Context) ([]pos.Table, int64, error)
	AssignOrder(ctx context.Context, tableNumber string, orderID uuid.UUID) (pos.Table, error)
}

// TableHandler handles floor plan endpoints.
type TableHandler struct {
	svc    TableServicer
	store  TableStore
	events EventBroadcaster
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(svc TableServicer, store TableStore, events EventBroadcaster) *TableHandler {
	return &TableHandler{svc: svc, store: store, events: events}
}

// RegisterRoutes registers the endpoints every staff member may use.
// Expected to be mounted at /tables.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/{id}", h.Update)
	r.Get("/{number}/orders", h.Orders)
	r.Post("/{number}/assign-order/{orderID}", h.AssignOrder)
	r.Post("/{number}/clear", h.Clear)
}

// RegisterManagerRoutes registers the floor layout endpoints, to be guarded
// by a MANAGER role check.
func (h *TableHandler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Post("/initialize-default", h.InitializeDefault)
}

// --- Request / Response types ---

type updateTableRequest struct {
	Status         *string `json:"status"`
	CurrentOrderID *string `json:"current_order_id"`
}

type initializeTablesResponse struct {
	Message string      `json:"message"`
	Tables  []pos.Table `json:"tables"`
}

// --- Handlers ---

// List returns all tables ordered by number.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListTables(r.Context())
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]pos.Table, len(rows))
	for i, t := range rows {
		resp[i] = service.ToTable(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a table to the floor plan.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pos.TableDraft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Number == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}
	if req.Capacity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "capacity must be >= 0"})
		return
	}

	row, err := h.store.CreateTable(r.Context(), service.CreateTableParams(req))
	if err != nil {
		if service.IsUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": service.ErrTableExists.Error()})
			return
		}
		log.Printf("ERROR: create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	table := service.ToTable(row)
	notify(h.events, enum.EventTableUpdated, table, ws.RoomFloor)
	writeJSON(w, http.StatusCreated, table)
}

// Update sets the status and/or current order of a table. The status is an
// operator decision; it is stored as given.
func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	tableID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	var req updateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params := database.UpdateTableParams{ID: tableID}
	if req.Status != nil {
		if !pos.TableStatus(*req.Status).Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = pgtype.Text{String: *req.Status, Valid: true}
	}
	if req.CurrentOrderID != nil {
		orderID, err := uuid.Parse(*req.CurrentOrderID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid current_order_id"})
			return
		}
		params.CurrentOrderID = pgtype.UUID{Bytes: orderID, Valid: true}
	}

	row, err := h.store.UpdateTable(r.Context(), params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		if service.IsForeignKeyViolation(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "current_order_id: order not found"})
			return
		}
		log.Printf("ERROR: update table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	table := service.ToTable(row)
	notify(h.events, enum.EventTableUpdated, table, ws.RoomFloor)
	writeJSON(w, http.StatusOK, table)
}

// Orders returns every order placed on a table, newest first.
func (h *TableHandler) Orders(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	rows, err := h.store.ListOrdersByTable(r.Context(), pgtype.Text{String: number, Valid: true})
	if err != nil {
		log.Printf("ERROR: list table orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	orders, err := loadOrders(r.Context(), h.store, rows)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// AssignOrder makes an order the current order of a table.
func (h *TableHandler) AssignOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	table, err := h.svc.AssignOrder(r.Context(), chi.URLParam(r, "number"), orderID)
	if err != nil {
		writeServiceError(w, "assign order", err)
		return
	}

	notify(h.events, enum.EventTableUpdated, table, ws.RoomFloor)
	writeJSON(w, http.StatusOK, table)
}

// Clear marks a table available and detaches its current order.
func (h *TableHandler) Clear(w http.ResponseWriter, r *http.Request) {
	row, err := h.store.ClearTable(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: clear table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	table := service.ToTable(row)
	notify(h.events, enum.EventTableUpdated, table, ws.RoomFloor)
	writeJSON(w, http.StatusOK, table)
}

// InitializeDefault creates the default floor layout on an empty floor.
func (h *TableHandler) InitializeDefault(w http.ResponseWriter, r *http.Request) {
	tables, existing, err := h.svc.InitializeDefaults(r.Context())
	if err != nil {
		writeServiceError(w, "initialize tables", err)
		return
	}

	if existing > 0 {
		writeJSON(w, http.StatusOK, initializeTablesResponse{
			Message: fmt.Sprintf("tables already exist (%d tables)", existing),
			Tables:  []pos.Table{},
		})
		return
	}

	for _, t := range tables {
		notify(h.events, enum.EventTableUpdated, t, ws.RoomFloor)
	}
	writeJSON(w, http.StatusCreated, initializeTablesResponse{
		Message: fmt.Sprintf("created %d default tables", len(tables)),
		Tables:  tables,
	})
}
