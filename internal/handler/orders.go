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
	"github.com/shopspring/decimal"
	"github.com/tasteparadise/pos/internal/database"
	"github.com/tasteparadise/pos/internal/enum"
	"github.com/tasteparadise/pos/internal/pos"
	"github.com/tasteparadise/pos/internal/service"
	"github.com/tasteparadise/pos/internal/ws"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, draft pos.OrderDraft) (pos.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, patch pos.OrderPatch) (pos.Order, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, status pgtype.Text) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemsByOrders(ctx context.Context, orderIds []uuid.UUID) ([]database.OrderItem, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc    OrderServicer
	store  OrderStore
	events EventBroadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, events EventBroadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, events: events}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName string                   `json:"customer_name"`
	TableNumber  string                   `json:"table_number"`
	Items        []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID          string          `json:"menu_item_id"`
	MenuItemName        string          `json:"menu_item_name"`
	Quantity            int             `json:"quantity"`
	Price               decimal.Decimal `json:"price"`
	SpecialInstructions string          `json:"special_instructions"`
}

type updateOrderRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"payment_status"`
	PaymentMethod *string `json:"payment_method"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	draft := pos.OrderDraft{
		CustomerName: req.CustomerName,
		TableNumber:  req.TableNumber,
		Lines:        make([]pos.OrderLine, len(req.Items)),
	}
	for i, item := range req.Items {
		menuItemID, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "invalid menu_item_id"),
			})
			return
		}
		if item.MenuItemName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "menu_item_name is required"),
			})
			return
		}
		if item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "quantity must be > 0"),
			})
			return
		}
		if item.Price.IsNegative() || !pos.InMinorUnits(item.Price) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "price must be >= 0 with at most 2 decimals"),
			})
			return
		}
		draft.Lines[i] = pos.OrderLine{
			MenuItemID: menuItemID,
			Name:       item.MenuItemName,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Note:       item.SpecialInstructions,
		}
	}

	order, err := h.svc.CreateOrder(r.Context(), draft)
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	notify(h.events, enum.EventOrderCreated, order, ws.RoomFloor, ws.RoomKitchen)
	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /orders, newest first, with an optional ?status= filter.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := pgtype.Text{}
	if s := r.URL.Query().Get("status"); s != "" {
		if !pos.OrderStatus(s).Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		status = pgtype.Text{String: s, Valid: true}
	}

	rows, err := h.store.ListOrders(r.Context(), status)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
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

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	row, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, service.ToOrder(row, items))
}

// Update handles PUT /orders/{id}: a status change, a payment, or both.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == nil && req.PaymentStatus == nil && req.PaymentMethod == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nothing to update"})
		return
	}

	var patch pos.OrderPatch
	if req.Status != nil {
		s := pos.OrderStatus(*req.Status)
		if !s.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		patch.Status = &s
	}
	if req.PaymentStatus != nil {
		ps := pos.PaymentStatus(*req.PaymentStatus)
		if ps != pos.PaymentPending && ps != pos.PaymentPaid {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment_status"})
			return
		}
		patch.PaymentStatus = &ps
	}
	if req.PaymentMethod != nil {
		m := pos.PaymentMethod(*req.PaymentMethod)
		patch.PaymentMethod = &m
	}

	order, err := h.svc.UpdateOrder(r.Context(), orderID, patch)
	if err != nil {
		writeServiceError(w, "update order", err)
		return
	}

	notify(h.events, enum.EventOrderUpdated, order, ws.RoomFloor, ws.RoomKitchen)
	writeJSON(w, http.StatusOK, order)
}

// --- Helpers ---

func formatItemError(idx int, msg string) string {
	return fmt.Sprintf("items[%d]: %s", idx, msg)
}

// orderItemsLister batch-loads the items of several orders.
type orderItemsLister interface {
	ListOrderItemsByOrders(ctx context.Context, orderIds []uuid.UUID) ([]database.OrderItem, error)
}

// loadOrders fetches the items of rows in one query and assembles the orders.
func loadOrders(ctx context.Context, store orderItemsLister, rows []database.Order) ([]pos.Order, error) {
	if len(rows) == 0 {
		return []pos.Order{}, nil
	}
	items, err := store.ListOrderItemsByOrders(ctx, service.OrderIDs(rows))
	if err != nil {
		return nil, err
	}
	return service.ToOrders(rows, items), nil
}

// Errors that map to 400 Bad Request.
var validationErrors = []error{
	pos.ErrEmptyCart,
	pos.ErrInvalidQuantity,
	pos.ErrInvalidPaymentMethod,
	service.ErrInvalidPrice,
	service.ErrPricePrecision,
	service.ErrMenuItemNotFound,
	service.ErrMenuItemUnavailable,
}

// Errors that map to 409 Conflict: the request is well-formed but the
// current state does not allow it.
var conflictErrors = []error{
	pos.ErrInvalidTransition,
	pos.ErrPaymentClosed,
	pos.ErrAlreadyPaid,
	pos.ErrTicketExists,
	pos.ErrOrderClosed,
	service.ErrTableExists,
}

// writeServiceError maps a service error to its HTTP status. Unknown errors
// are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrTableNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
	}
	log.Printf("ERROR: %s: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
