package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tasteparadise/pos/internal/database"
	"github.com/tasteparadise/pos/internal/pos"
)

// DashboardStore defines the database methods needed by the dashboard.
// Satisfied by *database.Queries; narrow interface for testability.
type DashboardStore interface {
	ListOrders(ctx context.Context, status pgtype.Text) ([]database.Order, error)
	ListOrderItemsByOrders(ctx context.Context, orderIds []uuid.UUID) ([]database.OrderItem, error)
}

// DashboardHandler serves the daily summary.
type DashboardHandler struct {
	store DashboardStore
	now   func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler. now defines "today".
func NewDashboardHandler(store DashboardStore, now func() time.Time) *DashboardHandler {
	return &DashboardHandler{store: store, now: now}
}

// RegisterRoutes registers GET /dashboard.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Stats)
}

// Stats returns today's figures and the kitchen indicator.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListOrders(r.Context(), pgtype.Text{})
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

	writeJSON(w, http.StatusOK, pos.Summarize(orders, h.now()))
}
