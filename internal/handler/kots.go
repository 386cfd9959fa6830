package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tasteparadise/pos/internal/database"
	"github.com/tasteparadise/pos/internal/enum"
	"github.com/tasteparadise/pos/internal/pos"
	"github.com/tasteparadise/pos/internal/service"
	"github.com/tasteparadise/pos/internal/ws"
)

// TicketServicer generates kitchen tickets.
// Satisfied by *service.OrderService.
type TicketServicer interface {
	GenerateTicket(ctx context.Context, orderID uuid.UUID) (pos.KitchenTicket, error)
}

// TicketStore defines the database methods needed by KOT handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TicketStore interface {
	ListKitchenTickets(ctx context.Context) ([]database.KitchenTicket, error)
}

// TicketHandler handles kitchen order ticket (KOT) endpoints.
type TicketHandler struct {
	svc    TicketServicer
	store  TicketStore
	events EventBroadcaster
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(svc TicketServicer, store TicketStore, events EventBroadcaster) *TicketHandler {
	return &TicketHandler{svc: svc, store: store, events: events}
}

// RegisterRoutes registers KOT endpoints. Expected to be mounted at /kot.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/{orderID}", h.Generate)
}

// List returns every ticket, newest first.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListKitchenTickets(r.Context())
	if err != nil {
		log.Printf("ERROR: list kitchen tickets: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]pos.KitchenTicket, len(rows))
	for i, k := range rows {
		resp[i] = service.ToTicket(k)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Generate creates the ticket of an active order. A second call for the
// same order is a conflict.
func (h *TicketHandler) Generate(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	ticket, err := h.svc.GenerateTicket(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, "generate ticket", err)
		return
	}

	notify(h.events, enum.EventTicketCreated, ticket, ws.RoomKitchen, ws.RoomFloor)
	writeJSON(w, http.StatusCreated, ticket)
}
