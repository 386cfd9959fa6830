package handler

import (
	"context"
	"encoding/json"
	"errors"
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

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context, category pgtype.Text) ([]database.MenuItem, error)
	ListMenuCategories(ctx context.Context) ([]string, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (int64, error)
}

// MenuHandler handles menu CRUD endpoints.
type MenuHandler struct {
	store  MenuStore
	events EventBroadcaster
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, events EventBroadcaster) *MenuHandler {
	return &MenuHandler{store: store, events: events}
}

// RegisterRoutes registers the read endpoints. Expected to be mounted at /menu.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/categories", h.Categories)
}

// RegisterManagerRoutes registers the write endpoints, to be guarded by a
// MANAGER role check.
func (h *MenuHandler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Handlers ---

// List returns the menu, optionally filtered by ?category=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	category := pgtype.Text{}
	if c := r.URL.Query().Get("category"); c != "" {
		category = pgtype.Text{String: c, Valid: true}
	}

	rows, err := h.store.ListMenuItems(r.Context(), category)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]pos.MenuItem, len(rows))
	for i, m := range rows {
		resp[i] = service.ToMenuItem(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Categories returns the distinct menu categories.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListMenuCategories(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

// Create adds a menu item.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeMenuDraft(w, r)
	if !ok {
		return
	}

	row, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Name:            draft.Name,
		Description:     draft.Description,
		Price:           service.DecimalToNumeric(draft.Price),
		Category:        draft.Category,
		ImageUrl:        optionalText(draft.ImageURL),
		IsAvailable:     *draft.IsAvailable,
		PreparationTime: int32(draft.PreparationTime),
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	item := service.ToMenuItem(row)
	notify(h.events, enum.EventMenuUpdated, item, ws.RoomFloor)
	writeJSON(w, http.StatusCreated, item)
}

// Update replaces every field of a menu item.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	draft, ok := decodeMenuDraft(w, r)
	if !ok {
		return
	}

	row, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:              itemID,
		Name:            draft.Name,
		Description:     draft.Description,
		Price:           service.DecimalToNumeric(draft.Price),
		Category:        draft.Category,
		ImageUrl:        optionalText(draft.ImageURL),
		IsAvailable:     *draft.IsAvailable,
		PreparationTime: int32(draft.PreparationTime),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	item := service.ToMenuItem(row)
	notify(h.events, enum.EventMenuUpdated, item, ws.RoomFloor)
	writeJSON(w, http.StatusOK, item)
}

// Delete removes a menu item. Past orders keep their copied name and price.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	n, err := h.store.DeleteMenuItem(r.Context(), itemID)
	if err != nil {
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}

	notify(h.events, enum.EventMenuUpdated, map[string]string{"id": itemID.String(), "deleted": "true"}, ws.RoomFloor)
	writeJSON(w, http.StatusOK, map[string]string{"message": "menu item deleted"})
}

// --- Helpers ---

// decodeMenuDraft reads and validates a menu item body, applying defaults.
// It writes the error response itself and reports whether to continue.
func decodeMenuDraft(w http.ResponseWriter, r *http.Request) (pos.MenuItemDraft, bool) {
	var draft pos.MenuItemDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return draft, false
	}

	if draft.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return draft, false
	}
	if draft.Category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category is required"})
		return draft, false
	}
	if draft.Price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		return draft, false
	}
	if !pos.InMinorUnits(draft.Price) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must have at most 2 decimals"})
		return draft, false
	}
	if draft.PreparationTime < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "preparation_time must be >= 0"})
		return draft, false
	}

	if draft.PreparationTime == 0 {
		draft.PreparationTime = pos.DefaultPrepMinutes
	}
	if draft.IsAvailable == nil {
		available := true
		draft.IsAvailable = &available
	}
	return draft, true
}

func optionalText(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
