package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tasteparadise/pos/internal/database"
	"github.com/tasteparadise/pos/internal/handler"
	"github.com/tasteparadise/pos/internal/ws"
)

// --- Mock store ---

type mockMenuStore struct {
	items   map[uuid.UUID]database.MenuItem
	created *database.CreateMenuItemParams
}

func newMockMenuStore() *mockMenuStore {
	return &mockMenuStore{items: make(map[uuid.UUID]database.MenuItem)}
}

func (m *mockMenuStore) add(name, category string, available bool) database.MenuItem {
	item := database.MenuItem{
		ID:              uuid.New(),
		Name:            name,
		Price:           makeNumeric("120.00"),
		Category:        category,
		IsAvailable:     available,
		PreparationTime: 15,
	}
	m.items[item.ID] = item
	return item
}

func (m *mockMenuStore) ListMenuItems(_ context.Context, category pgtype.Text) ([]database.MenuItem, error) {
	var out []database.MenuItem
	for _, it := range m.items {
		if !category.Valid || it.Category == category.String {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockMenuStore) ListMenuCategories(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, it := range m.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out, nil
}

func (m *mockMenuStore) CreateMenuItem(_ context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	m.created = &arg
	item := database.MenuItem{
		ID:              uuid.New(),
		Name:            arg.Name,
		Description:     arg.Description,
		Price:           arg.Price,
		Category:        arg.Category,
		ImageUrl:        arg.ImageUrl,
		IsAvailable:     arg.IsAvailable,
		PreparationTime: arg.PreparationTime,
	}
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuStore) UpdateMenuItem(_ context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	if _, ok := m.items[arg.ID]; !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	item := database.MenuItem{
		ID:              arg.ID,
		Name:            arg.Name,
		Description:     arg.Description,
		Price:           arg.Price,
		Category:        arg.Category,
		ImageUrl:        arg.ImageUrl,
		IsAvailable:     arg.IsAvailable,
		PreparationTime: arg.PreparationTime,
	}
	m.items[arg.ID] = item
	return item, nil
}

func (m *mockMenuStore) DeleteMenuItem(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := m.items[id]; !ok {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

func setupMenuRouter(store *mockMenuStore, events handler.EventBroadcaster) *chi.Mux {
	h := handler.NewMenuHandler(store, events)
	r := chi.NewRouter()
	r.Route("/menu", func(r chi.Router) {
		h.RegisterRoutes(r)
		h.RegisterManagerRoutes(r)
	})
	return r
}

// --- Tests ---

func TestMenuList_CategoryFilter(t *testing.T) {
	store := newMockMenuStore()
	store.add("Paneer Tikka", "Starters", true)
	store.add("Naan", "Breads", true)
	store.add("Roti", "Breads", false)
	router := setupMenuRouter(store, nil)

	rr := doRequest(t, router, "GET", "/menu", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got := len(decodeListResponse(t, rr)); got != 3 {
		t.Errorf("all items: got %d, want 3", got)
	}

	rr = doRequest(t, router, "GET", "/menu?category=Breads", nil)
	resp := decodeListResponse(t, rr)
	if len(resp) != 2 {
		t.Fatalf("breads: got %d, want 2", len(resp))
	}
	for _, it := range resp {
		if it["category"] != "Breads" {
			t.Errorf("category: got %v, want Breads", it["category"])
		}
	}
}

func TestMenuCategories(t *testing.T) {
	store := newMockMenuStore()
	store.add("Naan", "Breads", true)
	store.add("Roti", "Breads", true)

	rr := doRequest(t, setupMenuRouter(store, nil), "GET", "/menu/categories", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	cats, ok := decodeResponse(t, rr)["categories"].([]interface{})
	if !ok || len(cats) != 1 || cats[0] != "Breads" {
		t.Errorf("categories: got %v", cats)
	}
}

func TestMenuCreate_Defaults(t *testing.T) {
	store := newMockMenuStore()
	events := &mockBroadcaster{}
	router := setupMenuRouter(store, events)

	rr := doRequest(t, router, "POST", "/menu", map[string]interface{}{
		"name":     "Masala Chai",
		"category": "Beverages",
		"price":    "25.50",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if store.created == nil {
		t.Fatal("store was not called")
	}
	if !store.created.IsAvailable {
		t.Error("is_available should default to true")
	}
	if store.created.PreparationTime != 15 {
		t.Errorf("preparation_time: got %d, want 15", store.created.PreparationTime)
	}
	if store.created.ImageUrl.Valid {
		t.Error("image_url should be null")
	}

	resp := decodeResponse(t, rr)
	if resp["price"] != "25.5" {
		t.Errorf("price: got %v, want 25.5", resp["price"])
	}
	if types := events.types(ws.RoomFloor); len(types) != 1 || types[0] != "menu.updated" {
		t.Errorf("events: got %v", types)
	}
}

func TestMenuCreate_Validation(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore(), nil)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"category": "Breads", "price": "10"}},
		{"missing category", map[string]interface{}{"name": "Naan", "price": "10"}},
		{"negative price", map[string]interface{}{"name": "Naan", "category": "Breads", "price": "-1"}},
		{"sub-cent price", map[string]interface{}{"name": "Naan", "category": "Breads", "price": "10.005"}},
		{"negative prep time", map[string]interface{}{"name": "Naan", "category": "Breads", "price": "10", "preparation_time": -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, "POST", "/menu", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
			}
		})
	}
}

func TestMenuUpdate(t *testing.T) {
	store := newMockMenuStore()
	item := store.add("Naan", "Breads", true)
	router := setupMenuRouter(store, nil)

	rr := doRequest(t, router, "PUT", "/menu/"+item.ID.String(), map[string]interface{}{
		"name":         "Butter Naan",
		"category":     "Breads",
		"price":        "45",
		"is_available": false,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["name"] != "Butter Naan" || resp["is_available"] != false {
		t.Errorf("got %v", resp)
	}

	rr = doRequest(t, router, "PUT", "/menu/"+uuid.New().String(), map[string]interface{}{
		"name": "Ghost", "category": "Breads", "price": "1",
	})
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown item: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMenuDelete(t *testing.T) {
	store := newMockMenuStore()
	item := store.add("Naan", "Breads", true)
	router := setupMenuRouter(store, nil)

	rr := doRequest(t, router, "DELETE", "/menu/"+item.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if _, ok := store.items[item.ID]; ok {
		t.Error("item still present after delete")
	}

	rr = doRequest(t, router, "DELETE", "/menu/"+item.ID.String(), nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	rr = doRequest(t, router, "DELETE", "/menu/bogus", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
