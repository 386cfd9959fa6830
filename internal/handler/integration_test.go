//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tasteparadise/pos/internal/config"
	"github.com/tasteparadise/pos/internal/database"
	"github.com/tasteparadise/pos/internal/messaging"
	"github.com/tasteparadise/pos/internal/router"
	"github.com/tasteparadise/pos/internal/ws"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// TestIntegrationFlow exercises a dine-in order from login to payment against
// a real PostgreSQL database, with all handlers wired through the router.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	// Start PostgreSQL container
	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	// Run migrations. Path is relative to this package directory.
	if err := database.Migrate(connStr, "../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	cfg := &config.Config{
		Port:        "8001",
		DatabaseURL: connStr,
		JWTSecret:   "integration-test-secret",
		CORSOrigins: []string{"*"},
	}
	queries := database.New(pool)
	hub := ws.NewHub()
	// NOTE: hub.Run() goroutine leaks on test exit; Hub has no shutdown mechanism.
	go hub.Run()

	server := httptest.NewServer(router.New(cfg, queries, pool, hub, messaging.Nop{}))
	defer server.Close()

	// --- 1. Bootstrap a manager (direct insert) and log in ---
	createStaff(t, ctx, queries, "Meera", "4321", "MANAGER")
	token := login(t, server, "Meera", "4321")

	// --- 2. Default floor layout ---
	status, body := httpDo(t, server, "POST", "/tables/initialize-default", nil, token)
	expectStatus(t, "initialize tables", status, http.StatusCreated, body)
	status, body = httpDo(t, server, "POST", "/tables/initialize-default", nil, token)
	expectStatus(t, "initialize tables again", status, http.StatusOK, body)

	// --- 3. Menu ---
	paneer := createMenuItem(t, server, token, "Paneer Tikka", "180.00")
	naan := createMenuItem(t, server, token, "Naan", "40.00")

	// --- 4. Dine-in order on T1 ---
	status, body = httpDo(t, server, "POST", "/orders", map[string]interface{}{
		"customer_name": "Asha",
		"table_number":  "T1",
		"items": []map[string]interface{}{
			{"menu_item_id": paneer, "menu_item_name": "Paneer Tikka", "quantity": 2, "price": "180.00"},
			{"menu_item_id": naan, "menu_item_name": "Naan", "quantity": 3, "price": "40.00"},
		},
	}, token)
	expectStatus(t, "create order", status, http.StatusCreated, body)
	order := decodeObject(t, body)
	orderID := order["id"].(string)
	if total := decimal.RequireFromString(order["total_amount"].(string)); !total.Equal(decimal.NewFromInt(480)) {
		t.Fatalf("total_amount: got %s, want 480", total)
	}
	if order["estimated_completion"] == nil {
		t.Error("expected estimated_completion on a new order")
	}

	// Table keeps its operator-set status but points at the order.
	t1 := findTable(t, server, token, "T1")
	if t1["status"] != "available" {
		t.Errorf("T1 status: got %v, want available", t1["status"])
	}
	if t1["current_order_id"] != orderID {
		t.Errorf("T1 current_order_id: got %v, want %s", t1["current_order_id"], orderID)
	}

	// --- 5. Kitchen ticket, exactly once ---
	status, body = httpDo(t, server, "POST", "/kot/"+orderID, nil, token)
	expectStatus(t, "generate ticket", status, http.StatusCreated, body)
	ticket := decodeObject(t, body)
	if ticket["order_number"] != "ORD-0001" {
		t.Errorf("order_number: got %v, want ORD-0001", ticket["order_number"])
	}
	status, body = httpDo(t, server, "POST", "/kot/"+orderID, nil, token)
	expectStatus(t, "generate ticket twice", status, http.StatusConflict, body)

	// --- 6. Lifecycle ---
	for _, next := range []string{"cooking", "ready", "served"} {
		status, body = httpDo(t, server, "PUT", "/orders/"+orderID, map[string]string{"status": next}, token)
		expectStatus(t, "move to "+next, status, http.StatusOK, body)
	}
	status, body = httpDo(t, server, "PUT", "/orders/"+orderID, map[string]string{"status": "pending"}, token)
	expectStatus(t, "served -> pending", status, http.StatusConflict, body)

	// --- 7. Payment ---
	status, body = httpDo(t, server, "PUT", "/orders/"+orderID, map[string]string{
		"payment_status": "paid",
		"payment_method": "cash",
	}, token)
	expectStatus(t, "pay", status, http.StatusOK, body)
	paid := decodeObject(t, body)
	if paid["payment_status"] != "paid" || paid["payment_method"] != "cash" || paid["status"] != "served" {
		t.Errorf("paid order: got %v", paid)
	}

	// --- 8. Clear the table ---
	status, body = httpDo(t, server, "POST", "/tables/T1/clear", nil, token)
	expectStatus(t, "clear T1", status, http.StatusOK, body)
	if cleared := decodeObject(t, body); cleared["current_order_id"] != nil {
		t.Errorf("cleared T1 current_order_id: got %v, want null", cleared["current_order_id"])
	}

	// --- 9. Per-table history and dashboard ---
	status, body = httpDo(t, server, "GET", "/tables/T1/orders", nil, token)
	expectStatus(t, "table orders", status, http.StatusOK, body)
	var history []map[string]interface{}
	if err := json.Unmarshal(body, &history); err != nil || len(history) != 1 {
		t.Fatalf("table history: got %s", body)
	}

	status, body = httpDo(t, server, "GET", "/dashboard", nil, token)
	expectStatus(t, "dashboard", status, http.StatusOK, body)
	stats := decodeObject(t, body)
	if stats["today_orders"] != float64(1) {
		t.Errorf("today_orders: got %v, want 1", stats["today_orders"])
	}
	if revenue := decimal.RequireFromString(stats["today_revenue"].(string)); !revenue.Equal(decimal.NewFromInt(480)) {
		t.Errorf("today_revenue: got %s, want 480", revenue)
	}

	// --- 10. Role checks ---
	createStaff(t, ctx, queries, "Kabir", "1111", "CASHIER")
	cashier := login(t, server, "Kabir", "1111")
	status, body = httpDo(t, server, "POST", "/menu", map[string]interface{}{
		"name": "Lassi", "category": "Beverages", "price": "60",
	}, cashier)
	expectStatus(t, "cashier creates menu item", status, http.StatusForbidden, body)
	status, body = httpDo(t, server, "GET", "/menu", nil, cashier)
	expectStatus(t, "cashier reads menu", status, http.StatusOK, body)
	status, body = httpDo(t, server, "GET", "/staff", nil, cashier)
	expectStatus(t, "cashier lists staff", status, http.StatusForbidden, body)

	// --- 11. Staff management ---
	status, body = httpDo(t, server, "POST", "/staff", map[string]string{
		"name": "Kiran", "role": "KITCHEN", "pin": "2468",
	}, token)
	expectStatus(t, "create staff", status, http.StatusCreated, body)
	kiran := decodeObject(t, body)
	login(t, server, "Kiran", "2468")

	status, body = httpDo(t, server, "DELETE", "/staff/"+kiran["id"].(string), nil, token)
	expectStatus(t, "deactivate staff", status, http.StatusNoContent, body)
	status, body = httpDo(t, server, "POST", "/auth/login", map[string]string{"name": "Kiran", "pin": "2468"}, "")
	expectStatus(t, "deactivated login", status, http.StatusUnauthorized, body)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return connStr, cleanup
}

func createStaff(t *testing.T, ctx context.Context, q *database.Queries, name, pin, role string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	if _, err := q.CreateStaff(ctx, database.CreateStaffParams{Name: name, PinHash: string(hashed), Role: role}); err != nil {
		t.Fatalf("create staff %s: %v", name, err)
	}
}

func login(t *testing.T, server *httptest.Server, name, pin string) string {
	t.Helper()
	status, body := httpDo(t, server, "POST", "/auth/login", map[string]string{"name": name, "pin": pin}, "")
	expectStatus(t, "login "+name, status, http.StatusOK, body)
	token, ok := decodeObject(t, body)["access_token"].(string)
	if !ok || token == "" {
		t.Fatalf("login failed: no access_token in response: %s", body)
	}
	return token
}

func createMenuItem(t *testing.T, server *httptest.Server, token, name, price string) string {
	t.Helper()
	status, body := httpDo(t, server, "POST", "/menu", map[string]interface{}{
		"name":     name,
		"category": "Test",
		"price":    price,
	}, token)
	expectStatus(t, "create menu item "+name, status, http.StatusCreated, body)
	return decodeObject(t, body)["id"].(string)
}

func findTable(t *testing.T, server *httptest.Server, token, number string) map[string]interface{} {
	t.Helper()
	status, body := httpDo(t, server, "GET", "/tables", nil, token)
	expectStatus(t, "list tables", status, http.StatusOK, body)
	var tables []map[string]interface{}
	if err := json.Unmarshal(body, &tables); err != nil {
		t.Fatalf("decode tables: %v", err)
	}
	for _, tbl := range tables {
		if tbl["table_number"] == number {
			return tbl
		}
	}
	t.Fatalf("table %s not found in %s", number, body)
	return nil
}

// --- HTTP helpers ---

func httpDo(t *testing.T, server *httptest.Server, method, path string, body interface{}, token string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, data
}

func expectStatus(t *testing.T, step string, got, want int, body []byte) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: status %d, want %d; body: %s", step, got, want, body)
	}
}

func decodeObject(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode response %s: %v", body, err)
	}
	return result
}
