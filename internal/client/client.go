// Package client is the terminal side of the POS API: a JSON-over-HTTP
// collaborator for orders, tables, menu and kitchen tickets, plus the
// websocket event stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tasteparadise/pos/internal/pos"
)

const defaultTimeout = 15 * time.Second

// TransportError reports a failed collaborator call: the request could not
// be sent, or the API answered with a non-2xx status.
type TransportError struct {
	Op         string
	StatusCode int    // 0 when no response was received
	Message    string // the API's "error" field, when present
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Staff is the account a session is logged in as.
type Staff struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

// Client calls the POS API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a Client for the API at baseURL, e.g. http://localhost:8001.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges a staff name and PIN for an access token, which the client
// keeps for later calls.
func (c *Client) Login(ctx context.Context, name, pin string) (Staff, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
		Staff       Staff  `json:"staff"`
	}
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", map[string]string{"name": name, "pin": pin}, &resp)
	if err != nil {
		return Staff{}, err
	}
	c.SetToken(resp.AccessToken)
	return resp.Staff, nil
}

// --- Orders ---

func (c *Client) ListOrders(ctx context.Context) ([]pos.Order, error) {
	var out []pos.Order
	err := c.do(ctx, "list orders", http.MethodGet, "/orders", nil, &out)
	return out, err
}

func (c *Client) CreateOrder(ctx context.Context, draft pos.OrderDraft) (pos.Order, error) {
	var out pos.Order
	err := c.do(ctx, "create order", http.MethodPost, "/orders", draft, &out)
	return out, err
}

func (c *Client) UpdateOrder(ctx context.Context, id uuid.UUID, patch pos.OrderPatch) (pos.Order, error) {
	var out pos.Order
	err := c.do(ctx, "update order", http.MethodPut, "/orders/"+id.String(), patch, &out)
	return out, err
}

// --- Tables ---

func (c *Client) ListTables(ctx context.Context) ([]pos.Table, error) {
	var out []pos.Table
	err := c.do(ctx, "list tables", http.MethodGet, "/tables", nil, &out)
	return out, err
}

func (c *Client) CreateTable(ctx context.Context, draft pos.TableDraft) (pos.Table, error) {
	var out pos.Table
	err := c.do(ctx, "create table", http.MethodPost, "/tables", draft, &out)
	return out, err
}

func (c *Client) UpdateTable(ctx context.Context, id uuid.UUID, patch pos.TablePatch) (pos.Table, error) {
	var out pos.Table
	err := c.do(ctx, "update table", http.MethodPut, "/tables/"+id.String(), patch, &out)
	return out, err
}

// InitializeTables creates the default layout on an empty floor. It returns
// no table when the floor already has some.
func (c *Client) InitializeTables(ctx context.Context) ([]pos.Table, error) {
	var out struct {
		Tables []pos.Table `json:"tables"`
	}
	err := c.do(ctx, "initialize tables", http.MethodPost, "/tables/initialize-default", nil, &out)
	return out.Tables, err
}

// ClearTable marks a table available and detaches its current order.
func (c *Client) ClearTable(ctx context.Context, number string) (pos.Table, error) {
	var out pos.Table
	err := c.do(ctx, "clear table", http.MethodPost, "/tables/"+url.PathEscape(number)+"/clear", nil, &out)
	return out, err
}

// --- Menu ---

func (c *Client) ListMenuItems(ctx context.Context) ([]pos.MenuItem, error) {
	var out []pos.MenuItem
	err := c.do(ctx, "list menu items", http.MethodGet, "/menu", nil, &out)
	return out, err
}

func (c *Client) CreateMenuItem(ctx context.Context, draft pos.MenuItemDraft) (pos.MenuItem, error) {
	var out pos.MenuItem
	err := c.do(ctx, "create menu item", http.MethodPost, "/menu", draft, &out)
	return out, err
}

func (c *Client) UpdateMenuItem(ctx context.Context, id uuid.UUID, draft pos.MenuItemDraft) (pos.MenuItem, error) {
	var out pos.MenuItem
	err := c.do(ctx, "update menu item", http.MethodPut, "/menu/"+id.String(), draft, &out)
	return out, err
}

func (c *Client) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, "delete menu item", http.MethodDelete, "/menu/"+id.String(), nil, nil)
}

// --- Kitchen ---

func (c *Client) ListKitchenTickets(ctx context.Context) ([]pos.KitchenTicket, error) {
	var out []pos.KitchenTicket
	err := c.do(ctx, "list kitchen tickets", http.MethodGet, "/kot", nil, &out)
	return out, err
}

func (c *Client) CreateKitchenTicket(ctx context.Context, orderID uuid.UUID) (pos.KitchenTicket, error) {
	var out pos.KitchenTicket
	err := c.do(ctx, "create kitchen ticket", http.MethodPost, "/kot/"+orderID.String(), nil, &out)
	return out, err
}

// Dashboard returns today's figures as computed by the API.
func (c *Client) Dashboard(ctx context.Context) (pos.DashboardStats, error) {
	var out pos.DashboardStats
	err := c.do(ctx, "dashboard", http.MethodGet, "/dashboard", nil, &out)
	return out, err
}

// --- Helpers ---

// do sends body as JSON and decodes a 2xx response into out (when non-nil).
// Every failure is a *TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
