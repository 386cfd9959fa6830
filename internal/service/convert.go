package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tasteparadise/pos/internal/database"
	"github.com/tasteparadise/pos/internal/pos"
)

// ToOrder assembles a pos.Order from its row and its item rows.
func ToOrder(o database.Order, items []database.OrderItem) pos.Order {
	out := pos.Order{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		Status:        pos.OrderStatus(o.Status),
		PaymentStatus: pos.PaymentStatus(o.PaymentStatus),
		TotalAmount:   numericToDecimal(o.TotalAmount),
		KOTGenerated:  o.KotGenerated,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Lines:         make([]pos.OrderLine, 0, len(items)),
	}
	if o.TableNumber.Valid {
		out.TableNumber = o.TableNumber.String
	}
	if o.PaymentMethod.Valid {
		out.PaymentMethod = pos.PaymentMethod(o.PaymentMethod.String)
	}
	if o.EstimatedCompletion.Valid {
		t := o.EstimatedCompletion.Time
		out.EstimatedCompletion = &t
	}
	for _, it := range items {
		out.Lines = append(out.Lines, pos.OrderLine{
			MenuItemID: it.MenuItemID,
			Name:       it.MenuItemName,
			Quantity:   int(it.Quantity),
			Price:      numericToDecimal(it.Price),
			Note:       it.SpecialInstructions,
		})
	}
	return out
}

// ToOrders groups item rows by order and assembles every order, keeping the
// order of rows.
func ToOrders(rows []database.Order, items []database.OrderItem) []pos.Order {
	byOrder := make(map[uuid.UUID][]database.OrderItem, len(rows))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	out := make([]pos.Order, len(rows))
	for i, o := range rows {
		out[i] = ToOrder(o, byOrder[o.ID])
	}
	return out
}

// OrderIDs returns the IDs of rows, for batch item lookups.
func OrderIDs(rows []database.Order) []uuid.UUID {
	ids := make([]uuid.UUID, len(rows))
	for i, o := range rows {
		ids[i] = o.ID
	}
	return ids
}

func ToMenuItem(m database.MenuItem) pos.MenuItem {
	out := pos.MenuItem{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Price:           numericToDecimal(m.Price),
		Category:        m.Category,
		IsAvailable:     m.IsAvailable,
		PreparationTime: int(m.PreparationTime),
		CreatedAt:       m.CreatedAt,
	}
	if m.ImageUrl.Valid {
		s := m.ImageUrl.String
		out.ImageURL = &s
	}
	return out
}

func ToTable(t database.RestaurantTable) pos.Table {
	out := pos.Table{
		ID:        t.ID,
		Number:    t.TableNumber,
		Capacity:  int(t.Capacity),
		Status:    pos.TableStatus(t.Status),
		PositionX: int(t.PositionX),
		PositionY: int(t.PositionY),
		CreatedAt: t.CreatedAt,
	}
	if t.CurrentOrderID.Valid {
		id := uuid.UUID(t.CurrentOrderID.Bytes)
		out.CurrentOrderID = &id
	}
	return out
}

// ToTicket decodes a kitchen ticket row. Items that fail to decode are
// reported as an empty list rather than failing the whole listing.
func ToTicket(k database.KitchenTicket) pos.KitchenTicket {
	out := pos.KitchenTicket{
		ID:          k.ID,
		OrderID:     k.OrderID,
		OrderNumber: k.OrderNumber,
		Status:      pos.OrderStatus(k.Status),
		CreatedAt:   k.CreatedAt,
	}
	if k.TableNumber.Valid {
		out.TableNumber = k.TableNumber.String
	}
	if err := json.Unmarshal(k.Items, &out.Items); err != nil || out.Items == nil {
		out.Items = []pos.TicketItem{}
	}
	return out
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// DecimalToNumeric converts d for a NUMERIC(12,2) column.
func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
