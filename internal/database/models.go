package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type KitchenTicket struct {
	ID          uuid.UUID   `json:"id"`
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	TableNumber pgtype.Text `json:"table_number"`
	Items       []byte      `json:"items"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

type MenuItem struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Price           pgtype.Numeric `json:"price"`
	Category        string         `json:"category"`
	ImageUrl        pgtype.Text    `json:"image_url"`
	IsAvailable     bool           `json:"is_available"`
	PreparationTime int32          `json:"preparation_time"`
	CreatedAt       time.Time      `json:"created_at"`
}

type Order struct {
	ID                  uuid.UUID          `json:"id"`
	CustomerName        string             `json:"customer_name"`
	TableNumber         pgtype.Text        `json:"table_number"`
	Status              string             `json:"status"`
	PaymentStatus       string             `json:"payment_status"`
	PaymentMethod       pgtype.Text        `json:"payment_method"`
	TotalAmount         pgtype.Numeric     `json:"total_amount"`
	KotGenerated        bool               `json:"kot_generated"`
	EstimatedCompletion pgtype.Timestamptz `json:"estimated_completion"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

type OrderItem struct {
	ID                  uuid.UUID      `json:"id"`
	OrderID             uuid.UUID      `json:"order_id"`
	Position            int32          `json:"position"`
	MenuItemID          uuid.UUID      `json:"menu_item_id"`
	MenuItemName        string         `json:"menu_item_name"`
	Quantity            int32          `json:"quantity"`
	Price               pgtype.Numeric `json:"price"`
	SpecialInstructions string         `json:"special_instructions"`
}

type RestaurantTable struct {
	ID             uuid.UUID   `json:"id"`
	TableNumber    string      `json:"table_number"`
	Capacity       int32       `json:"capacity"`
	Status         string      `json:"status"`
	CurrentOrderID pgtype.UUID `json:"current_order_id"`
	PositionX      int32       `json:"position_x"`
	PositionY      int32       `json:"position_y"`
	CreatedAt      time.Time   `json:"created_at"`
}

type Staff struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	PinHash   string    `json:"pin_hash"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
