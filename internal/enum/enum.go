package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusCooking   = "cooking"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusReserved  = "reserved"
	TableStatusCleaning  = "cleaning"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	StaffRoleManager = "MANAGER"
	StaffRoleCashier = "CASHIER"
	StaffRoleKitchen = "KITCHEN"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

// ── Group B: Derived labels (never stored) ──

const (
	KitchenStatusActive  = "active"
	KitchenStatusBusy    = "busy"
	KitchenStatusOffline = "offline"
)

// Websocket event types broadcast by the API.
const (
	EventOrderCreated  = "order.created"
	EventOrderUpdated  = "order.updated"
	EventTicketCreated = "kot.created"
	EventTableUpdated  = "table.updated"
	EventMenuUpdated   = "menu.updated"
)
