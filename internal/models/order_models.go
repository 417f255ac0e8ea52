package models

import "time"

// Order types.
const (
	OrderTypeMeal    = "meal"
	OrderTypeService = "service"
)

// Order lifecycle statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusCancelled = "cancelled"
)

// Order item types. ItemID points at a dish, menu or service depending on ItemType.
const (
	ItemTypeDish    = "dish"
	ItemTypeMenu    = "menu"
	ItemTypeService = "service"
)

// Order is a customer order. TotalAmount always equals the sum of its items' subtotals.
type Order struct {
	ID                int64       `json:"id" db:"id"`
	CustomerID        int64       `json:"customer_id" db:"customer_id"`
	OrderType         string      `json:"order_type" db:"order_type"`
	OrderDate         time.Time   `json:"order_date" db:"order_date"`
	DeliveryDate      *string     `json:"delivery_date,omitempty" db:"delivery_date"` // YYYY-MM-DD
	DeliveryAddress   *string     `json:"delivery_address,omitempty" db:"delivery_address"`
	BookerName        *string     `json:"booker_name,omitempty" db:"booker_name"`
	BookerRole        *string     `json:"booker_role,omitempty" db:"booker_role"`
	ServiceEmployeeID *int64      `json:"service_employee_id,omitempty" db:"service_employee_id"`
	TotalAmount       float64     `json:"total_amount" db:"total_amount"`
	PaymentStatus     string      `json:"payment_status" db:"payment_status"`
	PaymentMethod     *string     `json:"payment_method,omitempty" db:"payment_method"`
	Status            string      `json:"status" db:"status"`
	Notes             *string     `json:"notes,omitempty" db:"notes"`
	Rating            *int        `json:"rating,omitempty" db:"rating"`
	Feedback          *string     `json:"feedback,omitempty" db:"feedback"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
	Items             []OrderItem `json:"items,omitempty"`
}

// OrderItem is a line of an order.
type OrderItem struct {
	ID        int64     `json:"id" db:"id"`
	OrderID   int64     `json:"order_id" db:"order_id"`
	ItemType  string    `json:"item_type" db:"item_type"`
	ItemID    int64     `json:"item_id" db:"item_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
	Subtotal  float64   `json:"subtotal" db:"subtotal"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	CustomerID    *int64  `form:"customer_id"`
	OrderType     *string `form:"order_type"`
	Status        *string `form:"status"`
	PaymentStatus *string `form:"payment_status"`
	Page          int     `form:"page"`
	PageSize      int     `form:"page_size"`
}
