package models

import "time"

const (
	PurchaseOrderPending   = "pending"
	PurchaseOrderDelivered = "delivered"
	PurchaseOrderCancelled = "cancelled"
)

// PurchaseOrder is an order placed with a supplier. TotalAmount is fixed at creation.
type PurchaseOrder struct {
	ID               int64               `json:"id" db:"id"`
	SupplierID       int64               `json:"supplier_id" db:"supplier_id"`
	OrderDate        string              `json:"order_date" db:"order_date"` // YYYY-MM-DD
	ExpectedDelivery *string             `json:"expected_delivery,omitempty" db:"expected_delivery"`
	TotalAmount      float64             `json:"total_amount" db:"total_amount"`
	Status           string              `json:"status" db:"status"`
	Notes            *string             `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
	Items            []PurchaseOrderItem `json:"items,omitempty"`
}

type PurchaseOrderItem struct {
	ID              int64   `json:"id" db:"id"`
	PurchaseOrderID int64   `json:"purchase_order_id" db:"purchase_order_id"`
	IngredientID    int64   `json:"ingredient_id" db:"ingredient_id"`
	Quantity        float64 `json:"quantity" db:"quantity"`
	UnitPrice       float64 `json:"unit_price" db:"unit_price"`
	Subtotal        float64 `json:"subtotal" db:"subtotal"`
}

type PurchaseOrderFilters struct {
	Status     *string `form:"status"`
	SupplierID *int64  `form:"supplier_id"`
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
