package models

import "time"

// Transaction directions.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction statuses.
const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionCancelled = "cancelled"
)

// Categories recorded automatically when money moves.
const (
	CategoryCustomerOrder = "customer_order"
	CategorySalary        = "salary"
	CategoryPurchaseOrder = "purchase_order"
)

// Parties a transaction can point at through RelatedType/RelatedID.
const (
	RelatedCustomer = "customer"
	RelatedEmployee = "employee"
	RelatedSupplier = "supplier"
)

// Transaction is one line of the financial ledger.
type Transaction struct {
	ID              int64     `json:"id" db:"id"`
	Type            string    `json:"type" db:"type"`
	Category        string    `json:"category" db:"category"`
	Amount          float64   `json:"amount" db:"amount"`
	Description     *string   `json:"description,omitempty" db:"description"`
	TransactionDate string    `json:"transaction_date" db:"transaction_date"` // YYYY-MM-DD
	PaymentMethod   *string   `json:"payment_method,omitempty" db:"payment_method"`
	Status          string    `json:"status" db:"status"`
	RelatedID       *int64    `json:"related_id,omitempty" db:"related_id"`
	RelatedType     *string   `json:"related_type,omitempty" db:"related_type"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// TransactionFilters defines the available filters for listing transactions.
type TransactionFilters struct {
	Type        *string `form:"type"`
	Status      *string `form:"status"`
	Category    *string `form:"category"`
	RelatedType *string `form:"related_type"`
	RelatedID   *int64  `form:"related_id"`
	StartDate   *string `form:"start_date"` // YYYY-MM-DD, inclusive
	EndDate     *string `form:"end_date"`   // YYYY-MM-DD, inclusive
	Page        int     `form:"page"`
	PageSize    int     `form:"page_size"`
}
