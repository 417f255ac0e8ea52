package models

import "time"

// Stock movement directions.
const (
	StockIn  = "in"
	StockOut = "out"
)

// Ingredient is a stocked raw material.
type Ingredient struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Category      string    `json:"category" db:"category"`
	Unit          string    `json:"unit" db:"unit"`
	CurrentStock  float64   `json:"current_stock" db:"current_stock"`
	MinimumStock  float64   `json:"minimum_stock" db:"minimum_stock"`
	SupplierID    *int64    `json:"supplier_id,omitempty" db:"supplier_id"`
	Price         float64   `json:"price" db:"price"`
	ExpiryDate    *string   `json:"expiry_date,omitempty" db:"expiry_date"` // YYYY-MM-DD
	NutritionInfo *string   `json:"nutrition_info,omitempty" db:"nutrition_info"`
	Calories      *float64  `json:"calories,omitempty" db:"calories"`
	Restrictions  *string   `json:"restrictions,omitempty" db:"restrictions"`
	Purchaser     *string   `json:"purchaser,omitempty" db:"purchaser"`
	Origin        *string   `json:"origin,omitempty" db:"origin"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// IngredientFilters defines the available filters for listing ingredients.
type IngredientFilters struct {
	Category   *string `form:"category"`
	SupplierID *int64  `form:"supplier_id"`
	LowStock   bool    `form:"low_stock"` // current_stock <= minimum_stock
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
