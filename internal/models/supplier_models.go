package models

import "time"

// Supplier delivers ingredients against purchase orders.
type Supplier struct {
	ID            int64        `json:"id" db:"id"`
	Name          string       `json:"name" db:"name"`
	ContactPerson string       `json:"contact_person" db:"contact_person"`
	ContactPhone  string       `json:"contact_phone" db:"contact_phone"`
	Address       *string      `json:"address,omitempty" db:"address"`
	Products      *string      `json:"products,omitempty" db:"products"`
	Rating        float64      `json:"rating" db:"rating"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
	Ingredients   []Ingredient `json:"ingredients,omitempty"` // populated on detail reads
}

type SupplierFilters struct {
	Search   *string `form:"search"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
