package models

import "time"

// Customer is a confinement-care client who receives meals and services.
type Customer struct {
	ID                  int64     `json:"id" db:"id"`
	UserID              *int64    `json:"user_id,omitempty" db:"user_id"`
	Name                string    `json:"name" db:"name"`
	Age                 *int      `json:"age,omitempty" db:"age"`
	Gender              *string   `json:"gender,omitempty" db:"gender"`
	Contact             *string   `json:"contact,omitempty" db:"contact"`
	DeliveryDate        *string   `json:"delivery_date,omitempty" db:"delivery_date"` // YYYY-MM-DD
	CheckInDate         *string   `json:"check_in_date,omitempty" db:"check_in_date"`
	CheckOutDate        *string   `json:"check_out_date,omitempty" db:"check_out_date"`
	DietaryRestrictions *string   `json:"dietary_restrictions,omitempty" db:"dietary_restrictions"`
	Preferences         *string   `json:"preferences,omitempty" db:"preferences"`
	Status              string    `json:"status" db:"status"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerFilters defines the available filters for listing customers.
type CustomerFilters struct {
	Status   *string `form:"status"`
	Search   *string `form:"search"`
	UserID   *int64  `form:"user_id"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
