package models

import "time"

// Menu types.
const (
	MenuBreakfast = "breakfast"
	MenuLunch     = "lunch"
	MenuDinner    = "dinner"
	MenuSnack     = "snack"
)

// Menu is a priced set of dishes served together.
type Menu struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	Type        string     `json:"type" db:"type"`
	Price       float64    `json:"price" db:"price"`
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	Dishes      []MenuDish `json:"dishes,omitempty"`
}

// MenuDish is one dish of a menu with its portion count. The dish columns are read
// from the dishes table.
type MenuDish struct {
	ID       int64   `json:"id" db:"id"`
	MenuID   int64   `json:"menu_id" db:"menu_id"`
	DishID   int64   `json:"dish_id" db:"dish_id"`
	Quantity int     `json:"quantity" db:"quantity"`
	DishName string  `json:"dish_name" db:"dish_name"`
	Category string  `json:"category" db:"category"`
	Price    float64 `json:"price" db:"price"`
}

// MenuFilters defines the available filters for listing menus.
type MenuFilters struct {
	Type     *string `form:"type"`
	Status   *string `form:"status"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
