package models

import "time"

// Catalogue entry statuses shared by dishes and menus.
const (
	CatalogueActive   = "active"
	CatalogueInactive = "inactive"
)

// Dish is a single cooked item of the meal catalogue.
type Dish struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Category     string    `json:"category" db:"category"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Ingredients  *string   `json:"ingredients,omitempty" db:"ingredients"`   // free-text composition
	Restrictions *string   `json:"restrictions,omitempty" db:"restrictions"` // comma-separated, e.g. "seafood,spicy"
	Calories     *int      `json:"calories,omitempty" db:"calories"`
	Price        float64   `json:"price" db:"price"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DishFilters defines the available filters for listing dishes.
type DishFilters struct {
	Category *string `form:"category"`
	Status   *string `form:"status"`
	Search   *string `form:"search"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// RestrictedDish names a dish that conflicts with a dietary restriction.
type RestrictedDish struct {
	DishID      int64  `json:"dish_id"`
	DishName    string `json:"dish_name"`
	Restriction string `json:"restriction"`
}

// RestrictionCheck is the result of matching dishes against dietary restrictions.
type RestrictionCheck struct {
	RestrictedDishes []RestrictedDish `json:"restricted_dishes"`
	HasRestrictions  bool             `json:"has_restrictions"`
}
