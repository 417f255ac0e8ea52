package models

import "time"

// Roles known to the access policy.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleCustomer = "customer"
)

// User represents a login account.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // never serialized
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Credentials for login request
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenPair is returned by login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
	User         *User  `json:"user"`
}

// CurrentUser is the payload of GET /auth/me.
type CurrentUser struct {
	User        *User    `json:"user"`
	Permissions []string `json:"permissions"`
}

// UserFilters defines the available filters for listing users.
type UserFilters struct {
	Role     *string `form:"role"`
	IsActive *bool   `form:"is_active"`
	Search   *string `form:"search"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// UserDetail is a user together with the customer or employee profile linked to it.
type UserDetail struct {
	User     *User     `json:"user"`
	Customer *Customer `json:"customer,omitempty"`
	Employee *Employee `json:"employee,omitempty"`
}
