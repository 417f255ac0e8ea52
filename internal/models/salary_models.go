package models

import "time"

const (
	SalaryPending = "pending"
	SalaryPaid    = "paid"
)

// Salary is one employee's pay record for a month.
// NetSalary = BaseSalary + Allowance + Bonus - Deduction, fixed at creation.
type Salary struct {
	ID          int64     `json:"id" db:"id"`
	EmployeeID  int64     `json:"employee_id" db:"employee_id"`
	Year        int       `json:"year" db:"year"`
	Month       int       `json:"month" db:"month"`
	PayPeriod   string    `json:"pay_period" db:"pay_period"` // YYYY-MM
	BaseSalary  float64   `json:"base_salary" db:"base_salary"`
	Allowance   float64   `json:"allowance" db:"allowance"`
	Bonus       float64   `json:"bonus" db:"bonus"`
	Deduction   float64   `json:"deduction" db:"deduction"`
	NetSalary   float64   `json:"net_salary" db:"net_salary"`
	Status      string    `json:"status" db:"status"`
	PaymentDate *string   `json:"payment_date,omitempty" db:"payment_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type SalaryFilters struct {
	EmployeeID *int64  `form:"employee_id"`
	Year       *int    `form:"year"`
	Month      *int    `form:"month"`
	Status     *string `form:"status"`
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
