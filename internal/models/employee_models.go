package models

import "time"

// Employee is a member of staff. Salaries and served orders reference it.
type Employee struct {
	ID              int64     `json:"id" db:"id"`
	UserID          *int64    `json:"user_id,omitempty" db:"user_id"`
	Name            string    `json:"name" db:"name"`
	Position        string    `json:"position" db:"position"`
	Contact         string    `json:"contact" db:"contact"`
	BaseSalary      float64   `json:"base_salary" db:"base_salary"`
	JoiningDate     *string   `json:"joining_date,omitempty" db:"joining_date"` // YYYY-MM-DD
	Education       *string   `json:"education,omitempty" db:"education"`
	WorkExperience  *string   `json:"work_experience,omitempty" db:"work_experience"`
	WorkPerformance *string   `json:"work_performance,omitempty" db:"work_performance"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type EmployeeFilters struct {
	Status   *string `form:"status"`
	Position *string `form:"position"`
	UserID   *int64  `form:"user_id"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
