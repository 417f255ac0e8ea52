package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
)

// SalaryRepository defines the database operations for salary records.
type SalaryRepository interface {
	CreateSalary(ctx context.Context, executor SQLExecutor, salary *models.Salary) (int64, error)
	GetSalaryByID(ctx context.Context, id int64) (*models.Salary, error)
	GetSalaries(ctx context.Context, filters models.SalaryFilters) ([]models.Salary, int, error)
	MarkSalaryPaid(ctx context.Context, executor SQLExecutor, id int64, paymentDate string) error
}

type salaryRepository struct {
	db *sql.DB
}

func NewSalaryRepository(db *sql.DB) SalaryRepository {
	return &salaryRepository{db: db}
}

const salaryColumns = `id, employee_id, year, month, pay_period, base_salary, allowance, bonus, deduction,
	net_salary, status, payment_date, created_at, updated_at`

func scanSalaryRow(row scanner, extra ...interface{}) (*models.Salary, error) {
	s := &models.Salary{}
	var paymentDate sql.NullTime
	dest := []interface{}{&s.ID, &s.EmployeeID, &s.Year, &s.Month, &s.PayPeriod, &s.BaseSalary, &s.Allowance,
		&s.Bonus, &s.Deduction, &s.NetSalary, &s.Status, &paymentDate, &s.CreatedAt, &s.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	s.PaymentDate = dateString(paymentDate)
	return s, nil
}

func (r *salaryRepository) CreateSalary(ctx context.Context, executor SQLExecutor, salary *models.Salary) (int64, error) {
	query := `INSERT INTO salaries
	            (employee_id, year, month, pay_period, base_salary, allowance, bonus, deduction,
	             net_salary, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`
	now := nowUTC()
	salary.CreatedAt, salary.UpdatedAt = now, now

	err := executor.QueryRowContext(ctx, query,
		salary.EmployeeID, salary.Year, salary.Month, salary.PayPeriod, salary.BaseSalary, salary.Allowance,
		salary.Bonus, salary.Deduction, salary.NetSalary, salary.Status, salary.CreatedAt, salary.UpdatedAt,
	).Scan(&salary.ID)
	if err != nil {
		return 0, translateError(err, "creating salary")
	}
	return salary.ID, nil
}

func (r *salaryRepository) GetSalaryByID(ctx context.Context, id int64) (*models.Salary, error) {
	query := `SELECT ` + salaryColumns + ` FROM salaries WHERE id = $1`
	salary, err := scanSalaryRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting salary by ID %d: %v", ErrDatabaseError, id, err)
	}
	return salary, nil
}

func (r *salaryRepository) GetSalaries(ctx context.Context, filters models.SalaryFilters) ([]models.Salary, int, error) {
	salaries := []models.Salary{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + salaryColumns + `, COUNT(*) OVER() AS total_count FROM salaries`)

	var where whereBuilder
	if filters.EmployeeID != nil {
		where.add("employee_id = $%d", *filters.EmployeeID)
	}
	if filters.Year != nil {
		where.add("year = $%d", *filters.Year)
	}
	if filters.Month != nil {
		where.add("month = $%d", *filters.Month)
	}
	if filters.Status != nil && *filters.Status != "" {
		where.add("status = $%d", *filters.Status)
	}
	where.writeTo(&queryBuilder, "year DESC, month DESC, id DESC", filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying salaries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSalaryRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning salary: %v", ErrDatabaseError, err)
		}
		salaries = append(salaries, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating salary rows: %v", ErrDatabaseError, err)
	}
	return salaries, totalCount, nil
}

// MarkSalaryPaid flips a pending salary to paid. It returns ErrNotFound when no pending row matched.
func (r *salaryRepository) MarkSalaryPaid(ctx context.Context, executor SQLExecutor, id int64, paymentDate string) error {
	query := `UPDATE salaries SET status = $1, payment_date = $2, updated_at = $3
	          WHERE id = $4 AND status = $5`
	result, err := executor.ExecContext(ctx, query, models.SalaryPaid, paymentDate, nowUTC(), id, models.SalaryPending)
	if err != nil {
		return fmt.Errorf("%w: marking salary %d paid: %v", ErrDatabaseError, id, err)
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("marking salary %d paid", id))
	return err
}
