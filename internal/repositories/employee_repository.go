package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
)

// EmployeeRepository defines the database operations for employees.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, executor SQLExecutor, employee *models.Employee) (int64, error)
	GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error)
	GetEmployees(ctx context.Context, filters models.EmployeeFilters) ([]models.Employee, int, error)
	UpdateEmployee(ctx context.Context, executor SQLExecutor, employee *models.Employee) error
	DeleteEmployee(ctx context.Context, executor SQLExecutor, id int64) error
}

type employeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, user_id, name, position, contact, base_salary, joining_date, education,
	work_experience, work_performance, status, created_at, updated_at`

func scanEmployeeRow(row scanner, extra ...interface{}) (*models.Employee, error) {
	e := &models.Employee{}
	var joining sql.NullTime
	var contact sql.NullString
	dest := []interface{}{&e.ID, &e.UserID, &e.Name, &e.Position, &contact, &e.BaseSalary, &joining, &e.Education,
		&e.WorkExperience, &e.WorkPerformance, &e.Status, &e.CreatedAt, &e.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	e.Contact = contact.String
	e.JoiningDate = dateString(joining)
	return e, nil
}

func (r *employeeRepository) CreateEmployee(ctx context.Context, executor SQLExecutor, employee *models.Employee) (int64, error) {
	query := `INSERT INTO employees (user_id, name, position, contact, base_salary, joining_date, education,
	                                 work_experience, work_performance, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`

	now := nowUTC()
	employee.CreatedAt, employee.UpdatedAt = now, now
	if employee.Status == "" {
		employee.Status = "active"
	}

	err := executor.QueryRowContext(ctx, query,
		employee.UserID, employee.Name, employee.Position, employee.Contact, employee.BaseSalary, employee.JoiningDate,
		employee.Education, employee.WorkExperience, employee.WorkPerformance, employee.Status,
		employee.CreatedAt, employee.UpdatedAt,
	).Scan(&employee.ID)
	if err != nil {
		return 0, translateError(err, "creating employee")
	}
	return employee.ID, nil
}

func (r *employeeRepository) GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	employee, err := scanEmployeeRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting employee by ID %d: %v", ErrDatabaseError, id, err)
	}
	return employee, nil
}

func (r *employeeRepository) GetEmployees(ctx context.Context, filters models.EmployeeFilters) ([]models.Employee, int, error) {
	employees := []models.Employee{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + employeeColumns + `, COUNT(*) OVER() AS total_count FROM employees`)

	var where whereBuilder
	if filters.Status != nil && *filters.Status != "" {
		where.add("status = $%d", *filters.Status)
	}
	if filters.Position != nil && *filters.Position != "" {
		where.add("position = $%d", *filters.Position)
	}
	if filters.UserID != nil {
		where.add("user_id = $%d", *filters.UserID)
	}
	where.writeTo(&queryBuilder, "name ASC, id ASC", filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying employees: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEmployeeRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning employee: %v", ErrDatabaseError, err)
		}
		employees = append(employees, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating employee rows: %v", ErrDatabaseError, err)
	}
	return employees, totalCount, nil
}

func (r *employeeRepository) UpdateEmployee(ctx context.Context, executor SQLExecutor, employee *models.Employee) error {
	query := `UPDATE employees SET
	            name = $1, position = $2, contact = $3, base_salary = $4, joining_date = $5, education = $6,
	            work_experience = $7, work_performance = $8, status = $9, updated_at = $10
	          WHERE id = $11`
	employee.UpdatedAt = nowUTC()
	result, err := executor.ExecContext(ctx, query,
		employee.Name, employee.Position, employee.Contact, employee.BaseSalary, employee.JoiningDate, employee.Education,
		employee.WorkExperience, employee.WorkPerformance, employee.Status, employee.UpdatedAt, employee.ID,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("updating employee ID %d", employee.ID))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("employee update ID %d", employee.ID))
	return err
}

// DeleteEmployee returns ErrForeignKeyViolation while salaries or orders reference the employee.
func (r *employeeRepository) DeleteEmployee(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateError(err, fmt.Sprintf("deleting employee ID %d", id))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("deleting employee ID %d", id))
	return err
}
