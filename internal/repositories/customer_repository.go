package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
)

// CustomerRepository defines the interface for customer-related database operations.
type CustomerRepository interface {
	CreateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) (int64, error)
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error) // Customers, total count, error
	UpdateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, executor SQLExecutor, id int64) error
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, user_id, name, age, gender, contact, delivery_date, check_in_date, check_out_date,
	dietary_restrictions, preferences, status, created_at, updated_at`

func scanCustomerRow(row scanner, extra ...interface{}) (*models.Customer, error) {
	c := &models.Customer{}
	var deliveryDate, checkIn, checkOut sql.NullTime
	dest := []interface{}{&c.ID, &c.UserID, &c.Name, &c.Age, &c.Gender, &c.Contact, &deliveryDate, &checkIn, &checkOut,
		&c.DietaryRestrictions, &c.Preferences, &c.Status, &c.CreatedAt, &c.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.DeliveryDate = dateString(deliveryDate)
	c.CheckInDate = dateString(checkIn)
	c.CheckOutDate = dateString(checkOut)
	return c, nil
}

// CreateCustomer inserts a new customer into the database.
func (r *customerRepository) CreateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) (int64, error) {
	query := `INSERT INTO customers (user_id, name, age, gender, contact, delivery_date, check_in_date, check_out_date,
	                                 dietary_restrictions, preferences, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id`

	now := nowUTC()
	customer.CreatedAt, customer.UpdatedAt = now, now
	if customer.Status == "" {
		customer.Status = "active"
	}

	err := executor.QueryRowContext(ctx, query,
		customer.UserID, customer.Name, customer.Age, customer.Gender, customer.Contact, customer.DeliveryDate,
		customer.CheckInDate, customer.CheckOutDate, customer.DietaryRestrictions, customer.Preferences,
		customer.Status, customer.CreatedAt, customer.UpdatedAt,
	).Scan(&customer.ID)
	if err != nil {
		return 0, translateError(err, "creating customer")
	}
	return customer.ID, nil
}

// GetCustomerByID retrieves a customer by ID.
func (r *customerRepository) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	customer, err := scanCustomerRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer by ID %d: %v", ErrDatabaseError, id, err)
	}
	return customer, nil
}

// GetCustomers retrieves a list of customers with pagination and optional search.
func (r *customerRepository) GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error) {
	customers := []models.Customer{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + customerColumns + `, COUNT(*) OVER() AS total_count FROM customers`)

	var where whereBuilder
	if filters.Status != nil && *filters.Status != "" {
		where.add("status = $%d", *filters.Status)
	}
	if filters.UserID != nil {
		where.add("user_id = $%d", *filters.UserID)
	}
	if filters.Search != nil && *filters.Search != "" {
		where.add("(name ILIKE $%[1]d OR contact ILIKE $%[1]d)", "%"+strings.TrimSpace(*filters.Search)+"%")
	}
	where.writeTo(&queryBuilder, "created_at DESC, id DESC", filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying customers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCustomerRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning customer: %v", ErrDatabaseError, err)
		}
		customers = append(customers, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating customer rows: %v", ErrDatabaseError, err)
	}
	return customers, totalCount, nil
}

func (r *customerRepository) UpdateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) error {
	query := `UPDATE customers SET
	            name = $1, age = $2, gender = $3, contact = $4, delivery_date = $5, check_in_date = $6,
	            check_out_date = $7, dietary_restrictions = $8, preferences = $9, status = $10, updated_at = $11
	          WHERE id = $12`
	customer.UpdatedAt = nowUTC()
	result, err := executor.ExecContext(ctx, query,
		customer.Name, customer.Age, customer.Gender, customer.Contact, customer.DeliveryDate, customer.CheckInDate,
		customer.CheckOutDate, customer.DietaryRestrictions, customer.Preferences, customer.Status,
		customer.UpdatedAt, customer.ID,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("updating customer ID %d", customer.ID))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("customer update ID %d", customer.ID))
	return err
}

// DeleteCustomer returns ErrForeignKeyViolation while orders still reference the customer.
func (r *customerRepository) DeleteCustomer(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return translateError(err, fmt.Sprintf("deleting customer ID %d", id))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("deleting customer ID %d", id))
	return err
}
