package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
)

// SupplierRepository defines the database operations for suppliers.
type SupplierRepository interface {
	CreateSupplier(ctx context.Context, executor SQLExecutor, supplier *models.Supplier) (int64, error)
	GetSupplierByID(ctx context.Context, id int64) (*models.Supplier, error)
	GetSuppliers(ctx context.Context, filters models.SupplierFilters) ([]models.Supplier, int, error)
	UpdateSupplier(ctx context.Context, executor SQLExecutor, supplier *models.Supplier) error
	DeleteSupplier(ctx context.Context, executor SQLExecutor, id int64) error
}

type supplierRepository struct {
	db *sql.DB
}

func NewSupplierRepository(db *sql.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

const supplierColumns = `id, name, contact_person, contact_phone, address, products, rating, created_at, updated_at`

func scanSupplierRow(row scanner, extra ...interface{}) (*models.Supplier, error) {
	s := &models.Supplier{}
	dest := []interface{}{&s.ID, &s.Name, &s.ContactPerson, &s.ContactPhone, &s.Address, &s.Products, &s.Rating,
		&s.CreatedAt, &s.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *supplierRepository) CreateSupplier(ctx context.Context, executor SQLExecutor, supplier *models.Supplier) (int64, error) {
	query := `INSERT INTO suppliers (name, contact_person, contact_phone, address, products, rating, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	now := nowUTC()
	supplier.CreatedAt, supplier.UpdatedAt = now, now

	err := executor.QueryRowContext(ctx, query,
		supplier.Name, supplier.ContactPerson, supplier.ContactPhone, supplier.Address, supplier.Products,
		supplier.Rating, supplier.CreatedAt, supplier.UpdatedAt,
	).Scan(&supplier.ID)
	if err != nil {
		return 0, translateError(err, "creating supplier")
	}
	return supplier.ID, nil
}

func (r *supplierRepository) GetSupplierByID(ctx context.Context, id int64) (*models.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`
	supplier, err := scanSupplierRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting supplier by ID %d: %v", ErrDatabaseError, id, err)
	}
	return supplier, nil
}

func (r *supplierRepository) GetSuppliers(ctx context.Context, filters models.SupplierFilters) ([]models.Supplier, int, error) {
	suppliers := []models.Supplier{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + supplierColumns + `, COUNT(*) OVER() AS total_count FROM suppliers`)

	var where whereBuilder
	if filters.Search != nil && *filters.Search != "" {
		where.add("(name ILIKE $%[1]d OR contact_person ILIKE $%[1]d OR products ILIKE $%[1]d)", "%"+strings.TrimSpace(*filters.Search)+"%")
	}
	where.writeTo(&queryBuilder, "name ASC, id ASC", filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying suppliers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSupplierRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning supplier: %v", ErrDatabaseError, err)
		}
		suppliers = append(suppliers, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating supplier rows: %v", ErrDatabaseError, err)
	}
	return suppliers, totalCount, nil
}

func (r *supplierRepository) UpdateSupplier(ctx context.Context, executor SQLExecutor, supplier *models.Supplier) error {
	query := `UPDATE suppliers SET
	            name = $1, contact_person = $2, contact_phone = $3, address = $4, products = $5, rating = $6, updated_at = $7
	          WHERE id = $8`
	supplier.UpdatedAt = nowUTC()
	result, err := executor.ExecContext(ctx, query,
		supplier.Name, supplier.ContactPerson, supplier.ContactPhone, supplier.Address, supplier.Products,
		supplier.Rating, supplier.UpdatedAt, supplier.ID,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("updating supplier ID %d", supplier.ID))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("supplier update ID %d", supplier.ID))
	return err
}

// DeleteSupplier returns ErrForeignKeyViolation while purchase orders reference the supplier.
func (r *supplierRepository) DeleteSupplier(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return translateError(err, fmt.Sprintf("deleting supplier ID %d", id))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("deleting supplier ID %d", id))
	return err
}
