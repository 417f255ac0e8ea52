package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
)

// PurchaseOrderRepository defines the database operations for supplier purchase orders.
type PurchaseOrderRepository interface {
	CreatePurchaseOrder(ctx context.Context, executor SQLExecutor, po *models.PurchaseOrder) (int64, error)
	CreatePurchaseOrderItem(ctx context.Context, executor SQLExecutor, item *models.PurchaseOrderItem) (int64, error)
	GetPurchaseOrderByID(ctx context.Context, id int64) (*models.PurchaseOrder, error)
	GetPurchaseOrderForUpdate(ctx context.Context, executor SQLExecutor, id int64) (*models.PurchaseOrder, error)
	GetPurchaseOrderItems(ctx context.Context, purchaseOrderID int64) ([]models.PurchaseOrderItem, error)
	GetPurchaseOrders(ctx context.Context, filters models.PurchaseOrderFilters) ([]models.PurchaseOrder, int, error)
	UpdatePurchaseOrderStatus(ctx context.Context, executor SQLExecutor, id int64, status string) error
	DeletePurchaseOrderItems(ctx context.Context, executor SQLExecutor, purchaseOrderID int64) (int64, error)
	DeletePurchaseOrder(ctx context.Context, executor SQLExecutor, id int64) (int64, error)
}

type purchaseOrderRepository struct {
	db *sql.DB
}

func NewPurchaseOrderRepository(db *sql.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

const purchaseOrderColumns = `id, supplier_id, order_date, expected_delivery, total_amount, status, notes, created_at, updated_at`

func scanPurchaseOrderRow(row scanner, extra ...interface{}) (*models.PurchaseOrder, error) {
	po := &models.PurchaseOrder{}
	var orderDate, expected sql.NullTime
	dest := []interface{}{&po.ID, &po.SupplierID, &orderDate, &expected, &po.TotalAmount, &po.Status,
		&po.Notes, &po.CreatedAt, &po.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if d := dateString(orderDate); d != nil {
		po.OrderDate = *d
	}
	po.ExpectedDelivery = dateString(expected)
	return po, nil
}

func (r *purchaseOrderRepository) CreatePurchaseOrder(ctx context.Context, executor SQLExecutor, po *models.PurchaseOrder) (int64, error) {
	query := `INSERT INTO purchase_orders
	            (supplier_id, order_date, expected_delivery, total_amount, status, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	now := nowUTC()
	if po.OrderDate == "" {
		po.OrderDate = now.Format("2006-01-02")
	}
	po.CreatedAt, po.UpdatedAt = now, now

	err := executor.QueryRowContext(ctx, query,
		po.SupplierID, po.OrderDate, po.ExpectedDelivery, po.TotalAmount, po.Status, po.Notes, po.CreatedAt, po.UpdatedAt,
	).Scan(&po.ID)
	if err != nil {
		return 0, translateError(err, "creating purchase order")
	}
	return po.ID, nil
}

func (r *purchaseOrderRepository) CreatePurchaseOrderItem(ctx context.Context, executor SQLExecutor, item *models.PurchaseOrderItem) (int64, error) {
	query := `INSERT INTO purchase_order_items (purchase_order_id, ingredient_id, quantity, unit_price, subtotal)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		item.PurchaseOrderID, item.IngredientID, item.Quantity, item.UnitPrice, item.Subtotal,
	).Scan(&item.ID)
	if err != nil {
		return 0, translateError(err, "creating purchase order item")
	}
	return item.ID, nil
}

func (r *purchaseOrderRepository) GetPurchaseOrderByID(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE id = $1`
	po, err := scanPurchaseOrderRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting purchase order by ID %d: %v", ErrDatabaseError, id, err)
	}
	return po, nil
}

func (r *purchaseOrderRepository) GetPurchaseOrderForUpdate(ctx context.Context, executor SQLExecutor, id int64) (*models.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE id = $1 FOR UPDATE`
	po, err := scanPurchaseOrderRow(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking purchase order ID %d: %v", ErrDatabaseError, id, err)
	}
	return po, nil
}

func (r *purchaseOrderRepository) GetPurchaseOrderItems(ctx context.Context, purchaseOrderID int64) ([]models.PurchaseOrderItem, error) {
	items := []models.PurchaseOrderItem{}
	query := `SELECT id, purchase_order_id, ingredient_id, quantity, unit_price, subtotal
	          FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, purchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying items of purchase order %d: %v", ErrDatabaseError, purchaseOrderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.PurchaseOrderID, &item.IngredientID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("%w: scanning purchase order item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating purchase order items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *purchaseOrderRepository) GetPurchaseOrders(ctx context.Context, filters models.PurchaseOrderFilters) ([]models.PurchaseOrder, int, error) {
	orders := []models.PurchaseOrder{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + purchaseOrderColumns + `, COUNT(*) OVER() AS total_count FROM purchase_orders`)

	var where whereBuilder
	if filters.Status != nil && *filters.Status != "" {
		where.add("status = $%d", *filters.Status)
	}
	if filters.SupplierID != nil {
		where.add("supplier_id = $%d", *filters.SupplierID)
	}
	where.writeTo(&queryBuilder, "order_date DESC, id DESC", filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying purchase orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		po, err := scanPurchaseOrderRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning purchase order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, *po)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating purchase order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *purchaseOrderRepository) UpdatePurchaseOrderStatus(ctx context.Context, executor SQLExecutor, id int64, status string) error {
	result, err := executor.ExecContext(ctx,
		`UPDATE purchase_orders SET status = $1, updated_at = $2 WHERE id = $3`, status, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("%w: updating status of purchase order %d: %v", ErrDatabaseError, id, err)
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("purchase order status update ID %d", id))
	return err
}

func (r *purchaseOrderRepository) DeletePurchaseOrderItems(ctx context.Context, executor SQLExecutor, purchaseOrderID int64) (int64, error) {
	result, err := executor.ExecContext(ctx, `DELETE FROM purchase_order_items WHERE purchase_order_id = $1`, purchaseOrderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting items of purchase order %d: %v", ErrDatabaseError, purchaseOrderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for purchase order items %d: %v", ErrDatabaseError, purchaseOrderID, err)
	}
	return rowsAffected, nil
}

func (r *purchaseOrderRepository) DeletePurchaseOrder(ctx context.Context, executor SQLExecutor, id int64) (int64, error) {
	result, err := executor.ExecContext(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return 0, translateError(err, fmt.Sprintf("deleting purchase order %d", id))
	}
	return affectedOrNotFound(result, fmt.Sprintf("deleting purchase order %d", id))
}
