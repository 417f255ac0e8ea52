package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// Order methods
	CreateOrder(ctx context.Context, executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	GetOrderForUpdate(ctx context.Context, executor SQLExecutor, orderID int64) (*models.Order, error) // row-locks the order until the transaction ends
	GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error)          // orders, total count, error
	UpdateOrder(ctx context.Context, executor SQLExecutor, order *models.Order) error
	DeleteOrder(ctx context.Context, executor SQLExecutor, orderID int64) (int64, error)
	RecalculateTotal(ctx context.Context, executor SQLExecutor, orderID int64) (float64, error)

	// OrderItem methods
	CreateOrderItem(ctx context.Context, executor SQLExecutor, item *models.OrderItem) (int64, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	DeleteOrderItem(ctx context.Context, executor SQLExecutor, orderID, itemID int64) (int64, error)
	DeleteOrderItemsByOrderID(ctx context.Context, executor SQLExecutor, orderID int64) (int64, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, customer_id, order_type, order_date, delivery_date, delivery_address,
	booker_name, booker_role, service_employee_id, total_amount, payment_status, payment_method,
	status, notes, rating, feedback, created_at, updated_at`

func scanOrderRow(row scanner, extra ...interface{}) (*models.Order, error) {
	o := &models.Order{}
	var deliveryDate sql.NullTime
	dest := []interface{}{
		&o.ID, &o.CustomerID, &o.OrderType, &o.OrderDate, &deliveryDate, &o.DeliveryAddress,
		&o.BookerName, &o.BookerRole, &o.ServiceEmployeeID, &o.TotalAmount, &o.PaymentStatus, &o.PaymentMethod,
		&o.Status, &o.Notes, &o.Rating, &o.Feedback, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	o.DeliveryDate = dateString(deliveryDate)
	return o, nil
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(ctx context.Context, executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO customer_orders
	            (customer_id, order_type, order_date, delivery_date, delivery_address, booker_name,
	             booker_role, service_employee_id, total_amount, payment_status, payment_method,
	             status, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	          RETURNING id`

	now := nowUTC()
	if order.OrderDate.IsZero() {
		order.OrderDate = now
	}
	order.CreatedAt, order.UpdatedAt = now, now

	err := executor.QueryRowContext(ctx, query,
		order.CustomerID, order.OrderType, order.OrderDate, order.DeliveryDate, order.DeliveryAddress, order.BookerName,
		order.BookerRole, order.ServiceEmployeeID, order.TotalAmount, order.PaymentStatus, order.PaymentMethod,
		order.Status, order.Notes, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return 0, translateError(err, "creating order")
	}
	return order.ID, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM customer_orders WHERE id = $1`
	order, err := scanOrderRow(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderForUpdate(ctx context.Context, executor SQLExecutor, orderID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM customer_orders WHERE id = $1 FOR UPDATE`
	order, err := scanOrderRow(executor.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + `, COUNT(*) OVER() AS total_count FROM customer_orders`)

	var where whereBuilder
	if filters.CustomerID != nil {
		where.add("customer_id = $%d", *filters.CustomerID)
	}
	if filters.OrderType != nil && *filters.OrderType != "" {
		where.add("order_type = $%d", *filters.OrderType)
	}
	if filters.Status != nil && *filters.Status != "" {
		where.add("status = $%d", *filters.Status)
	}
	if filters.PaymentStatus != nil && *filters.PaymentStatus != "" {
		where.add("payment_status = $%d", *filters.PaymentStatus)
	}
	where.writeTo(&queryBuilder, "order_date DESC, id DESC", filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOrderRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

// UpdateOrder writes the mutable header fields. total_amount is never written here.
func (r *orderRepository) UpdateOrder(ctx context.Context, executor SQLExecutor, order *models.Order) error {
	query := `UPDATE customer_orders
	          SET status = $1, payment_status = $2, payment_method = $3, service_employee_id = $4,
	              notes = $5, rating = $6, feedback = $7, updated_at = $8
	          WHERE id = $9`
	order.UpdatedAt = nowUTC()
	result, err := executor.ExecContext(ctx, query,
		order.Status, order.PaymentStatus, order.PaymentMethod, order.ServiceEmployeeID,
		order.Notes, order.Rating, order.Feedback, order.UpdatedAt, order.ID,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("updating order ID %d", order.ID))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("order update ID %d", order.ID))
	return err
}

func (r *orderRepository) DeleteOrder(ctx context.Context, executor SQLExecutor, orderID int64) (int64, error) {
	result, err := executor.ExecContext(ctx, `DELETE FROM customer_orders WHERE id = $1`, orderID)
	if err != nil {
		return 0, translateError(err, fmt.Sprintf("deleting order ID %d", orderID))
	}
	return affectedOrNotFound(result, fmt.Sprintf("deleting order ID %d", orderID))
}

// RecalculateTotal sets total_amount to the sum of the order's item subtotals and returns it.
func (r *orderRepository) RecalculateTotal(ctx context.Context, executor SQLExecutor, orderID int64) (float64, error) {
	query := `UPDATE customer_orders
	          SET total_amount = (SELECT COALESCE(SUM(subtotal), 0) FROM order_items WHERE order_id = $1),
	              updated_at = $2
	          WHERE id = $1
	          RETURNING total_amount`
	var total float64
	err := executor.QueryRowContext(ctx, query, orderID, nowUTC()).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: recalculating total for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return total, nil
}

// --- OrderItem Methods ---

const orderItemColumns = `id, order_id, item_type, item_id, quantity, unit_price, subtotal, created_at`

func scanOrderItemRow(row scanner) (*models.OrderItem, error) {
	item := &models.OrderItem{}
	err := row.Scan(&item.ID, &item.OrderID, &item.ItemType, &item.ItemID, &item.Quantity,
		&item.UnitPrice, &item.Subtotal, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *orderRepository) CreateOrderItem(ctx context.Context, executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items (order_id, item_type, item_id, quantity, unit_price, subtotal, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	item.CreatedAt = nowUTC()

	err := executor.QueryRowContext(ctx, query,
		item.OrderID, item.ItemType, item.ItemID, item.Quantity, item.UnitPrice, item.Subtotal, item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		return 0, translateError(err, "creating order item")
	}
	return item.ID, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order item for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

func (r *orderRepository) DeleteOrderItem(ctx context.Context, executor SQLExecutor, orderID, itemID int64) (int64, error) {
	result, err := executor.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1 AND order_id = $2`, itemID, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting item %d of order %d: %v", ErrDatabaseError, itemID, orderID, err)
	}
	return affectedOrNotFound(result, fmt.Sprintf("deleting item %d of order %d", itemID, orderID))
}

func (r *orderRepository) DeleteOrderItemsByOrderID(ctx context.Context, executor SQLExecutor, orderID int64) (int64, error) {
	result, err := executor.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for deleting order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return rowsAffected, nil
}
