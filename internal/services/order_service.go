package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/repositories"
	"meal_care_backend/pkg/utils"
)

var (
	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrOrderItemNotFound = fmt.Errorf("order item %w", ErrNotFound)
	ErrOrderCompleted    = fmt.Errorf("%w: completed orders cannot be deleted", ErrConflict)
	ErrOrderAlreadyPaid  = fmt.Errorf("%w: order is already paid", ErrConflict)
	ErrOrderCancelled    = fmt.Errorf("%w: order is cancelled", ErrConflict)
)

var (
	orderTypes      = []string{models.OrderTypeMeal, models.OrderTypeService}
	orderStatuses   = []string{models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusCompleted, models.OrderStatusCancelled}
	paymentStatuses = []string{models.PaymentStatusPending, models.PaymentStatusPaid, models.PaymentStatusCancelled}
	paymentMethods  = []string{"wechat", "alipay", "bank", "cash"}
	itemTypes       = []string{models.ItemTypeDish, models.ItemTypeMenu, models.ItemTypeService}
)

var orderReferences = map[string]error{
	"customer_id_fkey":         ErrCustomerNotFound,
	"service_employee_id_fkey": ErrEmployeeNotFound,
}

// --- DTOs ---

// CreateOrderItemRequest is one line of a new order. Subtotal, when present, replaces
// quantity × unit_price and is stored rounded to cents.
type CreateOrderItemRequest struct {
	ItemType  string   `json:"item_type" binding:"required"`
	ItemID    *int64   `json:"item_id" binding:"required"`
	Quantity  *int     `json:"quantity" binding:"required"`
	UnitPrice *float64 `json:"unit_price" binding:"required"`
	Subtotal  *float64 `json:"subtotal"`
}

type CreateOrderRequest struct {
	CustomerID        *int64                   `json:"customer_id" binding:"required"`
	OrderType         string                   `json:"order_type" binding:"required"`
	DeliveryDate      *string                  `json:"delivery_date"` // YYYY-MM-DD
	DeliveryAddress   *string                  `json:"delivery_address"`
	BookerName        *string                  `json:"booker_name"`
	BookerRole        *string                  `json:"booker_role"`
	ServiceEmployeeID *int64                   `json:"service_employee_id"`
	PaymentMethod     *string                  `json:"payment_method"`
	Notes             *string                  `json:"notes"`
	Items             []CreateOrderItemRequest `json:"items" binding:"required"`
}

// AddOrderItemRequest has no subtotal: added lines are always priced as quantity × unit_price.
type AddOrderItemRequest struct {
	ItemType  string   `json:"item_type" binding:"required"`
	ItemID    *int64   `json:"item_id" binding:"required"`
	Quantity  *int     `json:"quantity" binding:"required"`
	UnitPrice *float64 `json:"unit_price" binding:"required"`
}

// UpdateOrderRequest lists the only header fields a caller may change.
type UpdateOrderRequest struct {
	Status            *string `json:"status"`
	PaymentStatus     *string `json:"payment_status"`
	PaymentMethod     *string `json:"payment_method"`
	ServiceEmployeeID *int64  `json:"service_employee_id"`
	Notes             *string `json:"notes"`
	Rating            *int    `json:"rating"`
	Feedback          *string `json:"feedback"`
}

type PayOrderRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrder(ctx context.Context, orderID int64, req UpdateOrderRequest) (*models.Order, error)
	PayOrder(ctx context.Context, orderID int64, req PayOrderRequest) (*models.Order, error)
	AddOrderItem(ctx context.Context, orderID int64, req AddOrderItemRequest) (*models.Order, error)
	RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error
}

type orderService struct {
	orderRepo       repositories.OrderRepository
	transactionRepo repositories.TransactionRepository
	tx              repositories.Transactor
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, transactionRepo repositories.TransactionRepository, tx repositories.Transactor) OrderService {
	return &orderService{orderRepo: orderRepo, transactionRepo: transactionRepo, tx: tx}
}

// recordPayment books the order total as customer income.
func (s *orderService) recordPayment(ctx context.Context, exec repositories.SQLExecutor, order *models.Order) error {
	relatedType := models.RelatedCustomer
	return recordLedger(ctx, exec, s.transactionRepo, &models.Transaction{
		Type:          models.TransactionIncome,
		Category:      models.CategoryCustomerOrder,
		Amount:        order.TotalAmount,
		Description:   utils.NewNullString(fmt.Sprintf("Payment for order #%d", order.ID)),
		PaymentMethod: order.PaymentMethod,
		RelatedID:     &order.CustomerID,
		RelatedType:   &relatedType,
	})
}

// lineItem validates one order line and prices it. subtotal overrides quantity × unit_price.
func lineItem(index int, itemType string, itemID *int64, quantity *int, unitPrice, subtotal *float64) (*models.OrderItem, error) {
	prefix := "item"
	if index >= 0 {
		prefix = fmt.Sprintf("items[%d]", index)
	}
	switch {
	case utils.IsEmpty(itemType):
		return nil, validationErrorf("%s: item_type is required", prefix)
	case !utils.OneOf(itemType, itemTypes...):
		return nil, validationErrorf("%s: item_type must be one of %s", prefix, strings.Join(itemTypes, ", "))
	case itemID == nil || *itemID <= 0:
		return nil, validationErrorf("%s: item_id is required", prefix)
	case quantity == nil:
		return nil, validationErrorf("%s: quantity is required", prefix)
	case *quantity <= 0:
		return nil, validationErrorf("%s: quantity must be greater than zero", prefix)
	case unitPrice == nil:
		return nil, validationErrorf("%s: unit_price is required", prefix)
	case *unitPrice < 0:
		return nil, validationErrorf("%s: unit_price cannot be negative", prefix)
	case subtotal != nil && *subtotal < 0:
		return nil, validationErrorf("%s: subtotal cannot be negative", prefix)
	}

	item := &models.OrderItem{
		ItemType:  itemType,
		ItemID:    *itemID,
		Quantity:  *quantity,
		UnitPrice: utils.RoundMoney(*unitPrice),
		Subtotal:  utils.RoundMoney(float64(*quantity) * *unitPrice),
	}
	if subtotal != nil {
		item.Subtotal = utils.RoundMoney(*subtotal)
	}
	return item, nil
}

func (s *orderService) validateCreate(req CreateOrderRequest) ([]*models.OrderItem, error) {
	if req.CustomerID == nil || *req.CustomerID <= 0 {
		return nil, validationErrorf("customer_id is required")
	}
	if utils.IsEmpty(req.OrderType) {
		return nil, validationErrorf("order_type is required")
	}
	if !utils.OneOf(req.OrderType, orderTypes...) {
		return nil, validationErrorf("order_type must be one of %s", strings.Join(orderTypes, ", "))
	}
	if len(req.Items) == 0 {
		return nil, validationErrorf("items are required")
	}
	if err := validateDate("delivery_date", req.DeliveryDate); err != nil {
		return nil, err
	}
	if req.PaymentMethod != nil && !utils.OneOf(*req.PaymentMethod, paymentMethods...) {
		return nil, validationErrorf("payment_method must be one of %s", strings.Join(paymentMethods, ", "))
	}

	items := make([]*models.OrderItem, 0, len(req.Items))
	for i, in := range req.Items {
		item, err := lineItem(i, in.ItemType, in.ItemID, in.Quantity, in.UnitPrice, in.Subtotal)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CreateOrder writes the header, every item and the derived total in one transaction.
// All input is validated before the transaction opens.
func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	items, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerID:        *req.CustomerID,
		OrderType:         req.OrderType,
		DeliveryDate:      trimmedOrNil(req.DeliveryDate),
		DeliveryAddress:   trimmedOrNil(req.DeliveryAddress),
		BookerName:        trimmedOrNil(req.BookerName),
		BookerRole:        trimmedOrNil(req.BookerRole),
		ServiceEmployeeID: req.ServiceEmployeeID,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     models.PaymentStatusPending,
		Status:            models.OrderStatusPending,
		Notes:             req.Notes,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		orderID, err := s.orderRepo.CreateOrder(ctx, exec, order)
		if err != nil {
			return err
		}
		for _, item := range items {
			item.OrderID = orderID
			if _, err := s.orderRepo.CreateOrderItem(ctx, exec, item); err != nil {
				return err
			}
		}
		total, err := s.orderRepo.RecalculateTotal(ctx, exec, orderID)
		if err != nil {
			return err
		}
		order.TotalAmount = total
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", referenceError(err, ErrCustomerNotFound, orderReferences))
	}

	utils.LogInfo("Order created", map[string]interface{}{"order_id": order.ID, "items": len(items), "total_amount": order.TotalAmount})
	return s.GetOrderByID(ctx, order.ID)
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}
	items, err := s.orderRepo.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	order.Items = items
	return order, nil
}

func (s *orderService) GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	if filters.OrderType != nil && *filters.OrderType != "" && !utils.OneOf(*filters.OrderType, orderTypes...) {
		return nil, 0, validationErrorf("order_type must be one of %s", strings.Join(orderTypes, ", "))
	}
	if filters.Status != nil && *filters.Status != "" && !utils.OneOf(*filters.Status, orderStatuses...) {
		return nil, 0, validationErrorf("status must be one of %s", strings.Join(orderStatuses, ", "))
	}
	if filters.PaymentStatus != nil && *filters.PaymentStatus != "" && !utils.OneOf(*filters.PaymentStatus, paymentStatuses...) {
		return nil, 0, validationErrorf("payment_status must be one of %s", strings.Join(paymentStatuses, ", "))
	}

	orders, total, err := s.orderRepo.GetOrders(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, total, nil
}

// lockOrder loads the order row under a row lock for the rest of the transaction.
func (s *orderService) lockOrder(ctx context.Context, exec repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderForUpdate(ctx, exec, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, orderID int64, req UpdateOrderRequest) (*models.Order, error) {
	if req.Status != nil && !utils.OneOf(*req.Status, orderStatuses...) {
		return nil, validationErrorf("status must be one of %s", strings.Join(orderStatuses, ", "))
	}
	if req.PaymentStatus != nil && !utils.OneOf(*req.PaymentStatus, paymentStatuses...) {
		return nil, validationErrorf("payment_status must be one of %s", strings.Join(paymentStatuses, ", "))
	}
	if req.PaymentMethod != nil && !utils.OneOf(*req.PaymentMethod, paymentMethods...) {
		return nil, validationErrorf("payment_method must be one of %s", strings.Join(paymentMethods, ", "))
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, validationErrorf("rating must be between 1 and 5")
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		order, err := s.lockOrder(ctx, exec, orderID)
		if err != nil {
			return err
		}
		wasPaid := order.PaymentStatus == models.PaymentStatusPaid
		if req.Status != nil {
			order.Status = *req.Status
		}
		if req.PaymentStatus != nil {
			order.PaymentStatus = *req.PaymentStatus
		}
		if req.PaymentMethod != nil {
			order.PaymentMethod = req.PaymentMethod
		}
		if req.ServiceEmployeeID != nil {
			order.ServiceEmployeeID = req.ServiceEmployeeID
		}
		if req.Notes != nil {
			order.Notes = req.Notes
		}
		if req.Rating != nil {
			order.Rating = req.Rating
		}
		if req.Feedback != nil {
			order.Feedback = req.Feedback
		}
		if err := s.orderRepo.UpdateOrder(ctx, exec, order); err != nil {
			return err
		}
		if !wasPaid && order.PaymentStatus == models.PaymentStatusPaid {
			return s.recordPayment(ctx, exec, order)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", referenceError(err, ErrEmployeeNotFound, orderReferences))
	}
	return s.GetOrderByID(ctx, orderID)
}

func (s *orderService) PayOrder(ctx context.Context, orderID int64, req PayOrderRequest) (*models.Order, error) {
	if !utils.OneOf(req.PaymentMethod, paymentMethods...) {
		return nil, validationErrorf("payment_method must be one of %s", strings.Join(paymentMethods, ", "))
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		order, err := s.lockOrder(ctx, exec, orderID)
		if err != nil {
			return err
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			return ErrOrderAlreadyPaid
		}
		if order.Status == models.OrderStatusCancelled {
			return ErrOrderCancelled
		}
		method := req.PaymentMethod
		order.PaymentMethod = &method
		order.PaymentStatus = models.PaymentStatusPaid
		if err := s.orderRepo.UpdateOrder(ctx, exec, order); err != nil {
			return err
		}
		return s.recordPayment(ctx, exec, order)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pay order: %w", err)
	}
	utils.LogInfo("Order paid", map[string]interface{}{"order_id": orderID, "payment_method": req.PaymentMethod})
	return s.GetOrderByID(ctx, orderID)
}

// AddOrderItem inserts a line priced at quantity × unit_price and re-derives the order total.
func (s *orderService) AddOrderItem(ctx context.Context, orderID int64, req AddOrderItemRequest) (*models.Order, error) {
	item, err := lineItem(-1, req.ItemType, req.ItemID, req.Quantity, req.UnitPrice, nil)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.lockOrder(ctx, exec, orderID); err != nil {
			return err
		}
		item.OrderID = orderID
		if _, err := s.orderRepo.CreateOrderItem(ctx, exec, item); err != nil {
			return err
		}
		_, err := s.orderRepo.RecalculateTotal(ctx, exec, orderID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add order item: %w", err)
	}
	return s.GetOrderByID(ctx, orderID)
}

// RemoveOrderItem deletes a line of the given order and re-derives the order total.
func (s *orderService) RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*models.Order, error) {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.lockOrder(ctx, exec, orderID); err != nil {
			return err
		}
		if _, err := s.orderRepo.DeleteOrderItem(ctx, exec, orderID, itemID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderItemNotFound
			}
			return err
		}
		_, err := s.orderRepo.RecalculateTotal(ctx, exec, orderID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove order item: %w", err)
	}
	return s.GetOrderByID(ctx, orderID)
}

// DeleteOrder removes the items and then the header. Completed orders are kept.
func (s *orderService) DeleteOrder(ctx context.Context, orderID int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		order, err := s.lockOrder(ctx, exec, orderID)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusCompleted {
			return ErrOrderCompleted
		}
		if _, err := s.orderRepo.DeleteOrderItemsByOrderID(ctx, exec, orderID); err != nil {
			return err
		}
		if _, err := s.orderRepo.DeleteOrder(ctx, exec, orderID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	utils.LogInfo("Order deleted", map[string]interface{}{"order_id": orderID})
	return nil
}
