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
	ErrPurchaseOrderNotFound  = fmt.Errorf("purchase order %w", ErrNotFound)
	ErrPurchaseOrderClosed    = fmt.Errorf("%w: only pending purchase orders can change status", ErrConflict)
	ErrPurchaseOrderDelivered = fmt.Errorf("%w: delivered purchase orders cannot be deleted", ErrConflict)
)

var purchaseOrderReferences = map[string]error{
	"supplier_id_fkey":   ErrSupplierNotFound,
	"ingredient_id_fkey": ErrIngredientNotFound,
}

type PurchaseOrderItemRequest struct {
	IngredientID *int64   `json:"ingredient_id" binding:"required"`
	Quantity     *float64 `json:"quantity" binding:"required"`
	UnitPrice    *float64 `json:"unit_price" binding:"required"`
	Subtotal     *float64 `json:"subtotal"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID       *int64                     `json:"supplier_id" binding:"required"`
	OrderDate        *string                    `json:"order_date"` // YYYY-MM-DD, defaults to today
	ExpectedDelivery *string                    `json:"expected_delivery"`
	Notes            *string                    `json:"notes"`
	Items            []PurchaseOrderItemRequest `json:"items" binding:"required"`
}

type UpdatePurchaseOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PurchaseOrderService interface {
	CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*models.PurchaseOrder, error)
	GetPurchaseOrderByID(ctx context.Context, id int64) (*models.PurchaseOrder, error)
	GetPurchaseOrders(ctx context.Context, filters models.PurchaseOrderFilters) ([]models.PurchaseOrder, int, error)
	UpdatePurchaseOrderStatus(ctx context.Context, id int64, req UpdatePurchaseOrderStatusRequest) (*models.PurchaseOrder, error)
	DeletePurchaseOrder(ctx context.Context, id int64) error
}

type purchaseOrderService struct {
	poRepo          repositories.PurchaseOrderRepository
	ingredientRepo  repositories.IngredientRepository
	transactionRepo repositories.TransactionRepository
	tx              repositories.Transactor
}

func NewPurchaseOrderService(
	poRepo repositories.PurchaseOrderRepository,
	ingredientRepo repositories.IngredientRepository,
	transactionRepo repositories.TransactionRepository,
	tx repositories.Transactor,
) PurchaseOrderService {
	return &purchaseOrderService{poRepo: poRepo, ingredientRepo: ingredientRepo, transactionRepo: transactionRepo, tx: tx}
}

func validatePurchaseOrderItems(reqItems []PurchaseOrderItemRequest) ([]*models.PurchaseOrderItem, float64, error) {
	items := make([]*models.PurchaseOrderItem, 0, len(reqItems))
	total := 0.0
	for i, in := range reqItems {
		switch {
		case in.IngredientID == nil || *in.IngredientID <= 0:
			return nil, 0, validationErrorf("items[%d]: ingredient_id is required", i)
		case in.Quantity == nil:
			return nil, 0, validationErrorf("items[%d]: quantity is required", i)
		case *in.Quantity <= 0:
			return nil, 0, validationErrorf("items[%d]: quantity must be greater than zero", i)
		case in.UnitPrice == nil:
			return nil, 0, validationErrorf("items[%d]: unit_price is required", i)
		case *in.UnitPrice < 0:
			return nil, 0, validationErrorf("items[%d]: unit_price cannot be negative", i)
		case in.Subtotal != nil && *in.Subtotal < 0:
			return nil, 0, validationErrorf("items[%d]: subtotal cannot be negative", i)
		}

		item := &models.PurchaseOrderItem{
			IngredientID: *in.IngredientID,
			Quantity:     *in.Quantity,
			UnitPrice:    utils.RoundMoney(*in.UnitPrice),
			Subtotal:     utils.RoundMoney(*in.Quantity * *in.UnitPrice),
		}
		if in.Subtotal != nil {
			item.Subtotal = utils.RoundMoney(*in.Subtotal)
		}
		total += item.Subtotal
		items = append(items, item)
	}
	return items, utils.RoundMoney(total), nil
}

// CreatePurchaseOrder stores the header and items atomically. The total is fixed here
// and never re-derived.
func (s *purchaseOrderService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*models.PurchaseOrder, error) {
	if req.SupplierID == nil || *req.SupplierID <= 0 {
		return nil, validationErrorf("supplier_id is required")
	}
	if len(req.Items) == 0 {
		return nil, validationErrorf("items are required")
	}
	if err := validateDate("order_date", req.OrderDate); err != nil {
		return nil, err
	}
	if err := validateDate("expected_delivery", req.ExpectedDelivery); err != nil {
		return nil, err
	}
	items, total, err := validatePurchaseOrderItems(req.Items)
	if err != nil {
		return nil, err
	}

	po := &models.PurchaseOrder{
		SupplierID:       *req.SupplierID,
		ExpectedDelivery: trimmedOrNil(req.ExpectedDelivery),
		TotalAmount:      total,
		Status:           models.PurchaseOrderPending,
		Notes:            req.Notes,
	}
	if d := trimmedOrNil(req.OrderDate); d != nil {
		po.OrderDate = *d
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		id, err := s.poRepo.CreatePurchaseOrder(ctx, exec, po)
		if err != nil {
			return err
		}
		for _, item := range items {
			item.PurchaseOrderID = id
			if _, err := s.poRepo.CreatePurchaseOrderItem(ctx, exec, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", referenceError(err, ErrSupplierNotFound, purchaseOrderReferences))
	}

	utils.LogInfo("Purchase order created", map[string]interface{}{"purchase_order_id": po.ID, "supplier_id": po.SupplierID, "total_amount": po.TotalAmount})
	return s.GetPurchaseOrderByID(ctx, po.ID)
}

func (s *purchaseOrderService) GetPurchaseOrderByID(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	po, err := s.poRepo.GetPurchaseOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPurchaseOrderNotFound
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	items, err := s.poRepo.GetPurchaseOrderItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase order items: %w", err)
	}
	po.Items = items
	return po, nil
}

func (s *purchaseOrderService) GetPurchaseOrders(ctx context.Context, filters models.PurchaseOrderFilters) ([]models.PurchaseOrder, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	orders, total, err := s.poRepo.GetPurchaseOrders(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get purchase orders: %w", err)
	}
	return orders, total, nil
}

// UpdatePurchaseOrderStatus moves a pending order to delivered or cancelled. Delivery books
// every item's quantity into ingredient stock and the total as a supplier expense in the
// same transaction.
func (s *purchaseOrderService) UpdatePurchaseOrderStatus(ctx context.Context, id int64, req UpdatePurchaseOrderStatusRequest) (*models.PurchaseOrder, error) {
	if !utils.OneOf(req.Status, models.PurchaseOrderDelivered, models.PurchaseOrderCancelled) {
		return nil, validationErrorf("status must be one of %s", strings.Join([]string{models.PurchaseOrderDelivered, models.PurchaseOrderCancelled}, ", "))
	}

	var delivered []models.PurchaseOrderItem
	if req.Status == models.PurchaseOrderDelivered {
		items, err := s.poRepo.GetPurchaseOrderItems(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get purchase order items: %w", err)
		}
		delivered = items
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		po, err := s.poRepo.GetPurchaseOrderForUpdate(ctx, exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrPurchaseOrderNotFound
			}
			return err
		}
		if po.Status != models.PurchaseOrderPending {
			return ErrPurchaseOrderClosed
		}
		if err := s.poRepo.UpdatePurchaseOrderStatus(ctx, exec, id, req.Status); err != nil {
			return err
		}
		for _, item := range delivered {
			if _, err := s.ingredientRepo.AdjustStock(ctx, exec, item.IngredientID, item.Quantity); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return ErrIngredientNotFound
				}
				return err
			}
		}
		if req.Status != models.PurchaseOrderDelivered {
			return nil
		}
		relatedType := models.RelatedSupplier
		return recordLedger(ctx, exec, s.transactionRepo, &models.Transaction{
			Type:        models.TransactionExpense,
			Category:    models.CategoryPurchaseOrder,
			Amount:      po.TotalAmount,
			Description: utils.NewNullString(fmt.Sprintf("Purchase order #%d delivered", po.ID)),
			RelatedID:   &po.SupplierID,
			RelatedType: &relatedType,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase order status: %w", err)
	}

	utils.LogInfo("Purchase order status changed", map[string]interface{}{"purchase_order_id": id, "status": req.Status})
	return s.GetPurchaseOrderByID(ctx, id)
}

// DeletePurchaseOrder removes the items and the header together.
func (s *purchaseOrderService) DeletePurchaseOrder(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		po, err := s.poRepo.GetPurchaseOrderForUpdate(ctx, exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrPurchaseOrderNotFound
			}
			return err
		}
		if po.Status == models.PurchaseOrderDelivered {
			return ErrPurchaseOrderDelivered
		}
		if _, err := s.poRepo.DeletePurchaseOrderItems(ctx, exec, id); err != nil {
			return err
		}
		_, err = s.poRepo.DeletePurchaseOrder(ctx, exec, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}
	return nil
}
