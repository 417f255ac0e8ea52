package services

import (
	"context"
	"errors"
	"testing"

	"meal_care_backend/internal/models"
)

func newPurchaseOrderFixture(t *testing.T) (*memStore, PurchaseOrderService, int64, int64) {
	t.Helper()
	store := newMemStore()
	tx := &fakeTx{store: store}
	svc := NewPurchaseOrderService(&fakePurchaseOrderRepo{s: store}, &fakeIngredientRepo{s: store}, &fakeTransactionRepo{s: store}, tx)
	supplierID := store.addSupplier("Green Farm")
	ingredientID := store.addIngredient("millet", supplierID, 10)
	return store, svc, supplierID, ingredientID
}

func poItem(ingredientID int64, qty, price float64) PurchaseOrderItemRequest {
	return PurchaseOrderItemRequest{IngredientID: &ingredientID, Quantity: &qty, UnitPrice: &price}
}

func TestCreatePurchaseOrder_DefaultsSubtotalAndTotal(t *testing.T) {
	store, svc, supplierID, ingredientID := newPurchaseOrderFixture(t)
	withSubtotal := poItem(ingredientID, 1, 99)
	withSubtotal.Subtotal = ptr(90.0)

	po, err := svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderRequest{
		SupplierID: &supplierID,
		Items:      []PurchaseOrderItemRequest{poItem(ingredientID, 2.5, 4), withSubtotal},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder() error = %v", err)
	}
	if po.Status != models.PurchaseOrderPending {
		t.Errorf("status = %q, want pending", po.Status)
	}
	if po.OrderDate == "" {
		t.Error("order_date was not defaulted")
	}
	if len(po.Items) != 2 || po.Items[0].Subtotal != 10 || po.Items[1].Subtotal != 90 {
		t.Fatalf("items = %+v, want subtotals 10 and 90", po.Items)
	}
	if po.TotalAmount != 100 {
		t.Errorf("total_amount = %v, want 100", po.TotalAmount)
	}
	if len(store.poItems) != 2 {
		t.Errorf("stored items = %d, want 2", len(store.poItems))
	}
}

func TestCreatePurchaseOrder_InvalidItemWritesNothing(t *testing.T) {
	store, svc, supplierID, ingredientID := newPurchaseOrderFixture(t)
	noPrice := PurchaseOrderItemRequest{IngredientID: &ingredientID, Quantity: ptr(1.0)}

	_, err := svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderRequest{
		SupplierID: &supplierID,
		Items:      []PurchaseOrderItemRequest{poItem(ingredientID, 1, 1), noPrice},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("CreatePurchaseOrder() error = %v, want validation", err)
	}
	if len(store.pos) != 0 || len(store.poItems) != 0 {
		t.Errorf("store has %d purchase orders and %d items, want none", len(store.pos), len(store.poItems))
	}
}

func TestCreatePurchaseOrder_Validation(t *testing.T) {
	_, svc, supplierID, ingredientID := newPurchaseOrderFixture(t)

	tests := []struct {
		name string
		req  CreatePurchaseOrderRequest
	}{
		{"missing supplier", CreatePurchaseOrderRequest{Items: []PurchaseOrderItemRequest{poItem(ingredientID, 1, 1)}}},
		{"no items", CreatePurchaseOrderRequest{SupplierID: &supplierID}},
		{"zero quantity", CreatePurchaseOrderRequest{SupplierID: &supplierID, Items: []PurchaseOrderItemRequest{poItem(ingredientID, 0, 1)}}},
		{"negative price", CreatePurchaseOrderRequest{SupplierID: &supplierID, Items: []PurchaseOrderItemRequest{poItem(ingredientID, 1, -1)}}},
		{"bad expected delivery", CreatePurchaseOrderRequest{SupplierID: &supplierID, ExpectedDelivery: ptr("tomorrow"), Items: []PurchaseOrderItemRequest{poItem(ingredientID, 1, 1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreatePurchaseOrder(context.Background(), tt.req); !errors.Is(err, ErrValidation) {
				t.Errorf("CreatePurchaseOrder() error = %v, want validation", err)
			}
		})
	}
}

func TestCreatePurchaseOrder_UnknownReferencesRollBack(t *testing.T) {
	store, svc, supplierID, ingredientID := newPurchaseOrderFixture(t)
	missing := int64(999)

	_, err := svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderRequest{
		SupplierID: &missing,
		Items:      []PurchaseOrderItemRequest{poItem(ingredientID, 1, 1)},
	})
	if !errors.Is(err, ErrSupplierNotFound) {
		t.Errorf("unknown supplier error = %v, want supplier not found", err)
	}

	_, err = svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderRequest{
		SupplierID: &supplierID,
		Items:      []PurchaseOrderItemRequest{poItem(ingredientID, 1, 1), poItem(missing, 1, 1)},
	})
	if !errors.Is(err, ErrIngredientNotFound) {
		t.Errorf("unknown ingredient error = %v, want ingredient not found", err)
	}
	if len(store.pos) != 0 || len(store.poItems) != 0 {
		t.Errorf("store has %d purchase orders and %d items after rollback, want none", len(store.pos), len(store.poItems))
	}
}

func TestUpdatePurchaseOrderStatus_DeliveryAddsStock(t *testing.T) {
	ctx := context.Background()
	store, svc, supplierID, ingredientID := newPurchaseOrderFixture(t)

	po, err := svc.CreatePurchaseOrder(ctx, CreatePurchaseOrderRequest{
		SupplierID: &supplierID,
		Items:      []PurchaseOrderItemRequest{poItem(ingredientID, 4, 2), poItem(ingredientID, 1.5, 2)},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder() error = %v", err)
	}

	delivered, err := svc.UpdatePurchaseOrderStatus(ctx, po.ID, UpdatePurchaseOrderStatusRequest{Status: models.PurchaseOrderDelivered})
	if err != nil {
		t.Fatalf("UpdatePurchaseOrderStatus() error = %v", err)
	}
	if delivered.Status != models.PurchaseOrderDelivered {
		t.Errorf("status = %q, want delivered", delivered.Status)
	}
	if got := store.ingredients[ingredientID].CurrentStock; got != 15.5 {
		t.Errorf("current_stock = %v, want 15.5", got)
	}

	_, err = svc.UpdatePurchaseOrderStatus(ctx, po.ID, UpdatePurchaseOrderStatusRequest{Status: models.PurchaseOrderCancelled})
	if !errors.Is(err, ErrPurchaseOrderClosed) || !errors.Is(err, ErrConflict) {
		t.Errorf("cancel after delivery error = %v, want conflict", err)
	}
	if err := svc.DeletePurchaseOrder(ctx, po.ID); !errors.Is(err, ErrPurchaseOrderDelivered) {
		t.Errorf("DeletePurchaseOrder(delivered) error = %v, want conflict", err)
	}
}

func TestUpdatePurchaseOrderStatus_Validation(t *testing.T) {
	_, svc, _, _ := newPurchaseOrderFixture(t)

	if _, err := svc.UpdatePurchaseOrderStatus(context.Background(), 1, UpdatePurchaseOrderStatusRequest{Status: models.PurchaseOrderPending}); !errors.Is(err, ErrValidation) {
		t.Errorf("status pending error = %v, want validation", err)
	}
	if _, err := svc.UpdatePurchaseOrderStatus(context.Background(), 999, UpdatePurchaseOrderStatusRequest{Status: models.PurchaseOrderCancelled}); !errors.Is(err, ErrPurchaseOrderNotFound) {
		t.Errorf("unknown purchase order error = %v, want not found", err)
	}
}

func TestDeletePurchaseOrder_RemovesItems(t *testing.T) {
	ctx := context.Background()
	store, svc, supplierID, ingredientID := newPurchaseOrderFixture(t)

	po, err := svc.CreatePurchaseOrder(ctx, CreatePurchaseOrderRequest{
		SupplierID: &supplierID,
		Items:      []PurchaseOrderItemRequest{poItem(ingredientID, 1, 1), poItem(ingredientID, 2, 1)},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder() error = %v", err)
	}
	if err := svc.DeletePurchaseOrder(ctx, po.ID); err != nil {
		t.Fatalf("DeletePurchaseOrder() error = %v", err)
	}
	if len(store.pos) != 0 || len(store.poItems) != 0 {
		t.Errorf("store has %d purchase orders and %d items, want none", len(store.pos), len(store.poItems))
	}
	if _, err := svc.GetPurchaseOrderByID(ctx, po.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPurchaseOrderByID() error = %v, want not found", err)
	}
}

func TestCreatePurchaseOrder_SuppliedSubtotalRoundedToCents(t *testing.T) {
	_, svc, supplierID, ingredientID := newPurchaseOrderFixture(t)
	line := poItem(ingredientID, 2, 10)
	line.Subtotal = ptr(19.999)

	po, err := svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderRequest{
		SupplierID: &supplierID,
		Items:      []PurchaseOrderItemRequest{line},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder() error = %v", err)
	}
	if len(po.Items) != 1 || po.Items[0].Subtotal != 20 || po.TotalAmount != 20 {
		t.Fatalf("purchase order = %+v, want subtotal and total 20", po)
	}
}

func TestUpdatePurchaseOrderStatus_DeliveryRecordsExpense(t *testing.T) {
	ctx := context.Background()
	store, svc, supplierID, ingredientID := newPurchaseOrderFixture(t)

	delivered, err := svc.CreatePurchaseOrder(ctx, CreatePurchaseOrderRequest{
		SupplierID: &supplierID,
		Items:      []PurchaseOrderItemRequest{poItem(ingredientID, 5, 6)},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder() error = %v", err)
	}
	cancelled, err := svc.CreatePurchaseOrder(ctx, CreatePurchaseOrderRequest{
		SupplierID: &supplierID,
		Items:      []PurchaseOrderItemRequest{poItem(ingredientID, 1, 6)},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder() error = %v", err)
	}

	if _, err := svc.UpdatePurchaseOrderStatus(ctx, delivered.ID, UpdatePurchaseOrderStatusRequest{Status: models.PurchaseOrderDelivered}); err != nil {
		t.Fatalf("deliver error = %v", err)
	}
	if _, err := svc.UpdatePurchaseOrderStatus(ctx, cancelled.ID, UpdatePurchaseOrderStatusRequest{Status: models.PurchaseOrderCancelled}); err != nil {
		t.Fatalf("cancel error = %v", err)
	}

	entries := store.ledgerFor(models.CategoryPurchaseOrder)
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	if e := entries[0]; e.Type != models.TransactionExpense || e.Amount != 30 || e.RelatedID == nil || *e.RelatedID != supplierID {
		t.Errorf("ledger entry = %+v, want expense of 30 for supplier %d", e, supplierID)
	}
}

func TestUpdatePurchaseOrderStatus_LedgerFailureRollsBackStock(t *testing.T) {
	ctx := context.Background()
	store, svc, supplierID, ingredientID := newPurchaseOrderFixture(t)

	po, err := svc.CreatePurchaseOrder(ctx, CreatePurchaseOrderRequest{
		SupplierID: &supplierID,
		Items:      []PurchaseOrderItemRequest{poItem(ingredientID, 5, 6)},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder() error = %v", err)
	}
	store.failures["CreateTransaction"] = errors.New("ledger unavailable")

	if _, err := svc.UpdatePurchaseOrderStatus(ctx, po.ID, UpdatePurchaseOrderStatusRequest{Status: models.PurchaseOrderDelivered}); err == nil {
		t.Fatal("UpdatePurchaseOrderStatus() succeeded, want ledger error")
	}
	if got := store.ingredients[ingredientID].CurrentStock; got != 10 {
		t.Errorf("current_stock = %v, want 10", got)
	}
	if got := store.pos[po.ID].Status; got != models.PurchaseOrderPending {
		t.Errorf("status = %q, want pending", got)
	}
}
