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

var ErrSupplierInUse = fmt.Errorf("%w: supplier cannot be deleted as purchase orders reference it", ErrConflict)

type CreateSupplierRequest struct {
	Name          string   `json:"name" binding:"required"`
	ContactPerson string   `json:"contact_person" binding:"required"`
	ContactPhone  string   `json:"contact_phone" binding:"required"`
	Address       *string  `json:"address"`
	Products      *string  `json:"products"`
	Rating        *float64 `json:"rating"`
}

type UpdateSupplierRequest struct {
	Name          *string  `json:"name"`
	ContactPerson *string  `json:"contact_person"`
	ContactPhone  *string  `json:"contact_phone"`
	Address       *string  `json:"address"`
	Products      *string  `json:"products"`
	Rating        *float64 `json:"rating"`
}

type SupplierService interface {
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*models.Supplier, error)
	GetSupplierByID(ctx context.Context, id int64) (*models.Supplier, error) // includes supplied ingredients
	GetSuppliers(ctx context.Context, filters models.SupplierFilters) ([]models.Supplier, int, error)
	UpdateSupplier(ctx context.Context, id int64, req UpdateSupplierRequest) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error
}

type supplierService struct {
	supplierRepo   repositories.SupplierRepository
	ingredientRepo repositories.IngredientRepository
	tx             repositories.Transactor
}

func NewSupplierService(supplierRepo repositories.SupplierRepository, ingredientRepo repositories.IngredientRepository, tx repositories.Transactor) SupplierService {
	return &supplierService{supplierRepo: supplierRepo, ingredientRepo: ingredientRepo, tx: tx}
}

func validateSupplier(s *models.Supplier) error {
	switch {
	case utils.IsEmpty(s.Name):
		return validationErrorf("name cannot be empty")
	case utils.IsEmpty(s.ContactPerson):
		return validationErrorf("contact_person cannot be empty")
	case utils.IsEmpty(s.ContactPhone):
		return validationErrorf("contact_phone cannot be empty")
	case s.Rating < 0 || s.Rating > 5:
		return validationErrorf("rating must be between 0 and 5")
	}
	return nil
}

func (s *supplierService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*models.Supplier, error) {
	supplier := &models.Supplier{
		Name:          strings.TrimSpace(req.Name),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		ContactPhone:  strings.TrimSpace(req.ContactPhone),
		Address:       trimmedOrNil(req.Address),
		Products:      trimmedOrNil(req.Products),
	}
	if req.Rating != nil {
		supplier.Rating = *req.Rating
	}
	if err := validateSupplier(supplier); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.supplierRepo.CreateSupplier(ctx, exec, supplier)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	utils.LogInfo("Supplier created", map[string]interface{}{"supplier_id": supplier.ID})
	return supplier, nil
}

func (s *supplierService) GetSupplierByID(ctx context.Context, id int64) (*models.Supplier, error) {
	supplier, err := s.supplierRepo.GetSupplierByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to get supplier by ID: %w", err)
	}
	ingredients, err := s.ingredientRepo.GetIngredientsBySupplier(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier ingredients: %w", err)
	}
	supplier.Ingredients = ingredients
	return supplier, nil
}

func (s *supplierService) GetSuppliers(ctx context.Context, filters models.SupplierFilters) ([]models.Supplier, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	suppliers, total, err := s.supplierRepo.GetSuppliers(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get suppliers: %w", err)
	}
	return suppliers, total, nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id int64, req UpdateSupplierRequest) (*models.Supplier, error) {
	supplier, err := s.supplierRepo.GetSupplierByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to find supplier for update: %w", err)
	}

	if req.Name != nil {
		supplier.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactPerson != nil {
		supplier.ContactPerson = strings.TrimSpace(*req.ContactPerson)
	}
	if req.ContactPhone != nil {
		supplier.ContactPhone = strings.TrimSpace(*req.ContactPhone)
	}
	if req.Address != nil {
		supplier.Address = trimmedOrNil(req.Address)
	}
	if req.Products != nil {
		supplier.Products = trimmedOrNil(req.Products)
	}
	if req.Rating != nil {
		supplier.Rating = *req.Rating
	}
	if err := validateSupplier(supplier); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.supplierRepo.UpdateSupplier(ctx, exec, supplier)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.supplierRepo.DeleteSupplier(ctx, exec, id)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrSupplierNotFound
	case errors.Is(err, repositories.ErrForeignKeyViolation):
		return ErrSupplierInUse
	default:
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
}
