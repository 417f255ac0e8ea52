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
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrIngredientInUse   = fmt.Errorf("%w: ingredient cannot be deleted as purchase orders reference it", ErrConflict)
)

type CreateIngredientRequest struct {
	Name          string   `json:"name" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	Unit          string   `json:"unit" binding:"required"`
	CurrentStock  *float64 `json:"current_stock"`
	MinimumStock  *float64 `json:"minimum_stock"`
	SupplierID    *int64   `json:"supplier_id"`
	Price         *float64 `json:"price"`
	ExpiryDate    *string  `json:"expiry_date"` // Format YYYY-MM-DD
	NutritionInfo *string  `json:"nutrition_info"`
	Calories      *float64 `json:"calories"`
	Restrictions  *string  `json:"restrictions"`
	Purchaser     *string  `json:"purchaser"`
	Origin        *string  `json:"origin"`
}

// UpdateIngredientRequest excludes current_stock; stock only moves through AdjustStock.
type UpdateIngredientRequest struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Unit          *string  `json:"unit"`
	MinimumStock  *float64 `json:"minimum_stock"`
	SupplierID    *int64   `json:"supplier_id"`
	Price         *float64 `json:"price"`
	ExpiryDate    *string  `json:"expiry_date"`
	NutritionInfo *string  `json:"nutrition_info"`
	Calories      *float64 `json:"calories"`
	Restrictions  *string  `json:"restrictions"`
	Purchaser     *string  `json:"purchaser"`
	Origin        *string  `json:"origin"`
}

type StockMovementRequest struct {
	Type     string  `json:"type" binding:"required"` // in | out
	Quantity float64 `json:"quantity" binding:"required"`
}

type IngredientService interface {
	CreateIngredient(ctx context.Context, req CreateIngredientRequest) (*models.Ingredient, error)
	GetIngredientByID(ctx context.Context, id int64) (*models.Ingredient, error)
	GetIngredients(ctx context.Context, filters models.IngredientFilters) ([]models.Ingredient, int, error)
	GetCategories(ctx context.Context) ([]string, error)
	UpdateIngredient(ctx context.Context, id int64, req UpdateIngredientRequest) (*models.Ingredient, error)
	AdjustStock(ctx context.Context, id int64, req StockMovementRequest) (*models.Ingredient, error)
	DeleteIngredient(ctx context.Context, id int64) error
}

type ingredientService struct {
	ingredientRepo repositories.IngredientRepository
	tx             repositories.Transactor
}

func NewIngredientService(repo repositories.IngredientRepository, tx repositories.Transactor) IngredientService {
	return &ingredientService{ingredientRepo: repo, tx: tx}
}

func validateIngredient(i *models.Ingredient) error {
	switch {
	case utils.IsEmpty(i.Name):
		return validationErrorf("name cannot be empty")
	case utils.IsEmpty(i.Category):
		return validationErrorf("category cannot be empty")
	case utils.IsEmpty(i.Unit):
		return validationErrorf("unit cannot be empty")
	case i.CurrentStock < 0:
		return validationErrorf("current_stock cannot be negative")
	case i.MinimumStock < 0:
		return validationErrorf("minimum_stock cannot be negative")
	case i.Price < 0:
		return validationErrorf("price cannot be negative")
	case i.Calories != nil && *i.Calories < 0:
		return validationErrorf("calories cannot be negative")
	}
	return validateDate("expiry_date", i.ExpiryDate)
}

func ingredientReferenceError(err error) error {
	return referenceError(err, ErrSupplierNotFound, map[string]error{"supplier_id_fkey": ErrSupplierNotFound})
}

func (s *ingredientService) CreateIngredient(ctx context.Context, req CreateIngredientRequest) (*models.Ingredient, error) {
	ingredient := &models.Ingredient{
		Name:          strings.TrimSpace(req.Name),
		Category:      strings.TrimSpace(req.Category),
		Unit:          strings.TrimSpace(req.Unit),
		SupplierID:    req.SupplierID,
		ExpiryDate:    trimmedOrNil(req.ExpiryDate),
		NutritionInfo: req.NutritionInfo,
		Calories:      req.Calories,
		Restrictions:  req.Restrictions,
		Purchaser:     trimmedOrNil(req.Purchaser),
		Origin:        trimmedOrNil(req.Origin),
	}
	if req.CurrentStock != nil {
		ingredient.CurrentStock = *req.CurrentStock
	}
	if req.MinimumStock != nil {
		ingredient.MinimumStock = *req.MinimumStock
	}
	if req.Price != nil {
		ingredient.Price = utils.RoundMoney(*req.Price)
	}
	if err := validateIngredient(ingredient); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.ingredientRepo.CreateIngredient(ctx, exec, ingredient)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ingredient: %w", ingredientReferenceError(err))
	}
	return ingredient, nil
}

func (s *ingredientService) GetIngredientByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	ingredient, err := s.ingredientRepo.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient by ID: %w", err)
	}
	return ingredient, nil
}

func (s *ingredientService) GetIngredients(ctx context.Context, filters models.IngredientFilters) ([]models.Ingredient, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	ingredients, total, err := s.ingredientRepo.GetIngredients(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get ingredients: %w", err)
	}
	return ingredients, total, nil
}

func (s *ingredientService) GetCategories(ctx context.Context) ([]string, error) {
	categories, err := s.ingredientRepo.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredient categories: %w", err)
	}
	return categories, nil
}

func (s *ingredientService) UpdateIngredient(ctx context.Context, id int64, req UpdateIngredientRequest) (*models.Ingredient, error) {
	ingredient, err := s.GetIngredientByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		ingredient.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		ingredient.Category = strings.TrimSpace(*req.Category)
	}
	if req.Unit != nil {
		ingredient.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.MinimumStock != nil {
		ingredient.MinimumStock = *req.MinimumStock
	}
	if req.SupplierID != nil {
		ingredient.SupplierID = req.SupplierID
	}
	if req.Price != nil {
		ingredient.Price = utils.RoundMoney(*req.Price)
	}
	if req.ExpiryDate != nil {
		ingredient.ExpiryDate = trimmedOrNil(req.ExpiryDate)
	}
	if req.NutritionInfo != nil {
		ingredient.NutritionInfo = req.NutritionInfo
	}
	if req.Calories != nil {
		ingredient.Calories = req.Calories
	}
	if req.Restrictions != nil {
		ingredient.Restrictions = req.Restrictions
	}
	if req.Purchaser != nil {
		ingredient.Purchaser = trimmedOrNil(req.Purchaser)
	}
	if req.Origin != nil {
		ingredient.Origin = trimmedOrNil(req.Origin)
	}
	if err := validateIngredient(ingredient); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.ingredientRepo.UpdateIngredient(ctx, exec, ingredient)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to update ingredient: %w", ingredientReferenceError(err))
	}
	return ingredient, nil
}

// AdjustStock records an in/out movement. An out movement larger than the current stock is refused.
func (s *ingredientService) AdjustStock(ctx context.Context, id int64, req StockMovementRequest) (*models.Ingredient, error) {
	if !utils.OneOf(req.Type, models.StockIn, models.StockOut) {
		return nil, validationErrorf("type must be one of %s, %s", models.StockIn, models.StockOut)
	}
	if req.Quantity <= 0 {
		return nil, validationErrorf("quantity must be greater than zero")
	}
	delta := req.Quantity
	if req.Type == models.StockOut {
		delta = -delta
	}

	var newStock float64
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		newStock, err = s.ingredientRepo.AdjustStock(ctx, exec, id, delta)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrIngredientNotFound
		case errors.Is(err, repositories.ErrInsufficientStock):
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	utils.LogInfo("Ingredient stock adjusted", map[string]interface{}{"ingredient_id": id, "type": req.Type, "quantity": req.Quantity, "current_stock": newStock})
	return s.GetIngredientByID(ctx, id)
}

func (s *ingredientService) DeleteIngredient(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.ingredientRepo.DeleteIngredient(ctx, exec, id)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrIngredientNotFound
	case errors.Is(err, repositories.ErrForeignKeyViolation):
		return ErrIngredientInUse
	default:
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
}
