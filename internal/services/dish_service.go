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

var ErrDishInUse = fmt.Errorf("%w: dish cannot be deleted as menus reference it", ErrConflict)

type CreateDishRequest struct {
	Name         string   `json:"name" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	Description  *string  `json:"description"`
	Ingredients  *string  `json:"ingredients"`
	Restrictions *string  `json:"restrictions"` // comma-separated tags, e.g. "seafood,spicy"
	Calories     *int     `json:"calories"`
	Price        *float64 `json:"price"`
	Status       *string  `json:"status"`
}

type UpdateDishRequest struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Description  *string  `json:"description"`
	Ingredients  *string  `json:"ingredients"`
	Restrictions *string  `json:"restrictions"`
	Calories     *int     `json:"calories"`
	Price        *float64 `json:"price"`
	Status       *string  `json:"status"`
}

// CheckRestrictionsRequest names the dishes to check and the restrictions to check them against.
// When DietaryRestrictions is absent the customer's recorded restrictions are used.
type CheckRestrictionsRequest struct {
	DishIDs             []int64 `json:"dish_ids" binding:"required"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
	CustomerID          *int64  `json:"customer_id"`
}

type DishService interface {
	CreateDish(ctx context.Context, req CreateDishRequest) (*models.Dish, error)
	GetDishByID(ctx context.Context, id int64) (*models.Dish, error)
	GetDishes(ctx context.Context, filters models.DishFilters) ([]models.Dish, int, error)
	GetCategories(ctx context.Context) ([]string, error)
	UpdateDish(ctx context.Context, id int64, req UpdateDishRequest) (*models.Dish, error)
	DeleteDish(ctx context.Context, id int64) error
	CheckRestrictions(ctx context.Context, req CheckRestrictionsRequest) (*models.RestrictionCheck, error)
}

type dishService struct {
	dishRepo     repositories.DishRepository
	customerRepo repositories.CustomerRepository
	tx           repositories.Transactor
}

func NewDishService(dishRepo repositories.DishRepository, customerRepo repositories.CustomerRepository, tx repositories.Transactor) DishService {
	return &dishService{dishRepo: dishRepo, customerRepo: customerRepo, tx: tx}
}

func validateDish(d *models.Dish) error {
	switch {
	case utils.IsEmpty(d.Name):
		return validationErrorf("name cannot be empty")
	case utils.IsEmpty(d.Category):
		return validationErrorf("category cannot be empty")
	case d.Price < 0:
		return validationErrorf("price cannot be negative")
	case d.Calories != nil && *d.Calories < 0:
		return validationErrorf("calories cannot be negative")
	case !utils.OneOf(d.Status, models.CatalogueActive, models.CatalogueInactive):
		return validationErrorf("status must be one of %s, %s", models.CatalogueActive, models.CatalogueInactive)
	}
	return nil
}

func (s *dishService) CreateDish(ctx context.Context, req CreateDishRequest) (*models.Dish, error) {
	dish := &models.Dish{
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.TrimSpace(req.Category),
		Description:  trimmedOrNil(req.Description),
		Ingredients:  trimmedOrNil(req.Ingredients),
		Restrictions: trimmedOrNil(req.Restrictions),
		Calories:     req.Calories,
		Status:       models.CatalogueActive,
	}
	if req.Price != nil {
		dish.Price = utils.RoundMoney(*req.Price)
	}
	if req.Status != nil {
		dish.Status = strings.TrimSpace(*req.Status)
	}
	if err := validateDish(dish); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.dishRepo.CreateDish(ctx, exec, dish)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dish: %w", err)
	}
	return dish, nil
}

func (s *dishService) GetDishByID(ctx context.Context, id int64) (*models.Dish, error) {
	dish, err := s.dishRepo.GetDishByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, fmt.Errorf("failed to get dish by ID: %w", err)
	}
	return dish, nil
}

func (s *dishService) GetDishes(ctx context.Context, filters models.DishFilters) ([]models.Dish, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	dishes, total, err := s.dishRepo.GetDishes(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get dishes: %w", err)
	}
	return dishes, total, nil
}

func (s *dishService) GetCategories(ctx context.Context) ([]string, error) {
	categories, err := s.dishRepo.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dish categories: %w", err)
	}
	return categories, nil
}

func (s *dishService) UpdateDish(ctx context.Context, id int64, req UpdateDishRequest) (*models.Dish, error) {
	dish, err := s.GetDishByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		dish.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		dish.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		dish.Description = trimmedOrNil(req.Description)
	}
	if req.Ingredients != nil {
		dish.Ingredients = trimmedOrNil(req.Ingredients)
	}
	if req.Restrictions != nil {
		dish.Restrictions = trimmedOrNil(req.Restrictions)
	}
	if req.Calories != nil {
		dish.Calories = req.Calories
	}
	if req.Price != nil {
		dish.Price = utils.RoundMoney(*req.Price)
	}
	if req.Status != nil {
		dish.Status = strings.TrimSpace(*req.Status)
	}
	if err := validateDish(dish); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.dishRepo.UpdateDish(ctx, exec, dish)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, fmt.Errorf("failed to update dish: %w", err)
	}
	return dish, nil
}

func (s *dishService) DeleteDish(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.dishRepo.DeleteDish(ctx, exec, id)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrDishNotFound
	case errors.Is(err, repositories.ErrForeignKeyViolation):
		return ErrDishInUse
	default:
		return fmt.Errorf("failed to delete dish: %w", err)
	}
}

// splitTags turns a comma-separated list into lower-cased, trimmed, non-empty tags.
func splitTags(value *string) []string {
	if value == nil {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(*value, ",") {
		if tag := strings.ToLower(strings.TrimSpace(part)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// CheckRestrictions reports every (dish, restriction) pair where a dish carries a tag the
// diner must avoid. Every listed dish must exist.
func (s *dishService) CheckRestrictions(ctx context.Context, req CheckRestrictionsRequest) (*models.RestrictionCheck, error) {
	if len(req.DishIDs) == 0 {
		return nil, validationErrorf("dish_ids must contain at least one dish")
	}

	restrictions := req.DietaryRestrictions
	if restrictions == nil && req.CustomerID != nil {
		customer, err := s.customerRepo.GetCustomerByID(ctx, *req.CustomerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrCustomerNotFound
			}
			return nil, fmt.Errorf("failed to get customer restrictions: %w", err)
		}
		restrictions = customer.DietaryRestrictions
	}

	ids := make([]int64, 0, len(req.DishIDs))
	seen := make(map[int64]bool, len(req.DishIDs))
	for _, id := range req.DishIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	dishes, err := s.dishRepo.GetDishesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load dishes: %w", err)
	}
	if len(dishes) != len(ids) {
		return nil, ErrDishNotFound
	}

	result := &models.RestrictionCheck{RestrictedDishes: []models.RestrictedDish{}}
	avoid := splitTags(restrictions)
	for _, dish := range dishes {
		tags := splitTags(dish.Restrictions)
		for _, r := range avoid {
			if utils.OneOf(r, tags...) {
				result.RestrictedDishes = append(result.RestrictedDishes, models.RestrictedDish{
					DishID: dish.ID, DishName: dish.Name, Restriction: r,
				})
			}
		}
	}
	result.HasRestrictions = len(result.RestrictedDishes) > 0
	return result, nil
}
