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

var ErrDishNotOnMenu = fmt.Errorf("menu dish %w", ErrNotFound)

var menuTypes = []string{models.MenuBreakfast, models.MenuLunch, models.MenuDinner, models.MenuSnack}

// MenuDishRequest puts a dish on a menu. Quantity defaults to one portion.
type MenuDishRequest struct {
	DishID   int64 `json:"dish_id" binding:"required"`
	Quantity *int  `json:"quantity"`
}

type CreateMenuRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description *string           `json:"description"`
	Type        string            `json:"type" binding:"required"`
	Price       *float64          `json:"price"`
	Status      *string           `json:"status"`
	Dishes      []MenuDishRequest `json:"dishes"`
}

// UpdateMenuRequest replaces the whole composition when Dishes is present, even when it is empty.
type UpdateMenuRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Type        *string            `json:"type"`
	Price       *float64           `json:"price"`
	Status      *string            `json:"status"`
	Dishes      *[]MenuDishRequest `json:"dishes"`
}

type MenuService interface {
	CreateMenu(ctx context.Context, req CreateMenuRequest) (*models.Menu, error)
	GetMenuByID(ctx context.Context, id int64) (*models.Menu, error)
	GetMenus(ctx context.Context, filters models.MenuFilters) ([]models.Menu, int, error)
	UpdateMenu(ctx context.Context, id int64, req UpdateMenuRequest) (*models.Menu, error)
	DeleteMenu(ctx context.Context, id int64) error
	AddDish(ctx context.Context, menuID int64, req MenuDishRequest) (*models.Menu, error)
	RemoveDish(ctx context.Context, menuID, dishID int64) (*models.Menu, error)
}

type menuService struct {
	menuRepo repositories.MenuRepository
	tx       repositories.Transactor
}

func NewMenuService(menuRepo repositories.MenuRepository, tx repositories.Transactor) MenuService {
	return &menuService{menuRepo: menuRepo, tx: tx}
}

func validateMenu(m *models.Menu) error {
	switch {
	case utils.IsEmpty(m.Name):
		return validationErrorf("name cannot be empty")
	case !utils.OneOf(m.Type, menuTypes...):
		return validationErrorf("type must be one of %s", strings.Join(menuTypes, ", "))
	case m.Price < 0:
		return validationErrorf("price cannot be negative")
	case !utils.OneOf(m.Status, models.CatalogueActive, models.CatalogueInactive):
		return validationErrorf("status must be one of %s, %s", models.CatalogueActive, models.CatalogueInactive)
	}
	return nil
}

// menuDishes validates a composition: positive dish ids and quantities, each dish at most once.
func menuDishes(reqs []MenuDishRequest) ([]models.MenuDish, error) {
	dishes := make([]models.MenuDish, 0, len(reqs))
	seen := make(map[int64]bool, len(reqs))
	for i, req := range reqs {
		md, err := menuDish(fmt.Sprintf("dishes[%d]", i), req)
		if err != nil {
			return nil, err
		}
		if seen[md.DishID] {
			return nil, validationErrorf("dishes[%d]: dish %d is listed more than once", i, md.DishID)
		}
		seen[md.DishID] = true
		dishes = append(dishes, *md)
	}
	return dishes, nil
}

func menuDish(prefix string, req MenuDishRequest) (*models.MenuDish, error) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	switch {
	case req.DishID <= 0:
		return nil, validationErrorf("%s: dish_id is required", prefix)
	case quantity <= 0:
		return nil, validationErrorf("%s: quantity must be greater than zero", prefix)
	}
	return &models.MenuDish{DishID: req.DishID, Quantity: quantity}, nil
}

func menuReferenceError(err error) error {
	return referenceError(err, ErrDishNotFound, map[string]error{
		"dish_id_fkey": ErrDishNotFound,
		"menu_id_fkey": ErrMenuNotFound,
	})
}

func (s *menuService) writeDishes(ctx context.Context, exec repositories.SQLExecutor, menuID int64, dishes []models.MenuDish) error {
	for _, md := range dishes {
		if _, err := s.menuRepo.UpsertMenuDish(ctx, exec, menuID, md.DishID, md.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// CreateMenu stores the menu and its dishes in one transaction.
func (s *menuService) CreateMenu(ctx context.Context, req CreateMenuRequest) (*models.Menu, error) {
	menu := &models.Menu{
		Name:        strings.TrimSpace(req.Name),
		Description: trimmedOrNil(req.Description),
		Type:        strings.TrimSpace(req.Type),
		Status:      models.CatalogueActive,
	}
	if req.Price != nil {
		menu.Price = utils.RoundMoney(*req.Price)
	}
	if req.Status != nil {
		menu.Status = strings.TrimSpace(*req.Status)
	}
	if err := validateMenu(menu); err != nil {
		return nil, err
	}
	dishes, err := menuDishes(req.Dishes)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		menuID, err := s.menuRepo.CreateMenu(ctx, exec, menu)
		if err != nil {
			return err
		}
		return s.writeDishes(ctx, exec, menuID, dishes)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create menu: %w", menuReferenceError(err))
	}

	utils.LogInfo("Menu created", map[string]interface{}{"menu_id": menu.ID, "dishes": len(dishes)})
	return s.GetMenuByID(ctx, menu.ID)
}

// GetMenuByID returns the menu with its dishes.
func (s *menuService) GetMenuByID(ctx context.Context, id int64) (*models.Menu, error) {
	menu, err := s.menuRepo.GetMenuByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("failed to get menu by ID: %w", err)
	}
	menu.Dishes, err = s.menuRepo.GetMenuDishes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu dishes: %w", err)
	}
	return menu, nil
}

// GetMenus lists menu headers; dishes are loaded by GetMenuByID only.
func (s *menuService) GetMenus(ctx context.Context, filters models.MenuFilters) ([]models.Menu, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	menus, total, err := s.menuRepo.GetMenus(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get menus: %w", err)
	}
	return menus, total, nil
}

func (s *menuService) UpdateMenu(ctx context.Context, id int64, req UpdateMenuRequest) (*models.Menu, error) {
	menu, err := s.menuRepo.GetMenuByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("failed to get menu by ID: %w", err)
	}

	if req.Name != nil {
		menu.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		menu.Description = trimmedOrNil(req.Description)
	}
	if req.Type != nil {
		menu.Type = strings.TrimSpace(*req.Type)
	}
	if req.Price != nil {
		menu.Price = utils.RoundMoney(*req.Price)
	}
	if req.Status != nil {
		menu.Status = strings.TrimSpace(*req.Status)
	}
	if err := validateMenu(menu); err != nil {
		return nil, err
	}
	var dishes []models.MenuDish
	if req.Dishes != nil {
		if dishes, err = menuDishes(*req.Dishes); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.menuRepo.UpdateMenu(ctx, exec, menu); err != nil {
			return err
		}
		if req.Dishes == nil {
			return nil
		}
		if _, err := s.menuRepo.DeleteMenuDishes(ctx, exec, id); err != nil {
			return err
		}
		return s.writeDishes(ctx, exec, id, dishes)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("failed to update menu: %w", menuReferenceError(err))
	}
	return s.GetMenuByID(ctx, id)
}

// DeleteMenu removes the composition and the menu together.
func (s *menuService) DeleteMenu(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.menuRepo.DeleteMenuDishes(ctx, exec, id); err != nil {
			return err
		}
		return s.menuRepo.DeleteMenu(ctx, exec, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMenuNotFound
		}
		return fmt.Errorf("failed to delete menu: %w", err)
	}
	utils.LogInfo("Menu deleted", map[string]interface{}{"menu_id": id})
	return nil
}

// AddDish puts a dish on the menu. A dish already on the menu gets the new quantity.
func (s *menuService) AddDish(ctx context.Context, menuID int64, req MenuDishRequest) (*models.Menu, error) {
	md, err := menuDish("dish", req)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.menuRepo.UpsertMenuDish(ctx, exec, menuID, md.DishID, md.Quantity)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add dish to menu: %w", menuReferenceError(err))
	}
	return s.GetMenuByID(ctx, menuID)
}

func (s *menuService) RemoveDish(ctx context.Context, menuID, dishID int64) (*models.Menu, error) {
	if _, err := s.menuRepo.GetMenuByID(ctx, menuID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("failed to get menu by ID: %w", err)
	}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.menuRepo.DeleteMenuDish(ctx, exec, menuID, dishID)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDishNotOnMenu
		}
		return nil, fmt.Errorf("failed to remove dish from menu: %w", err)
	}
	return s.GetMenuByID(ctx, menuID)
}
