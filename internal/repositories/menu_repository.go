package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
)

// MenuRepository defines the database operations for menus and their dish composition.
type MenuRepository interface {
	CreateMenu(ctx context.Context, executor SQLExecutor, menu *models.Menu) (int64, error)
	GetMenuByID(ctx context.Context, id int64) (*models.Menu, error)
	GetMenus(ctx context.Context, filters models.MenuFilters) ([]models.Menu, int, error)
	UpdateMenu(ctx context.Context, executor SQLExecutor, menu *models.Menu) error
	DeleteMenu(ctx context.Context, executor SQLExecutor, id int64) error

	// Composition methods
	UpsertMenuDish(ctx context.Context, executor SQLExecutor, menuID, dishID int64, quantity int) (int64, error)
	GetMenuDishes(ctx context.Context, menuID int64) ([]models.MenuDish, error)
	DeleteMenuDish(ctx context.Context, executor SQLExecutor, menuID, dishID int64) (int64, error)
	DeleteMenuDishes(ctx context.Context, executor SQLExecutor, menuID int64) (int64, error)
}

type menuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) MenuRepository {
	return &menuRepository{db: db}
}

const menuColumns = `id, name, description, type, price, status, created_at, updated_at`

func scanMenuRow(row scanner, extra ...interface{}) (*models.Menu, error) {
	m := &models.Menu{}
	dest := []interface{}{&m.ID, &m.Name, &m.Description, &m.Type, &m.Price, &m.Status, &m.CreatedAt, &m.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *menuRepository) CreateMenu(ctx context.Context, executor SQLExecutor, menu *models.Menu) (int64, error) {
	query := `INSERT INTO menus (name, description, type, price, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	now := nowUTC()
	menu.CreatedAt, menu.UpdatedAt = now, now
	if menu.Status == "" {
		menu.Status = models.CatalogueActive
	}

	err := executor.QueryRowContext(ctx, query,
		menu.Name, menu.Description, menu.Type, menu.Price, menu.Status, menu.CreatedAt, menu.UpdatedAt,
	).Scan(&menu.ID)
	if err != nil {
		return 0, translateError(err, "creating menu")
	}
	return menu.ID, nil
}

func (r *menuRepository) GetMenuByID(ctx context.Context, id int64) (*models.Menu, error) {
	query := `SELECT ` + menuColumns + ` FROM menus WHERE id = $1`
	menu, err := scanMenuRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting menu by ID %d: %v", ErrDatabaseError, id, err)
	}
	return menu, nil
}

func (r *menuRepository) GetMenus(ctx context.Context, filters models.MenuFilters) ([]models.Menu, int, error) {
	menus := []models.Menu{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + menuColumns + `, COUNT(*) OVER() AS total_count FROM menus`)

	var where whereBuilder
	if filters.Type != nil && *filters.Type != "" {
		where.add("type = $%d", *filters.Type)
	}
	if filters.Status != nil && *filters.Status != "" {
		where.add("status = $%d", *filters.Status)
	}
	where.writeTo(&queryBuilder, "created_at DESC, id DESC", filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying menus: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMenuRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning menu: %v", ErrDatabaseError, err)
		}
		menus = append(menus, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating menu rows: %v", ErrDatabaseError, err)
	}
	return menus, totalCount, nil
}

func (r *menuRepository) UpdateMenu(ctx context.Context, executor SQLExecutor, menu *models.Menu) error {
	query := `UPDATE menus SET name = $1, description = $2, type = $3, price = $4, status = $5, updated_at = $6
	          WHERE id = $7`
	menu.UpdatedAt = nowUTC()
	result, err := executor.ExecContext(ctx, query,
		menu.Name, menu.Description, menu.Type, menu.Price, menu.Status, menu.UpdatedAt, menu.ID)
	if err != nil {
		return translateError(err, fmt.Sprintf("updating menu ID %d", menu.ID))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("menu update ID %d", menu.ID))
	return err
}

func (r *menuRepository) DeleteMenu(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return translateError(err, fmt.Sprintf("deleting menu ID %d", id))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("deleting menu ID %d", id))
	return err
}

// UpsertMenuDish puts a dish on a menu, or replaces its quantity when it is already there.
// An unknown menu or dish surfaces as ErrForeignKeyViolation naming the constraint.
func (r *menuRepository) UpsertMenuDish(ctx context.Context, executor SQLExecutor, menuID, dishID int64, quantity int) (int64, error) {
	query := `INSERT INTO menu_dishes (menu_id, dish_id, quantity)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (menu_id, dish_id) DO UPDATE SET quantity = EXCLUDED.quantity
	          RETURNING id`
	var id int64
	if err := executor.QueryRowContext(ctx, query, menuID, dishID, quantity).Scan(&id); err != nil {
		return 0, translateError(err, fmt.Sprintf("adding dish %d to menu %d", dishID, menuID))
	}
	return id, nil
}

func (r *menuRepository) GetMenuDishes(ctx context.Context, menuID int64) ([]models.MenuDish, error) {
	dishes := []models.MenuDish{}
	query := `SELECT md.id, md.menu_id, md.dish_id, md.quantity, d.name, d.category, d.price
	          FROM menu_dishes md
	          JOIN dishes d ON d.id = md.dish_id
	          WHERE md.menu_id = $1
	          ORDER BY d.category, d.name, md.id`

	rows, err := r.db.QueryContext(ctx, query, menuID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying dishes of menu ID %d: %v", ErrDatabaseError, menuID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var md models.MenuDish
		if err := rows.Scan(&md.ID, &md.MenuID, &md.DishID, &md.Quantity, &md.DishName, &md.Category, &md.Price); err != nil {
			return nil, fmt.Errorf("%w: scanning dish of menu ID %d: %v", ErrDatabaseError, menuID, err)
		}
		dishes = append(dishes, md)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating dishes of menu ID %d: %v", ErrDatabaseError, menuID, err)
	}
	return dishes, nil
}

func (r *menuRepository) DeleteMenuDish(ctx context.Context, executor SQLExecutor, menuID, dishID int64) (int64, error) {
	result, err := executor.ExecContext(ctx, `DELETE FROM menu_dishes WHERE menu_id = $1 AND dish_id = $2`, menuID, dishID)
	if err != nil {
		return 0, fmt.Errorf("%w: removing dish %d from menu %d: %v", ErrDatabaseError, dishID, menuID, err)
	}
	return affectedOrNotFound(result, fmt.Sprintf("removing dish %d from menu %d", dishID, menuID))
}

func (r *menuRepository) DeleteMenuDishes(ctx context.Context, executor SQLExecutor, menuID int64) (int64, error) {
	result, err := executor.ExecContext(ctx, `DELETE FROM menu_dishes WHERE menu_id = $1`, menuID)
	if err != nil {
		return 0, fmt.Errorf("%w: clearing dishes of menu ID %d: %v", ErrDatabaseError, menuID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for clearing dishes of menu ID %d: %v", ErrDatabaseError, menuID, err)
	}
	return rowsAffected, nil
}
