package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"

	"github.com/lib/pq"
)

// DishRepository defines the database operations for the dish catalogue.
type DishRepository interface {
	CreateDish(ctx context.Context, executor SQLExecutor, dish *models.Dish) (int64, error)
	GetDishByID(ctx context.Context, id int64) (*models.Dish, error)
	GetDishes(ctx context.Context, filters models.DishFilters) ([]models.Dish, int, error)
	GetDishesByIDs(ctx context.Context, ids []int64) ([]models.Dish, error)
	GetCategories(ctx context.Context) ([]string, error)
	UpdateDish(ctx context.Context, executor SQLExecutor, dish *models.Dish) error
	DeleteDish(ctx context.Context, executor SQLExecutor, id int64) error
}

type dishRepository struct {
	db *sql.DB
}

func NewDishRepository(db *sql.DB) DishRepository {
	return &dishRepository{db: db}
}

const dishColumns = `id, name, category, description, ingredients, restrictions, calories, price, status,
	created_at, updated_at`

func scanDishRow(row scanner, extra ...interface{}) (*models.Dish, error) {
	d := &models.Dish{}
	dest := []interface{}{&d.ID, &d.Name, &d.Category, &d.Description, &d.Ingredients, &d.Restrictions,
		&d.Calories, &d.Price, &d.Status, &d.CreatedAt, &d.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *dishRepository) CreateDish(ctx context.Context, executor SQLExecutor, dish *models.Dish) (int64, error) {
	query := `INSERT INTO dishes
	            (name, category, description, ingredients, restrictions, calories, price, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	now := nowUTC()
	dish.CreatedAt, dish.UpdatedAt = now, now
	if dish.Status == "" {
		dish.Status = models.CatalogueActive
	}

	err := executor.QueryRowContext(ctx, query,
		dish.Name, dish.Category, dish.Description, dish.Ingredients, dish.Restrictions, dish.Calories,
		dish.Price, dish.Status, dish.CreatedAt, dish.UpdatedAt,
	).Scan(&dish.ID)
	if err != nil {
		return 0, translateError(err, "creating dish")
	}
	return dish.ID, nil
}

func (r *dishRepository) GetDishByID(ctx context.Context, id int64) (*models.Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM dishes WHERE id = $1`
	dish, err := scanDishRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting dish by ID %d: %v", ErrDatabaseError, id, err)
	}
	return dish, nil
}

func (r *dishRepository) GetDishes(ctx context.Context, filters models.DishFilters) ([]models.Dish, int, error) {
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + dishColumns + `, COUNT(*) OVER() AS total_count FROM dishes`)

	var where whereBuilder
	if filters.Category != nil && *filters.Category != "" {
		where.add("category = $%d", *filters.Category)
	}
	if filters.Status != nil && *filters.Status != "" {
		where.add("status = $%d", *filters.Status)
	}
	if filters.Search != nil && *filters.Search != "" {
		where.add("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", "%"+strings.TrimSpace(*filters.Search)+"%")
	}
	where.writeTo(&queryBuilder, "category ASC, name ASC, id ASC", filters.Page, filters.PageSize)

	dishes, err := r.queryDishes(ctx, queryBuilder.String(), where.args, &totalCount)
	if err != nil {
		return nil, 0, err
	}
	return dishes, totalCount, nil
}

// GetDishesByIDs returns the dishes that exist among ids, ordered by id. Unknown ids are skipped.
func (r *dishRepository) GetDishesByIDs(ctx context.Context, ids []int64) ([]models.Dish, error) {
	if len(ids) == 0 {
		return []models.Dish{}, nil
	}
	query := `SELECT ` + dishColumns + ` FROM dishes WHERE id = ANY($1) ORDER BY id`
	return r.queryDishes(ctx, query, []interface{}{pq.Array(ids)}, nil)
}

func (r *dishRepository) queryDishes(ctx context.Context, query string, args []interface{}, totalCount *int) ([]models.Dish, error) {
	dishes := []models.Dish{}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying dishes: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var extra []interface{}
		if totalCount != nil {
			extra = append(extra, totalCount)
		}
		d, err := scanDishRow(rows, extra...)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning dish: %v", ErrDatabaseError, err)
		}
		dishes = append(dishes, *d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating dish rows: %v", ErrDatabaseError, err)
	}
	return dishes, nil
}

func (r *dishRepository) GetCategories(ctx context.Context) ([]string, error) {
	return selectStrings(ctx, r.db, `SELECT DISTINCT category FROM dishes ORDER BY category`, "dish categories")
}

func (r *dishRepository) UpdateDish(ctx context.Context, executor SQLExecutor, dish *models.Dish) error {
	query := `UPDATE dishes SET
	            name = $1, category = $2, description = $3, ingredients = $4, restrictions = $5, calories = $6,
	            price = $7, status = $8, updated_at = $9
	          WHERE id = $10`
	dish.UpdatedAt = nowUTC()
	result, err := executor.ExecContext(ctx, query,
		dish.Name, dish.Category, dish.Description, dish.Ingredients, dish.Restrictions, dish.Calories,
		dish.Price, dish.Status, dish.UpdatedAt, dish.ID,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("updating dish ID %d", dish.ID))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("dish update ID %d", dish.ID))
	return err
}

// DeleteDish returns ErrForeignKeyViolation while a menu still lists the dish.
func (r *dishRepository) DeleteDish(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM dishes WHERE id = $1`, id)
	if err != nil {
		return translateError(err, fmt.Sprintf("deleting dish ID %d", id))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("deleting dish ID %d", id))
	return err
}
